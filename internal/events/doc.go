// Package events provides types and interfaces for observing job lifecycle changes.
//
// The status registry emits a StatusChangedEvent every time a job's status is
// published. Observers register an EventHandler with an EventEmitter and are
// notified without the registry knowing who is listening.
//
// The primary components are:
// - StatusChangedEvent: Describes a single status transition of a job
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
