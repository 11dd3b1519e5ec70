// Package testutils provides helpers shared by tests across packages:
// an in-memory slog handler for asserting on log output and temporary
// config files.
package testutils
