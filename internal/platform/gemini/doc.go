// Package gemini implements generation.ProviderFactory on top of Google's
// Gemini API.
//
// This package is an infrastructure adapter: it translates the provider-neutral
// chat messages and JSON Schemas of the generation package into genai requests
// and reduces the responses back to plain text, without exposing the genai
// types to the rest of the application.
//
// Key components:
//
// 1. Factory:
//   - Validates the provider configuration
//   - Builds one genai client per provider with a pooled HTTP client whose
//     timeout is the configured request timeout
//
// 2. Provider:
//   - Maps system messages to the system instruction and the remaining
//     messages to user and model contents
//   - Requests JSON output constrained by a response schema when one is given
//   - Concatenates the text parts of the first candidate
//
// Providers do not retry. A failed call is reported to the caller once.
package gemini
