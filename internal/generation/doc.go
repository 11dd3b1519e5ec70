// Package generation defines the boundary between the application and
// external LLM providers. It holds the provider-agnostic request types
// (messages and optional JSON schemas), the provider configuration, the
// credential lookup rules per backend, and the errors every backend maps its
// failures onto. Concrete backends such as Gemini live under internal/platform.
package generation
