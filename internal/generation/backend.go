package generation

import (
	"fmt"
	"os"
	"strings"
)

// Backend identifies an LLM provider family
type Backend string

// Known backends. Only backends with a registered ProviderFactory can be used.
const (
	BackendGoogle      Backend = "google"
	BackendOpenAI      Backend = "openai"
	BackendAnthropic   Backend = "anthropic"
	BackendOllama      Backend = "ollama"
	BackendDeepSeek    Backend = "deepseek"
	BackendXAI         Backend = "xai"
	BackendPhind       Backend = "phind"
	BackendGroq        Backend = "groq"
	BackendAzureOpenAI Backend = "azure_openai"
	BackendCohere      Backend = "cohere"
	BackendMistral     Backend = "mistral"
	BackendOpenRouter  Backend = "openrouter"
	BackendHuggingFace Backend = "huggingface"
)

var knownBackends = map[Backend]string{
	BackendGoogle:      "GOOGLE_API_KEY",
	BackendOpenAI:      "OPENAI_API_KEY",
	BackendAnthropic:   "ANTHROPIC_API_KEY",
	BackendOllama:      "OLLAMA_API_KEY",
	BackendDeepSeek:    "DEEPSEEK_API_KEY",
	BackendXAI:         "XAI_API_KEY",
	BackendPhind:       "PHIND_API_KEY",
	BackendGroq:        "GROQ_API_KEY",
	BackendAzureOpenAI: "AZURE_OPENAI_API_KEY",
	BackendCohere:      "COHERE_API_KEY",
	BackendMistral:     "MISTRAL_API_KEY",
	BackendOpenRouter:  "OPENROUTER_API_KEY",
	BackendHuggingFace: "HF_TOKEN",
}

// ParseBackend converts a configured backend name into a Backend.
// Matching is case-insensitive and accepts "gemini" as an alias for google.
func ParseBackend(name string) (Backend, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "gemini" {
		normalized = string(BackendGoogle)
	}

	backend := Backend(normalized)
	if _, ok := knownBackends[backend]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return backend, nil
}

// CredentialEnvVar returns the environment variable holding the API key for a backend
func CredentialEnvVar(backend Backend) (string, bool) {
	name, ok := knownBackends[backend]
	return name, ok
}

// LookupFunc looks up an environment variable
type LookupFunc func(key string) (string, bool)

// ResolveAPIKey returns explicit when it is set, otherwise the value of the
// backend's credential environment variable. A nil lookup uses os.LookupEnv.
func ResolveAPIKey(backend Backend, explicit string, lookup LookupFunc) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	envVar, ok := CredentialEnvVar(backend)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}

	value, found := lookup(envVar)
	if !found || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingAPIKey, envVar)
	}
	return value, nil
}
