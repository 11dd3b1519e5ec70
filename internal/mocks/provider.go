package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/lazyreader/internal/generation"
)

// MockProvider implements generation.Provider for testing
type MockProvider struct {
	// ChatFn allows test cases to mock the Chat behavior
	ChatFn func(ctx context.Context, messages []generation.Message) (generation.Response, error)

	// Default response values
	Response generation.Response
	Err      error

	// mu protects the call tracking state for concurrent test cases
	mu       sync.Mutex
	calls    int
	messages [][]generation.Message
}

// Chat implements the generation.Provider interface
func (m *MockProvider) Chat(ctx context.Context, messages []generation.Message) (generation.Response, error) {
	m.mu.Lock()
	m.calls++
	m.messages = append(m.messages, messages)
	m.mu.Unlock()

	if m.ChatFn != nil {
		return m.ChatFn(ctx, messages)
	}
	return m.Response, m.Err
}

// Calls returns how many times Chat was called
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Messages returns the conversations passed to Chat, in call order
func (m *MockProvider) Messages() [][]generation.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]generation.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// MockProviderFactory implements generation.ProviderFactory for testing
type MockProviderFactory struct {
	// NewProviderFn allows test cases to mock provider construction
	NewProviderFn func(
		ctx context.Context,
		cfg generation.ProviderConfig,
		schema *generation.Schema,
	) (generation.Provider, error)

	// Provider is returned when NewProviderFn is nil
	Provider generation.Provider
	Err      error

	mu      sync.Mutex
	configs []generation.ProviderConfig
	schemas []*generation.Schema
}

// NewProvider implements the generation.ProviderFactory interface
func (f *MockProviderFactory) NewProvider(
	ctx context.Context,
	cfg generation.ProviderConfig,
	schema *generation.Schema,
) (generation.Provider, error) {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.schemas = append(f.schemas, schema)
	f.mu.Unlock()

	if f.NewProviderFn != nil {
		return f.NewProviderFn(ctx, cfg, schema)
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Provider, nil
}

// Configs returns the provider configurations seen so far
func (f *MockProviderFactory) Configs() []generation.ProviderConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]generation.ProviderConfig, len(f.configs))
	copy(out, f.configs)
	return out
}

// Schemas returns the schemas seen so far
func (f *MockProviderFactory) Schemas() []*generation.Schema {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*generation.Schema, len(f.schemas))
	copy(out, f.schemas)
	return out
}

// NewMockProviderFactoryWithText creates a factory whose providers answer text
func NewMockProviderFactoryWithText(text string) *MockProviderFactory {
	return &MockProviderFactory{
		Provider: &MockProvider{Response: generation.TextResponse(text)},
	}
}

// NewMockProviderFactoryWithError creates a factory whose providers fail every call with err
func NewMockProviderFactoryWithError(err error) *MockProviderFactory {
	return &MockProviderFactory{
		Provider: &MockProvider{Err: err},
	}
}

// NewMockProviderFactoryWithChat creates a factory whose providers delegate to chat
func NewMockProviderFactoryWithChat(
	chat func(ctx context.Context, messages []generation.Message) (generation.Response, error),
) *MockProviderFactory {
	return &MockProviderFactory{
		Provider: &MockProvider{ChatFn: chat},
	}
}

var (
	_ generation.Provider        = (*MockProvider)(nil)
	_ generation.ProviderFactory = (*MockProviderFactory)(nil)
)
