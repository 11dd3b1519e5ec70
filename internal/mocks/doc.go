// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the generation interfaces,
// so that task, service and API tests can drive the invocation pipeline
// without reaching a real LLM provider.
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/phrazzld/lazyreader/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    factory := mocks.NewMockProviderFactoryWithText("Paris")
//
//	    // Use the factory in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
