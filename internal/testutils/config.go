package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateTempConfigFile writes content to a config.toml inside a test-owned
// temporary directory and returns the file path. The directory is removed
// when the test ends.
func CreateTempConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config file: %v", err)
	}
	return path
}
