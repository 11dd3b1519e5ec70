package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/lazyreader/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test and
// points the user config directory at an empty temp dir
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// TestLoadDefaults verifies that the Load function sets the expected default
// values when no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"LAZYREADER_SERVER_PORT":      "",
		"LAZYREADER_SERVER_LOG_LEVEL": "",
		"LAZYREADER_LLM_BACKEND":      "",
		"LAZYREADER_LLM_MODEL":        "",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8765, cfg.Server.Port, "Default server port should be 8765")
	assert.Equal(t, "0.0.0.0:8765", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout())

	assert.Equal(t, "google", cfg.LLM.Backend)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 8192, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 300*time.Second, cfg.LLM.RequestTimeout())
	assert.False(t, cfg.LLM.ValidateStructuredOutput)

	assert.Equal(t, 16, cfg.Task.MaxConcurrent)
	assert.Equal(t, time.Duration(0), cfg.Task.Retention(), "retention is disabled by default")
	assert.Equal(t, 5*time.Minute, cfg.Task.SweepInterval())

	assert.Equal(t, Default(), cfg)
}

// TestLoadFromEnv verifies that the Load function correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"LAZYREADER_SERVER_PORT":                    "9090",
		"LAZYREADER_SERVER_LOG_LEVEL":               "debug",
		"LAZYREADER_LLM_MODEL":                      "gemini-2.5-flash",
		"LAZYREADER_LLM_TEMPERATURE":                "0.2",
		"LAZYREADER_LLM_API_KEY":                    "test-api-key",
		"LAZYREADER_LLM_VALIDATE_STRUCTURED_OUTPUT": "true",
		"LAZYREADER_TASK_MAX_CONCURRENT":            "4",
		"LAZYREADER_TASK_RETENTION_MINUTES":         "60",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, 9090, cfg.Server.Port, "Server port should be loaded from environment variables")
	assert.Equal(t, "debug", cfg.Server.LogLevel, "Log level should be loaded from environment variables")
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, "test-api-key", cfg.LLM.APIKey, "API key should be loaded from environment variables")
	assert.True(t, cfg.LLM.ValidateStructuredOutput)
	assert.Equal(t, 4, cfg.Task.MaxConcurrent)
	assert.Equal(t, time.Hour, cfg.Task.Retention())
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"LAZYREADER_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"LAZYREADER_SERVER_LOG_LEVEL": "invalid-level"},
		},
		{
			name:    "Unknown backend",
			envVars: map[string]string{"LAZYREADER_LLM_BACKEND": "skynet"},
		},
		{
			name:    "Temperature out of range",
			envVars: map[string]string{"LAZYREADER_LLM_TEMPERATURE": "3.5"},
		},
		{
			name:    "Zero max tokens",
			envVars: map[string]string{"LAZYREADER_LLM_MAX_TOKENS": "0"},
		},
		{
			name:    "Negative concurrency",
			envVars: map[string]string{"LAZYREADER_TASK_MAX_CONCURRENT": "-1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := testutils.CreateTempConfigFile(t, `
[server]
port = 7000
log_level = "warn"

[llm]
backend = "gemini"
model = "gemini-2.0-flash"
max_tokens = 1024

[task]
max_concurrent = 0
`)

	t.Run("file values", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Server.LogLevel)
		assert.Equal(t, "gemini", cfg.LLM.Backend)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
		assert.Equal(t, 1024, cfg.LLM.MaxTokens)
		assert.Equal(t, 0, cfg.Task.MaxConcurrent)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep their defaults")
	})

	t.Run("environment wins over file", func(t *testing.T) {
		setupEnv(t, map[string]string{"LAZYREADER_SERVER_PORT": "7001"})

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7001, cfg.Server.Port)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	created, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1234\n"), 0o600))
	created, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created, "existing files are left alone")

	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Server.Port)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	var cfg *Config
	require.NotPanics(t, func() { cfg = Default() })
	require.NoError(t, Validate(cfg), "built-in defaults must pass validation")
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "google", cfg.LLM.Backend)
	assert.Equal(t, 16, cfg.Task.MaxConcurrent)
}
