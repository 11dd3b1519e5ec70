package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. LAZYREADER_SERVER_PORT
	EnvPrefix = "LAZYREADER"

	appName        = "lazyreader"
	configName     = "config"
	configType     = "toml"
	configFileName = configName + "." + configType
)

// Load reads configuration from defaults, an optional config.toml in the
// working directory or the user config directory, and LAZYREADER_ environment
// variables, in increasing order of precedence.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path falls back to
// the default search locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validation tags
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.RegisterValidation("llm_backend", validateBackend); err != nil {
		return fmt.Errorf("failed to register backend validation: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func validateBackend(fl validator.FieldLevel) bool {
	_, err := generation.ParseBackend(fl.Field().String())
	return err == nil
}

// Default returns the configuration used when nothing overrides it.
// It panics if the built-in defaults cannot be decoded, which is a
// programming error in setDefaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: built-in defaults do not decode: %v", err))
	}
	return &cfg
}

// DefaultPath returns the per-user config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// WriteDefault writes a config file populated with default values to path.
// It reports false without touching the file when one already exists.
func WriteDefault(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType(configType)

	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 30)

	v.SetDefault("llm.backend", string(generation.BackendGoogle))
	v.SetDefault("llm.model", "gemini-2.5-pro")
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.request_timeout_seconds", 300)
	v.SetDefault("llm.validate_structured_output", false)

	v.SetDefault("task.max_concurrent", 16)
	v.SetDefault("task.retention_minutes", 0)
	v.SetDefault("task.sweep_interval_minutes", 5)
}
