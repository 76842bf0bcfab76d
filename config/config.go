// Package config handles configuration loading for HireFlow. It supports XDG
// config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for HireFlow.
type Config struct {
	Provider     ProviderConfig     `mapstructure:"provider"`
	Router       RouterConfig       `mapstructure:"router"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Retry        RetryConfig        `mapstructure:"retry"`
	Memory       MemoryConfig       `mapstructure:"memory"`
	Store        StoreConfig        `mapstructure:"store"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ProviderConfig selects the language-model backend.
type ProviderConfig struct {
	// Name is the backend: "openai" or "anthropic".
	Name string `mapstructure:"name"`
	// Model overrides the backend's default model name.
	Model string `mapstructure:"model"`
	// APIKey is the provider API key. Usually supplied via OPENAI_API_KEY
	// or ANTHROPIC_API_KEY rather than the config file.
	APIKey string `mapstructure:"api_key"`
	// RequestsPerSecond enables client-side rate limiting when > 0.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// RouterConfig holds intent-routing settings.
type RouterConfig struct {
	// ConfidenceThreshold is the minimum routing confidence before the
	// router asks a clarifying question instead.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// OrchestratorConfig holds plan-execution settings.
type OrchestratorConfig struct {
	// Concurrency caps the number of tasks dispatched in parallel.
	Concurrency int `mapstructure:"concurrency"`
	// ModelTimeout bounds task dispatches that call the model.
	ModelTimeout time.Duration `mapstructure:"model_timeout"`
	// StoreTimeout bounds store-only task dispatches.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// RetryConfig governs rate-limit retries on model calls.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// MemoryConfig holds conversation-memory budgets.
type MemoryConfig struct {
	// RecentWindow is the number of verbatim turns kept in working context.
	RecentWindow int `mapstructure:"recent_window"`
	// DigestThreshold is the turn count past which older turns are
	// summarized into a digest.
	DigestThreshold int `mapstructure:"digest_threshold"`
	// DigestCacheSize bounds the digest LRU cache.
	DigestCacheSize int `mapstructure:"digest_cache_size"`
}

// StoreConfig selects the hiring-data store backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `mapstructure:"backend"`
	// Path is the sqlite database file, used when Backend is "sqlite".
	Path string `mapstructure:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}

	v := viper.New()
	setDefaults(v)
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: unmarshal defaults: %v", err))
	}

	return cfg
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (HIREFLOW_*, OPENAI_API_KEY, ANTHROPIC_API_KEY)
// 2. Project config (.hireflow.yaml in current directory or a parent)
// 3. User config (~/.config/hireflow/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HIREFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Provider.APIKey = expandEnv(cfg.Provider.APIKey)
	if cfg.Provider.APIKey == "" {
		switch cfg.Provider.Name {
		case "anthropic":
			cfg.Provider.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (want openai or anthropic)", c.Provider.Name)
	}

	if c.Router.ConfidenceThreshold < 0 || c.Router.ConfidenceThreshold > 1 {
		return fmt.Errorf("router confidence threshold %v out of range [0,1]", c.Router.ConfidenceThreshold)
	}

	if c.Orchestrator.Concurrency < 1 {
		return fmt.Errorf("orchestrator concurrency must be at least 1, got %d", c.Orchestrator.Concurrency)
	}

	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("sqlite store requires a path")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory or sqlite)", c.Store.Backend)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.requests_per_second", 0.0)

	v.SetDefault("router.confidence_threshold", 0.6)

	v.SetDefault("orchestrator.concurrency", 4)
	v.SetDefault("orchestrator.model_timeout", 60*time.Second)
	v.SetDefault("orchestrator.store_timeout", 10*time.Second)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_backoff", 500*time.Millisecond)
	v.SetDefault("retry.max_backoff", 8*time.Second)

	v.SetDefault("memory.recent_window", 6)
	v.SetDefault("memory.digest_threshold", 12)
	v.SetDefault("memory.digest_cache_size", 128)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.path", filepath.Join(userDataDir(), "hireflow.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// expandEnv expands ${VAR} references in a config value.
func expandEnv(s string) string {
	if strings.Contains(s, "${") {
		return os.ExpandEnv(s)
	}
	return s
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hireflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hireflow"
	}
	return filepath.Join(home, ".config", "hireflow")
}

func userDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "hireflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hireflow"
	}
	return filepath.Join(home, ".local", "share", "hireflow")
}

// findProjectConfig walks from the current directory upward looking for a
// .hireflow.yaml file.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".hireflow.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
