// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and VIVA_* env vars.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// OracleProvider chooses the generation backend: gemini, openai or
	// none (deterministic fallbacks only).
	OracleProvider string `koanf:"oracle_provider"`

	// OracleModel overrides the provider's default model.
	OracleModel string `koanf:"oracle_model"`

	// OracleAPIKeyEnv names the environment variable holding the
	// provider API key; the key itself never lives in config files.
	OracleAPIKeyEnv string `koanf:"oracle_api_key_env"`

	// OracleTimeout bounds a single generation call.
	OracleTimeout time.Duration `koanf:"oracle_timeout"`

	// DistinctThreshold is the similarity ceiling for accepting a
	// candidate question.
	DistinctThreshold float64 `koanf:"distinct_threshold"`

	// GenerationRetries is the attempt budget per selector strategy.
	GenerationRetries int `koanf:"generation_retries"`

	// RecentWindow is how many recent same-phase questions feed the
	// distinctness filter.
	RecentWindow int `koanf:"recent_window"`

	// SessionTTL evicts idle sessions from the live registry.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// StorageBackend selects session persistence: file or sqlite.
	StorageBackend string `koanf:"storage_backend"`

	// StorageDir holds session JSON documents for the file backend.
	StorageDir string `koanf:"storage_dir"`

	// StorageDSN is the sqlite database path for the sqlite backend.
	StorageDSN string `koanf:"storage_dsn"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		OracleProvider:    "none",
		OracleModel:       "",
		OracleAPIKeyEnv:   "VIVA_ORACLE_API_KEY",
		OracleTimeout:     6 * time.Second,
		DistinctThreshold: 0.45,
		GenerationRetries: 3,
		RecentWindow:      10,
		SessionTTL:        time.Hour,
		StorageBackend:    "file",
		StorageDir:        "./data/sessions",
		StorageDSN:        "./data/viva.db",
	}
}
