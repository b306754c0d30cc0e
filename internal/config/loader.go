package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if VIVA_CONFIG is set
//  3. env (prefix VIVA_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("VIVA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: VIVA_ADDR, VIVA_ORACLE_PROVIDER, ...
	// Map env keys like VIVA_ORACLE_PROVIDER -> oracle_provider (flat keys)
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("VIVA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "viva_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return ErrEmptyAddr
	}
	switch c.OracleProvider {
	case "gemini", "openai", "none":
	default:
		return ErrUnknownProvider
	}
	switch c.StorageBackend {
	case "file", "sqlite":
	default:
		return ErrUnknownBackend
	}
	if c.DistinctThreshold <= 0 || c.DistinctThreshold > 1 {
		return ErrBadThreshold
	}
	return nil
}

// OracleAPIKey reads the provider API key from the configured env var.
func (c *Config) OracleAPIKey() string {
	return os.Getenv(c.OracleAPIKeyEnv)
}
