package runtimeconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvEnvironment = "PORTFOLIO_ENV"
	EnvDSN         = "PORTFOLIO_DSN"
	EnvDriver      = "PORTFOLIO_DB_DRIVER"
	EnvAuthSecret  = "PORTFOLIO_JWT_SECRET"
	EnvAddr        = "PORTFOLIO_ADDR"
	EnvBaseURL     = "PORTFOLIO_BASE_URL"
	EnvLogLevel    = "PORTFOLIO_LOG_LEVEL"
	EnvStrict      = "PORTFOLIO_RENDER_STRICT"
)

// Parse decodes YAML over DefaultConfig, so omitted keys keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("portfolio config: decode yaml: %w", err)
	}
	return cfg, nil
}

// Load reads path (optional), applies environment overrides and validates
// the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("portfolio config: read %s: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	cfg = ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables found through lookup.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if lookup == nil {
		return cfg
	}
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	set(EnvEnvironment, &cfg.Environment)
	set(EnvDSN, &cfg.Storage.DSN)
	set(EnvDriver, &cfg.Storage.Driver)
	set(EnvAddr, &cfg.HTTP.Addr)
	set(EnvBaseURL, &cfg.Public.BaseURL)
	set(EnvLogLevel, &cfg.Logging.Level)
	if value, ok := lookup(EnvAuthSecret); ok && strings.TrimSpace(value) != "" {
		cfg.Auth.Secret = strings.TrimSpace(value)
		cfg.Auth.Enabled = true
	}
	if value, ok := lookup(EnvStrict); ok {
		if strict, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			cfg.Render.Strict = &strict
		}
	}
	return cfg
}
