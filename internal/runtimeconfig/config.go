package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrEnvironmentInvalid     = errors.New("portfolio config: environment must be development or production")
	ErrStorageDriverUnknown   = errors.New("portfolio config: storage driver is invalid")
	ErrStorageDSNRequired     = errors.New("portfolio config: storage dsn is required")
	ErrCacheTTLInvalid        = errors.New("portfolio config: cache ttl must be zero or positive")
	ErrLoggingProviderUnknown = errors.New("portfolio config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("portfolio config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("portfolio config: logging format is invalid")
	ErrAuthSecretRequired     = errors.New("portfolio config: auth secret is required when auth is enabled")
	ErrPublicBaseURLInvalid   = errors.New("portfolio config: public base url must be absolute")
	ErrMediaProviderUnknown   = errors.New("portfolio config: media provider is invalid")
	ErrMediaBucketRequired    = errors.New("portfolio config: media primary bucket is required for gcs")
	ErrIdentityKeyRequired    = errors.New("portfolio config: identity key is required for deterministic ids")
	ErrCommandRetriesInvalid  = errors.New("portfolio config: command retries must be zero or positive")
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Config holds everything the portfolio module needs to start.
type Config struct {
	Environment string         `yaml:"environment"`
	Storage     StorageConfig  `yaml:"storage"`
	Cache       CacheConfig    `yaml:"cache"`
	Logging     LoggingConfig  `yaml:"logging"`
	Render      RenderConfig   `yaml:"render"`
	Themes      ThemeConfig    `yaml:"themes"`
	Auth        AuthConfig     `yaml:"auth"`
	HTTP        HTTPConfig     `yaml:"http"`
	Public      PublicConfig   `yaml:"public"`
	Media       MediaConfig    `yaml:"media"`
	Identity    IdentityConfig `yaml:"identity"`
	Activity    ActivityConfig `yaml:"activity"`
	Commands    CommandsConfig `yaml:"commands"`
}

// StorageConfig selects the database.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig toggles the repository cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LoggingConfig selects the logging provider.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// RenderConfig controls page rendering. A nil Strict follows the environment:
// strict in development, lenient in production.
type RenderConfig struct {
	Strict *bool `yaml:"strict"`
}

// ThemeConfig points the renderer at go-theme manifests.
type ThemeConfig struct {
	BasePath       string `yaml:"base_path"`
	DefaultTheme   string `yaml:"default_theme"`
	DefaultVariant string `yaml:"default_variant"`
	CSSPrefix      string `yaml:"css_prefix"`
}

// AuthConfig configures bearer tokens for the admin API.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// HTTPConfig configures the HTTP surface.
type HTTPConfig struct {
	Addr         string `yaml:"addr"`
	APIPrefix    string `yaml:"api_prefix"`
	PublicPrefix string `yaml:"public_prefix"`
}

// PublicConfig configures links handed to visitors.
type PublicConfig struct {
	BaseURL string `yaml:"base_url"`
}

// MediaConfig selects how stored media keys become URLs.
type MediaConfig struct {
	Provider        string `yaml:"provider"`
	BaseURL         string `yaml:"base_url"`
	PrimaryBucket   string `yaml:"primary_bucket"`
	FallbackBucket  string `yaml:"fallback_bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	EmulatorHost    string `yaml:"emulator_host"`
}

// IdentityConfig controls portfolio id generation.
type IdentityConfig struct {
	Deterministic bool   `yaml:"deterministic"`
	Key           string `yaml:"key"`
}

// ActivityConfig toggles activity events.
type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
}

// CommandsConfig configures command handlers.
type CommandsConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return Config{
		Environment: EnvironmentDevelopment,
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:portfolio.db?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
		Themes: ThemeConfig{
			BasePath:  "themes",
			CSSPrefix: "pf",
		},
		Auth: AuthConfig{
			Issuer:   "go-portfolio",
			TokenTTL: 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			APIPrefix:    "/api",
			PublicPrefix: "/p",
		},
		Public: PublicConfig{
			BaseURL: "http://localhost:8080",
		},
		Media: MediaConfig{
			Provider: "static",
			BaseURL:  "http://localhost:8080/media",
		},
		Activity: ActivityConfig{
			Channel: "portfolio",
		},
		Commands: CommandsConfig{
			Enabled:    true,
			MaxRetries: 0,
			Timeout:    10 * time.Second,
		},
	}
}

// StrictRendering reports whether a missing section renderer should fail the page.
func (cfg Config) StrictRendering() bool {
	if cfg.Render.Strict != nil {
		return *cfg.Render.Strict
	}
	return normalize(cfg.Environment) != EnvironmentProduction
}

// Validate checks the configuration for inconsistent values.
func (cfg Config) Validate() error {
	switch normalize(cfg.Environment) {
	case "", EnvironmentDevelopment, EnvironmentProduction:
	default:
		return fmt.Errorf("%w: %s", ErrEnvironmentInvalid, cfg.Environment)
	}

	switch driver := normalize(cfg.Storage.Driver); driver {
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	case "memory":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if err := cfg.Logging.validate(); err != nil {
		return err
	}

	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.Secret) == "" {
		return ErrAuthSecretRequired
	}

	if raw := strings.TrimSpace(cfg.Public.BaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrPublicBaseURLInvalid, raw)
		}
	}

	switch provider := normalize(cfg.Media.Provider); provider {
	case "", "static":
	case "gcs":
		if strings.TrimSpace(cfg.Media.PrimaryBucket) == "" {
			return ErrMediaBucketRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrMediaProviderUnknown, provider)
	}

	if cfg.Identity.Deterministic && strings.TrimSpace(cfg.Identity.Key) == "" {
		return ErrIdentityKeyRequired
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandRetriesInvalid
	}
	return nil
}

func (cfg LoggingConfig) validate() error {
	provider := normalize(cfg.Provider)
	switch provider {
	case "", "none":
		return nil
	case "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	switch normalize(cfg.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Level)
	}
	switch normalize(cfg.Format) {
	case "", "json", "console", "pretty":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, cfg.Format)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
