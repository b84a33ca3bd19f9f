package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"environment", func(c *runtimeconfig.Config) { c.Environment = "staging" }, runtimeconfig.ErrEnvironmentInvalid},
		{"driver", func(c *runtimeconfig.Config) { c.Storage.Driver = "mysql" }, runtimeconfig.ErrStorageDriverUnknown},
		{"dsn", func(c *runtimeconfig.Config) { c.Storage.DSN = " " }, runtimeconfig.ErrStorageDSNRequired},
		{"ttl", func(c *runtimeconfig.Config) { c.Cache.DefaultTTL = -time.Second }, runtimeconfig.ErrCacheTTLInvalid},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) { c.Logging.Format = "xml" }, runtimeconfig.ErrLoggingFormatInvalid},
		{"auth secret", func(c *runtimeconfig.Config) { c.Auth.Enabled = true }, runtimeconfig.ErrAuthSecretRequired},
		{"base url", func(c *runtimeconfig.Config) { c.Public.BaseURL = "/relative" }, runtimeconfig.ErrPublicBaseURLInvalid},
		{"media provider", func(c *runtimeconfig.Config) { c.Media.Provider = "s3" }, runtimeconfig.ErrMediaProviderUnknown},
		{"media bucket", func(c *runtimeconfig.Config) { c.Media.Provider = "gcs" }, runtimeconfig.ErrMediaBucketRequired},
		{"identity key", func(c *runtimeconfig.Config) { c.Identity.Deterministic = true }, runtimeconfig.ErrIdentityKeyRequired},
		{"retries", func(c *runtimeconfig.Config) { c.Commands.MaxRetries = -1 }, runtimeconfig.ErrCommandRetriesInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStrictRenderingFollowsEnvironment(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if !cfg.StrictRendering() {
		t.Fatal("expected development to render strictly")
	}

	cfg.Environment = runtimeconfig.EnvironmentProduction
	if cfg.StrictRendering() {
		t.Fatal("expected production to skip missing renderers")
	}

	strict := true
	cfg.Render.Strict = &strict
	if !cfg.StrictRendering() {
		t.Fatal("expected explicit strict flag to win")
	}
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := runtimeconfig.Parse([]byte(`
environment: production
storage:
  driver: postgres
  dsn: postgres://portfolio@localhost/portfolio
cache:
  default_ttl: 5m
media:
  provider: gcs
  primary_bucket: portfolio-media
  fallback_bucket: public-uploads
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Cache.DefaultTTL != 5*time.Minute {
		t.Fatalf("unexpected storage/cache: %+v %+v", cfg.Storage, cfg.Cache)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Logging.Provider != "gologger" {
		t.Fatalf("expected defaults preserved, got %+v %+v", cfg.HTTP, cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(runtimeconfig.EnvAuthSecret, "s3cr3t")
	t.Setenv(runtimeconfig.EnvStrict, "false")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Auth.Enabled || cfg.Auth.Secret != "s3cr3t" {
		t.Fatalf("expected auth from env, got %+v", cfg.Auth)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from file, got %q", cfg.Logging.Level)
	}
	if cfg.StrictRendering() {
		t.Fatal("expected strict override from env")
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
