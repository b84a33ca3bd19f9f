package portfolio

import "github.com/goliatone/go-portfolio/internal/runtimeconfig"

var (
	ErrEnvironmentInvalid     = runtimeconfig.ErrEnvironmentInvalid
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrAuthSecretRequired     = runtimeconfig.ErrAuthSecretRequired
	ErrMediaProviderUnknown   = runtimeconfig.ErrMediaProviderUnknown
)

type (
	Config         = runtimeconfig.Config
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	RenderConfig   = runtimeconfig.RenderConfig
	ThemeConfig    = runtimeconfig.ThemeConfig
	AuthConfig     = runtimeconfig.AuthConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	PublicConfig   = runtimeconfig.PublicConfig
	MediaConfig    = runtimeconfig.MediaConfig
	IdentityConfig = runtimeconfig.IdentityConfig
	ActivityConfig = runtimeconfig.ActivityConfig
	CommandsConfig = runtimeconfig.CommandsConfig
)

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file and applies PORTFOLIO_* environment overrides.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
