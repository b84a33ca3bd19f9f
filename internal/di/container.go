package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/identity"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/logging/gologger"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/render"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/activity"
	"github.com/goliatone/go-portfolio/pkg/activity/usersink"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	registry      *sections.Registry
	portfolioRepo portfolios.PortfolioRepository
	activityHooks activity.Hooks
	activitySink  interfaces.ActivitySink
	emitter       *activity.Emitter

	mediaResolver interfaces.MediaResolver
	gcsClient     *storage.Client
	themeLoader   render.ManifestLoader

	portfolioSvc  portfolios.Service
	renderer      *render.Dispatcher
	authenticator *auth.Authenticator
	importer      *markdown.Importer
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB stores portfolios in db instead of memory.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRegistry replaces the built-in section catalog.
func WithRegistry(registry *sections.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithPortfolioRepository overrides the storage-backed repository.
func WithPortfolioRepository(repo portfolios.PortfolioRepository) Option {
	return func(c *Container) {
		c.portfolioRepo = repo
	}
}

// WithMediaResolver overrides the resolver selected by the media config.
func WithMediaResolver(resolver interfaces.MediaResolver) Option {
	return func(c *Container) {
		c.mediaResolver = resolver
	}
}

// WithThemeLoader overrides how go-theme manifests are read.
func WithThemeLoader(loader render.ManifestLoader) Option {
	return func(c *Container) {
		c.themeLoader = loader
	}
}

// WithActivityHooks adds hooks receiving portfolio activity.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithActivitySink forwards activity to a go-users sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithPortfolioService overrides the portfolio service.
func WithPortfolioService(svc portfolios.Service) Option {
	return func(c *Container) {
		c.portfolioSvc = svc
	}
}

// NewContainer validates cfg and builds every service it describes.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if c.registry == nil {
		c.registry = sections.DefaultRegistry()
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureActivity()
	if err := c.configureMedia(); err != nil {
		return nil, err
	}
	if err := c.configureAuth(); err != nil {
		return nil, err
	}

	if c.portfolioSvc == nil {
		serviceOpts := []portfolios.ServiceOption{
			portfolios.WithRegistry(c.registry),
			portfolios.WithLogger(c.Logger("portfolios")),
			portfolios.WithActivityEmitter(c.emitter),
		}
		if cfg.Identity.Deterministic {
			serviceOpts = append(serviceOpts, portfolios.WithIDGenerator(identity.Generator(cfg.Identity.Key)))
		}
		c.portfolioSvc = portfolios.NewService(c.portfolioRepo, serviceOpts...)
	}

	renderer, err := render.NewDispatcher(
		render.WithRegistry(c.registry),
		render.WithStrict(cfg.StrictRendering()),
		render.WithLogger(c.Logger("render")),
		render.WithMediaResolver(c.mediaResolver),
		render.WithThemes(render.NewThemeSelector(render.ThemeConfig{
			BasePath:       cfg.Themes.BasePath,
			DefaultTheme:   cfg.Themes.DefaultTheme,
			DefaultVariant: cfg.Themes.DefaultVariant,
			CSSPrefix:      cfg.Themes.CSSPrefix,
		}, c.themeLoader)),
		render.WithURLs(render.NewURLBuilder(render.URLConfig{
			BaseURL:      cfg.Public.BaseURL,
			PublicPrefix: cfg.HTTP.PublicPrefix,
			APIPrefix:    cfg.HTTP.APIPrefix,
		})),
	)
	if err != nil {
		return nil, err
	}
	c.renderer = renderer
	c.importer = markdown.NewImporter(c.portfolioSvc, c.Logger("markdown"))
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "", "none":
		return nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, c.Config.Logging.Provider)
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.Logger("di").Warn("di.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.portfolioRepo != nil {
		return
	}
	if c.bunDB == nil {
		c.portfolioRepo = portfolios.NewMemoryPortfolioRepository()
		return
	}
	if c.cacheService != nil {
		c.portfolioRepo = portfolios.NewBunPortfolioRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.portfolioRepo = portfolios.NewBunPortfolioRepository(c.bunDB)
}

func (c *Container) configureActivity() {
	hooks := append(activity.Hooks{}, c.activityHooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	logger := c.Logger("activity")
	hooks = append(hooks, activity.HookFunc(func(_ context.Context, event activity.Event) error {
		logger.Debug("portfolio.activity", "verb", event.Verb, "object_id", event.ObjectID, "actor_id", event.ActorID)
		return nil
	}))
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: c.Config.Activity.Enabled,
		Channel: c.Config.Activity.Channel,
	})
}

func (c *Container) configureMedia() error {
	if c.mediaResolver != nil {
		return nil
	}
	cfg := c.Config.Media
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "static":
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil
		}
		resolver, err := media.NewStaticResolver(cfg.BaseURL)
		if err != nil {
			return fmt.Errorf("di: media base url: %w", err)
		}
		c.mediaResolver = resolver
	case "gcs":
		client, err := media.NewGCSClient(context.Background(), media.GCSConfig{
			CredentialsFile: cfg.CredentialsFile,
			EmulatorHost:    cfg.EmulatorHost,
		})
		if err != nil {
			return err
		}
		c.gcsClient = client
		c.mediaResolver = media.NewBucketResolver(media.NewGCSLocator(client), media.BucketConfig{
			Primary:       cfg.PrimaryBucket,
			Fallback:      cfg.FallbackBucket,
			PublicBaseURL: cfg.BaseURL,
		}, c.Logger("media"))
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrMediaProviderUnknown, cfg.Provider)
	}
	return nil
}

func (c *Container) configureAuth() error {
	if !c.Config.Auth.Enabled {
		return nil
	}
	authenticator, err := auth.New(auth.Config{
		Secret:   c.Config.Auth.Secret,
		Issuer:   c.Config.Auth.Issuer,
		Audience: c.Config.Auth.Audience,
		TTL:      c.Config.Auth.TokenTTL,
	}, auth.WithLogger(c.Logger("auth")))
	if err != nil {
		return err
	}
	c.authenticator = authenticator
	return nil
}

// Logger returns a module logger from the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	if c == nil {
		return logging.NoOp()
	}
	return logging.ModuleLogger(c.loggerProvider, module)
}

// LoggerProvider returns the configured provider, which may be nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB returns the database handle, nil for in-memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// Registry returns the section catalog.
func (c *Container) Registry() *sections.Registry {
	return c.registry
}

// PortfolioService returns the portfolio service.
func (c *Container) PortfolioService() portfolios.Service {
	return c.portfolioSvc
}

// Renderer returns the page renderer.
func (c *Container) Renderer() *render.Dispatcher {
	return c.renderer
}

// MediaResolver returns the media resolver, nil when media keys are used as is.
func (c *Container) MediaResolver() interfaces.MediaResolver {
	return c.mediaResolver
}

// Authenticator returns the bearer token authenticator, nil when auth is disabled.
func (c *Container) Authenticator() *auth.Authenticator {
	return c.authenticator
}

// MarkdownImporter returns the importer backed by the portfolio service.
func (c *Container) MarkdownImporter() *markdown.Importer {
	return c.importer
}

// ActivityEmitter returns the emitter shared with the portfolio service.
func (c *Container) ActivityEmitter() *activity.Emitter {
	return c.emitter
}

// Close releases clients the container opened. The database is owned by the caller.
func (c *Container) Close() error {
	if c == nil || c.gcsClient == nil {
		return nil
	}
	err := c.gcsClient.Close()
	c.gcsClient = nil
	if err != nil {
		return errors.Join(errors.New("di: close storage client"), err)
	}
	return nil
}
