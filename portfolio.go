package portfolio

import (
	"context"
	"errors"
	"net/http"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/commands"
	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/di"
	porthttp "github.com/goliatone/go-portfolio/internal/http"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/render"
	"github.com/goliatone/go-portfolio/internal/sections"
)

// Service exports the portfolio service contract.
type Service = portfolios.Service

// Portfolio exports the stored portfolio record.
type Portfolio = portfolios.Portfolio

// Renderer exports the page renderer.
type Renderer = *render.Dispatcher

// Importer exports the markdown importer.
type Importer = *markdown.Importer

// Registry exports the section catalog.
type Registry = *sections.Registry

// Module represents the top level portfolio runtime facade.
type Module struct {
	container *di.Container
	ownedDB   *bun.DB
}

// New constructs a portfolio module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Open connects to the configured database and constructs the module around
// it. The connection is closed by Module.Close.
func Open(cfg Config, opts ...di.Option) (*Module, error) {
	db, err := di.OpenDatabase(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if db != nil {
		opts = append(opts, di.WithBunDB(db))
	}
	module, err := New(cfg, opts...)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	module.ownedDB = db
	return module, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Portfolios returns the portfolio service.
func (m *Module) Portfolios() Service {
	return m.container.PortfolioService()
}

// Renderer returns the page renderer shared by the public and preview surfaces.
func (m *Module) Renderer() Renderer {
	return m.container.Renderer()
}

// Importer returns the markdown importer.
func (m *Module) Importer() Importer {
	return m.container.MarkdownImporter()
}

// Registry returns the section catalog.
func (m *Module) Registry() Registry {
	return m.container.Registry()
}

// Authenticator returns the bearer token authenticator, nil when auth is disabled.
func (m *Module) Authenticator() *auth.Authenticator {
	return m.container.Authenticator()
}

// Handler mounts the admin API and the public pages on a new mux.
func (m *Module) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// Register mounts the admin API and the public pages on mux.
func (m *Module) Register(mux *http.ServeMux) error {
	cfg := m.container.Config
	opts := []porthttp.AdminOption{
		porthttp.WithBasePath(cfg.HTTP.APIPrefix),
		porthttp.WithPortfolioService(m.Portfolios()),
		porthttp.WithRenderer(m.Renderer()),
		porthttp.WithLogger(m.container.Logger("http")),
	}
	if authenticator := m.container.Authenticator(); authenticator != nil {
		opts = append(opts, porthttp.WithAuthenticator(authenticator))
	}
	if err := porthttp.NewAdminAPI(opts...).Register(mux); err != nil {
		return err
	}
	return porthttp.NewPublicSite(m.Portfolios(), m.Renderer(), cfg.HTTP.PublicPrefix, m.container.Logger("public")).Register(mux)
}

// RegisterCommands builds the command handlers and wires them into opts.
func (m *Module) RegisterCommands(opts commands.RegistrationOptions) (*commands.RegistrationResult, error) {
	return commands.RegisterContainerCommands(m.container, opts)
}

// Close releases clients opened by the module. A database handle passed in
// through di.WithBunDB stays open; one opened by Open is closed.
func (m *Module) Close(context.Context) error {
	err := m.container.Close()
	if m.ownedDB != nil {
		err = errors.Join(err, m.ownedDB.Close())
		m.ownedDB = nil
	}
	return err
}
