package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/render"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// PageRenderer renders a portfolio for a surface.
type PageRenderer interface {
	Render(ctx context.Context, portfolio *portfolios.Portfolio, surface render.Surface) (*render.Page, error)
}

// Authenticator guards admin routes.
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// AdminAPI registers the portfolio editing endpoints.
type AdminAPI struct {
	basePath   string
	portfolios portfolios.Service
	renderer   PageRenderer
	auth       Authenticator
	logger     interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPortfolioService wires the portfolio service.
func WithPortfolioService(service portfolios.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.portfolios = service
		}
	}
}

// WithRenderer wires the page renderer used by the preview endpoint.
func WithRenderer(renderer PageRenderer) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.renderer = renderer
		}
	}
}

// WithAuthenticator requires bearer tokens on every admin route.
func WithAuthenticator(auth Authenticator) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.auth = auth
		}
	}
}

func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if api != nil && logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := routePath(api.basePath, "")

	api.registerSectionRoutes(mux, base)
	api.registerPortfolioRoutes(mux, base)

	return nil
}

func (api *AdminAPI) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	var h http.Handler = handler
	if api.auth != nil {
		h = api.auth.Middleware(h)
	}
	mux.Handle(pattern, h)
}

func (api *AdminAPI) available(w http.ResponseWriter) bool {
	if api == nil || api.portfolios == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return false
	}
	return true
}
