package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/render"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// PublicSite serves published portfolios to visitors.
type PublicSite struct {
	prefix     string
	portfolios portfolios.Service
	renderer   PageRenderer
	logger     interfaces.Logger
}

// NewPublicSite builds the visitor facing handler. prefix defaults to "/p".
func NewPublicSite(service portfolios.Service, renderer PageRenderer, prefix string, logger interfaces.Logger) *PublicSite {
	if strings.TrimSpace(prefix) == "" {
		prefix = "/p"
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &PublicSite{prefix: prefix, portfolios: service, renderer: renderer, logger: logger}
}

// Register attaches GET {prefix}/{slug}.
func (s *PublicSite) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if s == nil || s.portfolios == nil || s.renderer == nil {
		return fmt.Errorf("http: public site requires portfolios and renderer")
	}
	mux.HandleFunc("GET "+routePath(s.prefix, "{slug}"), s.handlePage)
	return nil
}

func (s *PublicSite) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		http.NotFound(w, r)
		return
	}
	record, err := s.portfolios.GetPublished(r.Context(), slug)
	if err != nil {
		status, _ := mapError(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("http.public.load_failed", "slug", slug, "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	page, err := s.renderer.Render(r.Context(), record, render.SurfacePublic)
	if err != nil {
		s.logger.Error("http.public.render_failed", "slug", slug, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, page.HTML)
}
