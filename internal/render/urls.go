package render

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	routeGroup     = "site"
	routePublic    = "portfolio"
	routePreview   = "preview"
	defaultBaseURL = "http://localhost:8080"
)

// URLConfig describes where portfolios are served.
type URLConfig struct {
	BaseURL      string
	PublicPrefix string
	APIPrefix    string
}

// URLBuilder builds canonical public and preview URLs through go-urlkit.
type URLBuilder struct {
	manager *urlkit.RouteManager
}

// NewURLBuilder registers the portfolio routes with a urlkit route manager.
func NewURLBuilder(cfg URLConfig) *URLBuilder {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	public := cleanPrefix(cfg.PublicPrefix, "/p")
	api := cleanPrefix(cfg.APIPrefix, "/api")

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroup,
				BaseURL: base,
				Paths: map[string]string{
					routePublic:  public + "/:slug",
					routePreview: api + "/portfolios/:id/preview",
				},
			},
		},
	})
	return &URLBuilder{manager: manager}
}

// PublicURL returns the canonical URL of a published portfolio.
func (b *URLBuilder) PublicURL(slug string) (string, error) {
	return b.build(routePublic, map[string]any{"slug": slug})
}

// PreviewURL returns the editor preview URL of a portfolio.
func (b *URLBuilder) PreviewURL(id string) (string, error) {
	return b.build(routePreview, map[string]any{"id": id})
}

func (b *URLBuilder) build(route string, params map[string]any) (url string, err error) {
	if b == nil || b.manager == nil {
		return "", fmt.Errorf("render: url builder not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("render: urlkit route %q: %v", route, rec)
		}
	}()
	builder := b.manager.Group(routeGroup).Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	return builder.Build()
}

func cleanPrefix(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		value = fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value
}
