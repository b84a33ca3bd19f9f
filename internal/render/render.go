package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	ErrRendererMissing   = errors.New("render: no renderer for section")
	ErrPortfolioRequired = errors.New("render: portfolio is required")
	ErrSurfaceInvalid    = errors.New("render: surface must be public or preview")
)

// Surface selects between the visitor page and the editor preview.
type Surface string

const (
	SurfacePublic  Surface = "public"
	SurfacePreview Surface = "preview"
)

func (s Surface) Valid() bool {
	return s == SurfacePublic || s == SurfacePreview
}

// Section is one rendered section.
type Section struct {
	ID       sections.ID
	Title    string
	ViewType string
	HTML     template.HTML
}

// Page is a fully rendered portfolio.
type Page struct {
	Title        string
	Slug         string
	Surface      Surface
	CanonicalURL string
	PreviewURL   string
	Theme        ThemeContext
	Sections     []Section
	HTML         string
}

// SectionIDs lists the rendered sections in page order.
func (p *Page) SectionIDs() []sections.ID {
	ids := make([]sections.ID, 0, len(p.Sections))
	for _, section := range p.Sections {
		ids = append(ids, section.ID)
	}
	return ids
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStrict makes missing renderers fail the page instead of being skipped.
func WithStrict(strict bool) Option {
	return func(d *Dispatcher) { d.strict = strict }
}

func WithLogger(logger interfaces.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithRegistry(registry *sections.Registry) Option {
	return func(d *Dispatcher) {
		if registry != nil {
			d.registry = registry
		}
	}
}

func WithMediaResolver(resolver interfaces.MediaResolver) Option {
	return func(d *Dispatcher) { d.media = resolver }
}

func WithMarkdown(renderer *markdown.Renderer) Option {
	return func(d *Dispatcher) {
		if renderer != nil {
			d.markdown = renderer
		}
	}
}

func WithThemes(selector *ThemeSelector) Option {
	return func(d *Dispatcher) { d.themes = selector }
}

func WithURLs(builder *URLBuilder) Option {
	return func(d *Dispatcher) {
		if builder != nil {
			d.urls = builder
		}
	}
}

// Dispatcher renders portfolios section by section.
type Dispatcher struct {
	registry  *sections.Registry
	templates *template.Template
	markdown  *markdown.Renderer
	media     interfaces.MediaResolver
	themes    *ThemeSelector
	urls      *URLBuilder
	logger    interfaces.Logger
	strict    bool
}

// NewDispatcher parses the embedded templates and applies opts.
func NewDispatcher(opts ...Option) (*Dispatcher, error) {
	tmpl, err := template.New("portfolio").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	d := &Dispatcher{
		registry:  sections.DefaultRegistry(),
		templates: tmpl,
		markdown:  markdown.NewRenderer(markdown.Options{}),
		urls:      NewURLBuilder(URLConfig{}),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Strict reports whether missing renderers are errors.
func (d *Dispatcher) Strict() bool {
	return d.strict
}

// Render produces the page for surface. Preview and public output share the
// same section ids, order and titles; preview only adds edit affordances.
func (d *Dispatcher) Render(ctx context.Context, portfolio *portfolios.Portfolio, surface Surface) (*Page, error) {
	if portfolio == nil {
		return nil, ErrPortfolioRequired
	}
	if !surface.Valid() {
		return nil, ErrSurfaceInvalid
	}
	logger := logging.WithPortfolio(d.logger, portfolio.ID.String(), "")

	page := &Page{
		Title:   portfolio.Title,
		Slug:    portfolio.Slug,
		Surface: surface,
	}
	if canonical, err := d.urls.PublicURL(portfolio.Slug); err == nil {
		page.CanonicalURL = canonical
	} else {
		logger.Warn("render.url.failed", "route", routePublic, "error", err)
	}
	if surface == SurfacePreview {
		if preview, err := d.urls.PreviewURL(portfolio.ID.String()); err == nil {
			page.PreviewURL = preview
		}
	}

	theme, err := d.themes.Select(portfolio.ThemeName, portfolio.ThemeVariant)
	if err != nil {
		if d.strict {
			return nil, err
		}
		logger.Warn("render.theme.failed", "theme", portfolio.ThemeName, "error", err)
		theme = ThemeContext{}
	}
	page.Theme = theme

	for _, resolved := range sections.Resolve(d.registry, portfolio.SectionsConfig) {
		def, _ := d.registry.GetDefinition(resolved.ID)
		section, err := d.renderSection(ctx, resolved, portfolio.SectionContent(def), surface)
		if err != nil {
			if d.strict {
				return nil, err
			}
			logging.WithPortfolio(d.logger, portfolio.ID.String(), string(resolved.ID)).
				Warn("render.section.skipped", "error", err)
			continue
		}
		page.Sections = append(page.Sections, section)
	}

	var buf bytes.Buffer
	if err := d.templates.ExecuteTemplate(&buf, "layout", layoutData{
		Page:     page,
		Preview:  surface == SurfacePreview,
		ThemeCSS: template.CSS(theme.CSS()),
	}); err != nil {
		return nil, fmt.Errorf("render: layout: %w", err)
	}
	page.HTML = buf.String()
	return page, nil
}

type layoutData struct {
	Page     *Page
	Preview  bool
	ThemeCSS template.CSS
}

type sectionData struct {
	ID       sections.ID
	Title    string
	ViewType string
	View     map[string]any
	Preview  bool
	Model    any
}

func (d *Dispatcher) renderSection(ctx context.Context, resolved sections.Resolved, content map[string]any, surface Surface) (Section, error) {
	name, model, err := d.dispatch(ctx, resolved, content)
	if err != nil {
		return Section{}, err
	}
	var buf bytes.Buffer
	data := sectionData{
		ID:       resolved.ID,
		Title:    resolved.Title,
		ViewType: resolved.ViewType(),
		View:     resolved.View,
		Preview:  surface == SurfacePreview,
		Model:    model,
	}
	if err := d.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Section{}, fmt.Errorf("render: section %s: %w", resolved.ID, err)
	}
	return Section{
		ID:       resolved.ID,
		Title:    resolved.Title,
		ViewType: resolved.ViewType(),
		HTML:     template.HTML(buf.String()),
	}, nil
}

// dispatch maps a section id to its template and view model. Every id in the
// built-in catalog has a case.
func (d *Dispatcher) dispatch(ctx context.Context, resolved sections.Resolved, content map[string]any) (string, any, error) {
	c := fieldReader{content: content}
	switch resolved.ID {
	case sections.Hero:
		return "section.hero", d.heroModel(ctx, c), nil
	case sections.About:
		return "section.about", d.aboutModel(ctx, c), nil
	case sections.Tracks:
		return "section.tracks", d.tracksModel(c), nil
	case sections.Gallery:
		return "section.gallery", d.galleryModel(ctx, c, resolved.View), nil
	case sections.Press:
		return "section.press", listModel{Items: c.list("press_json")}, nil
	case sections.Skills:
		return "section.skills", listModel{Items: c.list("skills_json")}, nil
	case sections.Testimonials:
		return "section.testimonials", listModel{Items: c.list("testimonials_json")}, nil
	case sections.Hobbies:
		return "section.hobbies", listModel{Items: c.list("hobbies_json")}, nil
	case sections.Sponsors:
		return "section.sponsors", d.sponsorsModel(ctx, c), nil
	case sections.Contact:
		return "section.contact", d.contactModel(ctx, c), nil
	case sections.Footer:
		return "section.footer", footerModel{Text: c.text("footer_text"), Links: c.list("social_links_json")}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrRendererMissing, resolved.ID)
	}
}

func (d *Dispatcher) markdownHTML(source string) template.HTML {
	out, err := d.markdown.Render(source)
	if err != nil {
		d.logger.Warn("render.markdown.failed", "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	// goldmark output has raw HTML disabled.
	return template.HTML(out)
}

// mediaURL resolves storage keys. Lookup failures drop the image rather than
// the page.
func (d *Dispatcher) mediaURL(ctx context.Context, reference string) string {
	reference = strings.TrimSpace(reference)
	if reference == "" || d.media == nil {
		return reference
	}
	resolved, err := d.media.ResolveURL(ctx, reference)
	if err != nil {
		d.logger.Warn("render.media.unresolved", "reference", reference, "error", err)
		return ""
	}
	return resolved
}

var templateFuncs = template.FuncMap{
	"field": func(item map[string]any, key string) string {
		if item == nil {
			return ""
		}
		value, ok := item[key]
		if !ok || value == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(value))
	},
	"dashed": func(v string) string {
		return strings.ReplaceAll(strings.ToLower(v), " ", "-")
	},
}
