package render

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/sections"
)

func newPortfolio() *portfolios.Portfolio {
	return &portfolios.Portfolio{
		ID:      uuid.MustParse("8f5c2e64-0d1a-4f43-9a2e-4b7a6a5d2c11"),
		OwnerID: uuid.New(),
		Slug:    "night-owls",
		Title:   "Night Owls",
		Status:  portfolios.StatusPublished,
		SectionsConfig: sections.Overrides{
			"gallery": {Title: sections.String("Live Shots"), Extra: map[string]any{"columns": 4}},
			"press":   {Enabled: sections.Bool(false)},
		},
		Content: map[string]any{
			"hero_title":    "Night Owls",
			"hero_subtitle": "Loud after midnight",
			"about_text":    "We play **loud** music.\n\n<script>alert(1)</script>",
			"gallery_json": []any{
				map[string]any{"image": "shows/berlin.jpg", "caption": "Berlin"},
				map[string]any{"image": "shows/missing.jpg", "caption": "Lost"},
			},
			"contact_email": "mailto:band@example.com",
		},
	}
}

type fakeResolver struct {
	urls map[string]string
}

func (f fakeResolver) ResolveURL(_ context.Context, reference string) (string, error) {
	if media.IsAbsolute(reference) {
		return reference, nil
	}
	if url, ok := f.urls[reference]; ok {
		return url, nil
	}
	return "", media.ErrObjectNotFound
}

type failingLoader struct{}

func (failingLoader) Load(string) (*gotheme.Manifest, error) {
	return nil, errors.New("manifest unreadable")
}

func mustDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(opts...)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func TestRenderPublicAndPreviewShareSections(t *testing.T) {
	ctx := context.Background()
	d := mustDispatcher(t)
	portfolio := newPortfolio()

	public, err := d.Render(ctx, portfolio, SurfacePublic)
	if err != nil {
		t.Fatalf("render public: %v", err)
	}
	preview, err := d.Render(ctx, portfolio, SurfacePreview)
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}

	if len(public.Sections) != len(preview.Sections) {
		t.Fatalf("section count differs: %d vs %d", len(public.Sections), len(preview.Sections))
	}
	for i := range public.Sections {
		if public.Sections[i].ID != preview.Sections[i].ID || public.Sections[i].Title != preview.Sections[i].Title {
			t.Fatalf("section %d differs: %+v vs %+v", i, public.Sections[i], preview.Sections[i])
		}
	}

	expected := sections.Resolve(sections.DefaultRegistry(), portfolio.SectionsConfig)
	ids := public.SectionIDs()
	if len(ids) != len(expected) {
		t.Fatalf("expected %d sections, got %v", len(expected), ids)
	}
	for i, section := range expected {
		if ids[i] != section.ID {
			t.Fatalf("expected %s at %d, got %s", section.ID, i, ids[i])
		}
	}
	for _, id := range ids {
		if id == sections.Press {
			t.Fatalf("disabled section rendered")
		}
	}
	if !strings.Contains(public.HTML, "Live Shots") {
		t.Fatalf("expected overridden gallery title in output")
	}
}

func TestRenderPreviewAddsEditAffordances(t *testing.T) {
	ctx := context.Background()
	d := mustDispatcher(t)
	portfolio := newPortfolio()

	public, err := d.Render(ctx, portfolio, SurfacePublic)
	if err != nil {
		t.Fatalf("render public: %v", err)
	}
	preview, err := d.Render(ctx, portfolio, SurfacePreview)
	if err != nil {
		t.Fatalf("render preview: %v", err)
	}

	if strings.Contains(public.HTML, "data-edit-section") || strings.Contains(public.HTML, `data-preview="true"`) {
		t.Fatalf("public output should not carry editor markup")
	}
	if !strings.Contains(preview.HTML, `data-edit-section="hero"`) {
		t.Fatalf("expected edit marker for hero in preview")
	}
	if !strings.Contains(preview.HTML, `data-preview="true"`) {
		t.Fatalf("expected preview banner")
	}
	want := "http://localhost:8080/api/portfolios/" + portfolio.ID.String() + "/preview"
	if preview.PreviewURL != want {
		t.Fatalf("expected preview url %q, got %q", want, preview.PreviewURL)
	}
}

func TestRenderCanonicalURL(t *testing.T) {
	d := mustDispatcher(t)
	page, err := d.Render(context.Background(), newPortfolio(), SurfacePublic)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.CanonicalURL != "http://localhost:8080/p/night-owls" {
		t.Fatalf("unexpected canonical url %q", page.CanonicalURL)
	}
	if !strings.Contains(page.HTML, `rel="canonical" href="http://localhost:8080/p/night-owls"`) {
		t.Fatalf("expected canonical link in layout")
	}

	custom := mustDispatcher(t, WithURLs(NewURLBuilder(URLConfig{BaseURL: "https://bands.example.com/", PublicPrefix: "artists"})))
	page, err = custom.Render(context.Background(), newPortfolio(), SurfacePublic)
	if err != nil {
		t.Fatalf("render custom: %v", err)
	}
	if page.CanonicalURL != "https://bands.example.com/artists/night-owls" {
		t.Fatalf("unexpected custom canonical url %q", page.CanonicalURL)
	}
}

func TestRenderMarkdownAbout(t *testing.T) {
	d := mustDispatcher(t)
	page, err := d.Render(context.Background(), newPortfolio(), SurfacePublic)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(page.HTML, "<strong>loud</strong>") {
		t.Fatalf("expected markdown emphasis in about section")
	}
	if strings.Contains(page.HTML, "<script>alert(1)</script>") {
		t.Fatalf("raw html must not pass through")
	}
}

func TestRenderResolvesMedia(t *testing.T) {
	resolver := fakeResolver{urls: map[string]string{
		"shows/berlin.jpg": "https://cdn.example.com/shows/berlin.jpg",
	}}
	d := mustDispatcher(t, WithMediaResolver(resolver))
	page, err := d.Render(context.Background(), newPortfolio(), SurfacePublic)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(page.HTML, `src="https://cdn.example.com/shows/berlin.jpg"`) {
		t.Fatalf("expected resolved gallery image")
	}
	if strings.Contains(page.HTML, "missing.jpg") || strings.Contains(page.HTML, "Lost") {
		t.Fatalf("unresolved image should be dropped")
	}
	if !strings.Contains(page.HTML, `href="mailto:band@example.com"`) {
		t.Fatalf("expected contact email link")
	}
}

func TestRenderMissingRenderer(t *testing.T) {
	registry := sections.MustNewRegistry(
		sections.DefaultDefinitions()[0],
		sections.Definition{ID: "guestbook", DefaultName: "Guestbook", DefaultOrder: 1, DefaultEnabled: true},
	)
	portfolio := newPortfolio()

	lenient := mustDispatcher(t, WithRegistry(registry))
	page, err := lenient.Render(context.Background(), portfolio, SurfacePublic)
	if err != nil {
		t.Fatalf("lenient render: %v", err)
	}
	ids := page.SectionIDs()
	if len(ids) != 1 || ids[0] != sections.Hero {
		t.Fatalf("expected guestbook skipped, got %v", ids)
	}

	strict := mustDispatcher(t, WithRegistry(registry), WithStrict(true))
	if _, err := strict.Render(context.Background(), portfolio, SurfacePublic); !errors.Is(err, ErrRendererMissing) {
		t.Fatalf("expected missing renderer error, got %v", err)
	}
}

func TestRenderThemeFailure(t *testing.T) {
	portfolio := newPortfolio()
	portfolio.ThemeName = "neon"
	themes := NewThemeSelector(ThemeConfig{BasePath: "themes"}, failingLoader{})

	lenient := mustDispatcher(t, WithThemes(themes))
	page, err := lenient.Render(context.Background(), portfolio, SurfacePublic)
	if err != nil {
		t.Fatalf("lenient render: %v", err)
	}
	if page.Theme.Name != "" || len(page.Sections) == 0 {
		t.Fatalf("expected built-in styles fallback, got %+v", page.Theme)
	}

	strict := mustDispatcher(t, WithThemes(themes), WithStrict(true))
	if _, err := strict.Render(context.Background(), portfolio, SurfacePublic); err == nil {
		t.Fatalf("expected strict theme failure")
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	d := mustDispatcher(t)
	if _, err := d.Render(context.Background(), nil, SurfacePublic); !errors.Is(err, ErrPortfolioRequired) {
		t.Fatalf("expected portfolio required, got %v", err)
	}
	if _, err := d.Render(context.Background(), newPortfolio(), Surface("print")); !errors.Is(err, ErrSurfaceInvalid) {
		t.Fatalf("expected invalid surface, got %v", err)
	}
}

func TestThemeContextCSSDropsUnsafeValues(t *testing.T) {
	ctx := ThemeContext{CSSVars: map[string]string{
		"color-bg":     "#000",
		"--color-fg":   "#fff",
		"color-inject": "red;}</style><script>",
	}}
	css := ctx.CSS()
	if css != ":root{--color-fg:#fff;--color-bg:#000;}" {
		t.Fatalf("unexpected css %q", css)
	}
	if (ThemeContext{}).CSS() != "" {
		t.Fatalf("expected empty css without variables")
	}
}

func TestRenderUsesDecodedViewOptions(t *testing.T) {
	ctx := context.Background()
	svc := portfolios.NewService(portfolios.NewMemoryPortfolioRepository())
	owner := uuid.New()
	created, err := svc.Create(ctx, portfolios.CreateRequest{OwnerID: owner, Title: "Night Owls"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	decoder := json.NewDecoder(strings.NewReader(`{"columns":4}`))
	decoder.UseNumber()
	var options map[string]any
	if err := decoder.Decode(&options); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	updated, err := svc.UpdateSection(ctx, portfolios.UpdateSectionRequest{
		ID:      created.ID,
		ActorID: owner,
		Section: sections.Gallery,
		Options: options,
	})
	if err != nil {
		t.Fatalf("update section: %v", err)
	}

	page, err := mustDispatcher(t).Render(ctx, updated, SurfacePreview)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(page.HTML, `data-columns="4"`) {
		t.Fatalf("expected stored column option in gallery markup")
	}
}

func TestViewIntAcceptsJSONNumbers(t *testing.T) {
	view := map[string]any{"columns": json.Number("5"), "rows": json.Number("2.5")}
	if got := viewInt(view, "columns", 3); got != 5 {
		t.Fatalf("expected 5 columns, got %d", got)
	}
	if got := viewInt(view, "rows", 1); got != 1 {
		t.Fatalf("expected fallback for non-integer number, got %d", got)
	}
}
