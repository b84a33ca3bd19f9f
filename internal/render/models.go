package render

import (
	"context"
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
)

type fieldReader struct {
	content map[string]any
}

func (r fieldReader) text(name string) string {
	value, ok := r.content[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func (r fieldReader) flag(name string) bool {
	value, _ := r.content[name].(bool)
	return value
}

// list returns structured list items as maps. Non-object entries are skipped.
func (r fieldReader) list(name string) []map[string]any {
	raw, ok := r.content[name].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}

type heroModel struct {
	Heading  string
	Subtitle string
	ImageURL string
	CTALabel string
	CTAURL   string
}

func (d *Dispatcher) heroModel(ctx context.Context, c fieldReader) heroModel {
	return heroModel{
		Heading:  c.text("hero_title"),
		Subtitle: c.text("hero_subtitle"),
		ImageURL: d.mediaURL(ctx, c.text("hero_image_url")),
		CTALabel: c.text("hero_cta_label"),
		CTAURL:   d.mediaURL(ctx, c.text("hero_cta_url")),
	}
}

type aboutModel struct {
	Body     template.HTML
	ImageURL string
}

func (d *Dispatcher) aboutModel(ctx context.Context, c fieldReader) aboutModel {
	return aboutModel{
		Body:     d.markdownHTML(c.text("about_text")),
		ImageURL: d.mediaURL(ctx, c.text("about_image_url")),
	}
}

type tracksModel struct {
	Intro template.HTML
	Items []map[string]any
}

func (d *Dispatcher) tracksModel(c fieldReader) tracksModel {
	return tracksModel{
		Intro: d.markdownHTML(c.text("tracks_intro")),
		Items: c.list("tracks_json"),
	}
}

type galleryImage struct {
	URL     string
	Caption string
}

type galleryModel struct {
	Columns int
	Images  []galleryImage
}

func (d *Dispatcher) galleryModel(ctx context.Context, c fieldReader, view map[string]any) galleryModel {
	model := galleryModel{Columns: viewInt(view, "columns", 3)}
	for _, item := range c.list("gallery_json") {
		image, _ := item["image"].(string)
		url := d.mediaURL(ctx, image)
		if url == "" {
			continue
		}
		caption, _ := item["caption"].(string)
		model.Images = append(model.Images, galleryImage{URL: url, Caption: caption})
	}
	return model
}

type listModel struct {
	Items []map[string]any
}

type sponsor struct {
	Name    string
	LogoURL string
	URL     string
}

type sponsorsModel struct {
	Sponsors []sponsor
}

func (d *Dispatcher) sponsorsModel(ctx context.Context, c fieldReader) sponsorsModel {
	var model sponsorsModel
	for _, item := range c.list("sponsors_json") {
		name, _ := item["name"].(string)
		logo, _ := item["logo"].(string)
		link, _ := item["url"].(string)
		model.Sponsors = append(model.Sponsors, sponsor{
			Name:    name,
			LogoURL: d.mediaURL(ctx, logo),
			URL:     link,
		})
	}
	return model
}

type contactModel struct {
	Email       string
	Phone       string
	FormEnabled bool
	BookingURL  string
}

func (d *Dispatcher) contactModel(ctx context.Context, c fieldReader) contactModel {
	return contactModel{
		Email:       strings.TrimPrefix(c.text("contact_email"), "mailto:"),
		Phone:       c.text("contact_phone"),
		FormEnabled: c.flag("contact_form_enabled"),
		BookingURL:  d.mediaURL(ctx, c.text("booking_url")),
	}
}

type footerModel struct {
	Text  string
	Links []map[string]any
}

func viewInt(view map[string]any, key string, fallback int) int {
	switch value := view[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case json.Number:
		if parsed, err := value.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
