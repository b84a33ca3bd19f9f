package sections

import "sync"

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the built-in section catalog.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = MustNewRegistry(DefaultDefinitions()...)
	})
	return defaultRegistry
}

// DefaultDefinitions lists the built-in sections in page order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:             Hero,
			DefaultName:    "Home",
			DefaultOrder:   0,
			DefaultEnabled: true,
			Home:           true,
			ViewTypes:      []string{"centered", "split"},
			DefaultView:    map[string]any{viewTypeKey: "centered"},
			Fields: []Field{
				{Name: "hero_title", Kind: FieldText, Label: "Headline"},
				{Name: "hero_subtitle", Kind: FieldText, Label: "Subtitle"},
				{Name: "hero_image_url", Kind: FieldURL, Label: "Background image"},
				{Name: "hero_cta_label", Kind: FieldText, Label: "Button label"},
				{Name: "hero_cta_url", Kind: FieldURL, Label: "Button link"},
			},
		},
		{
			ID:             About,
			DefaultName:    "About",
			DefaultOrder:   1,
			DefaultEnabled: true,
			ViewTypes:      []string{"text", "split"},
			DefaultView:    map[string]any{viewTypeKey: "split"},
			Fields: []Field{
				{Name: "about_text", Kind: FieldLongText, Label: "Biography"},
				{Name: "about_image_url", Kind: FieldURL, Label: "Portrait"},
			},
		},
		{
			ID:             Tracks,
			DefaultName:    "Music",
			DefaultOrder:   2,
			DefaultEnabled: true,
			ViewTypes:      []string{"list", "grid"},
			DefaultView:    map[string]any{viewTypeKey: "list"},
			Fields: []Field{
				{Name: "tracks_intro", Kind: FieldLongText, Label: "Intro"},
				{Name: "tracks_json", Kind: FieldStructuredData, Label: "Tracks", Schema: listSchema(
					[]string{"title", "url"},
					map[string]any{
						"title":  stringProp(),
						"url":    uriProp(),
						"artist": stringProp(),
						"year":   map[string]any{"type": "integer", "minimum": 1900},
						"cover":  stringProp(),
					},
				)},
			},
		},
		{
			ID:             Gallery,
			DefaultName:    "Gallery",
			DefaultOrder:   3,
			DefaultEnabled: true,
			ViewTypes:      []string{"grid", "carousel"},
			DefaultView:    map[string]any{viewTypeKey: "grid", "columns": 3},
			Fields: []Field{
				{Name: "gallery_json", Kind: FieldStructuredData, Label: "Images", Schema: listSchema(
					[]string{"image"},
					map[string]any{
						"image":   stringProp(),
						"caption": stringProp(),
					},
				)},
			},
		},
		{
			ID:             Press,
			DefaultName:    "Press",
			DefaultOrder:   4,
			DefaultEnabled: true,
			Fields: []Field{
				{Name: "press_json", Kind: FieldStructuredData, Label: "Articles", Schema: listSchema(
					[]string{"outlet", "url"},
					map[string]any{
						"outlet":   stringProp(),
						"headline": stringProp(),
						"url":      uriProp(),
						"date":     stringProp(),
					},
				)},
			},
		},
		{
			ID:             Skills,
			DefaultName:    "Skills",
			DefaultOrder:   5,
			DefaultEnabled: true,
			ViewTypes:      []string{"bars", "tags"},
			DefaultView:    map[string]any{viewTypeKey: "bars"},
			Fields: []Field{
				{Name: "skills_json", Kind: FieldStructuredData, Label: "Skills", Schema: listSchema(
					[]string{"name"},
					map[string]any{
						"name":  stringProp(),
						"level": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
					},
				)},
			},
		},
		{
			ID:             Testimonials,
			DefaultName:    "Testimonials",
			DefaultOrder:   6,
			DefaultEnabled: false,
			Fields: []Field{
				{Name: "testimonials_json", Kind: FieldStructuredData, Label: "Quotes", Schema: listSchema(
					[]string{"quote", "author"},
					map[string]any{
						"quote":  stringProp(),
						"author": stringProp(),
						"role":   stringProp(),
					},
				)},
			},
		},
		{
			ID:             Hobbies,
			DefaultName:    "Hobbies",
			DefaultOrder:   7,
			DefaultEnabled: true,
			Fields: []Field{
				{Name: "hobbies_json", Kind: FieldStructuredData, Label: "Hobbies", Schema: listSchema(
					[]string{"name"},
					map[string]any{
						"name":        stringProp(),
						"description": stringProp(),
					},
				)},
			},
		},
		{
			ID:             Sponsors,
			DefaultName:    "Sponsors",
			DefaultOrder:   8,
			DefaultEnabled: false,
			Fields: []Field{
				{Name: "sponsors_json", Kind: FieldStructuredData, Label: "Sponsors", Schema: listSchema(
					[]string{"name"},
					map[string]any{
						"name": stringProp(),
						"logo": stringProp(),
						"url":  uriProp(),
					},
				)},
			},
		},
		{
			ID:             Contact,
			DefaultName:    "Contact",
			DefaultOrder:   9,
			DefaultEnabled: true,
			Fields: []Field{
				{Name: "contact_email", Kind: FieldText, Label: "Email"},
				{Name: "contact_phone", Kind: FieldText, Label: "Phone"},
				{Name: "contact_form_enabled", Kind: FieldBoolean, Label: "Show contact form"},
				{Name: "booking_url", Kind: FieldURL, Label: "Booking link"},
			},
		},
		{
			ID:             Footer,
			DefaultName:    "Footer",
			DefaultOrder:   10,
			DefaultEnabled: true,
			Fields: []Field{
				{Name: "footer_text", Kind: FieldText, Label: "Footer text"},
				{Name: "social_links_json", Kind: FieldStructuredData, Label: "Social links", Schema: listSchema(
					[]string{"platform", "url"},
					map[string]any{
						"platform": stringProp(),
						"url":      uriProp(),
					},
				)},
			},
		},
	}
}

func listSchema(required []string, properties map[string]any) map[string]any {
	req := make([]any, len(required))
	for i, name := range required {
		req[i] = name
	}
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"required":   req,
			"properties": properties,
		},
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func uriProp() map[string]any {
	return map[string]any{"type": "string", "format": "uri"}
}
