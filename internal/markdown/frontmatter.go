package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-portfolio/internal/sections"
)

// BodyField receives the markdown body unless the front matter sets it.
const BodyField = "about_text"

// Document is a portfolio described by a markdown file.
type Document struct {
	Path         string
	Title        string
	Slug         string
	ThemeName    string
	ThemeVariant string
	Published    bool
	Sections     sections.Overrides
	Content      map[string]any
	Body         string
	Checksum     string
}

type frontMatterEnvelope struct {
	Title     string         `yaml:"title"`
	Slug      string         `yaml:"slug"`
	Theme     string         `yaml:"theme"`
	Variant   string         `yaml:"variant"`
	Published bool           `yaml:"published"`
	Sections  map[string]any `yaml:"sections"`
	Content   map[string]any `yaml:"content"`
}

// ParseDocument splits source into front matter and body. Section overrides
// go through the same lenient decoding as stored configuration.
func ParseDocument(source []byte) (*Document, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	overrides := sections.Overrides{}
	if len(meta.Sections) > 0 {
		encoded, err := json.Marshal(normalizeYAML(meta.Sections))
		if err != nil {
			return nil, fmt.Errorf("encode sections: %w", err)
		}
		if err := json.Unmarshal(encoded, &overrides); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	}

	content := map[string]any{}
	for key, value := range meta.Content {
		content[key] = normalizeYAML(value)
	}
	trimmedBody := strings.TrimSpace(string(body))
	if _, ok := content[BodyField]; !ok && trimmedBody != "" {
		content[BodyField] = trimmedBody
	}

	return &Document{
		Title:        strings.TrimSpace(meta.Title),
		Slug:         strings.TrimSpace(meta.Slug),
		ThemeName:    strings.TrimSpace(meta.Theme),
		ThemeVariant: strings.TrimSpace(meta.Variant),
		Published:    meta.Published,
		Sections:     overrides,
		Content:      content,
		Body:         trimmedBody,
	}, nil
}

// normalizeYAML converts yaml.v3 decoded values into JSON friendly ones.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return typed
	}
}
