package portfolios

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/internal/sections"
)

// Status is the publication state of a portfolio.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Portfolio is a user's single page site: the section overrides blob plus the
// flat content fields named by the section manifest.
type Portfolio struct {
	bun.BaseModel `bun:"table:portfolios,alias:pf"`

	ID             uuid.UUID          `bun:",pk,type:uuid" json:"id"`
	OwnerID        uuid.UUID          `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Slug           string             `bun:"slug,notnull,unique" json:"slug"`
	Title          string             `bun:"title,notnull" json:"title"`
	Status         Status             `bun:"status,notnull,default:'draft'" json:"status"`
	SectionsConfig sections.Overrides `bun:"sections_config,type:jsonb,notnull" json:"sections_config"`
	Content        map[string]any     `bun:"content,type:jsonb,notnull" json:"content"`
	ThemeName      string             `bun:"theme_name" json:"theme_name,omitempty"`
	ThemeVariant   string             `bun:"theme_variant" json:"theme_variant,omitempty"`
	PublishedAt    *time.Time         `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedAt      time.Time          `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time          `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsPublished reports whether visitors can see the portfolio.
func (p *Portfolio) IsPublished() bool {
	return p != nil && p.Status == StatusPublished
}

// Clone returns a deep copy.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.SectionsConfig = p.SectionsConfig.Clone()
	cloned.Content = cloneContent(p.Content)
	if p.PublishedAt != nil {
		at := *p.PublishedAt
		cloned.PublishedAt = &at
	}
	return &cloned
}

// SectionContent returns the content fields owned by one section.
func (p *Portfolio) SectionContent(def sections.Definition) map[string]any {
	out := make(map[string]any, len(def.Fields))
	if p == nil {
		return out
	}
	for _, field := range def.Fields {
		if value, ok := p.Content[field.Name]; ok && value != nil {
			out[field.Name] = cloneValue(value)
		}
	}
	return out
}

func cloneContent(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneContent(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
