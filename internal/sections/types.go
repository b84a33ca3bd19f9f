package sections

import "strings"

// ID identifies a section type known to the registry.
type ID string

const (
	Hero         ID = "hero"
	About        ID = "about"
	Tracks       ID = "tracks"
	Gallery      ID = "gallery"
	Press        ID = "press"
	Skills       ID = "skills"
	Testimonials ID = "testimonials"
	Hobbies      ID = "hobbies"
	Sponsors     ID = "sponsors"
	Contact      ID = "contact"
	Footer       ID = "footer"
)

// ParseID normalises raw input into an ID. It does not check registry membership.
func ParseID(raw string) ID {
	return ID(strings.ToLower(strings.TrimSpace(raw)))
}

func (id ID) String() string { return string(id) }

// FieldKind describes how a content field is edited and validated.
type FieldKind string

const (
	FieldText           FieldKind = "text"
	FieldLongText       FieldKind = "longText"
	FieldURL            FieldKind = "url"
	FieldBoolean        FieldKind = "boolean"
	FieldStructuredData FieldKind = "structuredData"
)

// Valid reports whether k is one of the known field kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldText, FieldLongText, FieldURL, FieldBoolean, FieldStructuredData:
		return true
	default:
		return false
	}
}

// Field is one entry of a section's content manifest.
type Field struct {
	Name  string    `json:"name"`
	Kind  FieldKind `json:"kind"`
	Label string    `json:"label,omitempty"`
	// Schema is a JSON schema document, only used for structuredData fields.
	Schema map[string]any `json:"schema,omitempty"`
}

// Definition is the static description of a section type.
type Definition struct {
	ID             ID     `json:"id"`
	DefaultName    string `json:"default_name"`
	DefaultOrder   int    `json:"default_order"`
	DefaultEnabled bool   `json:"default_enabled"`
	// Home marks the always-on section. At most one definition may set it.
	Home        bool           `json:"home,omitempty"`
	Fields      []Field        `json:"fields"`
	DefaultView map[string]any `json:"default_view,omitempty"`
	ViewTypes   []string       `json:"view_types,omitempty"`
}

// FieldNames returns the manifest field names in declaration order.
func (d Definition) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Field looks up a manifest field by name.
func (d Definition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// SectionManifest is the outward field manifest consumed by editor forms.
type SectionManifest struct {
	ID             ID       `json:"id"`
	DefaultName    string   `json:"default_name"`
	DefaultOrder   int      `json:"default_order"`
	DefaultEnabled bool     `json:"default_enabled"`
	Home           bool     `json:"home,omitempty"`
	ViewTypes      []string `json:"view_types,omitempty"`
	Fields         []Field  `json:"fields"`
}

// Resolved is the effective state of a section after overrides are applied.
// It is derived on every read and never persisted.
type Resolved struct {
	ID      ID             `json:"id"`
	Name    string         `json:"name"`
	Title   string         `json:"title"`
	Enabled bool           `json:"enabled"`
	Order   int            `json:"order"`
	Home    bool           `json:"home,omitempty"`
	View    map[string]any `json:"view,omitempty"`
}

// ViewType returns the effective view type, if any.
func (r Resolved) ViewType() string {
	if r.View == nil {
		return ""
	}
	if value, ok := r.View[viewTypeKey].(string); ok {
		return value
	}
	return ""
}
