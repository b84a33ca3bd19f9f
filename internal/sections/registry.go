package sections

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrDefinitionIDRequired = errors.New("sections: definition id required")
	ErrDuplicateDefinition  = errors.New("sections: duplicate definition id")
	ErrMultipleHome         = errors.New("sections: more than one home section")
	ErrInvalidFieldKind     = errors.New("sections: invalid field kind")
	ErrDuplicateField       = errors.New("sections: field declared by more than one section")
)

// Registry is the ordered, read-only catalog of section definitions.
type Registry struct {
	order  []ID
	byID   map[ID]Definition
	fields map[string]fieldRef
	home   ID
}

type fieldRef struct {
	section ID
	kind    FieldKind
}

// NewRegistry builds a registry that keeps the given definitions in registration order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		order:  make([]ID, 0, len(defs)),
		byID:   make(map[ID]Definition, len(defs)),
		fields: make(map[string]fieldRef),
	}
	for _, def := range defs {
		id := ParseID(string(def.ID))
		if id == "" {
			return nil, ErrDefinitionIDRequired
		}
		if _, exists := r.byID[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDefinition, id)
		}
		if def.Home {
			if r.home != "" {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleHome, r.home, id)
			}
			r.home = id
		}
		for _, field := range def.Fields {
			if !field.Kind.Valid() {
				return nil, fmt.Errorf("%w: %s.%s (%q)", ErrInvalidFieldKind, id, field.Name, field.Kind)
			}
			if existing, ok := r.fields[field.Name]; ok {
				return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateField, field.Name, existing.section, id)
			}
			r.fields[field.Name] = fieldRef{section: id, kind: field.Kind}
		}
		def.ID = id
		r.order = append(r.order, id)
		r.byID[id] = cloneDefinition(def)
	}
	return r, nil
}

// MustNewRegistry panics when the definitions are invalid.
func MustNewRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// GetDefinition returns the definition for id. A missing id is not an error;
// callers treat it as a retired section and skip it.
func (r *Registry) GetDefinition(id ID) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.byID[ParseID(string(id))]
	if !ok {
		return Definition{}, false
	}
	return cloneDefinition(def), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	if r == nil {
		return false
	}
	_, ok := r.byID[ParseID(string(id))]
	return ok
}

// ListIDs returns every known id in registration order.
func (r *Registry) ListIDs() []ID {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}

// Definitions returns copies of all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	if r == nil {
		return nil
	}
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneDefinition(r.byID[id]))
	}
	return out
}

// Home returns the always-on section id, or "" when none is registered.
func (r *Registry) Home() ID {
	if r == nil {
		return ""
	}
	return r.home
}

// Manifest returns the field manifest for every section in registration order.
func (r *Registry) Manifest() []SectionManifest {
	if r == nil {
		return nil
	}
	out := make([]SectionManifest, 0, len(r.order))
	for _, id := range r.order {
		def := r.byID[id]
		out = append(out, SectionManifest{
			ID:             def.ID,
			DefaultName:    def.DefaultName,
			DefaultOrder:   def.DefaultOrder,
			DefaultEnabled: def.DefaultEnabled,
			Home:           def.Home,
			ViewTypes:      slices.Clone(def.ViewTypes),
			Fields:         cloneFields(def.Fields),
		})
	}
	return out
}

// FieldKindOf returns the section and kind that own a content field.
func (r *Registry) FieldKindOf(name string) (ID, FieldKind, bool) {
	if r == nil {
		return "", "", false
	}
	ref, ok := r.fields[name]
	if !ok {
		return "", "", false
	}
	return ref.section, ref.kind, true
}

// Field returns the full manifest entry for a content field.
func (r *Registry) Field(name string) (Field, bool) {
	section, _, ok := r.FieldKindOf(name)
	if !ok {
		return Field{}, false
	}
	return r.byID[section].Field(name)
}

func cloneDefinition(def Definition) Definition {
	def.Fields = cloneFields(def.Fields)
	def.DefaultView = cloneMap(def.DefaultView)
	def.ViewTypes = slices.Clone(def.ViewTypes)
	return def
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		field.Schema = cloneMap(field.Schema)
		out[i] = field
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(typed)
	default:
		return typed
	}
}

func mergeMaps(base map[string]any, overlays ...map[string]any) map[string]any {
	out := cloneMap(base)
	for _, overlay := range overlays {
		if len(overlay) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(overlay))
		}
		maps.Copy(out, cloneMap(overlay))
	}
	return out
}
