package sections

import (
	"cmp"
	"slices"
	"strings"
)

// Resolve computes the visible section sequence for a portfolio. Only enabled
// sections are returned, sorted by effective order with registry order as the
// tie-break. Override keys the registry does not know are ignored.
func Resolve(registry *Registry, overrides Overrides) []Resolved {
	all := ResolveAll(registry, overrides)
	out := make([]Resolved, 0, len(all))
	for _, section := range all {
		if section.Enabled {
			out = append(out, section)
		}
	}
	return out
}

// ResolveAll is Resolve without the enabled filter. Editors use it to list
// disabled sections next to the visible ones.
func ResolveAll(registry *Registry, overrides Overrides) []Resolved {
	if registry == nil {
		return nil
	}
	out := make([]Resolved, 0, len(registry.order))
	for _, id := range registry.order {
		out = append(out, resolveOne(registry.byID[id], overrides))
	}
	// SortStableFunc keeps registry order for equal effective orders.
	slices.SortStableFunc(out, func(a, b Resolved) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// ResolveSection returns the effective state of a single registered section.
func ResolveSection(registry *Registry, overrides Overrides, id ID) (Resolved, bool) {
	def, ok := registry.GetDefinition(id)
	if !ok {
		return Resolved{}, false
	}
	return resolveOne(def, overrides), true
}

func resolveOne(def Definition, overrides Overrides) Resolved {
	override, _ := overrides.Get(def.ID)

	enabled := def.DefaultEnabled
	if override.Enabled != nil {
		enabled = *override.Enabled
	}
	if def.Home {
		enabled = true
	}

	name := def.DefaultName
	if override.Name != nil && strings.TrimSpace(*override.Name) != "" {
		name = *override.Name
	}
	title := name
	if override.Title != nil && strings.TrimSpace(*override.Title) != "" {
		title = *override.Title
	}

	order := def.DefaultOrder
	if override.Order != nil {
		order = *override.Order
	}

	view := mergeMaps(def.DefaultView, override.Options())
	if override.ViewType != nil && strings.TrimSpace(*override.ViewType) != "" {
		if view == nil {
			view = make(map[string]any, 1)
		}
		view[viewTypeKey] = *override.ViewType
	}

	return Resolved{
		ID:      def.ID,
		Name:    name,
		Title:   title,
		Enabled: enabled,
		Order:   order,
		Home:    def.Home,
		View:    view,
	}
}
