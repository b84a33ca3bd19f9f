package sections

import "strings"

// Reorder moves movedID to newIndex within the enabled, resolved sequence and
// renumbers every enabled section 0..n-1. Disabled sections keep their stored
// order. An unknown or disabled movedID leaves the configuration unchanged.
// The input map is never modified.
func Reorder(registry *Registry, overrides Overrides, movedID ID, newIndex int) Overrides {
	out := overrides.Clone()
	moved := ParseID(string(movedID))

	visible := Resolve(registry, overrides)
	from := -1
	for i, section := range visible {
		if section.ID == moved {
			from = i
			break
		}
	}
	if from < 0 {
		return out
	}

	sequence := make([]ID, 0, len(visible))
	for i, section := range visible {
		if i != from {
			sequence = append(sequence, section.ID)
		}
	}
	newIndex = max(0, min(newIndex, len(sequence)))
	sequence = append(sequence[:newIndex], append([]ID{moved}, sequence[newIndex:]...)...)

	for position, id := range sequence {
		entry := out[string(id)]
		entry.Order = Int(position)
		out[string(id)] = entry
	}
	return out
}

// SetEnabled toggles a section. Unknown ids and attempts to disable the home
// section are no-ops.
func SetEnabled(registry *Registry, overrides Overrides, id ID, enabled bool) Overrides {
	def, ok := registry.GetDefinition(id)
	if !ok || (def.Home && !enabled) {
		return overrides.Clone()
	}
	return update(overrides, def.ID, func(o *Override) {
		o.Enabled = Bool(enabled)
	})
}

// SetTitle stores a display title. A blank title clears the override.
func SetTitle(registry *Registry, overrides Overrides, id ID, title string) Overrides {
	return setText(registry, overrides, id, title, func(o *Override, v *string) { o.Title = v })
}

// SetName stores an editor label. A blank name clears the override.
func SetName(registry *Registry, overrides Overrides, id ID, name string) Overrides {
	return setText(registry, overrides, id, name, func(o *Override, v *string) { o.Name = v })
}

// SetViewType stores the section view variant. A blank value clears it.
func SetViewType(registry *Registry, overrides Overrides, id ID, viewType string) Overrides {
	return setText(registry, overrides, id, viewType, func(o *Override, v *string) { o.ViewType = v })
}

// SetOption stores a section specific option. Reserved keys are rejected
// silently; use the typed setters for those.
func SetOption(registry *Registry, overrides Overrides, id ID, key string, value any) Overrides {
	key = strings.TrimSpace(key)
	def, ok := registry.GetDefinition(id)
	if !ok || key == "" || isReservedKey(key) {
		return overrides.Clone()
	}
	return update(overrides, def.ID, func(o *Override) {
		if value == nil {
			delete(o.Extra, key)
			return
		}
		if o.Extra == nil {
			o.Extra = make(map[string]any, 1)
		}
		o.Extra[key] = cloneValue(normalizeNumbers(value))
	})
}

func setText(registry *Registry, overrides Overrides, id ID, value string, assign func(*Override, *string)) Overrides {
	def, ok := registry.GetDefinition(id)
	if !ok {
		return overrides.Clone()
	}
	value = strings.TrimSpace(value)
	return update(overrides, def.ID, func(o *Override) {
		if value == "" {
			assign(o, nil)
			return
		}
		assign(o, String(value))
	})
}

func update(overrides Overrides, id ID, mutate func(*Override)) Overrides {
	out := overrides.Clone()
	entry := out[string(id)]
	mutate(&entry)
	if entry.IsZero() {
		delete(out, string(id))
		return out
	}
	out[string(id)] = entry
	return out
}
