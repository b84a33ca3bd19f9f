package sections

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

const (
	enabledKey  = "enabled"
	nameKey     = "name"
	titleKey    = "title"
	orderKey    = "order"
	viewTypeKey = "viewType"
)

// Override is the sparse per-portfolio customisation of one section. A nil
// pointer means "inherit the registry default"; it is never the same as a
// zero value.
type Override struct {
	Enabled  *bool
	Name     *string
	Title    *string
	Order    *int
	ViewType *string
	// Extra keeps section specific options and any key this version does not
	// understand, so they survive a load/save cycle.
	Extra map[string]any
}

// IsZero reports whether the override carries no information.
func (o Override) IsZero() bool {
	return o.Enabled == nil && o.Name == nil && o.Title == nil && o.Order == nil && o.ViewType == nil && len(o.Extra) == 0
}

// Clone returns a deep copy.
func (o Override) Clone() Override {
	out := Override{Extra: cloneMap(o.Extra)}
	if o.Enabled != nil {
		out.Enabled = Bool(*o.Enabled)
	}
	if o.Name != nil {
		out.Name = String(*o.Name)
	}
	if o.Title != nil {
		out.Title = String(*o.Title)
	}
	if o.Order != nil {
		out.Order = Int(*o.Order)
	}
	if o.ViewType != nil {
		out.ViewType = String(*o.ViewType)
	}
	return out
}

// Options returns Extra without the reserved keys.
func (o Override) Options() map[string]any {
	if len(o.Extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(o.Extra))
	for key, value := range o.Extra {
		if isReservedKey(key) {
			continue
		}
		out[key] = cloneValue(value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MarshalJSON writes the typed fields over the preserved extra keys.
func (o Override) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(o.Extra)+5)
	maps.Copy(payload, o.Extra)
	if o.Enabled != nil {
		payload[enabledKey] = *o.Enabled
	}
	if o.Name != nil {
		payload[nameKey] = *o.Name
	}
	if o.Title != nil {
		payload[titleKey] = *o.Title
	}
	if o.Order != nil {
		payload[orderKey] = *o.Order
	}
	if o.ViewType != nil {
		payload[viewTypeKey] = *o.ViewType
	}
	return json.Marshal(payload)
}

// UnmarshalJSON accepts the loosely typed blobs older editors wrote. Values of
// a reserved key that cannot be coerced are kept verbatim in Extra and the
// typed field stays unset.
func (o *Override) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Override{}
		return nil
	}
	raw := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("sections: decode override: %w", err)
	}

	next := Override{}
	for key, value := range raw {
		if value == nil {
			continue
		}
		accepted := false
		switch key {
		case enabledKey:
			if v, ok := coerceBool(value); ok {
				next.Enabled, accepted = Bool(v), true
			}
		case nameKey:
			if v, ok := value.(string); ok {
				next.Name, accepted = String(v), true
			}
		case titleKey:
			if v, ok := value.(string); ok {
				next.Title, accepted = String(v), true
			}
		case orderKey:
			if v, ok := coerceInt(value); ok {
				next.Order, accepted = Int(v), true
			}
		case viewTypeKey:
			if v, ok := value.(string); ok {
				next.ViewType, accepted = String(v), true
			}
		}
		if accepted {
			continue
		}
		if next.Extra == nil {
			next.Extra = make(map[string]any)
		}
		next.Extra[key] = normalizeNumbers(value)
	}
	*o = next
	return nil
}

// Overrides maps raw section ids to their override. Keys are plain strings so
// ids the registry no longer knows are kept on save.
type Overrides map[string]Override

// Get returns the override stored for id.
func (o Overrides) Get(id ID) (Override, bool) {
	if o == nil {
		return Override{}, false
	}
	if value, ok := o[string(id)]; ok {
		return value, true
	}
	return Override{}, false
}

// Clone returns a deep copy. A nil map clones to an empty, non-nil map.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for key, value := range o {
		out[key] = value.Clone()
	}
	return out
}

// Value implements driver.Valuer for the sections_config column.
func (o Overrides) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(map[string]Override(o))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner for the sections_config column.
func (o *Overrides) Scan(src any) error {
	var data []byte
	switch typed := src.(type) {
	case nil:
		*o = Overrides{}
		return nil
	case []byte:
		data = typed
	case string:
		data = []byte(typed)
	default:
		return fmt.Errorf("sections: cannot scan %T into overrides", src)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*o = Overrides{}
		return nil
	}
	decoded := map[string]Override{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*o = Overrides(decoded)
	return nil
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func isReservedKey(key string) bool {
	switch key {
	case enabledKey, nameKey, titleKey, orderKey, viewTypeKey:
		return true
	default:
		return false
	}
}

func coerceBool(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func coerceInt(value any) (int, bool) {
	switch typed := value.(type) {
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return int(parsed), true
		}
		if parsed, err := typed.Float64(); err == nil && parsed == float64(int(parsed)) {
			return int(parsed), true
		}
		return 0, false
	case float64:
		if typed == float64(int(typed)) {
			return int(typed), true
		}
		return 0, false
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func normalizeNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if parsed, err := typed.Int64(); err == nil {
			return parsed
		}
		if parsed, err := typed.Float64(); err == nil {
			return parsed
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeNumbers(item)
		}
		return out
	default:
		return typed
	}
}
