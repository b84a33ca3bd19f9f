package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-portfolio/internal/sections"
)

var ErrContentInvalid = errors.New("validation: content invalid")

const (
	maxTextLength     = 500
	maxLongTextLength = 20000
)

var mediaKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ContentError lists every invalid field of a content patch.
type ContentError struct {
	Issues []ValidationIssue
}

func (e *ContentError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Location != "" {
			parts = append(parts, fmt.Sprintf("%s%s: %s", issue.Field, issue.Location, issue.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "validation: content invalid: " + strings.Join(parts, "; ")
}

func (e *ContentError) Unwrap() error { return ErrContentInvalid }

// FieldLookup finds the manifest entry for a content field.
type FieldLookup interface {
	Field(name string) (sections.Field, bool)
}

// ContentValidator checks content patches against the section field manifest.
type ContentValidator struct {
	fields  FieldLookup
	schemas *FieldSchemas
}

// NewContentValidator builds a validator for the given manifest.
func NewContentValidator(fields FieldLookup) *ContentValidator {
	return &ContentValidator{fields: fields, schemas: &FieldSchemas{}}
}

// NormalizePatch validates patch and returns a normalised copy. A nil value
// is kept and means "delete this field". Structured fields may arrive as JSON
// encoded strings; they are decoded before validation.
func (v *ContentValidator) NormalizePatch(patch map[string]any) (map[string]any, error) {
	if len(patch) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(patch))
	var issues []ValidationIssue

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		value := patch[name]
		field, ok := v.lookup(name)
		if !ok {
			issues = append(issues, ValidationIssue{Field: name, Message: "unknown content field"})
			continue
		}
		if value == nil {
			out[name] = nil
			continue
		}
		normalized, fieldIssues := v.normalizeField(field, value)
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}
		out[name] = normalized
	}

	if len(issues) > 0 {
		return nil, &ContentError{Issues: issues}
	}
	return out, nil
}

func (v *ContentValidator) lookup(name string) (sections.Field, bool) {
	if v == nil || v.fields == nil {
		return sections.Field{}, false
	}
	return v.fields.Field(name)
}

func (v *ContentValidator) normalizeField(field sections.Field, value any) (any, []ValidationIssue) {
	issue := func(message string) []ValidationIssue {
		return []ValidationIssue{{Field: field.Name, Message: message}}
	}

	switch field.Kind {
	case sections.FieldText, sections.FieldLongText:
		text, ok := value.(string)
		if !ok {
			return nil, issue("must be a string")
		}
		limit := maxTextLength
		if field.Kind == sections.FieldLongText {
			limit = maxLongTextLength
		}
		if err := ozzo.Validate(text, ozzo.Length(0, limit)); err != nil {
			return nil, issue(err.Error())
		}
		if field.Kind == sections.FieldText {
			text = strings.TrimSpace(text)
		}
		return text, nil

	case sections.FieldURL:
		raw, ok := value.(string)
		if !ok {
			return nil, issue("must be a string")
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return raw, nil
		}
		if err := validateLink(raw); err != nil {
			return nil, issue(err.Error())
		}
		return raw, nil

	case sections.FieldBoolean:
		flag, ok := value.(bool)
		if !ok {
			return nil, issue("must be a boolean")
		}
		return flag, nil

	case sections.FieldStructuredData:
		if encoded, ok := value.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
				return nil, issue("must be valid JSON")
			}
			value = decoded
		}
		normalized, err := NormalizeJSON(value)
		if err != nil {
			return nil, issue("must be JSON data")
		}
		if field.Schema != nil {
			if err := v.schemas.Validate(field.Name, field.Schema, normalized); err != nil {
				return nil, Issues(err)
			}
		}
		return normalized, nil

	default:
		return nil, issue("unsupported field kind " + string(field.Kind))
	}
}

// validateLink accepts absolute http(s)/mailto URLs and bare media keys.
func validateLink(raw string) error {
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "mailto:") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return errors.New("must be a valid URL")
		}
		switch parsed.Scheme {
		case "http", "https":
			if parsed.Host == "" {
				return errors.New("must include a host")
			}
			return nil
		case "mailto":
			return ozzo.Validate(parsed.Opaque, ozzo.Required)
		default:
			return fmt.Errorf("scheme %q is not allowed", parsed.Scheme)
		}
	}
	return ozzo.Validate(raw, ozzo.Match(mediaKeyPattern).Error("must be an absolute URL or a media key"))
}
