package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("validation: field schema invalid")
	ErrSchemaValidation = errors.New("validation: structured field rejected")
)

// ValidationIssue is one failed assertion. Location is a JSON pointer into
// the field value, empty for the value itself.
type ValidationIssue struct {
	Field    string `json:"field,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// SchemaError reports a structured field value its schema rejected.
type SchemaError struct {
	Field  string
	Issues []ValidationIssue
	Cause  error
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 && e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Cause)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+"#"+strings.TrimPrefix(issue.Location, "#")+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchemaValidation }

// Issues extracts validation issues from err. Errors that carry no issue
// list become a single message-only issue.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var contentErr *ContentError
	if errors.As(err, &contentErr) {
		return contentErr.Issues
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return leafIssues("", validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// FieldSchemas compiles the JSON schema of each structured field on first use.
type FieldSchemas struct {
	compiled sync.Map // field name -> *jsonschema.Schema
}

// Validate checks an already normalised value against the schema of field.
func (s *FieldSchemas) Validate(field string, schema map[string]any, value any) error {
	compiled, err := s.lookup(field, schema)
	if err != nil {
		return err
	}
	if err := compiled.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &SchemaError{Field: field, Issues: leafIssues(field, validationErr), Cause: err}
		}
		return &SchemaError{Field: field, Issues: []ValidationIssue{{Field: field, Message: err.Error()}}, Cause: err}
	}
	return nil
}

func (s *FieldSchemas) lookup(field string, schema map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := s.compiled.Load(field); ok {
		return cached.(*jsonschema.Schema), nil
	}
	compiled, err := compileSchema(field, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, field, err)
	}
	actual, _ := s.compiled.LoadOrStore(field, compiled)
	return actual.(*jsonschema.Schema), nil
}

// NormalizeJSON round-trips value through encoding/json so numbers decode as
// json.Number and containers as map[string]any / []any.
func NormalizeJSON(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func compileSchema(field string, schema map[string]any) (*jsonschema.Schema, error) {
	if schema == nil {
		schema = map[string]any{}
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	url := "portfolio://fields/" + field + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// leafIssues flattens the cause tree; only leaves name a concrete failure.
func leafIssues(field string, root *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	pending := []*jsonschema.ValidationError{root}
	for len(pending) > 0 {
		node := pending[0]
		pending = pending[1:]
		if node == nil {
			continue
		}
		if len(node.Causes) > 0 {
			pending = append(pending, node.Causes...)
			continue
		}
		issues = append(issues, ValidationIssue{
			Field:    field,
			Location: strings.TrimSpace(node.InstanceLocation),
			Message:  strings.TrimSpace(node.Message),
		})
	}
	return issues
}
