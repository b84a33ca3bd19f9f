package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/permissions"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/validation"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

// routePath joins mux pattern segments under base. An empty result is "/".
func routePath(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, "/", strings.TrimSpace(base))
	for _, segment := range segments {
		parts = append(parts, strings.TrimSpace(segment))
	}
	return path.Join(parts...)
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

// errorRule maps a family of service errors to a response. Rules are checked
// in order, so auth failures win over validation noise in joined errors.
type errorRule struct {
	status  int
	code    string
	message string
	issues  bool
	matches []error
}

var errorRules = []errorRule{
	{status: http.StatusNotFound, code: "not_found", matches: []error{portfolios.ErrNotFound}},
	{status: http.StatusUnauthorized, code: "unauthorized", matches: []error{portfolios.ErrActorRequired}},
	{status: http.StatusForbidden, code: "forbidden", matches: []error{portfolios.ErrForbidden, permissions.ErrPermissionDenied}},
	{status: http.StatusConflict, code: "conflict", matches: []error{portfolios.ErrSlugExists}},
	{
		status: http.StatusUnprocessableEntity,
		code:   "validation_failed",
		issues: true,
		matches: []error{
			validation.ErrContentInvalid,
			validation.ErrSchemaValidation,
			portfolios.ErrSectionUnknown,
			portfolios.ErrThemeInvalid,
		},
	},
	{
		status: http.StatusBadRequest,
		code:   "bad_request",
		matches: []error{
			errBadRequest,
			portfolios.ErrOwnerRequired,
			portfolios.ErrTitleRequired,
			portfolios.ErrSlugInvalid,
		},
	},
	{
		status:  http.StatusServiceUnavailable,
		code:    "persistence_failed",
		message: "portfolio storage is unavailable",
		matches: []error{portfolios.ErrPersistence},
	},
}

func (rule errorRule) match(err error) bool {
	for _, target := range rule.matches {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	var notFound *portfolios.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}
	for _, rule := range errorRules {
		if !rule.match(err) {
			continue
		}
		payload := errorResponse{Error: rule.code, Message: rule.message}
		if payload.Message == "" {
			payload.Message = err.Error()
		}
		if rule.issues {
			payload.Issues = validation.Issues(err)
		}
		return rule.status, payload
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func parseUUID(value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(value)
}

// resolveActorID prefers the authenticated actor. The payload actor is only
// honoured when the request carries no token.
func resolveActorID(ctx context.Context, payload *uuid.UUID) uuid.UUID {
	if actor, ok := permissions.ActorFromContext(ctx); ok {
		return actor
	}
	if payload != nil && *payload != uuid.Nil {
		return *payload
	}
	return uuid.Nil
}
