package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/permissions"
	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/render"
	"github.com/goliatone/go-portfolio/internal/sections"
)

type portfolioCreatePayload struct {
	OwnerID        *uuid.UUID         `json:"owner_id,omitempty"`
	Title          string             `json:"title"`
	Slug           string             `json:"slug,omitempty"`
	SectionsConfig sections.Overrides `json:"sections_config,omitempty"`
	Content        map[string]any     `json:"content,omitempty"`
	ThemeName      string             `json:"theme_name,omitempty"`
	ThemeVariant   string             `json:"theme_variant,omitempty"`
	ActorID        *uuid.UUID         `json:"actor_id,omitempty"`
}

type portfolioUpdatePayload struct {
	Title        *string    `json:"title,omitempty"`
	Slug         *string    `json:"slug,omitempty"`
	ThemeName    *string    `json:"theme_name,omitempty"`
	ThemeVariant *string    `json:"theme_variant,omitempty"`
	ActorID      *uuid.UUID `json:"actor_id,omitempty"`
}

type configPayload struct {
	SectionsConfig sections.Overrides `json:"sections_config"`
	Content        map[string]any     `json:"content,omitempty"`
	ActorID        *uuid.UUID         `json:"actor_id,omitempty"`
}

type actorPayload struct {
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

type portfolioResponse struct {
	*portfolios.Portfolio
	Sections []sections.Resolved `json:"sections"`
}

func (api *AdminAPI) registerPortfolioRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := routePath(base, "portfolios")
	api.handle(mux, "GET "+root, api.handlePortfolioList)
	api.handle(mux, "POST "+root, api.handlePortfolioCreate)
	api.handle(mux, "GET "+root+"/{id}", api.handlePortfolioGet)
	api.handle(mux, "PUT "+root+"/{id}", api.handlePortfolioUpdate)
	api.handle(mux, "DELETE "+root+"/{id}", api.handlePortfolioDelete)
	api.handle(mux, "PUT "+root+"/{id}/config", api.handlePortfolioConfig)
	api.handle(mux, "POST "+root+"/{id}/publish", api.handlePortfolioPublish)
	api.handle(mux, "POST "+root+"/{id}/unpublish", api.handlePortfolioUnpublish)
	api.handle(mux, "GET "+root+"/{id}/preview", api.handlePortfolioPreview)
}

func (api *AdminAPI) response(record *portfolios.Portfolio) portfolioResponse {
	return portfolioResponse{Portfolio: record, Sections: api.portfolios.Resolve(record)}
}

func (api *AdminAPI) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	actor := resolveActorID(r.Context(), nil)
	owner := actor
	if raw := strings.TrimSpace(r.URL.Query().Get("owner_id")); raw != "" {
		parsed, err := parseUUID(raw)
		if err != nil {
			badRequest(w, "invalid owner_id")
			return
		}
		owner = parsed
	}
	if actor != uuid.Nil {
		if err := permissions.RequireOwnership(r.Context(), actor, owner); err != nil {
			writeError(w, err)
			return
		}
	}
	list, err := api.portfolios.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*portfolios.Portfolio{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *AdminAPI) handlePortfolioCreate(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	var payload portfolioCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	actor := resolveActorID(r.Context(), payload.ActorID)
	owner := actor
	if payload.OwnerID != nil && *payload.OwnerID != uuid.Nil {
		owner = *payload.OwnerID
	}
	if actor != uuid.Nil {
		if err := permissions.RequireOwnership(r.Context(), actor, owner); err != nil {
			writeError(w, err)
			return
		}
	}
	record, err := api.portfolios.Create(r.Context(), portfolios.CreateRequest{
		OwnerID:        owner,
		Title:          payload.Title,
		Slug:           payload.Slug,
		SectionsConfig: payload.SectionsConfig,
		Content:        payload.Content,
		ThemeName:      payload.ThemeName,
		ThemeVariant:   payload.ThemeVariant,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.response(record))
}

func (api *AdminAPI) handlePortfolioGet(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := api.portfolios.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}

func (api *AdminAPI) handlePortfolioUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload portfolioUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	record, err := api.portfolios.UpdateDetails(r.Context(), portfolios.UpdateDetailsRequest{
		ID:           id,
		ActorID:      resolveActorID(r.Context(), payload.ActorID),
		Title:        payload.Title,
		Slug:         payload.Slug,
		ThemeName:    payload.ThemeName,
		ThemeVariant: payload.ThemeVariant,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}

func (api *AdminAPI) handlePortfolioDelete(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := api.portfolios.Delete(r.Context(), portfolios.DeleteRequest{
		ID:      id,
		ActorID: resolveActorID(r.Context(), nil),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePortfolioConfig replaces the whole overrides blob and patches content.
// Concurrent saves are last write wins.
func (api *AdminAPI) handlePortfolioConfig(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload configPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	record, err := api.portfolios.SavePortfolioConfig(r.Context(), portfolios.SaveConfigRequest{
		ID:             id,
		ActorID:        resolveActorID(r.Context(), payload.ActorID),
		SectionsConfig: payload.SectionsConfig,
		ContentPatch:   payload.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}

func (api *AdminAPI) handlePortfolioPublish(w http.ResponseWriter, r *http.Request) {
	api.handleLifecycle(w, r, true)
}

func (api *AdminAPI) handlePortfolioUnpublish(w http.ResponseWriter, r *http.Request) {
	api.handleLifecycle(w, r, false)
}

func (api *AdminAPI) handleLifecycle(w http.ResponseWriter, r *http.Request, publish bool) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload actorPayload
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, err)
			return
		}
	}
	req := portfolios.PublishRequest{
		ID:      id,
		ActorID: resolveActorID(r.Context(), payload.ActorID),
	}
	transition := api.portfolios.Unpublish
	if publish {
		transition = api.portfolios.Publish
	}
	record, err := transition(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}

func (api *AdminAPI) handlePortfolioPreview(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	if api.renderer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: "renderer not configured"})
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := api.portfolios.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := api.renderer.Render(r.Context(), record, render.SurfacePreview)
	if err != nil {
		api.logger.Error("http.preview.failed", "portfolio_id", id.String(), "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, http.StatusOK, page.HTML)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
