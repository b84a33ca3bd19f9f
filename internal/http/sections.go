package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/portfolios"
	"github.com/goliatone/go-portfolio/internal/sections"
)

type reorderPayload struct {
	Section string     `json:"section"`
	Index   *int       `json:"index"`
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

type sectionPatchPayload struct {
	Enabled  *bool          `json:"enabled,omitempty"`
	Title    *string        `json:"title,omitempty"`
	Name     *string        `json:"name,omitempty"`
	ViewType *string        `json:"view_type,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
	ActorID  *uuid.UUID     `json:"actor_id,omitempty"`
}

type sectionListResponse struct {
	PortfolioID uuid.UUID           `json:"portfolio_id"`
	Sections    []sections.Resolved `json:"sections"`
}

func (api *AdminAPI) registerSectionRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	api.handle(mux, "GET "+routePath(base, "sections"), api.handleSectionManifest)

	root := routePath(base, "portfolios")
	api.handle(mux, "GET "+root+"/{id}/sections", api.handleSectionList)
	api.handle(mux, "POST "+root+"/{id}/sections/reorder", api.handleSectionReorder)
	api.handle(mux, "PATCH "+root+"/{id}/sections/{section}", api.handleSectionPatch)
}

func (api *AdminAPI) handleSectionManifest(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, api.portfolios.Registry().Manifest())
}

// handleSectionList returns every registered section, disabled ones included,
// in display order.
func (api *AdminAPI) handleSectionList(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, sectionListResponse{
		PortfolioID: record.ID,
		Sections:    api.portfolios.ResolveAll(record),
	})
}

func (api *AdminAPI) handleSectionReorder(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload reorderPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	section := sections.ParseID(payload.Section)
	if section == "" || payload.Index == nil {
		badRequest(w, "section and index are required")
		return
	}
	record, err := api.portfolios.ReorderSection(r.Context(), portfolios.ReorderSectionRequest{
		ID:       id,
		ActorID:  resolveActorID(r.Context(), payload.ActorID),
		Section:  section,
		NewIndex: *payload.Index,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}

func (api *AdminAPI) handleSectionPatch(w http.ResponseWriter, r *http.Request) {
	if !api.available(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload sectionPatchPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	record, err := api.portfolios.UpdateSection(r.Context(), portfolios.UpdateSectionRequest{
		ID:       id,
		ActorID:  resolveActorID(r.Context(), payload.ActorID),
		Section:  sections.ParseID(r.PathValue("section")),
		Enabled:  payload.Enabled,
		Title:    payload.Title,
		Name:     payload.Name,
		ViewType: payload.ViewType,
		Options:  payload.Options,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.response(record))
}
