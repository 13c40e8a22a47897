package org

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mizan-erp/mizan/internal/shared"
)

// SessionKeyHeader identifies the caller's session for selection
// persistence. Authentication is out of scope; the front-end supplies a
// stable opaque key.
const SessionKeyHeader = "X-Session-Key"

const maxLogoBytes = 1 << 20

type Handler struct {
	logger     *slog.Logger
	service    *Service
	store      *Store
	selections *SelectionStore
	validator  *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, store *Store, selections *SelectionStore) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		store:      store,
		selections: selections,
		validator:  validator.New(),
	}
}

// MountRoutes attaches entity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/current", h.GetCurrent)
	r.Put("/current", h.SetCurrent)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/theme", h.Theme)
	r.Put("/{id}/logo", h.UpdateLogo)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)
	entities, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list entities", slog.Any("error", err))
		shared.WriteError(w, err)
		return
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		kept := entities[:0]
		for _, e := range entities {
			if strings.Contains(strings.ToLower(e.Name), needle) || strings.Contains(strings.ToLower(e.ID), needle) {
				kept = append(kept, e)
			}
		}
		entities = kept
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"entities": shared.Page(entities, filters),
		"page":     filters.Page,
		"limit":    filters.Limit,
		"total":    len(entities),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	entity, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entity)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEntityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	entity, err := h.service.Create(r.Context(), Entity{
		ID:         req.ID,
		Name:       req.Name,
		Kind:       Kind(req.Kind),
		ParentID:   req.ParentID,
		ThemeColor: req.ThemeColor,
	})
	if err != nil {
		h.logger.Warn("create entity rejected", slog.String("id", req.ID), slog.Any("error", err))
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, entity)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	id := chi.URLParam(r, "id")
	err := h.service.Update(r.Context(), Entity{
		ID:         id,
		Name:       req.Name,
		ParentID:   req.ParentID,
		ThemeColor: req.ThemeColor,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if current, ok := h.store.Current(); ok {
		shared.WriteJSON(w, http.StatusOK, current)
		return
	}
	if h.selections != nil {
		if key := r.Header.Get(SessionKeyHeader); key != "" {
			id, err := h.selections.Load(r.Context(), key)
			if err == nil && id != "" {
				if entity, ok := h.store.Get(id); ok {
					shared.WriteJSON(w, http.StatusOK, entity)
					return
				}
			}
		}
	}
	shared.WriteError(w, shared.NotFound("no entity selected"))
}

func (h *Handler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req SetCurrentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	if err := h.store.SetCurrent(req.EntityID); err != nil {
		shared.WriteError(w, err)
		return
	}
	if h.selections != nil {
		if key := r.Header.Get(SessionKeyHeader); key != "" {
			if err := h.selections.Save(r.Context(), key, req.EntityID); err != nil {
				h.logger.Warn("persist selection", slog.Any("error", err))
			}
		}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"entityId": req.EntityID})
}

func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shared.WriteJSON(w, http.StatusOK, ThemeResponse{EntityID: id, Color: h.store.ThemeColor(id)})
}

func (h *Handler) UpdateLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := io.ReadAll(io.LimitReader(r.Body, maxLogoBytes+1))
	if err != nil {
		shared.WriteError(w, shared.Validation("could not read logo payload"))
		return
	}
	if len(logo) == 0 || len(logo) > maxLogoBytes {
		shared.WriteError(w, shared.Validation("logo must be between 1 byte and 1 MiB"))
		return
	}
	if err := h.service.UpdateLogo(r.Context(), chi.URLParam(r, "id"), logo); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}
