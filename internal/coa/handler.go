package coa

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mizan-erp/mizan/internal/shared"
)

// SessionKeyHeader scopes expand/reorder state to one viewer.
const SessionKeyHeader = "X-Session-Key"

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tree", h.Tree)
	r.Post("/tree/toggle/{id}", h.Toggle)
	r.Post("/tree/toggle-all", h.ToggleAll)
	r.Post("/tree/reorder", h.Reorder)
	r.Get("/{entityID}/{id}", h.Show)
	r.Put("/{entityID}/{id}", h.Update)
	r.Delete("/{entityID}/{id}", h.Delete)
}

func sessionKey(r *http.Request) string {
	if key := r.Header.Get(SessionKeyHeader); key != "" {
		return key
	}
	return "anonymous"
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)
	accounts, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		kept := accounts[:0]
		for _, a := range accounts {
			if strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.ID), needle) {
				kept = append(kept, a)
			}
		}
		accounts = kept
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return CompareCodes(accounts[i].ID, accounts[j].ID) < 0
	})
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"accounts": shared.Page(accounts, filters),
		"page":     filters.Page,
		"limit":    filters.Limit,
		"total":    len(accounts),
	})
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	filter := TreeFilter{
		Search: r.URL.Query().Get("search"),
		Type:   AccountType(r.URL.Query().Get("type")),
	}
	tree, err := h.service.Tree(r.Context(), sessionKey(r), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if len(tree.Warnings) > 0 {
		h.logger.Warn("account tree has structural warnings", slog.Int("count", len(tree.Warnings)))
	}
	shared.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	expanded := h.service.Toggle(sessionKey(r), chi.URLParam(r, "id"))
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"expanded": expanded})
}

func (h *Handler) ToggleAll(w http.ResponseWriter, r *http.Request) {
	var req ToggleAllRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.service.ToggleAll(sessionKey(r), req.Expanded)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"expanded": req.Expanded})
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	if err := h.service.Reorder(r.Context(), sessionKey(r), req.DraggedID, req.TargetID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "entityID"), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	account, err := h.service.Create(r.Context(), Account{
		ID:                req.ID,
		Name:              req.Name,
		Type:              AccountType(req.AccountType),
		Subtype:           Subtype(req.Subtype),
		ParentID:          req.ParentID,
		IsGroup:           req.IsGroup,
		EntityID:          req.EntityID,
		RelatedEntityID:   req.RelatedEntityID,
		AllowedCurrencies: req.AllowedCurrencies,
	})
	if err != nil {
		h.logger.Warn("create account rejected",
			slog.String("entity", req.EntityID), slog.String("code", req.ID), slog.Any("error", err))
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	err := h.service.Update(r.Context(), Account{
		EntityID:          chi.URLParam(r, "entityID"),
		ID:                chi.URLParam(r, "id"),
		Name:              req.Name,
		Type:              AccountType(req.AccountType),
		Subtype:           Subtype(req.Subtype),
		ParentID:          req.ParentID,
		IsGroup:           req.IsGroup,
		RelatedEntityID:   req.RelatedEntityID,
		AllowedCurrencies: req.AllowedCurrencies,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "entityID"), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusNoContent, nil)
}
