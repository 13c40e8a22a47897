package interunit

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mizan-erp/mizan/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches transfer and reconciliation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transfers", h.List)
	r.Post("/transfers", h.Create)
	r.Get("/transfers/{id}", h.Show)
	r.Post("/transfers/{id}/post", h.Post)
	r.Post("/transfers/{id}/cancel", h.Cancel)
	r.Post("/reconciliations", h.Reconcile)
	r.Get("/balance", h.NetBalance)
	r.Get("/balance/check", h.CheckBalance)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)
	transfers, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].TransferNumber > transfers[j].TransferNumber
	})
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"transfers": shared.Page(transfers, filters),
		"page":      filters.Page,
		"limit":     filters.Limit,
		"total":     len(transfers),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, transfer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.WriteError(w, shared.Validation("amount is not a valid number"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		shared.WriteError(w, shared.Validation("date must be YYYY-MM-DD"))
		return
	}
	transfer, err := h.service.CreateTransfer(r.Context(), CreateTransferInput{
		FromEntityID:  req.FromEntityID,
		ToEntityID:    req.ToEntityID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Currency:      req.Currency,
		Date:          date,
		Description:   req.Description,
		Draft:         req.Draft,
	})
	if err != nil {
		h.logger.Warn("transfer rejected",
			slog.String("from", req.FromEntityID), slog.String("to", req.ToEntityID), slog.Any("error", err))
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, transfer)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	transfer, err := h.service.Post(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, transfer)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": string(StatusCancelled)})
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, shared.Validation(err.Error()))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.WriteError(w, shared.Validation("amount is not a valid number"))
		return
	}
	transfer, err := h.service.Reconcile(r.Context(), req.FromEntityID, req.ToEntityID, amount, req.Description)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, transfer)
}

func (h *Handler) NetBalance(w http.ResponseWriter, r *http.Request) {
	entityA := r.URL.Query().Get("entityA")
	entityB := r.URL.Query().Get("entityB")
	if entityA == "" || entityB == "" {
		shared.WriteError(w, shared.Validation("entityA and entityB query parameters are required"))
		return
	}
	balance, err := h.service.NetBalance(r.Context(), entityA, entityB)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, balance)
}

func (h *Handler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CheckSystemBalance(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}
