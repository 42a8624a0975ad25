package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/repository"
	"github.com/aregalado/plata/internal/services"
)

type RecurringHandler struct {
	recurring *repository.RecurringRepository
	svc       *services.RecurringService
	log       zerolog.Logger
}

func NewRecurringHandler(recurring *repository.RecurringRepository, svc *services.RecurringService, log zerolog.Logger) *RecurringHandler {
	return &RecurringHandler{recurring: recurring, svc: svc, log: log}
}

// List handles GET /api/recurring
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.recurring.ListActiveByOwner(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list recurring transactions")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"recurring_transactions": templates, "count": len(templates)})
}

// Create handles POST /api/recurring
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID           int64                  `json:"account_id"`
		CategoryID          *int64                 `json:"category_id"`
		Name                string                 `json:"name"`
		Type                models.TransactionType `json:"type"`
		Amount              decimal.Decimal        `json:"amount"`
		Frequency           models.Frequency       `json:"frequency"`
		CustomFrequencyDays *int                   `json:"custom_frequency_days"`
		DayOfMonth          *int                   `json:"day_of_month"`
		DayOfWeek           *int                   `json:"day_of_week"`
		StartDate           time.Time              `json:"start_date"`
		EndDate             *time.Time             `json:"end_date"`
		AutoCreate          bool                   `json:"auto_create"`
		Merchant            string                 `json:"merchant"`
		Notes               string                 `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Type.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown transaction type")
		return
	}
	if !req.Frequency.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown frequency")
		return
	}
	if !req.Amount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.StartDate.IsZero() {
		WriteError(w, http.StatusBadRequest, "start_date is required")
		return
	}

	template, err := h.recurring.Create(r.Context(), &models.RecurringTransaction{
		OwnerID:             ownerFrom(r),
		AccountID:           req.AccountID,
		CategoryID:          req.CategoryID,
		Name:                req.Name,
		Type:                req.Type,
		Amount:              req.Amount,
		Frequency:           req.Frequency,
		CustomFrequencyDays: req.CustomFrequencyDays,
		DayOfMonth:          req.DayOfMonth,
		DayOfWeek:           req.DayOfWeek,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		AutoCreate:          req.AutoCreate,
		Merchant:            req.Merchant,
		Notes:               req.Notes,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create recurring transaction")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, template)
}

// Upcoming handles GET /api/recurring/upcoming
func (h *RecurringHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	upcoming, err := h.svc.Upcoming(r.Context(), ownerFrom(r), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"upcoming": upcoming, "count": len(upcoming)})
}
