package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/repository"
	"github.com/aregalado/plata/internal/services"
)

type BudgetsHandler struct {
	budgets *repository.BudgetRepository
	svc     *services.BudgetService
	log     zerolog.Logger
}

func NewBudgetsHandler(budgets *repository.BudgetRepository, svc *services.BudgetService, log zerolog.Logger) *BudgetsHandler {
	return &BudgetsHandler{budgets: budgets, svc: svc, log: log}
}

// List handles GET /api/budgets
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.ListActive(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list budgets")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"budgets": budgets, "count": len(budgets)})
}

// Create handles POST /api/budgets
func (h *BudgetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                    string              `json:"name"`
		Kind                    models.BudgetKind   `json:"type"`
		LimitAmount             decimal.Decimal     `json:"limit_amount"`
		Period                  models.BudgetPeriod `json:"period"`
		StartDay                int                 `json:"start_day"`
		EnableRollover          bool                `json:"enable_rollover"`
		RolloverMaxAccumulation *decimal.Decimal    `json:"rollover_max_accumulation"`
		AlertAtPercentage       int                 `json:"alert_at_percentage"`
		AlertOnExceed           bool                `json:"alert_on_exceed"`
		CategoryID              *int64              `json:"category_id"`
		AccountID               *int64              `json:"account_id"`
		Tag                     string              `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Kind.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown budget type")
		return
	}
	if !req.Period.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown budget period")
		return
	}
	if !req.LimitAmount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "limit_amount must be positive")
		return
	}
	switch req.Kind {
	case models.BudgetCategory:
		if req.CategoryID == nil {
			WriteError(w, http.StatusBadRequest, "category budget requires category_id")
			return
		}
	case models.BudgetAccount:
		if req.AccountID == nil {
			WriteError(w, http.StatusBadRequest, "account budget requires account_id")
			return
		}
	case models.BudgetTag:
		if req.Tag == "" {
			WriteError(w, http.StatusBadRequest, "tag budget requires tag")
			return
		}
	}
	if req.AlertAtPercentage == 0 {
		req.AlertAtPercentage = 80
	}

	budget, err := h.budgets.Create(r.Context(), &models.Budget{
		OwnerID:                 ownerFrom(r),
		Name:                    req.Name,
		Kind:                    req.Kind,
		LimitAmount:             req.LimitAmount,
		Period:                  req.Period,
		StartDay:                req.StartDay,
		EnableRollover:          req.EnableRollover,
		RolloverMaxAccumulation: req.RolloverMaxAccumulation,
		AlertAtPercentage:       req.AlertAtPercentage,
		AlertOnExceed:           req.AlertOnExceed,
		CategoryID:              req.CategoryID,
		AccountID:               req.AccountID,
		Tag:                     req.Tag,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create budget")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, budget)
}

// Progress handles GET /api/budgets/{id}/progress
func (h *BudgetsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	progress, err := h.svc.Progress(r.Context(), ownerFrom(r), budgetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}
