package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/repository"
	"github.com/aregalado/plata/internal/services"
)

type GoalsHandler struct {
	goals *repository.GoalRepository
	svc   *services.GoalService
	log   zerolog.Logger
}

func NewGoalsHandler(goals *repository.GoalRepository, svc *services.GoalService, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{goals: goals, svc: svc, log: log}
}

// List handles GET /api/goals
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.ListActive(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list goals")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"goals": goals, "count": len(goals)})
}

// Create handles POST /api/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                   string          `json:"name"`
		Description            string          `json:"description"`
		TargetAmount           decimal.Decimal `json:"target_amount"`
		InitialAmount          decimal.Decimal `json:"initial_amount"`
		TargetDate             *time.Time      `json:"target_date"`
		AutoContributionAmount decimal.Decimal `json:"auto_contribution_amount"`
		Priority               int             `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.TargetAmount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "target_amount must be positive")
		return
	}

	goal, err := h.goals.Create(r.Context(), &models.Goal{
		OwnerID:                ownerFrom(r),
		Name:                   req.Name,
		Description:            req.Description,
		TargetAmount:           req.TargetAmount,
		InitialAmount:          req.InitialAmount,
		TargetDate:             req.TargetDate,
		AutoContributionAmount: req.AutoContributionAmount,
		Priority:               req.Priority,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create goal")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, goal)
}

// Progress handles GET /api/goals/{id}/progress
func (h *GoalsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	progress, err := h.svc.Progress(r.Context(), ownerFrom(r), goalID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

// Contribute handles POST /api/goals/{id}/contributions
func (h *GoalsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Date   time.Time       `json:"date"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	contribution, err := h.svc.Contribute(r.Context(), ownerFrom(r), goalID, req.Amount, req.Date, req.Notes, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, contribution)
}

// Withdraw handles POST /api/goals/{id}/withdrawals
func (h *GoalsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.svc.Withdraw(r.Context(), ownerFrom(r), goalID, req.Amount, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, goal)
}
