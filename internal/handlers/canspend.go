package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/services"
)

type CanSpendHandler struct {
	svc *services.CanSpendService
	log zerolog.Logger
}

func NewCanSpendHandler(svc *services.CanSpendService, log zerolog.Logger) *CanSpendHandler {
	return &CanSpendHandler{svc: svc, log: log}
}

// Analyze handles POST /api/can-spend
func (h *CanSpendHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount     decimal.Decimal `json:"amount"`
		AccountID  int64           `json:"account_id"`
		CategoryID int64           `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), ownerFrom(r), req.Amount, req.AccountID, req.CategoryID)
	if err != nil {
		h.log.Error().Err(err).Msg("can-spend analysis failed")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}
