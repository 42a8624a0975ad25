package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aregalado/plata/internal/services"
)

type SubscriptionsHandler struct {
	svc *services.SubscriptionService
	log zerolog.Logger
}

func NewSubscriptionsHandler(svc *services.SubscriptionService, log zerolog.Logger) *SubscriptionsHandler {
	return &SubscriptionsHandler{svc: svc, log: log}
}

// Summary handles GET /api/subscriptions: active subscriptions with their
// normalized monthly and annual totals.
func (h *SubscriptionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.SpendTotals(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to summarize subscriptions")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// Detect handles POST /api/subscriptions/detect
func (h *SubscriptionsHandler) Detect(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	if months <= 0 {
		months = 6
	}

	candidates, err := h.svc.Detect(r.Context(), ownerFrom(r), months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"candidates": candidates, "count": len(candidates)})
}

// Confirm handles POST /api/subscriptions
func (h *SubscriptionsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var candidate services.SubscriptionCandidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if candidate.Merchant == "" {
		WriteError(w, http.StatusBadRequest, "merchant is required")
		return
	}

	sub, err := h.svc.Confirm(r.Context(), ownerFrom(r), candidate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sub)
}

// Upcoming handles GET /api/subscriptions/upcoming
func (h *SubscriptionsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	renewals, err := h.svc.UpcomingRenewals(r.Context(), ownerFrom(r), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"renewals": renewals, "count": len(renewals)})
}
