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

type CreditCardsHandler struct {
	cards *repository.CreditCardRepository
	svc   *services.CreditCardService
	log   zerolog.Logger
}

func NewCreditCardsHandler(cards *repository.CreditCardRepository, svc *services.CreditCardService, log zerolog.Logger) *CreditCardsHandler {
	return &CreditCardsHandler{cards: cards, svc: svc, log: log}
}

// List handles GET /api/credit-cards
func (h *CreditCardsHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListActive(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list credit cards")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"credit_cards": cards, "count": len(cards)})
}

// Create handles POST /api/credit-cards
func (h *CreditCardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID          int64           `json:"account_id"`
		Name               string          `json:"name"`
		CreditLimit        decimal.Decimal `json:"credit_limit"`
		CutoffDay          int             `json:"cutoff_day"`
		PaymentDueDay      int             `json:"payment_due_day"`
		AnnualInterestRate decimal.Decimal `json:"annual_interest_rate"`
		MinimumPaymentPct  decimal.Decimal `json:"minimum_payment_percentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.svc.CreateCard(r.Context(), ownerFrom(r), &models.CreditCard{
		AccountID:          req.AccountID,
		Name:               req.Name,
		CreditLimit:        req.CreditLimit,
		CutoffDay:          req.CutoffDay,
		PaymentDueDay:      req.PaymentDueDay,
		AnnualInterestRate: req.AnnualInterestRate,
		MinimumPaymentPct:  req.MinimumPaymentPct,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, card)
}

// Summary handles GET /api/credit-cards/{id}/summary
func (h *CreditCardsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	summary, err := h.svc.Summary(r.Context(), ownerFrom(r), cardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// Installments handles GET /api/credit-cards/{id}/installments
func (h *CreditCardsHandler) Installments(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	statuses, err := h.svc.Installments(r.Context(), ownerFrom(r), cardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"installment_purchases": statuses, "count": len(statuses)})
}

// SimulatePayment handles GET /api/credit-cards/{id}/simulate-payment
func (h *CreditCardsHandler) SimulatePayment(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	simulation, err := h.svc.SimulateMinimumPayment(r.Context(), ownerFrom(r), cardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, simulation)
}

// Pay handles POST /api/credit-cards/{id}/payments
func (h *CreditCardsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	var req struct {
		FromAccountID int64           `json:"from_account_id"`
		Amount        decimal.Decimal `json:"amount"`
		Date          time.Time       `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	tx, err := h.svc.RegisterPayment(r.Context(), ownerFrom(r), cardID, req.FromAccountID, req.Amount, req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}
