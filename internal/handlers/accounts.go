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

type AccountsHandler struct {
	accounts *repository.AccountRepository
	balance  *services.BalanceService
	log      zerolog.Logger
}

func NewAccountsHandler(accounts *repository.AccountRepository, balance *services.BalanceService, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, balance: balance, log: log}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context(), ownerFrom(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list accounts")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"accounts": accounts, "count": len(accounts)})
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string             `json:"name"`
		Type           models.AccountType `json:"type"`
		InitialBalance decimal.Decimal    `json:"initial_balance"`
		Currency       string             `json:"currency"`
		IsDefault      bool               `json:"is_default"`
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
		WriteError(w, http.StatusBadRequest, "unknown account type")
		return
	}
	if req.Currency == "" {
		req.Currency = "MXN"
	}

	account, err := h.accounts.Create(r.Context(), &models.Account{
		OwnerID:        ownerFrom(r),
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create account")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, account)
}

// Balance handles GET /api/accounts/{id}/balance
func (h *AccountsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	balance, err := h.balance.AccountBalance(r.Context(), ownerFrom(r), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"account_id": accountID, "balance": balance})
}

// Archive handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accounts.Archive(r.Context(), ownerFrom(r), accountID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
