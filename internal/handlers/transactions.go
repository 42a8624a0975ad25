package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aregalado/plata/internal/repository"
	"github.com/aregalado/plata/internal/services"
)

type TransactionsHandler struct {
	transactions *repository.TransactionRepository
	svc          *services.TransactionService
	log          zerolog.Logger
}

func NewTransactionsHandler(transactions *repository.TransactionRepository, svc *services.TransactionService, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, svc: svc, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var accountID *int64
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid account_id")
			return
		}
		accountID = &id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := h.transactions.List(r.Context(), ownerFrom(r), accountID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list transactions")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"transactions": txs, "count": len(txs)})
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.svc.Create(r.Context(), ownerFrom(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	txID, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.svc.Delete(r.Context(), ownerFrom(r), txID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
