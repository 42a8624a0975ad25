package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Router owns the full handler set and wires it onto a ServeMux.
type Router struct {
	Accounts      *AccountsHandler
	Transactions  *TransactionsHandler
	CreditCards   *CreditCardsHandler
	Budgets       *BudgetsHandler
	Goals         *GoalsHandler
	Recurring     *RecurringHandler
	Subscriptions *SubscriptionsHandler
	CanSpend      *CanSpendHandler
	Log           zerolog.Logger
}

// Handler builds the API routes wrapped in the middleware chain.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	api := http.NewServeMux()

	api.HandleFunc("GET /api/accounts", rt.Accounts.List)
	api.HandleFunc("POST /api/accounts", rt.Accounts.Create)
	api.HandleFunc("GET /api/accounts/{id}/balance", rt.Accounts.Balance)
	api.HandleFunc("DELETE /api/accounts/{id}", rt.Accounts.Archive)

	api.HandleFunc("GET /api/transactions", rt.Transactions.List)
	api.HandleFunc("POST /api/transactions", rt.Transactions.Create)
	api.HandleFunc("DELETE /api/transactions/{id}", rt.Transactions.Delete)

	api.HandleFunc("GET /api/credit-cards", rt.CreditCards.List)
	api.HandleFunc("POST /api/credit-cards", rt.CreditCards.Create)
	api.HandleFunc("GET /api/credit-cards/{id}/summary", rt.CreditCards.Summary)
	api.HandleFunc("GET /api/credit-cards/{id}/installments", rt.CreditCards.Installments)
	api.HandleFunc("GET /api/credit-cards/{id}/simulate-payment", rt.CreditCards.SimulatePayment)
	api.HandleFunc("POST /api/credit-cards/{id}/payments", rt.CreditCards.Pay)

	api.HandleFunc("GET /api/budgets", rt.Budgets.List)
	api.HandleFunc("POST /api/budgets", rt.Budgets.Create)
	api.HandleFunc("GET /api/budgets/{id}/progress", rt.Budgets.Progress)

	api.HandleFunc("GET /api/goals", rt.Goals.List)
	api.HandleFunc("POST /api/goals", rt.Goals.Create)
	api.HandleFunc("GET /api/goals/{id}/progress", rt.Goals.Progress)
	api.HandleFunc("POST /api/goals/{id}/contributions", rt.Goals.Contribute)
	api.HandleFunc("POST /api/goals/{id}/withdrawals", rt.Goals.Withdraw)

	api.HandleFunc("GET /api/recurring", rt.Recurring.List)
	api.HandleFunc("POST /api/recurring", rt.Recurring.Create)
	api.HandleFunc("GET /api/recurring/upcoming", rt.Recurring.Upcoming)

	api.HandleFunc("GET /api/subscriptions", rt.Subscriptions.Summary)
	api.HandleFunc("POST /api/subscriptions", rt.Subscriptions.Confirm)
	api.HandleFunc("POST /api/subscriptions/detect", rt.Subscriptions.Detect)
	api.HandleFunc("GET /api/subscriptions/upcoming", rt.Subscriptions.Upcoming)

	api.HandleFunc("POST /api/can-spend", rt.CanSpend.Analyze)

	// owner resolution applies to every data route, the health check stays open
	mux.Handle("/api/", WithOwner(api))

	var handler http.Handler = mux
	handler = RequestID(handler)
	handler = Recovery(rt.Log)(handler)
	handler = Logger(rt.Log)(handler)
	return handler
}
