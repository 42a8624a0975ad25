package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// Store contracts the engines read and write through. Implemented by the
// repository package; tests substitute in-memory fakes.

// ExpenseFilter narrows expense listings for budget math and detection.
// Zero values mean "no constraint".
type ExpenseFilter struct {
	From       time.Time
	To         time.Time
	CategoryID *int64
	AccountID  *int64
	Tag        string
}

type AccountStore interface {
	Get(ctx context.Context, ownerID, accountID int64) (*models.Account, error)
	ListActive(ctx context.Context, ownerID int64) ([]models.Account, error)
}

type TransactionStore interface {
	Get(ctx context.Context, ownerID, txID int64) (*models.Transaction, error)
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, ownerID, txID int64) error

	// ListAccountFlows returns every transaction where the account is either
	// the source or the transfer destination, in one fetch.
	ListAccountFlows(ctx context.Context, ownerID, accountID int64) ([]models.Transaction, error)

	// ListExpenses returns expense transactions matching the filter.
	ListExpenses(ctx context.Context, ownerID int64, f ExpenseFilter) ([]models.Transaction, error)

	CountByInstallmentPurchase(ctx context.Context, purchaseID int64) (int, error)
	DeleteByInstallmentPurchase(ctx context.Context, purchaseID int64) error

	// ExistsForRecurringOn reports whether the template already materialized
	// a transaction on the given calendar day.
	ExistsForRecurringOn(ctx context.Context, recurringID int64, day time.Time) (bool, error)
}

type SplitStore interface {
	Create(ctx context.Context, split *models.TransactionSplit) (*models.TransactionSplit, error)
}

type CreditCardStore interface {
	Get(ctx context.Context, ownerID, cardID int64) (*models.CreditCard, error)
	GetByAccount(ctx context.Context, ownerID, accountID int64) (*models.CreditCard, error)
	ListActive(ctx context.Context, ownerID int64) ([]models.CreditCard, error)
	Create(ctx context.Context, card *models.CreditCard) (*models.CreditCard, error)
}

type InstallmentStore interface {
	Get(ctx context.Context, ownerID, purchaseID int64) (*models.InstallmentPurchase, error)
	ListActiveByCard(ctx context.Context, cardID int64) ([]models.InstallmentPurchase, error)
	Create(ctx context.Context, p *models.InstallmentPurchase) (*models.InstallmentPurchase, error)
	Delete(ctx context.Context, purchaseID int64) error
}

type BudgetStore interface {
	Get(ctx context.Context, ownerID, budgetID int64) (*models.Budget, error)
	ListActive(ctx context.Context, ownerID int64) ([]models.Budget, error)
	FindActiveByCategory(ctx context.Context, ownerID, categoryID int64) (*models.Budget, error)

	// ListRolloverCandidates returns every active budget with rollover
	// enabled, across owners, for the period-close batch.
	ListRolloverCandidates(ctx context.Context) ([]models.Budget, error)

	UpdateRollover(ctx context.Context, budgetID int64, rollover decimal.Decimal, closedAt time.Time) error
}

type GoalStore interface {
	Get(ctx context.Context, ownerID, goalID int64) (*models.Goal, error)
	ListActive(ctx context.Context, ownerID int64) ([]models.Goal, error)
	UpdateProgress(ctx context.Context, goal *models.Goal) error
}

type ContributionStore interface {
	Create(ctx context.Context, c *models.GoalContribution) (*models.GoalContribution, error)
	ListSince(ctx context.Context, goalID int64, since time.Time) ([]models.GoalContribution, error)
}

type RecurringStore interface {
	Get(ctx context.Context, ownerID, recurringID int64) (*models.RecurringTransaction, error)
	ListActiveByOwner(ctx context.Context, ownerID int64) ([]models.RecurringTransaction, error)

	// ListDueCandidates returns active auto-create templates across owners.
	ListDueCandidates(ctx context.Context) ([]models.RecurringTransaction, error)

	UpdateLastCreated(ctx context.Context, recurringID int64, at time.Time) error
	Deactivate(ctx context.Context, recurringID int64) error
}

type SubscriptionStore interface {
	ListActive(ctx context.Context, ownerID int64) ([]models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
}
