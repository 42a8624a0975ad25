package services

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

func TestSchedulerRunOnce(t *testing.T) {
	ctx := context.Background()
	today := date(2025, 11, 26)

	transactions := newFakeTransactions()
	recurring := newFakeRecurring(models.RecurringTransaction{
		ID: 1, OwnerID: 10, AccountID: 1, Name: "Rent",
		Type: models.TxExpense, Amount: decimal.NewFromInt(8000),
		Frequency: models.FreqMonthly, StartDate: date(2025, 11, 1),
		AutoCreate: true, IsActive: true,
	})
	budgets := newFakeBudgets(models.Budget{
		ID: 1, OwnerID: 10, Kind: models.BudgetGlobal,
		LimitAmount: decimal.NewFromInt(1000), Period: models.PeriodMonthly, StartDay: 1,
		EnableRollover: true, IsActive: true,
	})

	recurringSvc := newRecurringService(recurring, transactions, today)
	budgetSvc := NewBudgetService(budgets, transactions, zerolog.Nop())
	budgetSvc.now = func() time.Time { return today }

	scheduler := NewScheduler(recurringSvc, budgetSvc, zerolog.Nop())
	scheduler.RunOnce(ctx)

	// one recurring transaction materialized
	assert.Equal(t, 1, len(transactions.txs))
	// the budget period rolled over once
	stored, _ := budgets.Get(ctx, 10, 1)
	assert.NotZero(t, stored.LastRolloverAt)

	// a second pass changes nothing
	scheduler.RunOnce(ctx)
	assert.Equal(t, 1, len(transactions.txs))
}
