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

func testCard() models.CreditCard {
	return models.CreditCard{
		ID:                 1,
		OwnerID:            10,
		AccountID:          2,
		Name:               "Gold",
		CreditLimit:        decimal.NewFromInt(50000),
		CutoffDay:          15,
		PaymentDueDay:      5,
		AnnualInterestRate: decimal.NewFromInt(48),
		MinimumPaymentPct:  decimal.NewFromInt(5),
		IsActive:           true,
	}
}

func newCardService(cards *fakeCards, installments *fakeInstallments,
	transactions *fakeTransactions, accounts *fakeAccounts, today time.Time) *CreditCardService {
	svc := NewCreditCardService(cards, installments, transactions, accounts, zerolog.Nop())
	svc.now = func() time.Time { return today }
	return svc
}

func TestCardSummary(t *testing.T) {
	ctx := context.Background()

	cards := newFakeCards(testCard())
	accounts := newFakeAccounts(models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit})
	transactions := newFakeTransactions(
		// before the statement window, must not count
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(500), Date: date(2025, 10, 10)},
		// statement window Oct 16 .. Nov 15
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(1000), Date: date(2025, 10, 20)},
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(500), Date: date(2025, 11, 10)},
		// open cycle
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(800), Date: date(2025, 11, 20)},
	)

	svc := newCardService(cards, newFakeInstallments(), transactions, accounts, date(2025, 11, 26))

	summary, err := svc.Summary(ctx, 10, 1)
	assert.NoError(t, err)

	assert.Equal(t, date(2025, 10, 16), summary.CycleStart)
	assert.Equal(t, date(2025, 11, 15), summary.CycleEnd)
	assert.True(t, summary.BalanceAtCutoff.Equal(decimal.NewFromInt(1500)))
	assert.True(t, summary.PostCutoffBalance.Equal(decimal.NewFromInt(800)))
	assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(2300)))
	assert.True(t, summary.AvailableCredit.Equal(decimal.NewFromInt(47700)))
	assert.True(t, summary.MinimumPayment.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, date(2025, 12, 15), summary.NextCutoffDate)
	assert.Equal(t, date(2025, 12, 5), summary.NextPaymentDate)
}

func TestCardSummaryInstallmentDebt(t *testing.T) {
	ctx := context.Background()

	cards := newFakeCards(testCard())
	accounts := newFakeAccounts(models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit})
	installments := newFakeInstallments(models.InstallmentPurchase{
		ID: 1, OwnerID: 10, CreditCardID: 1,
		TotalAmount:          decimal.NewFromInt(1200),
		NumberOfInstallments: 12,
		InstallmentAmount:    decimal.NewFromInt(100),
		IsActive:             true,
	})
	// three installments already billed
	transactions := newFakeTransactions(
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(100), Date: date(2025, 9, 1), InstallmentPurchaseID: ptr(int64(1))},
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(100), Date: date(2025, 10, 1), InstallmentPurchaseID: ptr(int64(1))},
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(100), Date: date(2025, 11, 1), InstallmentPurchaseID: ptr(int64(1))},
	)

	svc := newCardService(cards, installments, transactions, accounts, date(2025, 11, 26))

	summary, err := svc.Summary(ctx, 10, 1)
	assert.NoError(t, err)
	assert.True(t, summary.InstallmentDebt.Equal(decimal.NewFromInt(900)))

	statuses, err := svc.Installments(ctx, 10, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(statuses))
	assert.Equal(t, 3, statuses[0].InstallmentsPaid)
	assert.Equal(t, 9, statuses[0].InstallmentsLeft)
	assert.True(t, statuses[0].AmountPaid.Equal(decimal.NewFromInt(300)))
	assert.True(t, statuses[0].AmountRemaining.Equal(decimal.NewFromInt(900)))
	assert.True(t, statuses[0].ProgressPercentage.Equal(decimal.NewFromInt(25)))
}

func TestCreateCardValidation(t *testing.T) {
	ctx := context.Background()

	accounts := newFakeAccounts(
		models.Account{ID: 1, OwnerID: 10, Type: models.AccountDebit},
		models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit},
	)
	svc := newCardService(newFakeCards(), newFakeInstallments(), newFakeTransactions(), accounts, date(2025, 11, 26))

	t.Run("NonCreditAccount", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, 10, &models.CreditCard{AccountID: 1, CutoffDay: 15, PaymentDueDay: 5})
		assert.IsError(t, err, ErrInvalidState)
	})

	t.Run("CutoffDayOutOfRange", func(t *testing.T) {
		_, err := svc.CreateCard(ctx, 10, &models.CreditCard{AccountID: 2, CutoffDay: 31, PaymentDueDay: 5})
		assert.IsError(t, err, ErrInvalidState)
	})

	t.Run("OneCardPerAccount", func(t *testing.T) {
		created, err := svc.CreateCard(ctx, 10, &models.CreditCard{AccountID: 2, CutoffDay: 15, PaymentDueDay: 5})
		assert.NoError(t, err)
		assert.True(t, created.IsActive)

		_, err = svc.CreateCard(ctx, 10, &models.CreditCard{AccountID: 2, CutoffDay: 10, PaymentDueDay: 1})
		assert.IsError(t, err, ErrInvalidState)
	})
}

func TestSimulateMinimumPayment(t *testing.T) {
	ctx := context.Background()

	cards := newFakeCards(testCard())
	accounts := newFakeAccounts(models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit})
	transactions := newFakeTransactions(
		models.Transaction{OwnerID: 10, AccountID: 2, Type: models.TxExpense, Amount: decimal.NewFromInt(1000), Date: date(2025, 11, 10)},
	)

	svc := newCardService(cards, newFakeInstallments(), transactions, accounts, date(2025, 11, 26))

	sim, err := svc.SimulateMinimumPayment(ctx, 10, 1)
	assert.NoError(t, err)

	// 5% of 1000, interest on the remainder at 4% monthly
	assert.True(t, sim.MinimumPayment.Equal(decimal.NewFromInt(50)))
	assert.True(t, sim.InterestIfMinimum.Equal(decimal.NewFromInt(38)))
	assert.True(t, sim.NewBalanceNextMonth.Equal(decimal.NewFromInt(988)))

	// a pure percentage minimum shrinks the payment below one unit before the
	// balance ever clears
	assert.Equal(t, -1, sim.MonthsToPayoff)
	assert.NotZero(t, sim.Warning)
}

func TestSimulateMinimumPaymentZeroBalance(t *testing.T) {
	cards := newFakeCards(testCard())
	accounts := newFakeAccounts(models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit})

	svc := newCardService(cards, newFakeInstallments(), newFakeTransactions(), accounts, date(2025, 11, 26))

	sim, err := svc.SimulateMinimumPayment(context.Background(), 10, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, sim.MonthsToPayoff)
}

func TestRegisterPayment(t *testing.T) {
	ctx := context.Background()

	cards := newFakeCards(testCard())
	accounts := newFakeAccounts(
		models.Account{ID: 1, OwnerID: 10, Type: models.AccountDebit},
		models.Account{ID: 2, OwnerID: 10, Type: models.AccountCredit},
	)
	transactions := newFakeTransactions()

	svc := newCardService(cards, newFakeInstallments(), transactions, accounts, date(2025, 11, 26))

	tx, err := svc.RegisterPayment(ctx, 10, 1, 1, decimal.NewFromInt(1500), date(2025, 12, 1))
	assert.NoError(t, err)
	assert.Equal(t, models.TxTransfer, tx.Type)
	assert.Equal(t, int64(1), tx.AccountID)
	assert.Equal(t, int64(2), *tx.ToAccountID)

	_, err = svc.RegisterPayment(ctx, 10, 1, 1, decimal.Zero, date(2025, 12, 1))
	assert.IsError(t, err, ErrInvalidState)
}
