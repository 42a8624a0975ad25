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

func newSubscriptionService(subs *fakeSubscriptions, transactions *fakeTransactions, today time.Time) *SubscriptionService {
	svc := NewSubscriptionService(subs, transactions, zerolog.Nop())
	svc.now = func() time.Time { return today }
	return svc
}

func chargeOn(merchant string, amount int64, day time.Time) models.Transaction {
	return models.Transaction{
		OwnerID: 10, AccountID: 1, Type: models.TxExpense,
		Amount: decimal.NewFromInt(amount), Merchant: merchant, Date: day,
	}
}

func TestDetectSubscriptions(t *testing.T) {
	ctx := context.Background()
	today := date(2025, 11, 26)

	transactions := newFakeTransactions(
		// monthly cadence
		chargeOn("Netflix", 229, date(2025, 8, 15)),
		chargeOn("Netflix", 229, date(2025, 9, 14)),
		chargeOn("Netflix", 229, date(2025, 10, 15)),
		chargeOn("Netflix", 229, date(2025, 11, 14)),
		// weekly cadence
		chargeOn("Coffee Club", 50, date(2025, 11, 5)),
		chargeOn("Coffee Club", 50, date(2025, 11, 12)),
		chargeOn("Coffee Club", 50, date(2025, 11, 19)),
		// single occurrence, ignored
		chargeOn("Hardware store", 900, date(2025, 11, 1)),
		// already confirmed, skipped
		chargeOn("Spotify", 115, date(2025, 10, 1)),
		chargeOn("Spotify", 115, date(2025, 11, 1)),
	)
	subs := newFakeSubscriptions(models.Subscription{
		ID: 1, OwnerID: 10, Name: "Spotify", Amount: decimal.NewFromInt(115),
		Frequency: "monthly", IsActive: true,
	})

	svc := newSubscriptionService(subs, transactions, today)

	candidates, err := svc.Detect(ctx, 10, 6)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(candidates))

	// ordered by confidence
	assert.Equal(t, "Netflix", candidates[0].Merchant)
	assert.Equal(t, "monthly", candidates[0].Frequency)
	assert.Equal(t, 0.8, candidates[0].Confidence)
	assert.Equal(t, 4, candidates[0].Occurrences)
	assert.Equal(t, date(2025, 11, 14), candidates[0].LastCharge)

	assert.Equal(t, "Coffee Club", candidates[1].Merchant)
	assert.Equal(t, "weekly", candidates[1].Frequency)
	assert.Equal(t, 0.6, candidates[1].Confidence)
}

func TestClassifyInterval(t *testing.T) {
	tests := []struct {
		days       float64
		frequency  string
		confidence float64
	}{
		{30, "monthly", 0.8},
		{25, "monthly", 0.8},
		{365, "annual", 0.7},
		{14, "biweekly", 0.6},
		{7, "weekly", 0.6},
		{3, "", 0},
		{60, "", 0},
	}

	for _, tc := range tests {
		frequency, confidence := classifyInterval(tc.days)
		assert.Equal(t, tc.frequency, frequency)
		assert.Equal(t, tc.confidence, confidence)
	}
}

func TestConfirmSubscription(t *testing.T) {
	ctx := context.Background()
	subs := newFakeSubscriptions()
	svc := newSubscriptionService(subs, newFakeTransactions(), date(2025, 11, 26))

	created, err := svc.Confirm(ctx, 10, SubscriptionCandidate{
		Merchant:           "Netflix",
		Amount:             decimal.NewFromInt(229),
		Frequency:          "monthly",
		NextChargeEstimate: date(2025, 12, 14),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Netflix", created.Name)
	assert.True(t, created.IsActive)
	assert.Equal(t, date(2025, 12, 14), *created.NextBillingDate)
}

func TestSubscriptionSpendTotals(t *testing.T) {
	ctx := context.Background()

	subs := newFakeSubscriptions(
		models.Subscription{OwnerID: 10, Name: "Streaming", Amount: decimal.NewFromInt(100), Frequency: "monthly", IsActive: true},
		models.Subscription{OwnerID: 10, Name: "Domain", Amount: decimal.NewFromInt(120), Frequency: "annual", IsActive: true},
		models.Subscription{OwnerID: 10, Name: "Cleaning", Amount: decimal.NewFromInt(200), Frequency: "biweekly", IsActive: true},
		models.Subscription{OwnerID: 10, Name: "Cancelled", Amount: decimal.NewFromInt(999), Frequency: "monthly"},
	)
	svc := newSubscriptionService(subs, newFakeTransactions(), date(2025, 11, 26))

	summary, err := svc.SpendTotals(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.ActiveCount)
	// 100 + 120/12 + 200*2
	assert.True(t, summary.MonthlyTotal.Equal(decimal.NewFromInt(510)))
	assert.True(t, summary.AnnualTotal.Equal(decimal.NewFromInt(6120)))
}

func TestUpcomingRenewals(t *testing.T) {
	ctx := context.Background()
	soon := date(2025, 11, 30)
	far := date(2025, 12, 20)

	subs := newFakeSubscriptions(
		models.Subscription{OwnerID: 10, Name: "Streaming", Amount: decimal.NewFromInt(229), Frequency: "monthly", NextBillingDate: &soon, IsActive: true},
		models.Subscription{OwnerID: 10, Name: "Domain", Amount: decimal.NewFromInt(120), Frequency: "annual", NextBillingDate: &far, IsActive: true},
		models.Subscription{OwnerID: 10, Name: "No date", Amount: decimal.NewFromInt(50), Frequency: "monthly", IsActive: true},
	)
	svc := newSubscriptionService(subs, newFakeTransactions(), date(2025, 11, 26))

	renewals, err := svc.UpcomingRenewals(ctx, 10, 7)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(renewals))
	assert.Equal(t, "Streaming", renewals[0].Subscription.Name)
	assert.Equal(t, 4, renewals[0].DaysUntil)
}
