package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// Interval bands for classifying a repeating charge. Unmatched intervals are
// not reported.
var frequencyBands = []struct {
	frequency  string
	minDays    float64
	maxDays    float64
	confidence float64
}{
	{"monthly", 25, 35, 0.8},
	{"annual", 350, 380, 0.7},
	{"biweekly", 12, 16, 0.6},
	{"weekly", 5, 9, 0.6},
}

// SubscriptionService detects repeating charges in transaction history and
// aggregates subscription spend.
type SubscriptionService struct {
	subscriptions SubscriptionStore
	transactions  TransactionStore
	log           zerolog.Logger
	now           func() time.Time
}

func NewSubscriptionService(subscriptions SubscriptionStore, transactions TransactionStore, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		transactions:  transactions,
		log:           log,
		now:           time.Now,
	}
}

// SubscriptionCandidate is a detected repeating charge, scored by how well
// its interval fits a known billing cadence.
type SubscriptionCandidate struct {
	Merchant           string          `json:"merchant"`
	Amount             decimal.Decimal `json:"amount"`
	Frequency          string          `json:"frequency"`
	Occurrences        int             `json:"occurrences"`
	AvgIntervalDays    float64         `json:"avg_interval_days"`
	Confidence         float64         `json:"confidence"`
	LastCharge         time.Time       `json:"last_charge"`
	NextChargeEstimate time.Time       `json:"next_charge_estimate"`
}

// Detect groups the trailing months of expenses by (merchant, whole-unit
// amount) and classifies groups with at least two occurrences by their
// average interval. Groups already matching an existing subscription by name
// are skipped. Results come back ordered by descending confidence.
func (s *SubscriptionService) Detect(ctx context.Context, ownerID int64, months int) ([]SubscriptionCandidate, error) {
	since := s.now().AddDate(0, 0, -months*30)
	expenses, err := s.transactions.ListExpenses(ctx, ownerID, ExpenseFilter{From: dateOnly(since)})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	existing, err := s.subscriptions.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	type groupKey struct {
		merchant string
		amount   string
	}
	groups := make(map[groupKey][]models.Transaction)
	for _, tx := range expenses {
		merchant := tx.Merchant
		if merchant == "" {
			merchant = tx.Notes
		}
		if merchant == "" {
			merchant = "unknown"
		}
		key := groupKey{merchant: merchant, amount: tx.Amount.Round(0).String()}
		groups[key] = append(groups[key], tx)
	}

	var candidates []SubscriptionCandidate
	for key, txs := range groups {
		if len(txs) < 2 {
			continue
		}
		if matchesExistingSubscription(existing, key.merchant) {
			continue
		}

		dates := make([]time.Time, len(txs))
		for i, tx := range txs {
			dates[i] = dateOnly(tx.Date)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		avgInterval := averageIntervalDays(dates)
		frequency, confidence := classifyInterval(avgInterval)
		if frequency == "" {
			continue
		}

		last := dates[len(dates)-1]
		amount, _ := decimal.NewFromString(key.amount)
		candidates = append(candidates, SubscriptionCandidate{
			Merchant:           key.merchant,
			Amount:             amount,
			Frequency:          frequency,
			Occurrences:        len(txs),
			AvgIntervalDays:    avgInterval,
			Confidence:         confidence,
			LastCharge:         last,
			NextChargeEstimate: last.AddDate(0, 0, int(avgInterval)),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}

func averageIntervalDays(sorted []time.Time) float64 {
	if len(sorted) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Sub(sorted[i-1]).Hours() / 24
	}
	return total / float64(len(sorted)-1)
}

func classifyInterval(avgDays float64) (string, float64) {
	for _, band := range frequencyBands {
		if avgDays >= band.minDays && avgDays <= band.maxDays {
			return band.frequency, band.confidence
		}
	}
	return "", 0
}

func matchesExistingSubscription(existing []models.Subscription, merchant string) bool {
	needle := strings.ToLower(merchant)
	for _, sub := range existing {
		name := strings.ToLower(sub.Name)
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return true
		}
	}
	return false
}

// Confirm records a detected candidate as a real subscription.
func (s *SubscriptionService) Confirm(ctx context.Context, ownerID int64, candidate SubscriptionCandidate) (*models.Subscription, error) {
	next := candidate.NextChargeEstimate
	sub := &models.Subscription{
		OwnerID:         ownerID,
		Name:            candidate.Merchant,
		Amount:          candidate.Amount,
		Frequency:       candidate.Frequency,
		NextBillingDate: &next,
		IsActive:        true,
	}
	return s.subscriptions.Create(ctx, sub)
}

// SpendSummary normalizes active subscriptions to a monthly and annual total.
type SpendSummary struct {
	MonthlyTotal decimal.Decimal       `json:"monthly_total"`
	AnnualTotal  decimal.Decimal       `json:"annual_total"`
	ActiveCount  int                   `json:"active_count"`
	Items        []models.Subscription `json:"subscriptions"`
}

// SpendTotals converts each active subscription to its monthly equivalent.
func (s *SubscriptionService) SpendTotals(ctx context.Context, ownerID int64) (*SpendSummary, error) {
	subs, err := s.subscriptions.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	monthly := decimal.Zero
	for _, sub := range subs {
		switch sub.Frequency {
		case "monthly":
			monthly = monthly.Add(sub.Amount)
		case "annual":
			monthly = monthly.Add(sub.Amount.Div(twelve))
		case "biweekly":
			monthly = monthly.Add(sub.Amount.Mul(decimal.NewFromInt(2)))
		case "weekly":
			// average weeks per month
			monthly = monthly.Add(sub.Amount.Mul(decimal.NewFromFloat(4.33)))
		}
	}

	return &SpendSummary{
		MonthlyTotal: monthly.Round(2),
		AnnualTotal:  monthly.Mul(twelve).Round(2),
		ActiveCount:  len(subs),
		Items:        subs,
	}, nil
}

// UpcomingRenewal is a subscription billing inside the queried horizon.
type UpcomingRenewal struct {
	Subscription *models.Subscription `json:"subscription"`
	DaysUntil    int                  `json:"days_until"`
}

// UpcomingRenewals lists active subscriptions billing within the next days.
func (s *SubscriptionService) UpcomingRenewals(ctx context.Context, ownerID int64, days int) ([]UpcomingRenewal, error) {
	today := dateOnly(s.now())
	horizon := today.AddDate(0, 0, days)

	subs, err := s.subscriptions.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var renewals []UpcomingRenewal
	for i := range subs {
		sub := &subs[i]
		if sub.NextBillingDate == nil {
			continue
		}
		next := dateOnly(*sub.NextBillingDate)
		if next.Before(today) || next.After(horizon) {
			continue
		}
		renewals = append(renewals, UpcomingRenewal{
			Subscription: sub,
			DaysUntil:    int(next.Sub(today).Hours() / 24),
		})
	}

	sort.Slice(renewals, func(i, j int) bool {
		return renewals[i].Subscription.NextBillingDate.Before(*renewals[j].Subscription.NextBillingDate)
	})
	return renewals, nil
}
