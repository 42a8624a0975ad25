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

func newGoalService(goals *fakeGoals, contributions *fakeContributions, today time.Time) *GoalService {
	svc := NewGoalService(goals, contributions, zerolog.Nop())
	svc.now = func() time.Time { return today }
	return svc
}

func TestGoalProgress(t *testing.T) {
	ctx := context.Background()
	today := date(2025, 11, 26)

	goals := newFakeGoals(models.Goal{
		ID: 1, OwnerID: 10, Name: "Vacation",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(600),
	})
	contributions := newFakeContributions(
		models.GoalContribution{GoalID: 1, Amount: decimal.NewFromInt(200), Date: date(2025, 9, 10)},
		models.GoalContribution{GoalID: 1, Amount: decimal.NewFromInt(200), Date: date(2025, 10, 10)},
		models.GoalContribution{GoalID: 1, Amount: decimal.NewFromInt(200), Date: date(2025, 11, 10)},
		// outside the trailing window
		models.GoalContribution{GoalID: 1, Amount: decimal.NewFromInt(500), Date: date(2025, 5, 1)},
	)

	svc := newGoalService(goals, contributions, today)

	progress, err := svc.Progress(ctx, 10, 1)
	assert.NoError(t, err)

	assert.True(t, progress.ProgressPercentage.Equal(decimal.NewFromInt(60)))
	assert.True(t, progress.RemainingAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, progress.AverageMonthlyContribution.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 2, progress.EstimatedCompletionMonths)
	assert.Equal(t, date(2026, 1, 26), *progress.EstimatedCompletionDate)
}

func TestGoalProgressEmptyLedgerFallsBackToAutoContribution(t *testing.T) {
	ctx := context.Background()

	goals := newFakeGoals(models.Goal{
		ID: 1, OwnerID: 10,
		TargetAmount:           decimal.NewFromInt(1000),
		CurrentAmount:          decimal.NewFromInt(500),
		AutoContributionAmount: decimal.NewFromInt(100),
	})
	svc := newGoalService(goals, newFakeContributions(), date(2025, 11, 26))

	progress, err := svc.Progress(ctx, 10, 1)
	assert.NoError(t, err)
	assert.True(t, progress.AverageMonthlyContribution.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 5, progress.EstimatedCompletionMonths)
}

func TestGoalRequiredContributionAndOnTrack(t *testing.T) {
	ctx := context.Background()
	today := date(2025, 11, 26)
	targetDate := date(2026, 2, 24) // 90 days out, 3 months

	goals := newFakeGoals(models.Goal{
		ID: 1, OwnerID: 10,
		TargetAmount:           decimal.NewFromInt(1000),
		CurrentAmount:          decimal.NewFromInt(400),
		TargetDate:             &targetDate,
		AutoContributionAmount: decimal.NewFromInt(100),
	})
	svc := newGoalService(goals, newFakeContributions(), today)

	progress, err := svc.Progress(ctx, 10, 1)
	assert.NoError(t, err)

	// 600 remaining over 3 months
	assert.NotZero(t, progress.RequiredMonthlyContribution)
	assert.True(t, progress.RequiredMonthlyContribution.Equal(decimal.NewFromInt(200)))
	// contributing 100/month against a 200/month requirement
	assert.False(t, progress.OnTrack)
}

func TestGoalContribute(t *testing.T) {
	ctx := context.Background()

	goals := newFakeGoals(models.Goal{
		ID: 1, OwnerID: 10,
		TargetAmount:  decimal.NewFromInt(1000),
		InitialAmount: decimal.NewFromInt(100),
		CurrentAmount: decimal.NewFromInt(800),
	})
	contributions := newFakeContributions()
	svc := newGoalService(goals, contributions, date(2025, 11, 26))

	created, err := svc.Contribute(ctx, 10, 1, decimal.NewFromInt(300), date(2025, 11, 26), "bonus", false)
	assert.NoError(t, err)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(300)))

	stored, _ := goals.Get(ctx, 10, 1)
	assert.True(t, stored.CurrentAmount.Equal(decimal.NewFromInt(1100)))
	assert.True(t, stored.IsCompleted)
	assert.NotZero(t, stored.CompletedAt)

	// a completed goal takes no further deposits
	_, err = svc.Contribute(ctx, 10, 1, decimal.NewFromInt(50), date(2025, 11, 27), "", false)
	assert.IsError(t, err, ErrInvalidState)

	// the ledger carries exactly the deposit that was accepted
	rows, _ := contributions.ListSince(ctx, 1, time.Time{})
	ledger := decimal.Zero
	for _, c := range rows {
		ledger = ledger.Add(c.Amount)
	}
	assert.True(t, ledger.Equal(decimal.NewFromInt(300)))
}

func TestGoalContributeRejectsNonPositive(t *testing.T) {
	goals := newFakeGoals(models.Goal{ID: 1, OwnerID: 10, TargetAmount: decimal.NewFromInt(1000)})
	svc := newGoalService(goals, newFakeContributions(), date(2025, 11, 26))

	_, err := svc.Contribute(context.Background(), 10, 1, decimal.Zero, date(2025, 11, 26), "", false)
	assert.IsError(t, err, ErrInvalidState)
}

func TestGoalWithdraw(t *testing.T) {
	ctx := context.Background()
	completedAt := date(2025, 11, 1)

	goals := newFakeGoals(models.Goal{
		ID: 1, OwnerID: 10,
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(1000),
		IsCompleted:   true,
		CompletedAt:   &completedAt,
	})
	contributions := newFakeContributions()
	svc := newGoalService(goals, contributions, date(2025, 11, 26))

	t.Run("ExceedsAccumulated", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, 10, 1, decimal.NewFromInt(2000), "")
		assert.IsError(t, err, ErrInvalidState)
	})

	t.Run("DroppingBelowTargetUncompletes", func(t *testing.T) {
		goal, err := svc.Withdraw(ctx, 10, 1, decimal.NewFromInt(400), "emergency")
		assert.NoError(t, err)
		assert.True(t, goal.CurrentAmount.Equal(decimal.NewFromInt(600)))
		assert.False(t, goal.IsCompleted)
		assert.Zero(t, goal.CompletedAt)

		// withdrawal lands as a negative ledger row
		rows, _ := contributions.ListSince(ctx, 1, time.Time{})
		assert.Equal(t, 1, len(rows))
		assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(-400)))
	})
}
