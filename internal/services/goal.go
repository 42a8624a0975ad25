package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// trailingContributionMonths is the lookback used for the average monthly
// contribution rate.
const trailingContributionMonths = 3

// GoalService tracks goal progress, projects completion and applies the
// contribution/withdrawal transitions.
type GoalService struct {
	goals         GoalStore
	contributions ContributionStore
	log           zerolog.Logger
	now           func() time.Time
}

func NewGoalService(goals GoalStore, contributions ContributionStore, log zerolog.Logger) *GoalService {
	return &GoalService{
		goals:         goals,
		contributions: contributions,
		log:           log,
		now:           time.Now,
	}
}

// GoalProgress carries the derived state of a goal. EstimatedCompletionMonths
// is -1 when no projection is possible.
type GoalProgress struct {
	Goal                        *models.Goal     `json:"goal"`
	ProgressPercentage          decimal.Decimal  `json:"progress_percentage"`
	RemainingAmount             decimal.Decimal  `json:"remaining_amount"`
	AverageMonthlyContribution  decimal.Decimal  `json:"average_monthly_contribution"`
	EstimatedCompletionMonths   int              `json:"estimated_completion_months"`
	EstimatedCompletionDate     *time.Time       `json:"estimated_completion_date,omitempty"`
	RequiredMonthlyContribution *decimal.Decimal `json:"required_monthly_contribution,omitempty"`
	OnTrack                     bool             `json:"on_track"`
}

// Progress computes progress, the trailing average contribution rate and the
// completion projections for one goal.
func (s *GoalService) Progress(ctx context.Context, ownerID, goalID int64) (*GoalProgress, error) {
	goal, err := s.goals.Get(ctx, ownerID, goalID)
	if err != nil {
		return nil, fmt.Errorf("goal %d: %w", goalID, err)
	}

	today := dateOnly(s.now())
	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	avgMonthly, err := s.averageMonthlyContribution(ctx, goal, today)
	if err != nil {
		return nil, err
	}

	progress := &GoalProgress{
		Goal:                       goal,
		ProgressPercentage:         goalProgressPercentage(goal),
		RemainingAmount:            remaining,
		AverageMonthlyContribution: avgMonthly,
		EstimatedCompletionMonths:  -1,
		OnTrack:                    isOnTrack(goal, avgMonthly, remaining, today),
	}

	if avgMonthly.IsPositive() && remaining.IsPositive() {
		months := int(remaining.Div(avgMonthly).Ceil().IntPart())
		progress.EstimatedCompletionMonths = months
		if months > 0 {
			d := addMonths(today, months)
			progress.EstimatedCompletionDate = &d
		}
	}

	if goal.TargetDate != nil && remaining.IsPositive() {
		if required := requiredMonthlyContribution(remaining, *goal.TargetDate, today); required != nil {
			progress.RequiredMonthlyContribution = required
		}
	}
	return progress, nil
}

func goalProgressPercentage(goal *models.Goal) decimal.Decimal {
	if goal.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return goal.CurrentAmount.Div(goal.TargetAmount).Mul(hundred)
}

// averageMonthlyContribution averages the trailing three months of ledger
// entries; with an empty ledger it falls back to the configured automatic
// contribution.
func (s *GoalService) averageMonthlyContribution(ctx context.Context, goal *models.Goal, today time.Time) (decimal.Decimal, error) {
	since := addMonths(today, -trailingContributionMonths)
	recent, err := s.contributions.ListSince(ctx, goal.ID, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("contributions for goal %d: %w", goal.ID, err)
	}

	if len(recent) == 0 {
		return goal.AutoContributionAmount, nil
	}

	total := decimal.Zero
	for _, c := range recent {
		total = total.Add(c.Amount)
	}
	return total.Div(decimal.NewFromInt(trailingContributionMonths)), nil
}

// requiredMonthlyContribution spreads the remainder over the months (days/30)
// left until the target date; nil when the date is not in the future.
func requiredMonthlyContribution(remaining decimal.Decimal, targetDate, today time.Time) *decimal.Decimal {
	days := dateOnly(targetDate).Sub(today).Hours() / 24
	monthsLeft := decimal.NewFromFloat(days / 30)
	if !monthsLeft.IsPositive() {
		return nil
	}
	required := remaining.Div(monthsLeft)
	return &required
}

func isOnTrack(goal *models.Goal, avgMonthly, remaining decimal.Decimal, today time.Time) bool {
	if goal.TargetDate == nil || !remaining.IsPositive() {
		return true
	}
	required := requiredMonthlyContribution(remaining, *goal.TargetDate, today)
	if required == nil {
		return false
	}
	return avgMonthly.GreaterThanOrEqual(*required)
}

// Contribute appends a deposit to the ledger and advances the stored running
// amount, flipping the completion flag when the target is reached.
func (s *GoalService) Contribute(ctx context.Context, ownerID, goalID int64,
	amount decimal.Decimal, date time.Time, notes string, automatic bool) (*models.GoalContribution, error) {
	goal, err := s.goals.Get(ctx, ownerID, goalID)
	if err != nil {
		return nil, fmt.Errorf("goal %d: %w", goalID, err)
	}
	if goal.IsCompleted {
		return nil, fmt.Errorf("%w: goal %d is already completed", ErrInvalidState, goalID)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: contribution amount must be positive", ErrInvalidState)
	}

	contribution := &models.GoalContribution{
		GoalID:      goalID,
		Amount:      amount,
		Date:        date,
		Notes:       notes,
		IsAutomatic: automatic,
	}
	created, err := s.contributions.Create(ctx, contribution)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount = goal.CurrentAmount.Add(amount)
	if goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
		goal.IsCompleted = true
		completedAt := s.now()
		goal.CompletedAt = &completedAt
		s.log.Info().Int64("goal_id", goalID).Msg("goal reached")
	}

	if err := s.goals.UpdateProgress(ctx, goal); err != nil {
		return nil, fmt.Errorf("update goal %d: %w", goalID, err)
	}
	return created, nil
}

// Withdraw appends a negative ledger entry and lowers the running amount. A
// withdrawal larger than the accumulated amount is rejected, and dropping
// below the target un-completes the goal.
func (s *GoalService) Withdraw(ctx context.Context, ownerID, goalID int64,
	amount decimal.Decimal, notes string) (*models.Goal, error) {
	goal, err := s.goals.Get(ctx, ownerID, goalID)
	if err != nil {
		return nil, fmt.Errorf("goal %d: %w", goalID, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", ErrInvalidState)
	}
	if amount.GreaterThan(goal.CurrentAmount) {
		return nil, fmt.Errorf("%w: cannot withdraw more than the accumulated amount", ErrInvalidState)
	}

	if notes == "" {
		notes = "Withdrawal"
	}
	contribution := &models.GoalContribution{
		GoalID: goalID,
		Amount: amount.Neg(),
		Date:   s.now(),
		Notes:  notes,
	}
	if _, err := s.contributions.Create(ctx, contribution); err != nil {
		return nil, err
	}

	goal.CurrentAmount = goal.CurrentAmount.Sub(amount)
	if goal.IsCompleted && goal.CurrentAmount.LessThan(goal.TargetAmount) {
		goal.IsCompleted = false
		goal.CompletedAt = nil
	}

	if err := s.goals.UpdateProgress(ctx, goal); err != nil {
		return nil, fmt.Errorf("update goal %d: %w", goalID, err)
	}

	s.log.Info().Int64("goal_id", goalID).
		Str("amount", amount.String()).
		Str("current", goal.CurrentAmount.String()).
		Msg("withdrew from goal")
	return goal, nil
}
