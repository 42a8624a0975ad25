package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// Budget status bands, evaluated in order on percentage used.
const (
	BudgetStatusSafe     = "safe"
	BudgetStatusWarning  = "warning"
	BudgetStatusCritical = "critical"
	BudgetStatusExceeded = "exceeded"
)

// BudgetService resolves budget period windows, sums matching spend, applies
// rollover carry-forward and projects depletion.
type BudgetService struct {
	budgets      BudgetStore
	transactions TransactionStore
	log          zerolog.Logger
	now          func() time.Time
}

func NewBudgetService(budgets BudgetStore, transactions TransactionStore, log zerolog.Logger) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		transactions: transactions,
		log:          log,
		now:          time.Now,
	}
}

// BudgetProgress is the computed state of a budget inside its current period.
type BudgetProgress struct {
	Budget                 *models.Budget  `json:"budget"`
	PeriodStart            time.Time       `json:"period_start"`
	PeriodEnd              time.Time       `json:"period_end"`
	Spent                  decimal.Decimal `json:"spent"`
	EffectiveLimit         decimal.Decimal `json:"limit"`
	Remaining              decimal.Decimal `json:"remaining"`
	PercentageUsed         decimal.Decimal `json:"percentage_used"`
	Status                 string          `json:"status"`
	AlertTriggered         bool            `json:"alert_triggered"`
	DaysRemaining          int             `json:"days_remaining"`
	EstimatedDepletionDate *time.Time      `json:"estimated_depletion_date,omitempty"`
}

// Progress computes the budget's state as of today.
func (s *BudgetService) Progress(ctx context.Context, ownerID, budgetID int64) (*BudgetProgress, error) {
	budget, err := s.budgets.Get(ctx, ownerID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("budget %d: %w", budgetID, err)
	}
	return s.progressAt(ctx, budget, dateOnly(s.now()))
}

func (s *BudgetService) progressAt(ctx context.Context, budget *models.Budget, today time.Time) (*BudgetProgress, error) {
	start, end := budgetPeriodWindow(budget, today)

	spent, err := s.spentInWindow(ctx, budget, start, end)
	if err != nil {
		return nil, err
	}

	limit := effectiveLimit(budget)
	remaining := limit.Sub(spent)
	pct := percentageUsed(spent, limit)

	progress := &BudgetProgress{
		Budget:         budget,
		PeriodStart:    start,
		PeriodEnd:      end,
		Spent:          spent,
		EffectiveLimit: limit,
		Remaining:      remaining,
		PercentageUsed: pct,
		Status:         budgetStatus(pct),
		AlertTriggered: alertTriggered(budget, pct),
		DaysRemaining:  int(end.Sub(today).Hours() / 24),
	}

	if spent.IsPositive() && remaining.IsPositive() {
		daysElapsed := int(today.Sub(start).Hours()/24) + 1
		progress.EstimatedDepletionDate = estimateDepletionDate(spent, remaining, daysElapsed, today)
	}
	return progress, nil
}

// budgetPeriodWindow anchors the budget's current period around today.
// WEEKLY interprets StartDay as a day-of-week (Monday=0), the other periods
// as a day-of-month (ANNUAL: day of January), preserved from the original
// system's observed behavior.
func budgetPeriodWindow(budget *models.Budget, today time.Time) (time.Time, time.Time) {
	today = dateOnly(today)

	switch budget.Period {
	case models.PeriodWeekly:
		weekday := (int(today.Weekday()) + 6) % 7 // Monday=0
		daysSince := (weekday - budget.StartDay + 7) % 7
		start := today.AddDate(0, 0, -daysSince)
		return start, start.AddDate(0, 0, 6)

	case models.PeriodBiweekly:
		start := monthAnchoredStart(budget.StartDay, today)
		return start, start.AddDate(0, 0, 13)

	case models.PeriodAnnual:
		start := clampedDate(today.Year(), time.January, budget.StartDay)
		if today.Before(start) {
			start = clampedDate(today.Year()-1, time.January, budget.StartDay)
		}
		return start, clampedDate(start.Year()+1, time.January, budget.StartDay).AddDate(0, 0, -1)

	default: // monthly
		// the next anchor re-applies StartDay so a clamped short-month start
		// still tiles the calendar
		start := monthAnchoredStart(budget.StartDay, today)
		next := clampedDate(start.Year(), start.Month()+1, budget.StartDay)
		return start, next.AddDate(0, 0, -1)
	}
}

// monthAnchoredStart is the most recent occurrence of a day-of-month at or
// before today, clamped for short months.
func monthAnchoredStart(startDay int, today time.Time) time.Time {
	start := clampedDate(today.Year(), today.Month(), startDay)
	if today.Before(start) {
		start = clampedDate(today.Year(), today.Month()-1, startDay)
	}
	return start
}

func (s *BudgetService) spentInWindow(ctx context.Context, budget *models.Budget, start, end time.Time) (decimal.Decimal, error) {
	filter := ExpenseFilter{From: start, To: end}
	switch budget.Kind {
	case models.BudgetCategory:
		filter.CategoryID = budget.CategoryID
	case models.BudgetAccount:
		filter.AccountID = budget.AccountID
	case models.BudgetTag:
		filter.Tag = budget.Tag
	case models.BudgetGlobal:
		// every expense counts
	}

	expenses, err := s.transactions.ListExpenses(ctx, budget.OwnerID, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget %d expenses: %w", budget.ID, err)
	}
	return sumAmounts(expenses), nil
}

// effectiveLimit adds the carried rollover to the base limit, capped at
// limit + max accumulation when a cap is configured.
func effectiveLimit(budget *models.Budget) decimal.Decimal {
	limit := budget.LimitAmount
	if !budget.EnableRollover || !budget.CurrentRollover.IsPositive() {
		return limit
	}
	limit = limit.Add(budget.CurrentRollover)
	if budget.RolloverMaxAccumulation != nil {
		maxLimit := budget.LimitAmount.Add(*budget.RolloverMaxAccumulation)
		if limit.GreaterThan(maxLimit) {
			limit = maxLimit
		}
	}
	return limit
}

func percentageUsed(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}
	return spent.Div(limit).Mul(hundred)
}

// alertTriggered reports whether the budget's configured notification
// threshold is hit: the warning percentage, or any overrun when alert-on-exceed
// is enabled.
func alertTriggered(budget *models.Budget, pct decimal.Decimal) bool {
	if budget.AlertAtPercentage > 0 && pct.GreaterThanOrEqual(decimal.NewFromInt(int64(budget.AlertAtPercentage))) {
		return true
	}
	return budget.AlertOnExceed && pct.GreaterThan(hundred)
}

func budgetStatus(pct decimal.Decimal) string {
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(70)):
		return BudgetStatusSafe
	case pct.LessThanOrEqual(decimal.NewFromInt(90)):
		return BudgetStatusWarning
	case pct.LessThanOrEqual(hundred):
		return BudgetStatusCritical
	default:
		return BudgetStatusExceeded
	}
}

// estimateDepletionDate extrapolates linearly from the elapsed spend rate.
// Returns nil when no estimate can be produced.
func estimateDepletionDate(spent, remaining decimal.Decimal, daysElapsed int, today time.Time) *time.Time {
	if daysElapsed <= 0 {
		return nil
	}
	dailyAverage := spent.Div(decimal.NewFromInt(int64(daysElapsed)))
	if !dailyAverage.IsPositive() {
		return nil
	}
	days := remaining.Div(dailyAverage).IntPart()
	if days < 0 {
		days = 0
	}
	d := today.AddDate(0, 0, int(days))
	return &d
}

// ClosePeriod applies the rollover transition for the period that ended just
// before the current one: leftover accumulates (capped), an exceeded budget
// resets the carry to zero. A repeated call inside the same period is a
// no-op; the recorded close timestamp is the guard.
func (s *BudgetService) ClosePeriod(ctx context.Context, budget *models.Budget) error {
	if !budget.EnableRollover {
		return nil
	}

	today := dateOnly(s.now())
	currentStart, _ := budgetPeriodWindow(budget, today)

	if budget.LastRolloverAt != nil && !budget.LastRolloverAt.Before(currentStart) {
		return nil
	}

	prevEnd := currentStart.AddDate(0, 0, -1)
	prevStart, _ := budgetPeriodWindow(budget, prevEnd)

	spent, err := s.spentInWindow(ctx, budget, prevStart, prevEnd)
	if err != nil {
		return err
	}
	remaining := effectiveLimit(budget).Sub(spent)

	rollover := decimal.Zero
	if remaining.IsPositive() {
		rollover = budget.CurrentRollover.Add(remaining)
		if budget.RolloverMaxAccumulation != nil && rollover.GreaterThan(*budget.RolloverMaxAccumulation) {
			rollover = *budget.RolloverMaxAccumulation
		}
	}

	if err := s.budgets.UpdateRollover(ctx, budget.ID, rollover, s.now()); err != nil {
		return fmt.Errorf("update rollover for budget %d: %w", budget.ID, err)
	}
	budget.CurrentRollover = rollover
	now := s.now()
	budget.LastRolloverAt = &now

	s.log.Info().Int64("budget_id", budget.ID).
		Str("rollover", rollover.String()).
		Msg("budget period closed")
	return nil
}

// CloseDuePeriods runs the rollover transition across all candidates. Invoked
// by the scheduler; the per-budget guard keeps retries harmless.
func (s *BudgetService) CloseDuePeriods(ctx context.Context) (int, error) {
	budgets, err := s.budgets.ListRolloverCandidates(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range budgets {
		before := budgets[i].LastRolloverAt
		if err := s.ClosePeriod(ctx, &budgets[i]); err != nil {
			s.log.Error().Err(err).Int64("budget_id", budgets[i].ID).Msg("period close failed")
			continue
		}
		if budgets[i].LastRolloverAt != before {
			closed++
		}
	}
	return closed, nil
}
