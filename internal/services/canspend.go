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

// obligationHorizonDays is how far ahead card payments count as upcoming
// obligations.
const obligationHorizonDays = 15

// CanSpendService answers "can I spend this" by netting liquid balances
// against near-term obligations and goal-earmarked money. Read-only; nothing
// is mutated.
type CanSpendService struct {
	accounts  AccountStore
	goals     GoalStore
	cards     CreditCardStore
	budgets   BudgetStore
	balance   *BalanceService
	cardSvc   *CreditCardService
	budgetSvc *BudgetService
	log       zerolog.Logger
	now       func() time.Time
}

func NewCanSpendService(accounts AccountStore, goals GoalStore, cards CreditCardStore,
	budgets BudgetStore, balance *BalanceService, cardSvc *CreditCardService,
	budgetSvc *BudgetService, log zerolog.Logger) *CanSpendService {
	return &CanSpendService{
		accounts:  accounts,
		goals:     goals,
		cards:     cards,
		budgets:   budgets,
		balance:   balance,
		cardSvc:   cardSvc,
		budgetSvc: budgetSvc,
		log:       log,
		now:       time.Now,
	}
}

// BudgetImpact projects the hypothetical spend against a category budget.
type BudgetImpact struct {
	BudgetID      int64           `json:"budget_id"`
	BudgetName    string          `json:"budget_name"`
	CurrentSpent  decimal.Decimal `json:"current_spent"`
	Limit         decimal.Decimal `json:"limit"`
	NewSpent      decimal.Decimal `json:"new_spent"`
	NewPercentage decimal.Decimal `json:"new_percentage"`
	WillExceed    bool            `json:"will_exceed"`
}

// GoalImpact is a goal whose earmarked funds would absorb part of the
// shortfall.
type GoalImpact struct {
	GoalID          int64           `json:"goal_id"`
	GoalName        string          `json:"goal_name"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	PotentialImpact decimal.Decimal `json:"potential_impact"`
	DelayDays       int             `json:"delay_days"`
}

// AccountImpact warns that the funding account would fall short of card
// payments due soon.
type AccountImpact struct {
	Message          string          `json:"message"`
	UpcomingPayments decimal.Decimal `json:"upcoming_payments"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	Deficit          decimal.Decimal `json:"deficit"`
}

// SpendAnalysis is the affordability verdict.
type SpendAnalysis struct {
	CanSpend            bool            `json:"can_spend"`
	AmountRequested     decimal.Decimal `json:"amount_requested"`
	TotalLiquid         decimal.Decimal `json:"total_liquid"`
	UpcomingObligations decimal.Decimal `json:"upcoming_obligations"`
	MoneyInGoals        decimal.Decimal `json:"money_in_goals"`
	CurrentAvailable    decimal.Decimal `json:"current_available"`
	AvailableAfter      decimal.Decimal `json:"available_after"`
	Warnings            []string        `json:"warnings"`
	BudgetImpact        *BudgetImpact   `json:"budget_impact,omitempty"`
	GoalImpacts         []GoalImpact    `json:"goal_impacts,omitempty"`
	AccountImpact       *AccountImpact  `json:"account_impact,omitempty"`
	Recommendation      string          `json:"recommendation"`
}

// Analyze runs the composite affordability check for a hypothetical expense.
// accountID and categoryID are optional (0 = not given).
func (s *CanSpendService) Analyze(ctx context.Context, ownerID int64, amount decimal.Decimal,
	accountID, categoryID int64) (*SpendAnalysis, error) {
	warnings := []string{}

	totalLiquid, err := s.totalLiquid(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	obligations, err := s.upcomingObligations(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	// completed goals no longer reserve spendable money
	var activeGoals []models.Goal
	for _, g := range goals {
		if g.IsCompleted {
			continue
		}
		activeGoals = append(activeGoals, g)
	}
	moneyInGoals := decimal.Zero
	for _, g := range activeGoals {
		moneyInGoals = moneyInGoals.Add(g.CurrentAmount)
	}

	available := totalLiquid.Sub(obligations).Sub(moneyInGoals)
	availableAfter := available.Sub(amount)
	canSpend := !availableAfter.IsNegative()

	analysis := &SpendAnalysis{
		CanSpend:            canSpend,
		AmountRequested:     amount,
		TotalLiquid:         totalLiquid,
		UpcomingObligations: obligations,
		MoneyInGoals:        moneyInGoals,
		CurrentAvailable:    available,
		AvailableAfter:      availableAfter,
	}

	if categoryID != 0 {
		impact, err := s.budgetImpact(ctx, ownerID, categoryID, amount)
		if err != nil {
			return nil, err
		}
		if impact != nil {
			analysis.BudgetImpact = impact
			if impact.WillExceed {
				warnings = append(warnings, fmt.Sprintf("you would exceed your %s budget", impact.BudgetName))
			}
		}
	}

	if availableAfter.IsNegative() {
		impacts := affectedGoals(activeGoals, availableAfter.Neg())
		if len(impacts) > 0 {
			warnings = append(warnings, "this could set back your savings goals")
			analysis.GoalImpacts = impacts
		}
	}

	if accountID != 0 {
		impact, err := s.accountImpact(ctx, ownerID, accountID, amount, obligations)
		if err != nil {
			return nil, err
		}
		if impact != nil {
			warnings = append(warnings, impact.Message)
			analysis.AccountImpact = impact
		}
	}

	analysis.Warnings = warnings
	analysis.Recommendation = recommendation(canSpend, availableAfter, amount, warnings)
	return analysis, nil
}

// totalLiquid sums derived balances over non-archived liquid accounts.
func (s *CanSpendService) totalLiquid(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	accounts, err := s.accounts.ListActive(ctx, ownerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list accounts: %w", err)
	}

	total := decimal.Zero
	for _, acc := range accounts {
		if !acc.Type.Liquid() {
			continue
		}
		balance, err := s.balance.AccountBalance(ctx, ownerID, acc.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(balance)
	}
	return total, nil
}

// upcomingObligations sums statement balances of active cards whose payment
// due date falls within the horizon.
func (s *CanSpendService) upcomingObligations(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	today := dateOnly(s.now())
	horizon := today.AddDate(0, 0, obligationHorizonDays)

	cards, err := s.cards.ListActive(ctx, ownerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list cards: %w", err)
	}

	total := decimal.Zero
	for _, card := range cards {
		nextPayment := NextOccurrence(card.PaymentDueDay, today)
		if nextPayment.After(horizon) {
			continue
		}
		summary, err := s.cardSvc.Summary(ctx, ownerID, card.ID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(summary.BalanceAtCutoff)
	}
	return total, nil
}

func (s *CanSpendService) budgetImpact(ctx context.Context, ownerID, categoryID int64, amount decimal.Decimal) (*BudgetImpact, error) {
	budget, err := s.budgets.FindActiveByCategory(ctx, ownerID, categoryID)
	if err != nil || budget == nil {
		// no budget on this category is not an error
		return nil, nil
	}

	progress, err := s.budgetSvc.Progress(ctx, ownerID, budget.ID)
	if err != nil {
		return nil, err
	}

	newSpent := progress.Spent.Add(amount)
	newPct := percentageUsed(newSpent, progress.EffectiveLimit)

	return &BudgetImpact{
		BudgetID:      budget.ID,
		BudgetName:    budget.Name,
		CurrentSpent:  progress.Spent,
		Limit:         progress.EffectiveLimit,
		NewSpent:      newSpent,
		NewPercentage: newPct,
		WillExceed:    newPct.GreaterThan(hundred),
	}, nil
}

// affectedGoals walks goals by descending earmarked amount, allocating the
// shortfall until it is exhausted. Delay is estimated against the goal's
// automatic contribution rate.
func affectedGoals(goals []models.Goal, deficit decimal.Decimal) []GoalImpact {
	ordered := make([]models.Goal, len(goals))
	copy(ordered, goals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CurrentAmount.GreaterThan(ordered[j].CurrentAmount)
	})

	var impacts []GoalImpact
	remaining := deficit
	for _, goal := range ordered {
		if !remaining.IsPositive() {
			break
		}
		impact := decimal.Min(remaining, goal.CurrentAmount)
		if !impact.IsPositive() {
			continue
		}

		rate := goal.AutoContributionAmount
		if !rate.IsPositive() {
			rate = decimal.NewFromInt(1000)
		}
		delayDays := int(impact.Div(rate).Mul(decimal.NewFromInt(30)).IntPart())

		impacts = append(impacts, GoalImpact{
			GoalID:          goal.ID,
			GoalName:        goal.Name,
			CurrentAmount:   goal.CurrentAmount,
			PotentialImpact: impact,
			DelayDays:       delayDays,
		})
		remaining = remaining.Sub(impact)
	}
	return impacts
}

// accountImpact checks whether spending from a liquid funding account leaves
// it short of card payments due within the horizon.
func (s *CanSpendService) accountImpact(ctx context.Context, ownerID, accountID int64,
	amount, obligations decimal.Decimal) (*AccountImpact, error) {
	account, err := s.accounts.Get(ctx, ownerID, accountID)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", accountID, err)
	}
	if account.Type != models.AccountDebit && account.Type != models.AccountSavings {
		return nil, nil
	}

	balance, err := s.balance.AccountBalance(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}
	balanceAfter := balance.Sub(amount)

	if obligations.IsPositive() && balanceAfter.LessThan(obligations) {
		return &AccountImpact{
			Message:          fmt.Sprintf("you could run out of funds for your card payments ($%s)", obligations.StringFixed(2)),
			UpcomingPayments: obligations,
			BalanceAfter:     balanceAfter,
			Deficit:          obligations.Sub(balanceAfter),
		}, nil
	}
	return nil, nil
}

func recommendation(canSpend bool, availableAfter, amount decimal.Decimal, warnings []string) string {
	switch {
	case canSpend && len(warnings) == 0:
		return fmt.Sprintf("Yes, you can spend $%s. Your available balance will be $%s.",
			amount.StringFixed(2), availableAfter.StringFixed(2))
	case canSpend:
		return fmt.Sprintf("You can spend $%s, but keep in mind: %s.",
			amount.StringFixed(2), strings.Join(warnings, "; "))
	default:
		return fmt.Sprintf("Not recommended. You would be short $%s. Consider reducing the expense or waiting until you have more funds.",
			availableAfter.Neg().StringFixed(2))
	}
}
