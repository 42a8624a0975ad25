package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// In-memory stores backing the service tests. The date helper lives in
// datecycle_test.go.

func ptr[T any](v T) *T { return &v }

type fakeAccounts struct {
	byID map[int64]models.Account
}

func newFakeAccounts(accounts ...models.Account) *fakeAccounts {
	f := &fakeAccounts{byID: make(map[int64]models.Account)}
	for _, acc := range accounts {
		f.byID[acc.ID] = acc
	}
	return f
}

func (f *fakeAccounts) Get(_ context.Context, ownerID, accountID int64) (*models.Account, error) {
	acc, ok := f.byID[accountID]
	if !ok || acc.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: account %d", ErrNotFound, accountID)
	}
	out := acc
	return &out, nil
}

func (f *fakeAccounts) ListActive(_ context.Context, ownerID int64) ([]models.Account, error) {
	var out []models.Account
	for _, acc := range f.byID {
		if acc.OwnerID == ownerID && !acc.IsArchived {
			out = append(out, acc)
		}
	}
	return out, nil
}

type fakeTransactions struct {
	txs    []models.Transaction
	nextID int64
}

func newFakeTransactions(txs ...models.Transaction) *fakeTransactions {
	f := &fakeTransactions{nextID: 1}
	for _, tx := range txs {
		if tx.ID == 0 {
			tx.ID = f.nextID
		}
		if tx.ID >= f.nextID {
			f.nextID = tx.ID + 1
		}
		f.txs = append(f.txs, tx)
	}
	return f
}

func (f *fakeTransactions) Get(_ context.Context, ownerID, txID int64) (*models.Transaction, error) {
	for _, tx := range f.txs {
		if tx.ID == txID && tx.OwnerID == ownerID {
			out := tx
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, txID)
}

func (f *fakeTransactions) Create(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	stored := *tx
	stored.ID = f.nextID
	f.nextID++
	f.txs = append(f.txs, stored)
	out := stored
	return &out, nil
}

func (f *fakeTransactions) Delete(_ context.Context, ownerID, txID int64) error {
	for i, tx := range f.txs {
		if tx.ID == txID && tx.OwnerID == ownerID {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %d", ErrNotFound, txID)
}

func (f *fakeTransactions) ListAccountFlows(_ context.Context, ownerID, accountID int64) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range f.txs {
		if tx.OwnerID != ownerID {
			continue
		}
		if tx.AccountID == accountID || (tx.ToAccountID != nil && *tx.ToAccountID == accountID) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) ListExpenses(_ context.Context, ownerID int64, filter ExpenseFilter) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range f.txs {
		if tx.OwnerID != ownerID || tx.Type != models.TxExpense {
			continue
		}
		day := dateOnly(tx.Date)
		if !filter.From.IsZero() && day.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && day.After(filter.To) {
			continue
		}
		if filter.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.AccountID != nil && tx.AccountID != *filter.AccountID {
			continue
		}
		if filter.Tag != "" && !strings.Contains(tx.Tags, filter.Tag) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeTransactions) CountByInstallmentPurchase(_ context.Context, purchaseID int64) (int, error) {
	count := 0
	for _, tx := range f.txs {
		if tx.InstallmentPurchaseID != nil && *tx.InstallmentPurchaseID == purchaseID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTransactions) DeleteByInstallmentPurchase(_ context.Context, purchaseID int64) error {
	kept := f.txs[:0]
	for _, tx := range f.txs {
		if tx.InstallmentPurchaseID == nil || *tx.InstallmentPurchaseID != purchaseID {
			kept = append(kept, tx)
		}
	}
	f.txs = kept
	return nil
}

func (f *fakeTransactions) ExistsForRecurringOn(_ context.Context, recurringID int64, day time.Time) (bool, error) {
	for _, tx := range f.txs {
		if tx.RecurringID != nil && *tx.RecurringID == recurringID && dateOnly(tx.Date).Equal(dateOnly(day)) {
			return true, nil
		}
	}
	return false, nil
}

type fakeSplits struct {
	splits []models.TransactionSplit
	nextID int64
}

func newFakeSplits() *fakeSplits { return &fakeSplits{nextID: 1} }

func (f *fakeSplits) Create(_ context.Context, split *models.TransactionSplit) (*models.TransactionSplit, error) {
	stored := *split
	stored.ID = f.nextID
	f.nextID++
	f.splits = append(f.splits, stored)
	out := stored
	return &out, nil
}

type fakeCards struct {
	byID   map[int64]models.CreditCard
	nextID int64
}

func newFakeCards(cards ...models.CreditCard) *fakeCards {
	f := &fakeCards{byID: make(map[int64]models.CreditCard), nextID: 1}
	for _, card := range cards {
		f.byID[card.ID] = card
		if card.ID >= f.nextID {
			f.nextID = card.ID + 1
		}
	}
	return f
}

func (f *fakeCards) Get(_ context.Context, ownerID, cardID int64) (*models.CreditCard, error) {
	card, ok := f.byID[cardID]
	if !ok || card.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: credit card %d", ErrNotFound, cardID)
	}
	out := card
	return &out, nil
}

func (f *fakeCards) GetByAccount(_ context.Context, ownerID, accountID int64) (*models.CreditCard, error) {
	for _, card := range f.byID {
		if card.OwnerID == ownerID && card.AccountID == accountID {
			out := card
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: no card on account %d", ErrNotFound, accountID)
}

func (f *fakeCards) ListActive(_ context.Context, ownerID int64) ([]models.CreditCard, error) {
	var out []models.CreditCard
	for _, card := range f.byID {
		if card.OwnerID == ownerID && card.IsActive {
			out = append(out, card)
		}
	}
	return out, nil
}

func (f *fakeCards) Create(_ context.Context, card *models.CreditCard) (*models.CreditCard, error) {
	stored := *card
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = stored
	out := stored
	return &out, nil
}

type fakeInstallments struct {
	byID   map[int64]models.InstallmentPurchase
	nextID int64
}

func newFakeInstallments(purchases ...models.InstallmentPurchase) *fakeInstallments {
	f := &fakeInstallments{byID: make(map[int64]models.InstallmentPurchase), nextID: 1}
	for _, p := range purchases {
		f.byID[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakeInstallments) Get(_ context.Context, ownerID, purchaseID int64) (*models.InstallmentPurchase, error) {
	p, ok := f.byID[purchaseID]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: installment purchase %d", ErrNotFound, purchaseID)
	}
	out := p
	return &out, nil
}

func (f *fakeInstallments) ListActiveByCard(_ context.Context, cardID int64) ([]models.InstallmentPurchase, error) {
	var out []models.InstallmentPurchase
	for _, p := range f.byID {
		if p.CreditCardID == cardID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeInstallments) Create(_ context.Context, p *models.InstallmentPurchase) (*models.InstallmentPurchase, error) {
	stored := *p
	stored.ID = f.nextID
	f.nextID++
	f.byID[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeInstallments) Delete(_ context.Context, purchaseID int64) error {
	if _, ok := f.byID[purchaseID]; !ok {
		return fmt.Errorf("%w: installment purchase %d", ErrNotFound, purchaseID)
	}
	delete(f.byID, purchaseID)
	return nil
}

type fakeBudgets struct {
	byID map[int64]models.Budget
}

func newFakeBudgets(budgets ...models.Budget) *fakeBudgets {
	f := &fakeBudgets{byID: make(map[int64]models.Budget)}
	for _, b := range budgets {
		f.byID[b.ID] = b
	}
	return f
}

func (f *fakeBudgets) Get(_ context.Context, ownerID, budgetID int64) (*models.Budget, error) {
	b, ok := f.byID[budgetID]
	if !ok || b.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: budget %d", ErrNotFound, budgetID)
	}
	out := b
	return &out, nil
}

func (f *fakeBudgets) ListActive(_ context.Context, ownerID int64) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.byID {
		if b.OwnerID == ownerID && b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgets) FindActiveByCategory(_ context.Context, ownerID, categoryID int64) (*models.Budget, error) {
	for _, b := range f.byID {
		if b.OwnerID == ownerID && b.IsActive && b.Kind == models.BudgetCategory &&
			b.CategoryID != nil && *b.CategoryID == categoryID {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeBudgets) ListRolloverCandidates(_ context.Context) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.byID {
		if b.IsActive && b.EnableRollover {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgets) UpdateRollover(_ context.Context, budgetID int64, rollover decimal.Decimal, closedAt time.Time) error {
	b, ok := f.byID[budgetID]
	if !ok {
		return fmt.Errorf("%w: budget %d", ErrNotFound, budgetID)
	}
	b.CurrentRollover = rollover
	b.LastRolloverAt = &closedAt
	f.byID[budgetID] = b
	return nil
}

type fakeGoals struct {
	byID map[int64]models.Goal
}

func newFakeGoals(goals ...models.Goal) *fakeGoals {
	f := &fakeGoals{byID: make(map[int64]models.Goal)}
	for _, g := range goals {
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGoals) Get(_ context.Context, ownerID, goalID int64) (*models.Goal, error) {
	g, ok := f.byID[goalID]
	if !ok || g.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
	}
	out := g
	return &out, nil
}

func (f *fakeGoals) ListActive(_ context.Context, ownerID int64) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range f.byID {
		if g.OwnerID == ownerID && !g.IsArchived {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoals) UpdateProgress(_ context.Context, goal *models.Goal) error {
	if _, ok := f.byID[goal.ID]; !ok {
		return fmt.Errorf("%w: goal %d", ErrNotFound, goal.ID)
	}
	f.byID[goal.ID] = *goal
	return nil
}

type fakeContributions struct {
	rows   []models.GoalContribution
	nextID int64
}

func newFakeContributions(rows ...models.GoalContribution) *fakeContributions {
	f := &fakeContributions{nextID: 1}
	for _, c := range rows {
		if c.ID == 0 {
			c.ID = f.nextID
		}
		if c.ID >= f.nextID {
			f.nextID = c.ID + 1
		}
		f.rows = append(f.rows, c)
	}
	return f
}

func (f *fakeContributions) Create(_ context.Context, c *models.GoalContribution) (*models.GoalContribution, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, stored)
	out := stored
	return &out, nil
}

func (f *fakeContributions) ListSince(_ context.Context, goalID int64, since time.Time) ([]models.GoalContribution, error) {
	var out []models.GoalContribution
	for _, c := range f.rows {
		if c.GoalID == goalID && !dateOnly(c.Date).Before(dateOnly(since)) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeRecurring struct {
	byID map[int64]models.RecurringTransaction
}

func newFakeRecurring(templates ...models.RecurringTransaction) *fakeRecurring {
	f := &fakeRecurring{byID: make(map[int64]models.RecurringTransaction)}
	for _, r := range templates {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeRecurring) Get(_ context.Context, ownerID, recurringID int64) (*models.RecurringTransaction, error) {
	r, ok := f.byID[recurringID]
	if !ok || r.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: recurring transaction %d", ErrNotFound, recurringID)
	}
	out := r
	return &out, nil
}

func (f *fakeRecurring) ListActiveByOwner(_ context.Context, ownerID int64) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.byID {
		if r.OwnerID == ownerID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecurring) ListDueCandidates(_ context.Context) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.byID {
		if r.IsActive && r.AutoCreate {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecurring) UpdateLastCreated(_ context.Context, recurringID int64, at time.Time) error {
	r, ok := f.byID[recurringID]
	if !ok {
		return fmt.Errorf("%w: recurring transaction %d", ErrNotFound, recurringID)
	}
	r.LastCreatedDate = &at
	f.byID[recurringID] = r
	return nil
}

func (f *fakeRecurring) Deactivate(_ context.Context, recurringID int64) error {
	r, ok := f.byID[recurringID]
	if !ok {
		return fmt.Errorf("%w: recurring transaction %d", ErrNotFound, recurringID)
	}
	r.IsActive = false
	f.byID[recurringID] = r
	return nil
}

type fakeSubscriptions struct {
	subs   []models.Subscription
	nextID int64
}

func newFakeSubscriptions(subs ...models.Subscription) *fakeSubscriptions {
	f := &fakeSubscriptions{nextID: 1}
	for _, s := range subs {
		if s.ID == 0 {
			s.ID = f.nextID
		}
		if s.ID >= f.nextID {
			f.nextID = s.ID + 1
		}
		f.subs = append(f.subs, s)
	}
	return f
}

func (f *fakeSubscriptions) ListActive(_ context.Context, ownerID int64) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subs {
		if s.OwnerID == ownerID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) Create(_ context.Context, sub *models.Subscription) (*models.Subscription, error) {
	stored := *sub
	stored.ID = f.nextID
	f.nextID++
	f.subs = append(f.subs, stored)
	out := stored
	return &out, nil
}
