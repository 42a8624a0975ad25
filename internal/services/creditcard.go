package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// Safety valves for the amortization loop. Neither value comes from a
// financial rule: the cap bounds divergent configurations and the floor
// detects payments too small to ever retire the balance.
const (
	maxPayoffMonths = 1200
)

var (
	minViablePayment = decimal.NewFromInt(1)
	hundred          = decimal.NewFromInt(100)
	twelve           = decimal.NewFromInt(12)
)

const nonConvergenceWarning = "paying only the minimum may take years and a high interest cost"

// CreditCardService computes billing-cycle balances, available credit and
// minimum-payment amortization for credit cards.
type CreditCardService struct {
	cards        CreditCardStore
	installments InstallmentStore
	transactions TransactionStore
	accounts     AccountStore
	log          zerolog.Logger
	now          func() time.Time
}

func NewCreditCardService(cards CreditCardStore, installments InstallmentStore,
	transactions TransactionStore, accounts AccountStore, log zerolog.Logger) *CreditCardService {
	return &CreditCardService{
		cards:        cards,
		installments: installments,
		transactions: transactions,
		accounts:     accounts,
		log:          log,
		now:          time.Now,
	}
}

// CardSummary is the cycle-relative state of a card as of "today".
type CardSummary struct {
	Card              *models.CreditCard `json:"credit_card"`
	CycleStart        time.Time          `json:"cycle_start"`
	CycleEnd          time.Time          `json:"cycle_end"`
	BalanceAtCutoff   decimal.Decimal    `json:"balance_at_cutoff"`
	PostCutoffBalance decimal.Decimal    `json:"post_cutoff_balance"`
	CurrentBalance    decimal.Decimal    `json:"current_balance"`
	InstallmentDebt   decimal.Decimal    `json:"total_installment_debt"`
	AvailableCredit   decimal.Decimal    `json:"available_credit"`
	MinimumPayment    decimal.Decimal    `json:"minimum_payment"`
	NextCutoffDate    time.Time          `json:"next_cutoff_date"`
	NextPaymentDate   time.Time          `json:"next_payment_date"`
	UsagePercentage   decimal.Decimal    `json:"usage_percentage"`
}

// InstallmentStatus reports amortization progress of one installment purchase.
type InstallmentStatus struct {
	Purchase           *models.InstallmentPurchase `json:"installment_purchase"`
	InstallmentsPaid   int                         `json:"installments_paid"`
	InstallmentsLeft   int                         `json:"installments_remaining"`
	AmountPaid         decimal.Decimal             `json:"amount_paid"`
	AmountRemaining    decimal.Decimal             `json:"amount_remaining"`
	ProgressPercentage decimal.Decimal             `json:"progress_percentage"`
}

// PayoffSimulation is the result of iterating minimum payments until the
// statement balance clears. MonthsToPayoff is -1 when the schedule does not
// converge.
type PayoffSimulation struct {
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	MinimumPayment      decimal.Decimal `json:"minimum_payment"`
	InterestIfMinimum   decimal.Decimal `json:"interest_if_minimum"`
	NewBalanceNextMonth decimal.Decimal `json:"new_balance_next_month"`
	MonthsToPayoff      int             `json:"months_to_payoff"`
	Warning             string          `json:"warning,omitempty"`
}

// CreateCard attaches billing configuration to a credit-type account.
func (s *CreditCardService) CreateCard(ctx context.Context, ownerID int64, card *models.CreditCard) (*models.CreditCard, error) {
	account, err := s.accounts.Get(ctx, ownerID, card.AccountID)
	if err != nil {
		return nil, fmt.Errorf("card account %d: %w", card.AccountID, err)
	}
	if account.Type != models.AccountCredit {
		return nil, fmt.Errorf("%w: account %d is not a credit account", ErrInvalidState, account.ID)
	}
	if card.CutoffDay < 1 || card.CutoffDay > 28 {
		return nil, fmt.Errorf("%w: cutoff day must be between 1 and 28", ErrInvalidState)
	}
	if card.PaymentDueDay < 1 || card.PaymentDueDay > 28 {
		return nil, fmt.Errorf("%w: payment due day must be between 1 and 28", ErrInvalidState)
	}

	if existing, err := s.cards.GetByAccount(ctx, ownerID, card.AccountID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: account %d already has a card configured", ErrInvalidState, card.AccountID)
	}

	card.OwnerID = ownerID
	card.IsActive = true
	created, err := s.cards.Create(ctx, card)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("card_id", created.ID).Int("cutoff_day", created.CutoffDay).Msg("credit card created")
	return created, nil
}

// Summary computes the cycle-relative balances of a card as of today. The
// statement window is the most recently closed cycle; expenses after its end
// accrue to the open cycle.
func (s *CreditCardService) Summary(ctx context.Context, ownerID, cardID int64) (*CardSummary, error) {
	card, err := s.cards.Get(ctx, ownerID, cardID)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", cardID, err)
	}

	today := dateOnly(s.now())
	cycleStart, cycleEnd := ClosedPeriodWindow(card.CutoffDay, today)

	statement, err := s.transactions.ListExpenses(ctx, ownerID, ExpenseFilter{
		AccountID: &card.AccountID,
		From:      cycleStart,
		To:        cycleEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("statement expenses: %w", err)
	}
	balanceAtCutoff := sumAmounts(statement)

	postCutoff, err := s.transactions.ListExpenses(ctx, ownerID, ExpenseFilter{
		AccountID: &card.AccountID,
		From:      cycleEnd.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("post-cutoff expenses: %w", err)
	}
	postCutoffBalance := sumAmounts(postCutoff)

	installmentDebt, err := s.outstandingInstallmentDebt(ctx, card.ID)
	if err != nil {
		return nil, err
	}

	currentBalance := balanceAtCutoff.Add(postCutoffBalance)
	available := card.CreditLimit.Sub(balanceAtCutoff).Sub(postCutoffBalance).Sub(installmentDebt)
	minimum := minimumPayment(balanceAtCutoff, card.MinimumPaymentPct)

	usage := decimal.Zero
	if card.CreditLimit.IsPositive() {
		usage = currentBalance.Div(card.CreditLimit).Mul(hundred)
	}

	return &CardSummary{
		Card:              card,
		CycleStart:        cycleStart,
		CycleEnd:          cycleEnd,
		BalanceAtCutoff:   balanceAtCutoff,
		PostCutoffBalance: postCutoffBalance,
		CurrentBalance:    currentBalance,
		InstallmentDebt:   installmentDebt,
		AvailableCredit:   available,
		MinimumPayment:    minimum,
		NextCutoffDate:    NextOccurrence(card.CutoffDay, today),
		NextPaymentDate:   NextOccurrence(card.PaymentDueDay, today),
		UsagePercentage:   usage,
	}, nil
}

// outstandingInstallmentDebt sums total - amount*paid over active purchases.
// Paid count is derived by counting linked transactions.
func (s *CreditCardService) outstandingInstallmentDebt(ctx context.Context, cardID int64) (decimal.Decimal, error) {
	purchases, err := s.installments.ListActiveByCard(ctx, cardID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list installment purchases: %w", err)
	}

	debt := decimal.Zero
	for _, p := range purchases {
		if p.Completed {
			continue
		}
		paid, err := s.transactions.CountByInstallmentPurchase(ctx, p.ID)
		if err != nil {
			return decimal.Zero, err
		}
		paidAmount := p.InstallmentAmount.Mul(decimal.NewFromInt(int64(paid)))
		debt = debt.Add(p.TotalAmount.Sub(paidAmount))
	}
	return debt, nil
}

// Installments lists purchases on a card with their amortization progress.
func (s *CreditCardService) Installments(ctx context.Context, ownerID, cardID int64) ([]InstallmentStatus, error) {
	if _, err := s.cards.Get(ctx, ownerID, cardID); err != nil {
		return nil, fmt.Errorf("card %d: %w", cardID, err)
	}

	purchases, err := s.installments.ListActiveByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	statuses := make([]InstallmentStatus, 0, len(purchases))
	for i := range purchases {
		p := purchases[i]
		paid, err := s.transactions.CountByInstallmentPurchase(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		remaining := p.NumberOfInstallments - paid
		progress := decimal.NewFromInt(int64(paid)).
			Div(decimal.NewFromInt(int64(p.NumberOfInstallments))).
			Mul(hundred)

		statuses = append(statuses, InstallmentStatus{
			Purchase:           &p,
			InstallmentsPaid:   paid,
			InstallmentsLeft:   remaining,
			AmountPaid:         p.InstallmentAmount.Mul(decimal.NewFromInt(int64(paid))),
			AmountRemaining:    p.InstallmentAmount.Mul(decimal.NewFromInt(int64(remaining))),
			ProgressPercentage: progress,
		})
	}
	return statuses, nil
}

// SimulateMinimumPayment iterates month by month paying only the minimum.
// Interest accrues on the remainder at the monthly rate. The loop stops when
// the balance clears, when the payment drops below one currency unit
// (non-convergent, -1 months), or at the iteration cap.
func (s *CreditCardService) SimulateMinimumPayment(ctx context.Context, ownerID, cardID int64) (*PayoffSimulation, error) {
	summary, err := s.Summary(ctx, ownerID, cardID)
	if err != nil {
		return nil, err
	}

	balance := summary.BalanceAtCutoff
	if !balance.IsPositive() {
		return &PayoffSimulation{MonthsToPayoff: 0}, nil
	}

	card := summary.Card
	monthlyRate := card.AnnualInterestRate.Div(twelve).Div(hundred)

	minimum := minimumPayment(balance, card.MinimumPaymentPct)
	firstInterest := balance.Sub(minimum).Mul(monthlyRate)

	sim := &PayoffSimulation{
		CurrentBalance:      balance,
		MinimumPayment:      minimum,
		InterestIfMinimum:   firstInterest,
		NewBalanceNextMonth: balance.Sub(minimum).Add(firstInterest),
		Warning:             nonConvergenceWarning,
	}

	months := 0
	remaining := balance
	for remaining.IsPositive() && months < maxPayoffMonths {
		payment := minimumPayment(remaining, card.MinimumPaymentPct)
		interest := remaining.Sub(payment).Mul(monthlyRate)
		remaining = remaining.Sub(payment).Add(interest)
		months++

		if payment.LessThan(minViablePayment) {
			months = -1
			break
		}
	}
	if months >= maxPayoffMonths {
		months = -1
	}
	sim.MonthsToPayoff = months

	if months < 0 {
		s.log.Warn().Int64("card_id", cardID).Msg("minimum payment schedule does not converge")
	}
	return sim, nil
}

// RegisterPayment records a card payment as a transfer from a funding account
// into the card account.
func (s *CreditCardService) RegisterPayment(ctx context.Context, ownerID, cardID, fromAccountID int64,
	amount decimal.Decimal, paymentDate time.Time) (*models.Transaction, error) {
	card, err := s.cards.Get(ctx, ownerID, cardID)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", cardID, err)
	}
	if _, err := s.accounts.Get(ctx, ownerID, fromAccountID); err != nil {
		return nil, fmt.Errorf("funding account %d: %w", fromAccountID, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidState)
	}

	tx := &models.Transaction{
		OwnerID:     ownerID,
		AccountID:   fromAccountID,
		ToAccountID: &card.AccountID,
		Type:        models.TxTransfer,
		Amount:      amount,
		Date:        dateOnly(paymentDate),
		Merchant:    "Card payment",
		Notes:       fmt.Sprintf("Payment to %s", card.Name),
	}
	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("card_id", cardID).Str("amount", amount.String()).Msg("card payment registered")
	return created, nil
}

func minimumPayment(balance, pct decimal.Decimal) decimal.Decimal {
	return balance.Mul(pct.Div(hundred))
}

func sumAmounts(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
