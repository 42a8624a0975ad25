package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// splitTolerance is the allowed gap between a split sum and its parent
// amount, one cent.
var splitTolerance = decimal.New(1, -2)

// TransactionService enforces transaction invariants at creation and owns
// installment-chain lifecycle.
type TransactionService struct {
	accounts     AccountStore
	transactions TransactionStore
	splits       SplitStore
	cards        CreditCardStore
	installments InstallmentStore
	log          zerolog.Logger
}

func NewTransactionService(accounts AccountStore, transactions TransactionStore,
	splits SplitStore, cards CreditCardStore, installments InstallmentStore, log zerolog.Logger) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		splits:       splits,
		cards:        cards,
		installments: installments,
		log:          log,
	}
}

// SplitInput is one category slice of a split transaction.
type SplitInput struct {
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
}

// CreateTransactionInput is the creation request for a transaction.
// InstallmentMonths > 0 turns the transaction into an installment purchase on
// a credit card.
type CreateTransactionInput struct {
	AccountID         int64                  `json:"account_id"`
	CategoryID        *int64                 `json:"category_id,omitempty"`
	Type              models.TransactionType `json:"type"`
	Amount            decimal.Decimal        `json:"amount"`
	Currency          string                 `json:"currency,omitempty"`
	Date              time.Time              `json:"date"`
	Merchant          string                 `json:"merchant,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	Tags              string                 `json:"tags,omitempty"`
	ToAccountID       *int64                 `json:"to_account_id,omitempty"`
	Splits            []SplitInput           `json:"splits,omitempty"`
	InstallmentMonths int                    `json:"installment_months,omitempty"`
}

// Create validates and records a transaction, its splits and, for installment
// purchases, the full chain of future installments.
func (s *TransactionService) Create(ctx context.Context, ownerID int64, input CreateTransactionInput) (*models.Transaction, error) {
	account, err := s.accounts.Get(ctx, ownerID, input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", input.AccountID, err)
	}
	if account.IsArchived {
		return nil, fmt.Errorf("%w: account %d is archived", ErrInvalidState, account.ID)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidState, input.Type)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be a non-negative magnitude", ErrInvalidState)
	}

	if input.Type == models.TxTransfer {
		if input.ToAccountID == nil {
			return nil, fmt.Errorf("%w: transfer requires a destination account", ErrInvalidState)
		}
		if *input.ToAccountID == input.AccountID {
			return nil, fmt.Errorf("%w: transfer source and destination must differ", ErrInvalidState)
		}
		if _, err := s.accounts.Get(ctx, ownerID, *input.ToAccountID); err != nil {
			return nil, fmt.Errorf("destination account %d: %w", *input.ToAccountID, err)
		}
	}

	if len(input.Splits) > 0 {
		total := decimal.Zero
		for _, split := range input.Splits {
			total = total.Add(split.Amount)
		}
		if total.Sub(input.Amount).Abs().GreaterThan(splitTolerance) {
			return nil, fmt.Errorf("%w: split total %s does not match amount %s",
				ErrInvalidState, total.String(), input.Amount.String())
		}
	}

	currency := input.Currency
	if currency == "" {
		currency = account.Currency
	}

	tx := &models.Transaction{
		OwnerID:     ownerID,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    currency,
		Date:        dateOnly(input.Date),
		Merchant:    input.Merchant,
		Notes:       input.Notes,
		Tags:        input.Tags,
		ToAccountID: input.ToAccountID,
		IsSplit:     len(input.Splits) > 0,
	}

	if input.InstallmentMonths > 0 {
		return s.createInstallmentChain(ctx, ownerID, tx, input.InstallmentMonths)
	}

	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	for _, split := range input.Splits {
		_, err := s.splits.Create(ctx, &models.TransactionSplit{
			ParentTransactionID: created.ID,
			CategoryID:          split.CategoryID,
			Amount:              split.Amount,
			Notes:               split.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("create split: %w", err)
		}
	}

	s.log.Debug().Int64("tx_id", created.ID).Str("type", string(created.Type)).Msg("transaction created")
	return created, nil
}

// createInstallmentChain records an installment purchase and exactly n equal
// child transactions, the first dated at the purchase date, the rest monthly
// spaced.
func (s *TransactionService) createInstallmentChain(ctx context.Context, ownerID int64,
	tx *models.Transaction, months int) (*models.Transaction, error) {
	if months < 2 {
		return nil, fmt.Errorf("%w: installment purchase needs at least 2 installments", ErrInvalidState)
	}
	card, err := s.cards.GetByAccount(ctx, ownerID, tx.AccountID)
	if err != nil || card == nil {
		return nil, fmt.Errorf("%w: installment purchases require a credit card account", ErrInvalidState)
	}

	installmentAmount := tx.Amount.Div(decimal.NewFromInt(int64(months))).Round(2)

	description := tx.Merchant
	if description == "" {
		description = "Installment purchase"
	}
	purchase, err := s.installments.Create(ctx, &models.InstallmentPurchase{
		OwnerID:              ownerID,
		CreditCardID:         card.ID,
		CategoryID:           tx.CategoryID,
		Description:          description,
		Merchant:             tx.Merchant,
		TotalAmount:          tx.Amount,
		NumberOfInstallments: months,
		InstallmentAmount:    installmentAmount,
		PurchaseDate:         tx.Date,
		FirstInstallmentDate: tx.Date,
		IsActive:             true,
	})
	if err != nil {
		return nil, fmt.Errorf("create installment purchase: %w", err)
	}

	// First installment is the transaction itself, reduced to one share.
	one := 1
	tx.IsInstallment = true
	tx.InstallmentPurchaseID = &purchase.ID
	tx.InstallmentNumber = &one
	tx.Amount = installmentAmount

	first, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	for i := 2; i <= months; i++ {
		n := i
		child := &models.Transaction{
			OwnerID:               ownerID,
			AccountID:             tx.AccountID,
			CategoryID:            tx.CategoryID,
			Type:                  models.TxExpense,
			Amount:                installmentAmount,
			Currency:              tx.Currency,
			Date:                  addMonths(tx.Date, i-1),
			Merchant:              tx.Merchant,
			Notes:                 fmt.Sprintf("Installment %d/%d - %s", i, months, description),
			IsInstallment:         true,
			InstallmentPurchaseID: &purchase.ID,
			InstallmentNumber:     &n,
		}
		if _, err := s.transactions.Create(ctx, child); err != nil {
			return nil, fmt.Errorf("create installment %d: %w", i, err)
		}
	}

	s.log.Info().Int64("purchase_id", purchase.ID).Int("months", months).Msg("installment chain created")
	return first, nil
}

// Delete removes a transaction. Deleting the first installment of a chain
// removes the whole chain and its purchase record; other installments delete
// individually.
func (s *TransactionService) Delete(ctx context.Context, ownerID, txID int64) error {
	tx, err := s.transactions.Get(ctx, ownerID, txID)
	if err != nil {
		return fmt.Errorf("transaction %d: %w", txID, err)
	}

	if tx.IsInstallment && tx.InstallmentNumber != nil && *tx.InstallmentNumber == 1 &&
		tx.InstallmentPurchaseID != nil {
		purchaseID := *tx.InstallmentPurchaseID
		if err := s.transactions.DeleteByInstallmentPurchase(ctx, purchaseID); err != nil {
			return fmt.Errorf("delete installment chain %d: %w", purchaseID, err)
		}
		if err := s.installments.Delete(ctx, purchaseID); err != nil {
			return fmt.Errorf("delete installment purchase %d: %w", purchaseID, err)
		}
		s.log.Info().Int64("purchase_id", purchaseID).Msg("installment chain deleted")
		return nil
	}

	return s.transactions.Delete(ctx, ownerID, txID)
}
