package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type CreditCardRepository struct {
	db *sql.DB
}

func NewCreditCardRepository(db *sql.DB) *CreditCardRepository {
	return &CreditCardRepository{db: db}
}

const creditCardColumns = `id, owner_id, account_id, name, credit_limit, cutoff_day, payment_due_day, annual_interest_rate, minimum_payment_percentage, is_active, created_at, updated_at`

func scanCreditCard(row interface{ Scan(...any) error }) (*models.CreditCard, error) {
	card := &models.CreditCard{}
	err := row.Scan(&card.ID, &card.OwnerID, &card.AccountID, &card.Name, &card.CreditLimit, &card.CutoffDay, &card.PaymentDueDay, &card.AnnualInterestRate, &card.MinimumPaymentPct, &card.IsActive, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *CreditCardRepository) Create(ctx context.Context, card *models.CreditCard) (*models.CreditCard, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO credit_cards (owner_id, account_id, name, credit_limit, cutoff_day, payment_due_day, annual_interest_rate, minimum_payment_percentage, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at, updated_at`,
		card.OwnerID, card.AccountID, card.Name, card.CreditLimit, card.CutoffDay, card.PaymentDueDay, card.AnnualInterestRate, card.MinimumPaymentPct, card.IsActive).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create credit card: %w", err)
	}
	return card, nil
}

func (r *CreditCardRepository) Get(ctx context.Context, ownerID, cardID int64) (*models.CreditCard, error) {
	card, err := scanCreditCard(r.db.QueryRowContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1 AND owner_id = $2`, cardID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: credit card %d", services.ErrNotFound, cardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credit card %d: %w", cardID, err)
	}
	return card, nil
}

func (r *CreditCardRepository) GetByAccount(ctx context.Context, ownerID, accountID int64) (*models.CreditCard, error) {
	card, err := scanCreditCard(r.db.QueryRowContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE account_id = $1 AND owner_id = $2`, accountID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no card on account %d", services.ErrNotFound, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card for account %d: %w", accountID, err)
	}
	return card, nil
}

func (r *CreditCardRepository) ListActive(ctx context.Context, ownerID int64) ([]models.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+creditCardColumns+` FROM credit_cards WHERE owner_id = $1 AND is_active = true ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []models.CreditCard
	for rows.Next() {
		card, err := scanCreditCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}
