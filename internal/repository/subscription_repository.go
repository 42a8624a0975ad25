package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aregalado/plata/internal/models"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, owner_id, name, amount, currency, frequency, billing_day, next_billing_date, recurring_transaction_id, is_active, notes, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := row.Scan(&sub.ID, &sub.OwnerID, &sub.Name, &sub.Amount, &sub.Currency, &sub.Frequency, &sub.BillingDay, &sub.NextBillingDate, &sub.RecurringTransactionID, &sub.IsActive, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO subscriptions (owner_id, name, amount, currency, frequency, billing_day, next_billing_date, recurring_transaction_id, is_active, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, updated_at`,
		sub.OwnerID, sub.Name, sub.Amount, sub.Currency, sub.Frequency, sub.BillingDay, sub.NextBillingDate, sub.RecurringTransactionID, sub.IsActive, sub.Notes).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) ListActive(ctx context.Context, ownerID int64) ([]models.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE owner_id = $1 AND is_active = true ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
