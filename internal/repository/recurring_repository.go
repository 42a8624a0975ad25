package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type RecurringRepository struct {
	db *sql.DB
}

func NewRecurringRepository(db *sql.DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

const recurringColumns = `id, owner_id, account_id, category_id, name, type, amount, frequency, custom_frequency_days, day_of_month, day_of_week, start_date, end_date, last_created_date, auto_create, is_active, merchant, notes, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (*models.RecurringTransaction, error) {
	rec := &models.RecurringTransaction{}
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.AccountID, &rec.CategoryID, &rec.Name, &rec.Type, &rec.Amount, &rec.Frequency, &rec.CustomFrequencyDays, &rec.DayOfMonth, &rec.DayOfWeek, &rec.StartDate, &rec.EndDate, &rec.LastCreatedDate, &rec.AutoCreate, &rec.IsActive, &rec.Merchant, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecurringRepository) Create(ctx context.Context, rec *models.RecurringTransaction) (*models.RecurringTransaction, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO recurring_transactions (owner_id, account_id, category_id, name, type, amount, frequency, custom_frequency_days, day_of_month, day_of_week, start_date, end_date, auto_create, merchant, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id, created_at, updated_at`,
		rec.OwnerID, rec.AccountID, rec.CategoryID, rec.Name, rec.Type, rec.Amount, rec.Frequency, rec.CustomFrequencyDays, rec.DayOfMonth, rec.DayOfWeek, rec.StartDate, rec.EndDate, rec.AutoCreate, rec.Merchant, rec.Notes).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	rec.IsActive = true
	return rec, nil
}

func (r *RecurringRepository) Get(ctx context.Context, ownerID, recurringID int64) (*models.RecurringTransaction, error) {
	rec, err := scanRecurring(r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1 AND owner_id = $2`, recurringID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recurring transaction %d", services.ErrNotFound, recurringID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring transaction %d: %w", recurringID, err)
	}
	return rec, nil
}

func (r *RecurringRepository) ListActiveByOwner(ctx context.Context, ownerID int64) ([]models.RecurringTransaction, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE owner_id = $1 AND is_active = true ORDER BY created_at ASC`, ownerID)
}

func (r *RecurringRepository) ListDueCandidates(ctx context.Context) ([]models.RecurringTransaction, error) {
	return r.list(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE is_active = true AND auto_create = true`)
}

func (r *RecurringRepository) list(ctx context.Context, query string, args ...any) ([]models.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions: %w", err)
	}
	defer rows.Close()

	var templates []models.RecurringTransaction
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *rec)
	}
	return templates, rows.Err()
}

func (r *RecurringRepository) UpdateLastCreated(ctx context.Context, recurringID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE recurring_transactions SET last_created_date = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, at, recurringID)
	if err != nil {
		return fmt.Errorf("failed to stamp recurring transaction %d: %w", recurringID, err)
	}
	return nil
}

func (r *RecurringRepository) Deactivate(ctx context.Context, recurringID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE recurring_transactions SET is_active = false, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, recurringID)
	if err != nil {
		return fmt.Errorf("failed to deactivate recurring transaction %d: %w", recurringID, err)
	}
	return nil
}
