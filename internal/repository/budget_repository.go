package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, owner_id, name, type, limit_amount, period, start_day, enable_rollover, rollover_max_accumulation, current_rollover, alert_at_percentage, alert_on_exceed, category_id, account_id, tag, is_active, last_rollover_at, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	b := &models.Budget{}
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Kind, &b.LimitAmount, &b.Period, &b.StartDay, &b.EnableRollover, &b.RolloverMaxAccumulation, &b.CurrentRollover, &b.AlertAtPercentage, &b.AlertOnExceed, &b.CategoryID, &b.AccountID, &b.Tag, &b.IsActive, &b.LastRolloverAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO budgets (owner_id, name, type, limit_amount, period, start_day, enable_rollover, rollover_max_accumulation, alert_at_percentage, alert_on_exceed, category_id, account_id, tag) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id, created_at, updated_at`,
		b.OwnerID, b.Name, b.Kind, b.LimitAmount, b.Period, b.StartDay, b.EnableRollover, b.RolloverMaxAccumulation, b.AlertAtPercentage, b.AlertOnExceed, b.CategoryID, b.AccountID, b.Tag).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	b.IsActive = true
	return b, nil
}

func (r *BudgetRepository) Get(ctx context.Context, ownerID, budgetID int64) (*models.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND owner_id = $2`, budgetID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: budget %d", services.ErrNotFound, budgetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget %d: %w", budgetID, err)
	}
	return b, nil
}

func (r *BudgetRepository) ListActive(ctx context.Context, ownerID int64) ([]models.Budget, error) {
	return r.list(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 AND is_active = true ORDER BY created_at ASC`, ownerID)
}

func (r *BudgetRepository) FindActiveByCategory(ctx context.Context, ownerID, categoryID int64) (*models.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 AND category_id = $2 AND type = 'category' AND is_active = true LIMIT 1`, ownerID, categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find budget for category %d: %w", categoryID, err)
	}
	return b, nil
}

func (r *BudgetRepository) ListRolloverCandidates(ctx context.Context) ([]models.Budget, error) {
	return r.list(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE is_active = true AND enable_rollover = true`)
}

func (r *BudgetRepository) list(ctx context.Context, query string, args ...any) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) UpdateRollover(ctx context.Context, budgetID int64, rollover decimal.Decimal, closedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE budgets SET current_rollover = $1, last_rollover_at = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`, rollover, closedAt, budgetID)
	if err != nil {
		return fmt.Errorf("failed to update rollover for budget %d: %w", budgetID, err)
	}
	return nil
}
