package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aregalado/plata/internal/models"
)

type SplitRepository struct {
	db *sql.DB
}

func NewSplitRepository(db *sql.DB) *SplitRepository {
	return &SplitRepository{db: db}
}

func (r *SplitRepository) Create(ctx context.Context, split *models.TransactionSplit) (*models.TransactionSplit, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO transaction_splits (parent_transaction_id, category_id, amount, notes) VALUES ($1, $2, $3, $4) RETURNING id`,
		split.ParentTransactionID, split.CategoryID, split.Amount, split.Notes).Scan(&split.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction split: %w", err)
	}
	return split, nil
}

func (r *SplitRepository) ListByTransaction(ctx context.Context, txID int64) ([]models.TransactionSplit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, parent_transaction_id, category_id, amount, notes FROM transaction_splits WHERE parent_transaction_id = $1 ORDER BY id ASC`, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []models.TransactionSplit
	for rows.Next() {
		split := models.TransactionSplit{}
		if err := rows.Scan(&split.ID, &split.ParentTransactionID, &split.CategoryID, &split.Amount, &split.Notes); err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}
