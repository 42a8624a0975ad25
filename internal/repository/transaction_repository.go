package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, owner_id, account_id, category_id, type, amount, currency, date, merchant, notes, tags, to_account_id, is_installment, installment_purchase_id, installment_number, recurring_transaction_id, is_split, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.AccountID, &tx.CategoryID, &tx.Type, &tx.Amount, &tx.Currency, &tx.Date, &tx.Merchant, &tx.Notes, &tx.Tags, &tx.ToAccountID, &tx.IsInstallment, &tx.InstallmentPurchaseID, &tx.InstallmentNumber, &tx.RecurringID, &tx.IsSplit, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO transactions (owner_id, account_id, category_id, type, amount, currency, date, merchant, notes, tags, to_account_id, is_installment, installment_purchase_id, installment_number, recurring_transaction_id, is_split) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id, created_at, updated_at`,
		tx.OwnerID, tx.AccountID, tx.CategoryID, tx.Type, tx.Amount, tx.Currency, tx.Date, tx.Merchant, tx.Notes, tx.Tags, tx.ToAccountID, tx.IsInstallment, tx.InstallmentPurchaseID, tx.InstallmentNumber, tx.RecurringID, tx.IsSplit).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) Get(ctx context.Context, ownerID, txID int64) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND owner_id = $2`, txID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", services.ErrNotFound, txID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", txID, err)
	}
	return tx, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, ownerID, txID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, txID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", txID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: transaction %d", services.ErrNotFound, txID)
	}
	return nil
}

// List returns the owner's transactions newest first, optionally narrowed to
// one account.
func (r *TransactionRepository) List(ctx context.Context, ownerID int64, accountID *int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1`
	args := []any{ownerID}
	if accountID != nil {
		args = append(args, *accountID)
		query += ` AND account_id = $` + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	query += ` ORDER BY date DESC, id DESC LIMIT $` + strconv.Itoa(len(args))
	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) ListAccountFlows(ctx context.Context, ownerID, accountID int64) ([]models.Transaction, error) {
	return r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE owner_id = $1 AND (account_id = $2 OR to_account_id = $2)`, ownerID, accountID)
}

func (r *TransactionRepository) ListExpenses(ctx context.Context, ownerID int64, f services.ExpenseFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1 AND type = 'expense'`
	args := []any{ownerID}

	add := func(clause string, value any) {
		args = append(args, value)
		query += ` AND ` + clause + ` $` + strconv.Itoa(len(args))
	}
	if !f.From.IsZero() {
		add(`date >=`, f.From)
	}
	if !f.To.IsZero() {
		add(`date <=`, f.To)
	}
	if f.CategoryID != nil {
		add(`category_id =`, *f.CategoryID)
	}
	if f.AccountID != nil {
		add(`account_id =`, *f.AccountID)
	}
	if f.Tag != "" {
		add(`tags LIKE`, "%"+f.Tag+"%")
	}
	query += ` ORDER BY date ASC, id ASC`
	return r.queryTransactions(ctx, query, args...)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) CountByInstallmentPurchase(ctx context.Context, purchaseID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE installment_purchase_id = $1`, purchaseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count installments for purchase %d: %w", purchaseID, err)
	}
	return count, nil
}

func (r *TransactionRepository) DeleteByInstallmentPurchase(ctx context.Context, purchaseID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE installment_purchase_id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete installment chain %d: %w", purchaseID, err)
	}
	return nil
}

func (r *TransactionRepository) ExistsForRecurringOn(ctx context.Context, recurringID int64, day time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE recurring_transaction_id = $1 AND date = $2)`, recurringID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recurring materialization: %w", err)
	}
	return exists, nil
}
