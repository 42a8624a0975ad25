package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, owner_id, name, type, initial_balance, currency, is_default, is_archived, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	acc := &models.Account{}
	err := row.Scan(&acc.ID, &acc.OwnerID, &acc.Name, &acc.Type, &acc.InitialBalance, &acc.Currency, &acc.IsDefault, &acc.IsArchived, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Create inserts the account. At most one non-archived account per owner may
// be the default, so a new default demotes the previous one first.
func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	defer tx.Rollback()

	if acc.IsDefault {
		_, err = tx.ExecContext(ctx, `UPDATE accounts SET is_default = false, updated_at = CURRENT_TIMESTAMP WHERE owner_id = $1 AND is_default = true AND is_archived = false`, acc.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to demote default account: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx, `INSERT INTO accounts (owner_id, name, type, initial_balance, currency, is_default) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		acc.OwnerID, acc.Name, acc.Type, acc.InitialBalance, acc.Currency, acc.IsDefault).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) Get(ctx context.Context, ownerID, accountID int64) (*models.Account, error) {
	acc, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND owner_id = $2`, accountID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", services.ErrNotFound, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	return acc, nil
}

func (r *AccountRepository) ListActive(ctx context.Context, ownerID int64) ([]models.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 AND is_archived = false ORDER BY created_at ASC`, ownerID)
}

func (r *AccountRepository) List(ctx context.Context, ownerID int64) ([]models.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY created_at ASC`, ownerID)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Archive(ctx context.Context, ownerID, accountID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET is_archived = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND owner_id = $2`, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to archive account %d: %w", accountID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: account %d", services.ErrNotFound, accountID)
	}
	return nil
}
