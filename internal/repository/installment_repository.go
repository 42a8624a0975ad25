package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aregalado/plata/internal/models"
	"github.com/aregalado/plata/internal/services"
)

type InstallmentRepository struct {
	db *sql.DB
}

func NewInstallmentRepository(db *sql.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

const installmentColumns = `id, owner_id, credit_card_id, category_id, description, merchant, total_amount, number_of_installments, installment_amount, purchase_date, first_installment_date, is_active, completed, created_at`

func scanInstallment(row interface{ Scan(...any) error }) (*models.InstallmentPurchase, error) {
	p := &models.InstallmentPurchase{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.CreditCardID, &p.CategoryID, &p.Description, &p.Merchant, &p.TotalAmount, &p.NumberOfInstallments, &p.InstallmentAmount, &p.PurchaseDate, &p.FirstInstallmentDate, &p.IsActive, &p.Completed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *InstallmentRepository) Create(ctx context.Context, p *models.InstallmentPurchase) (*models.InstallmentPurchase, error) {
	err := r.db.QueryRowContext(ctx, `INSERT INTO installment_purchases (owner_id, credit_card_id, category_id, description, merchant, total_amount, number_of_installments, installment_amount, purchase_date, first_installment_date, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`,
		p.OwnerID, p.CreditCardID, p.CategoryID, p.Description, p.Merchant, p.TotalAmount, p.NumberOfInstallments, p.InstallmentAmount, p.PurchaseDate, p.FirstInstallmentDate, p.IsActive).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create installment purchase: %w", err)
	}
	return p, nil
}

func (r *InstallmentRepository) Get(ctx context.Context, ownerID, purchaseID int64) (*models.InstallmentPurchase, error) {
	p, err := scanInstallment(r.db.QueryRowContext(ctx, `SELECT `+installmentColumns+` FROM installment_purchases WHERE id = $1 AND owner_id = $2`, purchaseID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: installment purchase %d", services.ErrNotFound, purchaseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get installment purchase %d: %w", purchaseID, err)
	}
	return p, nil
}

func (r *InstallmentRepository) ListActiveByCard(ctx context.Context, cardID int64) ([]models.InstallmentPurchase, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+installmentColumns+` FROM installment_purchases WHERE credit_card_id = $1 AND is_active = true ORDER BY purchase_date ASC`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installment purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.InstallmentPurchase
	for rows.Next() {
		p, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func (r *InstallmentRepository) Delete(ctx context.Context, purchaseID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installment_purchases WHERE id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete installment purchase %d: %w", purchaseID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: installment purchase %d", services.ErrNotFound, purchaseID)
	}
	return nil
}
