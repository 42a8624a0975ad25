package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aregalado/plata/internal/models"
)

// BalanceService derives account balances from transaction flows. Balances
// are never stored.
type BalanceService struct {
	accounts     AccountStore
	transactions TransactionStore
}

func NewBalanceService(accounts AccountStore, transactions TransactionStore) *BalanceService {
	return &BalanceService{
		accounts:     accounts,
		transactions: transactions,
	}
}

// AccountBalance returns the running balance since account creation:
// initial + income - expense + transfers in - transfers out.
func (s *BalanceService) AccountBalance(ctx context.Context, ownerID, accountID int64) (decimal.Decimal, error) {
	account, err := s.accounts.Get(ctx, ownerID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %d: %w", accountID, err)
	}

	flows, err := s.transactions.ListAccountFlows(ctx, ownerID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list flows for account %d: %w", accountID, err)
	}

	return balanceOf(account, flows), nil
}

// balanceOf folds a transaction set into a balance. Pure sum; the result does
// not depend on iteration order.
func balanceOf(account *models.Account, flows []models.Transaction) decimal.Decimal {
	balance := account.InitialBalance
	for _, tx := range flows {
		switch tx.Type {
		case models.TxIncome:
			if tx.AccountID == account.ID {
				balance = balance.Add(tx.Amount)
			}
		case models.TxExpense:
			if tx.AccountID == account.ID {
				balance = balance.Sub(tx.Amount)
			}
		case models.TxTransfer:
			if tx.ToAccountID != nil && *tx.ToAccountID == account.ID {
				balance = balance.Add(tx.Amount)
			}
			if tx.AccountID == account.ID {
				balance = balance.Sub(tx.Amount)
			}
		}
	}
	return balance
}
