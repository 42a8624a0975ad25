package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType - kind of financial account
type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountDebit      AccountType = "debit"
	AccountCredit     AccountType = "credit"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	AccountReceivable AccountType = "receivable"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountDebit, AccountCredit, AccountSavings,
		AccountInvestment, AccountLoan, AccountReceivable:
		return true
	}
	return false
}

// Liquid reports whether balances on this account count as immediately
// spendable funds.
func (t AccountType) Liquid() bool {
	switch t {
	case AccountCash, AccountDebit, AccountSavings:
		return true
	}
	return false
}

// TransactionType - direction of a money movement
type TransactionType string

const (
	TxExpense  TransactionType = "expense"
	TxIncome   TransactionType = "income"
	TxTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxExpense, TxIncome, TxTransfer:
		return true
	}
	return false
}

// BudgetKind - what a budget filters its expenses by
type BudgetKind string

const (
	BudgetCategory BudgetKind = "category"
	BudgetTag      BudgetKind = "tag"
	BudgetAccount  BudgetKind = "account"
	BudgetGlobal   BudgetKind = "global"
)

func (k BudgetKind) Valid() bool {
	switch k {
	case BudgetCategory, BudgetTag, BudgetAccount, BudgetGlobal:
		return true
	}
	return false
}

// BudgetPeriod - how often a budget resets
type BudgetPeriod string

const (
	PeriodWeekly   BudgetPeriod = "weekly"
	PeriodBiweekly BudgetPeriod = "biweekly"
	PeriodMonthly  BudgetPeriod = "monthly"
	PeriodAnnual   BudgetPeriod = "annual"
)

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly, PeriodAnnual:
		return true
	}
	return false
}

// Frequency - recurrence step of a recurring transaction template
type Frequency string

const (
	FreqDaily      Frequency = "daily"
	FreqWeekly     Frequency = "weekly"
	FreqBiweekly   Frequency = "biweekly"
	FreqMonthly    Frequency = "monthly"
	FreqBimonthly  Frequency = "bimonthly"
	FreqQuarterly  Frequency = "quarterly"
	FreqSemiannual Frequency = "semiannual"
	FreqAnnual     Frequency = "annual"
	FreqCustom     Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqBimonthly,
		FreqQuarterly, FreqSemiannual, FreqAnnual, FreqCustom:
		return true
	}
	return false
}

// Account - a financial account; its balance is always derived, never stored
type Account struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"owner_id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency"`
	IsDefault      bool            `json:"is_default"`
	IsArchived     bool            `json:"is_archived"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Transaction - amount is always a non-negative magnitude; the sign is
// implied by Type and by the account/to-account role
type Transaction struct {
	ID                    int64           `json:"id"`
	OwnerID               int64           `json:"owner_id"`
	AccountID             int64           `json:"account_id"`
	CategoryID            *int64          `json:"category_id,omitempty"`
	Type                  TransactionType `json:"type"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Date                  time.Time       `json:"date"`
	Merchant              string          `json:"merchant,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Tags                  string          `json:"tags,omitempty"`
	ToAccountID           *int64          `json:"to_account_id,omitempty"`
	IsInstallment         bool            `json:"is_installment"`
	InstallmentPurchaseID *int64          `json:"installment_purchase_id,omitempty"`
	InstallmentNumber     *int            `json:"installment_number,omitempty"`
	RecurringID           *int64          `json:"recurring_transaction_id,omitempty"`
	IsSplit               bool            `json:"is_split"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TransactionSplit - per-category slice of a split transaction
type TransactionSplit struct {
	ID                  int64           `json:"id"`
	ParentTransactionID int64           `json:"parent_transaction_id"`
	CategoryID          int64           `json:"category_id"`
	Amount              decimal.Decimal `json:"amount"`
	Notes               string          `json:"notes,omitempty"`
}

// CreditCard - billing configuration attached 1:1 to a credit account.
// CutoffDay stays in 1..28 so every month has the day.
type CreditCard struct {
	ID                 int64           `json:"id"`
	OwnerID            int64           `json:"owner_id"`
	AccountID          int64           `json:"account_id"`
	Name               string          `json:"name"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	CutoffDay          int             `json:"cutoff_day"`
	PaymentDueDay      int             `json:"payment_due_day"`
	AnnualInterestRate decimal.Decimal `json:"annual_interest_rate"`
	MinimumPaymentPct  decimal.Decimal `json:"minimum_payment_percentage"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// InstallmentPurchase - a purchase billed in equal monthly installments.
// Paid count is derived by counting linked transactions, never stored.
type InstallmentPurchase struct {
	ID                   int64           `json:"id"`
	OwnerID              int64           `json:"owner_id"`
	CreditCardID         int64           `json:"credit_card_id"`
	CategoryID           *int64          `json:"category_id,omitempty"`
	Description          string          `json:"description"`
	Merchant             string          `json:"merchant,omitempty"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	NumberOfInstallments int             `json:"number_of_installments"`
	InstallmentAmount    decimal.Decimal `json:"installment_amount"`
	PurchaseDate         time.Time       `json:"purchase_date"`
	FirstInstallmentDate time.Time       `json:"first_installment_date"`
	IsActive             bool            `json:"is_active"`
	Completed            bool            `json:"completed"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Budget - CurrentRollover is mutated only by the period-close transition
type Budget struct {
	ID                      int64            `json:"id"`
	OwnerID                 int64            `json:"owner_id"`
	Name                    string           `json:"name"`
	Kind                    BudgetKind       `json:"type"`
	LimitAmount             decimal.Decimal  `json:"limit_amount"`
	Period                  BudgetPeriod     `json:"period"`
	StartDay                int              `json:"start_day"`
	EnableRollover          bool             `json:"enable_rollover"`
	RolloverMaxAccumulation *decimal.Decimal `json:"rollover_max_accumulation,omitempty"`
	CurrentRollover         decimal.Decimal  `json:"current_rollover"`
	AlertAtPercentage       int              `json:"alert_at_percentage"`
	AlertOnExceed           bool             `json:"alert_on_exceed"`
	CategoryID              *int64           `json:"category_id,omitempty"`
	AccountID               *int64           `json:"account_id,omitempty"`
	Tag                     string           `json:"tag,omitempty"`
	IsActive                bool             `json:"is_active"`
	LastRolloverAt          *time.Time       `json:"last_rollover_at,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// Goal - CurrentAmount is the stored running sum of the contribution ledger
// plus InitialAmount; the two must always agree
type Goal struct {
	ID                     int64           `json:"id"`
	OwnerID                int64           `json:"owner_id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description,omitempty"`
	TargetAmount           decimal.Decimal `json:"target_amount"`
	InitialAmount          decimal.Decimal `json:"initial_amount"`
	CurrentAmount          decimal.Decimal `json:"current_amount"`
	TargetDate             *time.Time      `json:"target_date,omitempty"`
	AutoContributionAmount decimal.Decimal `json:"auto_contribution_amount"`
	Priority               int             `json:"priority"`
	IsCompleted            bool            `json:"is_completed"`
	CompletedAt            *time.Time      `json:"completed_at,omitempty"`
	IsArchived             bool            `json:"is_archived"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// GoalContribution - append-only ledger row; negative amount = withdrawal
type GoalContribution struct {
	ID          int64           `json:"id"`
	GoalID      int64           `json:"goal_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes,omitempty"`
	IsAutomatic bool            `json:"is_automatic"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecurringTransaction - template that materializes Transactions
type RecurringTransaction struct {
	ID                  int64           `json:"id"`
	OwnerID             int64           `json:"owner_id"`
	AccountID           int64           `json:"account_id"`
	CategoryID          *int64          `json:"category_id,omitempty"`
	Name                string          `json:"name"`
	Type                TransactionType `json:"type"`
	Amount              decimal.Decimal `json:"amount"`
	Frequency           Frequency       `json:"frequency"`
	CustomFrequencyDays *int            `json:"custom_frequency_days,omitempty"`
	DayOfMonth          *int            `json:"day_of_month,omitempty"`
	DayOfWeek           *int            `json:"day_of_week,omitempty"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	LastCreatedDate     *time.Time      `json:"last_created_date,omitempty"`
	AutoCreate          bool            `json:"auto_create"`
	IsActive            bool            `json:"is_active"`
	Merchant            string          `json:"merchant,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Subscription - manually entered or confirmed from detection
type Subscription struct {
	ID                     int64           `json:"id"`
	OwnerID                int64           `json:"owner_id"`
	Name                   string          `json:"name"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
	Frequency              string          `json:"frequency"`
	BillingDay             *int            `json:"billing_day,omitempty"`
	NextBillingDate        *time.Time      `json:"next_billing_date,omitempty"`
	RecurringTransactionID *int64          `json:"recurring_transaction_id,omitempty"`
	IsActive               bool            `json:"is_active"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
