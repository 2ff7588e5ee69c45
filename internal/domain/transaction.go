package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType enumerates ledger entry types.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeTransfer TransactionType = "transfer"
)

// TransactionStatus enumerates ledger entry states.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusPending   TransactionStatus = "pending"
)

// Transaction is an immutable ledger entry. Amount is signed: negative for
// outflow, positive for inflow. RunningBalance is the account balance
// immediately after this entry was applied.
type Transaction struct {
	ID              string
	AccountID       string
	Amount          decimal.Decimal
	Type            TransactionType
	Description     string
	TransactionDate time.Time
	RunningBalance  decimal.Decimal
	Status          TransactionStatus
	ReferenceNumber string
	CreatedAt       time.Time
}
