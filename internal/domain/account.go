package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the supported account products.
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

// AccountStatus enumerates account lifecycle states. Accounts are never
// deleted, only deactivated.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account represents a customer account holding a balance.
type Account struct {
	ID             string
	AccountNumber  string
	UserID         string
	Type           AccountType
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	Status         AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the account accepts operations.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ValidateDelta checks whether a signed delta can be applied without the
// balance going negative.
func (a *Account) ValidateDelta(delta decimal.Decimal) error {
	if a.Balance.Add(delta).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after applying a signed delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}
