package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDelta(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		delta       decimal.Decimal
		expectError bool
	}{
		{
			name:        "credit always allowed",
			balance:     decimal.NewFromInt(100),
			delta:       decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			delta:       decimal.NewFromInt(-50),
			expectError: false,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			delta:       decimal.NewFromInt(-100),
			expectError: false,
		},
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			delta:       decimal.NewFromInt(-150),
			expectError: true,
		},
		{
			name:        "debit from zero balance",
			balance:     decimal.Zero,
			delta:       decimal.NewFromInt(-1),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDelta(tt.delta)

			if tt.expectError && err != ErrInsufficientFunds {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyDelta(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100)}

	newBalance := acc.ApplyDelta(decimal.NewFromInt(-30))
	expected := decimal.NewFromInt(70)
	if !newBalance.Equal(expected) {
		t.Errorf("expected balance %s, got %s", expected, newBalance)
	}

	// ApplyDelta returns the new balance without mutating the account.
	if !acc.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected account balance unchanged, got %s", acc.Balance)
	}
}

func TestAccount_IsActive(t *testing.T) {
	active := &Account{Status: AccountStatusActive}
	if !active.IsActive() {
		t.Error("expected active account to be active")
	}

	inactive := &Account{Status: AccountStatusInactive}
	if inactive.IsActive() {
		t.Error("expected inactive account to not be active")
	}
}
