package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus enumerates transfer states. A transfer moves from pending to
// completed within one commit; completed may transition to failed only when
// the full record set could not be committed.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// Transfer records one money movement between two accounts. Its reference
// number is shared with the two transaction legs it produced.
type Transfer struct {
	ID              string
	FromAccountID   string
	ToAccountID     string
	Amount          decimal.Decimal
	TransferDate    time.Time
	Status          TransferStatus
	ReferenceNumber string
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// Validate validates the transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
