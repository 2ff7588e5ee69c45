package domain

import "time"

// Beneficiary is a saved transfer destination, addressed by account number.
type Beneficiary struct {
	ID            string
	UserID        string
	Nickname      string
	AccountNumber string
	CreatedAt     time.Time
}
