package domain

import "errors"

var (
	// Generic lookup miss.
	ErrNotFound = errors.New("record not found")

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotAccountOwner   = errors.New("account does not belong to user")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrTransferNotFound = errors.New("transfer not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// Beneficiary errors
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")

	// User and auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")

	// Storage errors. ErrWriteFailure wraps any failure to durably persist a
	// record; callers should treat it as retryable.
	ErrWriteFailure = errors.New("storage write failed")
)
