package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
)

// RegisterRequest represents a request to register a user.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:       r.Email,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		DateOfBirth: r.DateOfBirth,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a profile update. Empty fields are left
// unchanged.
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput() usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	AccountType    string          `json:"account_type"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(userID string) usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		UserID:         userID,
		Type:           domain.AccountType(r.AccountType),
		OpeningBalance: r.OpeningBalance,
	}
}

// DepositRequest represents a deposit request.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(accountID string) usecase.DepositInput {
	return usecase.DepositInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// CreateEntryRequest represents a direct debit or credit request.
type CreateEntryRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"transaction_type"`
	Description string          `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Type:        domain.TransactionType(r.Type),
		Description: r.Description,
	}
}

// CreateTransferRequest represents a request to create a transfer. The
// destination is named exactly one way: account ID, account number, or saved
// beneficiary.
type CreateTransferRequest struct {
	FromAccountID   string          `json:"from_account_id"`
	ToAccountID     string          `json:"to_account_id,omitempty"`
	ToAccountNumber string          `json:"to_account_number,omitempty"`
	BeneficiaryID   string          `json:"beneficiary_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		Destination: usecase.TransferDestination{
			AccountID:     r.ToAccountID,
			AccountNumber: r.ToAccountNumber,
			BeneficiaryID: r.BeneficiaryID,
		},
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// AddBeneficiaryRequest represents a request to save a beneficiary.
type AddBeneficiaryRequest struct {
	Nickname      string `json:"nickname"`
	AccountNumber string `json:"account_number"`
}

// ToUseCaseInput converts to use case input.
func (r *AddBeneficiaryRequest) ToUseCaseInput(userID string) usecase.AddBeneficiaryInput {
	return usecase.AddBeneficiaryInput{
		UserID:        userID,
		Nickname:      r.Nickname,
		AccountNumber: r.AccountNumber,
	}
}
