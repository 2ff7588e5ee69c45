package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
)

// UserResponse represents a user in API responses. The password hash never
// leaves the usecase layer.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	DateOfBirth string     `json:"date_of_birth"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		DateOfBirth: u.DateOfBirth,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse carries a token and the authenticated user.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	AccountNumber  string          `json:"account_number"`
	UserID         string          `json:"user_id"`
	AccountType    string          `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		AccountNumber:  a.AccountNumber,
		UserID:         a.UserID,
		AccountType:    string(a.Type),
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
	Status          string          `json:"status"`
	ReferenceNumber string          `json:"reference_number"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Amount:          t.Amount,
		TransactionType: string(t.Type),
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		RunningBalance:  t.RunningBalance,
		Status:          string(t.Status),
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// EntryResultResponse carries a recorded entry and the new balance.
type EntryResultResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	NewBalance  decimal.Decimal      `json:"new_balance"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID              string          `json:"id"`
	FromAccountID   string          `json:"from_account_id"`
	ToAccountID     string          `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransferDate    time.Time       `json:"transfer_date"`
	Status          string          `json:"status"`
	ReferenceNumber string          `json:"reference_number"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:              t.ID,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Amount:          t.Amount,
		TransferDate:    t.TransferDate,
		Status:          string(t.Status),
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// TransferResultResponse carries the created transfer and both post-commit
// balances.
type TransferResultResponse struct {
	Transfer    *TransferResponse `json:"transfer"`
	FromBalance decimal.Decimal   `json:"from_balance"`
	ToBalance   decimal.Decimal   `json:"to_balance"`
}

// TransferResultFromUseCase converts a usecase transfer result to response.
func TransferResultFromUseCase(r *usecase.TransferResult) *TransferResultResponse {
	return &TransferResultResponse{
		Transfer:    TransferFromDomain(r.Transfer),
		FromBalance: r.FromBalance,
		ToBalance:   r.ToBalance,
	}
}

// BeneficiaryResponse represents a beneficiary in API responses.
type BeneficiaryResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Nickname      string    `json:"nickname"`
	AccountNumber string    `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// BeneficiaryFromDomain converts domain beneficiary to response.
func BeneficiaryFromDomain(b *domain.Beneficiary) *BeneficiaryResponse {
	return &BeneficiaryResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		Nickname:      b.Nickname,
		AccountNumber: b.AccountNumber,
		CreatedAt:     b.CreatedAt,
	}
}

// BeneficiariesFromDomain converts domain beneficiaries to responses.
func BeneficiariesFromDomain(beneficiaries []*domain.Beneficiary) []*BeneficiaryResponse {
	result := make([]*BeneficiaryResponse, len(beneficiaries))
	for i, b := range beneficiaries {
		result[i] = BeneficiaryFromDomain(b)
	}
	return result
}

// ReconciliationResponse represents one account's invariant check.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a usecase reconciliation result.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes an invariant sweep.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a usecase reconciliation report.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
