package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
)

// AccountUseCase handles account lifecycle and deposits.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	refGen      ReferenceGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	refGen ReferenceGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledger:      ledger,
		idGen:       idGen,
		refGen:      refGen,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	UserID         string
	Type           domain.AccountType
	OpeningBalance decimal.Decimal
}

// OpenAccount creates a new active account with a generated account number.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountType(input.Type); err != nil {
		return nil, err
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		AccountNumber:  uc.refGen.Generate(accountNumberPrefix),
		UserID:         input.UserID,
		Type:           input.Type,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		Status:         domain.AccountStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountForUser retrieves an account and verifies ownership.
func (uc *AccountUseCase) GetAccountForUser(ctx context.Context, id, userID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if account.UserID != userID {
		return nil, domain.ErrNotAccountOwner
	}

	return account, nil
}

// ListAccounts lists all accounts owned by a user.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByUser(ctx, userID)
}

// DeactivateAccount marks an account inactive. Accounts are never deleted.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id, userID string) (*domain.Account, error) {
	account, err := uc.GetAccountForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(ctx, tx, account.ID, domain.AccountStatusInactive, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	account.Status = domain.AccountStatusInactive
	account.UpdatedAt = now

	return account, nil
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// DepositResult carries the recorded entry and the new balance.
type DepositResult struct {
	Transaction *domain.Transaction
	NewBalance  decimal.Decimal
}

// Deposit credits an account and records a deposit entry, committed as one
// unit.
func (uc *AccountUseCase) Deposit(ctx context.Context, input DepositInput) (*DepositResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	newBalance, err := uc.ledger.ApplyDelta(ctx, tx, input.AccountID, input.Amount)
	if err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Deposit"
	}

	txn, err := uc.ledger.Record(ctx, tx, RecordInput{
		AccountID:       input.AccountID,
		Amount:          input.Amount,
		Type:            domain.TransactionTypeDeposit,
		Description:     description,
		RunningBalance:  newBalance,
		ReferenceNumber: uc.refGen.Generate(RefPrefixTransaction),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &DepositResult{Transaction: txn, NewBalance: newBalance}, nil
}
