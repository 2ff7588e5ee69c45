package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
)

// TransactionUseCase handles ad-hoc debit/credit entries and transaction
// lookups.
type TransactionUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	ledger      *LedgerUseCase
	refGen      ReferenceGenerator
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	ledger *LedgerUseCase,
	refGen ReferenceGenerator,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		ledger:      ledger,
		refGen:      refGen,
	}
}

// CreateEntryInput represents input for a direct debit or credit.
type CreateEntryInput struct {
	AccountID   string
	Amount      decimal.Decimal // always positive; Type decides the sign
	Type        domain.TransactionType
	Description string
}

// CreateEntryResult carries the recorded entry and the new balance.
type CreateEntryResult struct {
	Transaction *domain.Transaction
	NewBalance  decimal.Decimal
}

// CreateEntry applies a single debit or credit to an account and records the
// matching ledger entry in one commit.
func (uc *TransactionUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*CreateEntryResult, error) {
	if err := domain.ValidateEntryType(input.Type); err != nil {
		return nil, err
	}

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

	delta := input.Amount
	if input.Type == domain.TransactionTypeDebit {
		delta = input.Amount.Neg()
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	newBalance, err := uc.ledger.ApplyDelta(ctx, tx, input.AccountID, delta)
	if err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = string(input.Type) + " transaction"
	}

	txn, err := uc.ledger.Record(ctx, tx, RecordInput{
		AccountID:       input.AccountID,
		Amount:          delta,
		Type:            input.Type,
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

	return &CreateEntryResult{Transaction: txn, NewBalance: newBalance}, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// GetByReference retrieves all transactions correlated by a reference number.
func (uc *TransactionUseCase) GetByReference(ctx context.Context, referenceNumber string) ([]*domain.Transaction, error) {
	return uc.txnRepo.GetByReference(ctx, referenceNumber)
}

// ListByAccount lists transactions for one account.
func (uc *TransactionUseCase) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.txnRepo.ListByAccount(ctx, accountID, limit, offset)
}

// ListByUser lists transactions across all of a user's accounts.
func (uc *TransactionUseCase) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var all []*domain.Transaction
	for _, account := range accounts {
		transactions, err := uc.txnRepo.ListByAccount(ctx, account.ID, maxPageSize, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, transactions...)
	}

	return all, nil
}
