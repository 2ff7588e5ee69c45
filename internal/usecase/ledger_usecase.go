package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
)

// LedgerUseCase owns the two primitive ledger mutations: applying a signed
// delta to one account's balance, and appending the immutable transaction
// entry that records it. Both operate inside a caller-provided storage
// transaction so that compound operations commit as a unit.
type LedgerUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	idGen       IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, txnRepo TransactionRepository, idGen IDGenerator) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		idGen:       idGen,
	}
}

// ApplyDelta applies a signed delta to the account's balance and returns the
// new balance. The account row is locked through tx, so the read-modify-write
// cannot interleave with a concurrent mutation of the same account. The
// account is left unmodified when the delta would drive the balance negative.
func (uc *LedgerUseCase) ApplyDelta(ctx context.Context, tx Transaction, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := account.ValidateDelta(delta); err != nil {
		return decimal.Zero, err
	}

	newBalance := account.ApplyDelta(delta)

	err = uc.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance, time.Now().UTC())
	if err != nil {
		return decimal.Zero, err
	}

	return newBalance, nil
}

// RecordInput describes one ledger entry to append.
type RecordInput struct {
	AccountID       string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	Description     string
	RunningBalance  decimal.Decimal
	ReferenceNumber string
}

// Record appends one immutable transaction entry reflecting an
// already-applied balance change. It never re-validates the balance; that is
// ApplyDelta's job. Keeping the append unconditional keeps the audit trail
// append-only even if balance rules change.
func (uc *LedgerUseCase) Record(ctx context.Context, tx Transaction, input RecordInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       input.AccountID,
		Amount:          input.Amount,
		Type:            input.Type,
		Description:     input.Description,
		TransactionDate: now,
		RunningBalance:  input.RunningBalance,
		Status:          domain.TransactionStatusCompleted,
		ReferenceNumber: input.ReferenceNumber,
		CreatedAt:       now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}
