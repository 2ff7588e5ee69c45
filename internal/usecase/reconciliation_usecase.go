package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
)

// ReconciliationUseCase verifies the running-balance invariant and cleans up
// transfers stranded mid-commit by a crashed process.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	txnRepo      TransactionRepository
	transferRepo TransferRepository
	logger       zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	transferRepo TransferRepository,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// ReconciliationResult reports one account's invariant check: the stored
// balance must equal the opening balance plus the sum of all completed
// transaction amounts.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	CheckedAt         time.Time
}

// ReconcileAccount recomputes an account's balance from its ledger entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated := account.OpeningBalance
	offset := 0
	for {
		transactions, err := uc.txnRepo.ListByAccount(ctx, accountID, maxPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(transactions) == 0 {
			break
		}

		for _, txn := range transactions {
			if txn.Status == domain.TransactionStatusCompleted {
				calculated = calculated.Add(txn.Amount)
			}
		}

		offset += len(transactions)
	}

	difference := account.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		CheckedAt:         time.Now().UTC(),
	}, nil
}

// ReconciliationReport summarizes an invariant sweep across accounts.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileUser checks every account owned by a user.
func (uc *ReconciliationUseCase) ReconcileUser(ctx context.Context, userID string) (*ReconciliationReport, error) {
	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

// SweepStalePending marks transfers that have sat in pending longer than
// maxAge as failed. Pending rows can only come from a store that crashed
// between staging and commit; their balance effects were never applied, so
// failing them is the correct terminal state. Intended to run at startup.
func (uc *ReconciliationUseCase) SweepStalePending(ctx context.Context, maxAge time.Duration) (int, error) {
	pending, err := uc.transferRepo.ListByStatus(ctx, domain.TransferStatusPending)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	swept := 0

	for _, transfer := range pending {
		if transfer.CreatedAt.After(cutoff) {
			continue
		}

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return swept, err
		}

		if err := uc.transferRepo.UpdateStatus(ctx, tx, transfer.ID, domain.TransferStatusFailed, nil); err != nil {
			tx.Rollback(ctx)
			return swept, err
		}

		if err := tx.Commit(ctx); err != nil {
			return swept, err
		}

		uc.logger.Warn().
			Str("transfer_id", transfer.ID).
			Str("reference_number", transfer.ReferenceNumber).
			Msg("marked stale pending transfer as failed")
		swept++
	}

	return swept, nil
}
