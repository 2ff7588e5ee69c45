package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
)

const accountNumberCacheTTL = 12 * time.Hour

// TransferUseCase orchestrates money movement between two accounts: it
// validates the request, applies both balance deltas, and writes one transfer
// record plus two correlated transaction legs, all within a single storage
// transaction.
type TransferUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transferRepo    TransferRepository
	beneficiaryRepo BeneficiaryRepository
	ledger          *LedgerUseCase
	idGen           IDGenerator
	refGen          ReferenceGenerator
	cache           Cache
	logger          zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase. cache may be nil; it only
// accelerates account-number resolution.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	beneficiaryRepo BeneficiaryRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	cache Cache,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transferRepo:    transferRepo,
		beneficiaryRepo: beneficiaryRepo,
		ledger:          ledger,
		idGen:           idGen,
		refGen:          refGen,
		cache:           cache,
		logger:          logger,
	}
}

// TransferDestination names the destination account exactly one way: by
// account ID, by account number, or by saved beneficiary. Resolution happens
// once, ahead of orchestration.
type TransferDestination struct {
	AccountID     string
	AccountNumber string
	BeneficiaryID string
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID string
	Destination   TransferDestination
	Amount        decimal.Decimal
	Description   string
}

// TransferResult carries the created transfer and both post-commit balances.
type TransferResult struct {
	Transfer    *domain.Transfer
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// CreateTransfer moves funds between two accounts.
//
// Preconditions are checked in order, the first failure short-circuiting with
// zero writes: positive amount, distinct accounts, both accounts existing and
// active, sufficient source funds. All five writes (two balances, the
// transfer, two transaction legs) commit atomically; a failed commit leaves
// no leg applied and surfaces ErrWriteFailure after recording a best-effort
// failed transfer.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	// When the caller addresses the destination by ID the same-account check
	// needs no storage read at all.
	if input.Destination.AccountID != "" && input.Destination.AccountID == input.FromAccountID {
		return nil, domain.ErrSameAccount
	}

	toAccountID, err := uc.resolveDestination(ctx, input.Destination)
	if err != nil {
		return nil, err
	}

	if toAccountID == input.FromAccountID {
		return nil, domain.ErrSameAccount
	}

	// Lock accounts in sorted order so two opposing transfers cannot
	// deadlock.
	ids := []string{input.FromAccountID, toAccountID}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var from, to *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case input.FromAccountID:
			from = a
		case toAccountID:
			to = a
		}
	}

	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if !from.IsActive() || !to.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	if from.Balance.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	referenceNumber := uc.refGen.Generate(RefPrefixTransfer)
	now := time.Now().UTC()

	fromBalance, err := uc.ledger.ApplyDelta(ctx, tx, from.ID, input.Amount.Neg())
	if err != nil {
		return nil, err
	}

	toBalance, err := uc.ledger.ApplyDelta(ctx, tx, to.ID, input.Amount)
	if err != nil {
		return nil, err
	}

	completedAt := now
	transfer := &domain.Transfer{
		ID:              uc.idGen.Generate(),
		FromAccountID:   from.ID,
		ToAccountID:     to.ID,
		Amount:          input.Amount,
		TransferDate:    now,
		Status:          domain.TransferStatusCompleted,
		ReferenceNumber: referenceNumber,
		CreatedAt:       now,
		CompletedAt:     &completedAt,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = "Transfer"
	}

	_, err = uc.ledger.Record(ctx, tx, RecordInput{
		AccountID:       from.ID,
		Amount:          input.Amount.Neg(),
		Type:            domain.TransactionTypeTransfer,
		Description:     fmt.Sprintf("Transfer to %s: %s", to.AccountNumber, description),
		RunningBalance:  fromBalance,
		ReferenceNumber: referenceNumber,
	})
	if err != nil {
		return nil, err
	}

	_, err = uc.ledger.Record(ctx, tx, RecordInput{
		AccountID:       to.ID,
		Amount:          input.Amount,
		Type:            domain.TransactionTypeTransfer,
		Description:     fmt.Sprintf("Transfer from %s: %s", from.AccountNumber, description),
		RunningBalance:  toBalance,
		ReferenceNumber: referenceNumber,
	})
	if err != nil {
		return nil, err
	}

	// Both store implementations surface commit failures as ErrWriteFailure
	// after rolling back every staged write, so no leg is left applied.
	if err := tx.Commit(ctx); err != nil {
		uc.recordFailedTransfer(ctx, transfer)
		return nil, err
	}

	return &TransferResult{
		Transfer:    transfer,
		FromBalance: fromBalance,
		ToBalance:   toBalance,
	}, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfers touching an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = defaultPageSize
	}

	if input.Limit > maxPageSize {
		input.Limit = maxPageSize
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// ListTransfersByUser lists transfers across all of a user's accounts.
func (uc *TransferUseCase) ListTransfersByUser(ctx context.Context, userID string) ([]*domain.Transfer, error) {
	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var transfers []*domain.Transfer
	for _, account := range accounts {
		list, err := uc.transferRepo.ListByAccount(ctx, account.ID, maxPageSize, 0)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, list...)
	}

	return transfers, nil
}

// resolveDestination maps a TransferDestination to an account ID. It performs
// reads only; no mutation happens before the orchestration transaction.
func (uc *TransferUseCase) resolveDestination(ctx context.Context, dest TransferDestination) (string, error) {
	switch {
	case dest.AccountID != "":
		return dest.AccountID, nil

	case dest.AccountNumber != "":
		return uc.accountIDByNumber(ctx, dest.AccountNumber)

	case dest.BeneficiaryID != "":
		beneficiary, err := uc.beneficiaryRepo.GetByID(ctx, dest.BeneficiaryID)
		if err != nil {
			return "", err
		}
		return uc.accountIDByNumber(ctx, beneficiary.AccountNumber)

	default:
		return "", domain.ErrAccountNotFound
	}
}

// accountIDByNumber resolves an account number to its ID. Both fields are
// immutable, so the mapping is safe to cache.
func (uc *TransferUseCase) accountIDByNumber(ctx context.Context, accountNumber string) (string, error) {
	cacheKey := "accnum:" + accountNumber

	if uc.cache != nil {
		if id, err := uc.cache.Get(ctx, cacheKey); err == nil && id != "" {
			return id, nil
		}
	}

	account, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return "", err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKey, account.ID, accountNumberCacheTTL); err != nil {
			uc.logger.Warn().Err(err).Msg("failed to cache account number resolution")
		}
	}

	return account.ID, nil
}

// recordFailedTransfer durably marks a transfer that could not be fully
// committed. Best effort: the balances were rolled back with the failed
// commit, so the failed row is diagnostic, not corrective.
func (uc *TransferUseCase) recordFailedTransfer(ctx context.Context, transfer *domain.Transfer) {
	failed := *transfer
	failed.Status = domain.TransferStatusFailed
	failed.CompletedAt = nil

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		uc.logger.Error().Err(err).Str("transfer_id", transfer.ID).Msg("failed to record failed transfer")
		return
	}
	defer tx.Rollback(ctx)

	if err := uc.transferRepo.Create(ctx, tx, &failed); err != nil {
		uc.logger.Error().Err(err).Str("transfer_id", transfer.ID).Msg("failed to record failed transfer")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		uc.logger.Error().Err(err).Str("transfer_id", transfer.ID).Msg("failed to record failed transfer")
	}
}
