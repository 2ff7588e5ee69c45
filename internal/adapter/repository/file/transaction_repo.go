package file

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
)

type transactionRecord struct {
	TransactionID   string          `json:"transaction_id"`
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

func transactionToRecord(t *domain.Transaction) transactionRecord {
	return transactionRecord{
		TransactionID:   t.ID,
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

func recordToTransaction(r transactionRecord) *domain.Transaction {
	return &domain.Transaction{
		ID:              r.TransactionID,
		AccountID:       r.AccountID,
		Amount:          r.Amount,
		Type:            domain.TransactionType(r.TransactionType),
		Description:     r.Description,
		TransactionDate: r.TransactionDate,
		RunningBalance:  r.RunningBalance,
		Status:          domain.TransactionStatus(r.Status),
		ReferenceNumber: r.ReferenceNumber,
		CreatedAt:       r.CreatedAt,
	}
}

// TransactionRepository is the file-store implementation of
// usecase.TransactionRepository. Ledger entries are append-only.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages a new ledger entry inside the transaction.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(transactionToRecord(txn))
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	t.Put(collectionTransactions, txn.ID, raw)
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	raw, ok := r.store.Get(collectionTransactions, id)
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	var rec transactionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return recordToTransaction(rec), nil
}

// GetByReference retrieves every transaction sharing a reference number. A
// completed transfer always yields exactly two, one per leg.
func (r *TransactionRepository) GetByReference(_ context.Context, referenceNumber string) ([]*domain.Transaction, error) {
	var matched []*domain.Transaction
	for raw := range r.store.All(collectionTransactions) {
		var rec transactionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		if rec.ReferenceNumber == referenceNumber {
			matched = append(matched, recordToTransaction(rec))
		}
	}
	return matched, nil
}

// ListByAccount lists an account's transactions newest first.
func (r *TransactionRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	var matched []*domain.Transaction
	for raw := range r.store.All(collectionTransactions) {
		var rec transactionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		if rec.AccountID == accountID {
			matched = append(matched, recordToTransaction(rec))
		}
	}

	// Insertion order is oldest first; reverse for newest-first paging.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}
