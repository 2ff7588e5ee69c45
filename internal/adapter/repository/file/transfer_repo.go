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

type transferRecord struct {
	TransferID      string          `json:"transfer_id"`
	FromAccountID   string          `json:"from_account_id"`
	ToAccountID     string          `json:"to_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransferDate    time.Time       `json:"transfer_date"`
	Status          string          `json:"status"`
	ReferenceNumber string          `json:"reference_number"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

func transferToRecord(t *domain.Transfer) transferRecord {
	return transferRecord{
		TransferID:      t.ID,
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

func recordToTransfer(r transferRecord) *domain.Transfer {
	return &domain.Transfer{
		ID:              r.TransferID,
		FromAccountID:   r.FromAccountID,
		ToAccountID:     r.ToAccountID,
		Amount:          r.Amount,
		TransferDate:    r.TransferDate,
		Status:          domain.TransferStatus(r.Status),
		ReferenceNumber: r.ReferenceNumber,
		CreatedAt:       r.CreatedAt,
		CompletedAt:     r.CompletedAt,
	}
}

// TransferRepository is the file-store implementation of
// usecase.TransferRepository.
type TransferRepository struct {
	store *Store
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

// Create stages a new transfer inside the transaction.
func (r *TransferRepository) Create(_ context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(transferToRecord(transfer))
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}
	t.Put(collectionTransfers, transfer.ID, raw)
	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(_ context.Context, id string) (*domain.Transfer, error) {
	raw, ok := r.store.Get(collectionTransfers, id)
	if !ok {
		return nil, domain.ErrTransferNotFound
	}

	var rec transferRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode transfer: %w", err)
	}
	return recordToTransfer(rec), nil
}

// ListByAccount lists transfers touching an account on either side, newest
// first.
func (r *TransferRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	var matched []*domain.Transfer
	for raw := range r.store.All(collectionTransfers) {
		var rec transferRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode transfer: %w", err)
		}
		if rec.FromAccountID == accountID || rec.ToAccountID == accountID {
			matched = append(matched, recordToTransfer(rec))
		}
	}

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

// ListByStatus lists transfers in a given status, oldest first.
func (r *TransferRepository) ListByStatus(_ context.Context, status domain.TransferStatus) ([]*domain.Transfer, error) {
	var matched []*domain.Transfer
	for raw := range r.store.All(collectionTransfers) {
		var rec transferRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode transfer: %w", err)
		}
		if rec.Status == string(status) {
			matched = append(matched, recordToTransfer(rec))
		}
	}
	return matched, nil
}

// UpdateStatus stages a status change inside the transaction.
func (r *TransferRepository) UpdateStatus(_ context.Context, tx usecase.Transaction, id string, status domain.TransferStatus, completedAt *time.Time) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	t.LockKeys(collectionTransfers, []string{id})

	raw, ok := t.Get(collectionTransfers, id)
	if !ok {
		return domain.ErrTransferNotFound
	}

	var rec transferRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode transfer: %w", err)
	}

	rec.Status = string(status)
	rec.CompletedAt = completedAt

	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}
	t.Put(collectionTransfers, id, updated)
	return nil
}
