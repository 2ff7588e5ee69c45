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

type accountRecord struct {
	AccountID      string          `json:"account_id"`
	AccountNumber  string          `json:"account_number"`
	UserID         string          `json:"user_id"`
	AccountType    string          `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func accountToRecord(a *domain.Account) accountRecord {
	return accountRecord{
		AccountID:      a.ID,
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

func recordToAccount(r accountRecord) *domain.Account {
	return &domain.Account{
		ID:             r.AccountID,
		AccountNumber:  r.AccountNumber,
		UserID:         r.UserID,
		Type:           domain.AccountType(r.AccountType),
		Balance:        r.Balance,
		OpeningBalance: r.OpeningBalance,
		Status:         domain.AccountStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// AccountRepository is the file-store implementation of
// usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create persists a new account.
func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	raw, err := json.Marshal(accountToRecord(account))
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return r.store.PutNow(collectionAccounts, account.ID, raw)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	raw, ok := r.store.Get(collectionAccounts, id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return decodeAccount(raw)
}

// GetByIDForUpdate retrieves an account with its per-record lock held for the
// duration of the transaction.
func (r *AccountRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	t.LockKeys(collectionAccounts, []string{id})

	raw, ok := t.Get(collectionAccounts, id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return decodeAccount(raw)
}

// GetByIDsForUpdate locks and retrieves multiple accounts. Locks are taken
// in sorted key order; callers sort IDs the same way so concurrent transfers
// over the same pair cannot deadlock. Missing IDs are skipped.
func (r *AccountRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	t.LockKeys(collectionAccounts, ids)

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		raw, ok := t.Get(collectionAccounts, id)
		if !ok {
			continue
		}
		account, err := decodeAccount(raw)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	for raw := range r.store.All(collectionAccounts) {
		var rec accountRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		if rec.AccountNumber == accountNumber {
			return recordToAccount(rec), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// ListByUser lists all accounts owned by a user.
func (r *AccountRepository) ListByUser(_ context.Context, userID string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for raw := range r.store.All(collectionAccounts) {
		var rec accountRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		if rec.UserID == userID {
			accounts = append(accounts, recordToAccount(rec))
		}
	}
	return accounts, nil
}

// UpdateBalance stages a balance update inside the transaction.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	t.LockKeys(collectionAccounts, []string{id})

	raw, ok := t.Get(collectionAccounts, id)
	if !ok {
		return domain.ErrAccountNotFound
	}

	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode account: %w", err)
	}

	rec.Balance = balance
	rec.UpdatedAt = updatedAt

	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	t.Put(collectionAccounts, id, updated)
	return nil
}

// UpdateStatus stages a status update inside the transaction.
func (r *AccountRepository) UpdateStatus(_ context.Context, tx usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	t.LockKeys(collectionAccounts, []string{id})

	raw, ok := t.Get(collectionAccounts, id)
	if !ok {
		return domain.ErrAccountNotFound
	}

	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode account: %w", err)
	}

	rec.Status = string(status)
	rec.UpdatedAt = updatedAt

	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	t.Put(collectionAccounts, id, updated)
	return nil
}

func decodeAccount(raw json.RawMessage) (*domain.Account, error) {
	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return recordToAccount(rec), nil
}
