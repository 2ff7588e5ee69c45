package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finvault/bankd/internal/domain"
)

type beneficiaryRecord struct {
	BeneficiaryID string    `json:"beneficiary_id"`
	UserID        string    `json:"user_id"`
	Nickname      string    `json:"nickname"`
	AccountNumber string    `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

// BeneficiaryRepository is the file-store implementation of
// usecase.BeneficiaryRepository.
type BeneficiaryRepository struct {
	store *Store
}

// NewBeneficiaryRepository creates a new BeneficiaryRepository.
func NewBeneficiaryRepository(store *Store) *BeneficiaryRepository {
	return &BeneficiaryRepository{store: store}
}

// Create persists a new beneficiary.
func (r *BeneficiaryRepository) Create(_ context.Context, beneficiary *domain.Beneficiary) error {
	raw, err := json.Marshal(beneficiaryRecord{
		BeneficiaryID: beneficiary.ID,
		UserID:        beneficiary.UserID,
		Nickname:      beneficiary.Nickname,
		AccountNumber: beneficiary.AccountNumber,
		CreatedAt:     beneficiary.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode beneficiary: %w", err)
	}
	return r.store.PutNow(collectionBeneficiaries, beneficiary.ID, raw)
}

// GetByID retrieves a beneficiary by ID.
func (r *BeneficiaryRepository) GetByID(_ context.Context, id string) (*domain.Beneficiary, error) {
	raw, ok := r.store.Get(collectionBeneficiaries, id)
	if !ok {
		return nil, domain.ErrBeneficiaryNotFound
	}

	var rec beneficiaryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode beneficiary: %w", err)
	}
	return &domain.Beneficiary{
		ID:            rec.BeneficiaryID,
		UserID:        rec.UserID,
		Nickname:      rec.Nickname,
		AccountNumber: rec.AccountNumber,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

// ListByUser lists a user's beneficiaries.
func (r *BeneficiaryRepository) ListByUser(_ context.Context, userID string) ([]*domain.Beneficiary, error) {
	var list []*domain.Beneficiary
	for raw := range r.store.All(collectionBeneficiaries) {
		var rec beneficiaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode beneficiary: %w", err)
		}
		if rec.UserID == userID {
			list = append(list, &domain.Beneficiary{
				ID:            rec.BeneficiaryID,
				UserID:        rec.UserID,
				Nickname:      rec.Nickname,
				AccountNumber: rec.AccountNumber,
				CreatedAt:     rec.CreatedAt,
			})
		}
	}
	return list, nil
}

// Delete removes a beneficiary.
func (r *BeneficiaryRepository) Delete(_ context.Context, id string) error {
	if err := r.store.DeleteNow(collectionBeneficiaries, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrBeneficiaryNotFound
		}
		return err
	}
	return nil
}
