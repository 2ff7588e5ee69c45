package usecase

import (
	"context"
	"time"

	"github.com/finvault/bankd/internal/domain"
)

// BeneficiaryUseCase handles saved transfer destinations.
type BeneficiaryUseCase struct {
	beneficiaryRepo BeneficiaryRepository
	accountRepo     AccountRepository
	idGen           IDGenerator
}

// NewBeneficiaryUseCase creates a new BeneficiaryUseCase.
func NewBeneficiaryUseCase(beneficiaryRepo BeneficiaryRepository, accountRepo AccountRepository, idGen IDGenerator) *BeneficiaryUseCase {
	return &BeneficiaryUseCase{
		beneficiaryRepo: beneficiaryRepo,
		accountRepo:     accountRepo,
		idGen:           idGen,
	}
}

// AddBeneficiaryInput represents input for saving a beneficiary.
type AddBeneficiaryInput struct {
	UserID        string
	Nickname      string
	AccountNumber string
}

// AddBeneficiary saves a destination after verifying the account number
// resolves to a real account.
func (uc *BeneficiaryUseCase) AddBeneficiary(ctx context.Context, input AddBeneficiaryInput) (*domain.Beneficiary, error) {
	if _, err := uc.accountRepo.GetByNumber(ctx, input.AccountNumber); err != nil {
		return nil, err
	}

	beneficiary := &domain.Beneficiary{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		Nickname:      input.Nickname,
		AccountNumber: input.AccountNumber,
		CreatedAt:     time.Now().UTC(),
	}

	if err := uc.beneficiaryRepo.Create(ctx, beneficiary); err != nil {
		return nil, err
	}

	return beneficiary, nil
}

// ListBeneficiaries lists a user's saved beneficiaries.
func (uc *BeneficiaryUseCase) ListBeneficiaries(ctx context.Context, userID string) ([]*domain.Beneficiary, error) {
	return uc.beneficiaryRepo.ListByUser(ctx, userID)
}

// RemoveBeneficiary deletes a beneficiary after an ownership check.
func (uc *BeneficiaryUseCase) RemoveBeneficiary(ctx context.Context, id, userID string) error {
	beneficiary, err := uc.beneficiaryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if beneficiary.UserID != userID {
		return domain.ErrBeneficiaryNotFound
	}

	return uc.beneficiaryRepo.Delete(ctx, id)
}
