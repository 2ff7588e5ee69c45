package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
	"github.com/finvault/bankd/internal/usecase/mocks"
)

type accountFixture struct {
	accRepo *mocks.MockAccountRepository
	txnRepo *mocks.MockTransactionRepository
	uc      *usecase.AccountUseCase
}

func newAccountFixture() *accountFixture {
	accRepo := mocks.NewMockAccountRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	idGen := mocks.NewMockIDGenerator()
	refGen := mocks.NewMockReferenceGenerator()
	ledger := usecase.NewLedgerUseCase(accRepo, txnRepo, idGen)

	return &accountFixture{
		accRepo: accRepo,
		txnRepo: txnRepo,
		uc:      usecase.NewAccountUseCase(mocks.NewMockTransactionManager(), accRepo, ledger, idGen, refGen),
	}
}

func TestAccountUseCase_OpenAccount(t *testing.T) {
	f := newAccountFixture()

	account, err := f.uc.OpenAccount(context.Background(), usecase.OpenAccountInput{
		UserID:         "user-1",
		Type:           domain.AccountTypeSavings,
		OpeningBalance: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Status != domain.AccountStatusActive {
		t.Errorf("expected active account, got %s", account.Status)
	}
	if !account.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected balance 500, got %s", account.Balance)
	}
	if !account.OpeningBalance.Equal(account.Balance) {
		t.Errorf("expected opening balance to equal balance")
	}
	if !strings.HasPrefix(account.AccountNumber, "ACC-") {
		t.Errorf("expected ACC- account number, got %s", account.AccountNumber)
	}
}

func TestAccountUseCase_OpenAccount_Invalid(t *testing.T) {
	f := newAccountFixture()

	_, err := f.uc.OpenAccount(context.Background(), usecase.OpenAccountInput{
		UserID: "user-1",
		Type:   "brokerage",
	})
	if !errors.Is(err, domain.ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}

	_, err = f.uc.OpenAccount(context.Background(), usecase.OpenAccountInput{
		UserID:         "user-1",
		Type:           domain.AccountTypeChecking,
		OpeningBalance: decimal.NewFromInt(-10),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAccountUseCase_GetAccountForUser(t *testing.T) {
	f := newAccountFixture()
	f.accRepo.Create(context.Background(), &domain.Account{
		ID:     "acc-1",
		UserID: "user-1",
		Status: domain.AccountStatusActive,
	})

	if _, err := f.uc.GetAccountForUser(context.Background(), "acc-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.uc.GetAccountForUser(context.Background(), "acc-1", "user-2"); !errors.Is(err, domain.ErrNotAccountOwner) {
		t.Fatalf("expected ErrNotAccountOwner, got %v", err)
	}

	if _, err := f.uc.GetAccountForUser(context.Background(), "acc-404", "user-1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_DeactivateAccount(t *testing.T) {
	f := newAccountFixture()
	f.accRepo.Create(context.Background(), &domain.Account{
		ID:     "acc-1",
		UserID: "user-1",
		Status: domain.AccountStatusActive,
	})

	account, err := f.uc.DeactivateAccount(context.Background(), "acc-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Status != domain.AccountStatusInactive {
		t.Errorf("expected inactive, got %s", account.Status)
	}

	stored, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if stored.Status != domain.AccountStatusInactive {
		t.Errorf("expected stored account inactive, got %s", stored.Status)
	}
}

func TestAccountUseCase_Deposit(t *testing.T) {
	f := newAccountFixture()
	f.accRepo.Create(context.Background(), &domain.Account{
		ID:      "acc-1",
		UserID:  "user-1",
		Balance: decimal.NewFromInt(10),
		Status:  domain.AccountStatusActive,
	})

	result, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(90),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.NewBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", result.NewBalance)
	}
	if result.Transaction.Type != domain.TransactionTypeDeposit {
		t.Errorf("expected deposit entry, got %s", result.Transaction.Type)
	}
	if result.Transaction.Description != "Deposit" {
		t.Errorf("expected default description, got %q", result.Transaction.Description)
	}
	if !strings.HasPrefix(result.Transaction.ReferenceNumber, "TXN-") {
		t.Errorf("expected TXN- reference, got %s", result.Transaction.ReferenceNumber)
	}
}

func TestAccountUseCase_Deposit_Failures(t *testing.T) {
	f := newAccountFixture()
	f.accRepo.Create(context.Background(), &domain.Account{
		ID:      "acc-frozen",
		UserID:  "user-1",
		Balance: decimal.NewFromInt(10),
		Status:  domain.AccountStatusInactive,
	})

	_, err := f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-frozen",
		Amount:    decimal.NewFromInt(10),
	})
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}

	_, err = f.uc.Deposit(context.Background(), usecase.DepositInput{
		AccountID: "acc-frozen",
		Amount:    decimal.Zero,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	if legs := f.txnRepo.All(); len(legs) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(legs))
	}
}
