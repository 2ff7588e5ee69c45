package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/usecase"
	"github.com/finvault/bankd/internal/usecase/mocks"
)

type entryFixture struct {
	accRepo *mocks.MockAccountRepository
	txnRepo *mocks.MockTransactionRepository
	uc      *usecase.TransactionUseCase
}

func newEntryFixture() *entryFixture {
	accRepo := mocks.NewMockAccountRepository()
	txnRepo := mocks.NewMockTransactionRepository()
	ledger := usecase.NewLedgerUseCase(accRepo, txnRepo, mocks.NewMockIDGenerator())

	return &entryFixture{
		accRepo: accRepo,
		txnRepo: txnRepo,
		uc:      usecase.NewTransactionUseCase(mocks.NewMockTransactionManager(), accRepo, txnRepo, ledger, mocks.NewMockReferenceGenerator()),
	}
}

func (f *entryFixture) addAccount(id string, balance int64) {
	f.accRepo.Create(context.Background(), &domain.Account{
		ID:      id,
		UserID:  "user-1",
		Balance: decimal.NewFromInt(balance),
		Status:  domain.AccountStatusActive,
	})
}

func TestTransactionUseCase_CreateEntry(t *testing.T) {
	tests := []struct {
		name        string
		entryType   domain.TransactionType
		amount      int64
		wantAmount  int64
		wantBalance int64
	}{
		{"credit keeps sign", domain.TransactionTypeCredit, 40, 40, 140},
		{"debit flips sign", domain.TransactionTypeDebit, 40, -40, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEntryFixture()
			f.addAccount("acc-1", 100)

			result, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
				AccountID: "acc-1",
				Amount:    decimal.NewFromInt(tt.amount),
				Type:      tt.entryType,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !result.Transaction.Amount.Equal(decimal.NewFromInt(tt.wantAmount)) {
				t.Errorf("expected recorded amount %d, got %s", tt.wantAmount, result.Transaction.Amount)
			}
			if !result.NewBalance.Equal(decimal.NewFromInt(tt.wantBalance)) {
				t.Errorf("expected balance %d, got %s", tt.wantBalance, result.NewBalance)
			}
			if !result.Transaction.RunningBalance.Equal(result.NewBalance) {
				t.Errorf("expected running balance to match new balance")
			}
		})
	}
}

func TestTransactionUseCase_CreateEntry_Failures(t *testing.T) {
	f := newEntryFixture()
	f.addAccount("acc-1", 100)

	_, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10),
		Type:      domain.TransactionTypeDeposit,
	})
	if !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
	}

	_, err = f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(500),
		Type:      domain.TransactionTypeDebit,
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if legs := f.txnRepo.All(); len(legs) != 0 {
		t.Errorf("expected no ledger entries after failures, got %d", len(legs))
	}

	account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance unchanged at 100, got %s", account.Balance)
	}
}

func TestTransactionUseCase_GetByReference(t *testing.T) {
	f := newEntryFixture()
	f.addAccount("acc-1", 100)
	f.addAccount("acc-2", 100)

	for _, accountID := range []string{"acc-1", "acc-2"} {
		f.txnRepo.Create(context.Background(), nil, &domain.Transaction{
			ID:              "txn-" + accountID,
			AccountID:       accountID,
			ReferenceNumber: "TRF-000001",
		})
	}

	matched, err := f.uc.GetByReference(context.Background(), "TRF-000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("expected 2 correlated entries, got %d", len(matched))
	}
}

func TestTransactionUseCase_ListByUser(t *testing.T) {
	f := newEntryFixture()
	f.addAccount("acc-1", 100)
	f.addAccount("acc-2", 100)

	for i := 0; i < 2; i++ {
		if _, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(5),
			Type:      domain.TransactionTypeCredit,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		AccountID: "acc-2",
		Amount:    decimal.NewFromInt(5),
		Type:      domain.TransactionTypeCredit,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := f.uc.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}
}
