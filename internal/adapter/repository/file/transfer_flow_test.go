package file_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/adapter/repository/file"
	"github.com/finvault/bankd/internal/domain"
	"github.com/finvault/bankd/internal/infrastructure/idgen"
	"github.com/finvault/bankd/internal/usecase"
)

type flowFixture struct {
	store      *file.Store
	accountUC  *usecase.AccountUseCase
	transferUC *usecase.TransferUseCase
	txnUC      *usecase.TransactionUseCase
}

func newFlowFixture(t *testing.T, dir string) *flowFixture {
	t.Helper()

	store, err := file.Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	txManager := file.NewTxManager(store)
	accountRepo := file.NewAccountRepository(store)
	txnRepo := file.NewTransactionRepository(store)
	transferRepo := file.NewTransferRepository(store)
	beneficiaryRepo := file.NewBeneficiaryRepository(store)

	idGen := idgen.NewULIDGenerator()
	refGen := idgen.NewReferenceGenerator()
	ledger := usecase.NewLedgerUseCase(accountRepo, txnRepo, idGen)

	return &flowFixture{
		store:      store,
		accountUC:  usecase.NewAccountUseCase(txManager, accountRepo, ledger, idGen, refGen),
		transferUC: usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, beneficiaryRepo, ledger, idGen, refGen, nil, zerolog.Nop()),
		txnUC:      usecase.NewTransactionUseCase(txManager, accountRepo, txnRepo, ledger, refGen),
	}
}

func (f *flowFixture) openAccount(t *testing.T, balance int64) *domain.Account {
	t.Helper()

	account, err := f.accountUC.OpenAccount(context.Background(), usecase.OpenAccountInput{
		UserID:         "user-1",
		Type:           domain.AccountTypeChecking,
		OpeningBalance: decimal.NewFromInt(balance),
	})
	if err != nil {
		t.Fatalf("failed to open account: %v", err)
	}
	return account
}

func TestTransferFlowEndToEnd(t *testing.T) {
	dir := t.TempDir()
	f := newFlowFixture(t, dir)

	from := f.openAccount(t, 100)
	to := f.openAccount(t, 0)

	result, err := f.transferUC.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: from.ID,
		Destination:   usecase.TransferDestination{AccountID: to.ID},
		Amount:        decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.FromBalance.Equal(decimal.NewFromInt(60)) || !result.ToBalance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected balances 60/40, got %s/%s", result.FromBalance, result.ToBalance)
	}

	legs, err := f.txnUC.GetByReference(context.Background(), result.Transfer.ReferenceNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 correlated legs, got %d", len(legs))
	}

	// Everything survives a process restart.
	g := newFlowFixture(t, dir)

	account, err := g.accountUC.GetAccount(context.Background(), from.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected reloaded balance 60, got %s", account.Balance)
	}

	transfer, err := g.transferUC.GetTransfer(context.Background(), result.Transfer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transfer.Status != domain.TransferStatusCompleted {
		t.Fatalf("expected completed transfer after reload, got %s", transfer.Status)
	}
}

func TestConcurrentTransfersDrainExactly(t *testing.T) {
	f := newFlowFixture(t, t.TempDir())

	from := f.openAccount(t, 100)
	to := f.openAccount(t, 0)

	// 20 concurrent attempts at 10 each against a balance of 100: exactly 10
	// must succeed and the rest must fail with insufficient funds.
	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.transferUC.CreateTransfer(context.Background(), usecase.CreateTransferInput{
				FromAccountID: from.ID,
				Destination:   usecase.TransferDestination{AccountID: to.ID},
				Amount:        decimal.NewFromInt(10),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful transfers, got %d", succeeded)
	}

	fromAfter, err := f.accountUC.GetAccount(context.Background(), from.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	toAfter, err := f.accountUC.GetAccount(context.Background(), to.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !fromAfter.Balance.IsZero() {
		t.Errorf("expected source drained to 0, got %s", fromAfter.Balance)
	}
	if !toAfter.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected destination at 100, got %s", toAfter.Balance)
	}
}

func TestOpposingTransfersDoNotDeadlock(t *testing.T) {
	f := newFlowFixture(t, t.TempDir())

	a := f.openAccount(t, 1000)
	b := f.openAccount(t, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.transferUC.CreateTransfer(context.Background(), usecase.CreateTransferInput{
				FromAccountID: a.ID,
				Destination:   usecase.TransferDestination{AccountID: b.ID},
				Amount:        decimal.NewFromInt(1),
			})
		}()
		go func() {
			defer wg.Done()
			f.transferUC.CreateTransfer(context.Background(), usecase.CreateTransferInput{
				FromAccountID: b.ID,
				Destination:   usecase.TransferDestination{AccountID: a.ID},
				Amount:        decimal.NewFromInt(1),
			})
		}()
	}
	wg.Wait()

	aAfter, _ := f.accountUC.GetAccount(context.Background(), a.ID)
	bAfter, _ := f.accountUC.GetAccount(context.Background(), b.ID)

	total := aAfter.Balance.Add(bAfter.Balance)
	if !total.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected total preserved at 2000, got %s", total)
	}
}
