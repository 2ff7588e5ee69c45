package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finvault/bankd/internal/adapter/http/dto"
	"github.com/finvault/bankd/internal/adapter/http/handler"
	apimiddleware "github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/adapter/repository/file"
	"github.com/finvault/bankd/internal/infrastructure/auth"
	"github.com/finvault/bankd/internal/infrastructure/idgen"
	"github.com/finvault/bankd/internal/usecase"
	"github.com/finvault/bankd/internal/usecase/mocks"
)

// newTestRouter wires the full stack over a file store in a temp directory.
func newTestRouter(t *testing.T, opts ...func(*RouterConfig)) http.Handler {
	t.Helper()

	store, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	txManager := file.NewTxManager(store)
	accountRepo := file.NewAccountRepository(store)
	txnRepo := file.NewTransactionRepository(store)
	transferRepo := file.NewTransferRepository(store)
	userRepo := file.NewUserRepository(store)
	beneficiaryRepo := file.NewBeneficiaryRepository(store)

	idGen := idgen.NewULIDGenerator()
	refGen := idgen.NewReferenceGenerator()

	ledgerUC := usecase.NewLedgerUseCase(accountRepo, txnRepo, idGen)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, ledgerUC, idGen, refGen)
	txnUC := usecase.NewTransactionUseCase(txManager, accountRepo, txnRepo, ledgerUC, refGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, beneficiaryRepo, ledgerUC, idGen, refGen, nil, zerolog.Nop())
	userUC := usecase.NewUserUseCase(userRepo, nil, 0, idGen)
	beneficiaryUC := usecase.NewBeneficiaryUseCase(beneficiaryRepo, accountRepo, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, accountRepo, txnRepo, transferRepo, zerolog.Nop())

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	cfg := RouterConfig{
		UserHandler:           handler.NewUserHandler(userUC, jwtManager),
		AccountHandler:        handler.NewAccountHandler(accountUC, txnUC),
		TransactionHandler:    handler.NewTransactionHandler(txnUC, accountUC),
		TransferHandler:       handler.NewTransferHandler(transferUC, accountUC, usecase.NoopRetrier{}),
		BeneficiaryHandler:    handler.NewBeneficiaryHandler(beneficiaryUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC, accountUC),
		HealthHandler:         handler.NewHealthHandler(nil, nil),
		JWTManager:            jwtManager,
		Logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return NewRouter(cfg)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email:     email,
		Password:  "Sup3rSecret",
		FirstName: "Test",
		LastName:  "User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email:    email,
		Password: "Sup3rSecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	var authResp dto.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &authResp); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}
	return authResp.Token
}

func openAccount(t *testing.T, router http.Handler, token string, opening int64) dto.AccountResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/accounts/", token, dto.OpenAccountRequest{
		AccountType:    "checking",
		OpeningBalance: decimal.NewFromInt(opening),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open account failed with %d: %s", rec.Code, rec.Body.String())
	}

	var account dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}
	return account
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to return 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_RejectsUnauthenticatedRequests(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/accounts/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/accounts/", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestRouter_TransferFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "owner@example.com")

	from := openAccount(t, router, token, 0)
	to := openAccount(t, router, token, 0)

	// Fund the source account.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/accounts/"+from.ID+"/deposit", token, dto.DepositRequest{
		Amount: decimal.NewFromInt(100),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/transfers/", token, dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(40),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("transfer failed with %d: %s", rec.Code, rec.Body.String())
	}

	var result dto.TransferResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode transfer result: %v", err)
	}
	if !result.FromBalance.Equal(decimal.NewFromInt(60)) || !result.ToBalance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected balances 60/40, got %s/%s", result.FromBalance, result.ToBalance)
	}

	// Both legs are retrievable by the shared reference number.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/transactions/reference/"+result.Transfer.ReferenceNumber, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reference lookup failed with %d: %s", rec.Code, rec.Body.String())
	}
	var legs []dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &legs); err != nil {
		t.Fatalf("failed to decode legs: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}

	// The invariant holds for both accounts.
	for _, id := range []string{from.ID, to.ID} {
		rec = doJSON(t, router, http.MethodGet, "/api/v1/accounts/"+id+"/reconciliation", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("reconciliation failed with %d: %s", rec.Code, rec.Body.String())
		}
		var recon dto.ReconciliationResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &recon); err != nil {
			t.Fatalf("failed to decode reconciliation: %v", err)
		}
		if !recon.IsReconciled {
			t.Fatalf("expected account %s to reconcile, difference %s", id, recon.Difference)
		}
	}
}

func TestRouter_TransferErrorStatuses(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "owner@example.com")

	from := openAccount(t, router, token, 10)
	to := openAccount(t, router, token, 0)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/transfers/", token, dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(500),
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for insufficient funds, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/transfers/", token, dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   from.ID,
		Amount:        decimal.NewFromInt(5),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for same-account transfer, got %d", rec.Code)
	}

	// A stranger cannot move money out of someone else's account.
	strangerToken := registerAndLogin(t, router, "stranger@example.com")
	rec = doJSON(t, router, http.MethodPost, "/api/v1/transfers/", strangerToken, dto.CreateTransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(5),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign account, got %d", rec.Code)
	}
}

func TestRouter_IdempotentDepositReplays(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
		cfg.IdempotencyTTL = time.Hour
	})
	token := registerAndLogin(t, router, "owner@example.com")
	account := openAccount(t, router, token, 0)

	deposit := func() *httptest.ResponseRecorder {
		data, _ := json.Marshal(dto.DepositRequest{Amount: decimal.NewFromInt(50)})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/"+account.ID+"/deposit", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "dep-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := deposit()
	if first.Code != http.StatusCreated {
		t.Fatalf("deposit failed with %d: %s", first.Code, first.Body.String())
	}

	second := deposit()
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected replayed response, got status %d", second.Code)
	}

	// The deposit applied once: balance is 50, not 100.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID, token, nil)
	var got dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode account: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected balance 50 after replay, got %s", got.Balance)
	}
}

func TestRouter_RateLimiterThrottles(t *testing.T) {
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimitRPS = 1
		cfg.RateLimitBurst = 1
	})

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestRouter_RegistersKeyRoutes(t *testing.T) {
	router := newTestRouter(t)

	chiRouter, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Router")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRouter, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/users/me/",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/accounts/{id}/deposit",
		"GET /api/v1/accounts/{id}/reconciliation",
		"POST /api/v1/transfers/",
		"GET /api/v1/transfers/{id}",
		"POST /api/v1/transactions/",
		"GET /api/v1/transactions/reference/{reference}",
		"POST /api/v1/beneficiaries/",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}
