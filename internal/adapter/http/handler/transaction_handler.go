package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/bankd/internal/adapter/http/dto"
	"github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/usecase"
)

// TransactionHandler handles ledger entry HTTP requests.
type TransactionHandler struct {
	txnUC     *usecase.TransactionUseCase
	accountUC *usecase.AccountUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnUC *usecase.TransactionUseCase, accountUC *usecase.AccountUseCase) *TransactionHandler {
	return &TransactionHandler{txnUC: txnUC, accountUC: accountUC}
}

// Create records a direct debit or credit entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.accountUC.GetAccountForUser(r.Context(), req.AccountID, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	result, err := h.txnUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResultResponse{
		Transaction: dto.TransactionFromDomain(result.Transaction),
		NewBalance:  result.NewBalance,
	})
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.txnUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	if _, err := h.accountUC.GetAccountForUser(r.Context(), txn.AccountID, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// GetByReference retrieves all transactions correlated by a reference number.
func (h *TransactionHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeError(w, http.StatusBadRequest, "missing reference number", "")
		return
	}

	transactions, err := h.txnUC.GetByReference(r.Context(), reference)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// ListByUser lists transactions across the authenticated user's accounts.
func (h *TransactionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transactions, err := h.txnUC.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
