package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/bankd/internal/adapter/http/dto"
	"github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/usecase"
)

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	accountUC  *usecase.AccountUseCase
	retrier    usecase.Retrier
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase, accountUC *usecase.AccountUseCase, retrier usecase.Retrier) *TransferHandler {
	return &TransferHandler{
		transferUC: transferUC,
		accountUC:  accountUC,
		retrier:    retrier,
	}
}

// Create creates a new transfer from one of the authenticated user's
// accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := h.accountUC.GetAccountForUser(r.Context(), req.FromAccountID, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	var result *usecase.TransferResult
	err := h.retrier.Retry(r.Context(), func() error {
		var err error
		result, err = h.transferUC.CreateTransfer(r.Context(), req.ToUseCaseInput())
		return err
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferResultFromUseCase(result))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transfer", err.Error())
		return
	}

	// The caller must own one side of the transfer.
	if _, err := h.accountUC.GetAccountForUser(r.Context(), transfer.FromAccountID, user.ID); err != nil {
		if _, err := h.accountUC.GetAccountForUser(r.Context(), transfer.ToAccountID, user.ID); err != nil {
			writeError(w, mapDomainError(err), "failed to get transfer", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListByAccount lists transfers for an account.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if _, err := h.accountUC.GetAccountForUser(r.Context(), accountID, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transfers, err := h.transferUC.ListTransfersByAccount(r.Context(), usecase.ListTransfersByAccountInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// ListByUser lists transfers across the authenticated user's accounts.
func (h *TransferHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transfers, err := h.transferUC.ListTransfersByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}
