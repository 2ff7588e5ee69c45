package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/bankd/internal/adapter/http/dto"
	"github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/usecase"
)

// ReconciliationHandler exposes the balance invariant checks.
type ReconciliationHandler struct {
	reconciliationUC *usecase.ReconciliationUseCase
	accountUC        *usecase.AccountUseCase
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC *usecase.ReconciliationUseCase, accountUC *usecase.AccountUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationUC: reconciliationUC,
		accountUC:        accountUC,
	}
}

// ReconcileAccount recomputes one account's balance from its ledger.
func (h *ReconciliationHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if _, err := h.accountUC.GetAccountForUser(r.Context(), id, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// ReconcileUser checks every account owned by the authenticated user.
func (h *ReconciliationHandler) ReconcileUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	report, err := h.reconciliationUC.ReconcileUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
