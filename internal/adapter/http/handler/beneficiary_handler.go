package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/bankd/internal/adapter/http/dto"
	"github.com/finvault/bankd/internal/adapter/http/middleware"
	"github.com/finvault/bankd/internal/usecase"
)

// BeneficiaryHandler handles beneficiary HTTP requests.
type BeneficiaryHandler struct {
	beneficiaryUC *usecase.BeneficiaryUseCase
}

// NewBeneficiaryHandler creates a new BeneficiaryHandler.
func NewBeneficiaryHandler(beneficiaryUC *usecase.BeneficiaryUseCase) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaryUC: beneficiaryUC}
}

// Add saves a transfer destination for the authenticated user.
func (h *BeneficiaryHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddBeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	beneficiary, err := h.beneficiaryUC.AddBeneficiary(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add beneficiary", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BeneficiaryFromDomain(beneficiary))
}

// List lists the authenticated user's beneficiaries.
func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	beneficiaries, err := h.beneficiaryUC.ListBeneficiaries(r.Context(), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list beneficiaries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BeneficiariesFromDomain(beneficiaries))
}

// Remove deletes one of the authenticated user's beneficiaries.
func (h *BeneficiaryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing beneficiary ID", "")
		return
	}

	if err := h.beneficiaryUC.RemoveBeneficiary(r.Context(), id, user.ID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove beneficiary", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
