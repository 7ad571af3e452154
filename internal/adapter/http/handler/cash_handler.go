package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// CashService defines the behavior needed by CashHandler.
type CashService interface {
	RecordAdjustment(ctx context.Context, input usecase.RecordAdjustmentInput) (*domain.LedgerEntry, error)
	RecordSalary(ctx context.Context, input usecase.RecordSalaryInput) (*domain.LedgerEntry, error)
	RecordInstallment(ctx context.Context, input usecase.RecordInstallmentInput) (*domain.LedgerEntry, error)
	Balance(ctx context.Context, storeID string, asOf *time.Time) (decimal.Decimal, error)
}

// CashHandler handles cash-stream HTTP requests.
type CashHandler struct {
	cashUC CashService
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(cashUC CashService) *CashHandler {
	return &CashHandler{cashUC: cashUC}
}

// RecordAdjustment records a manual cash correction.
func (h *CashHandler) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.CashAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.cashUC.RecordAdjustment(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResponseFromDomain(entry))
}

// RecordSalary records a salary payment netted from its components.
func (h *CashHandler) RecordSalary(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.SalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.cashUC.RecordSalary(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record salary", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResponseFromDomain(entry))
}

// RecordInstallment records an installment payment linked to a bill.
func (h *CashHandler) RecordInstallment(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.InstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.cashUC.RecordInstallment(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record installment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResponseFromDomain(entry))
}

// Balance returns the cash balance, optionally as of a point in time.
func (h *CashHandler) Balance(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	asOf, err := parseTimeQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of parameter", err.Error())
		return
	}

	balance, err := h.cashUC.Balance(r.Context(), storeID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		StoreID: storeID,
		Balance: balance,
		AsOf:    asOf,
	})
}
