package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// BillService defines the behavior needed by BillHandler.
type BillService interface {
	RecordBill(ctx context.Context, input usecase.RecordBillInput) (*domain.Bill, error)
	AmendBill(ctx context.Context, input usecase.AmendBillInput) (*domain.Bill, error)
	GetBill(ctx context.Context, storeID, id string) (*domain.Bill, error)
	ListBills(ctx context.Context, input usecase.ListBillsInput) ([]*domain.Bill, error)
}

// BillHandler handles bill-related HTTP requests.
type BillHandler struct {
	billUC BillService
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billUC BillService) *BillHandler {
	return &BillHandler{billUC: billUC}
}

// Record records a new bill with its stream side effects.
func (h *BillHandler) Record(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.RecordBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	bill, err := h.billUC.RecordBill(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record bill", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BillResponseFromDomain(bill))
}

// Amend replaces a bill's line items.
func (h *BillHandler) Amend(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	billID := chi.URLParam(r, "billID")

	var req dto.AmendBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	bill, err := h.billUC.AmendBill(r.Context(), req.ToUseCaseInput(storeID, billID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to amend bill", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BillResponseFromDomain(bill))
}

// Get retrieves a bill by ID.
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	billID := chi.URLParam(r, "billID")

	bill, err := h.billUC.GetBill(r.Context(), storeID, billID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get bill", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BillResponseFromDomain(bill))
}

// List lists bills for a store.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	bills, err := h.billUC.ListBills(r.Context(), usecase.ListBillsInput{
		StoreID: storeID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bills", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BillsResponseFromDomain(bills))
}
