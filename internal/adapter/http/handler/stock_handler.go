package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// StockService defines the behavior needed by StockHandler.
type StockService interface {
	CurrentQuantity(ctx context.Context, storeID, productID string) (decimal.Decimal, error)
	ListLevels(ctx context.Context, input usecase.ListLevelsInput) ([]*domain.StockLevel, error)
	RecordAdjustment(ctx context.Context, input usecase.RecordStockAdjustmentInput) (*domain.LedgerEntry, error)
	RecordReset(ctx context.Context, input usecase.RecordResetInput) (*domain.LedgerEntry, error)
}

// StockHandler handles stock-stream HTTP requests.
type StockHandler struct {
	stockUC StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockUC StockService) *StockHandler {
	return &StockHandler{stockUC: stockUC}
}

// RecordAdjustment records a manual stock correction.
func (h *StockHandler) RecordAdjustment(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.stockUC.RecordAdjustment(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record stock adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResponseFromDomain(entry))
}

// RecordReset rebaselines a product to a counted quantity.
func (h *StockHandler) RecordReset(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	var req dto.StockResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.stockUC.RecordReset(r.Context(), req.ToUseCaseInput(storeID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record stock reset", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResponseFromDomain(entry))
}

// Get returns the current on-hand quantity for one product.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	productID := chi.URLParam(r, "productID")

	quantity, err := h.stockUC.CurrentQuantity(r.Context(), storeID, productID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read stock level", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuantityResponse{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

// List lists stock levels for a store.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	levels, err := h.stockUC.ListLevels(r.Context(), usecase.ListLevelsInput{
		StoreID: storeID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list stock levels", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StockLevelsResponseFromDomain(levels))
}
