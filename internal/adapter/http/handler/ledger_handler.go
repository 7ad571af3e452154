package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency scans one partition's running totals against recomputed
// prefix sums. A divergent partition answers 409 with the first bad row.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	p, ok := partitionFromQuery(r, storeID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid partition", "stream must be cash or stock; stock requires product_id")
		return
	}

	report, err := h.ledgerUC.CheckConsistency(r.Context(), p)
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, dto.ConsistencyResponseFromReport(report))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponseFromReport(report))
}
