package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	ComputeProfit(ctx context.Context, input usecase.ComputeProfitInput) (*domain.ProfitReport, error)
	TopProducts(ctx context.Context, input usecase.TopProductsInput) ([]*domain.ProductProfit, error)
}

// ReportHandler handles profit report HTTP requests.
type ReportHandler struct {
	profitUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(profitUC ReportService) *ReportHandler {
	return &ReportHandler{profitUC: profitUC}
}

// Profit runs the FIFO profit report for one product over a window.
func (h *ReportHandler) Profit(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing product_id parameter", "")
		return
	}

	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	report, err := h.profitUC.ComputeProfit(r.Context(), usecase.ComputeProfitInput{
		StoreID:   storeID,
		ProductID: productID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute profit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfitReportResponseFromDomain(report))
}

// TopProducts ranks products sold in a window by total profit.
func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}

	rows, err := h.profitUC.TopProducts(r.Context(), usecase.TopProductsInput{
		StoreID: storeID,
		Start:   start,
		End:     end,
		Limit:   parseIntQuery(r, "limit", 10),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to rank products", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductProfitsResponseFromDomain(rows))
}

func parseWindow(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	startPtr, err := parseTimeQuery(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start parameter", err.Error())
		return
	}
	endPtr, err := parseTimeQuery(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end parameter", err.Error())
		return
	}
	if startPtr == nil || endPtr == nil {
		writeError(w, http.StatusBadRequest, "missing window parameters", "start and end must be RFC 3339 timestamps")
		return
	}
	return *startPtr, *endPtr, true
}
