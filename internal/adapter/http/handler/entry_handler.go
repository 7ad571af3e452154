package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	GetEntry(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
	HistoricalBalance(ctx context.Context, p domain.Partition, at time.Time) (decimal.Decimal, error)
	DeleteEntry(ctx context.Context, storeID string, id int64) error
}

// EntryHandler handles raw ledger entry HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// partitionFromQuery resolves the partition addressed by stream and
// product_id query parameters. The stream defaults to cash.
func partitionFromQuery(r *http.Request, storeID string) (domain.Partition, bool) {
	stream := domain.Stream(r.URL.Query().Get("stream"))
	if stream == "" {
		stream = domain.StreamCash
	}
	productID := r.URL.Query().Get("product_id")

	switch stream {
	case domain.StreamCash:
		if productID != "" {
			return domain.Partition{}, false
		}
		return domain.CashPartition(storeID), true
	case domain.StreamStock:
		if productID == "" {
			return domain.Partition{}, false
		}
		return domain.StockPartition(storeID, productID), true
	default:
		return domain.Partition{}, false
	}
}

// Get retrieves a single entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID", err.Error())
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), storeID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryResponseFromDomain(entry))
}

// List lists entries of one partition in order-key order.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	p, ok := partitionFromQuery(r, storeID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid partition", "stream must be cash or stock; stock requires product_id")
		return
	}

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		Partition: p,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesResponseFromDomain(entries))
}

// Balance returns the partition balance at a point in time.
func (h *EntryHandler) Balance(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	p, ok := partitionFromQuery(r, storeID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid partition", "stream must be cash or stock; stock requires product_id")
		return
	}

	at, err := parseTimeQuery(r, "at")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at parameter", err.Error())
		return
	}
	if at == nil {
		writeError(w, http.StatusBadRequest, "missing at parameter", "at must be an RFC 3339 timestamp")
		return
	}

	balance, err := h.entryUC.HistoricalBalance(r.Context(), p, *at)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		StoreID: storeID,
		Balance: balance,
		AsOf:    at,
	})
}

// Delete removes an entry and repairs the totals behind it.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	id, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID", err.Error())
		return
	}

	if err := h.entryUC.DeleteEntry(r.Context(), storeID, id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete entry", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
