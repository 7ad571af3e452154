package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

type entryServiceStub struct {
	getFn     func(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error)
	listFn    func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
	balanceFn func(ctx context.Context, p domain.Partition, at time.Time) (decimal.Decimal, error)
	deleteFn  func(ctx context.Context, storeID string, id int64) error
}

func (s *entryServiceStub) GetEntry(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error) {
	return s.getFn(ctx, storeID, id)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
	return s.listFn(ctx, input)
}

func (s *entryServiceStub) HistoricalBalance(ctx context.Context, p domain.Partition, at time.Time) (decimal.Decimal, error) {
	return s.balanceFn(ctx, p, at)
}

func (s *entryServiceStub) DeleteEntry(ctx context.Context, storeID string, id int64) error {
	return s.deleteFn(ctx, storeID, id)
}

func TestPartitionFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected domain.Partition
		ok       bool
	}{
		{"defaults to cash", "", domain.CashPartition("s1"), true},
		{"explicit cash", "stream=cash", domain.CashPartition("s1"), true},
		{"stock with product", "stream=stock&product_id=p1", domain.StockPartition("s1", "p1"), true},
		{"stock without product", "stream=stock", domain.Partition{}, false},
		{"cash with product", "stream=cash&product_id=p1", domain.Partition{}, false},
		{"unknown stream", "stream=loyalty", domain.Partition{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/entries?"+tt.query, nil)
			p, ok := partitionFromQuery(req, "s1")
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && p != tt.expected {
				t.Fatalf("expected %+v, got %+v", tt.expected, p)
			}
		})
	}
}

func TestEntryHandler_List_StockPartition(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
			want := domain.StockPartition("s1", "p1")
			if input.Partition != want || input.Limit != 10 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return []*domain.LedgerEntry{
				{ID: 1, StoreID: "s1", Stream: domain.StreamStock, ProductID: "p1", Kind: domain.KindSale},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries?stream=stock&product_id=p1&limit=10", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Stream != "stock" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestEntryHandler_List_BadPartition(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
			t.Fatal("ListEntries should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries?stream=stock", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntryHandler_Balance(t *testing.T) {
	at := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	handler := NewEntryHandler(&entryServiceStub{
		balanceFn: func(ctx context.Context, p domain.Partition, got time.Time) (decimal.Decimal, error) {
			if p != domain.CashPartition("s1") || !got.Equal(at) {
				t.Fatalf("unexpected args: %+v at %v", p, got)
			}
			return decimal.NewFromInt(70), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries/balance?at=2026-04-10T12:00:00Z", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70, got %s", resp.Balance)
	}
}

func TestEntryHandler_Balance_MissingAt(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		balanceFn: func(ctx context.Context, p domain.Partition, at time.Time) (decimal.Decimal, error) {
			t.Fatal("HistoricalBalance should not be called")
			return decimal.Zero, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/entries/balance", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEntryHandler_Delete(t *testing.T) {
	deleted := false
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, storeID string, id int64) error {
			if storeID != "s1" || id != 42 {
				t.Fatalf("unexpected args: %s %d", storeID, id)
			}
			deleted = true
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/entries/42", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1", "entryID": "42"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !deleted {
		t.Fatal("expected DeleteEntry to be called")
	}
}

func TestEntryHandler_Delete_NotFound(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, storeID string, id int64) error {
			return domain.ErrEntryNotFound
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/entries/42", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1", "entryID": "42"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEntryHandler_Delete_BadID(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, storeID string, id int64) error {
			t.Fatal("DeleteEntry should not be called")
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/entries/abc", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1", "entryID": "abc"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
