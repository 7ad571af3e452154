package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

type ledgerServiceStub struct {
	checkFn func(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error) {
	return s.checkFn(ctx, p)
}

func TestLedgerHandler_CheckConsistency_Consistent(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		checkFn: func(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error) {
			if p != domain.CashPartition("s1") {
				t.Fatalf("unexpected partition: %+v", p)
			}
			return &usecase.ConsistencyReport{Partition: p, Checked: 3, Consistent: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.CheckConsistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Consistent || resp.Checked != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_CheckConsistency_Divergent(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		checkFn: func(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error) {
			return &usecase.ConsistencyReport{
				Partition:   p,
				Checked:     2,
				Consistent:  false,
				FirstBadID:  7,
				ExpectedSum: decimal.NewFromInt(70),
				RecordedSum: decimal.NewFromInt(999),
			}, usecase.ErrInconsistentLedger
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.CheckConsistency(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ConsistencyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Consistent || resp.FirstBadID != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ExpectedSum == nil || !resp.ExpectedSum.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected expected sum: %v", resp.ExpectedSum)
	}
}

func TestLedgerHandler_CheckConsistency_BadPartition(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		checkFn: func(ctx context.Context, p domain.Partition) (*usecase.ConsistencyReport, error) {
			t.Fatal("CheckConsistency should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ledger/consistency?stream=stock", nil)
	req = setChiURLParams(req, map[string]string{"storeID": "s1"})
	rec := httptest.NewRecorder()

	handler.CheckConsistency(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
