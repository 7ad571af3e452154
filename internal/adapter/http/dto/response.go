package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           int64           `json:"id"`
	StoreID      string          `json:"store_id"`
	Stream       string          `json:"stream"`
	ProductID    string          `json:"product_id,omitempty"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RunningTotal decimal.Decimal `json:"running_total"`
	Link         *string         `json:"link,omitempty"`
	Description  string          `json:"description,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// EntryResponseFromDomain converts a domain entry.
func EntryResponseFromDomain(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		StoreID:      e.StoreID,
		Stream:       string(e.Stream),
		ProductID:    e.ProductID,
		Kind:         string(e.Kind),
		Amount:       e.Amount,
		UnitPrice:    e.UnitPrice,
		RunningTotal: e.RunningTotal,
		Link:         e.Link,
		Description:  e.Description,
		OccurredAt:   e.OccurredAt,
		CreatedAt:    e.CreatedAt,
	}
}

// EntriesResponseFromDomain converts a slice of domain entries.
func EntriesResponseFromDomain(entries []*domain.LedgerEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponseFromDomain(e)
	}
	return out
}

// BillItemResponse represents one bill line item.
type BillItemResponse struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BillResponse represents a bill document in API responses.
type BillResponse struct {
	ID         string             `json:"id"`
	StoreID    string             `json:"store_id"`
	Kind       string             `json:"kind"`
	Total      decimal.Decimal    `json:"total"`
	Items      []BillItemResponse `json:"items"`
	OccurredAt time.Time          `json:"occurred_at"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// BillResponseFromDomain converts a domain bill.
func BillResponseFromDomain(b *domain.Bill) BillResponse {
	items := make([]BillItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BillItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return BillResponse{
		ID:         b.ID,
		StoreID:    b.StoreID,
		Kind:       string(b.Kind),
		Total:      b.Total,
		Items:      items,
		OccurredAt: b.OccurredAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// BillsResponseFromDomain converts a slice of domain bills.
func BillsResponseFromDomain(bills []*domain.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i, b := range bills {
		out[i] = BillResponseFromDomain(b)
	}
	return out
}

// StockLevelResponse represents one product's on-hand quantity.
type StockLevelResponse struct {
	StoreID   string          `json:"store_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockLevelResponseFromDomain converts a domain stock level.
func StockLevelResponseFromDomain(l *domain.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		StoreID:   l.StoreID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UpdatedAt: l.UpdatedAt,
	}
}

// StockLevelsResponseFromDomain converts a slice of domain stock levels.
func StockLevelsResponseFromDomain(levels []*domain.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = StockLevelResponseFromDomain(l)
	}
	return out
}

// BalanceResponse represents a cash balance read.
type BalanceResponse struct {
	StoreID string          `json:"store_id"`
	Balance decimal.Decimal `json:"balance"`
	AsOf    *time.Time      `json:"as_of,omitempty"`
}

// QuantityResponse represents a single product quantity read.
type QuantityResponse struct {
	StoreID   string          `json:"store_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// DailyProfitResponse aggregates profit for one calendar day.
type DailyProfitResponse struct {
	Day        string          `json:"day"`
	Profit     decimal.Decimal `json:"profit"`
	SalesValue decimal.Decimal `json:"sales_value"`
	UnitsSold  decimal.Decimal `json:"units_sold"`
}

// ProfitReportResponse represents a FIFO profit report.
type ProfitReportResponse struct {
	StoreID           string                `json:"store_id"`
	ProductID         string                `json:"product_id"`
	Start             time.Time             `json:"start"`
	End               time.Time             `json:"end"`
	TotalProfit       decimal.Decimal       `json:"total_profit"`
	TotalSalesValue   decimal.Decimal       `json:"total_sales_value"`
	TotalUnitsSold    decimal.Decimal       `json:"total_units_sold"`
	TotalCost         decimal.Decimal       `json:"total_cost"`
	AvgCostPerUnit    decimal.Decimal       `json:"avg_cost_per_unit"`
	CostBasisComplete bool                  `json:"cost_basis_complete"`
	Daily             []DailyProfitResponse `json:"daily"`
}

// ProfitReportResponseFromDomain converts a domain profit report.
func ProfitReportResponseFromDomain(r *domain.ProfitReport) ProfitReportResponse {
	daily := make([]DailyProfitResponse, len(r.Daily))
	for i, d := range r.Daily {
		daily[i] = DailyProfitResponse{
			Day:        d.Day,
			Profit:     d.Profit,
			SalesValue: d.SalesValue,
			UnitsSold:  d.UnitsSold,
		}
	}
	return ProfitReportResponse{
		StoreID:           r.StoreID,
		ProductID:         r.ProductID,
		Start:             r.Start,
		End:               r.End,
		TotalProfit:       r.TotalProfit,
		TotalSalesValue:   r.TotalSalesValue,
		TotalUnitsSold:    r.TotalUnitsSold,
		TotalCost:         r.TotalCost,
		AvgCostPerUnit:    r.AvgCostPerUnit,
		CostBasisComplete: r.CostBasisComplete,
		Daily:             daily,
	}
}

// ProductProfitResponse is one row of a top-products ranking.
type ProductProfitResponse struct {
	ProductID   string          `json:"product_id"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	SalesValue  decimal.Decimal `json:"sales_value"`
}

// ProductProfitsResponseFromDomain converts a slice of product profit rows.
func ProductProfitsResponseFromDomain(rows []*domain.ProductProfit) []ProductProfitResponse {
	out := make([]ProductProfitResponse, len(rows))
	for i, r := range rows {
		out[i] = ProductProfitResponse{
			ProductID:   r.ProductID,
			TotalProfit: r.TotalProfit,
			UnitsSold:   r.UnitsSold,
			SalesValue:  r.SalesValue,
		}
	}
	return out
}

// ConsistencyResponse represents the outcome of a prefix-sum scan.
type ConsistencyResponse struct {
	StoreID     string           `json:"store_id"`
	Stream      string           `json:"stream"`
	ProductID   string           `json:"product_id,omitempty"`
	Checked     int              `json:"checked"`
	Consistent  bool             `json:"consistent"`
	FirstBadID  int64            `json:"first_bad_id,omitempty"`
	ExpectedSum *decimal.Decimal `json:"expected_sum,omitempty"`
	RecordedSum *decimal.Decimal `json:"recorded_sum,omitempty"`
}

// ConsistencyResponseFromReport converts a use case consistency report.
func ConsistencyResponseFromReport(r *usecase.ConsistencyReport) ConsistencyResponse {
	resp := ConsistencyResponse{
		StoreID:    r.Partition.StoreID,
		Stream:     string(r.Partition.Stream),
		ProductID:  r.Partition.ProductID,
		Checked:    r.Checked,
		Consistent: r.Consistent,
	}
	if !r.Consistent {
		resp.FirstBadID = r.FirstBadID
		expected := r.ExpectedSum
		recorded := r.RecordedSum
		resp.ExpectedSum = &expected
		resp.RecordedSum = &recorded
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
