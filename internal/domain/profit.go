package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitReport is the result of one FIFO cost-attribution replay for a
// single product over [Start, End).
type ProfitReport struct {
	Start           time.Time
	End             time.Time
	StoreID         string
	ProductID       string
	TotalProfit     decimal.Decimal
	TotalSalesValue decimal.Decimal
	TotalUnitsSold  decimal.Decimal
	TotalCost       decimal.Decimal
	AvgCostPerUnit  decimal.Decimal
	Daily           []DailyProfit
	// CostBasisComplete is false when some sold units had no purchase lot
	// anywhere in the replay and the last-known-cost fallback was used.
	// Callers should treat the profit figure as low confidence.
	CostBasisComplete bool
}

// DailyProfit aggregates per-sale profit by calendar day.
type DailyProfit struct {
	Day        string
	Profit     decimal.Decimal
	SalesValue decimal.Decimal
	UnitsSold  decimal.Decimal
}

// ProductProfit is one row of a top-products ranking.
type ProductProfit struct {
	ProductID   string
	TotalProfit decimal.Decimal
	UnitsSold   decimal.Decimal
	SalesValue  decimal.Decimal
}
