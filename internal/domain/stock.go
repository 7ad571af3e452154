package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel is the materialized on-hand quantity for one product in one
// store. It equals the latest running total of the product's stock stream
// and is kept for O(1) reads. Negative quantities are allowed; they are a
// signal for alerting, not an error.
type StockLevel struct {
	UpdatedAt time.Time
	StoreID   string
	ProductID string
	Quantity  decimal.Decimal
}
