package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stream identifies which ledger an entry belongs to.
type Stream string

const (
	// StreamCash holds currency movements (bills, installments, salaries, adjustments).
	StreamCash Stream = "cash"
	// StreamStock holds unit-count movements per product.
	StreamStock Stream = "stock"
)

// EntryKind classifies what business action produced an entry.
type EntryKind string

const (
	// Stock stream kinds.
	KindSale     EntryKind = "sale"
	KindPurchase EntryKind = "purchase"
	KindReturn   EntryKind = "return"
	KindReset    EntryKind = "reset"

	// Cash stream kinds.
	KindBill        EntryKind = "bill"
	KindInstallment EntryKind = "installment"
	KindSalary      EntryKind = "salary"

	// Either stream.
	KindAdjustment EntryKind = "adjustment"
)

// Partition is the unit of ordering and serialization. The cash stream has
// one partition per store; the stock stream one per (store, product).
type Partition struct {
	StoreID   string
	Stream    Stream
	ProductID string
}

// CashPartition returns the cash partition for a store.
func CashPartition(storeID string) Partition {
	return Partition{StoreID: storeID, Stream: StreamCash}
}

// StockPartition returns the stock partition for a product in a store.
func StockPartition(storeID, productID string) Partition {
	return Partition{StoreID: storeID, Stream: StreamStock, ProductID: productID}
}

// OrderKey defines the total order of entries within a partition:
// business timestamp first, row ID to break ties. Backdated entries slot
// into their chronological position regardless of creation order.
type OrderKey struct {
	OccurredAt time.Time
	ID         int64
}

// Less compares keys lexicographically.
func (k OrderKey) Less(other OrderKey) bool {
	if !k.OccurredAt.Equal(other.OccurredAt) {
		return k.OccurredAt.Before(other.OccurredAt)
	}
	return k.ID < other.ID
}

// LedgerEntry is a single row in one of the two event streams.
//
// RunningTotal is the cached prefix sum of Amount over all entries in the
// same partition with a key <= this entry's key. Only the balance maintainer
// writes it.
type LedgerEntry struct {
	OccurredAt   time.Time
	CreatedAt    time.Time
	Link         *string
	Description  string
	StoreID      string
	ProductID    string
	Stream       Stream
	Kind         EntryKind
	Amount       decimal.Decimal
	UnitPrice    decimal.Decimal
	RunningTotal decimal.Decimal
	ID           int64
}

// OrderKey returns the entry's position in its partition's total order.
func (e *LedgerEntry) OrderKey() OrderKey {
	return OrderKey{OccurredAt: e.OccurredAt, ID: e.ID}
}

// Partition returns the partition the entry belongs to.
func (e *LedgerEntry) Partition() Partition {
	return Partition{StoreID: e.StoreID, Stream: e.Stream, ProductID: e.ProductID}
}

// Validate checks stream/kind coherence before the entry reaches storage.
func (e *LedgerEntry) Validate() error {
	if e.StoreID == "" {
		return ErrMissingStore
	}

	switch e.Stream {
	case StreamCash:
		if e.ProductID != "" {
			return ErrStreamMismatch
		}
		switch e.Kind {
		case KindBill, KindInstallment, KindSalary, KindAdjustment:
		default:
			return ErrStreamMismatch
		}
	case StreamStock:
		if e.ProductID == "" {
			return ErrMissingProduct
		}
		switch e.Kind {
		case KindSale, KindPurchase, KindReturn, KindReset, KindAdjustment:
		default:
			return ErrStreamMismatch
		}
	default:
		return ErrStreamMismatch
	}

	// A reset records a counted quantity and may legitimately be zero.
	if e.Amount.IsZero() && e.Kind != KindReset {
		return ErrInvalidAmount
	}

	return nil
}

// IsPurchaseLike reports whether the entry adds stock carrying a cost basis
// usable for FIFO attribution.
func (e *LedgerEntry) IsPurchaseLike() bool {
	return e.Stream == StreamStock && e.Amount.IsPositive()
}

// IsSaleLike reports whether the entry removes stock.
func (e *LedgerEntry) IsSaleLike() bool {
	return e.Stream == StreamStock && e.Amount.IsNegative()
}
