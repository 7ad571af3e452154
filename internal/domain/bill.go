package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillKind is the direction of a bill.
type BillKind string

const (
	// BillSale moves stock out and cash in.
	BillSale BillKind = "sale"
	// BillPurchase moves stock in and cash out.
	BillPurchase BillKind = "purchase"
	// BillReturn moves stock back in and cash out (customer refund).
	BillReturn BillKind = "return"
)

// Bill is the business document behind a pair of stream side effects:
// one stock entry per line item plus a single cash summary entry.
type Bill struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	StoreID    string
	Kind       BillKind
	Total      decimal.Decimal
	Items      []BillItem
}

// BillItem is one product line on a bill. Quantity is always positive here;
// the translator applies the sign dictated by the bill kind.
type BillItem struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	ID        int64
}

// StockSign returns the sign applied to line quantities on the stock stream.
func (k BillKind) StockSign() (decimal.Decimal, error) {
	switch k {
	case BillSale:
		return decimal.NewFromInt(-1), nil
	case BillPurchase, BillReturn:
		return decimal.NewFromInt(1), nil
	default:
		return decimal.Zero, ErrUnknownBillKind
	}
}

// CashSign returns the sign applied to the bill total on the cash stream.
func (k BillKind) CashSign() (decimal.Decimal, error) {
	switch k {
	case BillSale:
		return decimal.NewFromInt(1), nil
	case BillPurchase, BillReturn:
		return decimal.NewFromInt(-1), nil
	default:
		return decimal.Zero, ErrUnknownBillKind
	}
}

// StockKind returns the entry kind written to the stock stream.
func (k BillKind) StockKind() EntryKind {
	switch k {
	case BillPurchase:
		return KindPurchase
	case BillReturn:
		return KindReturn
	default:
		return KindSale
	}
}

// Validate validates the bill document.
func (b *Bill) Validate() error {
	if b.StoreID == "" {
		return ErrMissingStore
	}

	if _, err := b.Kind.StockSign(); err != nil {
		return err
	}

	if len(b.Items) == 0 {
		return ErrEmptyBill
	}

	for _, item := range b.Items {
		if item.ProductID == "" {
			return ErrMissingProduct
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return ErrInvalidPrice
		}
	}

	return nil
}

// ItemsTotal is the unsigned sum of quantity times unit price.
func (b *Bill) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return total
}
