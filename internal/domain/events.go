package domain

import "time"

// Event types
const (
	EventTypeBillRecorded  = "bill.recorded"
	EventTypeBillAmended   = "bill.amended"
	EventTypeEntryDeleted  = "entry.deleted"
	EventTypeStockNegative = "stock.negative"
)

// Aggregate types
const (
	AggregateTypeBill  = "bill"
	AggregateTypeEntry = "entry"
	AggregateTypeStock = "stock"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BillRecordedEvent payload
type BillRecordedEvent struct {
	BillID    string `json:"bill_id"`
	StoreID   string `json:"store_id"`
	Kind      string `json:"kind"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

// BillAmendedEvent payload
type BillAmendedEvent struct {
	BillID   string `json:"bill_id"`
	StoreID  string `json:"store_id"`
	OldTotal string `json:"old_total"`
	NewTotal string `json:"new_total"`
}

// EntryDeletedEvent payload
type EntryDeletedEvent struct {
	EntryID int64  `json:"entry_id"`
	StoreID string `json:"store_id"`
	Stream  string `json:"stream"`
	Amount  string `json:"amount"`
}

// StockNegativeEvent payload. Emitted whenever a write leaves a product's
// on-hand quantity below zero; consumed by external alerting.
type StockNegativeEvent struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
}
