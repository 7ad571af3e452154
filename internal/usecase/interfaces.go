package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// LedgerRepository defines data access for ledger entries on both streams.
//
// Methods taking a Transaction participate in the caller's transaction; the
// suffix-locking reads must hold row locks until that transaction ends so
// forward walks are serialized per partition.
type LedgerRepository interface {
	// Insert stores the entry and assigns its ID. RunningTotal is written
	// as given; the balance maintainer fixes it up in the same transaction.
	Insert(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, storeID string, id int64) (*domain.LedgerEntry, error)
	SetAmount(ctx context.Context, tx Transaction, id int64, amount, unitPrice decimal.Decimal) error
	SetRunningTotal(ctx context.Context, tx Transaction, id int64, total decimal.Decimal) error
	Delete(ctx context.Context, tx Transaction, id int64) error

	// PredecessorTotal returns the running total of the entry with the
	// largest order key strictly less than `before`, or zero if none.
	PredecessorTotal(ctx context.Context, tx Transaction, p domain.Partition, before domain.OrderKey) (decimal.Decimal, error)
	// ListFromForUpdate returns all entries with order key >= from, in
	// order, locked for update.
	ListFromForUpdate(ctx context.Context, tx Transaction, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error)

	// Read side.
	ListFrom(ctx context.Context, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error)
	ListByPartition(ctx context.Context, p domain.Partition, limit, offset int) ([]*domain.LedgerEntry, error)
	ListByLink(ctx context.Context, tx Transaction, storeID, link string, stream domain.Stream) ([]*domain.LedgerEntry, error)
	LatestTotal(ctx context.Context, p domain.Partition, asOf *time.Time) (decimal.Decimal, error)
	// LastResetKey returns the order key of the most recent reset entry
	// occurring before the given time, or nil if the partition has none.
	LastResetKey(ctx context.Context, p domain.Partition, before time.Time) (*domain.OrderKey, error)
	// ProductsWithSales lists product IDs with at least one sale entry in
	// [start, end) for a store.
	ProductsWithSales(ctx context.Context, storeID string, start, end time.Time) ([]string, error)
}

// StockLevelRepository defines data access for the materialized stock projection.
type StockLevelRepository interface {
	// Adjust upserts the level, adding delta, and returns the new quantity.
	Adjust(ctx context.Context, tx Transaction, storeID, productID string, delta decimal.Decimal, now time.Time) (decimal.Decimal, error)
	Get(ctx context.Context, storeID, productID string) (*domain.StockLevel, error)
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.StockLevel, error)
}

// BillRepository defines data access for bill documents.
type BillRepository interface {
	Create(ctx context.Context, tx Transaction, bill *domain.Bill) error
	GetByID(ctx context.Context, storeID, id string) (*domain.Bill, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, storeID, id string) (*domain.Bill, error)
	Update(ctx context.Context, tx Transaction, bill *domain.Bill) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.Bill, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation when it fails with a recoverable
// serialization conflict. Callers retry whole operations, never a partial
// forward walk.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs for bills and outbox events.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for hot projection reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
