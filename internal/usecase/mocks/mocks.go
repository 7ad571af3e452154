package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// FakeTx is a no-op transaction.
type FakeTx struct {
	Committed  bool
	RolledBack bool
}

func (t *FakeTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// FakeTxManager hands out no-op transactions.
type FakeTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	Began     int
}

func (m *FakeTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.Began++
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &FakeTx{}, nil
}

// NoopRetrier runs the operation once without retrying.
type NoopRetrier struct{}

func (NoopRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// FakeIDGenerator yields deterministic sequential IDs.
type FakeIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *FakeIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%04d", g.next)
}

// FakeLedgerRepository is an in-memory LedgerRepository that keeps real
// per-partition ordering so forward-walk logic is exercised for real.
type FakeLedgerRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]*domain.LedgerEntry

	InsertErr error
	ListErr   error
	SetErr    error
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{entries: make(map[int64]*domain.LedgerEntry)}
}

func clone(e *domain.LedgerEntry) *domain.LedgerEntry {
	c := *e
	return &c
}

func (r *FakeLedgerRepository) Insert(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if r.InsertErr != nil {
		return r.InsertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.entries[entry.ID] = clone(entry)
	return nil
}

func (r *FakeLedgerRepository) GetByID(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || e.StoreID != storeID {
		return nil, domain.ErrEntryNotFound
	}
	return clone(e), nil
}

func (r *FakeLedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, storeID string, id int64) (*domain.LedgerEntry, error) {
	return r.GetByID(ctx, storeID, id)
}

func (r *FakeLedgerRepository) SetAmount(ctx context.Context, tx usecase.Transaction, id int64, amount, unitPrice decimal.Decimal) error {
	if r.SetErr != nil {
		return r.SetErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Amount = amount
	e.UnitPrice = unitPrice
	return nil
}

func (r *FakeLedgerRepository) SetRunningTotal(ctx context.Context, tx usecase.Transaction, id int64, total decimal.Decimal) error {
	if r.SetErr != nil {
		return r.SetErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.RunningTotal = total
	return nil
}

func (r *FakeLedgerRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *FakeLedgerRepository) PredecessorTotal(ctx context.Context, tx usecase.Transaction, p domain.Partition, before domain.OrderKey) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pred *domain.LedgerEntry
	for _, e := range r.entries {
		if e.Partition() != p || !e.OrderKey().Less(before) {
			continue
		}
		if pred == nil || pred.OrderKey().Less(e.OrderKey()) {
			pred = e
		}
	}
	if pred == nil {
		return decimal.Zero, nil
	}
	return pred.RunningTotal, nil
}

func (r *FakeLedgerRepository) ListFromForUpdate(ctx context.Context, tx usecase.Transaction, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	return r.ListFrom(ctx, p, from)
}

func (r *FakeLedgerRepository) ListFrom(ctx context.Context, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range r.entries {
		if e.Partition() != p || e.OrderKey().Less(from) {
			continue
		}
		out = append(out, clone(e))
	}
	sortByOrderKey(out)
	return out, nil
}

func (r *FakeLedgerRepository) ListByPartition(ctx context.Context, p domain.Partition, limit, offset int) ([]*domain.LedgerEntry, error) {
	all, err := r.ListFrom(ctx, p, domain.OrderKey{})
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *FakeLedgerRepository) ListByLink(ctx context.Context, tx usecase.Transaction, storeID, link string, stream domain.Stream) ([]*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range r.entries {
		if e.StoreID != storeID || e.Stream != stream || e.Link == nil || *e.Link != link {
			continue
		}
		out = append(out, clone(e))
	}
	sortByOrderKey(out)
	return out, nil
}

func (r *FakeLedgerRepository) LatestTotal(ctx context.Context, p domain.Partition, asOf *time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.LedgerEntry
	for _, e := range r.entries {
		if e.Partition() != p {
			continue
		}
		if asOf != nil && e.OccurredAt.After(*asOf) {
			continue
		}
		if latest == nil || latest.OrderKey().Less(e.OrderKey()) {
			latest = e
		}
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.RunningTotal, nil
}

func (r *FakeLedgerRepository) LastResetKey(ctx context.Context, p domain.Partition, before time.Time) (*domain.OrderKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *domain.LedgerEntry
	for _, e := range r.entries {
		if e.Partition() != p || e.Kind != domain.KindReset || !e.OccurredAt.Before(before) {
			continue
		}
		if last == nil || last.OrderKey().Less(e.OrderKey()) {
			last = e
		}
	}
	if last == nil {
		return nil, nil
	}
	key := last.OrderKey()
	return &key, nil
}

func (r *FakeLedgerRepository) ProductsWithSales(ctx context.Context, storeID string, start, end time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	for _, e := range r.entries {
		if e.StoreID != storeID || !e.IsSaleLike() {
			continue
		}
		if e.OccurredAt.Before(start) || !e.OccurredAt.Before(end) {
			continue
		}
		seen[e.ProductID] = true
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Snapshot returns a partition's entries in order-key order, for assertions.
func (r *FakeLedgerRepository) Snapshot(p domain.Partition) []*domain.LedgerEntry {
	out, _ := r.ListFrom(context.Background(), p, domain.OrderKey{})
	return out
}

func sortByOrderKey(entries []*domain.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].OrderKey().Less(entries[j].OrderKey())
	})
}

// FakeStockLevelRepository is an in-memory StockLevelRepository.
type FakeStockLevelRepository struct {
	mu     sync.RWMutex
	levels map[string]*domain.StockLevel
}

func NewFakeStockLevelRepository() *FakeStockLevelRepository {
	return &FakeStockLevelRepository{levels: make(map[string]*domain.StockLevel)}
}

func levelKey(storeID, productID string) string {
	return storeID + "/" + productID
}

func (r *FakeStockLevelRepository) Adjust(ctx context.Context, tx usecase.Transaction, storeID, productID string, delta decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := levelKey(storeID, productID)
	level, ok := r.levels[key]
	if !ok {
		level = &domain.StockLevel{StoreID: storeID, ProductID: productID, Quantity: decimal.Zero}
		r.levels[key] = level
	}
	level.Quantity = level.Quantity.Add(delta)
	level.UpdatedAt = now
	return level.Quantity, nil
}

func (r *FakeStockLevelRepository) Get(ctx context.Context, storeID, productID string) (*domain.StockLevel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	level, ok := r.levels[levelKey(storeID, productID)]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	c := *level
	return &c, nil
}

func (r *FakeStockLevelRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.StockLevel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.StockLevel
	for _, level := range r.levels {
		if level.StoreID != storeID {
			continue
		}
		c := *level
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeBillRepository is an in-memory BillRepository.
type FakeBillRepository struct {
	mu    sync.RWMutex
	bills map[string]*domain.Bill
}

func NewFakeBillRepository() *FakeBillRepository {
	return &FakeBillRepository{bills: make(map[string]*domain.Bill)}
}

func (r *FakeBillRepository) Create(ctx context.Context, tx usecase.Transaction, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *bill
	c.Items = append([]domain.BillItem(nil), bill.Items...)
	r.bills[bill.StoreID+"/"+bill.ID] = &c
	return nil
}

func (r *FakeBillRepository) GetByID(ctx context.Context, storeID, id string) (*domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bill, ok := r.bills[storeID+"/"+id]
	if !ok {
		return nil, domain.ErrBillNotFound
	}
	c := *bill
	c.Items = append([]domain.BillItem(nil), bill.Items...)
	return &c, nil
}

func (r *FakeBillRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, storeID, id string) (*domain.Bill, error) {
	return r.GetByID(ctx, storeID, id)
}

func (r *FakeBillRepository) Update(ctx context.Context, tx usecase.Transaction, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := bill.StoreID + "/" + bill.ID
	if _, ok := r.bills[key]; !ok {
		return domain.ErrBillNotFound
	}
	c := *bill
	c.Items = append([]domain.BillItem(nil), bill.Items...)
	r.bills[key] = &c
	return nil
}

func (r *FakeBillRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Bill
	for _, bill := range r.bills {
		if bill.StoreID != storeID {
			continue
		}
		c := *bill
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeOutboxRepository records outbox events in memory.
type FakeOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent
}

func NewFakeOutboxRepository() *FakeOutboxRepository {
	return &FakeOutboxRepository{}
}

func (r *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, event := range r.Events {
		if event.Published {
			continue
		}
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range r.Events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
			return nil
		}
	}
	return domain.ErrEntryNotFound
}

func (r *FakeOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.Events[:0]
	for _, event := range r.Events {
		if event.Published && event.PublishedAt != nil && event.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, event)
	}
	r.Events = kept
	return nil
}

// ByType returns recorded events of one type.
func (r *FakeOutboxRepository) ByType(eventType string) []*domain.OutboxEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, event := range r.Events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

// FakeCache is an in-memory Cache without TTL handling.
type FakeCache struct {
	mu      sync.RWMutex
	values  map[string]string
	Deletes []string
}

func NewFakeCache() *FakeCache {
	return &FakeCache{values: make(map[string]string)}
}

func (c *FakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.values[key]
	if !ok {
		return "", domain.ErrEntryNotFound
	}
	return value, nil
}

func (c *FakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *FakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.Deletes = append(c.Deletes, key)
	return nil
}
