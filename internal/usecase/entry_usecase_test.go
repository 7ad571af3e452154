package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
	"github.com/iho/storeledger/internal/usecase/mocks"
)

type entryFixture struct {
	uc         *usecase.EntryUseCase
	maintainer *usecase.BalanceMaintainer
	ledger     *mocks.FakeLedgerRepository
	stock      *mocks.FakeStockLevelRepository
	outbox     *mocks.FakeOutboxRepository
	cache      *mocks.FakeCache
}

func newEntryFixture() *entryFixture {
	f := &entryFixture{
		ledger: mocks.NewFakeLedgerRepository(),
		stock:  mocks.NewFakeStockLevelRepository(),
		outbox: mocks.NewFakeOutboxRepository(),
		cache:  mocks.NewFakeCache(),
	}
	f.maintainer = usecase.NewBalanceMaintainer(f.ledger)
	f.uc = usecase.NewEntryUseCase(
		&mocks.FakeTxManager{},
		mocks.NoopRetrier{},
		f.maintainer,
		f.ledger,
		f.stock,
		f.outbox,
		&mocks.FakeIDGenerator{},
		f.cache,
	)
	return f
}

func (f *entryFixture) insertStock(t *testing.T, amount int64, at time.Time) *domain.LedgerEntry {
	t.Helper()

	ctx := context.Background()
	tx := &mocks.FakeTx{}

	entry := &domain.LedgerEntry{
		StoreID:    "s1",
		ProductID:  "p1",
		Stream:     domain.StreamStock,
		Kind:       domain.KindAdjustment,
		Amount:     decimal.NewFromInt(amount),
		OccurredAt: at,
	}
	if err := f.maintainer.Insert(ctx, tx, entry); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := f.stock.Adjust(ctx, tx, "s1", "p1", entry.Amount, at); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	return entry
}

func TestEntryUseCase_DeleteStockEntryCompensatesProjection(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()

	f.insertStock(t, 10, baseTime)
	victim := f.insertStock(t, 5, baseTime.Add(time.Hour))
	f.insertStock(t, -3, baseTime.Add(2*time.Hour))

	if err := f.uc.DeleteEntry(ctx, "s1", victim.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	// The suffix was bubble-corrected.
	assertTotals(t, f.ledger, domain.StockPartition("s1", "p1"), 10, 7)

	// The projection was compensated by the negated amount.
	level, err := f.stock.Get(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !level.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("projection = %s, want 7", level.Quantity)
	}

	if got := len(f.outbox.ByType(domain.EventTypeEntryDeleted)); got != 1 {
		t.Fatalf("entry.deleted events = %d, want 1", got)
	}
	if len(f.cache.Deletes) != 1 {
		t.Fatalf("cache deletes = %v, want the product key", f.cache.Deletes)
	}
}

func TestEntryUseCase_DeleteDrivingProjectionNegativeEmitsEvent(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()

	victim := f.insertStock(t, 10, baseTime)
	f.insertStock(t, -4, baseTime.Add(time.Hour))

	if err := f.uc.DeleteEntry(ctx, "s1", victim.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	level, err := f.stock.Get(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !level.Quantity.Equal(decimal.NewFromInt(-4)) {
		t.Fatalf("projection = %s, want -4", level.Quantity)
	}
	if got := len(f.outbox.ByType(domain.EventTypeStockNegative)); got != 1 {
		t.Fatalf("stock.negative events = %d, want 1", got)
	}
}

func TestEntryUseCase_DeleteUnknownEntry(t *testing.T) {
	f := newEntryFixture()

	err := f.uc.DeleteEntry(context.Background(), "s1", 99)
	if err != domain.ErrEntryNotFound {
		t.Fatalf("DeleteEntry() = %v, want %v", err, domain.ErrEntryNotFound)
	}
}

func TestEntryUseCase_ListEntriesClampsLimit(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.insertStock(t, 1, baseTime.Add(time.Duration(i)*time.Minute))
	}

	p := domain.StockPartition("s1", "p1")

	entries, err := f.uc.ListEntries(ctx, usecase.ListEntriesInput{Partition: p, Limit: 3})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	entries, err = f.uc.ListEntries(ctx, usecase.ListEntriesInput{Partition: p, Limit: 3, Offset: 4})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries at offset 4, want 1", len(entries))
	}

	entries, err = f.uc.ListEntries(ctx, usecase.ListEntriesInput{Partition: p})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries with default limit, want 5", len(entries))
	}
}

func TestEntryUseCase_HistoricalBalance(t *testing.T) {
	f := newEntryFixture()
	ctx := context.Background()

	f.insertStock(t, 10, baseTime)
	f.insertStock(t, -4, baseTime.Add(2*time.Hour))

	at := baseTime.Add(time.Hour)
	balance, err := f.uc.HistoricalBalance(ctx, domain.StockPartition("s1", "p1"), at)
	if err != nil {
		t.Fatalf("HistoricalBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance at +1h = %s, want 10", balance)
	}
}
