package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

func TestBackdatedAdjustmentBubbleCorrects(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-backdate"
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	day3 := day1.Add(48 * time.Hour)

	record := func(amount int64, at time.Time) {
		_, err := s.cashUC.RecordAdjustment(ctx, usecase.RecordAdjustmentInput{
			StoreID:     store,
			Amount:      decimal.NewFromInt(amount),
			Description: "drawer count",
			OccurredAt:  &at,
		})
		require.NoError(t, err)
	}

	// Out of creation order: the day1 and day2 entries land behind day3
	// and must push its running total forward.
	record(100, day3)
	record(10, day1)
	record(5, day2)

	entries, err := s.entryUC.ListEntries(ctx, usecase.ListEntriesInput{
		Partition: domain.CashPartition(store),
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	wantTotals := []int64{10, 15, 115}
	for i, entry := range entries {
		require.True(t, entry.RunningTotal.Equal(decimal.NewFromInt(wantTotals[i])),
			"entry %d running total = %s, want %d", i, entry.RunningTotal, wantTotals[i])
	}

	balance, err := s.cashUC.Balance(ctx, store, nil)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(115)), "balance = %s", balance)

	mid := day2.Add(time.Hour)
	historical, err := s.entryUC.HistoricalBalance(ctx, domain.CashPartition(store), mid)
	require.NoError(t, err)
	require.True(t, historical.Equal(decimal.NewFromInt(15)), "historical = %s", historical)

	report, err := s.ledgerUC.CheckConsistency(ctx, domain.CashPartition(store))
	require.NoError(t, err)
	require.True(t, report.Consistent)
	require.Equal(t, 3, report.Checked)
}

func TestDeleteEntryRepairsSuffix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-delete"
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, amount := range []int64{10, 20, 30} {
		at := base.Add(time.Duration(i) * time.Hour)
		_, err := s.cashUC.RecordAdjustment(ctx, usecase.RecordAdjustmentInput{
			StoreID:     store,
			Amount:      decimal.NewFromInt(amount),
			Description: "deposit",
			OccurredAt:  &at,
		})
		require.NoError(t, err)
	}

	entries, err := s.entryUC.ListEntries(ctx, usecase.ListEntriesInput{
		Partition: domain.CashPartition(store),
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Remove the middle entry; the tail must drop by its amount.
	require.NoError(t, s.entryUC.DeleteEntry(ctx, store, entries[1].ID))

	entries, err = s.entryUC.ListEntries(ctx, usecase.ListEntriesInput{
		Partition: domain.CashPartition(store),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].RunningTotal.Equal(decimal.NewFromInt(10)))
	require.True(t, entries[1].RunningTotal.Equal(decimal.NewFromInt(40)))

	report, err := s.ledgerUC.CheckConsistency(ctx, domain.CashPartition(store))
	require.NoError(t, err)
	require.True(t, report.Consistent)

	require.ErrorIs(t, s.entryUC.DeleteEntry(ctx, store, entries[1].ID+1000), domain.ErrEntryNotFound)
}

func TestStockResetAnchorsQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-reset"
	product := "sku-42"
	base := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	_, err := s.stockUC.RecordAdjustment(ctx, usecase.RecordStockAdjustmentInput{
		StoreID:     store,
		ProductID:   product,
		Delta:       decimal.NewFromInt(12),
		UnitCost:    decimal.NewFromInt(3),
		Description: "initial intake",
		OccurredAt:  &base,
	})
	require.NoError(t, err)

	countedAt := base.Add(time.Hour)
	_, err = s.stockUC.RecordReset(ctx, usecase.RecordResetInput{
		StoreID:    store,
		ProductID:  product,
		Counted:    decimal.NewFromInt(9),
		OccurredAt: &countedAt,
	})
	require.NoError(t, err)

	quantity, err := s.stockUC.CurrentQuantity(ctx, store, product)
	require.NoError(t, err)
	require.True(t, quantity.Equal(decimal.NewFromInt(9)), "quantity = %s", quantity)

	report, err := s.ledgerUC.CheckConsistency(ctx, domain.StockPartition(store, product))
	require.NoError(t, err)
	require.True(t, report.Consistent)

	// The stream total and the projection agree after the reset.
	total, err := s.entryUC.HistoricalBalance(ctx, domain.StockPartition(store, product), countedAt.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.NewFromInt(9)), "stream total = %s", total)
}
