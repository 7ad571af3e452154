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

func TestBillLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-bills"
	product := "sku-widget"
	purchasedAt := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	soldAt := purchasedAt.Add(24 * time.Hour)

	// Stock 10 units at cost 6.
	_, err := s.billUC.RecordBill(ctx, usecase.RecordBillInput{
		StoreID:    store,
		Kind:       domain.BillPurchase,
		OccurredAt: &purchasedAt,
		Items: []domain.BillItem{
			{ProductID: product, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(6)},
		},
	})
	require.NoError(t, err)

	// Sell 4 units at 10.
	sale, err := s.billUC.RecordBill(ctx, usecase.RecordBillInput{
		StoreID:    store,
		Kind:       domain.BillSale,
		OccurredAt: &soldAt,
		Items: []domain.BillItem{
			{ProductID: product, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(decimal.NewFromInt(40)))

	quantity, err := s.stockUC.CurrentQuantity(ctx, store, product)
	require.NoError(t, err)
	require.True(t, quantity.Equal(decimal.NewFromInt(6)), "quantity = %s", quantity)

	// Purchase took 60 out of the till, the sale brought 40 back.
	balance, err := s.cashUC.Balance(ctx, store, nil)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(-20)), "balance = %s", balance)

	fetched, err := s.billUC.GetBill(ctx, store, sale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BillSale, fetched.Kind)
	require.Len(t, fetched.Items, 1)
	require.True(t, fetched.Items[0].Quantity.Equal(decimal.NewFromInt(4)))

	bills, err := s.billUC.ListBills(ctx, usecase.ListBillsInput{StoreID: store, Limit: 10})
	require.NoError(t, err)
	require.Len(t, bills, 2)

	var published int
	err = s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox_events WHERE event_type = $1`,
		string(domain.EventTypeBillRecorded)).Scan(&published)
	require.NoError(t, err)
	require.Equal(t, 2, published)
}

func TestAmendBillRewritesStreams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-amend"
	product := "sku-gadget"
	soldAt := time.Date(2026, 5, 3, 14, 0, 0, 0, time.UTC)

	intake := soldAt.Add(-time.Hour)
	_, err := s.stockUC.RecordAdjustment(ctx, usecase.RecordStockAdjustmentInput{
		StoreID:     store,
		ProductID:   product,
		Delta:       decimal.NewFromInt(20),
		UnitCost:    decimal.NewFromInt(5),
		Description: "intake",
		OccurredAt:  &intake,
	})
	require.NoError(t, err)

	sale, err := s.billUC.RecordBill(ctx, usecase.RecordBillInput{
		StoreID:    store,
		Kind:       domain.BillSale,
		OccurredAt: &soldAt,
		Items: []domain.BillItem{
			{ProductID: product, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(9)},
		},
	})
	require.NoError(t, err)

	// The cashier keyed the wrong quantity; the bill becomes 5 units.
	amended, err := s.billUC.AmendBill(ctx, usecase.AmendBillInput{
		StoreID: store,
		BillID:  sale.ID,
		Items: []domain.BillItem{
			{ProductID: product, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(9)},
		},
	})
	require.NoError(t, err)
	require.True(t, amended.Total.Equal(decimal.NewFromInt(45)))

	quantity, err := s.stockUC.CurrentQuantity(ctx, store, product)
	require.NoError(t, err)
	require.True(t, quantity.Equal(decimal.NewFromInt(15)), "quantity = %s", quantity)

	balance, err := s.cashUC.Balance(ctx, store, nil)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(45)), "balance = %s", balance)

	// Reversal and replacement entries keep the stock stream additive.
	for _, p := range []domain.Partition{
		domain.CashPartition(store),
		domain.StockPartition(store, product),
	} {
		report, err := s.ledgerUC.CheckConsistency(ctx, p)
		require.NoError(t, err)
		require.True(t, report.Consistent, "partition %+v diverged at id %d", p, report.FirstBadID)
	}

	entries, err := s.entryUC.ListEntries(ctx, usecase.ListEntriesInput{
		Partition: domain.StockPartition(store, product),
	})
	require.NoError(t, err)
	// Intake, original sale line, its reversal, the replacement line.
	require.Len(t, entries, 4)
}

func TestProfitReportOverBills(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()
	s.db.TruncateAll(ctx)

	store := "store-profit"
	product := "sku-coffee"
	day1 := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	// Two purchase lots at different costs, then sales that span them.
	buy := func(qty, cost int64, at time.Time) {
		_, err := s.billUC.RecordBill(ctx, usecase.RecordBillInput{
			StoreID:    store,
			Kind:       domain.BillPurchase,
			OccurredAt: &at,
			Items: []domain.BillItem{
				{ProductID: product, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(cost)},
			},
		})
		require.NoError(t, err)
	}
	sell := func(qty, price int64, at time.Time) {
		_, err := s.billUC.RecordBill(ctx, usecase.RecordBillInput{
			StoreID:    store,
			Kind:       domain.BillSale,
			OccurredAt: &at,
			Items: []domain.BillItem{
				{ProductID: product, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)},
			},
		})
		require.NoError(t, err)
	}

	buy(10, 4, day1)
	buy(10, 6, day1.Add(time.Hour))
	sell(8, 10, day1.Add(2*time.Hour))
	sell(6, 10, day2)

	report, err := s.profitUC.ComputeProfit(ctx, usecase.ComputeProfitInput{
		StoreID:   store,
		ProductID: product,
		Start:     day1,
		End:       day2.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	// 14 units sold at 10. First 10 cost 4 each, next 4 cost 6 each.
	require.True(t, report.TotalUnitsSold.Equal(decimal.NewFromInt(14)), "units = %s", report.TotalUnitsSold)
	require.True(t, report.TotalSalesValue.Equal(decimal.NewFromInt(140)), "sales = %s", report.TotalSalesValue)
	require.True(t, report.TotalCost.Equal(decimal.NewFromInt(64)), "cost = %s", report.TotalCost)
	require.True(t, report.TotalProfit.Equal(decimal.NewFromInt(76)), "profit = %s", report.TotalProfit)
	require.True(t, report.CostBasisComplete)
	require.Len(t, report.Daily, 2)

	top, err := s.profitUC.TopProducts(ctx, usecase.TopProductsInput{
		StoreID: store,
		Start:   day1,
		End:     day2.Add(24 * time.Hour),
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, product, top[0].ProductID)
	require.True(t, top[0].TotalProfit.Equal(decimal.NewFromInt(76)))
}
