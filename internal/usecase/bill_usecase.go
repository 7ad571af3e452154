package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// BillUseCase translates bill documents into ledger entries: one stock
// entry per line item and a single cash summary entry, committed together
// or not at all.
type BillUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	maintainer *BalanceMaintainer
	ledgerRepo LedgerRepository
	billRepo   BillRepository
	stockRepo  StockLevelRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	cache      Cache
	metrics    *metrics.Metrics
}

// NewBillUseCase creates a new BillUseCase.
func NewBillUseCase(
	txManager TransactionManager,
	retrier Retrier,
	maintainer *BalanceMaintainer,
	ledgerRepo LedgerRepository,
	billRepo BillRepository,
	stockRepo StockLevelRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *BillUseCase {
	return &BillUseCase{
		txManager:  txManager,
		retrier:    retrier,
		maintainer: maintainer,
		ledgerRepo: ledgerRepo,
		billRepo:   billRepo,
		stockRepo:  stockRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		cache:      cache,
		metrics:    metrics,
	}
}

// RecordBillInput represents input for recording a bill.
type RecordBillInput struct {
	OccurredAt *time.Time
	StoreID    string
	Kind       domain.BillKind
	Items      []domain.BillItem
}

// RecordBill writes the bill document and its stream side effects. Stock
// quantities are signed by the bill kind (negative for sales, positive for
// purchases and returns); the cash entry carries the bill's signed total.
func (uc *BillUseCase) RecordBill(ctx context.Context, input RecordBillInput) (*domain.Bill, error) {
	now := time.Now().UTC()

	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = input.OccurredAt.UTC()
	}

	bill := &domain.Bill{
		ID:         uc.idGen.Generate(),
		StoreID:    input.StoreID,
		Kind:       input.Kind,
		Items:      input.Items,
		OccurredAt: occurredAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := bill.Validate(); err != nil {
		return nil, err
	}
	bill.Total = bill.ItemsTotal()

	stockSign, err := bill.Kind.StockSign()
	if err != nil {
		return nil, err
	}
	cashSign, err := bill.Kind.CashSign()
	if err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.billRepo.Create(ctx, tx, bill); err != nil {
			return err
		}

		link := bill.ID
		for _, item := range bill.Items {
			entry := &domain.LedgerEntry{
				StoreID:    bill.StoreID,
				ProductID:  item.ProductID,
				Stream:     domain.StreamStock,
				Kind:       bill.Kind.StockKind(),
				Amount:     item.Quantity.Mul(stockSign),
				UnitPrice:  item.UnitPrice,
				Link:       &link,
				OccurredAt: occurredAt,
				CreatedAt:  now,
			}
			if err := uc.maintainer.Insert(ctx, tx, entry); err != nil {
				return err
			}

			quantity, err := uc.stockRepo.Adjust(ctx, tx, bill.StoreID, item.ProductID, entry.Amount, now)
			if err != nil {
				return err
			}
			if quantity.IsNegative() {
				if err := uc.emitStockNegative(ctx, tx, bill.StoreID, item.ProductID, quantity, now); err != nil {
					return err
				}
			}
		}

		cashEntry := &domain.LedgerEntry{
			StoreID:    bill.StoreID,
			Stream:     domain.StreamCash,
			Kind:       domain.KindBill,
			Amount:     bill.Total.Mul(cashSign),
			Link:       &link,
			OccurredAt: occurredAt,
			CreatedAt:  now,
		}
		if err := uc.maintainer.Insert(ctx, tx, cashEntry); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   bill.ID,
			AggregateType: domain.AggregateTypeBill,
			EventType:     domain.EventTypeBillRecorded,
			Payload: map[string]any{
				"bill_id":    bill.ID,
				"store_id":   bill.StoreID,
				"kind":       string(bill.Kind),
				"total":      bill.Total.String(),
				"item_count": len(bill.Items),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateStock(ctx, bill.StoreID, bill.Items)

	if uc.metrics != nil {
		uc.metrics.BillsRecorded.Inc()
		uc.metrics.BillAmount.Observe(bill.Total.InexactFloat64())
		uc.metrics.BillDuration.Observe(time.Since(now).Seconds())
	}

	return bill, nil
}

// AmendBillInput represents input for amending a bill.
type AmendBillInput struct {
	StoreID string
	BillID  string
	Items   []domain.BillItem
}

// AmendBill replaces a bill's line items. The stock stream keeps its full
// audit trail: the original entries stay put, reversal entries negate them
// and replacement entries follow, all at the bill's business timestamp. The
// cash stream instead keeps one mutable summary row per bill, so its amount
// is edited in place and the suffix bubble-corrected.
func (uc *BillUseCase) AmendBill(ctx context.Context, input AmendBillInput) (*domain.Bill, error) {
	now := time.Now().UTC()

	var amended *domain.Bill
	var touched []domain.BillItem

	err := uc.retrier.Retry(ctx, func() error {
		touched = touched[:0]

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		bill, err := uc.billRepo.GetByIDForUpdate(ctx, tx, input.StoreID, input.BillID)
		if err != nil {
			return err
		}

		oldTotal := bill.Total
		oldItems := bill.Items

		replacement := *bill
		replacement.Items = input.Items
		if err := replacement.Validate(); err != nil {
			return err
		}

		stockSign, err := bill.Kind.StockSign()
		if err != nil {
			return err
		}
		cashSign, err := bill.Kind.CashSign()
		if err != nil {
			return err
		}

		link := bill.ID

		// Reverse the original stock effect with negated quantities.
		for _, item := range oldItems {
			entry := &domain.LedgerEntry{
				StoreID:    bill.StoreID,
				ProductID:  item.ProductID,
				Stream:     domain.StreamStock,
				Kind:       domain.KindAdjustment,
				Amount:     item.Quantity.Mul(stockSign).Neg(),
				UnitPrice:  item.UnitPrice,
				Link:       &link,
				OccurredAt: bill.OccurredAt,
				CreatedAt:  now,
			}
			if err := uc.applyStockEntry(ctx, tx, entry, now); err != nil {
				return err
			}
			touched = append(touched, item)
		}

		// Append the replacement entries.
		for _, item := range input.Items {
			entry := &domain.LedgerEntry{
				StoreID:    bill.StoreID,
				ProductID:  item.ProductID,
				Stream:     domain.StreamStock,
				Kind:       bill.Kind.StockKind(),
				Amount:     item.Quantity.Mul(stockSign),
				UnitPrice:  item.UnitPrice,
				Link:       &link,
				OccurredAt: bill.OccurredAt,
				CreatedAt:  now,
			}
			if err := uc.applyStockEntry(ctx, tx, entry, now); err != nil {
				return err
			}
			touched = append(touched, item)
		}

		// The cash stream keeps a single row per bill: edit it in place.
		bill.Items = input.Items
		bill.Total = replacement.ItemsTotal()
		bill.UpdatedAt = now

		cashEntries, err := uc.ledgerRepo.ListByLink(ctx, tx, bill.StoreID, bill.ID, domain.StreamCash)
		if err != nil {
			return err
		}
		if len(cashEntries) == 0 {
			return domain.ErrEntryNotFound
		}
		summary := cashEntries[0]
		if err := uc.maintainer.UpdateAmount(ctx, tx, bill.StoreID, summary.ID, bill.Total.Mul(cashSign), decimal.Zero); err != nil {
			return err
		}

		if err := uc.billRepo.Update(ctx, tx, bill); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   bill.ID,
			AggregateType: domain.AggregateTypeBill,
			EventType:     domain.EventTypeBillAmended,
			Payload: map[string]any{
				"bill_id":   bill.ID,
				"store_id":  bill.StoreID,
				"old_total": oldTotal.String(),
				"new_total": bill.Total.String(),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		amended = bill
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateStock(ctx, input.StoreID, touched)

	if uc.metrics != nil {
		uc.metrics.BillsAmended.Inc()
		uc.metrics.BillDuration.Observe(time.Since(now).Seconds())
	}

	return amended, nil
}

// GetBill retrieves a bill by ID.
func (uc *BillUseCase) GetBill(ctx context.Context, storeID, id string) (*domain.Bill, error) {
	return uc.billRepo.GetByID(ctx, storeID, id)
}

// ListBillsInput represents input for listing bills.
type ListBillsInput struct {
	StoreID string
	Limit   int
	Offset  int
}

// ListBills lists bills for a store with pagination.
func (uc *BillUseCase) ListBills(ctx context.Context, input ListBillsInput) ([]*domain.Bill, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.billRepo.ListByStore(ctx, input.StoreID, input.Limit, input.Offset)
}

func (uc *BillUseCase) applyStockEntry(ctx context.Context, tx Transaction, entry *domain.LedgerEntry, now time.Time) error {
	if err := uc.maintainer.Insert(ctx, tx, entry); err != nil {
		return err
	}

	quantity, err := uc.stockRepo.Adjust(ctx, tx, entry.StoreID, entry.ProductID, entry.Amount, now)
	if err != nil {
		return err
	}
	if quantity.IsNegative() {
		return uc.emitStockNegative(ctx, tx, entry.StoreID, entry.ProductID, quantity, now)
	}
	return nil
}

func (uc *BillUseCase) emitStockNegative(ctx context.Context, tx Transaction, storeID, productID string, quantity decimal.Decimal, now time.Time) error {
	if uc.metrics != nil {
		uc.metrics.NegativeStock.WithLabelValues(storeID).Inc()
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   storeID + ":" + productID,
		AggregateType: domain.AggregateTypeStock,
		EventType:     domain.EventTypeStockNegative,
		Payload: map[string]any{
			"store_id":   storeID,
			"product_id": productID,
			"quantity":   quantity.String(),
		},
		CreatedAt: now,
	})
}

func (uc *BillUseCase) invalidateStock(ctx context.Context, storeID string, items []domain.BillItem) {
	if uc.cache == nil {
		return
	}
	for _, item := range items {
		// Best effort; the TTL bounds staleness anyway.
		_ = uc.cache.Delete(ctx, stockCacheKey(storeID, item.ProductID))
	}
}
