package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// StockUseCase exposes the materialized stock projection and translates
// manual stock corrections and inventory resets into stock-stream entries.
type StockUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	maintainer *BalanceMaintainer
	stockRepo  StockLevelRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	cache      Cache
	metrics    *metrics.Metrics
}

// NewStockUseCase creates a new StockUseCase.
func NewStockUseCase(
	txManager TransactionManager,
	retrier Retrier,
	maintainer *BalanceMaintainer,
	stockRepo StockLevelRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *StockUseCase {
	return &StockUseCase{
		txManager:  txManager,
		retrier:    retrier,
		maintainer: maintainer,
		stockRepo:  stockRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		cache:      cache,
		metrics:    metrics,
	}
}

// CurrentQuantity returns the on-hand quantity for a product. A product
// with no movements has quantity zero. Reads go through the cache; the
// projection row is the source of truth.
func (uc *StockUseCase) CurrentQuantity(ctx context.Context, storeID, productID string) (decimal.Decimal, error) {
	key := stockCacheKey(storeID, productID)

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			if quantity, perr := decimal.NewFromString(cached); perr == nil {
				return quantity, nil
			}
		}
	}

	level, err := uc.stockRepo.Get(ctx, storeID, productID)
	if err != nil {
		if err == domain.ErrEntryNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, level.Quantity.String(), StockLevelCacheTTL)
	}

	return level.Quantity, nil
}

// ListLevelsInput represents input for listing stock levels.
type ListLevelsInput struct {
	StoreID string
	Limit   int
	Offset  int
}

// ListLevels lists stock levels for a store with pagination.
func (uc *StockUseCase) ListLevels(ctx context.Context, input ListLevelsInput) ([]*domain.StockLevel, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.stockRepo.ListByStore(ctx, input.StoreID, input.Limit, input.Offset)
}

// RecordStockAdjustmentInput represents input for a manual stock correction.
type RecordStockAdjustmentInput struct {
	OccurredAt  *time.Time
	StoreID     string
	ProductID   string
	Description string
	Delta       decimal.Decimal
	UnitCost    decimal.Decimal
}

// RecordAdjustment appends one manual stock correction entry and updates
// the projection.
func (uc *StockUseCase) RecordAdjustment(ctx context.Context, input RecordStockAdjustmentInput) (*domain.LedgerEntry, error) {
	now := time.Now().UTC()

	at := now
	if input.OccurredAt != nil {
		at = input.OccurredAt.UTC()
	}

	entry := &domain.LedgerEntry{
		StoreID:     input.StoreID,
		ProductID:   input.ProductID,
		Stream:      domain.StreamStock,
		Kind:        domain.KindAdjustment,
		Amount:      input.Delta,
		UnitPrice:   input.UnitCost,
		Description: input.Description,
		OccurredAt:  at,
		CreatedAt:   now,
	}

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.maintainer.Insert(ctx, tx, entry); err != nil {
			return err
		}

		quantity, err := uc.stockRepo.Adjust(ctx, tx, input.StoreID, input.ProductID, input.Delta, now)
		if err != nil {
			return err
		}
		if quantity.IsNegative() {
			if err := uc.emitStockNegative(ctx, tx, input.StoreID, input.ProductID, quantity, now); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.StoreID, input.ProductID)

	if uc.metrics != nil {
		uc.metrics.StockAdjustments.Inc()
	}

	return entry, nil
}

// RecordResetInput represents input for an inventory reset.
type RecordResetInput struct {
	OccurredAt *time.Time
	StoreID    string
	ProductID  string
	Counted    decimal.Decimal
}

// RecordReset records a counted inventory for a product: a zeroing
// adjustment followed by a zero-cost reset entry carrying the counted
// quantity. The reset entry is the clean point FIFO replays restart from.
func (uc *StockUseCase) RecordReset(ctx context.Context, input RecordResetInput) (*domain.LedgerEntry, error) {
	if input.Counted.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()

	at := now
	if input.OccurredAt != nil {
		at = input.OccurredAt.UTC()
	}

	reset := &domain.LedgerEntry{
		StoreID:     input.StoreID,
		ProductID:   input.ProductID,
		Stream:      domain.StreamStock,
		Kind:        domain.KindReset,
		Amount:      input.Counted,
		UnitPrice:   decimal.Zero,
		Description: "inventory reset",
		OccurredAt:  at,
		CreatedAt:   now,
	}

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		current, err := uc.stockRepo.Adjust(ctx, tx, input.StoreID, input.ProductID, decimal.Zero, now)
		if err != nil {
			return err
		}

		// Zero out whatever the ledger currently holds so the reset's
		// counted quantity stands alone.
		if !current.IsZero() {
			zeroing := &domain.LedgerEntry{
				StoreID:     input.StoreID,
				ProductID:   input.ProductID,
				Stream:      domain.StreamStock,
				Kind:        domain.KindAdjustment,
				Amount:      current.Neg(),
				Description: "inventory reset zeroing",
				OccurredAt:  at,
				CreatedAt:   now,
			}
			if err := uc.maintainer.Insert(ctx, tx, zeroing); err != nil {
				return err
			}
		}

		if err := uc.maintainer.Insert(ctx, tx, reset); err != nil {
			return err
		}

		if _, err := uc.stockRepo.Adjust(ctx, tx, input.StoreID, input.ProductID, input.Counted.Sub(current), now); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, input.StoreID, input.ProductID)

	if uc.metrics != nil {
		uc.metrics.StockResets.Inc()
	}

	return reset, nil
}

func (uc *StockUseCase) emitStockNegative(ctx context.Context, tx Transaction, storeID, productID string, quantity decimal.Decimal, now time.Time) error {
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

func (uc *StockUseCase) invalidate(ctx context.Context, storeID, productID string) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, stockCacheKey(storeID, productID))
	}
}

func stockCacheKey(storeID, productID string) string {
	return "stock:" + storeID + ":" + productID
}
