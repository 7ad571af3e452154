package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// EntryUseCase handles reads and deletion of raw ledger entries.
type EntryUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	maintainer *BalanceMaintainer
	ledgerRepo LedgerRepository
	stockRepo  StockLevelRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	cache      Cache
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	retrier Retrier,
	maintainer *BalanceMaintainer,
	ledgerRepo LedgerRepository,
	stockRepo StockLevelRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:  txManager,
		retrier:    retrier,
		maintainer: maintainer,
		ledgerRepo: ledgerRepo,
		stockRepo:  stockRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		cache:      cache,
	}
}

// GetEntry retrieves an entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error) {
	return uc.ledgerRepo.GetByID(ctx, storeID, id)
}

// ListEntriesInput represents input for listing entries of one partition.
type ListEntriesInput struct {
	Partition domain.Partition
	Limit     int
	Offset    int
}

// ListEntries lists entries of a partition in order-key order.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.ledgerRepo.ListByPartition(ctx, input.Partition, input.Limit, input.Offset)
}

// HistoricalBalance returns a partition's running total as of a point in time.
func (uc *EntryUseCase) HistoricalBalance(ctx context.Context, p domain.Partition, at time.Time) (decimal.Decimal, error) {
	return uc.ledgerRepo.LatestTotal(ctx, p, &at)
}

// DeleteEntry removes an entry and bubble-corrects its partition. Stock
// deletions also compensate the projection.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, storeID string, id int64) error {
	now := time.Now().UTC()

	var deleted *domain.LedgerEntry

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		entry, err := uc.maintainer.Delete(ctx, tx, storeID, id)
		if err != nil {
			return err
		}

		if entry.Stream == domain.StreamStock {
			quantity, err := uc.stockRepo.Adjust(ctx, tx, entry.StoreID, entry.ProductID, entry.Amount.Neg(), now)
			if err != nil {
				return err
			}
			if quantity.IsNegative() {
				event := &domain.OutboxEvent{
					ID:            uc.idGen.Generate(),
					AggregateID:   entry.StoreID + ":" + entry.ProductID,
					AggregateType: domain.AggregateTypeStock,
					EventType:     domain.EventTypeStockNegative,
					Payload: map[string]any{
						"store_id":   entry.StoreID,
						"product_id": entry.ProductID,
						"quantity":   quantity.String(),
					},
					CreatedAt: now,
				}
				if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
					return err
				}
			}
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   entry.StoreID,
			AggregateType: domain.AggregateTypeEntry,
			EventType:     domain.EventTypeEntryDeleted,
			Payload: map[string]any{
				"entry_id": entry.ID,
				"store_id": entry.StoreID,
				"stream":   string(entry.Stream),
				"amount":   entry.Amount.String(),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		deleted = entry
		return nil
	})
	if err != nil {
		return err
	}

	if deleted != nil && deleted.Stream == domain.StreamStock && uc.cache != nil {
		_ = uc.cache.Delete(ctx, stockCacheKey(deleted.StoreID, deleted.ProductID))
	}

	return nil
}
