package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// StockLevelRepository implements usecase.StockLevelRepository on the
// stock_levels projection table.
type StockLevelRepository struct {
	pool *pgxpool.Pool
}

// NewStockLevelRepository creates a new StockLevelRepository.
func NewStockLevelRepository(pool *pgxpool.Pool) *StockLevelRepository {
	return &StockLevelRepository{pool: pool}
}

// Adjust upserts the level, adding delta, and returns the new quantity.
func (r *StockLevelRepository) Adjust(ctx context.Context, tx usecase.Transaction, storeID, productID string, delta decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	row := txOf(tx).QueryRow(ctx, `
		INSERT INTO stock_levels (store_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING quantity`,
		storeID, productID, decimalToNumeric(delta), timeToPgTimestamptz(now),
	)

	var quantity pgtype.Numeric
	if err := row.Scan(&quantity); err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(quantity), nil
}

// Get retrieves the level for a product.
func (r *StockLevelRepository) Get(ctx context.Context, storeID, productID string) (*domain.StockLevel, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT store_id, product_id, quantity, updated_at
		FROM stock_levels
		WHERE store_id = $1 AND product_id = $2`,
		storeID, productID,
	)

	level, err := scanStockLevel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return level, nil
}

// ListByStore lists levels for a store ordered by product ID.
func (r *StockLevelRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT store_id, product_id, quantity, updated_at
		FROM stock_levels
		WHERE store_id = $1
		ORDER BY product_id
		LIMIT $2 OFFSET $3`,
		storeID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []*domain.StockLevel
	for rows.Next() {
		level, err := scanStockLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

func scanStockLevel(row rowScanner) (*domain.StockLevel, error) {
	var (
		level     domain.StockLevel
		quantity  pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(&level.StoreID, &level.ProductID, &quantity, &updatedAt); err != nil {
		return nil, err
	}

	level.Quantity = numericToDecimal(quantity)
	level.UpdatedAt = updatedAt.Time

	return &level, nil
}
