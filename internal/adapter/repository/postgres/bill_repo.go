package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// BillRepository implements usecase.BillRepository. Line items live in their
// own table and are replaced wholesale on update; the ledger entries keep the
// history, the document only reflects the current state.
type BillRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository creates a new BillRepository.
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

// Create stores the bill document and its line items.
func (r *BillRepository) Create(ctx context.Context, tx usecase.Transaction, bill *domain.Bill) error {
	pgxTx := txOf(tx)

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO bills (id, store_id, kind, total, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bill.ID,
		bill.StoreID,
		string(bill.Kind),
		decimalToNumeric(bill.Total),
		timeToPgTimestamptz(bill.OccurredAt),
		timeToPgTimestamptz(bill.CreatedAt),
		timeToPgTimestamptz(bill.UpdatedAt),
	)
	if err != nil {
		return err
	}

	return r.insertItems(ctx, pgxTx, bill)
}

// GetByID retrieves a bill with its items.
func (r *BillRepository) GetByID(ctx context.Context, storeID, id string) (*domain.Bill, error) {
	return r.getByID(ctx, r.pool, storeID, id, "")
}

// GetByIDForUpdate retrieves a bill with a FOR UPDATE lock on the document row.
func (r *BillRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, storeID, id string) (*domain.Bill, error) {
	return r.getByID(ctx, txOf(tx), storeID, id, " FOR UPDATE")
}

func (r *BillRepository) getByID(ctx context.Context, q dbtx, storeID, id, suffix string) (*domain.Bill, error) {
	row := q.QueryRow(ctx, `
		SELECT id, store_id, kind, total, occurred_at, created_at, updated_at
		FROM bills
		WHERE id = $1 AND store_id = $2`+suffix,
		id, storeID,
	)

	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}

	bill.Items, err = r.loadItems(ctx, q, bill.ID)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Update rewrites the bill document and replaces its line items.
func (r *BillRepository) Update(ctx context.Context, tx usecase.Transaction, bill *domain.Bill) error {
	pgxTx := txOf(tx)

	tag, err := pgxTx.Exec(ctx, `
		UPDATE bills SET total = $3, updated_at = $4
		WHERE id = $1 AND store_id = $2`,
		bill.ID,
		bill.StoreID,
		decimalToNumeric(bill.Total),
		timeToPgTimestamptz(bill.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}

	if _, err := pgxTx.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, bill.ID); err != nil {
		return err
	}

	return r.insertItems(ctx, pgxTx, bill)
}

// ListByStore lists bills for a store, newest first.
func (r *BillRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*domain.Bill, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, store_id, kind, total, occurred_at, created_at, updated_at
		FROM bills
		WHERE store_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		storeID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*domain.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, bill := range bills {
		if bill.Items, err = r.loadItems(ctx, r.pool, bill.ID); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func (r *BillRepository) insertItems(ctx context.Context, q dbtx, bill *domain.Bill) error {
	for _, item := range bill.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO bill_items (bill_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			bill.ID,
			item.ProductID,
			decimalToNumeric(item.Quantity),
			decimalToNumeric(item.UnitPrice),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *BillRepository) loadItems(ctx context.Context, q dbtx, billID string) ([]domain.BillItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, quantity, unit_price
		FROM bill_items
		WHERE bill_id = $1
		ORDER BY id`,
		billID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BillItem
	for rows.Next() {
		var (
			item      domain.BillItem
			quantity  pgtype.Numeric
			unitPrice pgtype.Numeric
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &quantity, &unitPrice); err != nil {
			return nil, err
		}
		item.Quantity = numericToDecimal(quantity)
		item.UnitPrice = numericToDecimal(unitPrice)
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanBill(row rowScanner) (*domain.Bill, error) {
	var (
		bill       domain.Bill
		kind       string
		total      pgtype.Numeric
		occurredAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	if err := row.Scan(&bill.ID, &bill.StoreID, &kind, &total, &occurredAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	bill.Kind = domain.BillKind(kind)
	bill.Total = numericToDecimal(total)
	bill.OccurredAt = occurredAt.Time
	bill.CreatedAt = createdAt.Time
	bill.UpdatedAt = updatedAt.Time

	return &bill, nil
}
