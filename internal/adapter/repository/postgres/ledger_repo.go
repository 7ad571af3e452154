package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const entryColumns = `id, store_id, stream, product_id, kind, occurred_at, amount, unit_price, running_total, link, description, created_at`

// LedgerRepository implements usecase.LedgerRepository on the
// ledger_entries table. Both streams share the table; a partition is the
// (store_id, stream, product_id) triple, with product_id empty on the cash
// stream.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func txOf(tx usecase.Transaction) pgx.Tx {
	return tx.(*Tx).PgxTx()
}

// Insert stores the entry and assigns its database ID.
func (r *LedgerRepository) Insert(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	row := txOf(tx).QueryRow(ctx, `
		INSERT INTO ledger_entries
			(store_id, stream, product_id, kind, occurred_at, amount, unit_price, running_total, link, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		entry.StoreID,
		string(entry.Stream),
		entry.ProductID,
		string(entry.Kind),
		timeToPgTimestamptz(entry.OccurredAt),
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.UnitPrice),
		decimalToNumeric(entry.RunningTotal),
		stringToPgText(entry.Link),
		entry.Description,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return row.Scan(&entry.ID)
}

// GetByID retrieves an entry by ID, scoped to a store.
func (r *LedgerRepository) GetByID(ctx context.Context, storeID string, id int64) (*domain.LedgerEntry, error) {
	return r.getByID(ctx, r.pool, storeID, id, "")
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, storeID string, id int64) (*domain.LedgerEntry, error) {
	return r.getByID(ctx, txOf(tx), storeID, id, " FOR UPDATE")
}

func (r *LedgerRepository) getByID(ctx context.Context, q dbtx, storeID string, id int64, suffix string) (*domain.LedgerEntry, error) {
	row := q.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE id = $1 AND store_id = $2`+suffix,
		id, storeID,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// SetAmount rewrites an entry's amount and unit price in place.
func (r *LedgerRepository) SetAmount(ctx context.Context, tx usecase.Transaction, id int64, amount, unitPrice decimal.Decimal) error {
	tag, err := txOf(tx).Exec(ctx, `
		UPDATE ledger_entries SET amount = $2, unit_price = $3 WHERE id = $1`,
		id, decimalToNumeric(amount), decimalToNumeric(unitPrice),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// SetRunningTotal rewrites an entry's cached running total.
func (r *LedgerRepository) SetRunningTotal(ctx context.Context, tx usecase.Transaction, id int64, total decimal.Decimal) error {
	tag, err := txOf(tx).Exec(ctx, `
		UPDATE ledger_entries SET running_total = $2 WHERE id = $1`,
		id, decimalToNumeric(total),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *LedgerRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := txOf(tx).Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// PredecessorTotal returns the running total of the entry with the largest
// order key strictly below `before`, or zero when the prefix is empty.
func (r *LedgerRepository) PredecessorTotal(ctx context.Context, tx usecase.Transaction, p domain.Partition, before domain.OrderKey) (decimal.Decimal, error) {
	row := txOf(tx).QueryRow(ctx, `
		SELECT running_total
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND product_id = $3
		  AND (occurred_at, id) < ($4, $5)
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1`,
		p.StoreID, string(p.Stream), p.ProductID,
		timeToPgTimestamptz(before.OccurredAt), before.ID,
	)

	var total pgtype.Numeric
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}

// ListFromForUpdate returns the partition suffix at or after `from`, in order
// key order, locking every returned row until the transaction ends. The lock
// is what serializes concurrent forward walks over the same partition.
func (r *LedgerRepository) ListFromForUpdate(ctx context.Context, tx usecase.Transaction, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error) {
	return r.listFrom(ctx, txOf(tx), p, from, " FOR UPDATE")
}

// ListFrom returns the partition suffix at or after `from` without locks.
func (r *LedgerRepository) ListFrom(ctx context.Context, p domain.Partition, from domain.OrderKey) ([]*domain.LedgerEntry, error) {
	return r.listFrom(ctx, r.pool, p, from, "")
}

func (r *LedgerRepository) listFrom(ctx context.Context, q dbtx, p domain.Partition, from domain.OrderKey, suffix string) ([]*domain.LedgerEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND product_id = $3
		  AND (occurred_at, id) >= ($4, $5)
		ORDER BY occurred_at, id`+suffix,
		p.StoreID, string(p.Stream), p.ProductID,
		timeToPgTimestamptz(from.OccurredAt), from.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByPartition lists a page of a partition in order-key order.
func (r *LedgerRepository) ListByPartition(ctx context.Context, p domain.Partition, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND product_id = $3
		ORDER BY occurred_at, id
		LIMIT $4 OFFSET $5`,
		p.StoreID, string(p.Stream), p.ProductID, int32(limit), int32(offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByLink returns a store's entries on one stream linked to a document.
func (r *LedgerRepository) ListByLink(ctx context.Context, tx usecase.Transaction, storeID, link string, stream domain.Stream) ([]*domain.LedgerEntry, error) {
	rows, err := txOf(tx).Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND link = $3
		ORDER BY occurred_at, id`,
		storeID, string(stream), link,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LatestTotal returns the newest running total of a partition, optionally as
// of a business timestamp. An empty partition has total zero.
func (r *LedgerRepository) LatestTotal(ctx context.Context, p domain.Partition, asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT running_total
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND product_id = $3`
	args := []any{p.StoreID, string(p.Stream), p.ProductID}

	if asOf != nil {
		query += ` AND occurred_at <= $4`
		args = append(args, timeToPgTimestamptz(*asOf))
	}
	query += ` ORDER BY occurred_at DESC, id DESC LIMIT 1`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}

// LastResetKey returns the order key of the most recent reset entry occurring
// before the given time, or nil when the partition has none.
func (r *LedgerRepository) LastResetKey(ctx context.Context, p domain.Partition, before time.Time) (*domain.OrderKey, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT occurred_at, id
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND product_id = $3
		  AND kind = $4 AND occurred_at < $5
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1`,
		p.StoreID, string(p.Stream), p.ProductID,
		string(domain.KindReset), timeToPgTimestamptz(before),
	)

	var (
		occurredAt pgtype.Timestamptz
		id         int64
	)
	if err := row.Scan(&occurredAt, &id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.OrderKey{OccurredAt: occurredAt.Time, ID: id}, nil
}

// ProductsWithSales lists product IDs with at least one sale in [start, end).
func (r *LedgerRepository) ProductsWithSales(ctx context.Context, storeID string, start, end time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT product_id
		FROM ledger_entries
		WHERE store_id = $1 AND stream = $2 AND amount < 0
		  AND occurred_at >= $3 AND occurred_at < $4
		ORDER BY product_id`,
		storeID, string(domain.StreamStock),
		timeToPgTimestamptz(start), timeToPgTimestamptz(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var productIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		productIDs = append(productIDs, id)
	}
	return productIDs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		entry        domain.LedgerEntry
		stream       string
		kind         string
		occurredAt   pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		amount       pgtype.Numeric
		unitPrice    pgtype.Numeric
		runningTotal pgtype.Numeric
		link         pgtype.Text
	)

	err := row.Scan(
		&entry.ID,
		&entry.StoreID,
		&stream,
		&entry.ProductID,
		&kind,
		&occurredAt,
		&amount,
		&unitPrice,
		&runningTotal,
		&link,
		&entry.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Stream = domain.Stream(stream)
	entry.Kind = domain.EntryKind(kind)
	entry.OccurredAt = occurredAt.Time
	entry.CreatedAt = createdAt.Time
	entry.Amount = numericToDecimal(amount)
	entry.UnitPrice = numericToDecimal(unitPrice)
	entry.RunningTotal = numericToDecimal(runningTotal)
	entry.Link = pgTextToString(link)

	return &entry, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
