package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// BalanceMaintainer owns every write of LedgerEntry.RunningTotal. After
// every committed write, each entry's running total equals the sum of
// amounts over its partition up to and including its own order key.
//
// All three operations run inside the caller's transaction so a business
// action touching both streams commits or aborts as one unit. The forward
// walk locks the partition suffix for update; two writers hitting the same
// partition serialize on those row locks, writers on different partitions
// never contend.
type BalanceMaintainer struct {
	ledgerRepo LedgerRepository
}

// NewBalanceMaintainer creates a new BalanceMaintainer.
func NewBalanceMaintainer(ledgerRepo LedgerRepository) *BalanceMaintainer {
	return &BalanceMaintainer{ledgerRepo: ledgerRepo}
}

// Insert stores a new entry and settles its running total from its
// predecessor. If the entry is backdated, so that committed entries with a
// greater order key exist, the totals of that whole suffix are recomputed in
// the same transaction. Appending at the tail, the common case, walks only
// the new entry itself.
func (m *BalanceMaintainer) Insert(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := m.ledgerRepo.Insert(ctx, tx, entry); err != nil {
		return err
	}

	return m.recomputeFrom(ctx, tx, entry.Partition(), entry.OrderKey())
}

// UpdateAmount changes an entry's amount in place and bubble-corrects every
// entry after it. Calling it with the stored amount is a no-op.
func (m *BalanceMaintainer) UpdateAmount(ctx context.Context, tx Transaction, storeID string, id int64, amount, unitPrice decimal.Decimal) error {
	entry, err := m.ledgerRepo.GetByIDForUpdate(ctx, tx, storeID, id)
	if err != nil {
		return err
	}

	if entry.Amount.Equal(amount) && entry.UnitPrice.Equal(unitPrice) {
		return nil
	}

	if err := m.ledgerRepo.SetAmount(ctx, tx, id, amount, unitPrice); err != nil {
		return err
	}

	return m.recomputeFrom(ctx, tx, entry.Partition(), entry.OrderKey())
}

// Delete removes an entry and bubble-corrects the remainder of its
// partition. The deleted entry's successors pick up their totals from its
// predecessor, restoring the sequence to what it would have been had the
// entry never existed.
func (m *BalanceMaintainer) Delete(ctx context.Context, tx Transaction, storeID string, id int64) (*domain.LedgerEntry, error) {
	entry, err := m.ledgerRepo.GetByIDForUpdate(ctx, tx, storeID, id)
	if err != nil {
		return nil, err
	}

	if err := m.ledgerRepo.Delete(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := m.recomputeFrom(ctx, tx, entry.Partition(), entry.OrderKey()); err != nil {
		return nil, err
	}

	return entry, nil
}

// recomputeFrom rewrites running totals for every entry with order key >=
// from, one at a time in order, seeding the accumulator from the
// predecessor's total. Rows whose stored total already matches are left
// untouched. Any error aborts the caller's transaction: a half-corrected
// suffix is worse than no correction at all.
func (m *BalanceMaintainer) recomputeFrom(ctx context.Context, tx Transaction, p domain.Partition, from domain.OrderKey) error {
	running, err := m.ledgerRepo.PredecessorTotal(ctx, tx, p, from)
	if err != nil {
		return err
	}

	entries, err := m.ledgerRepo.ListFromForUpdate(ctx, tx, p, from)
	if err != nil {
		return err
	}

	prev := from
	for i, e := range entries {
		if i > 0 && e.OrderKey().Less(prev) {
			return domain.ErrInvariantViolation
		}
		prev = e.OrderKey()

		running = running.Add(e.Amount)
		if running.Equal(e.RunningTotal) {
			continue
		}

		if err := m.ledgerRepo.SetRunningTotal(ctx, tx, e.ID, running); err != nil {
			return err
		}
		e.RunningTotal = running
	}

	return nil
}
