package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when a partition's cached running
	// totals diverge from its recomputed prefix sums.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: running totals diverge from prefix sums")
)

// ConsistencyReport describes the outcome of a prefix-sum scan.
type ConsistencyReport struct {
	Partition   domain.Partition
	Checked     int
	Consistent  bool
	FirstBadID  int64
	ExpectedSum decimal.Decimal
	RecordedSum decimal.Decimal
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledgerRepo: ledgerRepo}
}

// CheckConsistency recomputes a partition's prefix sums from scratch and
// compares them against the cached running totals. Any divergence means a
// write path escaped the balance maintainer.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, p domain.Partition) (*ConsistencyReport, error) {
	entries, err := uc.ledgerRepo.ListFrom(ctx, p, domain.OrderKey{})
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{Partition: p, Consistent: true}

	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Amount)
		report.Checked++

		if !running.Equal(e.RunningTotal) {
			report.Consistent = false
			report.FirstBadID = e.ID
			report.ExpectedSum = running
			report.RecordedSum = e.RunningTotal
			return report, ErrInconsistentLedger
		}
	}

	return report, nil
}
