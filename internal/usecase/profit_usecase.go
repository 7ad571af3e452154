package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// ProfitUseCase computes realized profit by replaying the stock stream and
// matching sales against purchase lots in FIFO order. Reports are computed
// per query; nothing is maintained incrementally.
type ProfitUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewProfitUseCase creates a new ProfitUseCase.
func NewProfitUseCase(ledgerRepo LedgerRepository, metrics *metrics.Metrics) *ProfitUseCase {
	return &ProfitUseCase{ledgerRepo: ledgerRepo, metrics: metrics}
}

// ComputeProfitInput represents input for a profit report.
type ComputeProfitInput struct {
	Start     time.Time
	End       time.Time
	StoreID   string
	ProductID string
}

// ComputeProfit builds the FIFO profit report for one product over
// [Start, End). Lot reconstruction restarts from the most recent reset
// before the window, or from the product's first movement when none exists,
// and the replay extends past End so borrowing can reach later purchases.
func (uc *ProfitUseCase) ComputeProfit(ctx context.Context, input ComputeProfitInput) (*domain.ProfitReport, error) {
	if !input.Start.Before(input.End) {
		return nil, domain.ErrInvalidDateRange
	}

	started := time.Now()
	p := domain.StockPartition(input.StoreID, input.ProductID)

	from := domain.OrderKey{}
	resetKey, err := uc.ledgerRepo.LastResetKey(ctx, p, input.Start)
	if err != nil {
		return nil, err
	}
	if resetKey != nil {
		from = *resetKey
	}

	entries, err := uc.ledgerRepo.ListFrom(ctx, p, from)
	if err != nil {
		return nil, err
	}

	report := replayProfit(entries, input.Start, input.End)
	report.StoreID = input.StoreID
	report.ProductID = input.ProductID

	if uc.metrics != nil {
		uc.metrics.ProfitReports.Inc()
		uc.metrics.ProfitReportDuration.Observe(time.Since(started).Seconds())
		if !report.CostBasisComplete {
			uc.metrics.IncompleteCostBasis.Inc()
		}
	}

	return &report, nil
}

// TopProductsInput represents input for a top-products ranking.
type TopProductsInput struct {
	Start   time.Time
	End     time.Time
	StoreID string
	Limit   int
}

// TopProducts runs the profit engine once per product sold in the window
// and ranks by total profit.
func (uc *ProfitUseCase) TopProducts(ctx context.Context, input TopProductsInput) ([]*domain.ProductProfit, error) {
	if !input.Start.Before(input.End) {
		return nil, domain.ErrInvalidDateRange
	}

	if input.Limit <= 0 {
		input.Limit = 10
	}

	productIDs, err := uc.ledgerRepo.ProductsWithSales(ctx, input.StoreID, input.Start, input.End)
	if err != nil {
		return nil, err
	}

	ranked := make([]*domain.ProductProfit, 0, len(productIDs))
	for _, productID := range productIDs {
		report, err := uc.ComputeProfit(ctx, ComputeProfitInput{
			StoreID:   input.StoreID,
			ProductID: productID,
			Start:     input.Start,
			End:       input.End,
		})
		if err != nil {
			return nil, err
		}

		ranked = append(ranked, &domain.ProductProfit{
			ProductID:   productID,
			TotalProfit: report.TotalProfit,
			UnitsSold:   report.TotalUnitsSold,
			SalesValue:  report.TotalSalesValue,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalProfit.GreaterThan(ranked[j].TotalProfit)
	})

	if len(ranked) > input.Limit {
		ranked = ranked[:input.Limit]
	}

	return ranked, nil
}
