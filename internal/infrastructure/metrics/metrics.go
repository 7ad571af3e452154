package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Bill metrics
	BillsRecorded prometheus.Counter
	BillsAmended  prometheus.Counter
	BillDuration  prometheus.Histogram
	BillAmount    prometheus.Histogram

	// Stock metrics
	StockAdjustments prometheus.Counter
	StockResets      prometheus.Counter
	NegativeStock    *prometheus.CounterVec

	// Profit report metrics
	ProfitReports        prometheus.Counter
	ProfitReportDuration prometheus.Histogram
	IncompleteCostBasis  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Bill metrics
		BillsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_bills_recorded_total",
			Help: "Total number of bills recorded",
		}),
		BillsAmended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_bills_amended_total",
			Help: "Total number of bills amended",
		}),
		BillDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeledger_bill_duration_seconds",
			Help:    "Duration of bill write operations",
			Buckets: prometheus.DefBuckets,
		}),
		BillAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeledger_bill_amount",
			Help:    "Bill totals",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Stock metrics
		StockAdjustments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_stock_adjustments_total",
			Help: "Total number of manual stock adjustments",
		}),
		StockResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_stock_resets_total",
			Help: "Total number of inventory resets",
		}),
		NegativeStock: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_negative_stock_total",
				Help: "Total number of writes that left a product below zero",
			},
			[]string{"store_id"},
		),

		// Profit report metrics
		ProfitReports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_profit_reports_total",
			Help: "Total number of profit reports computed",
		}),
		ProfitReportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeledger_profit_report_duration_seconds",
			Help:    "Duration of profit report replays",
			Buckets: prometheus.DefBuckets,
		}),
		IncompleteCostBasis: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_incomplete_cost_basis_total",
			Help: "Total number of profit reports that fell back to estimated costs",
		}),
	}
}
