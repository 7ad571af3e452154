package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/adapter/http/handler"
	"github.com/iho/storeledger/internal/adapter/http/middleware"
	"github.com/iho/storeledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BillHandler      *handler.BillHandler
	CashHandler      *handler.CashHandler
	StockHandler     *handler.StockHandler
	EntryHandler     *handler.EntryHandler
	ReportHandler    *handler.ReportHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
	RateLimit        float64
	RateBurst        int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1/stores/{storeID}", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Bills
		r.Route("/bills", func(r chi.Router) {
			r.Post("/", cfg.BillHandler.Record)
			r.Get("/", cfg.BillHandler.List)
			r.Get("/{billID}", cfg.BillHandler.Get)
			r.Put("/{billID}", cfg.BillHandler.Amend)
		})

		// Cash stream
		r.Route("/cash", func(r chi.Router) {
			r.Post("/adjustments", cfg.CashHandler.RecordAdjustment)
			r.Post("/salaries", cfg.CashHandler.RecordSalary)
			r.Post("/installments", cfg.CashHandler.RecordInstallment)
			r.Get("/balance", cfg.CashHandler.Balance)
		})

		// Stock stream
		r.Route("/stock", func(r chi.Router) {
			r.Post("/adjustments", cfg.StockHandler.RecordAdjustment)
			r.Post("/resets", cfg.StockHandler.RecordReset)
			r.Get("/", cfg.StockHandler.List)
			r.Get("/{productID}", cfg.StockHandler.Get)
		})

		// Raw entries
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/balance", cfg.EntryHandler.Balance)
			r.Get("/{entryID}", cfg.EntryHandler.Get)
			r.Delete("/{entryID}", cfg.EntryHandler.Delete)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/profit", cfg.ReportHandler.Profit)
			r.Get("/top-products", cfg.ReportHandler.TopProducts)
		})

		// Ledger maintenance
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
