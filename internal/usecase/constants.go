package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction.
	// A forward walk that cannot finish within it is rolled back and retried whole.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// StockLevelCacheTTL bounds staleness of cached projection reads.
	StockLevelCacheTTL = 30 * time.Second
)
