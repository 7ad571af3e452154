package integration

import (
	"testing"

	"github.com/rs/zerolog"

	repo "github.com/iho/storeledger/internal/adapter/repository/postgres"
	"github.com/iho/storeledger/internal/usecase"
	"github.com/iho/storeledger/tests/testutil"
)

// stack wires the full write path against a real database.
type stack struct {
	db         *testutil.TestDB
	ledgerRepo *repo.LedgerRepository
	stockRepo  *repo.StockLevelRepository
	billRepo   *repo.BillRepository
	outboxRepo *repo.OutboxRepository
	billUC     *usecase.BillUseCase
	cashUC     *usecase.CashUseCase
	stockUC    *usecase.StockUseCase
	entryUC    *usecase.EntryUseCase
	profitUC   *usecase.ProfitUseCase
	ledgerUC   *usecase.LedgerUseCase
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	pool := db.Pool
	txManager := repo.NewTxManager(pool)
	ledgerRepo := repo.NewLedgerRepository(pool)
	stockRepo := repo.NewStockLevelRepository(pool)
	billRepo := repo.NewBillRepository(pool)
	outboxRepo := repo.NewOutboxRepository(pool)
	idGen := repo.NewULIDGenerator()
	retrier := repo.NewRetrier(zerolog.Nop())
	maintainer := usecase.NewBalanceMaintainer(ledgerRepo)

	return &stack{
		db:         db,
		ledgerRepo: ledgerRepo,
		stockRepo:  stockRepo,
		billRepo:   billRepo,
		outboxRepo: outboxRepo,
		billUC:     usecase.NewBillUseCase(txManager, retrier, maintainer, ledgerRepo, billRepo, stockRepo, outboxRepo, idGen, nil, nil),
		cashUC:     usecase.NewCashUseCase(txManager, retrier, maintainer, ledgerRepo),
		stockUC:    usecase.NewStockUseCase(txManager, retrier, maintainer, stockRepo, outboxRepo, idGen, nil, nil),
		entryUC:    usecase.NewEntryUseCase(txManager, retrier, maintainer, ledgerRepo, stockRepo, outboxRepo, idGen, nil),
		profitUC:   usecase.NewProfitUseCase(ledgerRepo, nil),
		ledgerUC:   usecase.NewLedgerUseCase(ledgerRepo),
	}
}
