package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// CashUseCase translates cash-only business actions (manual adjustments,
// salary payments, installments) into cash-stream entries.
type CashUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	maintainer *BalanceMaintainer
	ledgerRepo LedgerRepository
}

// NewCashUseCase creates a new CashUseCase.
func NewCashUseCase(
	txManager TransactionManager,
	retrier Retrier,
	maintainer *BalanceMaintainer,
	ledgerRepo LedgerRepository,
) *CashUseCase {
	return &CashUseCase{
		txManager:  txManager,
		retrier:    retrier,
		maintainer: maintainer,
		ledgerRepo: ledgerRepo,
	}
}

// RecordAdjustmentInput represents input for a manual cash adjustment.
type RecordAdjustmentInput struct {
	OccurredAt  *time.Time
	Link        *string
	StoreID     string
	Description string
	Amount      decimal.Decimal
}

// RecordAdjustment appends one signed cash entry with no mandatory link.
func (uc *CashUseCase) RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*domain.LedgerEntry, error) {
	return uc.append(ctx, domain.KindAdjustment, input.StoreID, input.Amount, input.Description, input.Link, input.OccurredAt)
}

// RecordSalaryInput represents input for a salary payment.
type RecordSalaryInput struct {
	OccurredAt *time.Time
	StoreID    string
	EmployeeID string
	Base       decimal.Decimal
	Bonus      decimal.Decimal
	Deductions decimal.Decimal
}

// RecordSalary appends one cash entry for a salary payment. The net pay is
// base plus bonus minus deductions; cash moves out, so the entry amount is
// its negation.
func (uc *CashUseCase) RecordSalary(ctx context.Context, input RecordSalaryInput) (*domain.LedgerEntry, error) {
	net := input.Base.Add(input.Bonus).Sub(input.Deductions)
	link := input.EmployeeID
	return uc.append(ctx, domain.KindSalary, input.StoreID, net.Neg(), "salary", &link, input.OccurredAt)
}

// RecordInstallmentInput represents input for an installment deposit or payment.
type RecordInstallmentInput struct {
	OccurredAt *time.Time
	StoreID    string
	BillID     string
	Amount     decimal.Decimal
}

// RecordInstallment appends one cash entry linked to the originating bill.
func (uc *CashUseCase) RecordInstallment(ctx context.Context, input RecordInstallmentInput) (*domain.LedgerEntry, error) {
	link := input.BillID
	return uc.append(ctx, domain.KindInstallment, input.StoreID, input.Amount, "", &link, input.OccurredAt)
}

// Balance returns the cash balance of a store, optionally as of a point in
// time. It reads the latest cached running total; no summation happens.
func (uc *CashUseCase) Balance(ctx context.Context, storeID string, asOf *time.Time) (decimal.Decimal, error) {
	return uc.ledgerRepo.LatestTotal(ctx, domain.CashPartition(storeID), asOf)
}

func (uc *CashUseCase) append(ctx context.Context, kind domain.EntryKind, storeID string, amount decimal.Decimal, description string, link *string, occurredAt *time.Time) (*domain.LedgerEntry, error) {
	now := time.Now().UTC()

	at := now
	if occurredAt != nil {
		at = occurredAt.UTC()
	}

	entry := &domain.LedgerEntry{
		StoreID:     storeID,
		Stream:      domain.StreamCash,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Link:        link,
		OccurredAt:  at,
		CreatedAt:   now,
	}

	err := uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.maintainer.Insert(ctx, tx, entry); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}
