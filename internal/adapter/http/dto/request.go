package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// BillItemRequest represents one product line on a bill request.
type BillItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (r BillItemRequest) toDomain() domain.BillItem {
	return domain.BillItem{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
	}
}

// RecordBillRequest represents a request to record a bill.
type RecordBillRequest struct {
	Kind       string            `json:"kind"`
	OccurredAt *time.Time        `json:"occurred_at,omitempty"`
	Items      []BillItemRequest `json:"items"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordBillRequest) ToUseCaseInput(storeID string) usecase.RecordBillInput {
	items := make([]domain.BillItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = item.toDomain()
	}
	return usecase.RecordBillInput{
		StoreID:    storeID,
		Kind:       domain.BillKind(r.Kind),
		OccurredAt: r.OccurredAt,
		Items:      items,
	}
}

// AmendBillRequest represents a request to replace a bill's line items.
type AmendBillRequest struct {
	Items []BillItemRequest `json:"items"`
}

// ToUseCaseInput converts to use case input.
func (r *AmendBillRequest) ToUseCaseInput(storeID, billID string) usecase.AmendBillInput {
	items := make([]domain.BillItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = item.toDomain()
	}
	return usecase.AmendBillInput{
		StoreID: storeID,
		BillID:  billID,
		Items:   items,
	}
}

// CashAdjustmentRequest represents a manual cash correction.
type CashAdjustmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Link        *string         `json:"link,omitempty"`
	OccurredAt  *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CashAdjustmentRequest) ToUseCaseInput(storeID string) usecase.RecordAdjustmentInput {
	return usecase.RecordAdjustmentInput{
		StoreID:     storeID,
		Amount:      r.Amount,
		Description: r.Description,
		Link:        r.Link,
		OccurredAt:  r.OccurredAt,
	}
}

// SalaryRequest represents a salary payment.
type SalaryRequest struct {
	EmployeeID string          `json:"employee_id"`
	Base       decimal.Decimal `json:"base"`
	Bonus      decimal.Decimal `json:"bonus"`
	Deductions decimal.Decimal `json:"deductions"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SalaryRequest) ToUseCaseInput(storeID string) usecase.RecordSalaryInput {
	return usecase.RecordSalaryInput{
		StoreID:    storeID,
		EmployeeID: r.EmployeeID,
		Base:       r.Base,
		Bonus:      r.Bonus,
		Deductions: r.Deductions,
		OccurredAt: r.OccurredAt,
	}
}

// InstallmentRequest represents an installment deposit or payment.
type InstallmentRequest struct {
	BillID     string          `json:"bill_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *InstallmentRequest) ToUseCaseInput(storeID string) usecase.RecordInstallmentInput {
	return usecase.RecordInstallmentInput{
		StoreID:    storeID,
		BillID:     r.BillID,
		Amount:     r.Amount,
		OccurredAt: r.OccurredAt,
	}
}

// StockAdjustmentRequest represents a manual stock correction.
type StockAdjustmentRequest struct {
	ProductID   string          `json:"product_id"`
	Delta       decimal.Decimal `json:"delta"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Description string          `json:"description,omitempty"`
	OccurredAt  *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *StockAdjustmentRequest) ToUseCaseInput(storeID string) usecase.RecordStockAdjustmentInput {
	return usecase.RecordStockAdjustmentInput{
		StoreID:     storeID,
		ProductID:   r.ProductID,
		Delta:       r.Delta,
		UnitCost:    r.UnitCost,
		Description: r.Description,
		OccurredAt:  r.OccurredAt,
	}
}

// StockResetRequest represents a counted inventory reset.
type StockResetRequest struct {
	ProductID  string          `json:"product_id"`
	Counted    decimal.Decimal `json:"counted"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *StockResetRequest) ToUseCaseInput(storeID string) usecase.RecordResetInput {
	return usecase.RecordResetInput{
		StoreID:    storeID,
		ProductID:  r.ProductID,
		Counted:    r.Counted,
		OccurredAt: r.OccurredAt,
	}
}
