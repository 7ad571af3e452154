package domain

import "errors"

var (
	// Entry errors
	ErrEntryNotFound  = errors.New("ledger entry not found")
	ErrInvalidAmount  = errors.New("amount must be non-zero")
	ErrStreamMismatch = errors.New("entry kind does not belong to stream")
	ErrMissingStore   = errors.New("store id is required")
	ErrMissingProduct = errors.New("product id is required on the stock stream")

	// Bill errors
	ErrBillNotFound    = errors.New("bill not found")
	ErrEmptyBill       = errors.New("bill must have at least one line item")
	ErrInvalidQuantity = errors.New("line item quantity must be positive")
	ErrInvalidPrice    = errors.New("line item price must not be negative")
	ErrUnknownBillKind = errors.New("unknown bill kind")

	// Ledger errors
	ErrInvariantViolation = errors.New("running total inconsistent with prefix sum")

	// Report errors
	ErrInvalidDateRange = errors.New("start must be before end")
)
