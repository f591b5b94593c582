package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyConfirmed      = errors.New("invoice is already confirmed")
	ErrNonPositiveTotal      = errors.New("invoice total must be greater than zero")
	ErrPaymentMethodRequired = errors.New("invoice has no payment method")
	ErrInvoiceNotOpen        = errors.New("invoice is confirmed and can no longer change")
	ErrInvalidOperationType  = errors.New("operation type id must be greater than zero")
	ErrOperationTypeChange   = errors.New("invoice operation type cannot be changed")
)

// Invoice models the checkout invoice aggregate. Number is assigned by the
// repository on first save. Confirmed only ever moves from false to true.
type Invoice struct {
	Number          int64
	CustomerCPF     *string
	PaymentMethodID *int64
	OperationTypeID int64
	Confirmed       bool
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
}

// NewInvoice constructs an open invoice with a zero total.
func NewInvoice(operationTypeID int64, customerCPF *string, paymentMethodID *int64) (*Invoice, error) {
	invoice := &Invoice{
		CustomerCPF:     customerCPF,
		PaymentMethodID: paymentMethodID,
		OperationTypeID: operationTypeID,
		Confirmed:       false,
		TotalAmount:     decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Validate enforces invariants on the aggregate.
func (i *Invoice) Validate() error {
	if i.OperationTypeID <= 0 {
		return ErrInvalidOperationType
	}
	return nil
}

// EnsureOpen guards mutations that are only legal before confirmation.
func (i *Invoice) EnsureOpen() error {
	if i.Confirmed {
		return ErrInvoiceNotOpen
	}
	return nil
}

// CanConfirm runs the confirmation preconditions in their fixed order:
// already confirmed, then non-positive total, then missing payment method.
func (i *Invoice) CanConfirm() error {
	if i.Confirmed {
		return ErrAlreadyConfirmed
	}
	if !i.TotalAmount.IsPositive() {
		return ErrNonPositiveTotal
	}
	if i.PaymentMethodID == nil {
		return ErrPaymentMethodRequired
	}
	return nil
}

// Confirm flips the one-way confirmed flag after rechecking preconditions.
func (i *Invoice) Confirm() error {
	if err := i.CanConfirm(); err != nil {
		return err
	}
	i.Confirmed = true
	return nil
}
