package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveQuantity = errors.New("line item quantity must be greater than zero")
	ErrMissingProduct      = errors.New("line item product id is required")
)

// LineItem is one scanned entry on an invoice. Its identity is the
// (InvoiceNumber, Sequence) pair; Sequence is assigned by the repository
// when the item is added. Prices live on the product, not the item.
type LineItem struct {
	InvoiceNumber int64
	Sequence      int64
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
}

// Validate enforces invariants on the item.
func (l *LineItem) Validate() error {
	if l.ProductID == uuid.Nil {
		return ErrMissingProduct
	}
	if !l.Quantity.IsPositive() {
		return ErrNonPositiveQuantity
	}
	return nil
}

// Subtotal is the item's contribution to the invoice total at the given
// unit price.
func (l *LineItem) Subtotal(unitPrice decimal.Decimal) decimal.Decimal {
	return l.Quantity.Mul(unitPrice)
}
