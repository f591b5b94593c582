package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errors.New("product name must not be empty")
	ErrNegativePrice   = errors.New("product unit price must not be negative")
	ErrNegativeWeight  = errors.New("product weight must not be negative")
	ErrInvalidBarCode  = errors.New("product bar code must be greater than zero")
	ErrProductInactive = errors.New("product is not active")
)

// Product is a sellable catalog article. Prices are decimal to avoid
// float rounding in invoice totals.
type Product struct {
	ID        uuid.UUID
	Name      string
	BarCode   int64
	UnitPrice decimal.Decimal
	Weight    decimal.Decimal
	Active    bool
}

// NewProduct validates and constructs a product with a fresh identifier.
func NewProduct(name string, barCode int64, unitPrice, weight decimal.Decimal, active bool) (*Product, error) {
	product := &Product{
		ID:        uuid.New(),
		Name:      name,
		BarCode:   barCode,
		UnitPrice: unitPrice,
		Weight:    weight,
		Active:    active,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate enforces invariants on the aggregate.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.BarCode <= 0 {
		return ErrInvalidBarCode
	}
	if p.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.Weight.IsNegative() {
		return ErrNegativeWeight
	}
	return nil
}

// EnsureActive rejects use of a deactivated product on new invoice items.
func (p *Product) EnsureActive() error {
	if !p.Active {
		return ErrProductInactive
	}
	return nil
}
