package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells the ledger which way a batch of movements shifts stock.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

var (
	ErrInvalidDirection = errors.New("movement direction must be inbound or outbound")
	ErrInvalidMovement  = errors.New("movement quantity must be greater than zero")
	ErrNegativeQuantity = errors.New("stock quantity must not be negative")
)

// Valid reports whether the direction is one of the known variants.
func (d Direction) Valid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound:
		return true
	default:
		return false
	}
}

// Inverse returns the opposite direction, used to compensate an applied batch.
func (d Direction) Inverse() Direction {
	if d == DirectionInbound {
		return DirectionOutbound
	}
	return DirectionInbound
}

// Movement is one product-quantity delta inside a ledger batch.
type Movement struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// Validate enforces invariants on the movement.
func (m Movement) Validate() error {
	if m.ProductID == uuid.Nil {
		return fmt.Errorf("%w: missing product id", ErrInvalidMovement)
	}
	if !m.Quantity.IsPositive() {
		return ErrInvalidMovement
	}
	return nil
}

// InsufficientStockError reports a sale that would drive a product's
// stock level below zero. Draining the level to exactly zero is allowed.
type InsufficientStockError struct {
	ProductID uuid.UUID
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// StockRecordMissingError reports a referenced product with no stock level.
type StockRecordMissingError struct {
	ProductID uuid.UUID
}

func (e StockRecordMissingError) Error() string {
	return fmt.Sprintf("no stock record for product %s", e.ProductID)
}

// Stock is the quantity on hand for one product. Levels are whole units;
// fractional movement quantities (weighed goods) truncate toward zero.
type Stock struct {
	ProductID uuid.UUID
	Quantity  int64
	UpdatedAt time.Time
}

// NewStock creates an empty stock level for a freshly registered product.
func NewStock(productID uuid.UUID) *Stock {
	return &Stock{ProductID: productID, UpdatedAt: time.Now().UTC()}
}

// Validate enforces invariants on the aggregate.
func (s *Stock) Validate() error {
	if s.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Apply shifts the level by one movement's quantity in the given
// direction. An outbound movement that would leave the level negative
// fails with InsufficientStockError and leaves the level untouched.
func (s *Stock) Apply(direction Direction, quantity decimal.Decimal) error {
	if !direction.Valid() {
		return ErrInvalidDirection
	}
	level := decimal.NewFromInt(s.Quantity)
	if direction == DirectionOutbound {
		level = level.Sub(quantity)
	} else {
		level = level.Add(quantity)
	}
	if level.IsNegative() {
		return InsufficientStockError{ProductID: s.ProductID}
	}
	s.Quantity = level.IntPart()
	s.UpdatedAt = time.Now().UTC()
	return nil
}
