package domain

import "errors"

// OperationKind classifies how an invoice affects stock.
type OperationKind string

const (
	KindPurchase OperationKind = "purchase"
	KindSale     OperationKind = "sale"
)

var (
	ErrInvalidOperationKind  = errors.New("operation kind must be purchase or sale")
	ErrOperationTypeInactive = errors.New("operation type is not active")
)

// OperationType determines the sign of the stock effect and whether
// confirming an invoice touches stock at all.
type OperationType struct {
	ID           int64
	Kind         OperationKind
	UpdatesStock bool
	Active       bool
}

// NewOperationType validates and constructs an operation type.
func NewOperationType(id int64, kind OperationKind, updatesStock, active bool) (*OperationType, error) {
	opt := &OperationType{
		ID:           id,
		Kind:         kind,
		UpdatesStock: updatesStock,
		Active:       active,
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}

// Validate enforces invariants on the aggregate.
func (o *OperationType) Validate() error {
	if !o.Kind.Valid() {
		return ErrInvalidOperationKind
	}
	return nil
}

// EnsureActive rejects use of a deactivated operation type on new invoices.
func (o *OperationType) EnsureActive() error {
	if !o.Active {
		return ErrOperationTypeInactive
	}
	return nil
}

// Valid reports whether the kind is one of the known variants.
func (k OperationKind) Valid() bool {
	switch k {
	case KindPurchase, KindSale:
		return true
	default:
		return false
	}
}
