package domain

import "errors"

var ErrEmptyPaymentType = errors.New("payment method type must not be empty")

// PaymentMethod is a way of settling an invoice, e.g. cash or a card
// scheme with the brands it accepts.
type PaymentMethod struct {
	ID         int64
	Type       string
	CardBrands []string
}

// NewPaymentMethod validates and constructs a payment method.
func NewPaymentMethod(id int64, paymentType string, cardBrands []string) (*PaymentMethod, error) {
	method := &PaymentMethod{
		ID:         id,
		Type:       paymentType,
		CardBrands: append([]string{}, cardBrands...),
	}
	if err := method.Validate(); err != nil {
		return nil, err
	}
	return method, nil
}

// Validate enforces invariants on the aggregate.
func (m *PaymentMethod) Validate() error {
	if m.Type == "" {
		return ErrEmptyPaymentType
	}
	return nil
}
