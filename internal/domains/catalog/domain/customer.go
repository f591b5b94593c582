package domain

import (
	"errors"
	"time"
)

var ErrEmptyCPF = errors.New("customer cpf must not be empty")

// Customer is an identified shopper. Invoices reference customers
// optionally; anonymous checkouts carry no customer at all.
type Customer struct {
	CPF          string
	Name         string
	BirthDate    time.Time
	RegisteredAt time.Time
}

// NewCustomer validates and constructs a customer keyed by CPF.
func NewCustomer(cpf, name string, birthDate time.Time) (*Customer, error) {
	customer := &Customer{
		CPF:          cpf,
		Name:         name,
		BirthDate:    birthDate,
		RegisteredAt: time.Now().UTC(),
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	return customer, nil
}

// Validate enforces invariants on the aggregate.
func (c *Customer) Validate() error {
	if c.CPF == "" {
		return ErrEmptyCPF
	}
	return nil
}
