package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrOperationTypeNotFound = errors.New("operation type not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerExists        = errors.New("customer already exists")
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetByBarCode(ctx context.Context, barCode int64) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Product, error)
}

// OperationTypeRepository persists invoice operation types.
type OperationTypeRepository interface {
	Save(ctx context.Context, opt *domain.OperationType) (*domain.OperationType, error)
	GetByID(ctx context.Context, id int64) (*domain.OperationType, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.OperationType, error)
}

// PaymentMethodRepository persists payment methods.
type PaymentMethodRepository interface {
	Save(ctx context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.PaymentMethod, error)
}

// CustomerRepository persists customers keyed by CPF.
type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByCPF(ctx context.Context, cpf string) (*domain.Customer, error)
	Delete(ctx context.Context, cpf string) error
	List(ctx context.Context) ([]*domain.Customer, error)
}
