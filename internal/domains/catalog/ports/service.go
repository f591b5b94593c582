package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
)

// ProductInput carries the mutable product fields.
type ProductInput struct {
	Name      string
	BarCode   int64
	UnitPrice decimal.Decimal
	Weight    decimal.Decimal
	Active    bool
}

// OperationTypeInput carries the mutable operation type fields.
type OperationTypeInput struct {
	Kind         domain.OperationKind
	UpdatesStock bool
	Active       bool
}

// PaymentMethodInput carries the mutable payment method fields.
type PaymentMethodInput struct {
	Type       string
	CardBrands []string
}

// CustomerInput carries the mutable customer fields.
type CustomerInput struct {
	CPF       string
	Name      string
	BirthDate time.Time
}

// Service exposes catalog reference data use cases.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductByBarCode(ctx context.Context, barCode int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]*domain.Product, error)

	CreateOperationType(ctx context.Context, input OperationTypeInput) (*domain.OperationType, error)
	GetOperationType(ctx context.Context, id int64) (*domain.OperationType, error)
	UpdateOperationType(ctx context.Context, id int64, input OperationTypeInput) (*domain.OperationType, error)
	DeleteOperationType(ctx context.Context, id int64) error
	ListOperationTypes(ctx context.Context) ([]*domain.OperationType, error)

	CreatePaymentMethod(ctx context.Context, input PaymentMethodInput) (*domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id int64, input PaymentMethodInput) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id int64) error
	ListPaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error)

	CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, cpf string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, cpf string, input CustomerInput) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, cpf string) error
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
}

// StockProvisioner creates the zero stock level that accompanies every
// new product. Implemented by the inventory context.
type StockProvisioner interface {
	Provision(ctx context.Context, productID uuid.UUID) error
	Deprovision(ctx context.Context, productID uuid.UUID) error
}
