package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	catalogdomain "github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	inventorydomain "github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

// InvoiceInput carries the fields accepted when opening an invoice.
type InvoiceInput struct {
	OperationTypeID int64
	CustomerCPF     *string
	PaymentMethodID *int64
}

// LineItemInput carries the fields accepted when scanning an item. The
// product is resolved by bar code.
type LineItemInput struct {
	BarCode  int64
	Quantity decimal.Decimal
}

// Service exposes invoice use cases.
type Service interface {
	CreateInvoice(ctx context.Context, input InvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, number int64) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, number int64, input InvoiceInput) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, number int64) error
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)
	ChangePaymentMethod(ctx context.Context, number int64, paymentMethodID int64) (*domain.Invoice, error)

	AddLineItem(ctx context.Context, number int64, input LineItemInput) (*domain.LineItem, error)
	GetLineItem(ctx context.Context, number, sequence int64) (*domain.LineItem, error)
	RemoveLineItem(ctx context.Context, number, sequence int64) error
	ListLineItems(ctx context.Context, number int64) ([]*domain.LineItem, error)
	ListAllLineItems(ctx context.Context) ([]*domain.LineItem, error)

	Confirm(ctx context.Context, number int64) (*domain.Invoice, error)
}

// CatalogReader is the slice of the catalog context billing depends on.
// Satisfied by the catalog application service.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error)
	GetProductByBarCode(ctx context.Context, barCode int64) (*catalogdomain.Product, error)
	GetOperationType(ctx context.Context, id int64) (*catalogdomain.OperationType, error)
	GetPaymentMethod(ctx context.Context, id int64) (*catalogdomain.PaymentMethod, error)
	GetCustomer(ctx context.Context, cpf string) (*catalogdomain.Customer, error)
}

// StockLedger commits a batch of stock movements atomically. Satisfied by
// the inventory application service.
type StockLedger interface {
	ApplyMovements(ctx context.Context, direction inventorydomain.Direction, movements []inventorydomain.Movement) error
}

// InvoiceConfirmed is the integration event emitted after a confirmation
// commits.
type InvoiceConfirmed struct {
	InvoiceNumber int64           `json:"invoiceNumber"`
	OperationKind string          `json:"operationKind"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ConfirmedAt   string          `json:"confirmedAt"`
}

// EventPublisher emits integration events. Failures are logged by the
// caller and never undo a committed confirmation.
type EventPublisher interface {
	PublishInvoiceConfirmed(ctx context.Context, event InvoiceConfirmed) error
}

// ConfirmationOrchestrator runs the confirmation, durably when a workflow
// engine is configured and inline otherwise.
type ConfirmationOrchestrator interface {
	ConfirmInvoice(ctx context.Context, number int64) (*domain.Invoice, error)
}
