package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
)

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrLineItemNotFound = errors.New("line item not found")
)

// InvoiceRepository abstracts invoice persistence. Save assigns Number on
// first insert and upserts afterwards.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number int64) (*domain.Invoice, error)
	Delete(ctx context.Context, number int64) error
	List(ctx context.Context) ([]*domain.Invoice, error)
}

// LineItemRepository abstracts line item persistence. Add assigns the
// next Sequence within the item's invoice.
type LineItemRepository interface {
	Add(ctx context.Context, item *domain.LineItem) (*domain.LineItem, error)
	Get(ctx context.Context, invoiceNumber, sequence int64) (*domain.LineItem, error)
	Delete(ctx context.Context, invoiceNumber, sequence int64) error
	ListByInvoice(ctx context.Context, invoiceNumber int64) ([]*domain.LineItem, error)
	List(ctx context.Context) ([]*domain.LineItem, error)
}
