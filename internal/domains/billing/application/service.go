package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	catalogdomain "github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	inventorydomain "github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

// Service orchestrates invoice use cases: opening invoices, scanning and
// removing items, keeping the total current, and the confirmation flow
// that commits stock and freezes the invoice.
type Service struct {
	invoices  ports.InvoiceRepository
	items     ports.LineItemRepository
	catalog   ports.CatalogReader
	ledger    ports.StockLedger
	publisher ports.EventPublisher
	logger    *slog.Logger
	locks     *invoiceLocks
}

func NewService(
	invoices ports.InvoiceRepository,
	items ports.LineItemRepository,
	catalog ports.CatalogReader,
	ledger ports.StockLedger,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		invoices:  invoices,
		items:     items,
		catalog:   catalog,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		locks:     newInvoiceLocks(),
	}
}

func (s *Service) CreateInvoice(ctx context.Context, input ports.InvoiceInput) (*domain.Invoice, error) {
	operationType, err := s.catalog.GetOperationType(ctx, input.OperationTypeID)
	if err != nil {
		return nil, err
	}
	if err := operationType.EnsureActive(); err != nil {
		return nil, mapError(err)
	}
	if input.PaymentMethodID != nil {
		if _, err := s.catalog.GetPaymentMethod(ctx, *input.PaymentMethodID); err != nil {
			return nil, err
		}
	}
	if input.CustomerCPF != nil {
		if _, err := s.catalog.GetCustomer(ctx, *input.CustomerCPF); err != nil {
			return nil, err
		}
	}
	invoice, err := domain.NewInvoice(input.OperationTypeID, input.CustomerCPF, input.PaymentMethodID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.invoices.Save(ctx, invoice)
}

func (s *Service) GetInvoice(ctx context.Context, number int64) (*domain.Invoice, error) {
	return s.invoices.GetByNumber(ctx, number)
}

func (s *Service) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	return s.invoices.List(ctx)
}

// UpdateInvoice replaces the customer and payment method of an open
// invoice. The operation type is fixed at creation.
func (s *Service) UpdateInvoice(ctx context.Context, number int64, input ports.InvoiceInput) (*domain.Invoice, error) {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := invoice.EnsureOpen(); err != nil {
		return nil, err
	}
	if input.OperationTypeID != 0 && input.OperationTypeID != invoice.OperationTypeID {
		return nil, mapError(domain.ErrOperationTypeChange)
	}
	if input.PaymentMethodID != nil {
		if _, err := s.catalog.GetPaymentMethod(ctx, *input.PaymentMethodID); err != nil {
			return nil, err
		}
	}
	if input.CustomerCPF != nil {
		if _, err := s.catalog.GetCustomer(ctx, *input.CustomerCPF); err != nil {
			return nil, err
		}
	}
	invoice.CustomerCPF = input.CustomerCPF
	invoice.PaymentMethodID = input.PaymentMethodID
	return s.invoices.Save(ctx, invoice)
}

// DeleteInvoice removes an open invoice and its items. Confirmed invoices
// are immutable history and cannot be deleted.
func (s *Service) DeleteInvoice(ctx context.Context, number int64) error {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if err := invoice.EnsureOpen(); err != nil {
		return err
	}
	items, err := s.items.ListByInvoice(ctx, number)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.items.Delete(ctx, item.InvoiceNumber, item.Sequence); err != nil {
			return err
		}
	}
	return s.invoices.Delete(ctx, number)
}

// ChangePaymentMethod swaps the payment method while the invoice is open.
func (s *Service) ChangePaymentMethod(ctx context.Context, number int64, paymentMethodID int64) (*domain.Invoice, error) {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := invoice.EnsureOpen(); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetPaymentMethod(ctx, paymentMethodID); err != nil {
		return nil, err
	}
	invoice.PaymentMethodID = &paymentMethodID
	return s.invoices.Save(ctx, invoice)
}

// AddLineItem scans one product onto an open invoice and recomputes the
// total synchronously.
func (s *Service) AddLineItem(ctx context.Context, number int64, input ports.LineItemInput) (*domain.LineItem, error) {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := invoice.EnsureOpen(); err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProductByBarCode(ctx, input.BarCode)
	if err != nil {
		return nil, err
	}
	if err := product.EnsureActive(); err != nil {
		return nil, err
	}
	item := &domain.LineItem{
		InvoiceNumber: number,
		ProductID:     product.ID,
		Quantity:      input.Quantity,
	}
	if err := item.Validate(); err != nil {
		return nil, mapError(err)
	}
	item, err = s.items.Add(ctx, item)
	if err != nil {
		return nil, err
	}
	if _, err := s.recomputeTotal(ctx, invoice); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) GetLineItem(ctx context.Context, number, sequence int64) (*domain.LineItem, error) {
	return s.items.Get(ctx, number, sequence)
}

// RemoveLineItem deletes one item from an open invoice and recomputes the
// total synchronously.
func (s *Service) RemoveLineItem(ctx context.Context, number, sequence int64) error {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if err := invoice.EnsureOpen(); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, number, sequence); err != nil {
		return err
	}
	_, err = s.recomputeTotal(ctx, invoice)
	return err
}

func (s *Service) ListLineItems(ctx context.Context, number int64) ([]*domain.LineItem, error) {
	if _, err := s.invoices.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	return s.items.ListByInvoice(ctx, number)
}

func (s *Service) ListAllLineItems(ctx context.Context) ([]*domain.LineItem, error) {
	return s.items.List(ctx)
}

// Confirm runs the confirmation flow: precondition checks in a fixed
// order, then the stock commit, then the confirmed flag. The stock batch
// commits first; if persisting the flag fails afterwards the movements
// are replayed inverted, so no reader ever sees a confirmed invoice
// without its stock effect. Nothing retries automatically; the caller
// resubmits after a failure.
func (s *Service) Confirm(ctx context.Context, number int64) (*domain.Invoice, error) {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := invoice.CanConfirm(); err != nil {
		return nil, err
	}
	operationType, err := s.catalog.GetOperationType(ctx, invoice.OperationTypeID)
	if err != nil {
		return nil, err
	}

	var (
		direction inventorydomain.Direction
		movements []inventorydomain.Movement
	)
	if operationType.UpdatesStock {
		direction, err = stockDirection(operationType.Kind)
		if err != nil {
			return nil, err
		}
		movements, err = s.stockMovements(ctx, number)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.ApplyMovements(ctx, direction, movements); err != nil {
			return nil, err
		}
	}

	if err := invoice.Confirm(); err != nil {
		s.compensateStock(ctx, direction, movements, number)
		return nil, err
	}
	confirmed, err := s.invoices.Save(ctx, invoice)
	if err != nil {
		s.compensateStock(ctx, direction, movements, number)
		return nil, err
	}

	s.publishConfirmed(ctx, confirmed, operationType.Kind)
	return confirmed, nil
}

// RecomputeTotal recalculates and persists the invoice total from its
// current items. Exposed for stock recount style corrections.
func (s *Service) RecomputeTotal(ctx context.Context, number int64) (*domain.Invoice, error) {
	unlock := s.locks.Lock(number)
	defer unlock()

	invoice, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.recomputeTotal(ctx, invoice)
}

func (s *Service) recomputeTotal(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	items, err := s.items.ListByInvoice(ctx, invoice.Number)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		total = total.Add(item.Subtotal(product.UnitPrice))
	}
	invoice.TotalAmount = total
	return s.invoices.Save(ctx, invoice)
}

func (s *Service) stockMovements(ctx context.Context, number int64) ([]inventorydomain.Movement, error) {
	items, err := s.items.ListByInvoice(ctx, number)
	if err != nil {
		return nil, err
	}
	movements := make([]inventorydomain.Movement, 0, len(items))
	for _, item := range items {
		movements = append(movements, inventorydomain.Movement{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return movements, nil
}

// compensateStock replays a committed batch in the opposite direction
// after a post-commit failure. A failed replay is logged loudly; the
// stock is then off until operators recount.
func (s *Service) compensateStock(ctx context.Context, direction inventorydomain.Direction, movements []inventorydomain.Movement, number int64) {
	if len(movements) == 0 {
		return
	}
	if err := s.ledger.ApplyMovements(ctx, direction.Inverse(), movements); err != nil {
		s.logger.Error("stock compensation failed, manual recount required",
			slog.Int64("invoiceNumber", number),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publishConfirmed(ctx context.Context, invoice *domain.Invoice, kind catalogdomain.OperationKind) {
	if s.publisher == nil {
		return
	}
	event := ports.InvoiceConfirmed{
		InvoiceNumber: invoice.Number,
		OperationKind: string(kind),
		TotalAmount:   invoice.TotalAmount,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishInvoiceConfirmed(ctx, event); err != nil {
		s.logger.Warn("invoice confirmed event not published",
			slog.Int64("invoiceNumber", invoice.Number),
			slog.String("error", err.Error()),
		)
	}
}

func stockDirection(kind catalogdomain.OperationKind) (inventorydomain.Direction, error) {
	switch kind {
	case catalogdomain.KindPurchase:
		return inventorydomain.DirectionInbound, nil
	case catalogdomain.KindSale:
		return inventorydomain.DirectionOutbound, nil
	default:
		return "", fmt.Errorf("unknown operation kind %q", kind)
	}
}

var _ ports.Service = (*Service)(nil)
