package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

const tracerName = "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/observability/service"

// Service decorates the billing application port with tracing, logging,
// and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateInvoice opens a new invoice with instrumentation.
func (s *Service) CreateInvoice(ctx context.Context, input ports.InvoiceInput) (*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateInvoice", attribute.Int64("invoice.operation_type", input.OperationTypeID))
	defer span.End()

	s.logInfo(ctx, "opening invoice", slog.Int64("operationTypeId", input.OperationTypeID))
	invoice, err := s.inner.CreateInvoice(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open invoice")
	}
	s.metrics.recordOpened(ctx)
	s.logInfo(ctx, "invoice opened", slog.Int64("invoiceNumber", invoice.Number))
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, number int64) (*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.GetInvoice", attribute.Int64("invoice.number", number))
	defer span.End()

	invoice, err := s.inner.GetInvoice(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load invoice", slog.Int64("invoiceNumber", number))
	}
	return invoice, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, number int64, input ports.InvoiceInput) (*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateInvoice", attribute.Int64("invoice.number", number))
	defer span.End()

	invoice, err := s.inner.UpdateInvoice(ctx, number, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update invoice", slog.Int64("invoiceNumber", number))
	}
	s.logInfo(ctx, "invoice updated", slog.Int64("invoiceNumber", number))
	return invoice, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, number int64) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteInvoice", attribute.Int64("invoice.number", number))
	defer span.End()

	if err := s.inner.DeleteInvoice(ctx, number); err != nil {
		return s.handleError(ctx, span, err, "failed to delete invoice", slog.Int64("invoiceNumber", number))
	}
	s.logInfo(ctx, "invoice deleted", slog.Int64("invoiceNumber", number))
	return nil
}

func (s *Service) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.ListInvoices")
	defer span.End()

	invoices, err := s.inner.ListInvoices(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list invoices")
	}
	span.SetAttributes(attribute.Int("invoice.result.count", len(invoices)))
	return invoices, nil
}

func (s *Service) ChangePaymentMethod(ctx context.Context, number int64, paymentMethodID int64) (*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.ChangePaymentMethod",
		attribute.Int64("invoice.number", number),
		attribute.Int64("invoice.payment_method", paymentMethodID),
	)
	defer span.End()

	invoice, err := s.inner.ChangePaymentMethod(ctx, number, paymentMethodID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change payment method", slog.Int64("invoiceNumber", number))
	}
	s.logInfo(ctx, "payment method changed",
		slog.Int64("invoiceNumber", number),
		slog.Int64("paymentMethodId", paymentMethodID),
	)
	return invoice, nil
}

// AddLineItem scans one item with instrumentation.
func (s *Service) AddLineItem(ctx context.Context, number int64, input ports.LineItemInput) (*domain.LineItem, error) {
	ctx, span := s.startSpan(ctx, "Service.AddLineItem",
		attribute.Int64("invoice.number", number),
		attribute.Int64("item.bar_code", input.BarCode),
	)
	defer span.End()

	item, err := s.inner.AddLineItem(ctx, number, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add line item", slog.Int64("invoiceNumber", number))
	}
	s.metrics.recordItemScanned(ctx)
	s.logInfo(ctx, "line item added",
		slog.Int64("invoiceNumber", number),
		slog.Int64("sequence", item.Sequence),
	)
	return item, nil
}

func (s *Service) GetLineItem(ctx context.Context, number, sequence int64) (*domain.LineItem, error) {
	ctx, span := s.startSpan(ctx, "Service.GetLineItem",
		attribute.Int64("invoice.number", number),
		attribute.Int64("item.sequence", sequence),
	)
	defer span.End()

	item, err := s.inner.GetLineItem(ctx, number, sequence)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load line item", slog.Int64("invoiceNumber", number))
	}
	return item, nil
}

func (s *Service) RemoveLineItem(ctx context.Context, number, sequence int64) error {
	ctx, span := s.startSpan(ctx, "Service.RemoveLineItem",
		attribute.Int64("invoice.number", number),
		attribute.Int64("item.sequence", sequence),
	)
	defer span.End()

	if err := s.inner.RemoveLineItem(ctx, number, sequence); err != nil {
		return s.handleError(ctx, span, err, "failed to remove line item", slog.Int64("invoiceNumber", number))
	}
	s.logInfo(ctx, "line item removed",
		slog.Int64("invoiceNumber", number),
		slog.Int64("sequence", sequence),
	)
	return nil
}

func (s *Service) ListLineItems(ctx context.Context, number int64) ([]*domain.LineItem, error) {
	ctx, span := s.startSpan(ctx, "Service.ListLineItems", attribute.Int64("invoice.number", number))
	defer span.End()

	items, err := s.inner.ListLineItems(ctx, number)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list line items", slog.Int64("invoiceNumber", number))
	}
	span.SetAttributes(attribute.Int("item.result.count", len(items)))
	return items, nil
}

func (s *Service) ListAllLineItems(ctx context.Context) ([]*domain.LineItem, error) {
	ctx, span := s.startSpan(ctx, "Service.ListAllLineItems")
	defer span.End()

	items, err := s.inner.ListAllLineItems(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list line items")
	}
	span.SetAttributes(attribute.Int("item.result.count", len(items)))
	return items, nil
}

// Confirm runs the confirmation flow with instrumentation.
func (s *Service) Confirm(ctx context.Context, number int64) (*domain.Invoice, error) {
	ctx, span := s.startSpan(ctx, "Service.Confirm", attribute.Int64("invoice.number", number))
	defer span.End()

	s.logInfo(ctx, "confirming invoice", slog.Int64("invoiceNumber", number))
	invoice, err := s.inner.Confirm(ctx, number)
	if err != nil {
		s.metrics.recordConfirmFailed(ctx)
		return nil, s.handleError(ctx, span, err, "invoice confirmation failed", slog.Int64("invoiceNumber", number))
	}
	s.metrics.recordConfirmed(ctx)
	s.logInfo(ctx, "invoice confirmed",
		slog.Int64("invoiceNumber", number),
		slog.String("totalAmount", invoice.TotalAmount.String()),
	)
	return invoice, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	invoicesOpened    metric.Int64Counter
	invoicesConfirmed metric.Int64Counter
	confirmFailures   metric.Int64Counter
	itemsScanned      metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	invoicesOpened, _ := m.Int64Counter("billing.invoices.opened", metric.WithDescription("Number of invoices opened"))
	invoicesConfirmed, _ := m.Int64Counter("billing.invoices.confirmed", metric.WithDescription("Number of invoices confirmed"))
	confirmFailures, _ := m.Int64Counter("billing.invoices.confirm_failures", metric.WithDescription("Number of failed confirmation attempts"))
	itemsScanned, _ := m.Int64Counter("billing.items.scanned", metric.WithDescription("Number of line items scanned"))
	return serviceMetrics{
		invoicesOpened:    invoicesOpened,
		invoicesConfirmed: invoicesConfirmed,
		confirmFailures:   confirmFailures,
		itemsScanned:      itemsScanned,
	}
}

func (m serviceMetrics) recordOpened(ctx context.Context) {
	addCounter(ctx, m.invoicesOpened, 1)
}

func (m serviceMetrics) recordConfirmed(ctx context.Context) {
	addCounter(ctx, m.invoicesConfirmed, 1)
}

func (m serviceMetrics) recordConfirmFailed(ctx context.Context) {
	addCounter(ctx, m.confirmFailures, 1)
}

func (m serviceMetrics) recordItemScanned(ctx context.Context) {
	addCounter(ctx, m.itemsScanned, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
