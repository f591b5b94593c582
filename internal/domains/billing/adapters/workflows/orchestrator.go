package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	invoiceactivities "github.com/Apurer/go-market-api-server/internal/platform/temporal/activities/invoices"
	invoiceworkflows "github.com/Apurer/go-market-api-server/internal/platform/temporal/workflows/invoices"
)

var (
	_ ports.ConfirmationOrchestrator = (*TemporalConfirmation)(nil)
	_ ports.ConfirmationOrchestrator = (*InlineConfirmation)(nil)
)

// TemporalConfirmation starts confirmation workflows on a Temporal cluster.
type TemporalConfirmation struct {
	client    client.Client
	taskQueue string
}

// NewTemporalConfirmation wires a Temporal client into the orchestrator.
func NewTemporalConfirmation(c client.Client) *TemporalConfirmation {
	return &TemporalConfirmation{client: c, taskQueue: invoiceworkflows.ConfirmationTaskQueue}
}

// ConfirmInvoice runs the durable confirmation workflow and decodes
// domain failures carried back through the engine.
func (o *TemporalConfirmation) ConfirmInvoice(ctx context.Context, number int64) (*domain.Invoice, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal confirmation not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("invoice-confirmation-%d-%s", number, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		invoiceworkflows.ConfirmationWorkflow,
		invoiceworkflows.ConfirmationWorkflowInput{InvoiceNumber: number, TraceID: traceComponent},
	)
	if err != nil {
		return nil, err
	}
	var invoice domain.Invoice
	if err := run.Get(ctx, &invoice); err != nil {
		return nil, invoiceactivities.DecodeError(err)
	}
	return &invoice, nil
}

// InlineConfirmation executes the service directly without Temporal,
// useful for tests or dev fallbacks.
type InlineConfirmation struct {
	service ports.Service
}

// NewInlineConfirmation wraps the billing service for synchronous execution.
func NewInlineConfirmation(service ports.Service) *InlineConfirmation {
	return &InlineConfirmation{service: service}
}

// ConfirmInvoice delegates to the application service without durable orchestration.
func (o *InlineConfirmation) ConfirmInvoice(ctx context.Context, number int64) (*domain.Invoice, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline confirmation not configured")
	}
	return o.service.Confirm(ctx, number)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
