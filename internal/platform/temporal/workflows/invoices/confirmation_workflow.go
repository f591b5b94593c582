package invoices

import (
	"go.temporal.io/sdk/workflow"

	billingdomain "github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/platform/temporal/sequences"
)

const (
	// ConfirmationWorkflowName is the public identifier for registering the workflow.
	ConfirmationWorkflowName = "invoices.workflows.Confirmation"
	// ConfirmationTaskQueue is the queue consumed by the worker processing invoice workflows.
	ConfirmationTaskQueue = "INVOICE_CONFIRMATION"
)

// ConfirmationWorkflowInput captures the payload required to confirm an invoice.
type ConfirmationWorkflowInput struct {
	InvoiceNumber int64
	TraceID       string
}

// ConfirmationWorkflow orchestrates the activities that confirm an invoice
// and commit its stock effect.
func ConfirmationWorkflow(ctx workflow.Context, input ConfirmationWorkflowInput) (*billingdomain.Invoice, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ConfirmationWorkflow started", withTraceID(input.TraceID, "invoiceNumber", input.InvoiceNumber)...)
	invoice, err := sequences.RunInvoiceConfirmationSequence(ctx, input.InvoiceNumber)
	if err != nil {
		logger.Error("ConfirmationWorkflow failed", withTraceID(input.TraceID, "invoiceNumber", input.InvoiceNumber, "error", err)...)
		return nil, err
	}
	logger.Info("ConfirmationWorkflow completed", withTraceID(input.TraceID, "invoiceNumber", input.InvoiceNumber)...)
	return invoice, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
