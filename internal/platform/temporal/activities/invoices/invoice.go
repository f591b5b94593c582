package invoices

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	billingdomain "github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	billingports "github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

// ConfirmInvoiceActivityName confirms an invoice through the billing service.
const ConfirmInvoiceActivityName = "invoices.activities.ConfirmInvoice"

// Activities groups activities that operate on the billing bounded context.
type Activities struct {
	billing billingports.Service
}

// NewActivities wires the billing service into the Temporal activities bundle.
func NewActivities(billing billingports.Service) *Activities {
	return &Activities{billing: billing}
}

// ConfirmInvoice runs the confirmation flow and returns the confirmed
// invoice. Domain failures are encoded as typed application errors so
// the workflow client can map them back.
func (a *Activities) ConfirmInvoice(ctx context.Context, invoiceNumber int64) (*billingdomain.Invoice, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.billing == nil {
		logger.Error("confirm invoice activity not initialized", "invoiceNumber", invoiceNumber)
		return nil, errors.New("confirm invoice activity not initialized")
	}
	logger.Info("ConfirmInvoice activity started", "invoiceNumber", invoiceNumber)
	invoice, err := a.billing.Confirm(ctx, invoiceNumber)
	if err != nil {
		logger.Error("ConfirmInvoice activity failed", "invoiceNumber", invoiceNumber, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("ConfirmInvoice activity completed", "invoiceNumber", invoice.Number)
	return invoice, nil
}
