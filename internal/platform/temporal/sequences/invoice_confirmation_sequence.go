package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	billingdomain "github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	invoiceactivities "github.com/Apurer/go-market-api-server/internal/platform/temporal/activities/invoices"
)

// RunInvoiceConfirmationSequence executes the confirmation activity. A
// single attempt only: a failed confirmation leaves the invoice open and
// the caller resubmits, so retrying inside the engine would double-apply
// stock on ambiguous failures.
func RunInvoiceConfirmationSequence(ctx workflow.Context, invoiceNumber int64) (*billingdomain.Invoice, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("invoice confirmation sequence started", "invoiceNumber", invoiceNumber)
	confirmOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var invoice billingdomain.Invoice
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, confirmOptions),
		invoiceactivities.ConfirmInvoiceActivityName,
		invoiceNumber,
	).Get(ctx, &invoice)
	if err != nil {
		logger.Error("invoice confirmation sequence failed", "invoiceNumber", invoiceNumber, "error", err)
		return nil, err
	}
	logger.Info("invoice confirmation sequence completed", "invoiceNumber", invoiceNumber)
	return &invoice, nil
}
