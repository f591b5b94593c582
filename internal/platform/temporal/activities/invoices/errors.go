package invoices

import (
	"errors"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	billingdomain "github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	billingports "github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	inventorydomain "github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

// Error type tags carried as ApplicationError types across the workflow
// boundary, so domain failures survive serialization.
const (
	ErrTypeInvoiceNotFound       = "InvoiceNotFound"
	ErrTypeAlreadyConfirmed      = "AlreadyConfirmed"
	ErrTypeNonPositiveTotal      = "NonPositiveTotal"
	ErrTypePaymentMethodRequired = "PaymentMethodRequired"
	ErrTypeInsufficientStock     = "InsufficientStock"
	ErrTypeStockRecordMissing    = "StockRecordMissing"
)

// EncodeError maps domain failures to non-retryable application errors
// with a stable type tag. Unknown errors pass through unchanged and keep
// the engine's default handling.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var insufficient inventorydomain.InsufficientStockError
	var missing inventorydomain.StockRecordMissingError
	switch {
	case errors.Is(err, billingports.ErrInvoiceNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvoiceNotFound, err)
	case errors.Is(err, billingdomain.ErrAlreadyConfirmed):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeAlreadyConfirmed, err)
	case errors.Is(err, billingdomain.ErrNonPositiveTotal):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNonPositiveTotal, err)
	case errors.Is(err, billingdomain.ErrPaymentMethodRequired):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypePaymentMethodRequired, err)
	case errors.As(err, &insufficient):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err, insufficient.ProductID.String())
	case errors.As(err, &missing):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeStockRecordMissing, err, missing.ProductID.String())
	default:
		return err
	}
}

// DecodeError restores the domain error behind an ApplicationError
// returned from a workflow run.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var applicationErr *temporal.ApplicationError
	if !errors.As(err, &applicationErr) {
		return err
	}
	switch applicationErr.Type() {
	case ErrTypeInvoiceNotFound:
		return billingports.ErrInvoiceNotFound
	case ErrTypeAlreadyConfirmed:
		return billingdomain.ErrAlreadyConfirmed
	case ErrTypeNonPositiveTotal:
		return billingdomain.ErrNonPositiveTotal
	case ErrTypePaymentMethodRequired:
		return billingdomain.ErrPaymentMethodRequired
	case ErrTypeInsufficientStock:
		return inventorydomain.InsufficientStockError{ProductID: decodeProductID(applicationErr)}
	case ErrTypeStockRecordMissing:
		return inventorydomain.StockRecordMissingError{ProductID: decodeProductID(applicationErr)}
	default:
		return err
	}
}

func decodeProductID(applicationErr *temporal.ApplicationError) uuid.UUID {
	var raw string
	if applicationErr.HasDetails() {
		_ = applicationErr.Details(&raw)
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return productID
}
