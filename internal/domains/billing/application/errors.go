package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid billing input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidOperationType) ||
		errors.Is(err, domain.ErrOperationTypeChange) ||
		errors.Is(err, domain.ErrNonPositiveQuantity) ||
		errors.Is(err, domain.ErrMissingProduct) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
