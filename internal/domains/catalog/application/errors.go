package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid catalog input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeWeight) ||
		errors.Is(err, domain.ErrInvalidBarCode) ||
		errors.Is(err, domain.ErrInvalidOperationKind) ||
		errors.Is(err, domain.ErrEmptyPaymentType) ||
		errors.Is(err, domain.ErrEmptyCPF) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
