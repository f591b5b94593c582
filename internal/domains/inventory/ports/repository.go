package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

var (
	ErrStockNotFound = errors.New("stock record not found")
	ErrStockExists   = errors.New("stock record already exists for this product")
)

// Repository persists stock levels. ApplyMovements is the ledger's
// commit point and must be all-or-nothing: either every movement in the
// batch is durably applied or none are.
type Repository interface {
	Save(ctx context.Context, stock *domain.Stock) (*domain.Stock, error)
	Get(ctx context.Context, productID uuid.UUID) (*domain.Stock, error)
	Delete(ctx context.Context, productID uuid.UUID) error
	List(ctx context.Context) ([]*domain.Stock, error)
	ApplyMovements(ctx context.Context, direction domain.Direction, movements []domain.Movement) error
}
