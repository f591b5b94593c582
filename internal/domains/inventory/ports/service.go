package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

// Service exposes stock level use cases plus the ledger entry point
// consumed by the billing context at invoice confirmation.
type Service interface {
	CreateStock(ctx context.Context, productID uuid.UUID, quantity int64) (*domain.Stock, error)
	GetStock(ctx context.Context, productID uuid.UUID) (*domain.Stock, error)
	SetStock(ctx context.Context, productID uuid.UUID, quantity int64) (*domain.Stock, error)
	DeleteStock(ctx context.Context, productID uuid.UUID) error
	ListStock(ctx context.Context) ([]*domain.Stock, error)
	ApplyMovements(ctx context.Context, direction domain.Direction, movements []domain.Movement) error
}
