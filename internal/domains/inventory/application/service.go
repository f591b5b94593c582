package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
)

// Service is the stock ledger: it owns every mutation of stock levels
// and guarantees batches apply atomically.
type Service struct {
	repo ports.Repository
}

// NewService wires the inventory service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// CreateStock registers a stock level for a product, rejecting duplicates.
func (s *Service) CreateStock(ctx context.Context, productID uuid.UUID, quantity int64) (*domain.Stock, error) {
	if _, err := s.repo.Get(ctx, productID); err == nil {
		return nil, ports.ErrStockExists
	} else if !errors.Is(err, ports.ErrStockNotFound) {
		return nil, err
	}
	stock := domain.NewStock(productID)
	stock.Quantity = quantity
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, stock)
}

func (s *Service) GetStock(ctx context.Context, productID uuid.UUID) (*domain.Stock, error) {
	return s.repo.Get(ctx, productID)
}

// SetStock overrides a product's level, e.g. after a physical recount.
func (s *Service) SetStock(ctx context.Context, productID uuid.UUID, quantity int64) (*domain.Stock, error) {
	stock, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	stock.Quantity = quantity
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, stock)
}

func (s *Service) DeleteStock(ctx context.Context, productID uuid.UUID) error {
	return s.repo.Delete(ctx, productID)
}

func (s *Service) ListStock(ctx context.Context) ([]*domain.Stock, error) {
	return s.repo.List(ctx)
}

// ApplyMovements validates the batch and hands it to the repository,
// whose contract is all-or-nothing application. Failure kinds
// (InsufficientStockError, StockRecordMissingError) pass through
// unchanged so callers can identify the offending product.
func (s *Service) ApplyMovements(ctx context.Context, direction domain.Direction, movements []domain.Movement) error {
	if !direction.Valid() {
		return domain.ErrInvalidDirection
	}
	for _, movement := range movements {
		if err := movement.Validate(); err != nil {
			return err
		}
	}
	if len(movements) == 0 {
		return nil
	}
	return s.repo.ApplyMovements(ctx, direction, movements)
}

// Provision creates the zero stock level accompanying a new product.
// Already-provisioned products are left untouched.
func (s *Service) Provision(ctx context.Context, productID uuid.UUID) error {
	_, err := s.CreateStock(ctx, productID, 0)
	if errors.Is(err, ports.ErrStockExists) {
		return nil
	}
	return err
}

// Deprovision removes the stock level of a deleted product.
func (s *Service) Deprovision(ctx context.Context, productID uuid.UUID) error {
	err := s.repo.Delete(ctx, productID)
	if errors.Is(err, ports.ErrStockNotFound) {
		return nil
	}
	return err
}

var _ ports.Service = (*Service)(nil)
