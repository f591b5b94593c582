package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory stock persistence adapter. A single lock
// serializes batches, so ApplyMovements is atomic by construction: new
// levels are staged on clones and swapped in only after the whole batch
// validated.
type Repository struct {
	mu     sync.RWMutex
	levels map[uuid.UUID]*domain.Stock
}

func NewRepository() *Repository {
	return &Repository{levels: map[uuid.UUID]*domain.Stock{}}
}

func (r *Repository) Save(_ context.Context, stock *domain.Stock) (*domain.Stock, error) {
	if stock == nil {
		return nil, errors.New("stock is nil")
	}
	clone := *stock
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	clone.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[clone.ProductID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) Get(_ context.Context, productID uuid.UUID) (*domain.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stock, ok := r.levels[productID]
	if !ok {
		return nil, ports.ErrStockNotFound
	}
	clone := *stock
	return &clone, nil
}

func (r *Repository) Delete(_ context.Context, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.levels[productID]; !ok {
		return ports.ErrStockNotFound
	}
	delete(r.levels, productID)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Stock, 0, len(r.levels))
	for _, stock := range r.levels {
		clone := *stock
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) ApplyMovements(_ context.Context, direction domain.Direction, movements []domain.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[uuid.UUID]*domain.Stock, len(movements))
	for _, movement := range movements {
		stock, ok := staged[movement.ProductID]
		if !ok {
			current, exists := r.levels[movement.ProductID]
			if !exists {
				return domain.StockRecordMissingError{ProductID: movement.ProductID}
			}
			clone := *current
			stock = &clone
			staged[movement.ProductID] = stock
		}
		if err := stock.Apply(direction, movement.Quantity); err != nil {
			return err
		}
	}
	for productID, stock := range staged {
		r.levels[productID] = stock
	}
	return nil
}
