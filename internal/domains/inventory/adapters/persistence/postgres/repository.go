package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// stockRecord maps a stock level to a relational table keyed by product.
type stockRecord struct {
	ProductID uuid.UUID `gorm:"primaryKey;column:product_id;type:uuid"`
	Quantity  int64     `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_levels" }

// Repository persists stock levels in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres stock repository is not configured")
	}
	return nil
}

func (r *Repository) Save(ctx context.Context, stock *domain.Stock) (*domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, errors.New("stock is nil")
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	record := stockRecord{
		ProductID: stock.ProductID,
		Quantity:  stock.Quantity,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   record.Quantity,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, record.ProductID)
}

func (r *Repository) Get(ctx context.Context, productID uuid.UUID) (*domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record stockRecord
	if err := r.db.WithContext(ctx).First(&record, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrStockNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Delete(ctx context.Context, productID uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&stockRecord{}, "product_id = ?", productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrStockNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []stockRecord
	if err := r.db.WithContext(ctx).Order("product_id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Stock, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

// ApplyMovements commits the whole batch inside one transaction. Every
// touched row is locked FOR UPDATE first, then the new levels are computed
// and written; any failure rolls the batch back untouched.
func (r *Repository) ApplyMovements(ctx context.Context, direction domain.Direction, movements []domain.Movement) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staged := make(map[uuid.UUID]*domain.Stock, len(movements))
		for _, movement := range movements {
			stock, ok := staged[movement.ProductID]
			if !ok {
				var record stockRecord
				err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					First(&record, "product_id = ?", movement.ProductID).Error
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return domain.StockRecordMissingError{ProductID: movement.ProductID}
					}
					return err
				}
				stock = record.toDomain()
				staged[movement.ProductID] = stock
			}
			if err := stock.Apply(direction, movement.Quantity); err != nil {
				return err
			}
		}
		for productID, stock := range staged {
			err := tx.Model(&stockRecord{}).
				Where("product_id = ?", productID).
				Updates(map[string]any{
					"quantity":   stock.Quantity,
					"updated_at": gorm.Expr("NOW()"),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (record *stockRecord) toDomain() *domain.Stock {
	return &domain.Stock{
		ProductID: record.ProductID,
		Quantity:  record.Quantity,
		UpdatedAt: record.UpdatedAt,
	}
}
