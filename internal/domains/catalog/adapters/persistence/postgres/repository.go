package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
)

var (
	_ ports.ProductRepository       = (*ProductRepository)(nil)
	_ ports.OperationTypeRepository = (*OperationTypeRepository)(nil)
	_ ports.PaymentMethodRepository = (*PaymentMethodRepository)(nil)
	_ ports.CustomerRepository      = (*CustomerRepository)(nil)
)

// productRecord maps the product aggregate to a relational table.
type productRecord struct {
	ID        uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	Name      string          `gorm:"column:name"`
	BarCode   int64           `gorm:"column:bar_code;uniqueIndex"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Weight    decimal.Decimal `gorm:"column:weight;type:numeric(10,3)"`
	Active    bool            `gorm:"column:active"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// ProductRepository persists products in PostgreSQL using GORM.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := productRecord{
		ID:        product.ID,
		Name:      product.Name,
		BarCode:   product.BarCode,
		UnitPrice: product.UnitPrice,
		Weight:    product.Weight,
		Active:    product.Active,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"bar_code":   record.BarCode,
				"unit_price": record.UnitPrice,
				"weight":     record.Weight,
				"active":     record.Active,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *ProductRepository) GetByBarCode(ctx context.Context, barCode int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "bar_code = ?", barCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:        r.ID,
		Name:      r.Name,
		BarCode:   r.BarCode,
		UnitPrice: r.UnitPrice,
		Weight:    r.Weight,
		Active:    r.Active,
	}
}

// operationTypeRecord maps the operation type aggregate to a relational table.
type operationTypeRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Kind         string    `gorm:"column:kind;type:varchar(16)"`
	UpdatesStock bool      `gorm:"column:updates_stock"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (operationTypeRecord) TableName() string { return "operation_types" }

// OperationTypeRepository persists operation types in PostgreSQL using GORM.
type OperationTypeRepository struct {
	db *gorm.DB
}

func NewOperationTypeRepository(db *gorm.DB) *OperationTypeRepository {
	return &OperationTypeRepository{db: db}
}

func (r *OperationTypeRepository) Save(ctx context.Context, opt *domain.OperationType) (*domain.OperationType, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if opt == nil {
		return nil, errors.New("operation type is nil")
	}
	record := operationTypeRecord{
		ID:           opt.ID,
		Kind:         string(opt.Kind),
		UpdatesStock: opt.UpdatesStock,
		Active:       opt.Active,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"kind":          record.Kind,
				"updates_stock": record.UpdatesStock,
				"active":        record.Active,
				"updated_at":    gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *OperationTypeRepository) GetByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record operationTypeRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrOperationTypeNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *OperationTypeRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&operationTypeRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrOperationTypeNotFound
	}
	return nil
}

func (r *OperationTypeRepository) List(ctx context.Context) ([]*domain.OperationType, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []operationTypeRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	opts := make([]*domain.OperationType, 0, len(records))
	for i := range records {
		opts = append(opts, records[i].toDomain())
	}
	return opts, nil
}

func (r operationTypeRecord) toDomain() *domain.OperationType {
	return &domain.OperationType{
		ID:           r.ID,
		Kind:         domain.OperationKind(r.Kind),
		UpdatesStock: r.UpdatesStock,
		Active:       r.Active,
	}
}

// paymentMethodRecord maps the payment method aggregate to a relational table.
type paymentMethodRecord struct {
	ID         int64          `gorm:"primaryKey;column:id"`
	Type       string         `gorm:"column:type;type:varchar(32)"`
	CardBrands pq.StringArray `gorm:"column:card_brands;type:text[]"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (paymentMethodRecord) TableName() string { return "payment_methods" }

// PaymentMethodRepository persists payment methods in PostgreSQL using GORM.
type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Save(ctx context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if method == nil {
		return nil, errors.New("payment method is nil")
	}
	record := paymentMethodRecord{
		ID:         method.ID,
		Type:       method.Type,
		CardBrands: pq.StringArray(method.CardBrands),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"type":        record.Type,
				"card_brands": record.CardBrands,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record paymentMethodRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&paymentMethodRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrPaymentMethodNotFound
	}
	return nil
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]*domain.PaymentMethod, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []paymentMethodRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	methods := make([]*domain.PaymentMethod, 0, len(records))
	for i := range records {
		methods = append(methods, records[i].toDomain())
	}
	return methods, nil
}

func (r paymentMethodRecord) toDomain() *domain.PaymentMethod {
	return &domain.PaymentMethod{
		ID:         r.ID,
		Type:       r.Type,
		CardBrands: append([]string{}, r.CardBrands...),
	}
}

// customerRecord maps the customer aggregate to a relational table.
type customerRecord struct {
	CPF          string    `gorm:"primaryKey;column:cpf;size:14"`
	Name         string    `gorm:"column:name"`
	BirthDate    time.Time `gorm:"column:birth_date"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// CustomerRepository persists customers in PostgreSQL using GORM.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	record := customerRecord{
		CPF:          customer.CPF,
		Name:         customer.Name,
		BirthDate:    customer.BirthDate,
		RegisteredAt: customer.RegisteredAt,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cpf"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"birth_date": record.BirthDate,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByCPF(ctx, record.CPF)
}

func (r *CustomerRepository) GetByCPF(ctx context.Context, cpf string) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record customerRecord
	if err := r.db.WithContext(ctx).First(&record, "cpf = ?", cpf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCustomerNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, cpf string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&customerRecord{}, "cpf = ?", cpf)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, 0, len(records))
	for i := range records {
		customers = append(customers, records[i].toDomain())
	}
	return customers, nil
}

func (r customerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		CPF:          r.CPF,
		Name:         r.Name,
		BirthDate:    r.BirthDate,
		RegisteredAt: r.RegisteredAt,
	}
}

func (r *ProductRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func (r *OperationTypeRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres operation type repository not configured")
	}
	return nil
}

func (r *PaymentMethodRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres payment method repository not configured")
	}
	return nil
}

func (r *CustomerRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres customer repository not configured")
	}
	return nil
}
