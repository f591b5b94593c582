package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

var (
	_ ports.InvoiceRepository  = (*InvoiceRepository)(nil)
	_ ports.LineItemRepository = (*LineItemRepository)(nil)
)

// invoiceRecord maps the invoice aggregate to a relational table. Number
// comes from the table's identity sequence.
type invoiceRecord struct {
	Number          int64           `gorm:"primaryKey;column:number;autoIncrement"`
	CustomerCPF     *string         `gorm:"column:customer_cpf;size:14"`
	PaymentMethodID *int64          `gorm:"column:payment_method_id"`
	OperationTypeID int64           `gorm:"column:operation_type_id"`
	Confirmed       bool            `gorm:"column:confirmed"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

// InvoiceRepository persists invoices in PostgreSQL using GORM.
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres invoice repository is not configured")
	}
	return nil
}

func (r *InvoiceRepository) Save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, errors.New("invoice is nil")
	}
	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	record := invoiceRecord{
		Number:          invoice.Number,
		CustomerCPF:     invoice.CustomerCPF,
		PaymentMethodID: invoice.PaymentMethodID,
		OperationTypeID: invoice.OperationTypeID,
		Confirmed:       invoice.Confirmed,
		TotalAmount:     invoice.TotalAmount,
		CreatedAt:       invoice.CreatedAt,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "number"}},
			DoUpdates: clause.Assignments(map[string]any{
				"customer_cpf":      record.CustomerCPF,
				"payment_method_id": record.PaymentMethodID,
				"confirmed":         record.Confirmed,
				"total_amount":      record.TotalAmount,
				"updated_at":        gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByNumber(ctx, record.Number)
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number int64) (*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record invoiceRecord
	if err := r.db.WithContext(ctx).First(&record, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrInvoiceNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, number int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&invoiceRecord{}, "number = ?", number)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []invoiceRecord
	if err := r.db.WithContext(ctx).Order("number").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Invoice, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (record *invoiceRecord) toDomain() *domain.Invoice {
	return &domain.Invoice{
		Number:          record.Number,
		CustomerCPF:     record.CustomerCPF,
		PaymentMethodID: record.PaymentMethodID,
		OperationTypeID: record.OperationTypeID,
		Confirmed:       record.Confirmed,
		TotalAmount:     record.TotalAmount,
		CreatedAt:       record.CreatedAt,
	}
}

// lineItemRecord maps a line item to a relational table with a composite
// (invoice_number, sequence) primary key.
type lineItemRecord struct {
	InvoiceNumber int64           `gorm:"primaryKey;column:invoice_number;autoIncrement:false"`
	Sequence      int64           `gorm:"primaryKey;column:sequence;autoIncrement:false"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(10,3)"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (lineItemRecord) TableName() string { return "invoice_items" }

// LineItemRepository persists line items in PostgreSQL using GORM.
type LineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewLineItemRepository(db *gorm.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

func (r *LineItemRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres line item repository is not configured")
	}
	return nil
}

// Add inserts the item with the next sequence for its invoice. The
// current maximum is read FOR UPDATE inside the transaction so two
// concurrent scans of the same invoice cannot collide.
func (r *LineItemRepository) Add(ctx context.Context, item *domain.LineItem) (*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("line item is nil")
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	record := lineItemRecord{
		InvoiceNumber: item.InvoiceNumber,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last lineItemRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invoice_number = ?", record.InvoiceNumber).
			Order("sequence DESC").
			First(&last).Error
		switch {
		case err == nil:
			record.Sequence = last.Sequence + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			record.Sequence = 1
		default:
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *LineItemRepository) Get(ctx context.Context, invoiceNumber, sequence int64) (*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record lineItemRecord
	err := r.db.WithContext(ctx).
		First(&record, "invoice_number = ? AND sequence = ?", invoiceNumber, sequence).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrLineItemNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *LineItemRepository) Delete(ctx context.Context, invoiceNumber, sequence int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Delete(&lineItemRecord{}, "invoice_number = ? AND sequence = ?", invoiceNumber, sequence)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrLineItemNotFound
	}
	return nil
}

func (r *LineItemRepository) ListByInvoice(ctx context.Context, invoiceNumber int64) ([]*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []lineItemRecord
	err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		Order("sequence").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return toDomainItems(records), nil
}

func (r *LineItemRepository) List(ctx context.Context) ([]*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []lineItemRecord
	if err := r.db.WithContext(ctx).Order("invoice_number, sequence").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainItems(records), nil
}

func (record *lineItemRecord) toDomain() *domain.LineItem {
	return &domain.LineItem{
		InvoiceNumber: record.InvoiceNumber,
		Sequence:      record.Sequence,
		ProductID:     record.ProductID,
		Quantity:      record.Quantity,
	}
}

func toDomainItems(records []lineItemRecord) []*domain.LineItem {
	items := make([]*domain.LineItem, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items
}
