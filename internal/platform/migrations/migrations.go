package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&operationTypeRecord{},
		&paymentMethodRecord{},
		&customerRecord{},
		&stockRecord{},
		&invoiceRecord{},
		&lineItemRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
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

// Operation type schema mirrors the catalog Postgres adapter.
type operationTypeRecord struct {
	ID           int64     `gorm:"primaryKey;column:id;autoIncrement"`
	Kind         string    `gorm:"column:kind;type:varchar(16)"`
	UpdatesStock bool      `gorm:"column:updates_stock"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (operationTypeRecord) TableName() string { return "operation_types" }

// Payment method schema mirrors the catalog Postgres adapter.
type paymentMethodRecord struct {
	ID         int64          `gorm:"primaryKey;column:id;autoIncrement"`
	Type       string         `gorm:"column:type"`
	CardBrands pq.StringArray `gorm:"column:card_brands;type:text[]"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (paymentMethodRecord) TableName() string { return "payment_methods" }

// Customer schema mirrors the catalog Postgres adapter.
type customerRecord struct {
	CPF          string    `gorm:"primaryKey;column:cpf;size:14"`
	Name         string    `gorm:"column:name"`
	BirthDate    time.Time `gorm:"column:birth_date"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// Stock schema mirrors the inventory Postgres adapter.
type stockRecord struct {
	ProductID uuid.UUID `gorm:"primaryKey;column:product_id;type:uuid"`
	Quantity  int64     `gorm:"column:quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (stockRecord) TableName() string { return "stock_levels" }

// Invoice schema mirrors the billing Postgres adapter.
type invoiceRecord struct {
	Number          int64           `gorm:"primaryKey;column:number;autoIncrement"`
	CustomerCPF     *string         `gorm:"column:customer_cpf;size:14;index"`
	PaymentMethodID *int64          `gorm:"column:payment_method_id"`
	OperationTypeID int64           `gorm:"column:operation_type_id"`
	Confirmed       bool            `gorm:"column:confirmed;index"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

// Line item schema mirrors the billing Postgres adapter.
type lineItemRecord struct {
	InvoiceNumber int64           `gorm:"primaryKey;column:invoice_number;autoIncrement:false"`
	Sequence      int64           `gorm:"primaryKey;column:sequence;autoIncrement:false"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(10,3)"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (lineItemRecord) TableName() string { return "invoice_items" }
