package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
)

var (
	_ ports.ProductRepository       = (*ProductRepository)(nil)
	_ ports.OperationTypeRepository = (*OperationTypeRepository)(nil)
	_ ports.PaymentMethodRepository = (*PaymentMethodRepository)(nil)
	_ ports.CustomerRepository      = (*CustomerRepository)(nil)
)

// ProductRepository is an in-memory product persistence adapter.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: map[uuid.UUID]*domain.Product{}}
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *ProductRepository) GetByBarCode(_ context.Context, barCode int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.products {
		if product.BarCode == barCode {
			clone := *product
			return &clone, nil
		}
	}
	return nil, ports.ErrProductNotFound
}

func (r *ProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		clone := *product
		list = append(list, &clone)
	}
	return list, nil
}

// OperationTypeRepository is an in-memory operation type adapter.
// Identifiers start at 1000 to match the historical sequence.
type OperationTypeRepository struct {
	mu     sync.RWMutex
	opts   map[int64]*domain.OperationType
	nextID int64
}

func NewOperationTypeRepository() *OperationTypeRepository {
	return &OperationTypeRepository{opts: map[int64]*domain.OperationType{}, nextID: 999}
}

func (r *OperationTypeRepository) Save(_ context.Context, opt *domain.OperationType) (*domain.OperationType, error) {
	if opt == nil {
		return nil, errors.New("operation type is nil")
	}
	clone := *opt
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.opts[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *OperationTypeRepository) GetByID(_ context.Context, id int64) (*domain.OperationType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opt, ok := r.opts[id]
	if !ok {
		return nil, ports.ErrOperationTypeNotFound
	}
	clone := *opt
	return &clone, nil
}

func (r *OperationTypeRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.opts[id]; !ok {
		return ports.ErrOperationTypeNotFound
	}
	delete(r.opts, id)
	return nil
}

func (r *OperationTypeRepository) List(_ context.Context) ([]*domain.OperationType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.OperationType, 0, len(r.opts))
	for _, opt := range r.opts {
		clone := *opt
		list = append(list, &clone)
	}
	return list, nil
}

// PaymentMethodRepository is an in-memory payment method adapter.
type PaymentMethodRepository struct {
	mu      sync.RWMutex
	methods map[int64]*domain.PaymentMethod
	nextID  int64
}

func NewPaymentMethodRepository() *PaymentMethodRepository {
	return &PaymentMethodRepository{methods: map[int64]*domain.PaymentMethod{}}
}

func (r *PaymentMethodRepository) Save(_ context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if method == nil {
		return nil, errors.New("payment method is nil")
	}
	clone := *method
	clone.CardBrands = append([]string{}, method.CardBrands...)
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.methods[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *PaymentMethodRepository) GetByID(_ context.Context, id int64) (*domain.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	method, ok := r.methods[id]
	if !ok {
		return nil, ports.ErrPaymentMethodNotFound
	}
	clone := *method
	clone.CardBrands = append([]string{}, method.CardBrands...)
	return &clone, nil
}

func (r *PaymentMethodRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.methods[id]; !ok {
		return ports.ErrPaymentMethodNotFound
	}
	delete(r.methods, id)
	return nil
}

func (r *PaymentMethodRepository) List(_ context.Context) ([]*domain.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.PaymentMethod, 0, len(r.methods))
	for _, method := range r.methods {
		clone := *method
		clone.CardBrands = append([]string{}, method.CardBrands...)
		list = append(list, &clone)
	}
	return list, nil
}

// CustomerRepository is an in-memory customer adapter.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: map[string]*domain.Customer{}}
}

func (r *CustomerRepository) Save(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[clone.CPF] = &clone
	result := clone
	return &result, nil
}

func (r *CustomerRepository) GetByCPF(_ context.Context, cpf string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[cpf]
	if !ok {
		return nil, ports.ErrCustomerNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *CustomerRepository) Delete(_ context.Context, cpf string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[cpf]; !ok {
		return ports.ErrCustomerNotFound
	}
	delete(r.customers, cpf)
	return nil
}

func (r *CustomerRepository) List(_ context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		clone := *customer
		list = append(list, &clone)
	}
	return list, nil
}
