package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
)

// Service orchestrates catalog reference data use cases.
type Service struct {
	products    ports.ProductRepository
	opts        ports.OperationTypeRepository
	payments    ports.PaymentMethodRepository
	customers   ports.CustomerRepository
	provisioner ports.StockProvisioner
}

// NewService wires the catalog service with its repositories. The stock
// provisioner may be nil when the inventory context is not deployed.
func NewService(
	products ports.ProductRepository,
	opts ports.OperationTypeRepository,
	payments ports.PaymentMethodRepository,
	customers ports.CustomerRepository,
	provisioner ports.StockProvisioner,
) *Service {
	return &Service{
		products:    products,
		opts:        opts,
		payments:    payments,
		customers:   customers,
		provisioner: provisioner,
	}
}

// CreateProduct persists a new product and provisions its zero stock level.
func (s *Service) CreateProduct(ctx context.Context, input ports.ProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(input.Name, input.BarCode, input.UnitPrice, input.Weight, input.Active)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return nil, err
	}
	if s.provisioner != nil {
		if err := s.provisioner.Provision(ctx, saved.ID); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) GetProductByBarCode(ctx context.Context, barCode int64) (*domain.Product, error) {
	return s.products.GetByBarCode(ctx, barCode)
}

// UpdateProduct overrides product fields, keeping the identifier stable.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, input ports.ProductInput) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.BarCode = input.BarCode
	existing.UnitPrice = input.UnitPrice
	existing.Weight = input.Weight
	existing.Active = input.Active
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.products.Save(ctx, existing)
}

// DeleteProduct removes a product together with its stock level.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if s.provisioner != nil {
		return s.provisioner.Deprovision(ctx, id)
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

// CreateOperationType persists a new operation type. The identifier is
// assigned by the repository.
func (s *Service) CreateOperationType(ctx context.Context, input ports.OperationTypeInput) (*domain.OperationType, error) {
	opt, err := domain.NewOperationType(0, input.Kind, input.UpdatesStock, input.Active)
	if err != nil {
		return nil, mapError(err)
	}
	return s.opts.Save(ctx, opt)
}

func (s *Service) GetOperationType(ctx context.Context, id int64) (*domain.OperationType, error) {
	return s.opts.GetByID(ctx, id)
}

func (s *Service) UpdateOperationType(ctx context.Context, id int64, input ports.OperationTypeInput) (*domain.OperationType, error) {
	existing, err := s.opts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Kind = input.Kind
	existing.UpdatesStock = input.UpdatesStock
	existing.Active = input.Active
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.opts.Save(ctx, existing)
}

func (s *Service) DeleteOperationType(ctx context.Context, id int64) error {
	return s.opts.Delete(ctx, id)
}

func (s *Service) ListOperationTypes(ctx context.Context) ([]*domain.OperationType, error) {
	return s.opts.List(ctx)
}

func (s *Service) CreatePaymentMethod(ctx context.Context, input ports.PaymentMethodInput) (*domain.PaymentMethod, error) {
	method, err := domain.NewPaymentMethod(0, input.Type, input.CardBrands)
	if err != nil {
		return nil, mapError(err)
	}
	return s.payments.Save(ctx, method)
}

func (s *Service) GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id int64, input ports.PaymentMethodInput) (*domain.PaymentMethod, error) {
	existing, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Type = input.Type
	existing.CardBrands = append([]string{}, input.CardBrands...)
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.payments.Save(ctx, existing)
}

func (s *Service) DeletePaymentMethod(ctx context.Context, id int64) error {
	return s.payments.Delete(ctx, id)
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]*domain.PaymentMethod, error) {
	return s.payments.List(ctx)
}

// CreateCustomer registers a customer, rejecting duplicate CPFs.
func (s *Service) CreateCustomer(ctx context.Context, input ports.CustomerInput) (*domain.Customer, error) {
	if _, err := s.customers.GetByCPF(ctx, input.CPF); err == nil {
		return nil, ports.ErrCustomerExists
	}
	customer, err := domain.NewCustomer(input.CPF, input.Name, input.BirthDate)
	if err != nil {
		return nil, mapError(err)
	}
	return s.customers.Save(ctx, customer)
}

func (s *Service) GetCustomer(ctx context.Context, cpf string) (*domain.Customer, error) {
	return s.customers.GetByCPF(ctx, cpf)
}

func (s *Service) UpdateCustomer(ctx context.Context, cpf string, input ports.CustomerInput) (*domain.Customer, error) {
	existing, err := s.customers.GetByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.BirthDate = input.BirthDate
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.customers.Save(ctx, existing)
}

func (s *Service) DeleteCustomer(ctx context.Context, cpf string) error {
	return s.customers.Delete(ctx, cpf)
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.List(ctx)
}

var _ ports.Service = (*Service)(nil)
