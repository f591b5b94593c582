package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	catalogdomain "github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
	inventorymemory "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/go-market-api-server/internal/domains/inventory/application"
	inventorydomain "github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
)

type fakeInvoiceRepo struct {
	invoices   map[int64]*domain.Invoice
	nextNumber int64
	failSave   error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[int64]*domain.Invoice{}}
}

func (f *fakeInvoiceRepo) Save(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if f.failSave != nil {
		return nil, f.failSave
	}
	clone := *invoice
	if clone.Number == 0 {
		f.nextNumber++
		clone.Number = f.nextNumber
	}
	f.invoices[clone.Number] = &clone
	result := clone
	return &result, nil
}

func (f *fakeInvoiceRepo) GetByNumber(_ context.Context, number int64) (*domain.Invoice, error) {
	if invoice, ok := f.invoices[number]; ok {
		clone := *invoice
		return &clone, nil
	}
	return nil, ports.ErrInvoiceNotFound
}

func (f *fakeInvoiceRepo) Delete(_ context.Context, number int64) error {
	if _, ok := f.invoices[number]; !ok {
		return ports.ErrInvoiceNotFound
	}
	delete(f.invoices, number)
	return nil
}

func (f *fakeInvoiceRepo) List(_ context.Context) ([]*domain.Invoice, error) {
	var list []*domain.Invoice
	for _, invoice := range f.invoices {
		clone := *invoice
		list = append(list, &clone)
	}
	return list, nil
}

type itemKey struct {
	number   int64
	sequence int64
}

type fakeItemRepo struct {
	items     map[itemKey]*domain.LineItem
	sequences map[int64]int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[itemKey]*domain.LineItem{}, sequences: map[int64]int64{}}
}

func (f *fakeItemRepo) Add(_ context.Context, item *domain.LineItem) (*domain.LineItem, error) {
	clone := *item
	f.sequences[clone.InvoiceNumber]++
	clone.Sequence = f.sequences[clone.InvoiceNumber]
	f.items[itemKey{clone.InvoiceNumber, clone.Sequence}] = &clone
	result := clone
	return &result, nil
}

func (f *fakeItemRepo) Get(_ context.Context, number, sequence int64) (*domain.LineItem, error) {
	if item, ok := f.items[itemKey{number, sequence}]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, ports.ErrLineItemNotFound
}

func (f *fakeItemRepo) Delete(_ context.Context, number, sequence int64) error {
	key := itemKey{number, sequence}
	if _, ok := f.items[key]; !ok {
		return ports.ErrLineItemNotFound
	}
	delete(f.items, key)
	return nil
}

func (f *fakeItemRepo) ListByInvoice(_ context.Context, number int64) ([]*domain.LineItem, error) {
	var list []*domain.LineItem
	for key, item := range f.items {
		if key.number == number {
			clone := *item
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (f *fakeItemRepo) List(_ context.Context) ([]*domain.LineItem, error) {
	var list []*domain.LineItem
	for _, item := range f.items {
		clone := *item
		list = append(list, &clone)
	}
	return list, nil
}

type fakeCatalog struct {
	products  map[uuid.UUID]*catalogdomain.Product
	byBarCode map[int64]*catalogdomain.Product
	opts      map[int64]*catalogdomain.OperationType
	payments  map[int64]*catalogdomain.PaymentMethod
	customers map[string]*catalogdomain.Customer
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:  map[uuid.UUID]*catalogdomain.Product{},
		byBarCode: map[int64]*catalogdomain.Product{},
		opts:      map[int64]*catalogdomain.OperationType{},
		payments:  map[int64]*catalogdomain.PaymentMethod{},
		customers: map[string]*catalogdomain.Customer{},
	}
}

func (f *fakeCatalog) addProduct(price string, active bool) *catalogdomain.Product {
	product := &catalogdomain.Product{
		ID:        uuid.New(),
		Name:      "item",
		BarCode:   int64(len(f.byBarCode) + 1000),
		UnitPrice: decimal.RequireFromString(price),
		Active:    active,
	}
	f.products[product.ID] = product
	f.byBarCode[product.BarCode] = product
	return product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	if product, ok := f.products[id]; ok {
		return product, nil
	}
	return nil, catalogports.ErrProductNotFound
}

func (f *fakeCatalog) GetProductByBarCode(_ context.Context, barCode int64) (*catalogdomain.Product, error) {
	if product, ok := f.byBarCode[barCode]; ok {
		return product, nil
	}
	return nil, catalogports.ErrProductNotFound
}

func (f *fakeCatalog) GetOperationType(_ context.Context, id int64) (*catalogdomain.OperationType, error) {
	if operationType, ok := f.opts[id]; ok {
		return operationType, nil
	}
	return nil, catalogports.ErrOperationTypeNotFound
}

func (f *fakeCatalog) GetPaymentMethod(_ context.Context, id int64) (*catalogdomain.PaymentMethod, error) {
	if paymentMethod, ok := f.payments[id]; ok {
		return paymentMethod, nil
	}
	return nil, catalogports.ErrPaymentMethodNotFound
}

func (f *fakeCatalog) GetCustomer(_ context.Context, cpf string) (*catalogdomain.Customer, error) {
	if customer, ok := f.customers[cpf]; ok {
		return customer, nil
	}
	return nil, catalogports.ErrCustomerNotFound
}

type ledgerCall struct {
	direction inventorydomain.Direction
	movements []inventorydomain.Movement
}

type fakeLedger struct {
	calls    []ledgerCall
	failWith error
}

func (f *fakeLedger) ApplyMovements(_ context.Context, direction inventorydomain.Direction, movements []inventorydomain.Movement) error {
	if f.failWith != nil {
		err := f.failWith
		f.failWith = nil
		return err
	}
	f.calls = append(f.calls, ledgerCall{direction: direction, movements: movements})
	return nil
}

type fakePublisher struct {
	events []ports.InvoiceConfirmed
}

func (f *fakePublisher) PublishInvoiceConfirmed(_ context.Context, event ports.InvoiceConfirmed) error {
	f.events = append(f.events, event)
	return nil
}

type world struct {
	invoices  *fakeInvoiceRepo
	items     *fakeItemRepo
	catalog   *fakeCatalog
	ledger    *fakeLedger
	publisher *fakePublisher
	service   *Service
	saleOpt   *catalogdomain.OperationType
	buyOpt    *catalogdomain.OperationType
	noStock   *catalogdomain.OperationType
	payment   *catalogdomain.PaymentMethod
}

func newWorld() *world {
	w := &world{
		invoices:  newFakeInvoiceRepo(),
		items:     newFakeItemRepo(),
		catalog:   newFakeCatalog(),
		ledger:    &fakeLedger{},
		publisher: &fakePublisher{},
	}
	w.saleOpt = &catalogdomain.OperationType{ID: 1, Kind: catalogdomain.KindSale, UpdatesStock: true, Active: true}
	w.buyOpt = &catalogdomain.OperationType{ID: 2, Kind: catalogdomain.KindPurchase, UpdatesStock: true, Active: true}
	w.noStock = &catalogdomain.OperationType{ID: 3, Kind: catalogdomain.KindSale, UpdatesStock: false, Active: true}
	w.catalog.opts[1] = w.saleOpt
	w.catalog.opts[2] = w.buyOpt
	w.catalog.opts[3] = w.noStock
	w.payment = &catalogdomain.PaymentMethod{ID: 7, Type: "card"}
	w.catalog.payments[7] = w.payment
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w.service = NewService(w.invoices, w.items, w.catalog, w.ledger, w.publisher, logger)
	return w
}

func (w *world) openInvoice(t *testing.T, operationTypeID int64, withPayment bool) *domain.Invoice {
	t.Helper()
	input := ports.InvoiceInput{OperationTypeID: operationTypeID}
	if withPayment {
		paymentID := w.payment.ID
		input.PaymentMethodID = &paymentID
	}
	invoice, err := w.service.CreateInvoice(context.Background(), input)
	require.NoError(t, err)
	return invoice
}

func (w *world) scan(t *testing.T, number int64, product *catalogdomain.Product, quantity string) *domain.LineItem {
	t.Helper()
	item, err := w.service.AddLineItem(context.Background(), number, ports.LineItemInput{
		BarCode:  product.BarCode,
		Quantity: decimal.RequireFromString(quantity),
	})
	require.NoError(t, err)
	return item
}

func TestCreateInvoice_RejectsInactiveOperationType(t *testing.T) {
	w := newWorld()
	w.saleOpt.Active = false

	_, err := w.service.CreateInvoice(context.Background(), ports.InvoiceInput{OperationTypeID: 1})
	require.ErrorIs(t, err, catalogdomain.ErrOperationTypeInactive)
}

func TestCreateInvoice_StartsOpenWithZeroTotal(t *testing.T) {
	w := newWorld()

	invoice := w.openInvoice(t, 1, false)
	require.False(t, invoice.Confirmed)
	require.True(t, invoice.TotalAmount.IsZero())
	require.NotZero(t, invoice.Number)
}

func TestAddLineItem_RecomputesTotal(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("2.50", true)
	invoice := w.openInvoice(t, 1, true)

	item := w.scan(t, invoice.Number, product, "2")
	require.EqualValues(t, 1, item.Sequence)

	stored, err := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("5.00")))
}

func TestAddLineItem_SumsAcrossItems(t *testing.T) {
	w := newWorld()
	cheap := w.catalog.addProduct("1.25", true)
	dear := w.catalog.addProduct("10.00", true)
	invoice := w.openInvoice(t, 1, true)

	w.scan(t, invoice.Number, cheap, "4")
	w.scan(t, invoice.Number, dear, "0.5")

	stored, err := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestAddLineItem_UnknownBarCode(t *testing.T) {
	w := newWorld()
	invoice := w.openInvoice(t, 1, true)

	_, err := w.service.AddLineItem(context.Background(), invoice.Number, ports.LineItemInput{
		BarCode:  999999,
		Quantity: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, catalogports.ErrProductNotFound)
}

func TestAddLineItem_InactiveProduct(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", false)
	invoice := w.openInvoice(t, 1, true)

	_, err := w.service.AddLineItem(context.Background(), invoice.Number, ports.LineItemInput{
		BarCode:  product.BarCode,
		Quantity: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, catalogdomain.ErrProductInactive)
}

func TestAddLineItem_ConfirmedInvoice(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "1")
	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	_, err = w.service.AddLineItem(context.Background(), invoice.Number, ports.LineItemInput{
		BarCode:  product.BarCode,
		Quantity: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrInvoiceNotOpen)
}

func TestRemoveLineItem_RecomputesTotal(t *testing.T) {
	w := newWorld()
	keep := w.catalog.addProduct("2.00", true)
	drop := w.catalog.addProduct("5.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, keep, "1")
	dropped := w.scan(t, invoice.Number, drop, "1")

	err := w.service.RemoveLineItem(context.Background(), invoice.Number, dropped.Sequence)
	require.NoError(t, err)

	stored, err := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("2.00")))
}

func TestRemoveLineItem_EmptyInvoiceTotalIsZero(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("2.00", true)
	invoice := w.openInvoice(t, 1, true)
	item := w.scan(t, invoice.Number, product, "3")

	err := w.service.RemoveLineItem(context.Background(), invoice.Number, item.Sequence)
	require.NoError(t, err)

	stored, err := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.IsZero())
}

func TestChangePaymentMethod_RequiresOpenInvoice(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "1")
	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	_, err = w.service.ChangePaymentMethod(context.Background(), invoice.Number, w.payment.ID)
	require.ErrorIs(t, err, domain.ErrInvoiceNotOpen)
}

func TestChangePaymentMethod_UnknownMethod(t *testing.T) {
	w := newWorld()
	invoice := w.openInvoice(t, 1, false)

	_, err := w.service.ChangePaymentMethod(context.Background(), invoice.Number, 404)
	require.ErrorIs(t, err, catalogports.ErrPaymentMethodNotFound)
}

func TestConfirm_UnknownInvoice(t *testing.T) {
	w := newWorld()

	_, err := w.service.Confirm(context.Background(), 12345)
	require.ErrorIs(t, err, ports.ErrInvoiceNotFound)
}

func TestConfirm_AlreadyConfirmedWinsOverOtherChecks(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "1")
	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	// Second confirmation reports the confirmed state, not any later check.
	_, err = w.service.Confirm(context.Background(), invoice.Number)
	require.ErrorIs(t, err, domain.ErrAlreadyConfirmed)
}

func TestConfirm_ZeroTotalWinsOverMissingPayment(t *testing.T) {
	w := newWorld()
	invoice := w.openInvoice(t, 1, false)

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.ErrorIs(t, err, domain.ErrNonPositiveTotal)
}

func TestConfirm_MissingPaymentMethod(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, false)
	w.scan(t, invoice.Number, product, "1")

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.ErrorIs(t, err, domain.ErrPaymentMethodRequired)
}

func TestConfirm_SaleCommitsOutboundMovements(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "2")

	confirmed, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, confirmed.Confirmed)

	require.Len(t, w.ledger.calls, 1)
	call := w.ledger.calls[0]
	require.Equal(t, inventorydomain.DirectionOutbound, call.direction)
	require.Len(t, call.movements, 1)
	require.Equal(t, product.ID, call.movements[0].ProductID)
	require.True(t, call.movements[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestConfirm_PurchaseCommitsInboundMovements(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 2, true)
	w.scan(t, invoice.Number, product, "5")

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	require.Len(t, w.ledger.calls, 1)
	require.Equal(t, inventorydomain.DirectionInbound, w.ledger.calls[0].direction)
}

func TestConfirm_NonStockOperationSkipsLedger(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 3, true)
	w.scan(t, invoice.Number, product, "1")

	confirmed, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, confirmed.Confirmed)
	require.Empty(t, w.ledger.calls)
}

func TestConfirm_LedgerFailureLeavesInvoiceOpen(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "2")
	w.ledger.failWith = inventorydomain.InsufficientStockError{ProductID: product.ID}

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.Equal(t, inventorydomain.InsufficientStockError{ProductID: product.ID}, err)

	stored, getErr := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, getErr)
	require.False(t, stored.Confirmed)
	require.Empty(t, w.publisher.events)
}

func TestConfirm_SaveFailureCompensatesStock(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "2")
	w.invoices.failSave = errors.New("connection reset")

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.Error(t, err)

	// The committed outbound batch was replayed inbound.
	require.Len(t, w.ledger.calls, 2)
	require.Equal(t, inventorydomain.DirectionOutbound, w.ledger.calls[0].direction)
	require.Equal(t, inventorydomain.DirectionInbound, w.ledger.calls[1].direction)

	w.invoices.failSave = nil
	stored, getErr := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, getErr)
	require.False(t, stored.Confirmed)
	require.Empty(t, w.publisher.events)
}

func TestConfirm_PublishesEventAfterCommit(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("4.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "2")

	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	require.Len(t, w.publisher.events, 1)
	event := w.publisher.events[0]
	require.Equal(t, invoice.Number, event.InvoiceNumber)
	require.Equal(t, string(catalogdomain.KindSale), event.OperationKind)
	require.True(t, event.TotalAmount.Equal(decimal.RequireFromString("8.00")))
}

func TestDeleteInvoice_RejectsConfirmed(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "1")
	_, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)

	err = w.service.DeleteInvoice(context.Background(), invoice.Number)
	require.ErrorIs(t, err, domain.ErrInvoiceNotOpen)
}

func TestDeleteInvoice_RemovesItems(t *testing.T) {
	w := newWorld()
	product := w.catalog.addProduct("3.00", true)
	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, product, "1")

	err := w.service.DeleteInvoice(context.Background(), invoice.Number)
	require.NoError(t, err)

	items, err := w.items.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUpdateInvoice_RejectsOperationTypeChange(t *testing.T) {
	w := newWorld()
	invoice := w.openInvoice(t, 1, false)

	_, err := w.service.UpdateInvoice(context.Background(), invoice.Number, ports.InvoiceInput{
		OperationTypeID: 2,
	})
	require.ErrorIs(t, err, domain.ErrOperationTypeChange)
}

func TestConfirm_PurchaseIncreasesEveryProductLevel(t *testing.T) {
	w := newWorld()
	ledger := inventoryapp.NewService(inventorymemory.NewRepository())
	w.service = NewService(w.invoices, w.items, w.catalog, ledger, w.publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	riceProduct := w.catalog.addProduct("4.50", true)
	beansProduct := w.catalog.addProduct("3.20", true)
	_, err := ledger.CreateStock(context.Background(), riceProduct.ID, 10)
	require.NoError(t, err)
	_, err = ledger.CreateStock(context.Background(), beansProduct.ID, 0)
	require.NoError(t, err)

	invoice := w.openInvoice(t, 2, true)
	w.scan(t, invoice.Number, riceProduct, "5")
	w.scan(t, invoice.Number, beansProduct, "3")

	confirmed, err := w.service.Confirm(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.True(t, confirmed.Confirmed)

	riceStock, err := ledger.GetStock(context.Background(), riceProduct.ID)
	require.NoError(t, err)
	require.EqualValues(t, 15, riceStock.Quantity)

	beansStock, err := ledger.GetStock(context.Background(), beansProduct.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, beansStock.Quantity)
}

func TestConfirm_SaleShortageLeavesAllLevelsUntouched(t *testing.T) {
	w := newWorld()
	ledger := inventoryapp.NewService(inventorymemory.NewRepository())
	w.service = NewService(w.invoices, w.items, w.catalog, ledger, w.publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	plenty := w.catalog.addProduct("4.50", true)
	scarce := w.catalog.addProduct("3.20", true)
	_, err := ledger.CreateStock(context.Background(), plenty.ID, 10)
	require.NoError(t, err)
	_, err = ledger.CreateStock(context.Background(), scarce.ID, 1)
	require.NoError(t, err)

	invoice := w.openInvoice(t, 1, true)
	w.scan(t, invoice.Number, plenty, "4")
	w.scan(t, invoice.Number, scarce, "2")

	_, err = w.service.Confirm(context.Background(), invoice.Number)
	require.Error(t, err)
	var insufficient inventorydomain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, scarce.ID, insufficient.ProductID)

	stored, err := w.invoices.GetByNumber(context.Background(), invoice.Number)
	require.NoError(t, err)
	require.False(t, stored.Confirmed)

	plentyStock, err := ledger.GetStock(context.Background(), plenty.ID)
	require.NoError(t, err)
	require.EqualValues(t, 10, plentyStock.Quantity)

	scarceStock, err := ledger.GetStock(context.Background(), scarce.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, scarceStock.Quantity)
}
