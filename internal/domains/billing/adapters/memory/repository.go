package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

var (
	_ ports.InvoiceRepository  = (*InvoiceRepository)(nil)
	_ ports.LineItemRepository = (*LineItemRepository)(nil)
)

// InvoiceRepository is an in-memory invoice store with a process-local
// number sequence.
type InvoiceRepository struct {
	mu         sync.RWMutex
	invoices   map[int64]*domain.Invoice
	nextNumber int64
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: map[int64]*domain.Invoice{}}
}

func (r *InvoiceRepository) Save(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if invoice == nil {
		return nil, errors.New("invoice is nil")
	}
	clone := *invoice
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.Number == 0 {
		r.nextNumber++
		clone.Number = r.nextNumber
	}
	r.invoices[clone.Number] = &clone
	result := clone
	return &result, nil
}

func (r *InvoiceRepository) GetByNumber(_ context.Context, number int64) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invoice, ok := r.invoices[number]
	if !ok {
		return nil, ports.ErrInvoiceNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (r *InvoiceRepository) Delete(_ context.Context, number int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[number]; !ok {
		return ports.ErrInvoiceNotFound
	}
	delete(r.invoices, number)
	return nil
}

func (r *InvoiceRepository) List(_ context.Context) ([]*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		clone := *invoice
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list, nil
}

type itemKey struct {
	invoiceNumber int64
	sequence      int64
}

// LineItemRepository is an in-memory line item store keyed by
// (invoice number, sequence); the sequence counts up per invoice.
type LineItemRepository struct {
	mu        sync.RWMutex
	items     map[itemKey]*domain.LineItem
	sequences map[int64]int64
}

func NewLineItemRepository() *LineItemRepository {
	return &LineItemRepository{
		items:     map[itemKey]*domain.LineItem{},
		sequences: map[int64]int64{},
	}
}

func (r *LineItemRepository) Add(_ context.Context, item *domain.LineItem) (*domain.LineItem, error) {
	if item == nil {
		return nil, errors.New("line item is nil")
	}
	clone := *item
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[clone.InvoiceNumber]++
	clone.Sequence = r.sequences[clone.InvoiceNumber]
	r.items[itemKey{clone.InvoiceNumber, clone.Sequence}] = &clone
	result := clone
	return &result, nil
}

func (r *LineItemRepository) Get(_ context.Context, invoiceNumber, sequence int64) (*domain.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[itemKey{invoiceNumber, sequence}]
	if !ok {
		return nil, ports.ErrLineItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *LineItemRepository) Delete(_ context.Context, invoiceNumber, sequence int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := itemKey{invoiceNumber, sequence}
	if _, ok := r.items[key]; !ok {
		return ports.ErrLineItemNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *LineItemRepository) ListByInvoice(_ context.Context, invoiceNumber int64) ([]*domain.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.LineItem, 0)
	for key, item := range r.items {
		if key.invoiceNumber != invoiceNumber {
			continue
		}
		clone := *item
		list = append(list, &clone)
	}
	sortItems(list)
	return list, nil
}

func (r *LineItemRepository) List(_ context.Context) ([]*domain.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.LineItem, 0, len(r.items))
	for _, item := range r.items {
		clone := *item
		list = append(list, &clone)
	}
	sortItems(list)
	return list, nil
}

func sortItems(items []*domain.LineItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].InvoiceNumber != items[j].InvoiceNumber {
			return items[i].InvoiceNumber < items[j].InvoiceNumber
		}
		return items[i].Sequence < items[j].Sequence
	})
}
