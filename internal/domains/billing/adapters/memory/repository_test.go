package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
)

func newOpenInvoice(t *testing.T) *domain.Invoice {
	t.Helper()
	invoice, err := domain.NewInvoice(1, nil, nil)
	require.NoError(t, err)
	return invoice
}

func TestInvoiceRepository_AssignsNumbersInOrder(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	first, err := repo.Save(ctx, newOpenInvoice(t))
	require.NoError(t, err)
	second, err := repo.Save(ctx, newOpenInvoice(t))
	require.NoError(t, err)

	require.EqualValues(t, 1, first.Number)
	require.EqualValues(t, 2, second.Number)
}

func TestInvoiceRepository_SaveUpdatesExisting(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, newOpenInvoice(t))
	require.NoError(t, err)

	saved.TotalAmount = decimal.RequireFromString("9.99")
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, saved.Number, updated.Number)

	stored, err := repo.GetByNumber(ctx, saved.Number)
	require.NoError(t, err)
	require.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("9.99")))
}

func TestInvoiceRepository_GetReturnsCopy(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, newOpenInvoice(t))
	require.NoError(t, err)

	fetched, err := repo.GetByNumber(ctx, saved.Number)
	require.NoError(t, err)
	fetched.Confirmed = true

	again, err := repo.GetByNumber(ctx, saved.Number)
	require.NoError(t, err)
	require.False(t, again.Confirmed)
}

func TestInvoiceRepository_NotFound(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	_, err := repo.GetByNumber(ctx, 42)
	require.ErrorIs(t, err, ports.ErrInvoiceNotFound)

	err = repo.Delete(ctx, 42)
	require.ErrorIs(t, err, ports.ErrInvoiceNotFound)
}

func TestInvoiceRepository_ListSortedByNumber(t *testing.T) {
	repo := NewInvoiceRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Save(ctx, newOpenInvoice(t))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, invoice := range list {
		require.EqualValues(t, i+1, invoice.Number)
	}
}

func newItem(invoiceNumber int64) *domain.LineItem {
	return &domain.LineItem{
		InvoiceNumber: invoiceNumber,
		ProductID:     uuid.New(),
		Quantity:      decimal.NewFromInt(1),
	}
}

func TestLineItemRepository_SequencesPerInvoice(t *testing.T) {
	repo := NewLineItemRepository()
	ctx := context.Background()

	a1, err := repo.Add(ctx, newItem(10))
	require.NoError(t, err)
	a2, err := repo.Add(ctx, newItem(10))
	require.NoError(t, err)
	b1, err := repo.Add(ctx, newItem(20))
	require.NoError(t, err)

	require.EqualValues(t, 1, a1.Sequence)
	require.EqualValues(t, 2, a2.Sequence)
	require.EqualValues(t, 1, b1.Sequence)
}

func TestLineItemRepository_SequenceNotReusedAfterDelete(t *testing.T) {
	repo := NewLineItemRepository()
	ctx := context.Background()

	first, err := repo.Add(ctx, newItem(10))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, 10, first.Sequence))

	second, err := repo.Add(ctx, newItem(10))
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Sequence)
}

func TestLineItemRepository_ListByInvoiceFiltersAndSorts(t *testing.T) {
	repo := NewLineItemRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Add(ctx, newItem(10))
		require.NoError(t, err)
	}
	_, err := repo.Add(ctx, newItem(20))
	require.NoError(t, err)

	items, err := repo.ListByInvoice(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		require.EqualValues(t, 10, item.InvoiceNumber)
		require.EqualValues(t, i+1, item.Sequence)
	}
}

func TestLineItemRepository_NotFound(t *testing.T) {
	repo := NewLineItemRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 10, 1)
	require.ErrorIs(t, err, ports.ErrLineItemNotFound)

	err = repo.Delete(ctx, 10, 1)
	require.ErrorIs(t, err, ports.ErrLineItemNotFound)
}

func TestLineItemRepository_RejectsInvalidItem(t *testing.T) {
	repo := NewLineItemRepository()
	ctx := context.Background()

	_, err := repo.Add(ctx, &domain.LineItem{
		InvoiceNumber: 10,
		ProductID:     uuid.New(),
		Quantity:      decimal.Zero,
	})
	require.ErrorIs(t, err, domain.ErrNonPositiveQuantity)
}
