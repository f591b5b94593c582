package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
)

func seedStock(t *testing.T, repo *Repository, quantity int64) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	_, err := repo.Save(context.Background(), &domain.Stock{ProductID: productID, Quantity: quantity})
	require.NoError(t, err)
	return productID
}

func TestApplyMovements_CommitsWholeBatch(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	first := seedStock(t, repo, 10)
	second := seedStock(t, repo, 3)

	err := repo.ApplyMovements(ctx, domain.DirectionOutbound, []domain.Movement{
		{ProductID: first, Quantity: decimal.NewFromInt(4)},
		{ProductID: second, Quantity: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)

	stock, err := repo.Get(ctx, first)
	require.NoError(t, err)
	require.EqualValues(t, 6, stock.Quantity)

	stock, err = repo.Get(ctx, second)
	require.NoError(t, err)
	require.EqualValues(t, 0, stock.Quantity)
}

func TestApplyMovements_FailingBatchLeavesLevelsUntouched(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	plentiful := seedStock(t, repo, 10)
	scarce := seedStock(t, repo, 1)

	err := repo.ApplyMovements(ctx, domain.DirectionOutbound, []domain.Movement{
		{ProductID: plentiful, Quantity: decimal.NewFromInt(5)},
		{ProductID: scarce, Quantity: decimal.NewFromInt(2)},
	})
	require.ErrorAs(t, err, &domain.InsufficientStockError{})

	stock, err := repo.Get(ctx, plentiful)
	require.NoError(t, err)
	require.EqualValues(t, 10, stock.Quantity)

	stock, err = repo.Get(ctx, scarce)
	require.NoError(t, err)
	require.EqualValues(t, 1, stock.Quantity)
}

func TestApplyMovements_MissingRecordFailsBatch(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	existing := seedStock(t, repo, 10)
	missing := uuid.New()

	err := repo.ApplyMovements(ctx, domain.DirectionInbound, []domain.Movement{
		{ProductID: existing, Quantity: decimal.NewFromInt(5)},
		{ProductID: missing, Quantity: decimal.NewFromInt(1)},
	})
	require.Equal(t, domain.StockRecordMissingError{ProductID: missing}, err)

	stock, err := repo.Get(ctx, existing)
	require.NoError(t, err)
	require.EqualValues(t, 10, stock.Quantity)
}

func TestApplyMovements_RepeatedProductAccumulates(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	productID := seedStock(t, repo, 5)

	err := repo.ApplyMovements(ctx, domain.DirectionOutbound, []domain.Movement{
		{ProductID: productID, Quantity: decimal.NewFromInt(3)},
		{ProductID: productID, Quantity: decimal.NewFromInt(3)},
	})
	require.ErrorAs(t, err, &domain.InsufficientStockError{})

	stock, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	require.EqualValues(t, 5, stock.Quantity)
}

func TestDelete_MissingStock(t *testing.T) {
	repo := NewRepository()
	require.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), ports.ErrStockNotFound)
}
