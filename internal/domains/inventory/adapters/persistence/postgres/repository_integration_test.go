//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-market-api-server/internal/platform/migrations"
)

func setupInventoryPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("market_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedLevel(t *testing.T, repo *Repository, quantity int64) uuid.UUID {
	t.Helper()
	stock := domain.NewStock(uuid.New())
	stock.Quantity = quantity
	_, err := repo.Save(context.Background(), stock)
	require.NoError(t, err)
	return stock.ProductID
}

func TestRepository_SaveAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedLevel(t, repo, 12)

	fetched, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, productID, fetched.ProductID)
	assert.EqualValues(t, 12, fetched.Quantity)
}

func TestRepository_SaveOverridesLevel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedLevel(t, repo, 5)

	stock := domain.NewStock(productID)
	stock.Quantity = 40
	_, err := repo.Save(ctx, stock)
	require.NoError(t, err)

	fetched, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 40, fetched.Quantity)
}

func TestRepository_ApplyMovementsCommitsBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := seedLevel(t, repo, 10)
	second := seedLevel(t, repo, 3)

	err := repo.ApplyMovements(ctx, domain.DirectionOutbound, []domain.Movement{
		{ProductID: first, Quantity: decimal.NewFromInt(4)},
		{ProductID: second, Quantity: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)

	firstLevel, err := repo.Get(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 6, firstLevel.Quantity)

	secondLevel, err := repo.Get(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 0, secondLevel.Quantity)
}

func TestRepository_ApplyMovementsRollsBackOnShortage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first := seedLevel(t, repo, 10)
	second := seedLevel(t, repo, 1)

	err := repo.ApplyMovements(ctx, domain.DirectionOutbound, []domain.Movement{
		{ProductID: first, Quantity: decimal.NewFromInt(4)},
		{ProductID: second, Quantity: decimal.NewFromInt(2)},
	})
	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.InsufficientStockError{})

	firstLevel, err := repo.Get(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 10, firstLevel.Quantity)

	secondLevel, err := repo.Get(ctx, second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, secondLevel.Quantity)
}

func TestRepository_ApplyMovementsMissingRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	err := repo.ApplyMovements(ctx, domain.DirectionInbound, []domain.Movement{
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	assert.ErrorAs(t, err, &domain.StockRecordMissingError{})
}

func TestRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupInventoryPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedLevel(t, repo, 0)

	err := repo.Delete(ctx, productID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, productID)
	assert.ErrorIs(t, err, ports.ErrStockNotFound)

	err = repo.Delete(ctx, productID)
	assert.ErrorIs(t, err, ports.ErrStockNotFound)
}
