//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-market-api-server/internal/platform/migrations"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func TestProductRepository_SaveAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct("rice 1kg", 7891000100103, decimal.RequireFromString("4.50"), decimal.RequireFromString("1.000"), true)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, product.ID, saved.ID)

	byID, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, byID.Name)
	assert.True(t, byID.UnitPrice.Equal(product.UnitPrice))

	byBarCode, err := repo.GetByBarCode(ctx, product.BarCode)
	require.NoError(t, err)
	assert.Equal(t, product.ID, byBarCode.ID)
}

func TestProductRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	product, err := domain.NewProduct("beans 500g", 7891000200100, decimal.RequireFromString("3.20"), decimal.RequireFromString("0.500"), true)
	require.NoError(t, err)
	_, err = repo.Save(ctx, product)
	require.NoError(t, err)

	err = repo.Delete(ctx, product.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestOperationTypeRepository_SaveAssignsID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewOperationTypeRepository(db)
	ctx := context.Background()

	opt, err := domain.NewOperationType(0, domain.KindSale, true, true)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, opt)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSale, fetched.Kind)
	assert.True(t, fetched.UpdatesStock)
}

func TestPaymentMethodRepository_CardBrandsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewPaymentMethodRepository(db)
	ctx := context.Background()

	method, err := domain.NewPaymentMethod(0, "credit card", []string{"visa", "mastercard"})
	require.NoError(t, err)

	saved, err := repo.Save(ctx, method)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"visa", "mastercard"}, fetched.CardBrands)
}

func TestCustomerRepository_KeyedByCPF(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewCustomerRepository(db)
	ctx := context.Background()

	customer, err := domain.NewCustomer("123.456.789-09", "Maria", time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = repo.Save(ctx, customer)
	require.NoError(t, err)

	fetched, err := repo.GetByCPF(ctx, customer.CPF)
	require.NoError(t, err)
	assert.Equal(t, "Maria", fetched.Name)

	err = repo.Delete(ctx, customer.CPF)
	require.NoError(t, err)

	_, err = repo.GetByCPF(ctx, customer.CPF)
	assert.ErrorIs(t, err, ports.ErrCustomerNotFound)
}
