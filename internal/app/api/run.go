package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	billingevents "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/events"
	billinghttp "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/http"
	billingmemory "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/memory"
	billingobs "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/observability"
	billingpostgres "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/persistence/postgres"
	billingworkflows "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/workflows"
	billingapp "github.com/Apurer/go-market-api-server/internal/domains/billing/application"
	billingports "github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	cataloghttp "github.com/Apurer/go-market-api-server/internal/domains/catalog/adapters/http"
	catalogmemory "github.com/Apurer/go-market-api-server/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-market-api-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-market-api-server/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
	inventoryhttp "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/http"
	inventorymemory "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/Apurer/go-market-api-server/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-market-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-market-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-market-api-server/internal/platform/postgres"
	sharederrors "github.com/Apurer/go-market-api-server/internal/shared/errors"
)

// Run boots the checkout HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "market-checkout-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()

	repos := buildRepositories(db)
	inventoryService := inventoryapp.NewService(repos.stock)
	catalogService := catalogapp.NewService(
		repos.products,
		repos.operationTypes,
		repos.paymentMethods,
		repos.customers,
		inventoryService,
	)

	var publisher billingports.EventPublisher = billingevents.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := billingevents.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Warn("failed to close kafka publisher", slog.String("error", err.Error()))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("kafka event publisher enabled", slog.String("topic", cfg.KafkaTopic))
	}

	coreBilling := billingapp.NewService(
		repos.invoices,
		repos.lineItems,
		catalogService,
		inventoryService,
		publisher,
		logger,
	)
	billingService := billingobs.New(
		coreBilling,
		billingobs.WithLogger(logger),
		billingobs.WithTracer(instruments.Tracer("internal.billing.application")),
		billingobs.WithMeter(instruments.Meter("internal.billing.application")),
	)

	var confirmations billingports.ConfirmationOrchestrator = billingworkflows.NewInlineConfirmation(billingService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running confirmation inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		confirmations = billingworkflows.NewTemporalConfirmation(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	responder := sharederrors.NewChainedResponder("",
		billinghttp.ErrorMapper,
		inventoryhttp.ErrorMapper,
		cataloghttp.ErrorMapper,
	)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	cataloghttp.NewHandler(catalogService, responder).Register(router)
	inventoryhttp.NewHandler(inventoryService, responder).Register(router)
	billinghttp.NewHandler(billingService, confirmations, responder).Register(router)

	addr := ":" + cfg.Port
	logger.Info("checkout API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("checkout API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type repositories struct {
	products       catalogports.ProductRepository
	operationTypes catalogports.OperationTypeRepository
	paymentMethods catalogports.PaymentMethodRepository
	customers      catalogports.CustomerRepository
	stock          inventoryports.Repository
	invoices       billingports.InvoiceRepository
	lineItems      billingports.LineItemRepository
}

func buildRepositories(db *gorm.DB) repositories {
	if db == nil {
		return repositories{
			products:       catalogmemory.NewProductRepository(),
			operationTypes: catalogmemory.NewOperationTypeRepository(),
			paymentMethods: catalogmemory.NewPaymentMethodRepository(),
			customers:      catalogmemory.NewCustomerRepository(),
			stock:          inventorymemory.NewRepository(),
			invoices:       billingmemory.NewInvoiceRepository(),
			lineItems:      billingmemory.NewLineItemRepository(),
		}
	}
	return repositories{
		products:       catalogpostgres.NewProductRepository(db),
		operationTypes: catalogpostgres.NewOperationTypeRepository(db),
		paymentMethods: catalogpostgres.NewPaymentMethodRepository(db),
		customers:      catalogpostgres.NewCustomerRepository(db),
		stock:          inventorypostgres.NewRepository(db),
		invoices:       billingpostgres.NewInvoiceRepository(db),
		lineItems:      billingpostgres.NewLineItemRepository(db),
	}
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
