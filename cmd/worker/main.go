package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	"github.com/Apurer/go-market-api-server/internal/app/api"
	billingevents "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/events"
	billingmemory "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/memory"
	billingpostgres "github.com/Apurer/go-market-api-server/internal/domains/billing/adapters/persistence/postgres"
	billingapp "github.com/Apurer/go-market-api-server/internal/domains/billing/application"
	billingports "github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	catalogmemory "github.com/Apurer/go-market-api-server/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-market-api-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-market-api-server/internal/domains/catalog/application"
	inventorymemory "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/Apurer/go-market-api-server/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/Apurer/go-market-api-server/internal/domains/inventory/application"
	"github.com/Apurer/go-market-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-market-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-market-api-server/internal/platform/postgres"
	invoiceactivities "github.com/Apurer/go-market-api-server/internal/platform/temporal/activities/invoices"
	invoiceworkflows "github.com/Apurer/go-market-api-server/internal/platform/temporal/workflows/invoices"
)

func main() {
	ctx := context.Background()
	const serviceName = "market-checkout-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()

	billingService := buildBillingService(db, cfg, logger)
	invoiceActivities := invoiceactivities.NewActivities(billingService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, invoiceworkflows.ConfirmationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(invoiceworkflows.ConfirmationWorkflow, workflow.RegisterOptions{Name: invoiceworkflows.ConfirmationWorkflowName})
	w.RegisterActivityWithOptions(invoiceActivities.ConfirmInvoice, activity.RegisterOptions{Name: invoiceactivities.ConfirmInvoiceActivityName})

	logger.Info("worker listening", slog.String("taskQueue", invoiceworkflows.ConfirmationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildBillingService(db *gorm.DB, cfg api.Config, logger *slog.Logger) billingports.Service {
	var publisher billingports.EventPublisher = billingevents.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = billingevents.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("worker kafka event publisher enabled", slog.String("topic", cfg.KafkaTopic))
	}
	if db == nil {
		inventoryService := inventoryapp.NewService(inventorymemory.NewRepository())
		catalogService := catalogapp.NewService(
			catalogmemory.NewProductRepository(),
			catalogmemory.NewOperationTypeRepository(),
			catalogmemory.NewPaymentMethodRepository(),
			catalogmemory.NewCustomerRepository(),
			inventoryService,
		)
		return billingapp.NewService(
			billingmemory.NewInvoiceRepository(),
			billingmemory.NewLineItemRepository(),
			catalogService,
			inventoryService,
			publisher,
			logger,
		)
	}
	inventoryService := inventoryapp.NewService(inventorypostgres.NewRepository(db))
	catalogService := catalogapp.NewService(
		catalogpostgres.NewProductRepository(db),
		catalogpostgres.NewOperationTypeRepository(db),
		catalogpostgres.NewPaymentMethodRepository(db),
		catalogpostgres.NewCustomerRepository(db),
		inventoryService,
	)
	return billingapp.NewService(
		billingpostgres.NewInvoiceRepository(db),
		billingpostgres.NewLineItemRepository(db),
		catalogService,
		inventoryService,
		publisher,
		logger,
	)
}

func connectPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*gorm.DB, func()) {
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, worker falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("worker failed to run migrations", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return nil, func() {}
	}
	logger.Info("worker repositories configured with postgres")
	return db, func() { _ = sqlDB.Close() }
}
