package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/byteledger/backend/internal/application/billing"
	partyapp "github.com/byteledger/backend/internal/application/party"
	printingapp "github.com/byteledger/backend/internal/application/printing"
	"github.com/byteledger/backend/internal/domain/printing"
	"github.com/byteledger/backend/internal/domain/shared"
	"github.com/byteledger/backend/internal/infrastructure/cache"
	"github.com/byteledger/backend/internal/infrastructure/config"
	"github.com/byteledger/backend/internal/infrastructure/event"
	"github.com/byteledger/backend/internal/infrastructure/logger"
	"github.com/byteledger/backend/internal/infrastructure/persistence"
	infra "github.com/byteledger/backend/internal/infrastructure/printing"
	"github.com/byteledger/backend/internal/infrastructure/scheduler"
	"github.com/byteledger/backend/internal/infrastructure/storage"
	"github.com/byteledger/backend/internal/infrastructure/telemetry"
	"github.com/byteledger/backend/internal/interfaces/http/handler"
	"github.com/byteledger/backend/internal/interfaces/http/middleware"
	"github.com/byteledger/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Billing Document API
//	@version		1.0
//	@description	Estimates, sales, payments and printable documents
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.ConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.Logs.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting billing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", telemetry.ServiceVersion),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.InstrumentDB(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	// Postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	var redisClient *redis.Client
	if cfg.Lock.Backend == "redis" || (cfg.Idempotency.Enabled && cfg.Idempotency.Backend == "redis") {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	locker, err := cache.NewDocumentLocker(cfg.Lock, redisClient, log)
	if err != nil {
		log.Fatal("Failed to create document locker", zap.Error(err))
	}
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Idempotency, redisClient)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	documentStore, err := storage.NewDocumentStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}

	registry, err := infra.NewRegistryFromConfig(cfg.Render, log)
	if err != nil {
		log.Fatal("Failed to initialize renderers", zap.Error(err))
	}
	defer func() {
		if err := registry.Close(); err != nil {
			log.Error("Error closing renderers", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewBillingMetrics(providers.Meter.Meter("billing"))
	if err != nil {
		log.Fatal("Failed to create billing metrics", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	billingService := billingapp.NewBillingService(documentRepo, locker,
		billingapp.WithLogger(log),
		billingapp.WithMetrics(metrics),
		billingapp.WithIdempotency(idempotencyStore, shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: cfg.Idempotency.Enabled,
		}),
		billingapp.WithCustomers(customerRepo),
		billingapp.WithEventPublisher(eventBus),
		billingapp.WithLockWait(cfg.Lock.WaitTimeout),
	)

	directory := printingapp.NewConfiguredDirectory(cfg.Organization, customerRepo)
	documentService := printingapp.NewDocumentService(documentRepo, directory,
		printing.NewEngine(infra.LayoutConfigFrom(cfg.Render)), registry, documentStore, log)
	documentService.SetMetrics(metrics)
	if cfg.Storage.ArchiveOnPaid {
		eventBus.Subscribe(printingapp.NewPaidDocumentArchiver(documentService, cfg.Render.DefaultFormat, log))
	}

	customerService := partyapp.NewCustomerService(customerRepo, log)

	if cfg.Scheduler.Enabled {
		sweeper := billingapp.NewStatusSweeper(documentRepo, cfg.Scheduler.BatchSize, log)
		statusScheduler, err := scheduler.New(scheduler.Config{
			Interval:   cfg.Scheduler.Interval,
			Timeout:    cfg.Scheduler.Timeout,
			RunOnStart: true,
		}, sweeper, log)
		if err != nil {
			log.Fatal("Failed to create status scheduler", zap.Error(err))
		}
		if err := statusScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start status scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = statusScheduler.Stop(stopCtx)
		}()
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		Tenant:         middleware.DefaultTenantConfig(),
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          providers.Meter.Meter("http"),
		Logger:         log,
	}, router.Handlers{
		Billing:   handler.NewBillingHandler(billingService),
		Documents: handler.NewDocumentHandler(documentService),
		Customers: handler.NewCustomerHandler(customerService),
		Health:    handler.NewHealthHandler(telemetry.ServiceVersion, checks),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
