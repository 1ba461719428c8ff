package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appaccounting "github.com/ledger/backend/internal/application/accounting"
	"github.com/ledger/backend/internal/application/command"
	appinvoicing "github.com/ledger/backend/internal/application/invoicing"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"github.com/ledger/backend/internal/infrastructure/cache"
	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/ledger/backend/internal/infrastructure/event"
	"github.com/ledger/backend/internal/infrastructure/eventstore"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"github.com/ledger/backend/internal/infrastructure/persistence"
	"github.com/ledger/backend/internal/infrastructure/projection"
	"github.com/ledger/backend/internal/interfaces/http/handler"
	"github.com/ledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, store, err := openEventStore(cfg, log)
	if err != nil {
		return err
	}
	if db == nil {
		// The memory driver has no projection store to serve reads from;
		// it exists for tests and tooling, not the server.
		return errors.New("memory event store cannot back the server; use the sqlite or postgres driver")
	}

	cacheFactory := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	appCache, err := cacheFactory.CreateCache()
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	bus := event.NewInMemoryEventBus(log)
	registerProjectors(bus, db, appCache, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}

	executor := command.NewExecutor(store, bus, log,
		command.WithConflictRetries(cfg.Command.ConflictRetries))

	accountReads := projection.NewAccountReadRepository(db)
	invoiceReads := projection.NewInvoiceReadRepository(db)
	paymentReads := projection.NewPaymentReadRepository(db)
	issueRepo := projection.NewReconciliationIssueRepository(db)
	numbers := projection.NewSequenceGenerator(db)

	chartService := appaccounting.NewChartService(executor, accountReads, log)
	journalService := appaccounting.NewJournalService(executor, store, numbers, log)
	accountQueries := appaccounting.NewAccountQueryService(accountReads, appCache, cfg.Cache.EntityTTL, log)
	trialBalance := appaccounting.NewTrialBalanceService(accountReads, appCache, cfg.Cache.TrialBalanceTTL, log)

	invoiceService := appinvoicing.NewInvoiceService(executor, log)
	paymentService := appinvoicing.NewPaymentService(executor, invoiceService, issueRepo, log)
	invoicingQueries := appinvoicing.NewQueryService(invoiceReads, paymentReads, appCache, cfg.Cache.EntityTTL, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	engine := router.Setup(jwtService, router.Handlers{
		Accounts:       handler.NewAccountHandler(chartService, accountQueries, trialBalance),
		Journal:        handler.NewJournalHandler(journalService),
		Invoices:       handler.NewInvoiceHandler(invoiceService, invoicingQueries),
		Payments:       handler.NewPaymentHandler(paymentService, invoicingQueries),
		Tax:            handler.NewTaxHandler(),
		Reconciliation: handler.NewReconciliationHandler(issueRepo),
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("eventstore", cfg.EventStore.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("event bus stop failed", zap.Error(err))
	}
	log.Info("shutdown complete")
	return nil
}

// openEventStore opens the configured event store backend. The gorm
// database, when any, doubles as the projection store.
func openEventStore(cfg *config.Config, log *zap.Logger) (*gorm.DB, shared.EventStore, error) {
	serializer := eventstore.NewDomainSerializer()

	switch cfg.EventStore.Driver {
	case "postgres":
		database, err := persistence.NewDatabase(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return database.DB, eventstore.NewGormEventStore(database.DB, serializer, log), nil
	case "sqlite":
		database, err := persistence.NewSQLiteDatabase(cfg.EventStore.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		if err := database.DB.AutoMigrate(append(projection.Models(), &eventstore.StoredEvent{})...); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return database.DB, eventstore.NewGormEventStore(database.DB, serializer, log), nil
	case "memory":
		return nil, eventstore.NewMemoryEventStore(), nil
	default:
		return nil, nil, fmt.Errorf("unknown eventstore driver %q", cfg.EventStore.Driver)
	}
}

func registerProjectors(bus *event.InMemoryEventBus, db *gorm.DB, appCache shared.Cache, log *zap.Logger) {
	ledger := projection.NewLedgerProjector(db, appCache, log)
	invoices := projection.NewInvoiceProjector(db, appCache, log)
	payments := projection.NewPaymentProjector(db, appCache, log)

	bus.Subscribe(ledger, ledger.EventTypes()...)
	bus.Subscribe(invoices, invoices.EventTypes()...)
	bus.Subscribe(payments, payments.EventTypes()...)
}
