package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/config"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/repository/mongodb"
	"github.com/mamadbah2/inventory/internal/repository/recordstore"
	"github.com/mamadbah2/inventory/internal/repository/sheets"
	"github.com/mamadbah2/inventory/internal/scheduler"
	"github.com/mamadbah2/inventory/internal/server/handlers"
	"github.com/mamadbah2/inventory/internal/server/router"
	inventorysvc "github.com/mamadbah2/inventory/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/inventory/internal/service/reporting"
	"github.com/mamadbah2/inventory/internal/service/session"
	whatsappsvc "github.com/mamadbah2/inventory/internal/service/whatsapp"
	"github.com/mamadbah2/inventory/pkg/clients/auth"
	whatsappclient "github.com/mamadbah2/inventory/pkg/clients/whatsapp"
	"github.com/mamadbah2/inventory/pkg/logger"
	"github.com/mamadbah2/inventory/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeClient := recordstore.NewClient(cfg.Store, logger.Named(baseLogger, "repo.recordstore"))
	authClient := auth.NewClient(cfg.Store)
	sessions := session.NewManager(authClient, storeClient, logger.Named(baseLogger, "svc.session"))

	var events rabbitmq.Publisher = rabbitmq.NopPublisher{}
	if cfg.Events.Enabled() {
		publisher, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.Events.URL, Exchange: cfg.Events.Exchange}, logger.Named(baseLogger, "events"))
		if err != nil {
			baseLogger.Fatal("failed to init event publisher", zap.Error(err))
		}
		events = publisher
		baseLogger.Info("product events enabled", zap.String("exchange", cfg.Events.Exchange))
	} else {
		baseLogger.Warn("AMQP_URL missing, product events disabled")
	}
	defer func() {
		if err := events.Close(); err != nil {
			baseLogger.Error("failed to close event publisher", zap.Error(err))
		}
	}()

	defaultLocale := i18n.Parse(cfg.Locale.Default)
	inventory := inventorysvc.NewService(storeClient, events, logger.Named(baseLogger, "svc.inventory"))
	handler := handlers.NewHandler(sessions, inventory, defaultLocale, logger.Named(baseLogger, "handlers"))
	engine := router.New(handler, logger.Named(baseLogger, "router"))

	if cfg.Reporting.Enabled {
		sched, closeSinks := startScheduler(ctx, cfg, storeClient, defaultLocale, baseLogger)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
			closeSinks(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// startScheduler wires the report sinks that are configured and starts the cron
// job. The returned func releases the sink connections.
func startScheduler(ctx context.Context, cfg *config.Config, storeClient *recordstore.Client, locale i18n.Locale, baseLogger *zap.Logger) (*scheduler.Scheduler, func(context.Context)) {
	var sinks reportingsvc.Sinks
	closeSinks := func(context.Context) {}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		closeSinks = func(closeCtx context.Context) {
			if err := mongoRepo.Close(closeCtx); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		sinks.Reports = mongoRepo
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks.Sheet = sheetsRepo
	}

	if cfg.WhatsApp.Enabled() {
		sinks.Alerts = whatsappsvc.NewAlertNotifier(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), logger.Named(baseLogger, "svc.whatsapp"))
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid reporting timezone", zap.Error(err))
	}

	reporting := reportingsvc.NewService(storeClient.ForToken(cfg.Store.ServiceKey), sinks, locale, loc, logger.Named(baseLogger, "svc.reporting"))
	sched, err := scheduler.NewScheduler(cfg.Reporting, reporting, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	return sched, closeSinks
}
