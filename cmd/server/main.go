package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/config"
	"github.com/mamadbah2/milkcenter/internal/repository/mongodb"
	"github.com/mamadbah2/milkcenter/internal/repository/sheets"
	"github.com/mamadbah2/milkcenter/internal/repository/slots"
	"github.com/mamadbah2/milkcenter/internal/repository/sqlite"
	"github.com/mamadbah2/milkcenter/internal/scheduler"
	"github.com/mamadbah2/milkcenter/internal/server/handlers"
	"github.com/mamadbah2/milkcenter/internal/server/router"
	commandsvc "github.com/mamadbah2/milkcenter/internal/service/commands"
	exportsvc "github.com/mamadbah2/milkcenter/internal/service/export"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
	reportingsvc "github.com/mamadbah2/milkcenter/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/milkcenter/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/milkcenter/pkg/clients/whatsapp"
	"github.com/mamadbah2/milkcenter/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}
	clock := func() time.Time { return time.Now().In(location) }

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	var mongoRepo *mongodb.MongoDBRepository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err = mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	var medium slots.Medium
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fileMedium, err := slots.OpenFileMedium(cfg.Storage.Dir)
		if err != nil {
			baseLogger.Fatal("failed to open storage directory", zap.String("dir", cfg.Storage.Dir), zap.Error(err))
		}
		medium = fileMedium
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			baseLogger.Fatal("failed to open sqlite store", zap.String("path", cfg.Storage.SQLitePath), zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		medium = store
	case config.BackendMongo:
		medium = mongoRepo
	case config.BackendMemory:
		medium = slots.NewMemoryMedium()
	}
	baseLogger.Info("storage backend selected", zap.String("backend", cfg.Storage.Backend))

	ledger := procurement.Open(startupCtx, medium, logger.Named(baseLogger, "svc.procurement"), clock)

	reportingOpts := []reportingsvc.Option{reportingsvc.WithClock(clock)}
	if mongoRepo != nil {
		reportingOpts = append(reportingOpts, reportingsvc.WithArchive(mongoRepo))
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingOpts = append(reportingOpts, reportingsvc.WithSheet(sheetsRepo))
	}
	reportingSvc := reportingsvc.NewService(ledger, logger.Named(baseLogger, "svc.reporting"), reportingOpts...)

	ledgerHandler := handlers.NewLedgerHandler(ledger, exportsvc.NewService(ledger, logger.Named(baseLogger, "svc.export")), logger.Named(baseLogger, "handlers.ledger"))

	var (
		webhookHandler *handlers.WebhookHandler
		notifier       scheduler.Notifier
	)
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(ledger, reportingSvc, logger.Named(baseLogger, "svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, webhook and report delivery disabled")
	}

	engine := router.New(ledgerHandler, webhookHandler, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, notifier, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
