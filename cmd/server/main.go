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

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/repository/backend"
	"github.com/mamadbah2/herdcare/internal/repository/sheets"
	"github.com/mamadbah2/herdcare/internal/scheduler"
	"github.com/mamadbah2/herdcare/internal/server/handlers"
	"github.com/mamadbah2/herdcare/internal/server/router"
	commandsvc "github.com/mamadbah2/herdcare/internal/service/commands"
	herdsvc "github.com/mamadbah2/herdcare/internal/service/herd"
	reportingsvc "github.com/mamadbah2/herdcare/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdcare/internal/service/whatsapp"
	"github.com/mamadbah2/herdcare/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/herdcare/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdcare/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.WithLevel(cfg.Server.LogLevel)))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	store, err := backend.Open(context.Background(), cfg, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()

	var exporter sheets.Repository
	if cfg.Sheets.Enabled() {
		exporter, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Info("google sheets export disabled")
	}

	herdSvc := herdsvc.NewService(store, herdsvc.Options{
		ReadyMinDays:           cfg.Care.ReadyMinDays,
		DashboardDueWindowDays: cfg.Care.DashboardDueWindowDays,
		Location:               loc,
	}, baseLogger.Named("svc.herd"))
	reportingSvc := reportingsvc.NewService(herdSvc, store, exporter, cfg.Care.DueSoonDays, baseLogger.Named("svc.reporting"))

	routes := router.Handlers{
		Herd: handlers.NewHerdHandler(herdSvc, reportingSvc, baseLogger.Named("handlers.herd")),
	}

	var sender scheduler.DigestSender
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(herdSvc, reportingSvc, baseLogger.Named("svc.commands"))

		var aiClient anthropic.Client
		if cfg.AI.AnthropicKey != "" {
			aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
			baseLogger.Info("anthropic ai client enabled")
		} else {
			baseLogger.Warn("anthropic api key missing, free text messages get the command help")
		}

		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, aiClient, baseLogger.Named("svc.whatsapp"))
		routes.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))

		if cfg.WhatsApp.Recipient != "" {
			sender = messagingSvc
		} else {
			baseLogger.Warn("no digest recipient configured, daily digest will not be sent")
		}
	} else {
		baseLogger.Info("whatsapp disabled")
	}

	engine := router.New(routes, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, sender, baseLogger.Named("scheduler"))
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
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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
