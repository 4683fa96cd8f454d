package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuelstation/internal/config"
	"fuelstation/internal/erp"
	"fuelstation/internal/infra"
	"fuelstation/internal/repository"
	"fuelstation/internal/router"
	"fuelstation/internal/service"
	"fuelstation/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	shiftRepo := repository.NewShiftRepository(db)
	stationRepo := repository.NewStationRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// ── ERP collaborators ────────────────────────────────────────────────────
	accounting := erp.NewAccounting(db)
	prices := infra.NewPriceCache(rdb, erp.NewPricing(db), time.Duration(cfg.PriceCacheTTLMinutes)*time.Minute)

	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	shiftSvc := service.NewShiftService(service.ShiftDeps{
		Shifts:     shiftRepo,
		Stations:   stationRepo,
		History:    historyRepo,
		Catalog:    catalogRepo,
		Prices:     prices,
		Inventory:  erp.NewInventory(db),
		Sales:      erp.NewSales(db, accounting),
		Accounting: accounting,
		Reports:    dispatcher,
		DB:         db,
	})
	reportSvc := service.NewReportService(shiftRepo, stationRepo, catalogRepo)
	authSvc := service.NewAuthService(employeeRepo, cfg)

	// Worker pool: daily summary PDFs after post, then mail delivery.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	var emails worker.EmailQueue
	pool := worker.NewPool(rdb)
	if mailer.Enabled() {
		emails = dispatcher
		pool.Handle(worker.QueueEmail, worker.NewEmailWorker(mailer).Process)
	} else {
		log.Warn().Msg("SMTP_HOST not set, daily summaries will not be emailed")
	}
	pool.Handle(worker.QueueShiftReport, worker.NewReportWorker(reportSvc, shiftRepo, stationRepo, emails,
		infra.GenerateDailySummaryPDF, cfg.ReportStoragePath).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, router.Services{Auth: authSvc, Shifts: shiftSvc, Reports: reportSvc})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("fuel station backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
