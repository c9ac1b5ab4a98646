// Package main is the entry point for the runway forecasting service.
// It wires the capital ledger, cash position, and expense register over a
// two-database SQLite layout, exposes the forecasting API over HTTP, and
// runs nightly recalculation and backup jobs in the background.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Seeksy-app/runway/internal/config"
	"github.com/Seeksy-app/runway/internal/database"
	"github.com/Seeksy-app/runway/internal/events"
	"github.com/Seeksy-app/runway/internal/modules/capital"
	capitalhandlers "github.com/Seeksy-app/runway/internal/modules/capital/handlers"
	"github.com/Seeksy-app/runway/internal/modules/expenses"
	expensehandlers "github.com/Seeksy-app/runway/internal/modules/expenses/handlers"
	feehandlers "github.com/Seeksy-app/runway/internal/modules/fees/handlers"
	"github.com/Seeksy-app/runway/internal/reliability"
	"github.com/Seeksy-app/runway/internal/scheduler"
	"github.com/Seeksy-app/runway/internal/server"
	"github.com/Seeksy-app/runway/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting runway service")

	// Two-database layout: ledger.db holds the append-only capital event
	// trail under the maximum-safety profile, finance.db holds the mutable
	// cash position, expense register, and forecast cache.
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	financeDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "finance.db"),
		Profile: database.ProfileStandard,
		Name:    "finance",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open finance database")
	}
	defer financeDB.Close()

	for _, db := range []*database.DB{ledgerDB, financeDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	eventBus := events.NewBus(log)

	// Repositories and services
	eventRepo := capital.NewEventRepository(ledgerDB.Conn(), log)
	positionRepo := capital.NewPositionRepository(financeDB.Conn(), log)
	forecastCache := capital.NewForecastCache(financeDB.Conn(), log)
	expenseRepo := expenses.NewRepository(financeDB.Conn(), log)

	capitalService := capital.NewService(
		eventRepo,
		positionRepo,
		forecastCache,
		expenseRepo,
		eventBus,
		cfg.DefaultGrowthRate,
		cfg.DefaultHorizon,
		log,
	)

	// HTTP server
	srv := server.New(server.Config{
		Log:             log,
		LedgerDB:        ledgerDB,
		FinanceDB:       financeDB,
		Config:          cfg,
		EventBus:        eventBus,
		CapitalHandlers: capitalhandlers.NewHandler(eventRepo, positionRepo, capitalService, log),
		ExpenseHandlers: expensehandlers.NewHandler(expenseRepo, log),
		FeeHandlers:     feehandlers.NewHandler(log),
	})

	go func() {
		if err := srv.Start(cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Background jobs
	databases := map[string]*database.DB{
		"ledger":  ledgerDB,
		"finance": financeDB,
	}

	sched := scheduler.New(log)

	recalcJob := scheduler.NewRecalculateForecastJob(capitalService, log)
	if err := sched.AddJob("0 0 3 * * *", recalcJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register recalculation job")
	}

	walJob := scheduler.NewWALCheckpointJob(databases, log)
	if err := sched.AddJob("0 0 2 * * *", walJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}

	backupService := reliability.NewBackupService(databases, filepath.Join(cfg.DataDir, "backups"), log)
	backupJob := reliability.NewDailyBackupJob(backupService)
	if err := sched.AddJob("0 30 2 * * *", backupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register backup job")
	}

	// Cloud backups only run when R2 credentials are configured
	if cfg.Backup != nil && cfg.Backup.Enabled {
		r2Client, err := reliability.NewR2Client(
			context.Background(),
			cfg.Backup.Bucket,
			cfg.Backup.Endpoint,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 client")
		}

		r2BackupService := reliability.NewR2BackupService(r2Client, backupService, cfg.DataDir, eventBus, log)
		r2Job := reliability.NewR2BackupJob(r2BackupService, 90)
		if err := sched.AddJob(cfg.Backup.Schedule, r2Job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register R2 backup job")
		}

		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("R2 backups enabled")
	} else {
		log.Info().Msg("R2 backups disabled (no credentials configured)")
	}

	sched.Start()
	defer sched.Stop()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
