package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/database"
	"github.com/ihelfrich/GermanCostCo/internal/storage"
	"github.com/ihelfrich/GermanCostCo/pkg/logger"
)

// app carries the process configuration and logger shared by all commands.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error itself is still logged.
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		File:   cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	return &app{cfg: cfg, log: log}, nil
}

// snapshot builds the assumption snapshot with refresh-file overrides and
// process-level parallelism applied.
func (a *app) snapshot() config.Snapshot {
	snap := config.LoadSnapshot(a.cfg.RefreshPath, a.log)
	snap.Simulation.Workers = a.cfg.Workers
	return snap
}

// openResults opens the results database and its run repository.
func (a *app) openResults() (*database.DB, *storage.RunRepository, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(a.cfg.DataDir, "results.db"),
		Name:    "results",
		Profile: database.ProfileStandard,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening results database: %w", err)
	}

	repo, err := storage.NewRunRepository(db, a.log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:           "costco",
		Short:         "Costco Germany 2026 market-entry analysis engine",
		Long:          "Stochastic scenario simulation, strategy valuation, and city rollout optimization for the Costco Germany 2026 market-entry study.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newReportCmd(),
		newAuditCmd(),
	)

	return rootCmd.Execute()
}
