package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihelfrich/GermanCostCo/internal/pipeline"
	"github.com/ihelfrich/GermanCostCo/internal/scheduler"
	"github.com/ihelfrich/GermanCostCo/internal/server"
)

func newServeCmd() *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Serves stored runs and run triggers over HTTP. When COSTCO_RUN_CRON is set, analysis re-runs are scheduled on that cadence.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			db, repo, err := a.openResults()
			if err != nil {
				a.log.Error().Err(err).Msg("Failed to open results database")
				return err
			}
			defer db.Close()

			runAnalysis := func(ctx context.Context) error {
				p, err := pipeline.New(a.snapshot(), a.log)
				if err != nil {
					return err
				}
				result, err := p.Run(ctx)
				if err != nil {
					return err
				}
				return repo.Save(ctx, result)
			}

			if runOnStart {
				if err := runAnalysis(cmd.Context()); err != nil {
					a.log.Error().Err(err).Msg("Startup analysis run failed")
					return err
				}
			}

			sched := scheduler.New(a.log)
			if a.cfg.CronSpec != "" {
				if err := sched.Register(a.cfg.CronSpec, "analysis-refresh", 30*time.Minute, runAnalysis); err != nil {
					a.log.Error().Err(err).Str("spec", a.cfg.CronSpec).Msg("Failed to register scheduled run")
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			srv := server.New(server.Config{
				Log:       a.log,
				Snapshot:  a.snapshot(),
				Repo:      repo,
				ResultsDB: db,
				Port:      a.cfg.Port,
				DevMode:   a.cfg.DevMode,
			})

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				a.log.Error().Err(err).Msg("HTTP server failed")
				return err
			case sig := <-stop:
				a.log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("Graceful shutdown failed")
				return err
			}

			a.log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "execute one analysis run before serving")
	return cmd
}
