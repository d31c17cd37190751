package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ihelfrich/GermanCostCo/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var (
		noSave      bool
		printStdout bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one full analysis run",
		Long:  "Runs the scenario simulation, decision matrix, valuation, and rollout optimization, stores the result, and writes the board report and executive summary to the data directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			p, err := pipeline.New(a.snapshot(), a.log)
			if err != nil {
				a.log.Error().Err(err).Msg("Failed to build pipeline")
				return err
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				a.log.Error().Err(err).Msg("Analysis run failed")
				return err
			}

			if !noSave {
				db, repo, err := a.openResults()
				if err != nil {
					a.log.Error().Err(err).Msg("Failed to open results database")
					return err
				}
				defer db.Close()

				if err := repo.Save(cmd.Context(), result); err != nil {
					a.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run")
					return err
				}
			}

			if err := writeArtifacts(a.cfg.DataDir, result); err != nil {
				a.log.Error().Err(err).Msg("Failed to write run artifacts")
				return err
			}

			a.log.Info().
				Str("run_id", result.RunID).
				Str("recommended_strategy", result.Insights.RecommendedStrategy).
				Float64("npv_5y_eur", result.Insights.RecommendedNPV5yEUR).
				Dur("elapsed", result.Elapsed).
				Msg("Analysis run complete")

			if printStdout {
				fmt.Fprintln(cmd.OutOrStdout(), result.Report)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting the run to the results database")
	cmd.Flags().BoolVar(&printStdout, "print", false, "print the board report to stdout")
	return cmd
}

// writeArtifacts mirrors the stored run as files for offline review.
func writeArtifacts(dataDir string, result *pipeline.Result) error {
	reportPath := filepath.Join(dataDir, "board_report.md")
	if err := os.WriteFile(reportPath, []byte(result.Report), 0644); err != nil {
		return fmt.Errorf("writing board report: %w", err)
	}

	insightsJSON, err := json.MarshalIndent(result.Insights, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding executive summary: %w", err)
	}
	summaryPath := filepath.Join(dataDir, "executive_summary.json")
	if err := os.WriteFile(summaryPath, insightsJSON, 0644); err != nil {
		return fmt.Errorf("writing executive summary: %w", err)
	}
	return nil
}
