package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihelfrich/GermanCostCo/internal/storage"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Print a stored board report",
		Long:  "Prints the markdown board report of the given run, or the most recent run when no id is provided.",
		Args:  cobra.MaximumNArgs(1),
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

			runID := ""
			if len(args) == 1 {
				runID = args[0]
			} else {
				runID, err = repo.LatestRunID(cmd.Context())
				if errors.Is(err, storage.ErrRunNotFound) {
					return fmt.Errorf("no runs stored yet, execute `costco run` first")
				}
				if err != nil {
					return err
				}
			}

			report, err := repo.GetReport(cmd.Context(), runID)
			if errors.Is(err, storage.ErrRunNotFound) {
				return fmt.Errorf("run not found: %s", runID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	return cmd
}
