package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihelfrich/GermanCostCo/internal/modules/compliance"
)

// defaultAuditLabels is the product-label sample checked when no labels are
// passed on the command line.
var defaultAuditLabels = []string{
	"Climate neutral household bundle",
	"Eco-friendly kitchen set",
	"Recycled-content office chair ISO 14021",
	"Green packaging for paper towels",
}

var defaultShiftPlan = []compliance.ShiftPlanRecord{
	{Warehouse: "Berlin", NoticePeriodDays: 3, MonitoringType: "aggregate_metrics"},
	{Warehouse: "Hamburg", NoticePeriodDays: 7, MonitoringType: "individual_performance_tracking"},
	{Warehouse: "Munich", NoticePeriodDays: 5, MonitoringType: "aggregate_metrics"},
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [label...]",
		Short: "Check product claims and shift plans for German-market compliance",
		Long:  "Audits product labels against UWG green-claim rules and the standard shift plan against works-council and GDPR constraints. Labels passed as arguments replace the default sample.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			labels := defaultAuditLabels
			if len(args) > 0 {
				labels = args
			}

			greenFindings := compliance.AuditGreenClaims(labels)
			workforceFindings := compliance.CheckWorkforceScheduling(defaultShiftPlan)
			summary := compliance.SummarizeRisk(greenFindings, workforceFindings)

			a.log.Info().
				Int("green_claim_violations", summary.GreenClaimViolations).
				Int("workforce_alerts", summary.WorkforceAlerts).
				Int("high_severity", summary.HighSeverityFindings).
				Msg("Compliance audit complete")

			out, err := json.MarshalIndent(map[string]any{
				"green_claims": greenFindings,
				"workforce":    workforceFindings,
				"summary":      summary,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return cmd
}
