package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/compliance"
	"github.com/ihelfrich/GermanCostCo/internal/modules/psychology"
	"github.com/ihelfrich/GermanCostCo/internal/modules/valuation"
)

func TestNumFormatting(t *testing.T) {
	assert.Equal(t, "1,234,567.89", Num(1234567.89))
	assert.Equal(t, "-55,000,000", Num0(-55_000_000))
	assert.Equal(t, "0.00", Num(0))
	assert.Equal(t, "12.50%", Pct(0.125))
}

func TestTableRender(t *testing.T) {
	out := NewTable("a", "b").AddRow("1", "2").AddRow("3", "4").Render()
	assert.Equal(t, "| a | b |\n| --- | --- |\n| 1 | 2 |\n| 3 | 4 |\n", out)
}

func TestBuildBoardReport_ContainsAllSections(t *testing.T) {
	snap := config.Default()
	in := Input{
		RunID:       "run-123",
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Snapshot:    snap,
		Summaries: []domain.ScenarioStrategySummary{
			{Scenario: "base_case", Strategy: "standard_65", MeanContributionEUR: 8_000_000, ProbLoss: 0.05, MeanAdoptionRate: 0.21, MeanBreakEvenMonthlyEUR: 58},
		},
		Decisions: []domain.DecisionRecord{
			{Strategy: "standard_65", Rank: 1, WeightedMeanContributionEUR: 7_000_000, WeightedProbLoss: 0.08, RiskAdjustedScore: 5_500_000},
		},
		Valuations: []domain.ValuationRecord{
			{Strategy: "standard_65", NPV5yEUR: 120_000_000, PaybackYear: 3},
		},
		Recommendations: []domain.CityRecommendation{
			func() domain.CityRecommendation {
				r := domain.CityRecommendation{
					BoardSignal: domain.SignalGo, RolloutYear: 1, LaunchWave: "Wave 1 Pilot",
					SelectedByOptimizer: true, OptimizationStatus: domain.OptStatusSelected,
					CapexEstimateEUR: 60_000_000, CityRank: 1, LaunchReadinessScore: 82,
				}
				r.City = "Munich"
				r.State = "BY"
				r.Strategy = "standard_65"
				r.PortfolioObjectiveEUR = 9_000_000
				return r
			}(),
		},
		BreakEvenGrid:  valuation.BreakEvenGrid(snap),
		Tornado:        valuation.TornadoSensitivity(snap, snap.Strategies[0]),
		MarketingAudit: []psychology.MarketingEvaluation{{Text: "vague promises", CueCount: 1, Decision: "REJECT", ConfidenceScore: 0.02}},
		ComplianceSummary: compliance.RiskSummary{
			GreenClaimViolations: 1, WorkforceAlerts: 2, HighSeverityFindings: 1, TotalFindings: 3,
		},
	}

	report := BuildBoardReport(in)

	for _, section := range []string{
		"# Costco Germany 2026",
		"## Executive Summary",
		"## Scenario Snapshot",
		"## Decision Matrix",
		"## Valuation",
		"## Membership Value Proposition Stress",
		"## City Rollout Plan",
		"## Marketing Copy Audit",
		"## Regulatory Risk",
	} {
		assert.Contains(t, report, section)
	}

	assert.Contains(t, report, "standard_65")
	assert.Contains(t, report, "Munich")
	assert.Contains(t, report, "run-123")
	assert.Contains(t, report, "payback year 3")
	assert.Contains(t, report, "Green claim violations: 1")
	// Unassigned payback renders as never.
	neverIn := in
	neverIn.Valuations = []domain.ValuationRecord{{Strategy: "standard_65", PaybackYear: domain.PaybackNever}}
	assert.Contains(t, BuildBoardReport(neverIn), "not reached within the horizon")
}

func TestBuildBoardReport_EmptyDecisionsStillRenders(t *testing.T) {
	report := BuildBoardReport(Input{
		RunID:       "empty",
		GeneratedAt: time.Now(),
		Snapshot:    config.Default(),
	})
	assert.Contains(t, report, "No strategy cleared the decision matrix.")
	assert.False(t, strings.Contains(report, "%!"), "no stray format verbs")
}
