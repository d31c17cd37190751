package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

func replicationFixture() []domain.ReplicationRow {
	contribs := []float64{-3_000_000, -500_000, 1_000_000, 2_500_000, 4_000_000, 6_000_000, 8_000_000, 9_000_000}
	rows := make([]domain.ReplicationRow, 0, len(contribs))
	for i, c := range contribs {
		rows = append(rows, domain.ReplicationRow{
			Scenario:                 "base_case",
			Strategy:                 "standard_65",
			ReplicationID:            i,
			TotalContributionEUR:     c,
			AdoptionRate:             0.10 + 0.01*float64(i),
			BreakEvenMonthlySpendEUR: 55.0,
			CompetitorPenaltyPercent: 1.2,
		})
	}
	return rows
}

func TestSummarize_PercentileOrderingAndTail(t *testing.T) {
	summaries := Summarize(replicationFixture(), config.Default())
	require.Len(t, summaries, 1)
	s := summaries[0]

	assert.LessOrEqual(t, s.P10ContributionEUR, s.P50ContributionEUR)
	assert.LessOrEqual(t, s.P50ContributionEUR, s.P90ContributionEUR)
	assert.LessOrEqual(t, s.CVaR5ContributionEUR, s.P10ContributionEUR)

	// 2 of 8 outcomes are negative; hurdle of 2M is met by 5 of 8.
	assert.InDelta(t, 0.25, s.ProbLoss, 1e-12)
	assert.InDelta(t, 0.625, s.ProbMeetHurdle, 1e-12)

	assert.InDelta(t, 55.0, s.MeanBreakEvenMonthlyEUR, 1e-9)
	assert.InDelta(t, 1.2, s.MeanCompetitorPenaltyPct, 1e-9)
	assert.LessOrEqual(t, s.AdoptionCILow, s.MeanAdoptionRate)
	assert.GreaterOrEqual(t, s.AdoptionCIHigh, s.MeanAdoptionRate)
}

func TestSummarize_SampleStdDev(t *testing.T) {
	rows := []domain.ReplicationRow{
		{Scenario: "base_case", Strategy: "s", TotalContributionEUR: 1},
		{Scenario: "base_case", Strategy: "s", TotalContributionEUR: 3},
	}
	summaries := Summarize(rows, config.Default())
	require.Len(t, summaries, 1)
	// Sample standard deviation with n-1 denominator.
	assert.InDelta(t, math.Sqrt2, summaries[0].StdContributionEUR, 1e-12)
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	assert.InDelta(t, 30.0, percentile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 14.0, percentile(sorted, 0.10), 1e-12)
	assert.InDelta(t, 46.0, percentile(sorted, 0.90), 1e-12)
	assert.InDelta(t, 50.0, percentile(sorted, 1.0), 1e-12)
}

func TestCVaR5_FallsBackToQuantileWhenEmptyTail(t *testing.T) {
	single := []float64{7.0}
	assert.Equal(t, 7.0, cvar5(single))
}

func TestBuildDecisionMatrix_WeightingAndRank(t *testing.T) {
	snap := config.Default()
	summaries := []domain.ScenarioStrategySummary{
		{Scenario: "base_case", Strategy: "alpha", MeanContributionEUR: 10_000_000, MeanAdoptionRate: 0.2},
		{Scenario: "downside_stress", Strategy: "alpha", MeanContributionEUR: -2_000_000, ProbLoss: 0.6},
		{Scenario: "upside_recovery", Strategy: "alpha", MeanContributionEUR: 14_000_000},
		{Scenario: "base_case", Strategy: "beta", MeanContributionEUR: 1_000_000, MeanAdoptionRate: 0.1},
		{Scenario: "downside_stress", Strategy: "beta", MeanContributionEUR: -8_000_000, ProbLoss: 0.9},
		{Scenario: "upside_recovery", Strategy: "beta", MeanContributionEUR: 2_000_000},
	}

	records := BuildDecisionMatrix(summaries, snap)
	require.Len(t, records, 2)

	// Probabilities 0.5/0.3/0.2 applied to alpha's scenario means.
	wantAlpha := 0.5*10_000_000 + 0.3*-2_000_000 + 0.2*14_000_000
	assert.Equal(t, "alpha", records[0].Strategy)
	assert.InDelta(t, wantAlpha, records[0].WeightedMeanContributionEUR, 1.0)
	assert.Equal(t, 1, records[0].Rank)
	assert.Equal(t, 2, records[1].Rank)

	assert.InDelta(t, 10_000_000, records[0].BaseCaseContributionEUR, 1e-9)
	assert.InDelta(t, 0.2, records[0].BaseCaseAdoptionRate, 1e-12)
}

func TestBuildDecisionMatrix_UnmappedScenariosGetZeroWeight(t *testing.T) {
	snap := config.Default()
	summaries := []domain.ScenarioStrategySummary{
		{Scenario: "base_case", Strategy: "solo", MeanContributionEUR: 5_000_000},
		{Scenario: "never_configured", Strategy: "solo", MeanContributionEUR: -50_000_000},
	}

	records := BuildDecisionMatrix(summaries, snap)
	require.Len(t, records, 1)
	// Only base_case carries probability mass, so it is fully renormalized.
	assert.InDelta(t, 5_000_000, records[0].WeightedMeanContributionEUR, 1e-6)
}

func TestBuildDecisionMatrix_NoMappedScenariosStillDefined(t *testing.T) {
	snap := config.Default()
	summaries := []domain.ScenarioStrategySummary{
		{Scenario: "phantom", Strategy: "solo", MeanContributionEUR: 5_000_000},
	}

	records := BuildDecisionMatrix(summaries, snap)
	require.Len(t, records, 1)
	// Zero total probability falls back to a denominator of 1, so the
	// unmapped scenario contributes nothing rather than dividing by zero.
	assert.Equal(t, 0.0, records[0].WeightedMeanContributionEUR)
	assert.False(t, math.IsNaN(records[0].RiskAdjustedScore))
}
