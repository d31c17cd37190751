package pipeline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

func fastSnapshot() config.Snapshot {
	snap := config.Default()
	snap.Simulation.NHouseholds = 300
	snap.Simulation.NReplications = 3
	return snap
}

func TestPipeline_RunProducesAllTables(t *testing.T) {
	p, err := New(fastSnapshot(), zerolog.Nop())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	snap := result.Snapshot
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Rows, len(snap.Scenarios)*snap.Simulation.NReplications*len(snap.Strategies))
	assert.Len(t, result.Summaries, len(snap.Scenarios)*len(snap.Strategies))
	assert.Len(t, result.Decisions, len(snap.Strategies))
	assert.Len(t, result.Valuations, len(snap.Strategies))
	assert.Len(t, result.Cashflows, len(snap.Strategies)*snap.Financial.PlanningHorizonYears)
	assert.Len(t, result.CityScores, len(snap.Cities)*len(snap.Strategies))
	assert.Len(t, result.CityPlan, len(snap.Cities))
	assert.NotEmpty(t, result.BreakEvenGrid)
	assert.Len(t, result.Tornado, 3)
	assert.Len(t, result.MarketingAudit, 3)
	assert.NotEmpty(t, result.Report)

	// Decision ranks are a 1-based permutation.
	ranks := make(map[int]bool)
	for _, d := range result.Decisions {
		ranks[d.Rank] = true
	}
	for i := 1; i <= len(result.Decisions); i++ {
		assert.True(t, ranks[i], "missing rank %d", i)
	}
}

func TestPipeline_DeterministicAcrossRuns(t *testing.T) {
	snap := fastSnapshot()

	p1, err := New(snap, zerolog.Nop())
	require.NoError(t, err)
	first, err := p1.Run(context.Background())
	require.NoError(t, err)

	p2, err := New(snap, zerolog.Nop())
	require.NoError(t, err)
	second, err := p2.Run(context.Background())
	require.NoError(t, err)

	// Everything except the run id and timestamps must be identical.
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Summaries, second.Summaries)
	assert.Equal(t, first.Decisions, second.Decisions)
	assert.Equal(t, first.Valuations, second.Valuations)
	assert.Equal(t, first.CityPlan, second.CityPlan)
	assert.Equal(t, first.Insights.RecommendedStrategy, second.Insights.RecommendedStrategy)
}

func TestPipeline_InsightsReflectBestStrategy(t *testing.T) {
	p, err := New(fastSnapshot(), zerolog.Nop())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, result.Insights.RecommendedStrategy)
	for _, d := range result.Decisions {
		if d.Rank == 1 {
			assert.Equal(t, d.Strategy, result.Insights.RecommendedStrategy)
			assert.Equal(t, d.RiskAdjustedScore, result.Insights.RecommendedScore)
		}
	}
	assert.Greater(t, result.Insights.Labor2027EUR, result.Insights.Labor2026EUR)
	assert.LessOrEqual(t, len(result.Insights.CityTop3), 3)

	// The sample audit fixtures carry known findings: two unsubstantiated
	// green claims and two workforce alerts.
	assert.Equal(t, 2, result.ComplianceSummary.GreenClaimViolations)
	assert.Equal(t, 2, result.ComplianceSummary.WorkforceAlerts)
}

func TestPipeline_RejectsInvalidSnapshot(t *testing.T) {
	snap := fastSnapshot()
	snap.Strategies = nil

	_, err := New(snap, zerolog.Nop())
	require.Error(t, err)
}

func TestPipeline_CancelledContext(t *testing.T) {
	p, err := New(fastSnapshot(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_CityPlanRanksAreStable(t *testing.T) {
	p, err := New(fastSnapshot(), zerolog.Nop())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	for i, rec := range result.CityPlan {
		assert.Equal(t, i+1, rec.CityRank)
		if rec.RolloutYear != domain.RolloutYearUnassigned {
			assert.Equal(t, domain.LaunchWave(rec.RolloutYear), rec.LaunchWave)
		}
	}
}
