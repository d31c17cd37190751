package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

func TestBuild_CashflowScheduleShape(t *testing.T) {
	snap := config.Default()
	model := NewModel(snap)

	decisions := []domain.DecisionRecord{
		{Strategy: "standard_65", WeightedMeanContributionEUR: 9_000_000, BaseCaseAdoptionRate: 0.25},
	}
	valuations, cashflows := model.Build(decisions)

	require.Len(t, valuations, 1)
	require.Len(t, cashflows, snap.Financial.PlanningHorizonYears)

	// Warehouse count follows the cumulative rollout schedule.
	for i, row := range cashflows {
		assert.Equal(t, i+1, row.Year)
		assert.Equal(t, snap.Financial.WarehousesCumulative[i], row.CumulativeWarehouses)
	}

	// Year 1 growth capex covers the initial warehouse; year 2 adds one more.
	assert.InDelta(t, float64(snap.Financial.WarehousesCumulative[0])*snap.Financial.CapexPerNewWarehouseEUR,
		cashflows[0].GrowthCapexEUR, 1.0)
	newYear2 := snap.Financial.WarehousesCumulative[1] - snap.Financial.WarehousesCumulative[0]
	assert.InDelta(t, float64(newYear2)*snap.Financial.CapexPerNewWarehouseEUR, cashflows[1].GrowthCapexEUR, 1.0)
}

func TestBuild_TerminalValueRequiresPositiveFinalFCFAndSpread(t *testing.T) {
	snap := config.Default()

	// Deeply negative contribution keeps every year's FCF negative.
	loser := []domain.DecisionRecord{
		{Strategy: "loser", WeightedMeanContributionEUR: -5_000_000, BaseCaseAdoptionRate: 0.05},
	}
	valuations, _ := NewModel(snap).Build(loser)
	require.Len(t, valuations, 1)
	assert.Equal(t, 0.0, valuations[0].TerminalValueDiscountedEUR)
	assert.Equal(t, domain.PaybackNever, valuations[0].PaybackYear)

	// WACC at or below terminal growth suppresses terminal value even for winners.
	flat := snap
	flat.Financial.WACCPercent = 1.0
	flat.Financial.TerminalGrowthPercent = 1.5
	winner := []domain.DecisionRecord{
		{Strategy: "winner", WeightedMeanContributionEUR: 50_000_000, BaseCaseAdoptionRate: 0.30},
	}
	valuations, _ = NewModel(flat).Build(winner)
	require.Len(t, valuations, 1)
	assert.Equal(t, 0.0, valuations[0].TerminalValueDiscountedEUR)
	assert.Greater(t, valuations[0].NPV5yEUR, 0.0)
}

func TestBuild_GrowthClampAndNPVOrdering(t *testing.T) {
	snap := config.Default()
	model := NewModel(snap)

	decisions := []domain.DecisionRecord{
		{Strategy: "low", WeightedMeanContributionEUR: 4_000_000, BaseCaseAdoptionRate: 0.0},
		{Strategy: "high", WeightedMeanContributionEUR: 20_000_000, BaseCaseAdoptionRate: 0.95},
	}
	valuations, _ := model.Build(decisions)
	require.Len(t, valuations, 2)

	// Returned sorted by NPV descending.
	assert.Equal(t, "high", valuations[0].Strategy)
	assert.GreaterOrEqual(t, valuations[0].NPV5yEUR, valuations[1].NPV5yEUR)

	for _, v := range valuations {
		assert.GreaterOrEqual(t, v.StrategyGrowthAssumption, -0.02)
		assert.LessOrEqual(t, v.StrategyGrowthAssumption, 0.09)
	}
}

func TestBuild_PaybackFirstNonNegativeCumulativeYear(t *testing.T) {
	snap := config.Default()
	valuations, cashflows := NewModel(snap).Build([]domain.DecisionRecord{
		{Strategy: "standard_65", WeightedMeanContributionEUR: 30_000_000, BaseCaseAdoptionRate: 0.25},
	})
	require.Len(t, valuations, 1)

	cum := 0.0
	want := domain.PaybackNever
	for _, row := range cashflows {
		cum += row.FreeCashFlowEUR
		if want == domain.PaybackNever && cum >= 0 {
			want = row.Year
		}
	}
	assert.Equal(t, want, valuations[0].PaybackYear)
}

func TestBreakEvenGrid_CoversFeeAndDiscountSweep(t *testing.T) {
	rows := BreakEvenGrid(config.Default())
	require.Len(t, rows, len(gridFees)*gridDiscountSteps)

	// Higher fee at a fixed discount raises break-even spend.
	assert.Greater(t, rows[gridDiscountSteps].BreakEvenMonthlySpendEUR, rows[0].BreakEvenMonthlySpendEUR)
	// Higher discount at a fixed fee lowers break-even spend.
	assert.Less(t, rows[1].BreakEvenMonthlySpendEUR, rows[0].BreakEvenMonthlySpendEUR)
	assert.InDelta(t, gridDiscountMax, rows[gridDiscountSteps-1].BulkDiscount, 1e-12)
}

func TestTornadoSensitivity_SortedBySwing(t *testing.T) {
	snap := config.Default()
	strategy := domain.Strategy{Name: "standard_65", MembershipFeeEUR: 65}

	rows := TornadoSensitivity(snap, strategy)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].SwingAbsEUR, rows[i].SwingAbsEUR)
	}
	for _, r := range rows {
		assert.Greater(t, r.BaseMonthlyBreakEvenEUR, 0.0)
		// Fee and inflation push break-even up; discount pulls it down.
		switch r.Driver {
		case "membership_fee", "inflation":
			assert.Less(t, r.LowCaseDeltaEUR, 0.0)
			assert.Greater(t, r.HighCaseDeltaEUR, 0.0)
		case "bulk_discount":
			assert.Greater(t, r.LowCaseDeltaEUR, 0.0)
			assert.Less(t, r.HighCaseDeltaEUR, 0.0)
		}
	}
}
