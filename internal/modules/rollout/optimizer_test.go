package rollout

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

func planSnapshot(budgets []float64, maxNew []int, riskCaps []float64, minStates int) config.Snapshot {
	snap := config.Default()
	snap.Budget.AnnualCapexBudgetEUR = budgets
	snap.Budget.BudgetReserveRatio = 0
	snap.Optimization.MaxNewCitiesPerYear = maxNew
	snap.Optimization.AnnualLossRiskCap = riskCaps
	snap.Optimization.MinDistinctStatesFirst3 = minStates
	return snap
}

func rec(city, state string, signal domain.BoardSignal, capex, objective, probLoss float64) domain.CityRecommendation {
	r := domain.CityRecommendation{
		BoardSignal:        signal,
		CapexEstimateEUR:   capex,
		RolloutYear:        domain.RolloutYearUnassigned,
		OptimizationStatus: domain.OptStatusUnassigned,
	}
	r.City = city
	r.State = state
	r.PortfolioObjectiveEUR = objective
	r.RiskAdjustedCityScore = objective
	r.CityProbLoss = probLoss
	return r
}

func findCity(recs []domain.CityRecommendation, city string) domain.CityRecommendation {
	for _, r := range recs {
		if r.City == city {
			return r
		}
	}
	return domain.CityRecommendation{}
}

func TestAssign_BudgetBoundBundleSelection(t *testing.T) {
	snap := planSnapshot([]float64{90_000_000}, []int{2}, []float64{1.0}, 1)
	recs := []domain.CityRecommendation{
		rec("Alpha", "BY", domain.SignalGo, 50_000_000, 3_000_000, 0.1),
		rec("Beta", "BY", domain.SignalGo, 60_000_000, 2_900_000, 0.1),
		rec("Gamma", "BY", domain.SignalGo, 40_000_000, 2_500_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	// Alpha+Gamma is the best pair that fits the 90M budget.
	assert.Equal(t, 1, findCity(recs, "Alpha").RolloutYear)
	assert.Equal(t, 1, findCity(recs, "Gamma").RolloutYear)
	assert.Equal(t, domain.RolloutYearUnassigned, findCity(recs, "Beta").RolloutYear)
	assert.Equal(t, domain.OptStatusSelected, findCity(recs, "Alpha").OptimizationStatus)
	assert.Equal(t, domain.OptStatusUnassigned, findCity(recs, "Beta").OptimizationStatus)
	assert.InDelta(t, 90_000_000, findCity(recs, "Alpha").YearCapexUsedEUR, 1.0)
	assert.Equal(t, "Wave 1 Pilot", findCity(recs, "Alpha").LaunchWave)
	assert.Equal(t, "Hold", findCity(recs, "Beta").LaunchWave)
}

func TestAssign_BudgetReserveShrinksUsableBudget(t *testing.T) {
	snap := planSnapshot([]float64{100_000_000}, []int{1}, []float64{1.0}, 1)
	snap.Budget.BudgetReserveRatio = 0.10
	recs := []domain.CityRecommendation{
		rec("Big", "BY", domain.SignalGo, 95_000_000, 9_000_000, 0.1),
		rec("Small", "BY", domain.SignalGo, 80_000_000, 1_000_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	// 95M exceeds the usable 90M, so the lower-objective city launches.
	assert.Equal(t, domain.RolloutYearUnassigned, findCity(recs, "Big").RolloutYear)
	assert.Equal(t, 1, findCity(recs, "Small").RolloutYear)
	// Reported budget stays gross.
	assert.InDelta(t, 100_000_000, findCity(recs, "Small").YearCapexBudgetEUR, 1.0)
}

func TestAssign_NoCityLaunchesTwice(t *testing.T) {
	snap := planSnapshot(
		[]float64{200_000_000, 200_000_000, 200_000_000},
		[]int{2, 2, 2},
		[]float64{1.0, 1.0, 1.0},
		1,
	)
	recs := []domain.CityRecommendation{
		rec("A", "BY", domain.SignalGo, 50_000_000, 5_000_000, 0.1),
		rec("B", "BY", domain.SignalGo, 50_000_000, 4_000_000, 0.1),
		rec("C", "NW", domain.SignalGo, 50_000_000, 3_000_000, 0.1),
		rec("D", "NW", domain.SignalGo, 50_000_000, 2_000_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	years := make(map[string]int)
	launched := 0
	for _, r := range recs {
		if r.SelectedByOptimizer {
			launched++
			require.GreaterOrEqual(t, r.RolloutYear, 1)
			years[r.City] = r.RolloutYear
		}
	}
	assert.Equal(t, 4, launched)
	assert.Len(t, years, 4)
}

func TestAssign_NoGoCitiesNeverScheduled(t *testing.T) {
	snap := planSnapshot([]float64{500_000_000}, []int{3}, []float64{1.0}, 1)
	recs := []domain.CityRecommendation{
		rec("Good", "BY", domain.SignalGo, 50_000_000, 5_000_000, 0.1),
		rec("Bad", "BY", domain.SignalNoGo, 50_000_000, 50_000_000, 0.9),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	assert.Equal(t, domain.RolloutYearUnassigned, findCity(recs, "Bad").RolloutYear)
	assert.False(t, findCity(recs, "Bad").SelectedByOptimizer)
	assert.Equal(t, 1, findCity(recs, "Good").RolloutYear)
}

func TestAssign_AllNoGoMarksNoCandidates(t *testing.T) {
	snap := planSnapshot([]float64{100_000_000}, []int{2}, []float64{1.0}, 1)
	recs := []domain.CityRecommendation{
		rec("Bad1", "BY", domain.SignalNoGo, 50_000_000, -9_000_000, 0.9),
		rec("Bad2", "NW", domain.SignalNoGo, 50_000_000, -8_000_000, 0.8),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	for _, r := range recs {
		assert.Equal(t, domain.OptStatusNoCandidates, r.OptimizationStatus)
		assert.Equal(t, domain.RolloutYearUnassigned, r.RolloutYear)
	}
}

func TestAssign_StateRequirementCappedByAvailableStates(t *testing.T) {
	// Three distinct states demanded but only two exist among candidates, so
	// the requirement collapses to the reachable two and the plan stays valid.
	snap := planSnapshot(
		[]float64{500_000_000, 500_000_000, 500_000_000},
		[]int{2, 2, 2},
		[]float64{1.0, 1.0, 1.0},
		3,
	)
	recs := []domain.CityRecommendation{
		rec("A", "BY", domain.SignalGo, 50_000_000, 5_000_000, 0.1),
		rec("B", "NW", domain.SignalGo, 50_000_000, 4_000_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	launched := 0
	for _, r := range recs {
		if r.SelectedByOptimizer {
			launched++
		}
	}
	assert.Equal(t, 2, launched)
}

func TestAssign_InfeasibleWindowMarksAllRows(t *testing.T) {
	// A one-year window with a single launch slot can never cover two states.
	snap := planSnapshot([]float64{500_000_000}, []int{1}, []float64{1.0}, 2)
	recs := []domain.CityRecommendation{
		rec("A", "BY", domain.SignalGo, 50_000_000, 5_000_000, 0.1),
		rec("B", "NW", domain.SignalGo, 50_000_000, 4_000_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	for _, r := range recs {
		assert.Equal(t, domain.OptStatusInfeasible, r.OptimizationStatus)
		assert.Equal(t, domain.RolloutYearUnassigned, r.RolloutYear)
		assert.False(t, r.SelectedByOptimizer)
	}
}

func TestAssign_RiskCapExcludesHotBundles(t *testing.T) {
	snap := planSnapshot([]float64{500_000_000}, []int{2}, []float64{0.20}, 1)
	recs := []domain.CityRecommendation{
		rec("Cool", "BY", domain.SignalGo, 50_000_000, 3_000_000, 0.10),
		rec("Hot", "BY", domain.SignalConditional, 50_000_000, 9_000_000, 0.50),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	// Hot alone (0.50) and Cool+Hot (0.30) both breach the 0.20 cap.
	assert.Equal(t, 1, findCity(recs, "Cool").RolloutYear)
	assert.Equal(t, domain.RolloutYearUnassigned, findCity(recs, "Hot").RolloutYear)
}

func TestAssign_DiversificationPrefersNewState(t *testing.T) {
	snap := planSnapshot(
		[]float64{100_000_000, 100_000_000, 100_000_000},
		[]int{1, 1, 1},
		[]float64{1.0, 1.0, 1.0},
		2,
	)
	recs := []domain.CityRecommendation{
		rec("BavariaOne", "BY", domain.SignalGo, 50_000_000, 5_000_000, 0.1),
		rec("BavariaTwo", "BY", domain.SignalGo, 50_000_000, 4_900_000, 0.1),
		rec("Rhineland", "NW", domain.SignalGo, 50_000_000, 4_800_000, 0.1),
	}

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	// Year 2 must open the second state even though BavariaTwo scores higher,
	// because the early-window bonus rewards the unseen state.
	assert.Equal(t, 1, findCity(recs, "BavariaOne").RolloutYear)
	assert.Equal(t, 2, findCity(recs, "Rhineland").RolloutYear)
	assert.Equal(t, 3, findCity(recs, "BavariaTwo").RolloutYear)
}

func TestAssign_RanksFollowYearThenObjective(t *testing.T) {
	snap := planSnapshot([]float64{60_000_000}, []int{1}, []float64{1.0}, 1)
	recs := []domain.CityRecommendation{
		rec("Held", "BY", domain.SignalGo, 55_000_000, 9_000_000, 0.1),
		rec("Launched", "NW", domain.SignalGo, 50_000_000, 1_000_000, 0.1),
	}
	// Held has the higher objective but cannot share year 1 (max 1 per year),
	// so the launched city must rank first.
	recs[0].CapexEstimateEUR = 70_000_000 // over budget, can never launch

	NewOptimizer(snap, zerolog.Nop()).Assign(recs)

	assert.Equal(t, 1, recs[0].CityRank)
	assert.Equal(t, "Launched", recs[0].City)
	assert.Equal(t, 2, recs[1].CityRank)
	assert.Equal(t, "Held", recs[1].City)
}
