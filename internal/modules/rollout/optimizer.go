// Package rollout assigns recommended cities to launch years under hard
// capex, cadence, loss-risk, and geographic-diversification constraints.
package rollout

import (
	"math"
	"math/bits"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

// diversificationBonusEUR rewards each state first entered during the early
// window, weighted toward earlier years. It breaks ties toward geographic
// spread without distorting the reported financial objective.
const diversificationBonusEUR = 400_000

// rolloutSortUnassigned pushes held cities behind every assigned year.
const rolloutSortUnassigned = 99

// bundle is one feasible same-year launch set over candidate indices.
type bundle struct {
	ids       []int
	mask      uint64
	stateMask uint64
	score     float64
	capexSum  float64
	riskAvg   float64
}

// candidate is the optimizer's flat view of one non-NO-GO recommendation.
type candidate struct {
	recIdx    int
	capex     float64
	probLoss  float64
	objective float64
	stateBit  uint64
}

// Optimizer schedules city launches year by year.
type Optimizer struct {
	snap config.Snapshot
	log  zerolog.Logger
}

// NewOptimizer creates a rollout optimizer bound to one assumption snapshot.
func NewOptimizer(snap config.Snapshot, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		snap: snap,
		log:  log.With().Str("component", "rollout").Logger(),
	}
}

// planState is the full optimizer state carried between years. Year
// transitions are pure: pickBundle never mutates it.
type planState struct {
	launchedMask   uint64
	earlyStateMask uint64
}

// Assign annotates recommendations in place with rollout years and per-year
// budget/risk figures, then re-sorts the slice by assigned year and objective
// and stamps city ranks. NO-GO cities are never scheduled.
func (o *Optimizer) Assign(recs []domain.CityRecommendation) {
	budgets := o.snap.Budget.AnnualCapexBudgetEUR
	maxNew := o.snap.Optimization.MaxNewCitiesPerYear
	riskCaps := o.snap.Optimization.AnnualLossRiskCap

	planningYears := len(budgets)
	if len(maxNew) < planningYears {
		planningYears = len(maxNew)
	}
	if len(riskCaps) < planningYears {
		planningYears = len(riskCaps)
	}

	reserve := o.snap.Budget.BudgetReserveRatio
	usable := make([]float64, planningYears)
	for i := 0; i < planningYears; i++ {
		usable[i] = budgets[i] * math.Max(0, 1.0-reserve)
	}

	candidates, states := buildCandidates(recs)
	if len(candidates) == 0 {
		for i := range recs {
			recs[i].OptimizationStatus = domain.OptStatusNoCandidates
		}
		o.log.Warn().Msg("no GO or CONDITIONAL cities available for rollout")
		finalize(recs)
		return
	}

	first3 := planningYears
	if first3 > 3 {
		first3 = 3
	}
	required := o.snap.Optimization.MinDistinctStatesFirst3
	if required > len(states) {
		required = len(states)
	}

	// Feasible launch bundles are enumerated once per year; the empty bundle
	// keeps every year individually satisfiable.
	yearBundles := make([][]bundle, planningYears)
	for y := 0; y < planningYears; y++ {
		yearBundles[y] = enumerateBundles(candidates, maxNew[y], usable[y], riskCaps[y])
	}

	state := planState{}
	schedule := make([]bundle, 0, planningYears)
	feasible := true
	for year := 1; year <= planningYears; year++ {
		chosen, ok := pickBundle(state, yearBundles[year-1], candidates, maxNew, year, first3, required)
		if !ok {
			feasible = false
			break
		}
		schedule = append(schedule, chosen)
		state.launchedMask |= chosen.mask
		if year <= first3 {
			state.earlyStateMask |= chosen.stateMask
		}
	}
	if feasible && first3 >= 1 && bits.OnesCount64(state.earlyStateMask) < required {
		feasible = false
	}

	if !feasible {
		for i := range recs {
			recs[i].OptimizationStatus = domain.OptStatusInfeasible
		}
		o.log.Warn().
			Int("planning_years", planningYears).
			Int("required_states", required).
			Msg("rollout constraint set infeasible")
		finalize(recs)
		return
	}

	launched := 0
	for year, b := range schedule {
		for _, id := range b.ids {
			rec := &recs[candidates[id].recIdx]
			rec.RolloutYear = year + 1
			rec.YearCapexBudgetEUR = budgets[year]
			rec.YearCapexUsedEUR = b.capexSum
			rec.YearRiskCap = riskCaps[year]
			rec.YearLossRiskAvg = b.riskAvg
			rec.SelectedByOptimizer = true
			rec.OptimizationStatus = domain.OptStatusSelected
			launched++
		}
	}
	o.log.Info().
		Int("cities_scheduled", launched).
		Int("planning_years", planningYears).
		Msg("rollout plan assigned")
	finalize(recs)
}

// buildCandidates flattens non-NO-GO recommendations and returns the sorted
// distinct state list backing the state bitmask.
func buildCandidates(recs []domain.CityRecommendation) ([]candidate, []string) {
	stateSet := make(map[string]struct{})
	for _, r := range recs {
		if r.BoardSignal != domain.SignalNoGo {
			stateSet[r.State] = struct{}{}
		}
	}
	states := make([]string, 0, len(stateSet))
	for s := range stateSet {
		states = append(states, s)
	}
	sort.Strings(states)
	stateBit := make(map[string]uint64, len(states))
	for i, s := range states {
		stateBit[s] = 1 << uint(i)
	}

	var candidates []candidate
	for i, r := range recs {
		if r.BoardSignal == domain.SignalNoGo {
			continue
		}
		candidates = append(candidates, candidate{
			recIdx:    i,
			capex:     r.CapexEstimateEUR,
			probLoss:  r.CityProbLoss,
			objective: r.PortfolioObjectiveEUR,
			stateBit:  stateBit[r.State],
		})
	}
	return candidates, states
}

// enumerateBundles lists every launch set of up to maxNew candidates whose
// capex fits the usable budget and whose mean loss risk respects the cap.
// The empty bundle is always included. Bundles come back score-descending.
func enumerateBundles(candidates []candidate, maxNew int, budget, riskCap float64) []bundle {
	bundles := []bundle{{}}

	n := len(candidates)
	if maxNew > n {
		maxNew = n
	}
	combo := make([]int, 0, maxNew)
	var walk func(start, k int)
	walk = func(start, k int) {
		if len(combo) == k {
			var b bundle
			for _, id := range combo {
				c := candidates[id]
				b.mask |= 1 << uint(id)
				b.stateMask |= c.stateBit
				b.score += c.objective
				b.capexSum += c.capex
				b.riskAvg += c.probLoss
			}
			if b.capexSum > budget {
				return
			}
			b.riskAvg /= float64(k)
			if b.riskAvg > riskCap {
				return
			}
			b.ids = append([]int(nil), combo...)
			bundles = append(bundles, b)
			return
		}
		for i := start; i < n; i++ {
			combo = append(combo, i)
			walk(i+1, k)
			combo = combo[:len(combo)-1]
		}
	}
	for k := 1; k <= maxNew; k++ {
		walk(0, k)
	}

	sort.SliceStable(bundles, func(i, j int) bool { return bundles[i].score > bundles[j].score })
	return bundles
}

// pickBundle selects this year's launch set given the immutable prior-year
// state. During the early window it rejects bundles that make the distinct-
// state requirement unreachable and awards a diversification bonus for newly
// entered states, decaying by year.
func pickBundle(state planState, bundles []bundle, candidates []candidate, maxNew []int, year, first3, required int) (bundle, bool) {
	var best bundle
	bestScore := math.Inf(-1)
	found := false

	for _, b := range bundles {
		if b.mask&state.launchedMask != 0 {
			continue
		}

		if year <= first3 {
			nextLaunched := state.launchedMask | b.mask
			nextStates := state.earlyStateMask | b.stateMask

			// States still reachable through unlaunched candidates.
			var availableStates uint64
			for id, c := range candidates {
				if nextLaunched&(1<<uint(id)) == 0 {
					availableStates |= c.stateBit
				}
			}
			unseen := bits.OnesCount64(availableStates &^ nextStates)

			remainingCapacity := 0
			if year < first3 {
				for y := year; y < first3; y++ {
					remainingCapacity += maxNew[y]
				}
			}
			if unseen < remainingCapacity {
				remainingCapacity = unseen
			}
			if bits.OnesCount64(nextStates)+remainingCapacity < required {
				continue
			}
			if year == first3 && bits.OnesCount64(nextStates) < required {
				continue
			}
		}

		score := b.score
		if year <= first3 {
			newStates := bits.OnesCount64(b.stateMask &^ state.earlyStateMask)
			score += float64(newStates) * diversificationBonusEUR * float64(first3-year+1)
		}
		if score > bestScore {
			bestScore = score
			best = b
			found = true
		}
	}
	return best, found
}

// finalize orders the plan year-ascending (held cities last), objective and
// risk-adjusted score descending, stamps wave labels and 1-based ranks.
func finalize(recs []domain.CityRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		yi, yj := rolloutSortKey(recs[i].RolloutYear), rolloutSortKey(recs[j].RolloutYear)
		if yi != yj {
			return yi < yj
		}
		if recs[i].PortfolioObjectiveEUR != recs[j].PortfolioObjectiveEUR {
			return recs[i].PortfolioObjectiveEUR > recs[j].PortfolioObjectiveEUR
		}
		return recs[i].RiskAdjustedCityScore > recs[j].RiskAdjustedCityScore
	})
	for i := range recs {
		recs[i].LaunchWave = domain.LaunchWave(recs[i].RolloutYear)
		recs[i].CityRank = i + 1
	}
}

func rolloutSortKey(year int) int {
	if year < 0 {
		return rolloutSortUnassigned
	}
	return year
}
