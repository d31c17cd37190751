// Package cities projects national strategy economics onto candidate German
// cities and classifies each city for the board.
package cities

import (
	"math"
	"sort"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

const (
	baseCaseScenario = "base_case"
	downsideScenario = "downside_stress"
	upsideScenario   = "upside_recovery"

	// cityLossPenaltyEUR converts city loss probability into a euro deduction
	// on the risk-adjusted city score.
	cityLossPenaltyEUR = 2_500_000
)

// Scorer maps strategy-level simulation outputs onto the city portfolio.
type Scorer struct {
	snap config.Snapshot
}

// NewScorer creates a city scorer bound to one assumption snapshot.
func NewScorer(snap config.Snapshot) *Scorer {
	return &Scorer{snap: snap}
}

// multiplier scales national contribution to one city's local economics:
// demand scale times affluence and brand lift, divided by the cost and
// savings-pressure drag. Clamped to [0.30, 5.0].
func (s *Scorer) multiplier(city domain.CityProfile) float64 {
	demandScale := (city.HouseholdsK * 1000.0) / math.Max(1.0, s.snap.Demand.AddressableHouseholds)
	affluence := 1.0 + 0.35*(city.IncomeIndex-1.0)
	brand := 1.0 + 0.25*(city.BrandFitIndex-0.5)
	costDrag := 1.0 + 0.30*(1.0-city.LogisticsIndex) + 0.45*city.CompetitionIntensity + 0.20*city.RegulatoryComplexity
	savingsDrag := 1.0 + 0.15*city.SavingsPressureIndex

	m := demandScale * affluence * brand / math.Max(0.25, costDrag*savingsDrag)
	return math.Max(0.30, math.Min(5.0, m))
}

type summaryKey struct {
	scenario string
	strategy string
}

// Score builds one row per (city, strategy) pair. Rows keep city-major,
// decision-matrix-strategy-minor order.
func (s *Scorer) Score(summaries []domain.ScenarioStrategySummary, decisions []domain.DecisionRecord) []domain.CityStrategyScore {
	opt := s.snap.Optimization

	byScenario := make(map[summaryKey]domain.ScenarioStrategySummary, len(summaries))
	for _, sum := range summaries {
		byScenario[summaryKey{sum.Scenario, sum.Strategy}] = sum
	}

	scores := make([]domain.CityStrategyScore, 0, len(s.snap.Cities)*len(decisions))
	for _, city := range s.snap.Cities {
		cityMultiplier := s.multiplier(city)

		for _, dec := range decisions {
			base := byScenario[summaryKey{baseCaseScenario, dec.Strategy}]
			downside := byScenario[summaryKey{downsideScenario, dec.Strategy}]
			upside := byScenario[summaryKey{upsideScenario, dec.Strategy}]

			expected := dec.WeightedMeanContributionEUR * cityMultiplier
			downsideContrib := downside.MeanContributionEUR * cityMultiplier
			upsideContrib := upside.MeanContributionEUR * cityMultiplier

			probLoss := dec.WeightedProbLoss * (1.0 +
				0.75*city.CompetitionIntensity +
				0.35*city.RegulatoryComplexity -
				0.25*city.BrandFitIndex)
			probLoss = math.Max(0, math.Min(1, probLoss))

			tailPenalty := 0.18 * math.Abs(math.Min(downsideContrib, 0))
			riskAdjusted := expected - probLoss*cityLossPenaltyEUR - tailPenalty

			adjustedBreakEven := base.MeanBreakEvenMonthlyEUR * (1.0 +
				0.22*city.SavingsPressureIndex +
				0.15*city.CompetitionIntensity -
				0.18*(city.IncomeIndex-1.0))
			adjustedAdoption := base.MeanAdoptionRate * math.Max(0.45, math.Min(1.8, cityMultiplier))

			readiness := 45.0 + 22.0*city.BrandFitIndex + 15.0*city.LogisticsIndex -
				14.0*city.RegulatoryComplexity - 8.0*city.CompetitionIntensity
			readiness = math.Max(0, math.Min(100, readiness))

			breakEvenPenalty := math.Max(0, adjustedBreakEven-70.0) * opt.BreakEvenPenaltyPerEUR

			objective := riskAdjusted +
				readiness*opt.ReadinessBonusPerPointEUR -
				probLoss*opt.RiskPenaltyPerProbEUR -
				breakEvenPenalty

			scores = append(scores, domain.CityStrategyScore{
				CityProfile:                 city,
				Strategy:                    dec.Strategy,
				CityMultiplier:              cityMultiplier,
				ExpectedContributionEUR:     expected,
				DownsideContributionEUR:     downsideContrib,
				UpsideContributionEUR:       upsideContrib,
				CityProbLoss:                probLoss,
				RiskAdjustedCityScore:       riskAdjusted,
				AdjustedBreakEvenMonthlyEUR: adjustedBreakEven,
				AdjustedAdoptionRate:        adjustedAdoption,
				PreliminaryReadinessScore:   readiness,
				BreakEvenPenaltyEUR:         breakEvenPenalty,
				PortfolioObjectiveEUR:       objective,
			})
		}
	}
	return scores
}

// Recommend picks the best-objective strategy per city and annotates the row
// with board signal, launch readiness, and capex estimate. Rows come back
// sorted by portfolio objective descending with rollout fields initialized to
// the unassigned state.
func (s *Scorer) Recommend(scores []domain.CityStrategyScore) []domain.CityRecommendation {
	bestByCity := make(map[string]domain.CityStrategyScore)
	var order []string
	for _, score := range scores {
		best, ok := bestByCity[score.City]
		if !ok {
			order = append(order, score.City)
		}
		if !ok || score.PortfolioObjectiveEUR > best.PortfolioObjectiveEUR {
			bestByCity[score.City] = score
		}
	}

	recs := make([]domain.CityRecommendation, 0, len(order))
	for _, city := range order {
		score := bestByCity[city]
		recs = append(recs, domain.CityRecommendation{
			CityStrategyScore:  score,
			BoardSignal:        classify(score.PortfolioObjectiveEUR, score.CityProbLoss),
			CapexEstimateEUR:   s.capexEstimate(score.CityProfile),
			RolloutYear:        domain.RolloutYearUnassigned,
			LaunchWave:         domain.LaunchWave(domain.RolloutYearUnassigned),
			OptimizationStatus: domain.OptStatusUnassigned,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PortfolioObjectiveEUR > recs[j].PortfolioObjectiveEUR
	})

	applyLaunchReadiness(recs)
	for i := range recs {
		recs[i].ScoreDensity = recs[i].PortfolioObjectiveEUR / recs[i].CapexEstimateEUR
	}
	return recs
}

// classify maps a city's objective and loss probability to the board signal.
func classify(objective, probLoss float64) domain.BoardSignal {
	switch {
	case objective > 0 && probLoss <= 0.35:
		return domain.SignalGo
	case objective > -2_000_000 && probLoss <= 0.55:
		return domain.SignalConditional
	default:
		return domain.SignalNoGo
	}
}

// capexEstimate scales the national per-warehouse capex by local regulatory,
// competitive, and logistics friction, clamped to [0.75, 1.45] of base.
func (s *Scorer) capexEstimate(city domain.CityProfile) float64 {
	m := 0.84 + 0.28*city.RegulatoryComplexity + 0.22*city.CompetitionIntensity + 0.18*(1.0-city.LogisticsIndex)
	m = math.Max(0.75, math.Min(1.45, m))
	return s.snap.Financial.CapexPerNewWarehouseEUR * m
}

// applyLaunchReadiness normalizes the risk-adjusted score across the
// recommendation set and blends it with brand fit and regulatory complexity.
func applyLaunchReadiness(recs []domain.CityRecommendation) {
	if len(recs) == 0 {
		return
	}
	scoreMin, scoreMax := recs[0].RiskAdjustedCityScore, recs[0].RiskAdjustedCityScore
	for _, r := range recs[1:] {
		scoreMin = math.Min(scoreMin, r.RiskAdjustedCityScore)
		scoreMax = math.Max(scoreMax, r.RiskAdjustedCityScore)
	}
	span := math.Max(1.0, scoreMax-scoreMin)

	for i := range recs {
		norm := (recs[i].RiskAdjustedCityScore - scoreMin) / span
		readiness := 38.0 + 48.0*norm + 10.0*recs[i].BrandFitIndex - 10.0*recs[i].RegulatoryComplexity
		recs[i].LaunchReadinessScore = math.Max(0, math.Min(100, readiness))
	}
}
