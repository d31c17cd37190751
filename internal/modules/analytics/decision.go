package analytics

import (
	"math"
	"sort"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

// baseCaseScenario anchors the headline figures on the decision matrix.
const baseCaseScenario = "base_case"

// lossRiskPenaltyEUR converts downside probability into a euro-denominated
// score deduction on the risk-adjusted strategy score.
const lossRiskPenaltyEUR = 2_500_000

// BuildDecisionMatrix collapses per-scenario summaries into one
// probability-weighted scorecard row per strategy, ranked best-first by
// risk-adjusted score.
//
// Scenario probabilities come from the assumption snapshot; scenarios absent
// from that map carry zero weight, and weights are renormalized over the
// scenarios actually present in the summaries.
func BuildDecisionMatrix(summaries []domain.ScenarioStrategySummary, snap config.Snapshot) []domain.DecisionRecord {
	probs := snap.Financial.ScenarioProbabilities

	grouped := make(map[string][]domain.ScenarioStrategySummary)
	var order []string
	for _, s := range summaries {
		if _, ok := grouped[s.Strategy]; !ok {
			order = append(order, s.Strategy)
		}
		grouped[s.Strategy] = append(grouped[s.Strategy], s)
	}

	records := make([]domain.DecisionRecord, 0, len(order))
	for _, strategy := range order {
		group := grouped[strategy]

		totalProb := 0.0
		for _, s := range group {
			totalProb += probs[s.Scenario]
		}
		if totalProb == 0 {
			totalProb = 1
		}

		rec := domain.DecisionRecord{Strategy: strategy}
		for _, s := range group {
			w := probs[s.Scenario] / totalProb
			rec.WeightedMeanContributionEUR += s.MeanContributionEUR * w
			rec.MeanStdContributionEUR += s.StdContributionEUR * w
			rec.WeightedProbLoss += s.ProbLoss * w
			rec.WeightedCVaR5EUR += s.CVaR5ContributionEUR * w
			rec.WeightedProbMeetHurdle += s.ProbMeetHurdle * w
			if s.Scenario == baseCaseScenario {
				rec.BaseCaseContributionEUR = s.MeanContributionEUR
				rec.BaseCaseAdoptionRate = s.MeanAdoptionRate
			}
		}

		// Penalize volatility, severe tail losses, and downside probability.
		rec.RiskAdjustedScore = rec.WeightedMeanContributionEUR -
			0.4*rec.MeanStdContributionEUR -
			0.20*math.Abs(math.Min(rec.WeightedCVaR5EUR, 0)) -
			rec.WeightedProbLoss*lossRiskPenaltyEUR

		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RiskAdjustedScore > records[j].RiskAdjustedScore
	})
	for i := range records {
		records[i].Rank = i + 1
	}
	return records
}
