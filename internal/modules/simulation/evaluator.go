package simulation

import (
	"math"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/psychology"
)

// maxCompetitorPenalty bounds the competitor response share of contribution.
const maxCompetitorPenalty = 0.08

// BreakEven holds inflation-adjusted break-even spend levels.
//
//	NetBenefit_real = YearlySpend * BulkDiscount / (1 + Inflation) - MembershipFee
//	=> BreakEvenYearlySpend = MembershipFee * (1 + Inflation) / BulkDiscount
type BreakEven struct {
	YearlySpendEUR  float64
	MonthlySpendEUR float64
}

// MembershipBreakEven computes the break-even spend for a fee/discount pair.
// The discount is guarded away from zero so degenerate configuration cannot
// divide by zero.
func MembershipBreakEven(membershipFee, bulkDiscount, inflationRate float64) BreakEven {
	yearly := membershipFee * (1 + inflationRate) / math.Max(bulkDiscount, 0.001)
	return BreakEven{YearlySpendEUR: yearly, MonthlySpendEUR: yearly / 12.0}
}

// Evaluator turns draws, a strategy, and a macro scenario into one outcome row.
type Evaluator struct {
	snap     config.Snapshot
	consumer *psychology.Consumer
}

// NewEvaluator creates a strategy evaluator bound to one assumption snapshot.
func NewEvaluator(snap config.Snapshot, consumer *psychology.Consumer) *Evaluator {
	return &Evaluator{snap: snap, consumer: consumer}
}

// competitorPenalty combines the scenario-dependent uplift, fee exposure,
// market-concentration drag, information-density mitigation, and the drawn
// shock, clamped to [0, maxCompetitorPenalty].
func (e *Evaluator) competitorPenalty(scenario domain.MacroScenario, effectiveFee float64, infoCues int, shock float64) float64 {
	competition := e.snap.Competition

	scenarioUplift := 0.0
	switch scenario.Name {
	case "downside_stress":
		scenarioUplift = competition.DownsideResponseUpliftPct / 100.0
	case "upside_recovery":
		scenarioUplift = -0.35 * (competition.DownsideResponseUpliftPct / 100.0)
	}

	feeExposure := math.Max(0, (effectiveFee-35.0)/100.0) * 0.02
	concentrationDrag := (competition.Top4MarketConcentrationPct / 100.0) * 0.002
	infoMitigation := math.Max(0, float64(infoCues-psychology.InfoCueThreshold)) * 0.0015

	penalty := competition.CompetitorResponseBasePct/100.0 + scenarioUplift + feeExposure + concentrationDrag - infoMitigation + shock
	return math.Max(0, math.Min(maxCompetitorPenalty, penalty))
}

// Evaluate computes one (scenario, strategy, replication) outcome row from
// shared household draws and a scalar competitor shock.
//
// Adoption is deterministic thresholding of the logistic transform of the
// latent score at 0.5. Randomness enters only through the draws and the
// shock, never through an independent per-household coin flip; downstream
// summary statistics depend on that property.
func (e *Evaluator) Evaluate(scenario domain.MacroScenario, strategy domain.Strategy, draws DrawSet, competitorShock float64) domain.ReplicationRow {
	demand := e.snap.Demand
	ops := e.snap.Operational

	effectiveFee := strategy.EffectiveFee()
	infoCues := e.snap.LaborLegal.StandardAdInfoCuesMin - 2 + strategy.IncrementalMarketingInfoCues

	resistance := e.consumer.ImpulseResistance(scenario.ConsumerClimateIndex, scenario.SavingsRatePercent)
	penalty := e.competitorPenalty(scenario, effectiveFee, infoCues, competitorShock)

	infoDensityBoost := float64(infoCues-psychology.InfoCueThreshold) * 0.18
	feeTerm := -(effectiveFee * demand.MembershipFeeSensitivity)
	resistanceTerm := -0.85 * resistance
	competitorTerm := -(penalty * 8.0)

	n := len(draws.Spends)
	adopted := 0
	var adoptedSpendSum, adoptedDiscountSum, discountSum float64
	for i := 0; i < n; i++ {
		netBenefit := draws.Spends[i]*draws.Discounts[i] - effectiveFee
		latent := netBenefit/220.0 + infoDensityBoost + feeTerm + resistanceTerm + competitorTerm + draws.Noise[i]
		latent = math.Max(-30, math.Min(30, latent))
		if 1.0/(1.0+math.Exp(-latent)) > 0.5 {
			adopted++
			adoptedSpendSum += draws.Spends[i]
			adoptedDiscountSum += draws.Discounts[i]
		}
		discountSum += draws.Discounts[i]
	}

	adoptionRate := float64(adopted) / float64(n)
	meanDiscount := discountSum / float64(n)

	// Zero-adoption edge case: spend falls back to zero, the discount falls
	// back to the full-sample mean so merchandise economics stay defined.
	adoptedSpendMean := 0.0
	adoptedDiscountMean := meanDiscount
	if adopted > 0 {
		adoptedSpendMean = adoptedSpendSum / float64(adopted)
		adoptedDiscountMean = adoptedDiscountSum / float64(adopted)
	}

	memberHouseholds := adoptionRate * demand.AddressableHouseholds
	memberSpend := memberHouseholds * adoptedSpendMean * (1 - penalty)
	membershipRevenue := memberHouseholds * effectiveFee
	grossProfitBeforeDiscount := memberSpend * (ops.MerchandiseGrossMarginPct / 100.0)
	discountCost := memberSpend * adoptedDiscountMean
	merchandiseContribution := grossProfitBeforeDiscount - discountCost

	laborCost := e.snap.AnnualLaborCostPerWarehouse(2026)
	totalContribution := membershipRevenue + merchandiseContribution - laborCost - ops.AnnualFixedOpexEUR

	inflation := scenario.InflationPercent / 100.0
	breakEven := MembershipBreakEven(effectiveFee, meanDiscount, inflation)

	return domain.ReplicationRow{
		Scenario:                  scenario.Name,
		Strategy:                  strategy.Name,
		MembershipFeeEUR:          strategy.MembershipFeeEUR,
		FirstYearSubsidyEUR:       strategy.FirstYearSubsidyEUR,
		EffectiveFeeEUR:           effectiveFee,
		InfoCuesUsed:              infoCues,
		ConsumerClimateIndex:      scenario.ConsumerClimateIndex,
		SavingsRatePercent:        scenario.SavingsRatePercent,
		InflationPercent:          scenario.InflationPercent,
		CompetitorPenaltyPercent:  penalty * 100.0,
		AdoptionRate:              adoptionRate,
		ProjectedMemberHouseholds: memberHouseholds,
		ProjectedMemberSpendEUR:   memberSpend,
		MembershipRevenueEUR:      membershipRevenue,
		MerchandiseContribEUR:     merchandiseContribution,
		TotalContributionEUR:      totalContribution,
		BreakEvenMonthlySpendEUR:  breakEven.MonthlySpendEUR,
	}
}
