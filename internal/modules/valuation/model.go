// Package valuation builds a multi-year free-cash-flow model per strategy
// and derives NPV, terminal value, and payback from the decision matrix.
package valuation

import (
	"math"
	"sort"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

// Model turns probability-weighted contribution into a capex-aware DCF.
type Model struct {
	snap config.Snapshot
}

// NewModel creates a valuation model bound to one assumption snapshot.
func NewModel(snap config.Snapshot) *Model {
	return &Model{snap: snap}
}

// strategyGrowth links macro real retail growth with adoption momentum.
// Strategies that clear a 20% base-case adoption rate earn extra growth, the
// rest decay toward the macro floor. Clamped to [-2%, +9%].
func (m *Model) strategyGrowth(baseCaseAdoption float64) float64 {
	realGrowth := m.snap.Macro.RealRetailGrowthPct / 100.0
	g := realGrowth + (baseCaseAdoption-0.20)*0.10
	return math.Max(-0.02, math.Min(0.09, g))
}

// Build computes the cashflow schedule and valuation record for every
// strategy on the decision matrix. Valuations are returned sorted by NPV
// descending; cashflows keep decision-matrix order.
func (m *Model) Build(decisions []domain.DecisionRecord) ([]domain.ValuationRecord, []domain.CashflowRow) {
	fin := m.snap.Financial
	wacc := fin.WACCPercent / 100.0
	terminalGrowth := fin.TerminalGrowthPercent / 100.0
	horizon := fin.PlanningHorizonYears
	maintPct := fin.MaintenanceCapexPctOfCont / 100.0

	rollout := fin.WarehousesCumulative
	if len(rollout) > horizon {
		rollout = rollout[:horizon]
	}

	valuations := make([]domain.ValuationRecord, 0, len(decisions))
	cashflows := make([]domain.CashflowRow, 0, len(decisions)*horizon)

	for _, dec := range decisions {
		growth := m.strategyGrowth(dec.BaseCaseAdoptionRate)

		var npv, undiscountedCum, finalFCF float64
		payback := domain.PaybackNever
		prevWarehouses := 0

		for year := 1; year <= horizon; year++ {
			cumulative := rollout[len(rollout)-1]
			if year-1 < len(rollout) {
				cumulative = rollout[year-1]
			}
			newWarehouses := cumulative - prevWarehouses
			prevWarehouses = cumulative

			contribPerWH := dec.WeightedMeanContributionEUR * math.Pow(1+growth, float64(year-1))
			gross := contribPerWH * float64(cumulative)
			maintenance := math.Max(0, gross) * maintPct
			growthCapex := float64(newWarehouses) * fin.CapexPerNewWarehouseEUR
			fcf := gross - maintenance - growthCapex

			discountFactor := 1.0 / math.Pow(1+wacc, float64(year))
			discounted := fcf * discountFactor
			npv += discounted
			finalFCF = fcf

			undiscountedCum += fcf
			if payback == domain.PaybackNever && undiscountedCum >= 0 {
				payback = year
			}

			cashflows = append(cashflows, domain.CashflowRow{
				Strategy:                    dec.Strategy,
				Year:                        year,
				CumulativeWarehouses:        cumulative,
				ContributionPerWarehouseEUR: contribPerWH,
				GrossContributionEUR:        gross,
				MaintenanceCapexEUR:         maintenance,
				GrowthCapexEUR:              growthCapex,
				FreeCashFlowEUR:             fcf,
				DiscountFactor:              discountFactor,
				DiscountedFCFEUR:            discounted,
			})
		}

		// Terminal value only on a stabilized positive final-year FCF and a
		// WACC strictly above the terminal growth rate.
		terminalDiscounted := 0.0
		if finalFCF > 0 && wacc > terminalGrowth {
			terminal := finalFCF * (1 + terminalGrowth) / (wacc - terminalGrowth)
			terminalDiscounted = terminal / math.Pow(1+wacc, float64(horizon))
		}

		valuations = append(valuations, domain.ValuationRecord{
			Strategy:                    dec.Strategy,
			WeightedMeanContributionEUR: dec.WeightedMeanContributionEUR,
			StrategyGrowthAssumption:    growth,
			NPV5yEUR:                    npv + terminalDiscounted,
			TerminalValueDiscountedEUR:  terminalDiscounted,
			PaybackYear:                 payback,
		})
	}

	sort.SliceStable(valuations, func(i, j int) bool {
		return valuations[i].NPV5yEUR > valuations[j].NPV5yEUR
	})
	return valuations, cashflows
}
