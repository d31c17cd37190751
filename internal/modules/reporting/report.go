package reporting

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/compliance"
	"github.com/ihelfrich/GermanCostCo/internal/modules/psychology"
	"github.com/ihelfrich/GermanCostCo/internal/modules/valuation"
)

// Input carries every model output the board report draws from.
type Input struct {
	RunID             string
	GeneratedAt       time.Time
	Snapshot          config.Snapshot
	Summaries         []domain.ScenarioStrategySummary
	Decisions         []domain.DecisionRecord
	Valuations        []domain.ValuationRecord
	Recommendations   []domain.CityRecommendation
	BreakEvenGrid     []valuation.BreakEvenGridRow
	Tornado           []valuation.TornadoRow
	MarketingAudit    []psychology.MarketingEvaluation
	ComplianceSummary compliance.RiskSummary
}

// BuildBoardReport renders the full analytical report as markdown.
func BuildBoardReport(in Input) string {
	var b strings.Builder

	b.WriteString("# Costco Germany 2026 — Market Entry Analysis\n\n")
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", in.RunID, in.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	writeExecutiveSummary(&b, in)
	writeScenarioSnapshot(&b, in.Summaries)
	writeDecisionMatrix(&b, in.Decisions)
	writeValuation(&b, in.Valuations)
	writeBreakEvenStress(&b, in.BreakEvenGrid, in.Tornado)
	writeCityPlan(&b, in.Recommendations)
	writeMarketingAudit(&b, in.MarketingAudit)
	writeCompliance(&b, in.ComplianceSummary)

	return b.String()
}

func recommendedStrategy(decisions []domain.DecisionRecord) (domain.DecisionRecord, bool) {
	for _, d := range decisions {
		if d.Rank == 1 {
			return d, true
		}
	}
	return domain.DecisionRecord{}, false
}

func writeExecutiveSummary(b *strings.Builder, in Input) {
	b.WriteString("## Executive Summary\n\n")

	best, ok := recommendedStrategy(in.Decisions)
	if !ok {
		b.WriteString("No strategy cleared the decision matrix.\n\n")
		return
	}

	fmt.Fprintf(b, "- Recommended pricing strategy: **%s** (risk-adjusted score EUR %s).\n",
		best.Strategy, Num0(best.RiskAdjustedScore))
	fmt.Fprintf(b, "- Probability-weighted annual contribution per warehouse: EUR %s; weighted loss probability %s.\n",
		Num0(best.WeightedMeanContributionEUR), Pct(best.WeightedProbLoss))

	for _, v := range in.Valuations {
		if v.Strategy != best.Strategy {
			continue
		}
		payback := "not reached within the horizon"
		if v.PaybackYear != domain.PaybackNever {
			payback = fmt.Sprintf("year %d", v.PaybackYear)
		}
		fmt.Fprintf(b, "- Five-year NPV for the recommended strategy: EUR %s; payback %s.\n",
			Num0(v.NPV5yEUR), payback)
	}

	launched := 0
	for _, r := range in.Recommendations {
		if r.SelectedByOptimizer {
			launched++
		}
	}
	fmt.Fprintf(b, "- Rollout plan schedules %d of %d candidate cities under the hard capex, cadence, and risk constraints.\n",
		launched, len(in.Recommendations))

	labor2026 := in.Snapshot.AnnualLaborCostPerWarehouse(2026)
	labor2027 := in.Snapshot.AnnualLaborCostPerWarehouse(2027)
	if labor2026 > 0 {
		fmt.Fprintf(b, "- Statutory minimum wage step raises annual labor cost per warehouse by %s in 2027 (EUR %s to EUR %s).\n",
			Pct((labor2027-labor2026)/labor2026), Num0(labor2026), Num0(labor2027))
	}
	b.WriteString("\n")
}

func writeScenarioSnapshot(b *strings.Builder, summaries []domain.ScenarioStrategySummary) {
	b.WriteString("## Scenario Snapshot\n\n")
	t := NewTable("Scenario", "Strategy", "Mean Contribution (EUR)", "P10 (EUR)", "P90 (EUR)",
		"Prob. Loss", "Mean Adoption", "Break-even Monthly (EUR)")
	for _, s := range summaries {
		t.AddRow(s.Scenario, s.Strategy,
			Num0(s.MeanContributionEUR), Num0(s.P10ContributionEUR), Num0(s.P90ContributionEUR),
			Pct(s.ProbLoss), Pct(s.MeanAdoptionRate), Num(s.MeanBreakEvenMonthlyEUR))
	}
	b.WriteString(t.Render() + "\n")
}

func writeDecisionMatrix(b *strings.Builder, decisions []domain.DecisionRecord) {
	b.WriteString("## Decision Matrix\n\n")
	t := NewTable("Rank", "Strategy", "Weighted Mean (EUR)", "Weighted Prob. Loss",
		"Weighted CVaR5 (EUR)", "Risk-adjusted Score (EUR)")
	for _, d := range decisions {
		t.AddRow(strconv.Itoa(d.Rank), d.Strategy,
			Num0(d.WeightedMeanContributionEUR), Pct(d.WeightedProbLoss),
			Num0(d.WeightedCVaR5EUR), Num0(d.RiskAdjustedScore))
	}
	b.WriteString(t.Render() + "\n")
}

func writeValuation(b *strings.Builder, valuations []domain.ValuationRecord) {
	b.WriteString("## Valuation\n\n")
	t := NewTable("Strategy", "NPV 5y (EUR)", "Discounted Terminal Value (EUR)", "Payback Year")
	for _, v := range valuations {
		payback := "never"
		if v.PaybackYear != domain.PaybackNever {
			payback = strconv.Itoa(v.PaybackYear)
		}
		t.AddRow(v.Strategy, Num0(v.NPV5yEUR), Num0(v.TerminalValueDiscountedEUR), payback)
	}
	b.WriteString(t.Render() + "\n")
}

func writeBreakEvenStress(b *strings.Builder, grid []valuation.BreakEvenGridRow, tornado []valuation.TornadoRow) {
	if len(grid) == 0 {
		return
	}
	b.WriteString("## Membership Value Proposition Stress\n\n")

	values := make([]float64, len(grid))
	var over200, over400, over800 int
	for i, g := range grid {
		values[i] = g.BreakEvenMonthlySpendEUR
		if g.BreakEvenMonthlySpendEUR >= 200 {
			over200++
		}
		if g.BreakEvenMonthlySpendEUR >= 400 {
			over400++
		}
		if g.BreakEvenMonthlySpendEUR >= 800 {
			over800++
		}
	}
	sort.Float64s(values)
	n := float64(len(values))
	median := values[len(values)/2]

	fmt.Fprintf(b, "Across the fee-discount grid, the median break-even monthly spend is EUR %s. "+
		"%s of cells demand EUR 200+ per month, %s demand EUR 400+, and %s breach the EUR 800 stress threshold.\n\n",
		Num(median), Pct(float64(over200)/n), Pct(float64(over400)/n), Pct(float64(over800)/n))

	if len(tornado) > 0 {
		t := NewTable("Driver", "Low Case Delta (EUR)", "High Case Delta (EUR)", "Abs. Swing (EUR)")
		for _, row := range tornado {
			t.AddRow(row.Driver, Num(row.LowCaseDeltaEUR), Num(row.HighCaseDeltaEUR), Num(row.SwingAbsEUR))
		}
		b.WriteString(t.Render() + "\n")
	}
}

func writeCityPlan(b *strings.Builder, recs []domain.CityRecommendation) {
	if len(recs) == 0 {
		return
	}
	b.WriteString("## City Rollout Plan\n\n")
	t := NewTable("Rank", "City", "State", "Strategy", "Signal", "Wave", "Year",
		"Objective (EUR)", "Readiness", "Capex Estimate (EUR)")
	for _, r := range recs {
		year := "—"
		if r.RolloutYear != domain.RolloutYearUnassigned {
			year = strconv.Itoa(r.RolloutYear)
		}
		t.AddRow(strconv.Itoa(r.CityRank), r.City, r.State, r.Strategy, string(r.BoardSignal),
			r.LaunchWave, year, Num0(r.PortfolioObjectiveEUR),
			Num(r.LaunchReadinessScore), Num0(r.CapexEstimateEUR))
	}
	b.WriteString(t.Render() + "\n")
	fmt.Fprintf(b, "Optimization status: %s.\n\n", recs[0].OptimizationStatus)
}

func writeMarketingAudit(b *strings.Builder, audit []psychology.MarketingEvaluation) {
	if len(audit) == 0 {
		return
	}
	b.WriteString("## Marketing Copy Audit\n\n")
	t := NewTable("Copy", "Cues", "Decision", "Confidence")
	for _, a := range audit {
		copyText := a.Text
		if len(copyText) > 60 {
			copyText = copyText[:57] + "..."
		}
		t.AddRow(copyText, strconv.Itoa(a.CueCount), a.Decision, Num(a.ConfidenceScore))
	}
	b.WriteString(t.Render() + "\n")
}

func writeCompliance(b *strings.Builder, summary compliance.RiskSummary) {
	b.WriteString("## Regulatory Risk\n\n")
	fmt.Fprintf(b, "- Green claim violations: %d\n", summary.GreenClaimViolations)
	fmt.Fprintf(b, "- Workforce scheduling alerts: %d\n", summary.WorkforceAlerts)
	fmt.Fprintf(b, "- High severity findings: %d\n", summary.HighSeverityFindings)
	fmt.Fprintf(b, "- Total findings: %d\n", summary.TotalFindings)
}
