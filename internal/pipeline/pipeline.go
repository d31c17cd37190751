// Package pipeline runs the full market-entry analysis: simulation,
// aggregation, valuation, city portfolio, audits, and the board report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/analytics"
	"github.com/ihelfrich/GermanCostCo/internal/modules/cities"
	"github.com/ihelfrich/GermanCostCo/internal/modules/compliance"
	"github.com/ihelfrich/GermanCostCo/internal/modules/psychology"
	"github.com/ihelfrich/GermanCostCo/internal/modules/reporting"
	"github.com/ihelfrich/GermanCostCo/internal/modules/rollout"
	"github.com/ihelfrich/GermanCostCo/internal/modules/simulation"
	"github.com/ihelfrich/GermanCostCo/internal/modules/valuation"
)

// tornadoAnchorStrategy anchors the one-at-a-time sensitivity sweep.
const tornadoAnchorStrategy = "standard_65"

// Sample marketing copy audited on every run, spanning the information
// spectrum from vague to densely specified.
var marketingAuditCopy = []string{
	"High Quality, Low Price",
	"Trusted value for families. Better prices every day.",
	"Bio oats, 2kg pack, EUR 2.49/kg, ISO 22000 certified, " +
		"Energy class A, 12-month warranty, DIN EN tested, 15% protein.",
}

var greenClaimAuditLabels = []string{
	"Climate Neutral household cleaner",
	"Eco-friendly detergent, ISO 14067 certified",
	"Green packaging for paper towels",
	"Low-emission logistics detergent ISO 14064-1",
}

var workforceAuditPlan = []compliance.ShiftPlanRecord{
	{Warehouse: "Berlin", NoticePeriodDays: 3, MonitoringType: "aggregate_metrics"},
	{Warehouse: "Hamburg", NoticePeriodDays: 7, MonitoringType: "individual_performance_tracking"},
	{Warehouse: "Munich", NoticePeriodDays: 5, MonitoringType: "aggregate_metrics"},
}

// Result bundles every table and artifact one analysis run produces.
type Result struct {
	RunID       string                           `json:"run_id"`
	GeneratedAt time.Time                        `json:"generated_at"`
	Snapshot    config.Snapshot                  `json:"snapshot"`
	Elapsed     time.Duration                    `json:"elapsed_ns"`
	Rows        []domain.ReplicationRow          `json:"-"`
	Summaries   []domain.ScenarioStrategySummary `json:"scenario_summaries"`
	Decisions   []domain.DecisionRecord          `json:"decision_matrix"`
	Valuations  []domain.ValuationRecord         `json:"valuations"`
	Cashflows   []domain.CashflowRow             `json:"cashflows"`
	CityScores  []domain.CityStrategyScore       `json:"city_scores"`
	CityPlan    []domain.CityRecommendation      `json:"city_plan"`

	BreakEvenGrid []valuation.BreakEvenGridRow `json:"break_even_grid"`
	Tornado       []valuation.TornadoRow       `json:"tornado_sensitivity"`

	MarketingAudit    []psychology.MarketingEvaluation `json:"marketing_audit"`
	GreenClaims       []compliance.GreenClaimFinding   `json:"green_claim_audit"`
	Workforce         []compliance.WorkforceFinding    `json:"workforce_audit"`
	ComplianceSummary compliance.RiskSummary           `json:"compliance_summary"`

	Report   string   `json:"-"`
	Insights Insights `json:"insights"`
}

// Insights is the executive summary exported alongside the full tables.
type Insights struct {
	ImpulseResistanceBase    float64                `json:"impulse_resistance_base"`
	Labor2026EUR             float64                `json:"labor_2026_eur"`
	Labor2027EUR             float64                `json:"labor_2027_eur"`
	LaborDeltaPct            float64                `json:"labor_delta_pct"`
	RecommendedStrategy      string                 `json:"recommended_strategy"`
	RecommendedScore         float64                `json:"recommended_strategy_risk_adjusted_score"`
	RecommendedNPV5yEUR      float64                `json:"recommended_strategy_npv_5y_eur"`
	BaseStandardContribution float64                `json:"base_standard_mean_contribution_eur"`
	BaseStandardProbLoss     float64                `json:"base_standard_prob_loss"`
	MarketingRejectCount     int                    `json:"marketing_reject_count"`
	ComplianceSummary        compliance.RiskSummary `json:"compliance_summary"`
	CityTop3                 []string               `json:"city_top3"`
}

// Pipeline wires the module chain against one assumption snapshot.
type Pipeline struct {
	snap config.Snapshot
	log  zerolog.Logger
}

// New creates a pipeline. The snapshot is validated on construction.
func New(snap config.Snapshot, log zerolog.Logger) (*Pipeline, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("validating assumption snapshot: %w", err)
	}
	return &Pipeline{
		snap: snap,
		log:  log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Run executes the full analysis and returns every result table.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	p.log.Info().
		Str("run_id", runID).
		Int("replications", p.snap.Simulation.NReplications).
		Int("households", p.snap.Simulation.NHouseholds).
		Msg("starting analysis run")

	consumer := psychology.NewConsumer(p.snap)

	rows, err := simulation.NewEngine(p.snap, consumer, p.log).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("running replication engine: %w", err)
	}

	summaries := analytics.Summarize(rows, p.snap)
	decisions := analytics.BuildDecisionMatrix(summaries, p.snap)
	valuations, cashflows := valuation.NewModel(p.snap).Build(decisions)

	scorer := cities.NewScorer(p.snap)
	cityScores := scorer.Score(summaries, decisions)
	cityPlan := scorer.Recommend(cityScores)
	rollout.NewOptimizer(p.snap, p.log).Assign(cityPlan)

	grid := valuation.BreakEvenGrid(p.snap)
	tornado := valuation.TornadoSensitivity(p.snap, p.tornadoAnchor())

	marketingAudit := make([]psychology.MarketingEvaluation, 0, len(marketingAuditCopy))
	rejects := 0
	for _, text := range marketingAuditCopy {
		eval := consumer.CountInformationCues(text)
		if eval.Decision == psychology.DecisionReject {
			rejects++
		}
		marketingAudit = append(marketingAudit, eval)
	}

	greenClaims := compliance.AuditGreenClaims(greenClaimAuditLabels)
	workforce := compliance.CheckWorkforceScheduling(workforceAuditPlan)
	riskSummary := compliance.SummarizeRisk(greenClaims, workforce)

	result := &Result{
		RunID:             runID,
		GeneratedAt:       time.Now().UTC(),
		Snapshot:          p.snap,
		Rows:              rows,
		Summaries:         summaries,
		Decisions:         decisions,
		Valuations:        valuations,
		Cashflows:         cashflows,
		CityScores:        cityScores,
		CityPlan:          cityPlan,
		BreakEvenGrid:     grid,
		Tornado:           tornado,
		MarketingAudit:    marketingAudit,
		GreenClaims:       greenClaims,
		Workforce:         workforce,
		ComplianceSummary: riskSummary,
	}
	result.Insights = p.buildInsights(result, consumer, rejects)
	result.Report = reporting.BuildBoardReport(reporting.Input{
		RunID:             runID,
		GeneratedAt:       result.GeneratedAt,
		Snapshot:          p.snap,
		Summaries:         summaries,
		Decisions:         decisions,
		Valuations:        valuations,
		Recommendations:   cityPlan,
		BreakEvenGrid:     grid,
		Tornado:           tornado,
		MarketingAudit:    marketingAudit,
		ComplianceSummary: riskSummary,
	})
	result.Elapsed = time.Since(started)

	p.log.Info().
		Str("run_id", runID).
		Int("replication_rows", len(rows)).
		Int("cities_planned", len(cityPlan)).
		Dur("elapsed", result.Elapsed).
		Msg("analysis run complete")
	return result, nil
}

func (p *Pipeline) tornadoAnchor() domain.Strategy {
	for _, s := range p.snap.Strategies {
		if s.Name == tornadoAnchorStrategy {
			return s
		}
	}
	return p.snap.Strategies[0]
}

func (p *Pipeline) buildInsights(r *Result, consumer *psychology.Consumer, marketingRejects int) Insights {
	ins := Insights{
		ImpulseResistanceBase: consumer.BaselineImpulseResistance(),
		Labor2026EUR:          p.snap.AnnualLaborCostPerWarehouse(2026),
		Labor2027EUR:          p.snap.AnnualLaborCostPerWarehouse(2027),
		MarketingRejectCount:  marketingRejects,
		ComplianceSummary:     r.ComplianceSummary,
	}
	if ins.Labor2026EUR > 0 {
		ins.LaborDeltaPct = (ins.Labor2027EUR - ins.Labor2026EUR) / ins.Labor2026EUR * 100
	}

	for _, d := range r.Decisions {
		if d.Rank == 1 {
			ins.RecommendedStrategy = d.Strategy
			ins.RecommendedScore = d.RiskAdjustedScore
		}
	}
	for _, v := range r.Valuations {
		if v.Strategy == ins.RecommendedStrategy {
			ins.RecommendedNPV5yEUR = v.NPV5yEUR
		}
	}
	for _, s := range r.Summaries {
		if s.Scenario == "base_case" && s.Strategy == tornadoAnchorStrategy {
			ins.BaseStandardContribution = s.MeanContributionEUR
			ins.BaseStandardProbLoss = s.ProbLoss
		}
	}
	for i, rec := range r.CityPlan {
		if i == 3 {
			break
		}
		ins.CityTop3 = append(ins.CityTop3, rec.City)
	}
	return ins
}
