// Package domain holds the pure data model shared across simulation,
// analytics, valuation, city scoring, and rollout planning. No package in
// here depends on infrastructure.
package domain

// MacroScenario is a named macro-economic regime. Immutable per run.
type MacroScenario struct {
	Name                 string  `json:"scenario"`
	ConsumerClimateIndex float64 `json:"consumer_climate_index"`
	SavingsRatePercent   float64 `json:"savings_rate_percent"`
	InflationPercent     float64 `json:"inflation_percent"`
	DiscountShift        float64 `json:"discount_shift"` // Additive shift on the bulk-discount triangular parameters
}

// Strategy is one discrete membership-pricing/marketing configuration.
type Strategy struct {
	Name                         string  `json:"strategy"`
	MembershipFeeEUR             float64 `json:"membership_fee_eur"`
	FirstYearSubsidyEUR          float64 `json:"first_year_subsidy_eur"`
	IncrementalMarketingInfoCues int     `json:"incremental_marketing_info_cues"`
}

// EffectiveFee returns the fee net of first-year subsidy, floored at zero.
func (s Strategy) EffectiveFee() float64 {
	fee := s.MembershipFeeEUR - s.FirstYearSubsidyEUR
	if fee < 0 {
		return 0
	}
	return fee
}

// ReplicationRow is one (scenario, strategy, replication) simulation outcome.
// Immutable once produced.
type ReplicationRow struct {
	Scenario                  string  `json:"scenario"`
	Strategy                  string  `json:"strategy"`
	ReplicationID             int     `json:"replication_id"`
	MembershipFeeEUR          float64 `json:"membership_fee_eur"`
	FirstYearSubsidyEUR       float64 `json:"first_year_subsidy_eur"`
	EffectiveFeeEUR           float64 `json:"effective_fee_eur"`
	InfoCuesUsed              int     `json:"info_cues_used"`
	ConsumerClimateIndex      float64 `json:"consumer_climate_index"`
	SavingsRatePercent        float64 `json:"savings_rate_percent"`
	InflationPercent          float64 `json:"inflation_percent"`
	CompetitorPenaltyPercent  float64 `json:"competitor_penalty_percent"`
	AdoptionRate              float64 `json:"adoption_rate"`
	ProjectedMemberHouseholds float64 `json:"projected_member_households"`
	ProjectedMemberSpendEUR   float64 `json:"projected_member_spend_eur"`
	MembershipRevenueEUR      float64 `json:"membership_revenue_eur"`
	MerchandiseContribEUR     float64 `json:"merchandise_contribution_eur"`
	TotalContributionEUR      float64 `json:"total_contribution_eur"`
	BreakEvenMonthlySpendEUR  float64 `json:"break_even_monthly_spend_eur"`
}

// ScenarioStrategySummary aggregates all replications for one (scenario, strategy).
type ScenarioStrategySummary struct {
	Scenario                 string  `json:"scenario"`
	Strategy                 string  `json:"strategy"`
	MeanContributionEUR      float64 `json:"mean_contribution_eur"`
	StdContributionEUR       float64 `json:"std_contribution_eur"`
	P10ContributionEUR       float64 `json:"p10_contribution_eur"`
	P50ContributionEUR       float64 `json:"p50_contribution_eur"`
	P90ContributionEUR       float64 `json:"p90_contribution_eur"`
	CVaR5ContributionEUR     float64 `json:"cvar5_contribution_eur"`
	ProbLoss                 float64 `json:"prob_loss"`
	ProbMeetHurdle           float64 `json:"prob_meet_hurdle"`
	MeanAdoptionRate         float64 `json:"mean_adoption_rate"`
	AdoptionCILow            float64 `json:"adoption_ci_low"`
	AdoptionCIHigh           float64 `json:"adoption_ci_high"`
	MeanCompetitorPenaltyPct float64 `json:"mean_competitor_penalty_pct"`
	MeanBreakEvenMonthlyEUR  float64 `json:"mean_break_even_monthly_eur"`
}

// DecisionRecord is the scenario-probability-weighted scorecard row for one strategy.
type DecisionRecord struct {
	Strategy                    string  `json:"strategy"`
	WeightedMeanContributionEUR float64 `json:"weighted_mean_contribution_eur"`
	MeanStdContributionEUR      float64 `json:"mean_std_contribution_eur"`
	WeightedProbLoss            float64 `json:"weighted_prob_loss"`
	WeightedCVaR5EUR            float64 `json:"weighted_cvar5_contribution_eur"`
	WeightedProbMeetHurdle      float64 `json:"weighted_prob_meet_hurdle"`
	BaseCaseContributionEUR     float64 `json:"base_case_contribution_eur"`
	BaseCaseAdoptionRate        float64 `json:"base_case_adoption_rate"`
	RiskAdjustedScore           float64 `json:"risk_adjusted_score"`
	Rank                        int     `json:"rank"` // 1 = best
}

// CashflowRow is one year of the per-strategy free-cash-flow schedule.
type CashflowRow struct {
	Strategy                    string  `json:"strategy"`
	Year                        int     `json:"year"`
	CumulativeWarehouses        int     `json:"cumulative_warehouses"`
	ContributionPerWarehouseEUR float64 `json:"contribution_per_warehouse_eur"`
	GrossContributionEUR        float64 `json:"gross_contribution_eur"`
	MaintenanceCapexEUR         float64 `json:"maintenance_capex_eur"`
	GrowthCapexEUR              float64 `json:"growth_capex_eur"`
	FreeCashFlowEUR             float64 `json:"free_cash_flow_eur"`
	DiscountFactor              float64 `json:"discount_factor"`
	DiscountedFCFEUR            float64 `json:"discounted_fcf_eur"`
}

// PaybackNever is the sentinel for a strategy that never pays back within the horizon.
const PaybackNever = -1

// ValuationRecord is the per-strategy DCF outcome.
type ValuationRecord struct {
	Strategy                    string  `json:"strategy"`
	WeightedMeanContributionEUR float64 `json:"weighted_mean_contribution_eur"`
	StrategyGrowthAssumption    float64 `json:"strategy_growth_assumption"`
	NPV5yEUR                    float64 `json:"npv_5y_eur"`
	TerminalValueDiscountedEUR  float64 `json:"terminal_value_discounted_eur"`
	PaybackYear                 int     `json:"payback_year"` // PaybackNever if not reached
}

// CityProfile holds static per-city attributes. Loaded once, never mutated.
// Income is normalized around 1.0; fit/competition/logistics/regulatory/savings
// indices live in [0, 1].
type CityProfile struct {
	City                 string  `json:"city"`
	State                string  `json:"state"`
	Lat                  float64 `json:"lat"`
	Lon                  float64 `json:"lon"`
	HouseholdsK          float64 `json:"households_k"`
	IncomeIndex          float64 `json:"income_index"`
	BrandFitIndex        float64 `json:"brand_fit_index"`
	LogisticsIndex       float64 `json:"logistics_index"`
	CompetitionIntensity float64 `json:"competition_intensity"`
	RegulatoryComplexity float64 `json:"regulatory_complexity"`
	SavingsPressureIndex float64 `json:"savings_pressure_index"`
}

// CityStrategyScore is the risk-adjusted economics of one (city, strategy) pair.
type CityStrategyScore struct {
	CityProfile
	Strategy                    string  `json:"strategy"`
	CityMultiplier              float64 `json:"city_multiplier"`
	ExpectedContributionEUR     float64 `json:"expected_contribution_eur"`
	DownsideContributionEUR     float64 `json:"downside_contribution_eur"`
	UpsideContributionEUR       float64 `json:"upside_contribution_eur"`
	CityProbLoss                float64 `json:"city_prob_loss"`
	RiskAdjustedCityScore       float64 `json:"risk_adjusted_city_score"`
	AdjustedBreakEvenMonthlyEUR float64 `json:"adjusted_break_even_monthly_eur"`
	AdjustedAdoptionRate        float64 `json:"adjusted_adoption_rate"`
	PreliminaryReadinessScore   float64 `json:"preliminary_readiness_score"`
	BreakEvenPenaltyEUR         float64 `json:"objective_break_even_penalty_eur"`
	PortfolioObjectiveEUR       float64 `json:"portfolio_objective_eur"`
}

// BoardSignal is the three-level launch classification of a city.
type BoardSignal string

const (
	SignalGo          BoardSignal = "GO"
	SignalConditional BoardSignal = "CONDITIONAL"
	SignalNoGo        BoardSignal = "NO-GO"
)

// Per-city optimization status tags.
const (
	OptStatusUnassigned   = "UNASSIGNED"
	OptStatusSelected     = "HARD_CONSTRAINED_SELECTION"
	OptStatusNoCandidates = "NO_FEASIBLE_GO_OR_CONDITIONAL_CITIES"
	OptStatusInfeasible   = "INFEASIBLE_CONSTRAINT_SET"
)

// RolloutYearUnassigned is the sentinel year for cities held out of the plan.
const RolloutYearUnassigned = -1

// CityRecommendation is the best-strategy row per city, annotated by the
// rollout optimizer with year/budget/risk/selection fields.
type CityRecommendation struct {
	CityStrategyScore
	BoardSignal          BoardSignal `json:"board_signal"`
	LaunchReadinessScore float64     `json:"launch_readiness_score"`
	CapexEstimateEUR     float64     `json:"capex_estimate_eur"`
	ScoreDensity         float64     `json:"score_density"`
	RolloutYear          int         `json:"rollout_year"` // RolloutYearUnassigned when held
	LaunchWave           string      `json:"launch_wave"`
	YearCapexBudgetEUR   float64     `json:"year_capex_budget_eur"` // zero when unassigned
	YearCapexUsedEUR     float64     `json:"year_capex_used_eur"`
	YearRiskCap          float64     `json:"year_risk_cap"`
	YearLossRiskAvg      float64     `json:"year_loss_risk_avg"`
	SelectedByOptimizer  bool        `json:"selected_by_optimizer"`
	OptimizationStatus   string      `json:"optimization_status"`
	CityRank             int         `json:"city_rank"`
}

// LaunchWave derives the wave label from an assigned rollout year.
func LaunchWave(year int) string {
	switch {
	case year == 1:
		return "Wave 1 Pilot"
	case year == 2 || year == 3:
		return "Wave 2 Scale"
	case year > 3:
		return "Wave 3 Option"
	default:
		return "Hold"
	}
}
