package config

import "github.com/ihelfrich/GermanCostCo/internal/domain"

// Snapshot is the fully-resolved, immutable assumption set for one run.
// Callers receive a fresh value from Load/Default so nothing downstream can
// mutate the source of truth.
type Snapshot struct {
	Meta         Meta                    `json:"meta"`
	Macro        Macro                   `json:"macro"`
	Cultural     Cultural                `json:"cultural"`
	LaborLegal   LaborLegal              `json:"labor_legal"`
	Operational  Operational             `json:"operational_assumptions"`
	Demand       Demand                  `json:"demand_assumptions"`
	Competition  Competition             `json:"competition_assumptions"`
	Strategies   []domain.Strategy       `json:"strategy_options"`
	Simulation   Simulation              `json:"simulation"`
	Financial    Financial               `json:"financial_assumptions"`
	Budget       Budget                  `json:"portfolio_budget_assumptions"`
	Optimization OptimizationConstraints `json:"portfolio_optimization_constraints"`
	Cities       []domain.CityProfile    `json:"city_portfolio_assumptions"`
	Scenarios    []domain.MacroScenario  `json:"macro_scenarios"`
}

// Meta identifies the snapshot.
type Meta struct {
	ModelName          string `json:"model_name"`
	AsOfDate           string `json:"as_of_date"`
	Currency           string `json:"currency"`
	Version            string `json:"version"`
	RefreshDataUsed    bool   `json:"refresh_data_used"`
	RefreshGeneratedAt string `json:"refresh_generated_at,omitempty"`
	RefreshRejected    bool   `json:"refresh_rejected,omitempty"`
}

// Macro holds point-in-time macro-economic inputs.
type Macro struct {
	ConsumerClimateIndex  float64 `json:"consumer_climate_index"`
	SavingsRatePercent    float64 `json:"savings_rate_percent"`
	SavingsRateNetPercent float64 `json:"savings_rate_net_percent"`
	InflationPercent      float64 `json:"inflation_percent"`
	RealRetailGrowthPct   float64 `json:"real_retail_growth_percent"`
	USIndulgenceBenchmark float64 `json:"us_indulgence_reference"`
}

// Cultural holds Hofstede-style cultural indices for the target market.
type Cultural struct {
	UncertaintyAvoidance float64 `json:"uncertainty_avoidance"`
	LongTermOrientation  float64 `json:"long_term_orientation"`
	Indulgence           float64 `json:"indulgence"`
}

// LaborLegal holds wage steps and advertising-norm parameters.
type LaborLegal struct {
	MinWage2026EURPerHour float64 `json:"min_wage_2026_eur_per_hour"`
	MinWage2027EURPerHour float64 `json:"min_wage_2027_eur_per_hour"`
	StandardAdInfoCuesMin int     `json:"standard_german_ad_information_cues_min"`
	USAdInfoCuesTypical   int     `json:"us_ad_information_cues_typical"`
}

// MinWageForYear returns the statutory hourly minimum wage for the given year.
// Years past the known steps stay on the latest step.
func (l LaborLegal) MinWageForYear(year int) float64 {
	if year >= 2027 {
		return l.MinWage2027EURPerHour
	}
	return l.MinWage2026EURPerHour
}

// Operational holds per-warehouse operating assumptions.
type Operational struct {
	EmployeesPerWarehouse     float64 `json:"employees_per_warehouse"`
	HoursPerEmployeePerYear   float64 `json:"hours_per_employee_per_year"`
	AnnualFixedOpexEUR        float64 `json:"annual_fixed_opex_eur"`
	MerchandiseGrossMarginPct float64 `json:"merchandise_gross_margin_percent"`
}

// Demand holds household demand-distribution assumptions.
type Demand struct {
	AddressableHouseholds    float64 `json:"addressable_households"`
	YearlySpendMeanEUR       float64 `json:"yearly_spend_distribution_mean_eur"`
	YearlySpendSigma         float64 `json:"yearly_spend_distribution_sigma"`
	BulkDiscountMin          float64 `json:"bulk_discount_distribution_min"`
	BulkDiscountMode         float64 `json:"bulk_discount_distribution_mode"`
	BulkDiscountMax          float64 `json:"bulk_discount_distribution_max"`
	MembershipFeeSensitivity float64 `json:"membership_fee_sensitivity"`
}

// Competition holds competitor-response assumptions.
type Competition struct {
	DiscounterMarketSharePct   float64 `json:"discounter_market_share_percent"`
	Top4MarketConcentrationPct float64 `json:"top4_market_concentration_percent"`
	CompetitorResponseBasePct  float64 `json:"competitor_response_base_percent"`
	DownsideResponseUpliftPct  float64 `json:"downside_response_uplift_percent"`
	ResponseVolatilityPct      float64 `json:"response_volatility_percent"`
}

// Simulation controls the Monte Carlo replication engine.
type Simulation struct {
	NHouseholds   int   `json:"n_households_monte_carlo"`
	RandomSeed    int64 `json:"random_seed"`
	NReplications int   `json:"n_replications"`
	// Workers bounds optional parallelism across (scenario, replication) units.
	// 0 or 1 runs sequentially; results are identical either way.
	Workers int `json:"workers,omitempty"`
}

// Financial holds capital-allocation and valuation assumptions.
type Financial struct {
	WACCPercent               float64            `json:"wacc_percent"`
	TerminalGrowthPercent     float64            `json:"terminal_growth_percent"`
	PlanningHorizonYears      int                `json:"planning_horizon_years"`
	CapexPerNewWarehouseEUR   float64            `json:"capex_per_new_warehouse_eur"`
	MaintenanceCapexPctOfCont float64            `json:"maintenance_capex_percent_of_contribution"`
	ContributionHurdleEUR     float64            `json:"contribution_hurdle_eur"`
	WarehousesCumulative      []int              `json:"warehouses_cumulative_by_year"`
	ScenarioProbabilities     map[string]float64 `json:"scenario_probabilities"`
}

// Budget holds the rollout capex envelope.
type Budget struct {
	AnnualCapexBudgetEUR []float64 `json:"annual_capex_budget_eur"`
	BudgetReserveRatio   float64   `json:"budget_reserve_ratio"`
}

// OptimizationConstraints holds the hard rollout constraints and objective
// shaping terms of the city portfolio optimizer.
type OptimizationConstraints struct {
	MaxNewCitiesPerYear       []int     `json:"max_new_cities_per_year"`
	AnnualLossRiskCap         []float64 `json:"annual_loss_risk_cap"`
	MinDistinctStatesFirst3   int       `json:"min_distinct_states_first3_years"`
	ReadinessBonusPerPointEUR float64   `json:"readiness_bonus_per_point_eur"`
	RiskPenaltyPerProbEUR     float64   `json:"risk_penalty_per_loss_prob_point_eur"`
	BreakEvenPenaltyPerEUR    float64   `json:"break_even_penalty_per_eur_over_70_monthly"`
}

// Default returns the embedded baseline assumption set.
func Default() Snapshot {
	return Snapshot{
		Meta: Meta{
			ModelName: "Costco Germany 2026 Market Entry Simulation Engine",
			AsOfDate:  "2026-02-13",
			Currency:  "EUR",
			Version:   "2.0.0",
		},
		Macro: Macro{
			ConsumerClimateIndex:  -24.1,
			SavingsRatePercent:    20.0,
			SavingsRateNetPercent: 10.3,
			InflationPercent:      2.2,
			RealRetailGrowthPct:   2.7,
			USIndulgenceBenchmark: 68,
		},
		Cultural: Cultural{
			UncertaintyAvoidance: 65,
			LongTermOrientation:  83,
			Indulgence:           40,
		},
		LaborLegal: LaborLegal{
			MinWage2026EURPerHour: 13.90,
			MinWage2027EURPerHour: 14.60,
			StandardAdInfoCuesMin: 7,
			USAdInfoCuesTypical:   3,
		},
		Operational: Operational{
			EmployeesPerWarehouse:     260,
			HoursPerEmployeePerYear:   1780,
			AnnualFixedOpexEUR:        7_500_000,
			MerchandiseGrossMarginPct: 12.5,
		},
		Demand: Demand{
			AddressableHouseholds:    450_000,
			YearlySpendMeanEUR:       4_800,
			YearlySpendSigma:         0.55,
			BulkDiscountMin:          0.06,
			BulkDiscountMode:         0.10,
			BulkDiscountMax:          0.14,
			MembershipFeeSensitivity: 0.018,
		},
		Competition: Competition{
			DiscounterMarketSharePct:   47.0,
			Top4MarketConcentrationPct: 85.0,
			CompetitorResponseBasePct:  1.2,
			DownsideResponseUpliftPct:  1.0,
			ResponseVolatilityPct:      0.7,
		},
		Strategies: []domain.Strategy{
			{Name: "standard_65", MembershipFeeEUR: 65.0, FirstYearSubsidyEUR: 0.0, IncrementalMarketingInfoCues: 0},
			{Name: "entry_35", MembershipFeeEUR: 35.0, FirstYearSubsidyEUR: 0.0, IncrementalMarketingInfoCues: 1},
			{Name: "subsidized_65_to_20", MembershipFeeEUR: 65.0, FirstYearSubsidyEUR: 45.0, IncrementalMarketingInfoCues: 2},
		},
		Simulation: Simulation{
			NHouseholds:   15000,
			RandomSeed:    42,
			NReplications: 80,
		},
		Financial: Financial{
			WACCPercent:               8.5,
			TerminalGrowthPercent:     1.5,
			PlanningHorizonYears:      5,
			CapexPerNewWarehouseEUR:   55_000_000,
			MaintenanceCapexPctOfCont: 8.0,
			ContributionHurdleEUR:     2_000_000,
			WarehousesCumulative:      []int{1, 2, 4, 6, 8},
			ScenarioProbabilities: map[string]float64{
				"base_case":       0.5,
				"downside_stress": 0.3,
				"upside_recovery": 0.2,
			},
		},
		Budget: Budget{
			AnnualCapexBudgetEUR: []float64{70_000_000, 120_000_000, 180_000_000, 220_000_000, 260_000_000},
			BudgetReserveRatio:   0.10,
		},
		Optimization: OptimizationConstraints{
			MaxNewCitiesPerYear:       []int{1, 2, 3, 3, 3},
			AnnualLossRiskCap:         []float64{0.20, 0.24, 0.28, 0.32, 0.35},
			MinDistinctStatesFirst3:   3,
			ReadinessBonusPerPointEUR: 60_000,
			RiskPenaltyPerProbEUR:     2_200_000,
			BreakEvenPenaltyPerEUR:    12_000,
		},
		Cities: []domain.CityProfile{
			{City: "Berlin", State: "Berlin", Lat: 52.5200, Lon: 13.4050, HouseholdsK: 2100, IncomeIndex: 0.98, BrandFitIndex: 0.83, LogisticsIndex: 0.93, CompetitionIntensity: 0.76, RegulatoryComplexity: 0.78, SavingsPressureIndex: 0.67},
			{City: "Hamburg", State: "Hamburg", Lat: 53.5511, Lon: 9.9937, HouseholdsK: 1080, IncomeIndex: 1.07, BrandFitIndex: 0.81, LogisticsIndex: 0.92, CompetitionIntensity: 0.69, RegulatoryComplexity: 0.66, SavingsPressureIndex: 0.62},
			{City: "Munich", State: "Bavaria", Lat: 48.1351, Lon: 11.5820, HouseholdsK: 900, IncomeIndex: 1.18, BrandFitIndex: 0.89, LogisticsIndex: 0.90, CompetitionIntensity: 0.74, RegulatoryComplexity: 0.71, SavingsPressureIndex: 0.56},
			{City: "Cologne", State: "North Rhine-Westphalia", Lat: 50.9375, Lon: 6.9603, HouseholdsK: 650, IncomeIndex: 1.01, BrandFitIndex: 0.78, LogisticsIndex: 0.88, CompetitionIntensity: 0.73, RegulatoryComplexity: 0.65, SavingsPressureIndex: 0.61},
			{City: "Frankfurt", State: "Hesse", Lat: 50.1109, Lon: 8.6821, HouseholdsK: 450, IncomeIndex: 1.22, BrandFitIndex: 0.87, LogisticsIndex: 0.95, CompetitionIntensity: 0.68, RegulatoryComplexity: 0.69, SavingsPressureIndex: 0.58},
			{City: "Stuttgart", State: "Baden-Wuerttemberg", Lat: 48.7758, Lon: 9.1829, HouseholdsK: 360, IncomeIndex: 1.12, BrandFitIndex: 0.82, LogisticsIndex: 0.90, CompetitionIntensity: 0.70, RegulatoryComplexity: 0.64, SavingsPressureIndex: 0.57},
			{City: "Duesseldorf", State: "North Rhine-Westphalia", Lat: 51.2277, Lon: 6.7735, HouseholdsK: 330, IncomeIndex: 1.10, BrandFitIndex: 0.80, LogisticsIndex: 0.91, CompetitionIntensity: 0.75, RegulatoryComplexity: 0.66, SavingsPressureIndex: 0.60},
			{City: "Leipzig", State: "Saxony", Lat: 51.3397, Lon: 12.3731, HouseholdsK: 320, IncomeIndex: 0.93, BrandFitIndex: 0.74, LogisticsIndex: 0.84, CompetitionIntensity: 0.63, RegulatoryComplexity: 0.58, SavingsPressureIndex: 0.71},
			{City: "Dortmund", State: "North Rhine-Westphalia", Lat: 51.5136, Lon: 7.4653, HouseholdsK: 310, IncomeIndex: 0.94, BrandFitIndex: 0.72, LogisticsIndex: 0.86, CompetitionIntensity: 0.71, RegulatoryComplexity: 0.60, SavingsPressureIndex: 0.69},
			{City: "Bremen", State: "Bremen", Lat: 53.0793, Lon: 8.8017, HouseholdsK: 220, IncomeIndex: 0.97, BrandFitIndex: 0.70, LogisticsIndex: 0.85, CompetitionIntensity: 0.62, RegulatoryComplexity: 0.57, SavingsPressureIndex: 0.66},
			{City: "Nuremberg", State: "Bavaria", Lat: 49.4521, Lon: 11.0767, HouseholdsK: 260, IncomeIndex: 1.00, BrandFitIndex: 0.76, LogisticsIndex: 0.88, CompetitionIntensity: 0.67, RegulatoryComplexity: 0.59, SavingsPressureIndex: 0.63},
			{City: "Hanover", State: "Lower Saxony", Lat: 52.3759, Lon: 9.7320, HouseholdsK: 280, IncomeIndex: 0.99, BrandFitIndex: 0.75, LogisticsIndex: 0.89, CompetitionIntensity: 0.64, RegulatoryComplexity: 0.58, SavingsPressureIndex: 0.64},
		},
		Scenarios: []domain.MacroScenario{
			{Name: "base_case", ConsumerClimateIndex: -24.1, SavingsRatePercent: 20.0, InflationPercent: 2.2, DiscountShift: 0.0},
			{Name: "downside_stress", ConsumerClimateIndex: -30.0, SavingsRatePercent: 22.5, InflationPercent: 3.5, DiscountShift: -0.012},
			{Name: "upside_recovery", ConsumerClimateIndex: -16.0, SavingsRatePercent: 16.5, InflationPercent: 1.8, DiscountShift: 0.008},
		},
	}
}

// AlignBaseCase keeps the base-case scenario consistent with active macro values.
// Called after overrides so a refreshed macro input propagates into the scenario.
func (s *Snapshot) AlignBaseCase() {
	for i := range s.Scenarios {
		if s.Scenarios[i].Name != "base_case" {
			continue
		}
		s.Scenarios[i].ConsumerClimateIndex = s.Macro.ConsumerClimateIndex
		s.Scenarios[i].SavingsRatePercent = s.Macro.SavingsRatePercent
		s.Scenarios[i].InflationPercent = s.Macro.InflationPercent
	}
}

// AnnualLaborCostPerWarehouse derives labor cost from the wage step and
// staffing assumptions.
func (s Snapshot) AnnualLaborCostPerWarehouse(year int) float64 {
	return s.LaborLegal.MinWageForYear(year) *
		s.Operational.EmployeesPerWarehouse *
		s.Operational.HoursPerEmployeePerYear
}
