// Package storage persists analysis runs to the embedded results database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ihelfrich/GermanCostCo/internal/database"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/pipeline"
)

// ErrRunNotFound is returned when no run matches the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunMeta is the lightweight run listing row.
type RunMeta struct {
	ID                  string    `json:"id"`
	GeneratedAt         time.Time `json:"generated_at"`
	ElapsedMS           int64     `json:"elapsed_ms"`
	RecommendedStrategy string    `json:"recommended_strategy"`
}

// RunRepository reads and writes analysis runs.
type RunRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRunRepository applies the schema and returns the repository.
func NewRunRepository(db *database.DB, log zerolog.Logger) (*RunRepository, error) {
	if err := db.Migrate(Schema); err != nil {
		return nil, fmt.Errorf("migrating results schema: %w", err)
	}
	return &RunRepository{
		db:  db,
		log: log.With().Str("component", "storage").Logger(),
	}, nil
}

// Save persists one full run inside a single transaction.
func (r *RunRepository) Save(ctx context.Context, result *pipeline.Result) error {
	snapshotJSON, err := json.Marshal(result.Snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	insightsJSON, err := json.Marshal(result.Insights)
	if err != nil {
		return fmt.Errorf("encoding insights: %w", err)
	}
	replicationBlob, err := msgpack.Marshal(result.Rows)
	if err != nil {
		return fmt.Errorf("encoding replication rows: %w", err)
	}

	err = database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, generated_at, elapsed_ms, recommended_strategy, snapshot_json, insights_json, report_markdown)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			result.RunID,
			result.GeneratedAt.Format(time.RFC3339Nano),
			result.Elapsed.Milliseconds(),
			result.Insights.RecommendedStrategy,
			string(snapshotJSON),
			string(insightsJSON),
			result.Report,
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO replication_blobs (run_id, row_count, payload) VALUES (?, ?, ?)`,
			result.RunID, len(result.Rows), replicationBlob,
		); err != nil {
			return fmt.Errorf("inserting replication blob: %w", err)
		}

		if err := insertSummaries(ctx, tx, result.RunID, result.Summaries); err != nil {
			return err
		}
		if err := insertDecisions(ctx, tx, result.RunID, result.Decisions); err != nil {
			return err
		}
		if err := insertValuations(ctx, tx, result.RunID, result.Valuations); err != nil {
			return err
		}
		if err := insertCashflows(ctx, tx, result.RunID, result.Cashflows); err != nil {
			return err
		}
		if err := insertCityScores(ctx, tx, result.RunID, result.CityScores); err != nil {
			return err
		}
		return insertCityPlan(ctx, tx, result.RunID, result.CityPlan)
	})
	if err != nil {
		return err
	}

	r.log.Info().
		Str("run_id", result.RunID).
		Int("replication_rows", len(result.Rows)).
		Msg("run persisted")
	return nil
}

func insertSummaries(ctx context.Context, tx *sql.Tx, runID string, summaries []domain.ScenarioStrategySummary) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scenario_summaries (run_id, scenario, strategy, mean_contribution_eur, std_contribution_eur,
		 p10_contribution_eur, p50_contribution_eur, p90_contribution_eur, cvar5_contribution_eur, prob_loss,
		 prob_meet_hurdle, mean_adoption_rate, adoption_ci_low, adoption_ci_high, mean_competitor_penalty_pct,
		 mean_break_even_monthly_eur)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing summary insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range summaries {
		if _, err := stmt.ExecContext(ctx, runID, s.Scenario, s.Strategy, s.MeanContributionEUR,
			s.StdContributionEUR, s.P10ContributionEUR, s.P50ContributionEUR, s.P90ContributionEUR,
			s.CVaR5ContributionEUR, s.ProbLoss, s.ProbMeetHurdle, s.MeanAdoptionRate,
			s.AdoptionCILow, s.AdoptionCIHigh, s.MeanCompetitorPenaltyPct, s.MeanBreakEvenMonthlyEUR,
		); err != nil {
			return fmt.Errorf("inserting summary %s/%s: %w", s.Scenario, s.Strategy, err)
		}
	}
	return nil
}

func insertDecisions(ctx context.Context, tx *sql.Tx, runID string, decisions []domain.DecisionRecord) error {
	for _, d := range decisions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO decision_matrix (run_id, strategy, weighted_mean_contribution_eur, mean_std_contribution_eur,
			 weighted_prob_loss, weighted_cvar5_contribution_eur, weighted_prob_meet_hurdle,
			 base_case_contribution_eur, base_case_adoption_rate, risk_adjusted_score, rank)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, d.Strategy, d.WeightedMeanContributionEUR, d.MeanStdContributionEUR,
			d.WeightedProbLoss, d.WeightedCVaR5EUR, d.WeightedProbMeetHurdle,
			d.BaseCaseContributionEUR, d.BaseCaseAdoptionRate, d.RiskAdjustedScore, d.Rank,
		); err != nil {
			return fmt.Errorf("inserting decision %s: %w", d.Strategy, err)
		}
	}
	return nil
}

func insertValuations(ctx context.Context, tx *sql.Tx, runID string, valuations []domain.ValuationRecord) error {
	for _, v := range valuations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO valuations (run_id, strategy, weighted_mean_contribution_eur, strategy_growth_assumption,
			 npv_5y_eur, terminal_value_discounted_eur, payback_year)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, v.Strategy, v.WeightedMeanContributionEUR, v.StrategyGrowthAssumption,
			v.NPV5yEUR, v.TerminalValueDiscountedEUR, v.PaybackYear,
		); err != nil {
			return fmt.Errorf("inserting valuation %s: %w", v.Strategy, err)
		}
	}
	return nil
}

func insertCashflows(ctx context.Context, tx *sql.Tx, runID string, cashflows []domain.CashflowRow) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cashflows (run_id, strategy, year, cumulative_warehouses, contribution_per_warehouse_eur,
		 gross_contribution_eur, maintenance_capex_eur, growth_capex_eur, free_cash_flow_eur,
		 discount_factor, discounted_fcf_eur)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cashflow insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cashflows {
		if _, err := stmt.ExecContext(ctx, runID, c.Strategy, c.Year, c.CumulativeWarehouses,
			c.ContributionPerWarehouseEUR, c.GrossContributionEUR, c.MaintenanceCapexEUR,
			c.GrowthCapexEUR, c.FreeCashFlowEUR, c.DiscountFactor, c.DiscountedFCFEUR,
		); err != nil {
			return fmt.Errorf("inserting cashflow %s year %d: %w", c.Strategy, c.Year, err)
		}
	}
	return nil
}

func insertCityScores(ctx context.Context, tx *sql.Tx, runID string, scores []domain.CityStrategyScore) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO city_scores (run_id, city, strategy, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing city score insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scores {
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding city score %s/%s: %w", s.City, s.Strategy, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, s.City, s.Strategy, string(payload)); err != nil {
			return fmt.Errorf("inserting city score %s/%s: %w", s.City, s.Strategy, err)
		}
	}
	return nil
}

func insertCityPlan(ctx context.Context, tx *sql.Tx, runID string, plan []domain.CityRecommendation) error {
	for _, rec := range plan {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding recommendation %s: %w", rec.City, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO city_recommendations (run_id, city, strategy, board_signal, rollout_year, city_rank,
			 portfolio_objective_eur, optimization_status, payload)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.City, rec.Strategy, string(rec.BoardSignal), rec.RolloutYear, rec.CityRank,
			rec.PortfolioObjectiveEUR, rec.OptimizationStatus, string(payload),
		); err != nil {
			return fmt.Errorf("inserting recommendation %s: %w", rec.City, err)
		}
	}
	return nil
}

// LatestRunID returns the id of the most recent run.
func (r *RunRepository) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY generated_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return id, nil
}

// GetRunMeta returns the listing row for one run.
func (r *RunRepository) GetRunMeta(ctx context.Context, runID string) (RunMeta, error) {
	var meta RunMeta
	var generatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, generated_at, elapsed_ms, recommended_strategy FROM runs WHERE id = ?`, runID).
		Scan(&meta.ID, &generatedAt, &meta.ElapsedMS, &meta.RecommendedStrategy)
	if errors.Is(err, sql.ErrNoRows) {
		return RunMeta{}, ErrRunNotFound
	}
	if err != nil {
		return RunMeta{}, fmt.Errorf("querying run %s: %w", runID, err)
	}
	meta.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return RunMeta{}, fmt.Errorf("parsing run timestamp: %w", err)
	}
	return meta, nil
}

// ListRuns returns run metadata newest-first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]RunMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, generated_at, elapsed_ms, recommended_strategy FROM runs
		 ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var metas []RunMeta
	for rows.Next() {
		var meta RunMeta
		var generatedAt string
		if err := rows.Scan(&meta.ID, &generatedAt, &meta.ElapsedMS, &meta.RecommendedStrategy); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if meta.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// GetSummaries returns the scenario summary table for one run.
func (r *RunRepository) GetSummaries(ctx context.Context, runID string) ([]domain.ScenarioStrategySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT scenario, strategy, mean_contribution_eur, std_contribution_eur, p10_contribution_eur,
		 p50_contribution_eur, p90_contribution_eur, cvar5_contribution_eur, prob_loss, prob_meet_hurdle,
		 mean_adoption_rate, adoption_ci_low, adoption_ci_high, mean_competitor_penalty_pct,
		 mean_break_even_monthly_eur
		 FROM scenario_summaries WHERE run_id = ? ORDER BY scenario, strategy`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ScenarioStrategySummary
	for rows.Next() {
		var s domain.ScenarioStrategySummary
		if err := rows.Scan(&s.Scenario, &s.Strategy, &s.MeanContributionEUR, &s.StdContributionEUR,
			&s.P10ContributionEUR, &s.P50ContributionEUR, &s.P90ContributionEUR, &s.CVaR5ContributionEUR,
			&s.ProbLoss, &s.ProbMeetHurdle, &s.MeanAdoptionRate, &s.AdoptionCILow, &s.AdoptionCIHigh,
			&s.MeanCompetitorPenaltyPct, &s.MeanBreakEvenMonthlyEUR); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetDecisions returns the decision matrix for one run, rank ascending.
func (r *RunRepository) GetDecisions(ctx context.Context, runID string) ([]domain.DecisionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strategy, weighted_mean_contribution_eur, mean_std_contribution_eur, weighted_prob_loss,
		 weighted_cvar5_contribution_eur, weighted_prob_meet_hurdle, base_case_contribution_eur,
		 base_case_adoption_rate, risk_adjusted_score, rank
		 FROM decision_matrix WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying decision matrix: %w", err)
	}
	defer rows.Close()

	var decisions []domain.DecisionRecord
	for rows.Next() {
		var d domain.DecisionRecord
		if err := rows.Scan(&d.Strategy, &d.WeightedMeanContributionEUR, &d.MeanStdContributionEUR,
			&d.WeightedProbLoss, &d.WeightedCVaR5EUR, &d.WeightedProbMeetHurdle,
			&d.BaseCaseContributionEUR, &d.BaseCaseAdoptionRate, &d.RiskAdjustedScore, &d.Rank); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// GetValuations returns valuation records for one run, NPV descending.
func (r *RunRepository) GetValuations(ctx context.Context, runID string) ([]domain.ValuationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strategy, weighted_mean_contribution_eur, strategy_growth_assumption, npv_5y_eur,
		 terminal_value_discounted_eur, payback_year
		 FROM valuations WHERE run_id = ? ORDER BY npv_5y_eur DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying valuations: %w", err)
	}
	defer rows.Close()

	var valuations []domain.ValuationRecord
	for rows.Next() {
		var v domain.ValuationRecord
		if err := rows.Scan(&v.Strategy, &v.WeightedMeanContributionEUR, &v.StrategyGrowthAssumption,
			&v.NPV5yEUR, &v.TerminalValueDiscountedEUR, &v.PaybackYear); err != nil {
			return nil, fmt.Errorf("scanning valuation row: %w", err)
		}
		valuations = append(valuations, v)
	}
	return valuations, rows.Err()
}

// GetCityScores returns the full city-strategy matrix for one run.
func (r *RunRepository) GetCityScores(ctx context.Context, runID string) ([]domain.CityStrategyScore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM city_scores WHERE run_id = ? ORDER BY city, strategy`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying city scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.CityStrategyScore
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning city score row: %w", err)
		}
		var s domain.CityStrategyScore
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("decoding city score payload: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetCityPlan returns the optimized city plan for one run, rank ascending.
func (r *RunRepository) GetCityPlan(ctx context.Context, runID string) ([]domain.CityRecommendation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM city_recommendations WHERE run_id = ? ORDER BY city_rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying city plan: %w", err)
	}
	defer rows.Close()

	var plan []domain.CityRecommendation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning recommendation row: %w", err)
		}
		var rec domain.CityRecommendation
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding recommendation payload: %w", err)
		}
		plan = append(plan, rec)
	}
	return plan, rows.Err()
}

// GetReplications decodes the msgpack replication blob for one run.
func (r *RunRepository) GetReplications(ctx context.Context, runID string) ([]domain.ReplicationRow, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM replication_blobs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying replication blob: %w", err)
	}

	var replications []domain.ReplicationRow
	if err := msgpack.Unmarshal(payload, &replications); err != nil {
		return nil, fmt.Errorf("decoding replication blob: %w", err)
	}
	return replications, nil
}

// GetReport returns the stored board report markdown.
func (r *RunRepository) GetReport(ctx context.Context, runID string) (string, error) {
	var report string
	err := r.db.QueryRowContext(ctx,
		`SELECT report_markdown FROM runs WHERE id = ?`, runID).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying report: %w", err)
	}
	return report, nil
}

// GetInsights returns the stored executive summary for one run.
func (r *RunRepository) GetInsights(ctx context.Context, runID string) (pipeline.Insights, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT insights_json FROM runs WHERE id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.Insights{}, ErrRunNotFound
	}
	if err != nil {
		return pipeline.Insights{}, fmt.Errorf("querying insights: %w", err)
	}

	var insights pipeline.Insights
	if err := json.Unmarshal([]byte(payload), &insights); err != nil {
		return pipeline.Insights{}, fmt.Errorf("decoding insights: %w", err)
	}
	return insights, nil
}
