package storage

// Schema defines the results database. Replication rows are stored as one
// msgpack blob per run; the aggregate tables get real columns so they can be
// queried directly.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                   TEXT PRIMARY KEY,
    generated_at         TEXT NOT NULL,
    elapsed_ms           INTEGER NOT NULL,
    recommended_strategy TEXT NOT NULL,
    snapshot_json        TEXT NOT NULL,
    insights_json        TEXT NOT NULL,
    report_markdown      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS replication_blobs (
    run_id    TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
    row_count INTEGER NOT NULL,
    payload   BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS scenario_summaries (
    run_id                      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    scenario                    TEXT NOT NULL,
    strategy                    TEXT NOT NULL,
    mean_contribution_eur       REAL NOT NULL,
    std_contribution_eur        REAL NOT NULL,
    p10_contribution_eur        REAL NOT NULL,
    p50_contribution_eur        REAL NOT NULL,
    p90_contribution_eur        REAL NOT NULL,
    cvar5_contribution_eur      REAL NOT NULL,
    prob_loss                   REAL NOT NULL,
    prob_meet_hurdle            REAL NOT NULL,
    mean_adoption_rate          REAL NOT NULL,
    adoption_ci_low             REAL NOT NULL,
    adoption_ci_high            REAL NOT NULL,
    mean_competitor_penalty_pct REAL NOT NULL,
    mean_break_even_monthly_eur REAL NOT NULL,
    PRIMARY KEY (run_id, scenario, strategy)
);

CREATE TABLE IF NOT EXISTS decision_matrix (
    run_id                          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    strategy                        TEXT NOT NULL,
    weighted_mean_contribution_eur  REAL NOT NULL,
    mean_std_contribution_eur       REAL NOT NULL,
    weighted_prob_loss              REAL NOT NULL,
    weighted_cvar5_contribution_eur REAL NOT NULL,
    weighted_prob_meet_hurdle       REAL NOT NULL,
    base_case_contribution_eur      REAL NOT NULL,
    base_case_adoption_rate         REAL NOT NULL,
    risk_adjusted_score             REAL NOT NULL,
    rank                            INTEGER NOT NULL,
    PRIMARY KEY (run_id, strategy)
);

CREATE TABLE IF NOT EXISTS valuations (
    run_id                         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    strategy                       TEXT NOT NULL,
    weighted_mean_contribution_eur REAL NOT NULL,
    strategy_growth_assumption     REAL NOT NULL,
    npv_5y_eur                     REAL NOT NULL,
    terminal_value_discounted_eur  REAL NOT NULL,
    payback_year                   INTEGER NOT NULL,
    PRIMARY KEY (run_id, strategy)
);

CREATE TABLE IF NOT EXISTS cashflows (
    run_id                         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    strategy                       TEXT NOT NULL,
    year                           INTEGER NOT NULL,
    cumulative_warehouses          INTEGER NOT NULL,
    contribution_per_warehouse_eur REAL NOT NULL,
    gross_contribution_eur         REAL NOT NULL,
    maintenance_capex_eur          REAL NOT NULL,
    growth_capex_eur               REAL NOT NULL,
    free_cash_flow_eur             REAL NOT NULL,
    discount_factor                REAL NOT NULL,
    discounted_fcf_eur             REAL NOT NULL,
    PRIMARY KEY (run_id, strategy, year)
);

CREATE TABLE IF NOT EXISTS city_scores (
    run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    city     TEXT NOT NULL,
    strategy TEXT NOT NULL,
    payload  TEXT NOT NULL,
    PRIMARY KEY (run_id, city, strategy)
);

CREATE TABLE IF NOT EXISTS city_recommendations (
    run_id                  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    city                    TEXT NOT NULL,
    strategy                TEXT NOT NULL,
    board_signal            TEXT NOT NULL,
    rollout_year            INTEGER NOT NULL,
    city_rank               INTEGER NOT NULL,
    portfolio_objective_eur REAL NOT NULL,
    optimization_status     TEXT NOT NULL,
    payload                 TEXT NOT NULL,
    PRIMARY KEY (run_id, city)
);

CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at DESC);
`
