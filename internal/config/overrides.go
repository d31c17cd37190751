package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// RefreshPayload is the shape of the externally-refreshed inputs file. Only
// payloads that passed the upstream quality gate are merged; anything else is
// recorded on Meta and otherwise ignored.
type RefreshPayload struct {
	GeneratedAt       string                        `json:"generated_at"`
	Overrides         map[string]map[string]float64 `json:"overrides"`
	QualityGatePassed bool                          `json:"quality_gate_passed"`
}

// LoadSnapshot returns the baseline assumption set with refresh overrides
// applied when the refresh file exists and passed its quality gate. The
// base-case scenario is re-aligned with active macro values afterwards.
func LoadSnapshot(refreshPath string, log zerolog.Logger) Snapshot {
	snap := Default()

	if refreshPath != "" {
		if data, err := os.ReadFile(refreshPath); err == nil {
			var payload RefreshPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				log.Warn().Err(err).Str("path", refreshPath).Msg("Refresh file unreadable, using defaults")
			} else if !payload.QualityGatePassed {
				snap.Meta.RefreshGeneratedAt = payload.GeneratedAt
				snap.Meta.RefreshRejected = true
				log.Warn().Str("path", refreshPath).Msg("Refresh payload failed quality gate, using defaults")
			} else {
				applied := applyOverrides(&snap, payload.Overrides, log)
				snap.Meta.RefreshDataUsed = applied > 0
				snap.Meta.RefreshGeneratedAt = payload.GeneratedAt
				log.Info().Int("overrides_applied", applied).Msg("Applied refresh overrides")
			}
		}
	}

	snap.AlignBaseCase()
	return snap
}

// applyOverrides merges scalar overrides into the snapshot by (group, field)
// key. Unknown keys are logged and skipped rather than failing the run.
func applyOverrides(snap *Snapshot, overrides map[string]map[string]float64, log zerolog.Logger) int {
	applied := 0
	for group, fields := range overrides {
		for field, value := range fields {
			if err := setOverride(snap, group, field, value); err != nil {
				log.Warn().Str("group", group).Str("field", field).Err(err).Msg("Skipping unknown override")
				continue
			}
			applied++
		}
	}
	return applied
}

func setOverride(snap *Snapshot, group, field string, value float64) error {
	switch group {
	case "macro":
		switch field {
		case "consumer_climate_index":
			snap.Macro.ConsumerClimateIndex = value
		case "savings_rate_percent":
			snap.Macro.SavingsRatePercent = value
		case "savings_rate_net_percent":
			snap.Macro.SavingsRateNetPercent = value
		case "inflation_percent":
			snap.Macro.InflationPercent = value
		case "real_retail_growth_percent":
			snap.Macro.RealRetailGrowthPct = value
		default:
			return fmt.Errorf("no macro field %q", field)
		}
	case "labor_legal":
		switch field {
		case "min_wage_2026_eur_per_hour":
			snap.LaborLegal.MinWage2026EURPerHour = value
		case "min_wage_2027_eur_per_hour":
			snap.LaborLegal.MinWage2027EURPerHour = value
		default:
			return fmt.Errorf("no labor_legal field %q", field)
		}
	case "competition_assumptions":
		switch field {
		case "discounter_market_share_percent":
			snap.Competition.DiscounterMarketSharePct = value
		case "top4_market_concentration_percent":
			snap.Competition.Top4MarketConcentrationPct = value
		case "competitor_response_base_percent":
			snap.Competition.CompetitorResponseBasePct = value
		default:
			return fmt.Errorf("no competition field %q", field)
		}
	case "demand_assumptions":
		switch field {
		case "yearly_spend_distribution_mean_eur":
			snap.Demand.YearlySpendMeanEUR = value
		case "membership_fee_sensitivity":
			snap.Demand.MembershipFeeSensitivity = value
		default:
			return fmt.Errorf("no demand field %q", field)
		}
	default:
		return fmt.Errorf("no override group %q", group)
	}
	return nil
}
