// Package analytics aggregates raw replication rows into per-scenario
// summary statistics and the cross-scenario decision matrix.
package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

// percentile computes the q-quantile with linear interpolation between order
// statistics at index (n-1)*q. The input must be sorted ascending.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// cvar5 is the mean of all observations at or below the 5th percentile. When
// no observation qualifies it falls back to the percentile itself.
func cvar5(sorted []float64) float64 {
	q05 := percentile(sorted, 0.05)
	var sum float64
	var count int
	for _, v := range sorted {
		if v > q05 {
			break
		}
		sum += v
		count++
	}
	if count == 0 {
		return q05
	}
	return sum / float64(count)
}

type groupAccumulator struct {
	scenario      string
	strategy      string
	contributions []float64
	adoptions     []float64
	breakEvens    []float64
	penalties     []float64
}

// Summarize reduces replication rows into one summary per (scenario,
// strategy) pair, preserving first-appearance order.
func Summarize(rows []domain.ReplicationRow, snap config.Snapshot) []domain.ScenarioStrategySummary {
	hurdle := snap.Financial.ContributionHurdleEUR

	groups := make(map[[2]string]*groupAccumulator)
	var order [][2]string
	for _, row := range rows {
		key := [2]string{row.Scenario, row.Strategy}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAccumulator{scenario: row.Scenario, strategy: row.Strategy}
			groups[key] = acc
			order = append(order, key)
		}
		acc.contributions = append(acc.contributions, row.TotalContributionEUR)
		acc.adoptions = append(acc.adoptions, row.AdoptionRate)
		acc.breakEvens = append(acc.breakEvens, row.BreakEvenMonthlySpendEUR)
		acc.penalties = append(acc.penalties, row.CompetitorPenaltyPercent)
	}

	summaries := make([]domain.ScenarioStrategySummary, 0, len(order))
	for _, key := range order {
		acc := groups[key]

		contribSorted := append([]float64(nil), acc.contributions...)
		sort.Float64s(contribSorted)
		adoptSorted := append([]float64(nil), acc.adoptions...)
		sort.Float64s(adoptSorted)

		var losses, hurdleHits int
		for _, c := range acc.contributions {
			if c < 0 {
				losses++
			}
			if c >= hurdle {
				hurdleHits++
			}
		}
		n := float64(len(acc.contributions))

		summaries = append(summaries, domain.ScenarioStrategySummary{
			Scenario:                 acc.scenario,
			Strategy:                 acc.strategy,
			MeanContributionEUR:      stat.Mean(acc.contributions, nil),
			StdContributionEUR:       stat.StdDev(acc.contributions, nil),
			P10ContributionEUR:       percentile(contribSorted, 0.10),
			P50ContributionEUR:       percentile(contribSorted, 0.50),
			P90ContributionEUR:       percentile(contribSorted, 0.90),
			CVaR5ContributionEUR:     cvar5(contribSorted),
			ProbLoss:                 float64(losses) / n,
			ProbMeetHurdle:           float64(hurdleHits) / n,
			MeanAdoptionRate:         stat.Mean(acc.adoptions, nil),
			AdoptionCILow:            percentile(adoptSorted, 0.10),
			AdoptionCIHigh:           percentile(adoptSorted, 0.90),
			MeanCompetitorPenaltyPct: stat.Mean(acc.penalties, nil),
			MeanBreakEvenMonthlyEUR:  stat.Mean(acc.breakEvens, nil),
		})
	}
	return summaries
}
