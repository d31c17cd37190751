package valuation

import (
	"math"
	"sort"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/simulation"
)

// BreakEvenGridRow is one fee/discount cell of the board sensitivity grid.
type BreakEvenGridRow struct {
	MembershipFeeEUR         float64 `json:"membership_fee_eur"`
	BulkDiscount             float64 `json:"bulk_discount"`
	BreakEvenMonthlySpendEUR float64 `json:"break_even_monthly_spend_eur"`
}

// TornadoRow is one driver of the one-at-a-time break-even sensitivity.
type TornadoRow struct {
	Driver                  string  `json:"driver"`
	BaseMonthlyBreakEvenEUR float64 `json:"base_monthly_break_even_eur"`
	LowCaseDeltaEUR         float64 `json:"low_case_delta_eur"`
	HighCaseDeltaEUR        float64 `json:"high_case_delta_eur"`
	SwingAbsEUR             float64 `json:"swing_abs_eur"`
}

var gridFees = []float64{20, 35, 50, 65, 80, 95}

const (
	gridDiscountMin   = 0.04
	gridDiscountMax   = 0.16
	gridDiscountSteps = 20
)

// BreakEvenGrid sweeps membership fee against bulk discount and reports the
// break-even monthly spend at the snapshot inflation rate.
func BreakEvenGrid(snap config.Snapshot) []BreakEvenGridRow {
	inflation := snap.Macro.InflationPercent / 100.0

	rows := make([]BreakEvenGridRow, 0, len(gridFees)*gridDiscountSteps)
	step := (gridDiscountMax - gridDiscountMin) / float64(gridDiscountSteps-1)
	for _, fee := range gridFees {
		for i := 0; i < gridDiscountSteps; i++ {
			discount := gridDiscountMin + float64(i)*step
			be := simulation.MembershipBreakEven(fee, discount, inflation)
			rows = append(rows, BreakEvenGridRow{
				MembershipFeeEUR:         fee,
				BulkDiscount:             discount,
				BreakEvenMonthlySpendEUR: be.MonthlySpendEUR,
			})
		}
	}
	return rows
}

// TornadoSensitivity perturbs each break-even driver by +/-15% around the
// given strategy, holding the others at base, and returns rows sorted by
// absolute swing ascending.
func TornadoSensitivity(snap config.Snapshot, strategy domain.Strategy) []TornadoRow {
	inflation := snap.Macro.InflationPercent / 100.0
	baseFee := strategy.EffectiveFee()
	baseDiscount := snap.Demand.BulkDiscountMode
	baseBE := simulation.MembershipBreakEven(baseFee, baseDiscount, inflation).MonthlySpendEUR

	eval := func(fee, discount, infl float64) float64 {
		return simulation.MembershipBreakEven(fee, discount, infl).MonthlySpendEUR
	}

	drivers := []struct {
		name string
		low  float64
		high float64
	}{
		{"membership_fee", eval(baseFee*0.85, baseDiscount, inflation), eval(baseFee*1.15, baseDiscount, inflation)},
		{"bulk_discount", eval(baseFee, baseDiscount*0.85, inflation), eval(baseFee, baseDiscount*1.15, inflation)},
		{"inflation", eval(baseFee, baseDiscount, inflation*0.85), eval(baseFee, baseDiscount, inflation*1.15)},
	}

	rows := make([]TornadoRow, 0, len(drivers))
	for _, d := range drivers {
		lowDelta := d.low - baseBE
		highDelta := d.high - baseBE
		rows = append(rows, TornadoRow{
			Driver:                  d.name,
			BaseMonthlyBreakEvenEUR: baseBE,
			LowCaseDeltaEUR:         lowDelta,
			HighCaseDeltaEUR:        highDelta,
			SwingAbsEUR:             math.Max(math.Abs(lowDelta), math.Abs(highDelta)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SwingAbsEUR < rows[j].SwingAbsEUR })
	return rows
}
