// Package simulation contains the Monte Carlo core: per-household draw
// generation, strategy evaluation, and the replication engine that drives
// them across every (scenario, strategy, replication) combination.
package simulation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
)

// latentNoiseSigma is the standard deviation of the per-household latent
// choice noise.
const latentNoiseSigma = 0.06

// DrawSet holds the per-household random samples for one (scenario,
// replication) pair. The same set is shared across strategies within the pair.
type DrawSet struct {
	Spends    []float64 // Lognormal yearly spend (EUR)
	Discounts []float64 // Triangular bulk discount, shifted by the scenario
	Noise     []float64 // Normal latent-choice noise
}

// NewSource builds the deterministic random source for one (scenario,
// replication) unit. Seeds are spaced so scenarios never share streams.
func NewSource(baseSeed int64, scenarioIdx, replication int) *rand.PCG {
	seed := uint64(baseSeed + int64(scenarioIdx)*10_000 + int64(replication))
	return rand.NewPCG(seed, seed)
}

// GenerateDraws produces household spend, discount, and latent-noise draws
// for one scenario. Pure function of the demand assumptions, the scenario's
// discount shift, and the RNG state.
//
// The lognormal log-space mean is derived so the arithmetic mean of the
// distribution matches the configured target. The scenario discount shift is
// applied with ordering guards so min < mode < max holds even after shifting.
func GenerateDraws(demand config.Demand, scenario domain.MacroScenario, n int, src rand.Source) DrawSet {
	sigma := demand.YearlySpendSigma
	mu := math.Log(demand.YearlySpendMeanEUR) - sigma*sigma/2.0
	spendDist := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: src}

	dMin := math.Max(0.02, demand.BulkDiscountMin+scenario.DiscountShift)
	dMode := math.Max(dMin+0.001, demand.BulkDiscountMode+scenario.DiscountShift)
	dMax := math.Max(dMode+0.001, demand.BulkDiscountMax+scenario.DiscountShift)
	discountDist := distuv.NewTriangle(dMin, dMax, dMode, src)

	noiseDist := distuv.Normal{Mu: 0, Sigma: latentNoiseSigma, Src: src}

	draws := DrawSet{
		Spends:    make([]float64, n),
		Discounts: make([]float64, n),
		Noise:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		draws.Spends[i] = spendDist.Rand()
	}
	for i := 0; i < n; i++ {
		draws.Discounts[i] = discountDist.Rand()
	}
	for i := 0; i < n; i++ {
		draws.Noise[i] = noiseDist.Rand()
	}
	return draws
}
