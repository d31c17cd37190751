package simulation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ihelfrich/GermanCostCo/internal/config"
	"github.com/ihelfrich/GermanCostCo/internal/domain"
	"github.com/ihelfrich/GermanCostCo/internal/modules/psychology"
)

// Engine drives the draw generator and strategy evaluator across every
// (scenario, strategy, replication) combination with deterministic seeding.
type Engine struct {
	snap      config.Snapshot
	evaluator *Evaluator
	log       zerolog.Logger
}

// NewEngine creates a replication engine for one assumption snapshot.
func NewEngine(snap config.Snapshot, consumer *psychology.Consumer, log zerolog.Logger) *Engine {
	return &Engine{
		snap:      snap,
		evaluator: NewEvaluator(snap, consumer),
		log:       log.With().Str("component", "replication_engine").Logger(),
	}
}

// Run executes all replications and returns the flat outcome table, ordered
// scenario-major, then replication, then strategy. Identical configuration
// and seed produce an identical table; the optional worker pool preserves
// that property because every (scenario, replication) unit owns an
// independently seeded generator and writes into a fixed slot.
func (e *Engine) Run(ctx context.Context) ([]domain.ReplicationRow, error) {
	sim := e.snap.Simulation
	scenarios := e.snap.Scenarios
	strategies := e.snap.Strategies

	nUnits := len(scenarios) * sim.NReplications
	rows := make([]domain.ReplicationRow, nUnits*len(strategies))

	e.log.Info().
		Int("scenarios", len(scenarios)).
		Int("strategies", len(strategies)).
		Int("replications", sim.NReplications).
		Int("households", sim.NHouseholds).
		Int64("seed", sim.RandomSeed).
		Msg("Running replication engine")

	runUnit := func(scenarioIdx, rep int) {
		src := NewSource(sim.RandomSeed, scenarioIdx, rep)
		scenario := scenarios[scenarioIdx]
		draws := GenerateDraws(e.snap.Demand, scenario, sim.NHouseholds, src)

		shockDist := distuv.Normal{Mu: 0, Sigma: e.snap.Competition.ResponseVolatilityPct / 100.0, Src: src}

		unit := scenarioIdx*sim.NReplications + rep
		for stratIdx, strategy := range strategies {
			shock := shockDist.Rand()
			row := e.evaluator.Evaluate(scenario, strategy, draws, shock)
			row.ReplicationID = rep
			rows[unit*len(strategies)+stratIdx] = row
		}
	}

	if sim.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(sim.Workers)
		for scenarioIdx := range scenarios {
			for rep := 0; rep < sim.NReplications; rep++ {
				scenarioIdx, rep := scenarioIdx, rep
				g.Go(func() error {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
					runUnit(scenarioIdx, rep)
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("replication engine aborted: %w", err)
		}
	} else {
		for scenarioIdx := range scenarios {
			for rep := 0; rep < sim.NReplications; rep++ {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("replication engine aborted: %w", err)
				}
				runUnit(scenarioIdx, rep)
			}
		}
	}

	e.log.Info().Int("rows", len(rows)).Msg("Replication engine finished")
	return rows, nil
}
