// Package ga implements the GeneticAlgorithm driver loop of spec.md §4.8:
// select two parents, cross them with SREX, educate the offspring (local
// search, rolling feasibility-rate bookkeeping, optional penalty-boosted
// repair), add it to the population, and periodically steer the penalty
// manager toward the configured feasibility target.
//
// Grounded directly on original_source/hgs/src/GeneticAlgorithm.cpp's
// run()/educate()/updatePenalties() shape, translated to an explicit
// Go loop that returns a Result, with a stop.Criterion in place of the original's
// callable StoppingCriterion, and log/slog in place of the original's
// Statistics-only observability (no logging library appears anywhere in
// the example pack; log/slog is the modern stdlib answer and is used the
// way tsp/bb.go's internal progress counters are: informational, not
// load-bearing).
package ga

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/crossover"
	"github.com/katalvlaran/hgsvrp/localsearch"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/penalty"
	"github.com/katalvlaran/hgsvrp/population"
	"github.com/katalvlaran/hgsvrp/rng"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/statistics"
	"github.com/katalvlaran/hgsvrp/stop"
	"github.com/katalvlaran/hgsvrp/vrpconfig"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// noFeasibleSentinel is the bestCost value passed to stop.Criterion before
// any feasible solution has been found, matching stop.MaxIdleIterations'
// documented sentinel contract.
const noFeasibleSentinel = measure.Cost(-1)

// Result summarizes one completed run, per spec.md §4.8.
type Result struct {
	Best       *population.Individual
	Iterations int
	Stats      *statistics.Collector
}

// GeneticAlgorithm drives the search loop over one ProblemData instance.
type GeneticAlgorithm struct {
	data       *vrpdata.ProblemData
	cfg        vrpconfig.Config
	penalty    *penalty.Manager
	pop        *population.Population
	neighbours [][]int
	arena      *searchroute.Arena
	rng        *rand.Rand
	log        *slog.Logger

	loadFeas []bool
	timeFeas []bool
}

// New wires together a Population, LocalSearch neighbourhood, and
// PenaltyManager around data per cfg, seeding the RNG from cfg.Seed.
func New(data *vrpdata.ProblemData, cfg vrpconfig.Config, logger *slog.Logger) *GeneticAlgorithm {
	if logger == nil {
		logger = slog.Default()
	}

	pm := penalty.New(penalty.Config{
		InitialCapacityPenalty: 1,
		InitialTimeWarpPenalty: cfg.InitialTimeWarpPenalty,
		TargetFeasible:         cfg.TargetFeasible,
		PenaltyIncrease:        cfg.PenaltyIncrease,
		PenaltyDecrease:        cfg.PenaltyDecrease,
	})
	neighbours := localsearch.ComputeNeighbours(data, cfg.NbGranular, cfg.WeightWaitTime, cfg.WeightTimeWarp)
	popCfg := population.Config{
		MinPopSize: cfg.MinPopSize, GenerationSize: cfg.GenerationSize,
		NbElite: cfg.NbElite, NbClose: cfg.NbClose,
		LbDiversity: cfg.LbDiversity, UbDiversity: cfg.UbDiversity, MaxSelectTries: 5,
	}

	return &GeneticAlgorithm{
		data:       data,
		cfg:        cfg,
		penalty:    pm,
		pop:        population.New(data, currentCostEvaluator(pm), popCfg),
		neighbours: neighbours,
		arena:      searchroute.NewArena(data, data.NumVehicles()),
		rng:        rng.New(cfg.Seed),
		log:        logger,
	}
}

// currentCostEvaluator snapshots the CostEvaluator reflecting pm's current
// coefficients; CostEvaluator is an immutable value, so a fresh one must be
// read whenever the Manager's coefficients change.
func currentCostEvaluator(pm *penalty.Manager) costeval.CostEvaluator {
	return costeval.New(pm.CapacityPenalty(), pm.TimeWarpPenalty(), 0)
}

// Seed adds each of initialSolutions to the population, pricing and routing
// it into the feasible or infeasible sub-population.
func (g *GeneticAlgorithm) Seed(initialSolutions []*solution.Solution) {
	for _, sol := range initialSolutions {
		g.pop.Add(sol)
	}
}

// Run executes the loop of spec.md §4.8 until criterion signals stop or ctx
// is canceled, returning the best feasible solution found. ctx is checked
// once per iteration boundary, never mid-iteration, per spec.md §5's
// cooperative-cancellation contract.
func (g *GeneticAlgorithm) Run(ctx context.Context, criterion stop.Criterion) Result {
	stats := statistics.NewCollector()
	iter := 0

	for ctx.Err() == nil && !criterion.Stop(g.bestCostOrSentinel()) {
		iter++

		parent1, parent2 := g.pop.SelectParents(g.rng)
		if parent1 == nil || parent2 == nil {
			break // fewer than 2 individuals to draw from; nothing to cross yet
		}

		ce := currentCostEvaluator(g.penalty)
		child, err := crossover.SREX(g.data, ce, parent1.Sol, parent2.Sol, g.rng)
		if err != nil {
			g.log.Warn("crossover failed, skipping generation", "error", err, "iter", iter)
			continue
		}

		g.educate(child)

		if iter%g.cfg.NbPenaltyManagement == 0 {
			g.updatePenalties()
		}

		stats.CollectFrom(g.pop)
	}

	g.log.Info("search finished", "iterations", iter, "bestCost", g.bestCostOrSentinel())
	return Result{Best: g.pop.BestFound(), Iterations: iter, Stats: stats}
}

// educate runs local search on child, adds it to the population, records
// feasibility bits, and — with probability cfg.RepairProbability — retries
// under a penalty booster if child is still infeasible, per
// GeneticAlgorithm.cpp's educate().
func (g *GeneticAlgorithm) educate(child *solution.Solution) {
	ce := currentCostEvaluator(g.penalty)
	searched, ok := g.search(child, ce)
	if !ok {
		return
	}

	ind := g.pop.Add(searched)
	g.loadFeas = append(g.loadFeas, !searched.HasExcessLoad())
	g.timeFeas = append(g.timeFeas, !searched.HasTimeWarp())

	if ind.Feasible || rng.Intn(g.rng, 100) >= g.cfg.RepairProbability {
		return
	}

	booster := g.penalty.Acquire(g.cfg.RepairBooster)
	defer booster.Release()

	repaired, ok := g.search(searched, currentCostEvaluator(g.penalty))
	if !ok || !repaired.IsFeasible() {
		return
	}
	g.pop.Add(repaired)
	g.loadFeas = append(g.loadFeas, !repaired.HasExcessLoad())
	g.timeFeas = append(g.timeFeas, !repaired.HasTimeWarp())
}

// search loads sol into the shared arena and runs the node-operator pass to
// convergence under ce; the route-operator intensification pass only runs
// if cfg.ShouldIntensify and sol is already feasible and strictly better
// than the best-found solution, per GeneticAlgorithm.cpp's educate().
func (g *GeneticAlgorithm) search(sol *solution.Solution, ce costeval.CostEvaluator) (*solution.Solution, bool) {
	ls := localsearch.New(g.data, ce, g.neighbours)
	g.arena.LoadSolution(sol)

	best := g.pop.BestFound()
	if g.cfg.ShouldIntensify && sol.IsFeasible() && (best == nil || ce.PenalisedCost(g.data, sol) < best.Cost) {
		ls.Run(g.arena, g.rng)
	} else {
		ls.SearchOnly(g.arena, g.rng)
	}

	result, err := g.arena.ExportSolution()
	if err != nil {
		g.log.Warn("local search produced an invalid solution, discarding", "error", err)
		return nil, false
	}
	return result, true
}

// updatePenalties folds the rolling load/time feasibility windows into the
// PenaltyManager and clears them, per GeneticAlgorithm.cpp's
// updatePenalties().
func (g *GeneticAlgorithm) updatePenalties() {
	if len(g.loadFeas) > 0 {
		g.penalty.UpdateCapacityPenalty(feasRate(g.loadFeas))
		g.loadFeas = g.loadFeas[:0]
	}
	if len(g.timeFeas) > 0 {
		g.penalty.UpdateTimeWarpPenalty(feasRate(g.timeFeas))
		g.timeFeas = g.timeFeas[:0]
	}
}

func feasRate(bits []bool) float64 {
	count := 0
	for _, b := range bits {
		if b {
			count++
		}
	}
	return float64(count) / float64(len(bits))
}

func (g *GeneticAlgorithm) bestCostOrSentinel() measure.Cost {
	best := g.pop.BestFound()
	if best == nil {
		return noFeasibleSentinel
	}
	return best.Cost
}
