// Command hgsvrp reads a VRPLIB instance, runs the Hybrid Genetic Search
// engine against it, and writes the best solution found in VRPLIB output
// format, per spec.md §6's external interface.
//
// Wiring mirrors the run()-returns-error idiom used by the example pack's
// own cmd/server entrypoints: main() delegates to run(), which owns flag
// parsing, file I/O, and the search loop, and returns a single error for
// main to report and exit on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/katalvlaran/hgsvrp/ga"
	"github.com/katalvlaran/hgsvrp/rng"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/statistics"
	"github.com/katalvlaran/hgsvrp/stop"
	"github.com/katalvlaran/hgsvrp/vrpconfig"
	"github.com/katalvlaran/hgsvrp/vrpdata"
	"github.com/katalvlaran/hgsvrp/vrplib"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "hgsvrp:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("hgsvrp", flag.ContinueOnError)
	instancePath := fs.String("instance", "", "path to a VRPLIB-format instance file (required)")
	outPath := fs.String("out", "", "path to write the best solution to (default: stdout)")
	statsPath := fs.String("stats", "", "optional path to write per-iteration statistics as CSV")
	seed := fs.Int64("seed", 0, "random seed")
	nbIter := fs.Int("nb-iter", 0, "iterations without improvement before stopping (0 keeps the default)")
	timeLimit := fs.Duration("time-limit", 0, "wall-clock search budget, e.g. 30s (0 means unlimited)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *instancePath == "" {
		return fmt.Errorf("hgsvrp: -instance is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	instanceFile, err := os.Open(*instancePath)
	if err != nil {
		return fmt.Errorf("opening instance: %w", err)
	}
	defer instanceFile.Close()

	data, err := vrplib.ReadInstance(instanceFile)
	if err != nil {
		return fmt.Errorf("parsing instance: %w", err)
	}

	opts := []vrpconfig.Option{vrpconfig.WithSeed(*seed)}
	if *nbIter > 0 {
		opts = append(opts, vrpconfig.WithNbIter(*nbIter))
	}
	if *timeLimit > 0 {
		opts = append(opts, vrpconfig.WithTimeLimit(*timeLimit))
	}
	cfg := vrpconfig.New(opts...)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	criterion, err := buildStopCriterion(cfg)
	if err != nil {
		return fmt.Errorf("building stop criterion: %w", err)
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	algo := ga.New(data, cfg, logger)
	algo.Seed(initialSolutions(data, cfg.GenerationSize, rng.New(cfg.Seed)))

	start := time.Now()
	result := algo.Run(ctx, criterion)
	elapsed := time.Since(start)

	if result.Best == nil {
		return fmt.Errorf("hgsvrp: no feasible solution found after %d iterations", result.Iterations)
	}

	if err := writeSolution(*outPath, result.Best.Sol, elapsed); err != nil {
		return err
	}
	if *statsPath != "" {
		if err := writeStats(*statsPath, result.Stats); err != nil {
			return err
		}
	}

	logger.Info("done", "iterations", result.Iterations, "bestCost", result.Best.Cost, "elapsed", elapsed)
	return nil
}

func buildStopCriterion(cfg vrpconfig.Config) (stop.Criterion, error) {
	idle, err := stop.NewMaxIdleIterations(cfg.NbIter)
	if err != nil {
		return nil, err
	}
	if cfg.TimeLimit <= 0 {
		return idle, nil
	}
	runtime, err := stop.NewMaxRuntime(cfg.TimeLimit)
	if err != nil {
		return nil, err
	}
	return stop.Any{idle, runtime}, nil
}

func writeSolution(path string, sol *solution.Solution, elapsed time.Duration) error {
	if path == "" {
		return vrplib.WriteSolution(os.Stdout, sol, elapsed)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating solution output: %w", err)
	}
	defer f.Close()
	return vrplib.WriteSolution(f, sol, elapsed)
}

func writeStats(path string, stats *statistics.Collector) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating stats output: %w", err)
	}
	defer f.Close()
	return stats.WriteCSV(f)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initialSolutions builds count random giant-tour splits of the required
// clients across available vehicles, the standard HGS bootstrap: a random
// permutation partitioned into as many chunks as there are vehicles, left
// for local search and the penalty manager to repair over subsequent
// generations rather than fixed up here.
func initialSolutions(data *vrpdata.ProblemData, count int, r *rand.Rand) []*solution.Solution {
	clients := make([]int, 0, data.NumClients())
	for c := 0; c < data.NumClients(); c++ {
		if data.Client(c).Required {
			clients = append(clients, c)
		}
	}
	if len(clients) == 0 {
		return nil
	}

	numVehicles := data.NumVehicles()
	solutions := make([]*solution.Solution, 0, count)
	for i := 0; i < count; i++ {
		perm := append([]int(nil), clients...)
		rng.ShuffleInts(perm, r)

		numRoutes := numVehicles
		if numRoutes > len(perm) {
			numRoutes = len(perm)
		}
		specs := chunkIntoRoutes(data, perm, numRoutes)
		if len(specs) == 0 {
			continue
		}
		sol, err := solution.NewSolution(data, specs)
		if err != nil {
			continue // an unlucky draw exceeded some vehicle type's availability; try the next permutation
		}
		solutions = append(solutions, sol)
	}
	return solutions
}

// chunkIntoRoutes splits perm into numRoutes contiguous, roughly-equal
// chunks and assigns each to the next vehicle type with remaining capacity,
// in declared order.
func chunkIntoRoutes(data *vrpdata.ProblemData, perm []int, numRoutes int) []solution.RouteSpec {
	if numRoutes == 0 {
		return nil
	}
	base := len(perm) / numRoutes
	extra := len(perm) % numRoutes

	specs := make([]solution.RouteSpec, 0, numRoutes)
	vt, vtUsed := 0, 0
	pos := 0
	for i := 0; i < numRoutes; i++ {
		size := base
		if i < extra {
			size++
		}
		if size == 0 {
			continue
		}
		for vt < data.NumVehicleTypes() && vtUsed >= data.VehicleType(vt).NumAvailable {
			vt++
			vtUsed = 0
		}
		if vt >= data.NumVehicleTypes() {
			break // ran out of vehicles; leftover clients are dropped from this draw
		}
		specs = append(specs, solution.RouteSpec{VehicleType: vt, Visits: perm[pos : pos+size]})
		vtUsed++
		pos += size
	}
	return specs
}
