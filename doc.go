// Package hgsvrp is a Hybrid Genetic Search engine for rich Vehicle
// Routing Problems: capacitated, multi-depot, multi-vehicle-type routing
// with time windows, optional clients, and mutually exclusive client
// groups.
//
// What is hgsvrp?
//
//	A population-based metaheuristic that alternates genetic search
//	(SREX crossover over two parent solutions) with granular local search
//	(node and route operators guided by a penalty-managed cost evaluator),
//	converging toward low-cost, feasible route plans without ever requiring
//	every intermediate solution to be feasible.
//
// Design
//
//   - Immutable problem data    — a ProblemData is built once and shared
//     read-only across an entire search, so no subsystem needs locks.
//   - Penalty-driven feasibility — capacity and time-warp violations are
//     priced, not rejected, letting the search walk through infeasible
//     territory on its way to a better feasible solution.
//   - Granular neighbourhoods   — node operators only consider a client's
//     nearest few neighbours, keeping local search fast on large instances.
//
// Everything is organized under flat, root-level subpackages:
//
//	measure/     — dimensioned numeric types (Distance, Duration, Load, Cost)
//	vrpdata/     — immutable ProblemData: clients, depots, vehicle types
//	solution/    — a validated set of routes over a ProblemData
//	costeval/    — penalized-cost pricing of a Solution or a candidate move
//	penalty/     — adaptive capacity/time-warp penalty coefficients
//	searchroute/ — mutable route arena local search operates over
//	localsearch/ — granular node/route operator search loop
//	operators/   — the node and route operators themselves
//	population/  — feasible/infeasible sub-populations, survivor selection
//	crossover/   — selective route exchange (SREX)
//	ga/          — the genetic algorithm driver loop
//	stop/        — stopping criteria (iterations, runtime, idle iterations)
//	statistics/  — per-iteration population statistics, exported as CSV
//	vrpconfig/   — search tunables, functional-options configuration
//	vrplib/      — VRPLIB instance/solution text format
//	cmd/hgsvrp/  — CLI entrypoint
//
//	go get github.com/katalvlaran/hgsvrp
package hgsvrp
