// Package crossover implements SREX (Selective Route Exchange), per
// spec.md §4.6: select a contiguous range of routes from each parent
// (ordered by polar angle around the instance centroid) that minimizes the
// symmetric difference of the client sets covered, splice them into two
// offspring, and greedily repair unplanned clients.
//
// Grounded on tsp/matching.go's greedy-pairing structure (both are "match
// elements between two sets, greedily repair the rest") and on
// tsp/approx.go's pipeline-of-named-stages documentation style.
package crossover

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// infiniteCost stands in for "no candidate found yet" during greedy repair.
const infiniteCost = measure.Cost(math.MaxInt64)

// ErrEmptyParent indicates a parent solution has no routes to select from.
var ErrEmptyParent = errors.New("crossover: parent solution has no routes")

// angleSortedRoutes returns sol's route indices sorted by ascending polar
// angle of each route's client centroid around the instance centroid.
func angleSortedRoutes(data *vrpdata.ProblemData, sol *solution.Solution) []int {
	cx, cy := data.Centroid()
	routes := sol.Routes()
	idx := make([]int, len(routes))
	angle := make([]float64, len(routes))
	for i, r := range routes {
		idx[i] = i
		angle[i] = math.Atan2(float64(r.CentroidY-cy), float64(r.CentroidX-cx))
	}
	sort.Slice(idx, func(a, b int) bool { return angle[idx[a]] < angle[idx[b]] })
	return idx
}

// clientSet returns the set of client indices covered by the routes at the
// given (angle-sorted-space) positions [start, start+k) of sol, wrapping
// modulo the number of routes.
func clientSet(sol *solution.Solution, order []int, start, k int) map[int]bool {
	set := make(map[int]bool)
	n := len(order)
	for i := 0; i < k; i++ {
		r := sol.Routes()[order[(start+i)%n]]
		for _, c := range r.Visits {
			set[c] = true
		}
	}
	return set
}

func symmetricDiffSize(a, b map[int]bool) int {
	diff := 0
	for c := range a {
		if !b[c] {
			diff++
		}
	}
	for c := range b {
		if !a[c] {
			diff++
		}
	}
	return diff
}

// SREX produces one offspring solution from two parents, per spec.md §4.6,
// returning the cheaper of its two candidate offspring under ce.
func SREX(data *vrpdata.ProblemData, ce costeval.CostEvaluator, parentA, parentB *solution.Solution, r *rand.Rand) (*solution.Solution, error) {
	orderA := angleSortedRoutes(data, parentA)
	orderB := angleSortedRoutes(data, parentB)
	if len(orderA) == 0 || len(orderB) == 0 {
		return nil, ErrEmptyParent
	}

	k := 1
	if m := minInt(len(orderA), len(orderB)); m > 1 {
		k = 1 + r.Intn(m)
	}
	startA := r.Intn(len(orderA))
	startB := r.Intn(len(orderB))

	// Step 3: hill-climb the (startA, startB) choice to minimize the
	// symmetric difference of covered client sets, bounded to avoid
	// looping on a plateau.
	bestDiff := symmetricDiffSize(clientSet(parentA, orderA, startA, k), clientSet(parentB, orderB, startB, k))
	for iter := 0; iter < 2*(len(orderA)+len(orderB)); iter++ {
		improved := false
		for _, cand := range []struct{ da, db int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			na := mod(startA+cand.da, len(orderA))
			nb := mod(startB+cand.db, len(orderB))
			d := symmetricDiffSize(clientSet(parentA, orderA, na, k), clientSet(parentB, orderB, nb, k))
			if d < bestDiff {
				bestDiff, startA, startB = d, na, nb
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	selectedA := make(map[int]bool)
	for i := 0; i < k; i++ {
		selectedA[orderA[(startA+i)%len(orderA)]] = true
	}
	bSelectedRoutes := make([][]int, 0, k)
	bSelectedClients := make(map[int]bool)
	for i := 0; i < k; i++ {
		visits := parentB.Routes()[orderB[(startB+i)%len(orderB)]].Visits
		bSelectedRoutes = append(bSelectedRoutes, append([]int(nil), visits...))
		for _, c := range visits {
			bSelectedClients[c] = true
		}
	}

	offspring1 := nonEmptySpecs(buildOffspring1(data, parentA, selectedA, bSelectedRoutes, bSelectedClients))
	offspring2 := nonEmptySpecs(buildOffspring2(data, parentA, selectedA, bSelectedClients))

	sol1, err1 := repairAndBuild(data, ce, offspring1)
	sol2, err2 := repairAndBuild(data, ce, offspring2)

	switch {
	case err1 != nil && err2 != nil:
		return nil, err1
	case err1 != nil:
		return sol2, nil
	case err2 != nil:
		return sol1, nil
	}

	if ce.PenalisedCost(data, sol1) <= ce.PenalisedCost(data, sol2) {
		return sol1, nil
	}
	return sol2, nil
}

// buildOffspring1 replaces A's selected routes with B's selected routes'
// visit sequences; A-clients that were only in the replaced A-routes and
// are not covered by B's selected routes become unplanned (handled by
// repair).
func buildOffspring1(data *vrpdata.ProblemData, parentA *solution.Solution, selectedA map[int]bool, bRoutes [][]int, bClients map[int]bool) []solution.RouteSpec {
	specs := make([]solution.RouteSpec, 0, len(parentA.Routes()))
	bi := 0
	for i, r := range parentA.Routes() {
		if selectedA[i] {
			if bi < len(bRoutes) {
				specs = append(specs, solution.RouteSpec{VehicleType: r.VehicleType, StartDepot: r.StartDepot, EndDepot: r.EndDepot, Visits: append([]int(nil), bRoutes[bi]...)})
				bi++
			}
			continue
		}
		visits := make([]int, 0, len(r.Visits))
		for _, c := range r.Visits {
			if !bClients[c] {
				visits = append(visits, c)
			}
		}
		specs = append(specs, solution.RouteSpec{VehicleType: r.VehicleType, StartDepot: r.StartDepot, EndDepot: r.EndDepot, Visits: visits})
	}
	return specs
}

// buildOffspring2 keeps A's route assignment for clients in the
// intersection of A-selected and B-selected, and keeps the rest of A
// otherwise unchanged, except A-clients not in B-selected become unplanned.
func buildOffspring2(data *vrpdata.ProblemData, parentA *solution.Solution, selectedA map[int]bool, bClients map[int]bool) []solution.RouteSpec {
	specs := make([]solution.RouteSpec, 0, len(parentA.Routes()))
	for i, r := range parentA.Routes() {
		if !selectedA[i] {
			specs = append(specs, solution.RouteSpec{VehicleType: r.VehicleType, StartDepot: r.StartDepot, EndDepot: r.EndDepot, Visits: append([]int(nil), r.Visits...)})
			continue
		}
		visits := make([]int, 0, len(r.Visits))
		for _, c := range r.Visits {
			if bClients[c] {
				visits = append(visits, c)
			}
		}
		specs = append(specs, solution.RouteSpec{VehicleType: r.VehicleType, StartDepot: r.StartDepot, EndDepot: r.EndDepot, Visits: visits})
	}
	return specs
}

// repairAndBuild finds every required client missing from specs and
// greedily inserts each at the position (route, index) minimizing
// penalised-cost delta, ties broken by lowest route index then lowest
// position, per spec.md §4.6 step 5, then builds the final Solution.
func repairAndBuild(data *vrpdata.ProblemData, ce costeval.CostEvaluator, specs []solution.RouteSpec) (*solution.Solution, error) {
	placed := make(map[int]bool)
	for _, s := range specs {
		for _, c := range s.Visits {
			placed[c] = true
		}
	}
	var unplaced []int
	for c := 0; c < data.NumClients(); c++ {
		if data.Client(c).Required && !placed[c] {
			unplaced = append(unplaced, c)
		}
	}

	for _, c := range unplaced {
		bestRoute, bestPos, bestDelta := -1, -1, infiniteCost
		for ri := range specs {
			for pos := 0; pos <= len(specs[ri].Visits); pos++ {
				trial := append([]int(nil), specs[ri].Visits[:pos]...)
				trial = append(trial, c)
				trial = append(trial, specs[ri].Visits[pos:]...)
				saved := specs[ri].Visits
				specs[ri].Visits = trial
				candidate, err := solution.NewSolution(data, specs)
				delta := infiniteCost
				if err == nil {
					delta = ce.PenalisedCost(data, candidate)
				}
				specs[ri].Visits = saved
				if delta < bestDelta {
					bestDelta, bestRoute, bestPos = delta, ri, pos
				}
			}
		}
		if bestRoute < 0 {
			continue // no legal insertion found (shouldn't happen with enough routes)
		}
		trial := append([]int(nil), specs[bestRoute].Visits[:bestPos]...)
		trial = append(trial, c)
		trial = append(trial, specs[bestRoute].Visits[bestPos:]...)
		specs[bestRoute].Visits = trial
	}

	return solution.NewSolution(data, specs)
}

// nonEmptySpecs drops zero-visit route specs: solution.NewSolution rejects
// empty routes, and an empty route is simply "this vehicle is unused".
func nonEmptySpecs(specs []solution.RouteSpec) []solution.RouteSpec {
	out := make([]solution.RouteSpec, 0, len(specs))
	for _, s := range specs {
		if len(s.Visits) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
