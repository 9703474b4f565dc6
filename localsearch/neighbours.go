// Package localsearch implements the granular neighbourhood local search:
// a node-operator pass ("search") and a route-operator pass ("intensify"),
// both driven by don't-look bits so a stable pass over most of a large
// instance costs little.
//
// Grounded on tsp/bb.go's precomputed per-vertex neighbour order (the
// branching order idea reused directly as the granular neighbour list) and
// on tsp/two_opt.go / tsp/three_opt.go for the shuffle-then-scan-until-no-
// improvement loop shape.
package localsearch

import (
	"sort"

	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// ComputeNeighbours precomputes, for every client, the nbGranular closest
// other clients under the weighted proximity measure of spec.md §4.4:
//
//	prox(i,j) = dist(i,j) + wWait·max(0, waitTime) + wWarp·max(0, timeWarp)
//
// evaluated in both directions and taking the minimum. waitTime/timeWarp
// are approximated from each client's time window bounds (the actual
// values depend on a route's runtime state, which isn't available at
// precompute time; this mirrors the "static proximity" idea used to seed
// tsp/bb.go's branching order).
func ComputeNeighbours(data *vrpdata.ProblemData, nbGranular int, wWait, wWarp float64) [][]int {
	n := data.NumClients()
	neighbours := make([][]int, n)
	if n == 0 {
		return neighbours
	}

	prox := make([][]float64, n)
	for i := 0; i < n; i++ {
		prox[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			prox[i][j] = minProx(data, i, j, wWait, wWarp)
		}
	}

	for i := 0; i < n; i++ {
		idx := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				idx = append(idx, j)
			}
		}
		sort.Slice(idx, func(a, b int) bool { return prox[i][idx[a]] < prox[i][idx[b]] })
		limit := nbGranular
		if limit > len(idx) {
			limit = len(idx)
		}
		neighbours[i] = append([]int(nil), idx[:limit]...)
	}
	return neighbours
}

func minProx(data *vrpdata.ProblemData, i, j int, wWait, wWarp float64) float64 {
	fwd := oneWayProx(data, i, j, wWait, wWarp)
	bwd := oneWayProx(data, j, i, wWait, wWarp)
	if bwd < fwd {
		return bwd
	}
	return fwd
}

func oneWayProx(data *vrpdata.ProblemData, i, j int, wWait, wWarp float64) float64 {
	numDepots := data.NumDepots()
	locI, locJ := numDepots+i, numDepots+j
	dist := float64(data.Dist(locI, locJ))
	dur := data.Dur(locI, locJ)

	ci, cj := data.Client(i), data.Client(j)
	arrival := ci.TwEarly.Add(dur)

	wait := 0.0
	if w := cj.TwEarly.Sub(arrival); w > 0 {
		wait = float64(w)
	}
	warp := 0.0
	if w := arrival.Sub(cj.TwLate); w > 0 {
		warp = float64(w)
	}

	return dist + wWait*wait + wWarp*warp
}
