package solution

import (
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// RouteSpec is the raw input to NewSolution: one vehicle's assignment and
// visit order, before aggregates are computed.
type RouteSpec struct {
	VehicleType int
	StartDepot  int
	EndDepot    int
	Visits      []int
}

// Solution is an immutable set of Routes over a ProblemData instance.
type Solution struct {
	data   *vrpdata.ProblemData
	routes []Route

	distance   measure.Distance
	duration   measure.Duration
	timeWarp   measure.Duration
	excessLoad []measure.Load
	prizes     measure.Cost

	// successor/predecessor map a client index to the next/previous client
	// index in its route, or -1 at a route boundary (adjacent to a depot).
	successor   []int
	predecessor []int
	visited     []bool
}

// NewSolution validates specs against data and computes a Solution's
// aggregates. Validation enforces spec.md §3's Solution invariants: every
// required client visited exactly once, no client visited twice, vehicle
// counts respected, no empty routes.
func NewSolution(data *vrpdata.ProblemData, specs []RouteSpec) (*Solution, error) {
	numClients := data.NumClients()
	seen := make([]bool, numClients)
	usedByType := make(map[int]int)

	routes := make([]Route, 0, len(specs))
	successor := make([]int, numClients)
	predecessor := make([]int, numClients)
	for i := range successor {
		successor[i] = -1
		predecessor[i] = -1
	}

	for _, spec := range specs {
		if len(spec.Visits) == 0 {
			return nil, ErrEmptyRoute
		}
		if spec.VehicleType < 0 || spec.VehicleType >= data.NumVehicleTypes() {
			return nil, ErrUnknownClient
		}
		usedByType[spec.VehicleType]++

		for i, c := range spec.Visits {
			if c < 0 || c >= numClients {
				return nil, ErrUnknownClient
			}
			if seen[c] {
				return nil, ErrDuplicateClient
			}
			seen[c] = true

			if i > 0 {
				predecessor[c] = spec.Visits[i-1]
				successor[spec.Visits[i-1]] = c
			}
		}

		routes = append(routes, computeRoute(data, spec.VehicleType, spec.StartDepot, spec.EndDepot, spec.Visits))
	}

	for t := 0; t < data.NumVehicleTypes(); t++ {
		if usedByType[t] > data.VehicleType(t).NumAvailable {
			return nil, ErrTooManyVehicles
		}
	}

	for c := 0; c < numClients; c++ {
		if data.Client(c).Required && !seen[c] {
			return nil, ErrMissingRequiredClient
		}
	}

	s := &Solution{
		data:        data,
		routes:      routes,
		excessLoad:  make([]measure.Load, data.NumLoadDimensions()),
		successor:   successor,
		predecessor: predecessor,
		visited:     seen,
	}
	for _, r := range routes {
		s.distance = s.distance.Add(r.Distance)
		s.duration = s.duration.Add(r.Duration)
		s.timeWarp = s.timeWarp.Add(r.TimeWarp)
		s.prizes = s.prizes.Add(r.Prizes)
		for d := range s.excessLoad {
			s.excessLoad[d] = s.excessLoad[d].Add(r.ExcessLoad[d])
		}
	}
	return s, nil
}

// Data returns the ProblemData this Solution was built against.
func (s *Solution) Data() *vrpdata.ProblemData { return s.data }

// Routes returns the solution's routes (non-empty only; empty routes are
// never constructed, per invariant).
func (s *Solution) Routes() []Route { return s.routes }

// Distance returns the sum of all routes' distances plus the depot legs
// (already included per-route by computeRoute).
func (s *Solution) Distance() measure.Distance { return s.distance }

// Duration returns the sum of all routes' durations.
func (s *Solution) Duration() measure.Duration { return s.duration }

// TimeWarp returns the sum of all routes' time warp.
func (s *Solution) TimeWarp() measure.Duration { return s.timeWarp }

// ExcessLoad returns, per load dimension, the sum of all routes' excess load.
func (s *Solution) ExcessLoad() []measure.Load { return s.excessLoad }

// Prizes returns the sum of collected optional-client prizes.
func (s *Solution) Prizes() measure.Cost { return s.prizes }

// HasExcessLoad reports whether any dimension has excess load.
func (s *Solution) HasExcessLoad() bool {
	for _, e := range s.excessLoad {
		if e > 0 {
			return true
		}
	}
	return false
}

// HasTimeWarp reports whether total time warp is positive.
func (s *Solution) HasTimeWarp() bool { return s.timeWarp > 0 }

// IsComplete reports whether every required client is visited. NewSolution
// already enforces this at construction, so IsComplete is always true for a
// successfully constructed Solution; it is exposed for symmetry with
// spec.md §8 property #5's stated formula.
func (s *Solution) IsComplete() bool {
	for c := 0; c < s.data.NumClients(); c++ {
		if s.data.Client(c).Required && !s.visited[c] {
			return false
		}
	}
	return true
}

// IsFeasible reports whether the solution has no excess load, no time warp,
// and is complete (spec.md §8 property #5).
func (s *Solution) IsFeasible() bool {
	return !s.HasExcessLoad() && !s.HasTimeWarp() && s.IsComplete()
}

// Successor returns the client visited immediately after client c, or -1 if
// c is the last client in its route (or c is unvisited).
func (s *Solution) Successor(c int) int { return s.successor[c] }

// Predecessor returns the client visited immediately before client c, or -1
// if c is the first client in its route (or c is unvisited).
func (s *Solution) Predecessor(c int) int { return s.predecessor[c] }

// Visited reports whether client c is served by any route in the solution.
func (s *Solution) Visited(c int) bool { return s.visited[c] }

// BrokenPairsDistance computes the diversity metric between two solutions
// over the same instance: the fraction of client indices whose successor
// differs between a and b, and also differs from b's predecessor (spec.md
// §4.5/§8 property #11-13). It is symmetric, zero for identical solutions,
// and bounded in [0,1].
func BrokenPairsDistance(a, b *Solution) float64 {
	numClients := a.data.NumClients()
	if numClients == 0 {
		return 0
	}
	broken := 0
	for c := 0; c < numClients; c++ {
		as := a.Successor(c)
		if as != b.Successor(c) && as != b.Predecessor(c) {
			broken++
		}
	}
	return float64(broken) / float64(numClients)
}
