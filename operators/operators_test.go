package operators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/operators"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// lineInstance places depot and 4 clients on a line, so relocating the
// middle clients into a better order has an obvious, hand-verifiable delta.
func lineInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	for i := 0; i < 4; i++ {
		b.AddClient(vrpdata.Client{Demand: []measure.Load{1}, TwLate: 100000, Required: true})
	}
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{10}, NumAvailable: 2, UnitDistanceCost: 1})

	// locations: 0=depot, 1,2,3,4 = clients at x=1,2,3,4 on a line.
	coords := []float64{0, 1, 2, 3, 4}
	n := len(coords)
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
		for j := range dist[i] {
			d := coords[i] - coords[j]
			if d < 0 {
				d = -d
			}
			dist[i][j] = measure.Distance(d)
		}
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func loadArena(t *testing.T, data *vrpdata.ProblemData, routes [][]int) *searchroute.Arena {
	t.Helper()
	specs := make([]solution.RouteSpec, len(routes))
	for i, r := range routes {
		specs[i] = solution.RouteSpec{VehicleType: 0, Visits: r}
	}
	sol, err := solution.NewSolution(data, specs)
	require.NoError(t, err)
	arena := searchroute.NewArena(data, 2)
	arena.LoadSolution(sol)
	return arena
}

func TestTwoOptWithinRouteFixesOutOfOrderVisits(t *testing.T) {
	data := lineInstance(t)
	// Visiting 0,2,1,3 crosses itself; 2-opt between client nodes 0 and 1
	// should find the crossing improving when reversed.
	arena := loadArena(t, data, [][]int{{0, 2, 1, 3}})

	ce := costeval.New(0, 0, 0)
	op := operators.TwoOpt{}
	delta, ok := op.Evaluate(data, ce, arena, 0, 1)
	require.True(t, ok)
	assert.Less(t, delta, measure.Cost(0))
}

func TestExchangeRelocateSingleClient(t *testing.T) {
	data := lineInstance(t)
	arena := loadArena(t, data, [][]int{{0}, {1, 2, 3}})

	ce := costeval.New(0, 0, 0)
	op := operators.Exchange{N: 1, M: 0}
	// Relocate client 0 (alone in route 0) in before client 1 (in route 1).
	delta, ok := op.Evaluate(data, ce, arena, 0, 1)
	require.True(t, ok)
	_ = delta
}

func TestMoveTwoClientsReversedEvaluateLeavesRoutesUnchanged(t *testing.T) {
	data := lineInstance(t)
	arena := loadArena(t, data, [][]int{{0, 1}, {2, 3}})
	ce := costeval.New(0, 0, 0)
	op := operators.MoveTwoClientsReversed{}

	before, err := arena.ExportSolution()
	require.NoError(t, err)
	_, ok := op.Evaluate(data, ce, arena, 0, 3)
	require.True(t, ok)

	after, err := arena.ExportSolution()
	require.NoError(t, err)
	assert.Equal(t, before.Routes()[0].Visits, after.Routes()[0].Visits)
	assert.Equal(t, before.Routes()[1].Visits, after.Routes()[1].Visits)
}

func TestRelocateStarApplyKeepsSolutionExportable(t *testing.T) {
	data := lineInstance(t)
	arena := loadArena(t, data, [][]int{{0, 1, 2, 3}}) // the arena's second route stays empty
	ce := costeval.New(0, 0, 0)
	op := operators.RelocateStar{}
	// Moving a client of the long route into the empty second route may or
	// may not improve under pure distance cost; just check Evaluate runs and
	// Apply keeps the solution exportable.
	_, _ = op.Evaluate(data, ce, arena, 0, 1)
	op.Apply(data, ce, arena, 0, 1)
	_, err := arena.ExportSolution()
	assert.NoError(t, err)
}

func TestSwapStarAppliesWithoutCorruptingRoutes(t *testing.T) {
	data := lineInstance(t)
	arena := loadArena(t, data, [][]int{{0, 1}, {2, 3}})
	ce := costeval.New(0, 0, 0)
	op := operators.SwapStar{}
	_, _ = op.Evaluate(data, ce, arena, 0, 1)
	op.Apply(data, ce, arena, 0, 1)
	out, err := arena.ExportSolution()
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, r := range out.Routes() {
		for _, c := range r.Visits {
			assert.False(t, seen[c], "client %d visited twice", c)
			seen[c] = true
		}
	}
}
