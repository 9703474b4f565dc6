package searchroute_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

func tinyInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{5}, TwLate: 1000, Required: true})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{5}, TwLate: 1000}) // optional: some tests leave it unrouted
	b.AddClient(vrpdata.Client{Demand: []measure.Load{3}, TwLate: 1000}) // optional: some tests leave it unrouted
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{20}, NumAvailable: 2})
	n := 4
	dist := [][]measure.Distance{
		{0, 4, 6, 5},
		{4, 0, 3, 2},
		{6, 3, 0, 7},
		{5, 2, 7, 0},
	}
	dur := make([][]measure.Duration, n)
	for i := range dur {
		dur[i] = make([]measure.Duration, n)
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func TestLoadExportRoundTrip(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0, 1}},
		{VehicleType: 0, Visits: []int{2}},
	})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 2)
	arena.LoadSolution(sol)

	out, err := arena.ExportSolution()
	require.NoError(t, err)
	assert.Len(t, out.Routes(), 2)
	assert.Equal(t, []int{0, 1}, out.Routes()[0].Visits)
	assert.Equal(t, []int{2}, out.Routes()[1].Visits)
}

func TestUpdateMatchesImmutableRouteDistance(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0, 1, 2}},
	})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 1)
	arena.LoadSolution(sol)

	assert.Equal(t, sol.Routes()[0].Distance, arena.Route(0).Distance())
}

func TestInsertAndRemove(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0}},
		{VehicleType: 0, Visits: []int{1, 2}},
	})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 2)
	arena.LoadSolution(sol)

	r0 := arena.Route(0)
	require.NoError(t, r0.Remove(1))
	assert.Equal(t, 0, r0.Size())

	r1 := arena.Route(1)
	require.NoError(t, r1.Insert(1, 0))
	assert.Equal(t, 3, r1.Size())
	r1.Update()

	out, err := arena.ExportSolution()
	require.NoError(t, err)
	assert.Len(t, out.Routes(), 1)
	assert.Equal(t, []int{0, 1, 2}, out.Routes()[0].Visits)
}

func TestSwapAcrossRoutes(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0}},
		{VehicleType: 0, Visits: []int{1}},
	})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 2)
	arena.LoadSolution(sol)

	searchroute.Swap(0, 1, arena)
	arena.Route(0).Update()
	arena.Route(1).Update()

	out, err := arena.ExportSolution()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out.Routes()[0].Visits)
	assert.Equal(t, []int{0}, out.Routes()[1].Visits)
}

func TestAtBoundsChecking(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{{VehicleType: 0, Visits: []int{0}}})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 1)
	arena.LoadSolution(sol)
	r := arena.Route(0)

	_, err = r.At(-1)
	assert.ErrorIs(t, err, searchroute.ErrInvalidPosition)
	_, err = r.At(5)
	assert.ErrorIs(t, err, searchroute.ErrInvalidPosition)

	id, err := r.At(0)
	require.NoError(t, err)
	assert.True(t, arena.Node(id).IsDepot())
}

func TestOverlapsWithEmptyRouteIsFalse(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{{VehicleType: 0, Visits: []int{0}}})
	require.NoError(t, err)

	arena := searchroute.NewArena(data, 2)
	arena.LoadSolution(sol)
	assert.False(t, arena.Route(0).OverlapsWith(arena.Route(1), 0.5))
}
