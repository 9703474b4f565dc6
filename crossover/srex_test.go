package crossover_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/crossover"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/rng"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

func buildInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	for i := 0; i < 6; i++ {
		b.AddClient(vrpdata.Client{Demand: []measure.Load{2}, TwLate: 1000000, Required: true})
	}
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{20}, NumAvailable: 4})
	n := 7
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = measure.Distance(1 + (i+j)%4)
			}
		}
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func solOf(t *testing.T, data *vrpdata.ProblemData, routes [][]int) *solution.Solution {
	t.Helper()
	specs := make([]solution.RouteSpec, len(routes))
	for i, r := range routes {
		specs[i] = solution.RouteSpec{VehicleType: 0, Visits: r}
	}
	s, err := solution.NewSolution(data, specs)
	require.NoError(t, err)
	return s
}

func TestSREXProducesCompleteOffspring(t *testing.T) {
	data := buildInstance(t)
	parentA := solOf(t, data, [][]int{{0, 1}, {2, 3}, {4, 5}})
	parentB := solOf(t, data, [][]int{{5, 4}, {1, 0}, {3, 2}})

	ce := costeval.New(10, 10, 0)
	r := rng.New(42)

	child, err := crossover.SREX(data, ce, parentA, parentB, r)
	require.NoError(t, err)
	assert.True(t, child.IsComplete())

	seen := map[int]bool{}
	for _, rt := range child.Routes() {
		for _, c := range rt.Visits {
			assert.False(t, seen[c])
			seen[c] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestSREXDeterministicGivenSameRNGState(t *testing.T) {
	data := buildInstance(t)
	parentA := solOf(t, data, [][]int{{0, 1}, {2, 3}, {4, 5}})
	parentB := solOf(t, data, [][]int{{5, 4}, {1, 0}, {3, 2}})
	ce := costeval.New(10, 10, 0)

	c1, err := crossover.SREX(data, ce, parentA, parentB, rng.New(99))
	require.NoError(t, err)
	c2, err := crossover.SREX(data, ce, parentA, parentB, rng.New(99))
	require.NoError(t, err)

	assert.Equal(t, c1.Distance(), c2.Distance())
}
