package ga_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/ga"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/stop"
	"github.com/katalvlaran/hgsvrp/vrpconfig"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

func buildInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	for i := 0; i < 8; i++ {
		b.AddClient(vrpdata.Client{Demand: []measure.Load{2}, TwLate: 1000000, Required: true})
	}
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{20}, NumAvailable: 5})
	n := 9
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = measure.Distance(1 + (i*3+j)%7)
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

func TestRunStopsAtMaxIterationsAndReturnsFeasibleBest(t *testing.T) {
	data := buildInstance(t)
	cfg := vrpconfig.New(vrpconfig.WithSeed(1), vrpconfig.WithPopulationSizing(6, 6, 2, 3))

	algo := ga.New(data, cfg, nil)
	algo.Seed([]*solution.Solution{
		solOf(t, data, [][]int{{0, 1, 2}, {3, 4}, {5, 6, 7}}),
		solOf(t, data, [][]int{{7, 6, 5}, {4, 3}, {2, 1, 0}}),
		solOf(t, data, [][]int{{0, 2, 4, 6}, {1, 3, 5, 7}}),
	})

	criterion, err := stop.NewMaxIterations(5)
	require.NoError(t, err)

	result := algo.Run(context.Background(), criterion)
	assert.Equal(t, 5, result.Iterations)
	require.NotNil(t, result.Best)
	assert.True(t, result.Best.Sol.IsFeasible())
	assert.NotEmpty(t, result.Stats.Records())
}

func TestRunStopsImmediatelyWithEmptyPopulation(t *testing.T) {
	data := buildInstance(t)
	cfg := vrpconfig.DefaultOptions()
	cfg.Seed = 2

	algo := ga.New(data, cfg, nil)

	criterion, err := stop.NewMaxIterations(10)
	require.NoError(t, err)
	result := algo.Run(context.Background(), criterion)
	assert.Equal(t, 1, result.Iterations)
	assert.Nil(t, result.Best)
}

func TestBestFoundCostIsNonNegative(t *testing.T) {
	data := buildInstance(t)
	ce := costeval.New(10, 10, 0)
	sol := solOf(t, data, [][]int{{0, 1, 2}, {3, 4}, {5, 6, 7}})
	assert.GreaterOrEqual(t, ce.PenalisedCost(data, sol), measure.Cost(0))
}
