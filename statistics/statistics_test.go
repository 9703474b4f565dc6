package statistics_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/population"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/statistics"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

func buildInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	for i := 0; i < 4; i++ {
		b.AddClient(vrpdata.Client{Demand: []measure.Load{2}, TwLate: 100000, Required: true})
	}
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{10}, NumAvailable: 3})
	n := 5
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = measure.Distance(1 + (i+j)%3)
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

func TestCollectFromEmptyPopulationReportsMissingValues(t *testing.T) {
	data := buildInstance(t)
	pop := population.New(data, costeval.New(10, 10, 0), population.DefaultConfig())

	c := statistics.NewCollector()
	rec := c.CollectFrom(pop)

	assert.Equal(t, 0, rec.FeasPopSize)
	assert.Equal(t, int64(math.MaxInt64), rec.FeasBest)
	assert.Equal(t, int64(math.MaxInt64), rec.FeasAvg)
	assert.Equal(t, 0, rec.InfeasPopSize)
}

func TestCollectFromNonEmptyPopulationComputesAveragesAndBest(t *testing.T) {
	data := buildInstance(t)
	pop := population.New(data, costeval.New(10, 10, 0), population.DefaultConfig())
	a := pop.Add(solOf(t, data, [][]int{{0, 1}, {2}, {3}}))
	b := pop.Add(solOf(t, data, [][]int{{0}, {1}, {2, 3}}))

	c := statistics.NewCollector()
	rec := c.CollectFrom(pop)

	if a.Feasible && b.Feasible {
		assert.Equal(t, 2, rec.FeasPopSize)
		assert.True(t, rec.FeasBest <= int64(a.Cost) && rec.FeasBest <= int64(b.Cost))
	}
}

func TestWriteCSVIncludesHeaderAndOneRowPerIteration(t *testing.T) {
	data := buildInstance(t)
	pop := population.New(data, costeval.New(10, 10, 0), population.DefaultConfig())
	pop.Add(solOf(t, data, [][]int{{0, 1}, {2}, {3}}))

	c := statistics.NewCollector()
	c.CollectFrom(pop)
	time.Sleep(time.Millisecond)
	c.CollectFrom(pop)

	var sb strings.Builder
	require.NoError(t, c.WriteCSV(&sb))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3) // header + 2 records
	assert.Equal(t, "total_runtime_s,iter_runtime_s,feas_pop_size,feas_best,feas_avg,feas_avg_routes,infeas_pop_size,infeas_best,infeas_avg,infeas_avg_routes", lines[0])
}
