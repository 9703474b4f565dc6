package costeval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

func tinyInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{5}, TwLate: 1000, Required: true})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{5}, TwLate: 1000, Required: true})
	b.AddVehicleType(vrpdata.VehicleType{
		Capacity: []measure.Load{6}, NumAvailable: 2, UnitDistanceCost: 1.0, FixedCost: 10,
	})
	n := 3
	dist := [][]measure.Distance{{0, 4, 6}, {4, 0, 3}, {6, 3, 0}}
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

func TestPenalisedCostFeasibleHasNoExtraPenalty(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0}},
		{VehicleType: 0, Visits: []int{1}},
	})
	require.NoError(t, err)

	ce := costeval.New(10, 10, 0)
	cost := ce.PenalisedCost(data, sol)
	// Each route: depot->client->depot = 4+4=8 (client0), 6+6=12(client1); plus fixed cost 10 each.
	assert.Equal(t, measure.Cost(8+10+12+10), cost)
}

func TestPenalisedCostPenalizesExcessLoad(t *testing.T) {
	data := tinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0, 1}},
	})
	require.NoError(t, err)

	ce := costeval.New(10, 10, 0)
	cost := ce.PenalisedCost(data, sol)
	// demand 5+5=10 vs capacity 6 => excess 4, penalty 10*4=40.
	// distance: 0->0(client idx0=loc1)=4, 1->2=3, 2->0=6 => total 13; fixedCost 10.
	assert.Equal(t, measure.Cost(13+10+40), cost)
}

func TestFeasibilityCostIsolatesPenaltyTerms(t *testing.T) {
	ce := costeval.New(2, 3, 5)
	cost := ce.FeasibilityCost([]measure.Load{4}, measure.Duration(2), measure.Distance(1))
	assert.Equal(t, measure.Cost(2*4+3*2+5*1), cost)
}
