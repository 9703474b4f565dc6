package vrplib_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
	"github.com/katalvlaran/hgsvrp/vrplib"
)

const explicitInstance = `NAME: toy-explicit
COMMENT: three clients, explicit full matrix
TYPE: CVRP
DIMENSION: 4
EDGE_WEIGHT_TYPE: EXPLICIT
EDGE_WEIGHT_FORMAT: FULL_MATRIX
CAPACITY: 10
VEHICLES: 2
EDGE_WEIGHT_SECTION
0 2 4 6
2 0 3 5
4 3 0 1
6 5 1 0
DEMAND_SECTION
1 0
2 3
3 4
4 2
DEPOT_SECTION
1
-1
EOF
`

func TestReadInstanceExplicitMatrix(t *testing.T) {
	data, err := vrplib.ReadInstance(strings.NewReader(explicitInstance))
	require.NoError(t, err)

	assert.Equal(t, 1, data.NumDepots())
	assert.Equal(t, 3, data.NumClients())
	assert.Equal(t, 1, data.NumVehicleTypes())
	assert.Equal(t, 2, data.NumVehicles())
	assert.Equal(t, measure.Load(10), data.VehicleType(0).Capacity[0])

	// depot (VRPLIB index 1) becomes location 0; clients 2,3,4 follow in order.
	assert.Equal(t, measure.Load(3), data.Client(0).Demand[0])
	assert.Equal(t, measure.Load(4), data.Client(1).Demand[0])
	assert.Equal(t, measure.Load(2), data.Client(2).Demand[0])

	assert.Equal(t, measure.Distance(2), data.Dist(0, 1))
	assert.Equal(t, measure.Distance(6), data.Dist(0, 3))
	assert.Equal(t, measure.Distance(1), data.Dist(2, 3))
	assert.Equal(t, measure.Distance(0), data.Dist(0, 0))
}

const euc2DInstance = `NAME: toy-euc2d
TYPE: CVRP
DIMENSION: 3
EDGE_WEIGHT_TYPE: EUC_2D
CAPACITY: 20
VEHICLES: 1
NODE_COORD_SECTION
1 0 0
2 3 4
3 6 8
DEMAND_SECTION
1 0
2 5
3 5
TIME_WINDOW_SECTION
1 0 100000
2 0 100
3 10 200
SERVICE_TIME_SECTION
1 0
2 5
3 5
DEPOT_SECTION
1
-1
EOF
`

func TestReadInstanceEuc2D(t *testing.T) {
	data, err := vrplib.ReadInstance(strings.NewReader(euc2DInstance))
	require.NoError(t, err)

	assert.Equal(t, 2, data.NumClients())
	// depot(0,0) -> client1(3,4): floor(10*sqrt(9+16)) = floor(50) = 50
	assert.Equal(t, measure.Distance(50), data.Dist(0, 1))
	// depot(0,0) -> client2(6,8): floor(10*sqrt(36+64)) = floor(100) = 100
	assert.Equal(t, measure.Distance(100), data.Dist(0, 2))

	assert.Equal(t, measure.Duration(0), data.Client(0).TwEarly)
	assert.Equal(t, measure.Duration(100), data.Client(0).TwLate)
	assert.Equal(t, measure.Duration(10), data.Client(1).TwEarly)
	assert.Equal(t, measure.Duration(200), data.Client(1).TwLate)
	assert.Equal(t, measure.Duration(5), data.Client(0).ServiceDuration)
}

// TestReadInstanceOutOfOrderSections places DEMAND_SECTION before
// NODE_COORD_SECTION, directly exercising the lineSource pushback: a
// section reader must hand back a just-detected next-header line rather
// than silently consuming it.
func TestReadInstanceOutOfOrderSections(t *testing.T) {
	const instance = `NAME: reordered
TYPE: CVRP
DIMENSION: 3
EDGE_WEIGHT_TYPE: EUC_2D
CAPACITY: 20
VEHICLES: 1
DEMAND_SECTION
1 0
2 5
3 5
NODE_COORD_SECTION
1 0 0
2 3 4
3 6 8
DEPOT_SECTION
1
-1
EOF
`
	data, err := vrplib.ReadInstance(strings.NewReader(instance))
	require.NoError(t, err)
	assert.Equal(t, measure.Load(5), data.Client(0).Demand[0])
	assert.Equal(t, measure.Distance(50), data.Dist(0, 1))
}

func TestReadInstanceMissingDimension(t *testing.T) {
	const instance = `NAME: broken
EDGE_WEIGHT_TYPE: EXPLICIT
EDGE_WEIGHT_SECTION
0 1
1 0
DEPOT_SECTION
1
-1
EOF
`
	_, err := vrplib.ReadInstance(strings.NewReader(instance))
	assert.ErrorIs(t, err, vrplib.ErrMissingDimension)
}

func TestReadInstanceUnsupportedWeightType(t *testing.T) {
	const instance = `NAME: broken
DIMENSION: 2
EDGE_WEIGHT_TYPE: GEO
DEPOT_SECTION
1
-1
EOF
`
	_, err := vrplib.ReadInstance(strings.NewReader(instance))
	assert.ErrorIs(t, err, vrplib.ErrUnsupportedWeight)
}

func TestReadInstanceMissingCoordinatesForEuc2D(t *testing.T) {
	const instance = `NAME: broken
DIMENSION: 2
EDGE_WEIGHT_TYPE: EUC_2D
CAPACITY: 10
VEHICLES: 1
DEPOT_SECTION
1
-1
EOF
`
	_, err := vrplib.ReadInstance(strings.NewReader(instance))
	assert.ErrorIs(t, err, vrplib.ErrMissingCoordinates)
}

func TestReadInstanceDepotSectionInvalid(t *testing.T) {
	const instance = `NAME: broken
DIMENSION: 2
EDGE_WEIGHT_TYPE: EXPLICIT
EDGE_WEIGHT_FORMAT: FULL_MATRIX
CAPACITY: 10
VEHICLES: 1
EDGE_WEIGHT_SECTION
0 1
1 0
DEPOT_SECTION
1
2
-1
EOF
`
	_, err := vrplib.ReadInstance(strings.NewReader(instance))
	assert.ErrorIs(t, err, vrplib.ErrDepotSectionInvalid)
}

func TestReadInstanceMalformedLine(t *testing.T) {
	const instance = `NAME: broken
DIMENSION: 2
EDGE_WEIGHT_TYPE: EXPLICIT
EDGE_WEIGHT_FORMAT: FULL_MATRIX
CAPACITY: 10
VEHICLES: 1
EDGE_WEIGHT_SECTION
0 not-a-number
1 0
DEPOT_SECTION
1
-1
EOF
`
	_, err := vrplib.ReadInstance(strings.NewReader(instance))
	assert.ErrorIs(t, err, vrplib.ErrMalformedLine)
}

func buildTinyInstance(t *testing.T) *vrpdata.ProblemData {
	t.Helper()
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{1}, TwLate: 1000, Required: true})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{1}, TwLate: 1000, Required: true})
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{10}, NumAvailable: 1})
	dist := [][]measure.Distance{{0, 3, 4}, {3, 0, 5}, {4, 5, 0}}
	dur := [][]measure.Duration{{0, 3, 4}, {3, 0, 5}, {4, 5, 0}}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func TestWriteSolutionFormat(t *testing.T) {
	data := buildTinyInstance(t)
	sol, err := solution.NewSolution(data, []solution.RouteSpec{
		{VehicleType: 0, Visits: []int{0, 1}},
	})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, vrplib.WriteSolution(&buf, sol, 1500*time.Millisecond))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Route #1: 1 2", lines[0])
	assert.Equal(t, "Cost: "+strconv.FormatInt(int64(sol.Distance()), 10), lines[1])
	assert.Equal(t, "Time: 1.500", lines[2])
}
