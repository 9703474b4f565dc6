package vrpdata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// scenario1 builds the tiny 4-client instance from spec.md §8 scenario 1.
func scenario1(t *testing.T) *vrpdata.ProblemData {
	t.Helper()

	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{X: 2334, Y: 726})

	twE := []measure.Duration{15600, 12000, 8400, 12000}
	twL := []measure.Duration{22500, 19500, 15300, 19500}
	svc := []measure.Duration{360, 360, 420, 360}
	dem := []measure.Load{5, 5, 3, 5}
	x := []measure.Coordinate{226, 590, 435, 1191}
	y := []measure.Coordinate{1297, 530, 718, 639}

	for i := 0; i < 4; i++ {
		b.AddClient(vrpdata.Client{
			X: x[i], Y: y[i],
			Demand:          []measure.Load{dem[i]},
			ServiceDuration: svc[i],
			TwEarly:         twE[i],
			TwLate:          twL[i],
			Required:        true,
		})
	}

	b.AddVehicleType(vrpdata.VehicleType{
		Capacity:     []measure.Load{10},
		NumAvailable: 3,
		StartDepot:   0,
		EndDepot:     0,
	})

	n := 5 // 1 depot + 4 clients
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)

	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func TestScenario1BuildsCleanly(t *testing.T) {
	data := scenario1(t)
	assert.Equal(t, 1, data.NumDepots())
	assert.Equal(t, 4, data.NumClients())
	assert.Equal(t, 5, data.NumLocations())
	assert.Equal(t, 3, data.NumVehicles())
}

func TestBuildRejectsNoDepots(t *testing.T) {
	b := vrpdata.NewBuilder()
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{1}, NumAvailable: 1})
	_, err := b.Build()
	require.ErrorIs(t, err, vrpdata.ErrNoDepots)
}

func TestBuildRejectsNoVehicleTypes(t *testing.T) {
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	_, err := b.Build()
	require.ErrorIs(t, err, vrpdata.ErrNoVehicleTypes)
}

func TestBuildRejectsNonZeroDiagonal(t *testing.T) {
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{1}, NumAvailable: 1})
	b.SetDistanceMatrix([][]measure.Distance{{5}})
	b.SetDurationMatrix([][]measure.Duration{{0}})
	_, err := b.Build()
	require.ErrorIs(t, err, vrpdata.ErrNonZeroDiagonal)
}

func TestBuildRejectsMalformedTimeWindow(t *testing.T) {
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{1}, TwEarly: 10, TwLate: 5})
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{5}, NumAvailable: 1})
	n := 2
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	_, err := b.Build()
	require.ErrorIs(t, err, vrpdata.ErrMalformedTimeWindow)
}

func TestBuildRejectsNegativeLoad(t *testing.T) {
	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{})
	b.AddClient(vrpdata.Client{Demand: []measure.Load{-1}, TwLate: 10})
	b.AddVehicleType(vrpdata.VehicleType{Capacity: []measure.Load{5}, NumAvailable: 1})
	n := 2
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)
	_, err := b.Build()
	require.ErrorIs(t, err, vrpdata.ErrNegativeLoad)
}

func TestCentroidIsMeanOfClients(t *testing.T) {
	data := scenario1(t)
	x, y := data.Centroid()
	wantX := (226.0 + 590.0 + 435.0 + 1191.0) / 4.0
	wantY := (1297.0 + 530.0 + 718.0 + 639.0) / 4.0
	assert.InDelta(t, wantX, float64(x), 1e-9)
	assert.InDelta(t, wantY, float64(y), 1e-9)
}

func TestReplaceAppliesOverride(t *testing.T) {
	data := scenario1(t)
	newClients := append([]vrpdata.Client(nil), []vrpdata.Client{
		{Demand: []measure.Load{1}, TwLate: 100},
	}...)
	np, err := data.Replace(vrpdata.WithClients(newClients))
	require.NoError(t, err)
	assert.Equal(t, 1, np.NumClients())
	assert.Equal(t, 4, data.NumClients()) // original untouched
}
