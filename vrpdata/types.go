// Package vrpdata defines the immutable problem instance: clients, depots,
// vehicle types, and the distance/duration matrices that relate them.
//
// A ProblemData is built once (by Build or a Builder) and shared read-only
// by every goroutine running an independent search, mirroring the teacher's
// core.Graph functional-options construction pattern (core/types.go's
// GraphOption/NewGraph) generalized from a mutable, lock-protected graph to
// a fully immutable instance — ProblemData is never mutated after
// construction, so it needs no locks at all.
package vrpdata

import (
	"errors"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/vrpmatrix"
)

// Sentinel errors for ProblemData construction, grounded on core/types.go's
// sentinel-error family (ErrEmptyVertexID, ErrVertexNotFound, ...).
var (
	// ErrNoDepots indicates an instance with zero depots.
	ErrNoDepots = errors.New("vrpdata: instance has no depots")

	// ErrNoVehicleTypes indicates an instance with zero vehicle types.
	ErrNoVehicleTypes = errors.New("vrpdata: instance has no vehicle types")

	// ErrNonZeroDiagonal indicates dist(i,i) != 0 or dur(i,i) != 0 for some location i.
	ErrNonZeroDiagonal = errors.New("vrpdata: distance/duration matrix diagonal must be zero")

	// ErrDirtyDepot indicates a depot has non-zero demand, service time, or release time.
	ErrDirtyDepot = errors.New("vrpdata: depot must have zero demand, service, and release time")

	// ErrNegativeLoad indicates a negative demand, supply, or capacity value.
	ErrNegativeLoad = errors.New("vrpdata: load dimension must be non-negative")

	// ErrMalformedTimeWindow indicates twEarly > twLate or twEarly < 0.
	ErrMalformedTimeWindow = errors.New("vrpdata: malformed time window")

	// ErrNonPositiveVehicleCount indicates a VehicleType with NumAvailable <= 0.
	ErrNonPositiveVehicleCount = errors.New("vrpdata: vehicle type must have a positive count")

	// ErrMatrixSizeMismatch indicates the distance/duration matrices don't
	// match numLocations = numDepots + numClients.
	ErrMatrixSizeMismatch = errors.New("vrpdata: matrix size does not match numLocations")

	// ErrInvalidDepotIndex indicates a VehicleType references a depot index out of range.
	ErrInvalidDepotIndex = errors.New("vrpdata: vehicle type references an invalid depot index")

	// ErrLoadDimensionMismatch indicates clients/vehicle types disagree on the
	// number of load dimensions.
	ErrLoadDimensionMismatch = errors.New("vrpdata: inconsistent number of load dimensions")
)

// Client is a location that may require service: coordinates, demand (one
// entry per load dimension), service duration, time window, release time,
// prize, required flag, and an optional mutually-exclusive group id.
type Client struct {
	X, Y            measure.Coordinate
	Demand          []measure.Load
	ServiceDuration measure.Duration
	TwEarly         measure.Duration
	TwLate          measure.Duration
	ReleaseTime     measure.Duration
	Prize           measure.Cost
	Required        bool
	GroupID         int // 0 means "no group"
}

// Depot is a zero-demand, zero-service, zero-release location that acts as
// both the start and end of each route assigned to it.
type Depot struct {
	X, Y measure.Coordinate
}

// VehicleType describes a class of interchangeable vehicles.
type VehicleType struct {
	Capacity        []measure.Load
	NumAvailable    int
	StartDepot      int
	EndDepot        int
	FixedCost       measure.Cost
	TwEarly         measure.Duration // shift start; used only when HasShiftWindow is set
	TwLate          measure.Duration
	HasShiftWindow  bool
	MaxDuration     measure.Duration
	HasMaxDuration  bool
	MaxDistance     measure.Distance
	HasMaxDistance  bool
	UnitDistanceCost float64
	UnitDurationCost float64
}

// ProblemData is the immutable VRP instance. Locations are indexed
// depots-first: location i < numDepots is Depots()[i]; location
// i >= numDepots is Clients()[i-numDepots].
type ProblemData struct {
	depots       []Depot
	clients      []Client
	vehicleTypes []VehicleType
	dist         *vrpmatrix.DistanceMatrix
	dur          *vrpmatrix.DurationMatrix
	numLoadDims  int
}

// NumDepots returns the number of depots.
func (p *ProblemData) NumDepots() int { return len(p.depots) }

// NumClients returns the number of clients.
func (p *ProblemData) NumClients() int { return len(p.clients) }

// NumLocations returns NumDepots()+NumClients().
func (p *ProblemData) NumLocations() int { return len(p.depots) + len(p.clients) }

// NumVehicleTypes returns the number of distinct vehicle types.
func (p *ProblemData) NumVehicleTypes() int { return len(p.vehicleTypes) }

// NumVehicles returns the total number of available vehicles across all types.
func (p *ProblemData) NumVehicles() int {
	total := 0
	for _, vt := range p.vehicleTypes {
		total += vt.NumAvailable
	}
	return total
}

// NumLoadDimensions returns the number of capacity/demand dimensions.
func (p *ProblemData) NumLoadDimensions() int { return p.numLoadDims }

// Depot returns the depot at location index i (0 <= i < NumDepots()).
func (p *ProblemData) Depot(i int) Depot { return p.depots[i] }

// Client returns the client at client index i (0 <= i < NumClients()), i.e.
// location index i+NumDepots().
func (p *ProblemData) Client(i int) Client { return p.clients[i] }

// VehicleType returns the vehicle type at index t.
func (p *ProblemData) VehicleType(t int) VehicleType { return p.vehicleTypes[t] }

// LocationX returns the x coordinate of location index loc (depots-first indexing).
func (p *ProblemData) LocationX(loc int) measure.Coordinate {
	if loc < len(p.depots) {
		return p.depots[loc].X
	}
	return p.clients[loc-len(p.depots)].X
}

// LocationY returns the y coordinate of location index loc (depots-first indexing).
func (p *ProblemData) LocationY(loc int) measure.Coordinate {
	if loc < len(p.depots) {
		return p.depots[loc].Y
	}
	return p.clients[loc-len(p.depots)].Y
}

// Dist returns the travel distance from location i to location j.
func (p *ProblemData) Dist(i, j int) measure.Distance { return p.dist.Get(i, j) }

// Dur returns the travel duration from location i to location j.
func (p *ProblemData) Dur(i, j int) measure.Duration { return p.dur.Get(i, j) }

// DistanceMatrix returns the instance's distance matrix.
func (p *ProblemData) DistanceMatrix() *vrpmatrix.DistanceMatrix { return p.dist }

// DurationMatrix returns the instance's duration matrix.
func (p *ProblemData) DurationMatrix() *vrpmatrix.DurationMatrix { return p.dur }

// Centroid returns the arithmetic mean of all client coordinates. If there
// are no clients, it returns the mean of depot coordinates instead.
func (p *ProblemData) Centroid() (x, y measure.Coordinate) {
	pts := p.clients
	if len(pts) == 0 {
		var sx, sy measure.Coordinate
		for _, d := range p.depots {
			sx += d.X
			sy += d.Y
		}
		n := measure.Coordinate(len(p.depots))
		if n == 0 {
			return 0, 0
		}
		return sx / n, sy / n
	}
	var sx, sy measure.Coordinate
	for _, c := range pts {
		sx += c.X
		sy += c.Y
	}
	n := measure.Coordinate(len(pts))
	return sx / n, sy / n
}
