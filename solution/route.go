// Package solution defines the immutable Solution: an ordered list of
// Routes, each carrying precomputed aggregates (distance, duration, excess
// load, time warp, prizes) so that CostEvaluator never has to re-walk a
// route to price it. Solutions are created at crossover/repair/local-search
// boundaries and never mutated afterward — the same "value type, computed
// once, read many times" contract as core.Vertex/core.Edge, but extended to
// full immutability since, unlike a teacher Graph, nothing in this engine
// ever patches a Solution in place.
package solution

import (
	"errors"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/segment"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// Sentinel errors for Solution construction, surfaced at the constructor
// (spec.md §7: "invalid input to a builder... fatal to that construction,
// not to the search").
var (
	// ErrEmptyRoute indicates a route with no client visits.
	ErrEmptyRoute = errors.New("solution: route has no client visits")

	// ErrDuplicateClient indicates a client appears in more than one route
	// or more than once within a route.
	ErrDuplicateClient = errors.New("solution: client appears more than once")

	// ErrMissingRequiredClient indicates a required client appears in no route.
	ErrMissingRequiredClient = errors.New("solution: required client is missing")

	// ErrTooManyVehicles indicates more routes of a vehicle type than are available.
	ErrTooManyVehicles = errors.New("solution: more routes than available vehicles of this type")

	// ErrUnknownClient indicates a visit references a client index out of range.
	ErrUnknownClient = errors.New("solution: visit references an unknown client")
)

// Route is one vehicle's immutable itinerary: a sequence of client indices
// (no depots) plus precomputed aggregates.
type Route struct {
	VehicleType int
	StartDepot  int
	EndDepot    int
	Visits      []int // client indices, in visit order

	Distance       measure.Distance
	DistanceCost   measure.Cost
	Duration       measure.Duration
	DurationCost   measure.Cost
	ExcessLoad     []measure.Load // one entry per load dimension
	ExcessDistance measure.Distance
	TimeWarp       measure.Duration
	Prizes         measure.Cost

	CentroidX, CentroidY measure.Coordinate
	StartTime            measure.Duration
	Slack                measure.Duration
}

// IsEmpty reports whether the route visits no clients.
func (r *Route) IsEmpty() bool { return len(r.Visits) == 0 }

// HasTimeWarp reports whether the route violates any time window.
func (r *Route) HasTimeWarp() bool { return r.TimeWarp > 0 }

// HasExcessLoad reports whether the route exceeds capacity on any dimension.
func (r *Route) HasExcessLoad() bool {
	for _, e := range r.ExcessLoad {
		if e > 0 {
			return true
		}
	}
	return false
}

// computeRoute derives a Route's aggregates from a raw visit sequence by
// folding the segment algebra over the route's locations, per spec.md §8
// property #8 ("before(size).merge(endDepot) equals the route's aggregate
// statistics").
func computeRoute(data *vrpdata.ProblemData, vehicleType, startDepot, endDepot int, visits []int) Route {
	numDims := data.NumLoadDimensions()
	route := Route{
		VehicleType: vehicleType,
		StartDepot:  startDepot,
		EndDepot:    endDepot,
		Visits:      visits,
		ExcessLoad:  make([]measure.Load, numDims),
	}
	if len(visits) == 0 {
		return route
	}

	locs := make([]int, 0, len(visits)+2)
	locs = append(locs, startDepot)
	numDepots := data.NumDepots()
	for _, c := range visits {
		locs = append(locs, numDepots+c)
	}
	locs = append(locs, endDepot)

	// Distance: simple edge sum (DistanceSegment fold).
	distSeg := segment.DistanceSegment{}
	for i := 0; i+1 < len(locs); i++ {
		edge := data.Dist(locs[i], locs[i+1])
		distSeg = distSeg.Merge(0, segment.DistanceSegment{Distance: edge})
	}
	route.Distance = distSeg.Distance

	vt := data.VehicleType(vehicleType)
	route.DistanceCost = measure.Cost(route.Distance).Scale(vt.UnitDistanceCost)
	if vt.HasMaxDistance {
		route.ExcessDistance = measure.Max(route.Distance.Sub(vt.MaxDistance), 0)
	}

	// Duration: fold DurationSegment across the whole chain.
	durSegs := make([]segment.DurationSegment, len(locs))
	edges := make([]measure.Duration, len(locs)-1)
	for i, loc := range locs {
		durSegs[i] = locationDurationSegment(data, vt, loc, i == 0, i == len(locs)-1)
	}
	for i := 0; i+1 < len(locs); i++ {
		edges[i] = data.Dur(locs[i], locs[i+1])
	}
	mergedDur := segment.MergeDurations(durSegs, edges)
	route.Duration = mergedDur.Duration
	route.TimeWarp = mergedDur.TotalTimeWarp()
	route.DurationCost = measure.Cost(route.Duration).Scale(vt.UnitDurationCost)
	route.StartTime = measure.Max(mergedDur.TwEarly, mergedDur.ReleaseTime)
	route.Slack = mergedDur.TwLate.Sub(mergedDur.TwEarly)

	// Load: one fold per dimension.
	for d := 0; d < numDims; d++ {
		loadSegs := make([]segment.LoadSegment, len(visits))
		for i, c := range visits {
			dem := data.Client(c).Demand[d]
			loadSegs[i] = segment.LoadSegment{Demand: dem, MaxLoad: dem}
		}
		merged := segment.MergeLoads(loadSegs)
		route.ExcessLoad[d] = merged.ExcessLoad(vt.Capacity[d])
	}

	// Prizes: required clients don't contribute (they must be visited
	// anyway); optional clients' prizes are collected once visited.
	for _, c := range visits {
		cl := data.Client(c)
		if !cl.Required {
			route.Prizes = route.Prizes.Add(cl.Prize)
		}
	}

	var sx, sy measure.Coordinate
	for _, c := range visits {
		cl := data.Client(c)
		sx += cl.X
		sy += cl.Y
	}
	n := measure.Coordinate(len(visits))
	route.CentroidX, route.CentroidY = sx/n, sy/n

	return route
}

// locationDurationSegment returns the singleton DurationSegment for one
// location, honoring depot shift windows at the route's start and end.
func locationDurationSegment(data *vrpdata.ProblemData, vt vrpdata.VehicleType, loc int, isStart, isEnd bool) segment.DurationSegment {
	if loc < data.NumDepots() {
		twE, twL := measure.Duration(0), measure.Duration(1<<62)
		if vt.HasShiftWindow {
			twE, twL = vt.TwEarly, vt.TwLate
		}
		return segment.DurationSegment{IdxFirst: loc, IdxLast: loc, TwEarly: twE, TwLate: twL}
	}
	cl := data.Client(loc - data.NumDepots())
	return segment.DurationSegment{
		IdxFirst:    loc,
		IdxLast:     loc,
		Duration:    cl.ServiceDuration,
		TwEarly:     cl.TwEarly,
		TwLate:      cl.TwLate,
		ReleaseTime: cl.ReleaseTime,
	}
}
