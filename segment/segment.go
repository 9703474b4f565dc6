// Package segment implements the associative-merge "segment algebra" that
// lets the local search evaluate candidate route concatenations in O(1) per
// segment pair: DistanceSegment, LoadSegment, and DurationSegment.
//
// Each type implements a Merge method with the explicit-trait shape spec.md
// §9 calls for ("template/duck-typed segments → trait with explicit merge");
// there is no shared interface because the three merge signatures differ
// (load merge takes no edge weight, duration merge's edge weight is a
// Duration, distance merge's is a Distance) and forcing a common interface
// would only hide that difference behind boxing. A variadic merge is just a
// left fold over Merge, provided here as MergeDistances/MergeLoads/
// MergeDurations for the common case of merging a whole route in one pass.
//
// Segments are value types: Merge never mutates its receiver or argument.
package segment

import "github.com/katalvlaran/hgsvrp/measure"

// DistanceSegment summarizes the total distance of a contiguous visit
// sequence. Merging two segments across an edge of weight e yields the
// distance of their concatenation: d1 + d2 + e.
type DistanceSegment struct {
	Distance measure.Distance
}

// Merge returns the DistanceSegment for the concatenation of a then b,
// joined by an edge of weight edge.
func (a DistanceSegment) Merge(edge measure.Distance, b DistanceSegment) DistanceSegment {
	return DistanceSegment{Distance: a.Distance.Add(edge).Add(b.Distance)}
}

// MergeDistances folds Merge over a sequence of segments and their
// connecting edge weights. len(edges) must equal len(segs)-1; segs must be
// non-empty. Behavior is undefined otherwise (programmer error, per
// spec.md §7's "internal invariant violation" class).
func MergeDistances(segs []DistanceSegment, edges []measure.Distance) DistanceSegment {
	acc := segs[0]
	for i := 1; i < len(segs); i++ {
		acc = acc.Merge(edges[i-1], segs[i])
	}
	return acc
}

// LoadSegment summarizes the load behaviour of a contiguous visit sequence
// along a single capacity dimension: Demand is the sum of deliveries carried
// out on this segment, Supply is the sum of pickups carried back, and
// MaxLoad is the peak vehicle load reached anywhere within the segment
// (assuming deliveries are dropped off and pickups collected along the way).
type LoadSegment struct {
	Demand  measure.Load
	Supply  measure.Load
	MaxLoad measure.Load
}

// Merge returns the LoadSegment for the concatenation of a then b:
//
//	demand  = a.Demand + b.Demand
//	supply  = a.Supply + b.Supply
//	maxLoad = max(a.MaxLoad + b.Demand, b.MaxLoad + a.Supply)
//
// The two terms account for the two directions load can accumulate: a's
// peak load still carries b's un-dropped demand, and b's peak load already
// carries a's not-yet-delivered supply (pickups made in a, not yet returned
// to the depot).
func (a LoadSegment) Merge(b LoadSegment) LoadSegment {
	return LoadSegment{
		Demand:  a.Demand.Add(b.Demand),
		Supply:  a.Supply.Add(b.Supply),
		MaxLoad: measure.Max(a.MaxLoad.Add(b.Demand), b.MaxLoad.Add(a.Supply)),
	}
}

// ExcessLoad returns max(MaxLoad - capacity, 0): the amount by which this
// segment's peak load violates a vehicle's capacity.
func (a LoadSegment) ExcessLoad(capacity measure.Load) measure.Load {
	return measure.Max(a.MaxLoad.Sub(capacity), 0)
}

// MergeLoads folds Merge over a non-empty sequence of single-dimension
// segments (e.g. all segments for one capacity dimension across a route).
func MergeLoads(segs []LoadSegment) LoadSegment {
	acc := segs[0]
	for i := 1; i < len(segs); i++ {
		acc = acc.Merge(segs[i])
	}
	return acc
}

// DurationSegment is the time-window segment: the associative summary of a
// contiguous visit sequence sufficient to evaluate time-window feasibility
// of any concatenation in O(1). See spec.md §4.2 for the merge recurrence;
// this is the central algorithmic device every local-search operator relies
// on.
type DurationSegment struct {
	// IdxFirst, IdxLast identify the first and last location of this
	// segment (used by callers to look up the connecting edge duration;
	// not used by Merge itself).
	IdxFirst, IdxLast int

	// Duration is the total travel+wait+service duration of the segment,
	// starting the clock at 0 at the segment's own earliest feasible start.
	Duration measure.Duration

	// TimeWarp is the accumulated time-window violation within the segment
	// (excluding any violation induced by ReleaseTime; see TotalTimeWarp).
	TimeWarp measure.Duration

	// TwEarly, TwLate bound the feasible start time of this segment.
	TwEarly, TwLate measure.Duration

	// ReleaseTime is the earliest time the segment's first visit may be
	// served (e.g. a release-time client or depot departure constraint).
	ReleaseTime measure.Duration
}

// Merge returns the DurationSegment for the concatenation of a then b,
// travelling from a's last location to b's first in edge time.
//
// Recurrence (spec.md §4.2):
//
//	atOther  = a.Duration - a.TimeWarp + edge
//	diffTw   = max(a.TwEarly + atOther - b.TwLate, 0)
//	diffWait = max(b.TwEarly - atOther - a.TwLate, 0)
//	duration = a.Duration + b.Duration + edge + diffWait
//	timeWarp = a.TimeWarp + b.TimeWarp + diffTw
//	twEarly  = max(b.TwEarly - atOther, a.TwEarly) - diffWait
//	twLate   = min(b.TwLate  - atOther, a.TwLate)  + diffTw
//	release  = max(a.ReleaseTime, b.ReleaseTime)
func (a DurationSegment) Merge(edge measure.Duration, b DurationSegment) DurationSegment {
	atOther := a.Duration.Sub(a.TimeWarp).Add(edge)

	diffTw := measure.Max(a.TwEarly.Add(atOther).Sub(b.TwLate), 0)
	diffWait := measure.Max(b.TwEarly.Sub(atOther).Sub(a.TwLate), 0)

	return DurationSegment{
		IdxFirst:    a.IdxFirst,
		IdxLast:     b.IdxLast,
		Duration:    a.Duration.Add(b.Duration).Add(edge).Add(diffWait),
		TimeWarp:    a.TimeWarp.Add(b.TimeWarp).Add(diffTw),
		TwEarly:     measure.Max(b.TwEarly.Sub(atOther), a.TwEarly).Sub(diffWait),
		TwLate:      measure.Min(b.TwLate.Sub(atOther), a.TwLate).Add(diffTw),
		ReleaseTime: measure.Max(a.ReleaseTime, b.ReleaseTime),
	}
}

// TotalTimeWarp returns TimeWarp plus any release-induced warp: the amount
// by which ReleaseTime exceeds TwLate (the segment cannot start before
// release, so if release is later than the latest feasible start, that gap
// is itself unavoidable time warp).
func (a DurationSegment) TotalTimeWarp() measure.Duration {
	return a.TimeWarp.Add(measure.Max(a.ReleaseTime.Sub(a.TwLate), 0))
}

// MergeDurations folds Merge over a sequence of segments and their
// connecting edge durations. len(edges) must equal len(segs)-1; segs must
// be non-empty.
func MergeDurations(segs []DurationSegment, edges []measure.Duration) DurationSegment {
	acc := segs[0]
	for i := 1; i < len(segs); i++ {
		acc = acc.Merge(edges[i-1], segs[i])
	}
	return acc
}
