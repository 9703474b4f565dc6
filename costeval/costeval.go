// Package costeval computes the penalised objective: distance and duration
// cost plus per-use vehicle fixed costs, minus collected prizes, plus linear
// penalties for excess load and time warp. It is also the one place that
// knows how to price a bare segment.DistanceSegment/DurationSegment/
// LoadSegment triple without building a full solution.Solution, which is
// what the local-search operators need for O(1) delta-cost evaluation.
//
// Grounded on tsp/cost.go's TourCost (a small, final "price this thing"
// function with a stable rounding discipline), generalized from a single
// distance sum to a multi-term penalised objective.
package costeval

import (
	"math"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/segment"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// CostEvaluator prices solutions and segments under a fixed set of penalty
// coefficients. It holds no mutable state; a new value with different
// coefficients is created whenever penalty.Manager adjusts them.
type CostEvaluator struct {
	LoadPenalty     float64 // cost per unit excess load, per dimension
	TimeWarpPenalty float64 // cost per unit time warp
	DistPenalty     float64 // cost per unit excess distance
}

// New returns a CostEvaluator with the given penalty coefficients.
func New(loadPenalty, timeWarpPenalty, distPenalty float64) CostEvaluator {
	return CostEvaluator{LoadPenalty: loadPenalty, TimeWarpPenalty: timeWarpPenalty, DistPenalty: distPenalty}
}

// round rounds a float64 cost to the nearest integer Cost unit, matching
// tsp/cost.go's 1e-9-stable rounding discipline adapted to integer Cost.
func round(v float64) measure.Cost { return measure.Cost(math.Round(v)) }

// PenalisedCost returns the full penalised objective of a Solution:
//
//	Σ_routes (distanceCost + durationCost + fixedCost) − Σ_routes prizes
//	  + loadPenalty · Σ excessLoad[d]
//	  + timeWarpPenalty · timeWarp
//	  + distPenalty · Σ excessDistance
func (ce CostEvaluator) PenalisedCost(data *vrpdata.ProblemData, sol *solution.Solution) measure.Cost {
	var total measure.Cost
	var excessDist measure.Distance

	for _, r := range sol.Routes() {
		vt := data.VehicleType(r.VehicleType)
		total = total.Add(r.DistanceCost).Add(r.DurationCost).Add(vt.FixedCost).Sub(r.Prizes)
		excessDist = excessDist.Add(r.ExcessDistance)
	}

	for _, e := range sol.ExcessLoad() {
		total = total.Add(round(ce.LoadPenalty * float64(e)))
	}
	total = total.Add(round(ce.TimeWarpPenalty * float64(sol.TimeWarp())))
	total = total.Add(round(ce.DistPenalty * float64(excessDist)))

	return total
}

// FeasibilityCost returns the feasibility-violation portion only (no
// distance/duration/fixed-cost/prize terms): useful for PenaltyManager's
// feasibility-rate bookkeeping, and for deciding whether a delta-cost
// evaluation should continue past an early-exit lower bound.
func (ce CostEvaluator) FeasibilityCost(excessLoad []measure.Load, timeWarp measure.Duration, excessDistance measure.Distance) measure.Cost {
	var total measure.Cost
	for _, e := range excessLoad {
		total = total.Add(round(ce.LoadPenalty * float64(e)))
	}
	total = total.Add(round(ce.TimeWarpPenalty * float64(timeWarp)))
	total = total.Add(round(ce.DistPenalty * float64(excessDistance)))
	return total
}

// SegmentCost prices a bare concatenation candidate described by its merged
// distance, duration, and per-dimension load segments, against a vehicle
// type's capacities and unit costs. This is the function every local-search
// operator calls to price a proposed route rearrangement in O(1): the
// caller merges the relevant segments first (segment.Merge*), then hands
// the merged result here instead of materializing a solution.Solution.
func (ce CostEvaluator) SegmentCost(dist segment.DistanceSegment, dur segment.DurationSegment, loads []segment.LoadSegment, capacities []measure.Load, vt vrpdata.VehicleType) measure.Cost {
	total := measure.Cost(dist.Distance).Scale(vt.UnitDistanceCost).Add(measure.Cost(dur.Duration).Scale(vt.UnitDurationCost))

	excessDist := measure.Distance(0)
	if vt.HasMaxDistance {
		excessDist = measure.Max(dist.Distance.Sub(vt.MaxDistance), 0)
	}

	for i, l := range loads {
		total = total.Add(round(ce.LoadPenalty * float64(l.ExcessLoad(capacities[i]))))
	}
	total = total.Add(round(ce.TimeWarpPenalty * float64(dur.TotalTimeWarp())))
	total = total.Add(round(ce.DistPenalty * float64(excessDist)))

	return total
}
