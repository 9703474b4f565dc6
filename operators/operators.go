// Package operators implements the node- and route-level local search moves
// that mutate a searchroute.Arena in place: Exchange<N,M> (relocation and
// swap), MoveTwoClientsReversed, TwoOpt, SwapStar, and RelocateStar.
//
// Grounded on tsp/two_opt.go's Δ = (a→c)+(b→d)−(a→b)−(c→d) textbook delta
// (TwoOpt's across-route tail-swap and within-route reversal both reuse the
// same shape) and on tsp/three_opt.go's evaluate/apply split for multi-edge
// reconnections. Evaluate prices a candidate move the way spec.md §4.2-§4.4
// describe: distance and per-dimension load are additive — no client carries
// a pickup/supply quantity, so a LoadSegment's MaxLoad over a whole route
// equals total demand, and capacity deltas reduce to arithmetic — so only
// the time-window term needs the segment algebra. Evaluate builds it by
// merging a route's cached Route.Before/After prefix/suffix
// DurationSegments with the candidate chain's own folded
// segment.DurationSegment (via searchroute.ClientSegment+Merge) and prices
// the result with costeval.CostEvaluator.SegmentCost, without mutating the
// arena or calling Route.Update(). Apply then performs the structural
// splice for real.
package operators

import (
	"fmt"
	"math"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/segment"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// NodeOperator evaluates and applies a move anchored at a client node u,
// relative to a neighbour node v (typically v ∈ neighbours[u]).
type NodeOperator interface {
	Name() string
	// Evaluate returns the change in total penalised cost were the move
	// applied, without mutating the arena, and whether the move is legal
	// at all (false means "not applicable to this (u,v) pair").
	Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, u, v int) (delta measure.Cost, ok bool)
	// Apply performs the move for real; callers must call Update() on every
	// route touched and must have just confirmed improvement via Evaluate.
	Apply(arena *searchroute.Arena, u, v int)
}

// RouteOperator evaluates and applies a move between two whole routes.
type RouteOperator interface {
	Name() string
	Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) (delta measure.Cost, ok bool)
	Apply(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int)
}

func round(v float64) measure.Cost { return measure.Cost(math.Round(v)) }

// routeCost prices one mutable Route from its cached aggregates, mirroring
// costeval.CostEvaluator.PenalisedCost's per-route term without requiring a
// materialized solution.Solution.
func routeCost(data *vrpdata.ProblemData, ce costeval.CostEvaluator, r *searchroute.Route) measure.Cost {
	if r.IsEmpty() {
		return 0
	}
	vt := data.VehicleType(r.VehicleType())
	total := measure.Cost(r.Distance()).Scale(vt.UnitDistanceCost).Add(measure.Cost(r.Duration()).Scale(vt.UnitDurationCost)).Add(vt.FixedCost)
	for _, e := range r.ExcessLoad() {
		total = total.Add(round(ce.LoadPenalty * float64(e)))
	}
	total = total.Add(round(ce.TimeWarpPenalty * float64(r.TimeWarp())))
	total = total.Add(round(ce.DistPenalty * float64(r.ExcessDistance())))
	return total
}

// pairCost sums the cost of two distinct routes, or of one route if they
// are the same (within-route move).
func pairCost(data *vrpdata.ProblemData, ce costeval.CostEvaluator, a, b *searchroute.Route) measure.Cost {
	if a.ID() == b.ID() {
		return routeCost(data, ce, a)
	}
	return routeCost(data, ce, a).Add(routeCost(data, ce, b))
}

func clientLoc(data *vrpdata.ProblemData, client int) int { return data.NumDepots() + client }

// clientChain collects n consecutive client node ids starting at start,
// following Next(); returns ok=false if the chain runs into a depot.
func clientChain(arena *searchroute.Arena, start, n int) ([]int, bool) {
	ids := make([]int, 0, n)
	cur := start
	for i := 0; i < n; i++ {
		node := arena.Node(cur)
		if node.IsDepot() {
			return nil, false
		}
		ids = append(ids, cur)
		cur = node.Next()
	}
	return ids, true
}

func contains(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// reverseIDs returns a new slice with ids in reverse order.
func reverseIDs(ids []int) []int {
	rev := make([]int, len(ids))
	for i, id := range ids {
		rev[len(ids)-1-i] = id
	}
	return rev
}

func addDemand(dst []measure.Load, src []measure.Load) {
	for d := range dst {
		dst[d] = dst[d].Add(src[d])
	}
}

// chainDescriptor is the folded, position-independent summary of a small,
// fixed-order sequence of clients: its internal distance, its merged
// DurationSegment, and its per-dimension demand. Built once per candidate
// chain and reused against every anchor it's priced at, realizing spec.md
// §4.3's "Before/After exist for use by operators" contract.
type chainDescriptor struct {
	dist     measure.Distance
	dur      segment.DurationSegment
	demand   []measure.Load
	firstLoc int
	lastLoc  int
}

// describeChain folds ids (in the given order) into a chainDescriptor: edge
// distances/durations between consecutive clients via data.Dist/data.Dur,
// time windows via searchroute.ClientSegment+Merge, demand by summation.
// ids must be non-empty and reference only client nodes.
func describeChain(data *vrpdata.ProblemData, arena *searchroute.Arena, ids []int) chainDescriptor {
	numDims := data.NumLoadDimensions()
	desc := chainDescriptor{demand: make([]measure.Load, numDims)}

	first := arena.Node(ids[0]).Client()
	desc.firstLoc = clientLoc(data, first)
	desc.lastLoc = desc.firstLoc
	desc.dur = searchroute.ClientSegment(data, first)
	addDemand(desc.demand, data.Client(first).Demand)

	prevLoc := desc.firstLoc
	for _, id := range ids[1:] {
		c := arena.Node(id).Client()
		loc := clientLoc(data, c)
		desc.dist = desc.dist.Add(data.Dist(prevLoc, loc))
		desc.dur = desc.dur.Merge(data.Dur(prevLoc, loc), searchroute.ClientSegment(data, c))
		addDemand(desc.demand, data.Client(c).Demand)
		prevLoc = loc
		desc.lastLoc = loc
	}
	return desc
}

func (c chainDescriptor) span() routeSpan {
	return routeSpan{dist: c.dist, dur: c.dur, demand: c.demand}
}

// routeSpan is a contiguous route fragment's folded (distance, duration,
// demand) summary: the common currency beforeSpan/afterSpan/betweenSpan and
// chainDescriptor.span all produce, so arbitrary fragments can be
// concatenated with mergeSpans regardless of where they came from.
type routeSpan struct {
	dist   measure.Distance
	dur    segment.DurationSegment
	demand []measure.Load
}

// mergeSpans folds spans left to right, looking up each connecting edge from
// the adjacent segments' IdxLast/IdxFirst (the same location-index
// convention clientLoc uses throughout). spans must be non-empty.
func mergeSpans(data *vrpdata.ProblemData, numDims int, spans []routeSpan) routeSpan {
	acc := spans[0]
	for _, s := range spans[1:] {
		edgeD := data.Dist(acc.dur.IdxLast, s.dur.IdxFirst)
		edgeT := data.Dur(acc.dur.IdxLast, s.dur.IdxFirst)
		demand := make([]measure.Load, numDims)
		for d := 0; d < numDims; d++ {
			demand[d] = acc.demand[d].Add(s.demand[d])
		}
		acc = routeSpan{
			dist:   acc.dist.Add(edgeD).Add(s.dist),
			dur:    acc.dur.Merge(edgeT, s.dur),
			demand: demand,
		}
	}
	return acc
}

func cumulatedLoadSlice(data *vrpdata.ProblemData, n *searchroute.Node) []measure.Load {
	out := make([]measure.Load, data.NumLoadDimensions())
	for d := range out {
		out[d] = n.CumulatedLoad(d)
	}
	return out
}

// beforeSpan returns the prefix fragment [0, i] of r, reading Route.Before
// for the time-window term and Node.CumulatedDistance/CumulatedLoad (both
// plain running sums) for distance and demand — all O(1).
func beforeSpan(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, i int) (routeSpan, bool) {
	dur, err := r.Before(i)
	if err != nil {
		return routeSpan{}, false
	}
	id, err := r.At(i)
	if err != nil {
		return routeSpan{}, false
	}
	n := arena.Node(id)
	return routeSpan{dist: n.CumulatedDistance(), dur: dur, demand: cumulatedLoadSlice(data, n)}, true
}

// afterSpan returns the suffix fragment [i, size+1] of r, derived from the
// route's cached totals minus the (O(1)) cumulated prefixes: the distance
// up to and including node i (the edge into i is not part of the suffix),
// and the demand up to node i-1.
func afterSpan(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, i int) (routeSpan, bool) {
	dur, err := r.After(i)
	if err != nil {
		return routeSpan{}, false
	}
	iID, err := r.At(i)
	if err != nil {
		return routeSpan{}, false
	}
	numDims := data.NumLoadDimensions()
	prevDemand := make([]measure.Load, numDims)
	if i > 0 {
		prevID, err := r.At(i - 1)
		if err != nil {
			return routeSpan{}, false
		}
		prevNode := arena.Node(prevID)
		prevDemand = cumulatedLoadSlice(data, prevNode)
	}
	demand := make([]measure.Load, numDims)
	total := r.TotalDemand()
	for d := 0; d < numDims; d++ {
		demand[d] = total[d].Sub(prevDemand[d])
	}
	return routeSpan{dist: r.Distance().Sub(arena.Node(iID).CumulatedDistance()), dur: dur, demand: demand}, true
}

// betweenSpan returns the fragment [i, j] of r via Route.Between (an O(span)
// re-walk — the one deliberately-bounded, not-O(1) piece of same-route
// relocation/swap pricing, matching Route.Between's own "used rarely"
// contract) plus the cumulated-prefix arithmetic for distance/demand.
func betweenSpan(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, i, j int) (routeSpan, bool) {
	dur, err := r.Between(i, j)
	if err != nil {
		return routeSpan{}, false
	}
	jID, err := r.At(j)
	if err != nil {
		return routeSpan{}, false
	}
	jNode := arena.Node(jID)
	iID, err := r.At(i)
	if err != nil {
		return routeSpan{}, false
	}
	numDims := data.NumLoadDimensions()
	prevDemand := make([]measure.Load, numDims)
	if i > 0 {
		prevID, err := r.At(i - 1)
		if err != nil {
			return routeSpan{}, false
		}
		prevNode := arena.Node(prevID)
		prevDemand = cumulatedLoadSlice(data, prevNode)
	}
	jDemand := cumulatedLoadSlice(data, jNode)
	demand := make([]measure.Load, numDims)
	for d := 0; d < numDims; d++ {
		demand[d] = jDemand[d].Sub(prevDemand[d])
	}
	return routeSpan{dist: jNode.CumulatedDistance().Sub(arena.Node(iID).CumulatedDistance()), dur: dur, demand: demand}, true
}

// costForSpans prices the whole route reconstructed from spans (concatenated
// in order) against vt; newSize is the route's client count after the edit,
// since an emptied route costs 0 regardless of its leftover depot-to-depot
// segment, mirroring routeCost's IsEmpty short-circuit.
func costForSpans(ce costeval.CostEvaluator, data *vrpdata.ProblemData, vt vrpdata.VehicleType, newSize int, spans []routeSpan) measure.Cost {
	if newSize == 0 {
		return 0
	}
	numDims := len(vt.Capacity)
	merged := mergeSpans(data, numDims, spans)
	loadSegs := make([]segment.LoadSegment, numDims)
	for d := 0; d < numDims; d++ {
		loadSegs[d] = segment.LoadSegment{Demand: merged.demand[d], MaxLoad: merged.demand[d]}
	}
	return ce.SegmentCost(segment.DistanceSegment{Distance: merged.dist}, merged.dur, loadSegs, vt.Capacity, vt).Add(vt.FixedCost)
}

// anchorAfterPosition translates "insert after afterID" into a position in
// chainRoute's current (pre-edit) indexing, redirecting to the chain's own
// predecessor slot (s-1) when afterID falls inside [s,e] of chainRoute —
// i.e. the candidate anchor turned out to be the chain being removed
// itself, or immediately follows it, which is a no-op move. afterID
// belonging to a different route entirely (the cross-route case) can never
// sit inside [s,e], so its own position is returned unchanged — positions
// are only ever compared within a single route, never across two.
func anchorAfterPosition(arena *searchroute.Arena, chainRoute *searchroute.Route, s, e int, afterID int) int {
	node := arena.Node(afterID)
	if node.Route() != chainRoute.ID() {
		return node.Position()
	}
	pos := node.Position()
	if pos >= s && pos <= e {
		return s - 1
	}
	return pos
}

// spansAfterRemove describes r after deleting the chain at positions [s, e]
// and inserting nothing in its place: a plain two-piece prefix/suffix join,
// O(1).
func spansAfterRemove(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, s, e int) ([]routeSpan, bool) {
	before, ok := beforeSpan(data, arena, r, s-1)
	if !ok {
		return nil, false
	}
	after, ok := afterSpan(data, arena, r, e+1)
	if !ok {
		return nil, false
	}
	return []routeSpan{before, after}, true
}

// spansAfterInsert describes r after splicing desc in, immediately after
// position pX, with nothing removed: a plain three-piece join, O(1).
func spansAfterInsert(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, desc chainDescriptor, pX int) ([]routeSpan, bool) {
	before, ok := beforeSpan(data, arena, r, pX)
	if !ok {
		return nil, false
	}
	after, ok := afterSpan(data, arena, r, pX+1)
	if !ok {
		return nil, false
	}
	return []routeSpan{before, desc.span(), after}, true
}

// spansAfterRelocate describes r after removing the chain at [s, e] and
// reinserting desc immediately after position pX (pX outside [s, e]). When
// pX falls strictly between the removal site and the insertion anchor, the
// untouched middle is folded in via betweenSpan — the one O(span), not
// O(1), piece; adjacent or same-slot moves (the common case) skip it
// entirely.
func spansAfterRelocate(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, s, e int, desc chainDescriptor, pX int) ([]routeSpan, bool) {
	if pX < s {
		before, ok := beforeSpan(data, arena, r, pX)
		if !ok {
			return nil, false
		}
		spans := []routeSpan{before, desc.span()}
		if pX+1 <= s-1 {
			mid, ok := betweenSpan(data, arena, r, pX+1, s-1)
			if !ok {
				return nil, false
			}
			spans = append(spans, mid)
		}
		after, ok := afterSpan(data, arena, r, e+1)
		if !ok {
			return nil, false
		}
		return append(spans, after), true
	}

	before, ok := beforeSpan(data, arena, r, s-1)
	if !ok {
		return nil, false
	}
	spans := []routeSpan{before}
	if e+1 <= pX {
		mid, ok := betweenSpan(data, arena, r, e+1, pX)
		if !ok {
			return nil, false
		}
		spans = append(spans, mid)
	}
	after, ok := afterSpan(data, arena, r, pX+1)
	if !ok {
		return nil, false
	}
	spans = append(spans, desc.span(), after)
	return spans, true
}

// spansAfterSwapSameRoute describes r after two disjoint chains exchange
// slots: [s1, e1] (currently descA) receives descB, and [s2, e2] (currently
// descB) receives descA. Requires s1 < s2.
func spansAfterSwapSameRoute(data *vrpdata.ProblemData, arena *searchroute.Arena, r *searchroute.Route, s1, e1 int, descA chainDescriptor, s2, e2 int, descB chainDescriptor) ([]routeSpan, bool) {
	before, ok := beforeSpan(data, arena, r, s1-1)
	if !ok {
		return nil, false
	}
	spans := []routeSpan{before, descB.span()}
	if e1+1 <= s2-1 {
		mid, ok := betweenSpan(data, arena, r, e1+1, s2-1)
		if !ok {
			return nil, false
		}
		spans = append(spans, mid)
	}
	after, ok := afterSpan(data, arena, r, e2+1)
	if !ok {
		return nil, false
	}
	spans = append(spans, descA.span(), after)
	return spans, true
}

// Exchange moves N consecutive clients starting at u into v's route
// (optionally exchanging in M consecutive clients starting at v, when
// M > 0). N=0 is invalid; M=0 degenerates to a pure relocation, per
// spec.md §4.4.
type Exchange struct {
	N, M int
}

// Name returns "Exchange<N,M>".
func (e Exchange) Name() string { return fmt.Sprintf("Exchange<%d,%d>", e.N, e.M) }

// Evaluate prices the exchange by segment concatenation instead of
// speculative mutation: removing the U-chain (and, when M>0, the V-chain)
// and splicing the other chain in at the vacated anchor, reusing each
// route's cached Before/After prefix/suffix DurationSegments. Cross-route
// moves never need Route.Between (the replacement chain fills the very slot
// the original one vacated); same-route relocation and same-route swaps use
// it only for the span between the two edit sites.
func (e Exchange) Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, u, v int) (measure.Cost, bool) {
	uChain, ok := clientChain(arena, u, e.N)
	if !ok {
		return 0, false
	}
	var vChain []int
	if e.M > 0 {
		vChain, ok = clientChain(arena, v, e.M)
		if !ok {
			return 0, false
		}
		if contains(vChain, u) || contains(uChain, v) {
			return 0, false // overlapping chains
		}
	} else if contains(uChain, v) {
		return 0, false
	}

	uNode, vNode := arena.Node(u), arena.Node(v)
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())
	before := pairCost(data, ce, ru, rv)

	su, eu := uNode.Position(), arena.Node(uChain[len(uChain)-1]).Position()
	uDesc := describeChain(data, arena, uChain)
	vt := data.VehicleType(ru.VehicleType())

	if ru.ID() != rv.ID() {
		vtV := data.VehicleType(rv.VehicleType())
		var ruSpans, rvSpans []routeSpan
		var ok1, ok2 bool
		newSizeU := ru.Size() - e.N
		newSizeV := rv.Size()

		if e.M == 0 {
			ruSpans, ok1 = spansAfterRemove(data, arena, ru, su, eu)
			anchor := anchorAfterPosition(arena, ru, su, eu, vNode.Prev())
			rvSpans, ok2 = spansAfterInsert(data, arena, rv, uDesc, anchor)
			newSizeV += e.N
		} else {
			vDesc := describeChain(data, arena, vChain)
			sv, ev := vNode.Position(), arena.Node(vChain[len(vChain)-1]).Position()
			ruSpans, ok1 = spansAfterRelocate(data, arena, ru, su, eu, vDesc, su-1)
			rvSpans, ok2 = spansAfterRelocate(data, arena, rv, sv, ev, uDesc, sv-1)
			newSizeU += e.M
			newSizeV = rv.Size() - e.M + e.N
		}
		if !ok1 || !ok2 {
			return 0, false
		}
		afterU := costForSpans(ce, data, vt, newSizeU, ruSpans)
		afterV := costForSpans(ce, data, vtV, newSizeV, rvSpans)
		return afterU.Add(afterV).Sub(before), true
	}

	// Same route.
	if e.M == 0 {
		anchor := anchorAfterPosition(arena, ru, su, eu, vNode.Prev())
		spans, ok := spansAfterRelocate(data, arena, ru, su, eu, uDesc, anchor)
		if !ok {
			return 0, false
		}
		after := costForSpans(ce, data, vt, ru.Size(), spans)
		return after.Sub(before), true
	}

	vDesc := describeChain(data, arena, vChain)
	sv, ev := vNode.Position(), arena.Node(vChain[len(vChain)-1]).Position()
	var spans []routeSpan
	var ok2 bool
	if su < sv {
		spans, ok2 = spansAfterSwapSameRoute(data, arena, ru, su, eu, uDesc, sv, ev, vDesc)
	} else {
		spans, ok2 = spansAfterSwapSameRoute(data, arena, ru, sv, ev, vDesc, su, eu, uDesc)
	}
	if !ok2 {
		return 0, false
	}
	after := costForSpans(ce, data, vt, ru.Size(), spans)
	return after.Sub(before), true
}

// Apply performs the same splice as Evaluate, without reverting. Anchor node
// ids are resolved to positions via anchorAfterPosition before anything is
// removed, so an anchor that falls inside the chain being vacated (the
// degenerate case where u's and v's chains are directly adjacent) redirects
// to the stable predecessor slot instead of being detached out from under
// the splice. When both chains are in the same route and collapse onto the
// same shared anchor (the adjacent case), the two insertChain calls must run
// in the order that puts the originally-later chain's replacement down
// first, or the swap degenerates into a no-op.
func (e Exchange) Apply(arena *searchroute.Arena, u, v int) {
	uChain, ok := clientChain(arena, u, e.N)
	if !ok {
		return
	}
	var vChain []int
	if e.M > 0 {
		vChain, ok = clientChain(arena, v, e.M)
		if !ok {
			return
		}
	}

	uNode, vNode := arena.Node(u), arena.Node(v)
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())
	su, eu := uNode.Position(), arena.Node(uChain[len(uChain)-1]).Position()

	vAnchorPos := anchorAfterPosition(arena, ru, su, eu, arena.Node(v).Prev())

	if e.M == 0 {
		vInsertAfter, err := rv.At(vAnchorPos)
		if err != nil {
			return
		}
		for _, id := range uChain {
			_ = ru.RemoveNode(id)
		}
		insertChain(arena, rv, vInsertAfter, uChain)
		return
	}

	sv, ev := vNode.Position(), arena.Node(vChain[len(vChain)-1]).Position()
	uAnchorPos := anchorAfterPosition(arena, rv, sv, ev, arena.Node(uChain[0]).Prev())

	vInsertAfter, errV := rv.At(vAnchorPos)
	uAnchorPrev, errU := ru.At(uAnchorPos)
	if errV != nil || errU != nil {
		return
	}

	for _, id := range uChain {
		_ = ru.RemoveNode(id)
	}
	for _, id := range vChain {
		_ = rv.RemoveNode(id)
	}

	if ru.ID() == rv.ID() && sv < su {
		insertChain(arena, ru, uAnchorPrev, vChain)
		insertChain(arena, rv, vInsertAfter, uChain)
	} else {
		insertChain(arena, rv, vInsertAfter, uChain)
		insertChain(arena, ru, uAnchorPrev, vChain)
	}
}

// insertChain splices ids, in order, immediately after afterID within route r.
func insertChain(arena *searchroute.Arena, r *searchroute.Route, afterID int, ids []int) {
	cursor := afterID
	for _, id := range ids {
		_ = r.InsertAfter(cursor, id)
		cursor = id
	}
}

// MoveTwoClientsReversed relocates the pair (u, next(u)) after v, in
// reversed order, per spec.md §4.4.
type MoveTwoClientsReversed struct{}

// Name returns the operator's name.
func (MoveTwoClientsReversed) Name() string { return "MoveTwoClientsReversed" }

// Evaluate prices the reversed relocation via segment concatenation: the
// reversed pair's own DurationSegment is folded once (describeChain on the
// reversed ids) and then spliced in after v the same way Exchange splices
// its chains.
func (MoveTwoClientsReversed) Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, u, v int) (measure.Cost, bool) {
	chain, ok := clientChain(arena, u, 2)
	if !ok || contains(chain, v) {
		return 0, false
	}

	uNode, vNode := arena.Node(u), arena.Node(v)
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())
	before := pairCost(data, ce, ru, rv)

	s, e := uNode.Position(), arena.Node(chain[1]).Position()
	desc := describeChain(data, arena, reverseIDs(chain))

	if ru.ID() != rv.ID() {
		vtU := data.VehicleType(ru.VehicleType())
		vtV := data.VehicleType(rv.VehicleType())
		ruSpans, ok1 := spansAfterRemove(data, arena, ru, s, e)
		anchor := anchorAfterPosition(arena, ru, s, e, v)
		rvSpans, ok2 := spansAfterInsert(data, arena, rv, desc, anchor)
		if !ok1 || !ok2 {
			return 0, false
		}
		afterU := costForSpans(ce, data, vtU, ru.Size()-2, ruSpans)
		afterV := costForSpans(ce, data, vtV, rv.Size()+2, rvSpans)
		return afterU.Add(afterV).Sub(before), true
	}

	vt := data.VehicleType(ru.VehicleType())
	anchor := anchorAfterPosition(arena, ru, s, e, v)
	spans, ok2 := spansAfterRelocate(data, arena, ru, s, e, desc, anchor)
	if !ok2 {
		return 0, false
	}
	after := costForSpans(ce, data, vt, ru.Size(), spans)
	return after.Sub(before), true
}

// Apply performs the relocate-reversed move for real.
func (MoveTwoClientsReversed) Apply(arena *searchroute.Arena, u, v int) {
	chain, ok := clientChain(arena, u, 2)
	if !ok {
		return
	}
	uNode, vNode := arena.Node(u), arena.Node(v)
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())

	for _, id := range chain {
		_ = ru.RemoveNode(id)
	}
	insertChain(arena, rv, v, []int{chain[1], chain[0]})
}

// TwoOpt reverses the segment between two clients within a route, or
// exchanges route tails between two routes, per spec.md §4.4.
type TwoOpt struct{}

// Name returns the operator's name.
func (TwoOpt) Name() string { return "TwoOpt" }

// Evaluate computes the 2-opt delta for (u,v) without mutating the arena.
// Within one route, the reversed middle segment's own DurationSegment is
// folded once (O(reversed length), the bounded piece a route reversal
// cannot avoid) and spliced between the route's cached Before(u)/After(v+1)
// spans. Across routes, the tail exchanged past u and past v is exactly
// each route's cached After span, so the whole evaluation is O(1): the
// cross-route case never touches Route.Between at all.
func (TwoOpt) Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, u, v int) (measure.Cost, bool) {
	uNode, vNode := arena.Node(u), arena.Node(v)
	if uNode.IsDepot() || vNode.IsDepot() || u == v {
		return 0, false
	}
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())

	if ru.ID() == rv.ID() {
		pu, pv := uNode.Position(), vNode.Position()
		if pu >= pv {
			return 0, false // the symmetric (v,u) call handles this ordering
		}
		nu, nv := uNode.Next(), vNode.Next()
		if nu == v || nv == u || nu == nv {
			return 0, false
		}

		before := routeCost(data, ce, ru)
		vt := data.VehicleType(ru.VehicleType())

		mid := make([]int, 0, pv-pu)
		for pos := pu + 1; pos <= pv; pos++ {
			id, err := ru.At(pos)
			if err != nil {
				return 0, false
			}
			mid = append(mid, id)
		}
		desc := describeChain(data, arena, reverseIDs(mid))

		head, ok := beforeSpan(data, arena, ru, pu)
		if !ok {
			return 0, false
		}
		tail, ok := afterSpan(data, arena, ru, pv+1)
		if !ok {
			return 0, false
		}

		after := costForSpans(ce, data, vt, ru.Size(), []routeSpan{head, desc.span(), tail})
		return after.Sub(before), true
	}

	before := pairCost(data, ce, ru, rv)
	vtU := data.VehicleType(ru.VehicleType())
	vtV := data.VehicleType(rv.VehicleType())
	pu, pv := uNode.Position(), vNode.Position()

	headU, ok := beforeSpan(data, arena, ru, pu)
	if !ok {
		return 0, false
	}
	headV, ok := beforeSpan(data, arena, rv, pv)
	if !ok {
		return 0, false
	}
	tailU, ok := afterSpan(data, arena, ru, pu+1)
	if !ok {
		return 0, false
	}
	tailV, ok := afterSpan(data, arena, rv, pv+1)
	if !ok {
		return 0, false
	}

	newSizeU := pu + (rv.Size() - pv)
	newSizeV := pv + (ru.Size() - pu)

	afterU := costForSpans(ce, data, vtU, newSizeU, []routeSpan{headU, tailV})
	afterV := costForSpans(ce, data, vtV, newSizeV, []routeSpan{headV, tailU})
	return afterU.Add(afterV).Sub(before), true
}

// Apply performs the 2-opt move for real (no revert).
func (t TwoOpt) Apply(arena *searchroute.Arena, u, v int) {
	uNode, vNode := arena.Node(u), arena.Node(v)
	ru, rv := arena.Route(uNode.Route()), arena.Route(vNode.Route())
	if ru.ID() == rv.ID() {
		t.applyWithinRoute(arena, ru, u, v)
		return
	}
	t.applyAcrossRoutes(arena, ru, rv, u, v)
}

// applyWithinRoute reverses the chain strictly between u and v (exclusive
// of u, inclusive of v), by detaching each node and reinserting it
// immediately after u in reverse visit order.
func (TwoOpt) applyWithinRoute(arena *searchroute.Arena, r *searchroute.Route, u, v int) {
	var mid []int
	cur := arena.Node(u).Next()
	for {
		mid = append(mid, cur)
		if cur == v {
			break
		}
		cur = arena.Node(cur).Next()
	}
	for _, id := range mid {
		_ = r.RemoveNode(id)
	}
	cursor := u
	for i := len(mid) - 1; i >= 0; i-- {
		_ = r.InsertAfter(cursor, mid[i])
		cursor = mid[i]
	}
}

// applyAcrossRoutes swaps the tails of two routes after u and after v: the
// chain from n(u) to ru's end depot is moved to follow v in rv, and
// symmetrically.
func (TwoOpt) applyAcrossRoutes(arena *searchroute.Arena, ru, rv *searchroute.Route, u, v int) {
	var tailU []int
	for cur := arena.Node(u).Next(); !arena.Node(cur).IsDepot(); cur = arena.Node(cur).Next() {
		tailU = append(tailU, cur)
	}
	var tailV []int
	for cur := arena.Node(v).Next(); !arena.Node(cur).IsDepot(); cur = arena.Node(cur).Next() {
		tailV = append(tailV, cur)
	}
	for _, id := range tailU {
		_ = ru.RemoveNode(id)
	}
	for _, id := range tailV {
		_ = rv.RemoveNode(id)
	}
	insertChain(arena, rv, v, tailU)
	insertChain(arena, ru, u, tailV)
}
