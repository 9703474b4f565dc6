package operators

import (
	"sort"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// swapStarCandidatesPerClient is the number of cheapest insertion positions
// cached per client, per spec.md §4.4's "cache the three best insertion
// positions in each route".
const swapStarCandidatesPerClient = 3

// routeClients returns the client node ids of r, in visit order.
func routeClients(arena *searchroute.Arena, r *searchroute.Route) []int {
	ids := make([]int, 0, r.Size())
	start, _ := r.At(0)
	cur := arena.Node(start).Next()
	for !arena.Node(cur).IsDepot() {
		ids = append(ids, cur)
		cur = arena.Node(cur).Next()
	}
	return ids
}

// anchorCandidate is one scored insertion position: afterID is the node id
// a relocated client/chain would be spliced in after, delta is the pure
// insertion cost into that route alone (no removal-side cost, since that
// depends on which route the client comes from).
type anchorCandidate struct {
	afterID int
	delta   measure.Cost
}

// bestInsertionPositions scores inserting desc (a chainLen-client chain)
// immediately after every existing node in r via a single Before/After
// segment lookup apiece — O(1) per position, never an apply/Update()/revert
// pass — and returns the k cheapest, realizing spec.md §4.4's "cache the
// three best insertion positions... evaluate all pairs in O(|U|·|V|) cheap
// lookups" requirement.
func bestInsertionPositions(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, r *searchroute.Route, desc chainDescriptor, chainLen, k int) []anchorCandidate {
	vt := data.VehicleType(r.VehicleType())
	before := routeCost(data, ce, r)
	newSize := r.Size() + chainLen

	candidates := make([]anchorCandidate, 0, r.Size()+1)
	for pos := 0; pos <= r.Size(); pos++ {
		afterID, err := r.At(pos)
		if err != nil {
			continue
		}
		spans, ok := spansAfterInsert(data, arena, r, desc, pos)
		if !ok {
			continue
		}
		after := costForSpans(ce, data, vt, newSize, spans)
		candidates = append(candidates, anchorCandidate{afterID: afterID, delta: after.Sub(before)})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].delta < candidates[j].delta })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// SwapStar considers exchanging client u∈U with client v∈V, choosing each
// client's reinsertion position in the other route from that client's
// cached cheapest candidates, per spec.md §4.4. Candidate positions are
// cached once per client against the routes' current (pre-swap) contents;
// evaluating a specific (u,v,anchor) combination then recomputes the real
// removal+insertion delta via segment concatenation (never apply/Update()/
// revert), correcting for the one candidate anchor that can go stale — the
// node being removed from the same route as the anchor.
type SwapStar struct{}

// Name returns the operator's name.
func (SwapStar) Name() string { return "SwapStar" }

type swapStarCandidate struct {
	u, v     int
	afterInV int
	afterInU int
	delta    measure.Cost
}

// Evaluate scans all client pairs between the two routes and returns the
// delta of the single best improving swap found, or ok=false if none
// improves.
func (SwapStar) Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) (measure.Cost, bool) {
	best, found := bestSwapStar(data, ce, arena, routeU, routeV)
	if !found {
		return 0, false
	}
	return best.delta, true
}

// Apply re-derives and applies the same best candidate Evaluate found.
// Re-deriving is deterministic given unchanged route contents, so calling
// Apply immediately after a confirming Evaluate reproduces the same move.
func (SwapStar) Apply(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) {
	best, found := bestSwapStar(data, ce, arena, routeU, routeV)
	if !found {
		return
	}
	ru, rv := arena.Route(routeU), arena.Route(routeV)
	_ = ru.RemoveNode(best.u)
	_ = rv.RemoveNode(best.v)
	_ = rv.InsertAfter(best.afterInV, best.u)
	_ = ru.InsertAfter(best.afterInU, best.v)
	ru.Update()
	rv.Update()
}

func bestSwapStar(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) (swapStarCandidate, bool) {
	ru, rv := arena.Route(routeU), arena.Route(routeV)
	if ru.IsEmpty() || rv.IsEmpty() {
		return swapStarCandidate{}, false
	}
	before := pairCost(data, ce, ru, rv)
	vtU := data.VehicleType(ru.VehicleType())
	vtV := data.VehicleType(rv.VehicleType())

	uClients := routeClients(arena, ru)
	vClients := routeClients(arena, rv)

	// Cache each client's cheapest insertion positions into the OTHER
	// route, against that route's current (pre-swap) contents.
	uAnchors := make(map[int][]anchorCandidate, len(uClients))
	for _, u := range uClients {
		desc := describeChain(data, arena, []int{u})
		uAnchors[u] = bestInsertionPositions(data, ce, arena, rv, desc, 1, swapStarCandidatesPerClient)
	}
	vAnchors := make(map[int][]anchorCandidate, len(vClients))
	for _, v := range vClients {
		desc := describeChain(data, arena, []int{v})
		vAnchors[v] = bestInsertionPositions(data, ce, arena, ru, desc, 1, swapStarCandidatesPerClient)
	}

	var best swapStarCandidate
	bestDelta := measure.Cost(0)
	found := false

	for _, u := range uClients {
		su := arena.Node(u).Position()
		uDesc := describeChain(data, arena, []int{u})

		for _, v := range vClients {
			sv := arena.Node(v).Position()
			vDesc := describeChain(data, arena, []int{v})

			for _, va := range vAnchors[v] {
				anchorU := anchorAfterPosition(arena, ru, su, su, va.afterID)
				ruSpans, ok1 := spansAfterRelocate(data, arena, ru, su, su, vDesc, anchorU)
				if !ok1 {
					continue
				}
				afterU := costForSpans(ce, data, vtU, ru.Size(), ruSpans)

				for _, ua := range uAnchors[u] {
					anchorV := anchorAfterPosition(arena, rv, sv, sv, ua.afterID)
					rvSpans, ok2 := spansAfterRelocate(data, arena, rv, sv, sv, uDesc, anchorV)
					if !ok2 {
						continue
					}
					afterV := costForSpans(ce, data, vtV, rv.Size(), rvSpans)

					delta := afterU.Add(afterV).Sub(before)
					if !found || delta < bestDelta {
						anchorVID, err1 := rv.At(anchorV)
						anchorUID, err2 := ru.At(anchorU)
						if err1 != nil || err2 != nil {
							continue
						}
						found = true
						bestDelta = delta
						best = swapStarCandidate{u: u, v: v, afterInV: anchorVID, afterInU: anchorUID, delta: delta}
					}
				}
			}
		}
	}

	if !found || bestDelta >= 0 {
		return swapStarCandidate{}, false
	}
	return best, true
}

// RelocateStar is the best (1,0)-exchange between U and V: relocate a
// single client from U into V at its best candidate position, per
// spec.md §4.4. Both the removal (a two-piece prefix/suffix join) and the
// insertion (a three-piece prefix/chain/suffix join) are O(1) — RelocateStar
// never touches Route.Between, since U and V are always distinct routes.
type RelocateStar struct{}

// Name returns the operator's name.
func (RelocateStar) Name() string { return "RelocateStar" }

type relocateStarCandidate struct {
	client  int
	afterIn int
	delta   measure.Cost
}

func bestRelocateStar(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) (relocateStarCandidate, bool) {
	ru, rv := arena.Route(routeU), arena.Route(routeV)
	if ru.IsEmpty() {
		return relocateStarCandidate{}, false
	}
	before := pairCost(data, ce, ru, rv)
	vtU := data.VehicleType(ru.VehicleType())
	vtV := data.VehicleType(rv.VehicleType())
	uClients := routeClients(arena, ru)

	var best relocateStarCandidate
	bestDelta := measure.Cost(0)
	found := false

	for _, u := range uClients {
		su := arena.Node(u).Position()
		desc := describeChain(data, arena, []int{u})

		ruSpans, ok := spansAfterRemove(data, arena, ru, su, su)
		if !ok {
			continue
		}
		afterU := costForSpans(ce, data, vtU, ru.Size()-1, ruSpans)

		for _, cand := range bestInsertionPositions(data, ce, arena, rv, desc, 1, swapStarCandidatesPerClient) {
			pos := arena.Node(cand.afterID).Position()
			rvSpans, ok := spansAfterInsert(data, arena, rv, desc, pos)
			if !ok {
				continue
			}
			afterV := costForSpans(ce, data, vtV, rv.Size()+1, rvSpans)

			delta := afterU.Add(afterV).Sub(before)
			if !found || delta < bestDelta {
				found = true
				bestDelta = delta
				best = relocateStarCandidate{client: u, afterIn: cand.afterID, delta: delta}
			}
		}
	}

	if !found || bestDelta >= 0 {
		return relocateStarCandidate{}, false
	}
	return best, true
}

// Evaluate returns the delta of the best single-client relocation from U
// to V, or ok=false if none improves.
func (RelocateStar) Evaluate(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) (measure.Cost, bool) {
	best, found := bestRelocateStar(data, ce, arena, routeU, routeV)
	if !found {
		return 0, false
	}
	return best.delta, true
}

// Apply re-derives and applies the same best candidate Evaluate found.
func (RelocateStar) Apply(data *vrpdata.ProblemData, ce costeval.CostEvaluator, arena *searchroute.Arena, routeU, routeV int) {
	best, found := bestRelocateStar(data, ce, arena, routeU, routeV)
	if !found {
		return
	}
	ru, rv := arena.Route(routeU), arena.Route(routeV)
	_ = ru.RemoveNode(best.client)
	_ = rv.InsertAfter(best.afterIn, best.client)
	ru.Update()
	rv.Update()
}
