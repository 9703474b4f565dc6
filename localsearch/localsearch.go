package localsearch

import (
	"math/rand"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/operators"
	"github.com/katalvlaran/hgsvrp/rng"
	"github.com/katalvlaran/hgsvrp/searchroute"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// overlapTolerance bounds how close two routes' centroid angles must be
// (as a fraction of 2π) before route-operators are attempted between them,
// per spec.md §4.3's overlapsWith pruning.
const overlapTolerance = 0.25

// LocalSearch coordinates the granular node-operator pass ("search") and
// route-operator pass ("intensify") over a searchroute.Arena, using
// don't-look bits so repeated passes over a stable solution are cheap.
// Grounded on original_source/hgs/src/LocalSearch.cpp's search()/intensify()
// loop shape, realized with tsp/two_opt.go's shuffle-then-scan idiom.
type LocalSearch struct {
	data       *vrpdata.ProblemData
	ce         costeval.CostEvaluator
	neighbours [][]int
	nodeOps    []operators.NodeOperator
	routeOps   []operators.RouteOperator

	lastModifiedRoute map[int]int
	lastTestedNode    map[int]int
}

// Option configures a LocalSearch at construction.
type Option func(*LocalSearch)

// WithNodeOperators overrides the default node-operator set.
func WithNodeOperators(ops ...operators.NodeOperator) Option {
	return func(ls *LocalSearch) { ls.nodeOps = ops }
}

// WithRouteOperators overrides the default route-operator set.
func WithRouteOperators(ops ...operators.RouteOperator) Option {
	return func(ls *LocalSearch) { ls.routeOps = ops }
}

// New builds a LocalSearch over data, using neighbours as the precomputed
// granular neighbour lists (see ComputeNeighbours) and ce to price moves.
func New(data *vrpdata.ProblemData, ce costeval.CostEvaluator, neighbours [][]int, opts ...Option) *LocalSearch {
	ls := &LocalSearch{
		data:       data,
		ce:         ce,
		neighbours: neighbours,
		nodeOps: []operators.NodeOperator{
			operators.Exchange{N: 1, M: 0},
			operators.Exchange{N: 2, M: 0},
			operators.Exchange{N: 1, M: 1},
			operators.MoveTwoClientsReversed{},
			operators.TwoOpt{},
		},
		routeOps:          []operators.RouteOperator{operators.SwapStar{}, operators.RelocateStar{}},
		lastModifiedRoute: make(map[int]int),
		lastTestedNode:    make(map[int]int),
	}
	for _, o := range opts {
		o(ls)
	}
	return ls
}

// Run repeatedly alternates a node-operator pass and a route-operator pass
// over arena until neither improves, per spec.md §4.4.
func (ls *LocalSearch) Run(arena *searchroute.Arena, r *rand.Rand) {
	for {
		improvedNodes := ls.search(arena, r)
		improvedRoutes := ls.intensify(arena, r)
		if !improvedNodes && !improvedRoutes {
			return
		}
	}
}

// SearchOnly runs the node-operator pass to convergence without the
// route-operator intensification pass, for callers that gate intensify
// behind spec.md §6's shouldIntensify option (ga.GeneticAlgorithm.educate
// only intensifies feasible, new-best children).
func (ls *LocalSearch) SearchOnly(arena *searchroute.Arena, r *rand.Rand) {
	for ls.search(arena, r) {
	}
}

// search performs one or more full passes of the node-operator loop until a
// full pass makes no improving move; returns whether any move was applied
// across all passes.
func (ls *LocalSearch) search(arena *searchroute.Arena, r *rand.Rand) bool {
	anyImproved := false
	for {
		clientOrder := rng.PermRange(ls.data.NumClients(), r)
		opOrder := rng.PermRange(len(ls.nodeOps), r)

		improvedThisPass := false
		for _, u := range clientOrder {
			uNode := arena.Node(u)
			if uNode.Route() < 0 {
				continue // unrouted: insertion handled by the GA's repair step, not here
			}
			if last, tested := ls.lastTestedNode[u]; tested && last >= ls.maxNeighbourLastModified(arena, u) {
				continue // don't-look bit: nothing near u changed since it was last tested
			}

			moved := false
			for _, v := range ls.neighbours[u] {
				vNode := arena.Node(v)
				if vNode.Route() < 0 || v == u {
					continue
				}
				for _, oi := range opOrder {
					op := ls.nodeOps[oi]
					if ls.tryApply(op, arena, u, v) {
						moved = true
						improvedThisPass = true
						break
					}
					if ls.tryApply(op, arena, v, u) {
						moved = true
						improvedThisPass = true
						break
					}
				}
				if moved {
					break
				}
			}
			ls.lastTestedNode[u] = arena.NumMoves()
		}

		if improvedThisPass {
			anyImproved = true
		} else {
			return anyImproved
		}
	}
}

// tryApply evaluates op(u,v); if strictly improving, applies it for real
// and updates the affected routes' caches.
func (ls *LocalSearch) tryApply(op operators.NodeOperator, arena *searchroute.Arena, u, v int) bool {
	delta, ok := op.Evaluate(ls.data, ls.ce, arena, u, v)
	if !ok || delta >= 0 {
		return false
	}
	op.Apply(arena, u, v)
	ru := arena.Route(arena.Node(u).Route())
	ru.Update()
	if rv := arena.Route(arena.Node(v).Route()); rv.ID() != ru.ID() {
		rv.Update()
	}
	return true
}

// maxNeighbourLastModified returns the most recent move counter among u's
// own route and its neighbours' routes, for the don't-look-bit check.
func (ls *LocalSearch) maxNeighbourLastModified(arena *searchroute.Arena, u int) int {
	max := 0
	if r := arena.Node(u).Route(); r >= 0 {
		if m := arena.Route(r).LastModified(); m > max {
			max = m
		}
	}
	for _, v := range ls.neighbours[u] {
		if r := arena.Node(v).Route(); r >= 0 {
			if m := arena.Route(r).LastModified(); m > max {
				max = m
			}
		}
	}
	return max
}

// intensify performs one or more full passes of the route-operator loop
// until a full pass makes no improving move; returns whether any move was
// applied.
func (ls *LocalSearch) intensify(arena *searchroute.Arena, r *rand.Rand) bool {
	anyImproved := false
	for {
		routeOrder := rng.PermRange(arena.NumRoutes(), r)
		opOrder := rng.PermRange(len(ls.routeOps), r)

		improvedThisPass := false
		for _, ui := range routeOrder {
			ru := arena.Route(ui)
			if ru.IsEmpty() {
				continue
			}
			for _, vi := range routeOrder {
				if vi >= ui {
					continue // "earlier route V" per spec.md §4.4
				}
				rv := arena.Route(vi)
				if rv.IsEmpty() || !ru.OverlapsWith(rv, overlapTolerance) {
					continue
				}
				for _, oi := range opOrder {
					op := ls.routeOps[oi]
					delta, ok := op.Evaluate(ls.data, ls.ce, arena, ui, vi)
					if !ok || delta >= 0 {
						continue
					}
					op.Apply(ls.data, ls.ce, arena, ui, vi)
					improvedThisPass = true
				}
			}
		}

		if improvedThisPass {
			anyImproved = true
		} else {
			return anyImproved
		}
	}
}
