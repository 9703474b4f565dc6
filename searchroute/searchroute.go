// Package searchroute implements the mutable, arena-owned route
// representation the local search operates on: a doubly linked list of
// nodes (start depot, client nodes, end depot) with cached cumulative
// statistics, generalized from solution.Route's immutable, compute-once
// aggregates to a structure built for thousands of small in-place edits per
// second.
//
// Grounded on core.Graph's adjacency-list-of-indices ownership style (no
// node is ever referenced by pointer; everything is an arena index) and on
// tsp/bb.go's dense-buffer-over-interface pattern for hot-loop locality: the
// arena preallocates every Node and Route once (one Node per client plus two
// depot sentinels per vehicle, one Route per vehicle), and the search loop
// never allocates a Node or Route again.
package searchroute

import (
	"errors"
	"math"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/segment"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// Sentinel errors.
var (
	// ErrInvalidPosition indicates a position outside [0, size+1] for a route.
	ErrInvalidPosition = errors.New("searchroute: position out of range")

	// ErrNodeNotInRoute indicates a client node id has no route assigned.
	ErrNodeNotInRoute = errors.New("searchroute: node is not in any route")
)

// noNode is the sentinel "no neighbour" value for Node.Prev/Next.
const noNode = -1

// Node is one position in a route's chain: a client node (Client >= 0,
// depot == false) or one of a route's two depot sentinels (depot == true,
// Client holds the depot index). Nodes are identified by their arena index;
// never by pointer.
type Node struct {
	id       int
	isDepot  bool
	client   int // client index (if !isDepot) or depot index (if isDepot)
	route    int // owning route id, or -1 if the client is currently unrouted
	prev     int
	next     int
	position int // 0 at start depot, size+1 at end depot

	// Cumulative caches, valid only immediately after the owning Route's
	// Update() call.
	cumulatedDistance measure.Distance
	cumulatedLoad     []measure.Load
	twBefore          segment.DurationSegment // start depot .. this node, inclusive
	twAfter           segment.DurationSegment // this node .. end depot, inclusive
}

// ID returns the node's arena index.
func (n *Node) ID() int { return n.id }

// IsDepot reports whether this node is a route's start/end depot sentinel.
func (n *Node) IsDepot() bool { return n.isDepot }

// Client returns the client index this node represents (meaningless if IsDepot).
func (n *Node) Client() int { return n.client }

// Route returns the id of the route this node currently belongs to, or -1.
func (n *Node) Route() int { return n.route }

// Position returns this node's cached position within its route.
func (n *Node) Position() int { return n.position }

// Next returns the arena id of the next node in the chain, or -1 past the
// end depot (which never happens for a well-formed route: the end depot's
// Next is always noNode, but the end depot itself is always reachable).
func (n *Node) Next() int { return n.next }

// Prev returns the arena id of the previous node in the chain, or -1 before
// the start depot.
func (n *Node) Prev() int { return n.prev }

// CumulatedDistance returns the distance from the route's start depot to
// this node inclusive, valid after Update().
func (n *Node) CumulatedDistance() measure.Distance { return n.cumulatedDistance }

// CumulatedLoad returns the accumulated load of dimension d from the
// route's start depot to this node inclusive, valid after Update().
func (n *Node) CumulatedLoad(d int) measure.Load { return n.cumulatedLoadAt(d) }

// TwBefore returns the DurationSegment covering the start depot through
// this node inclusive, valid after Update().
func (n *Node) TwBefore() segment.DurationSegment { return n.twBefore }

// TwAfter returns the DurationSegment covering this node through the end
// depot inclusive, valid after Update().
func (n *Node) TwAfter() segment.DurationSegment { return n.twAfter }

// Route is a mutable doubly linked list of Nodes: a start depot sentinel,
// zero or more client nodes, and an end depot sentinel.
type Route struct {
	id          int
	arena       *Arena
	vehicleType int
	startDepot  int
	endDepot    int

	startNode int // arena index of the start-depot sentinel
	endNode   int // arena index of the end-depot sentinel
	size      int // number of client nodes (excludes the two depot sentinels)

	distance       measure.Distance
	excessDistance measure.Distance
	duration       measure.Duration
	timeWarp       measure.Duration
	excessLoad     []measure.Load
	totalDemand    []measure.Load
	centroidX      measure.Coordinate
	centroidY      measure.Coordinate
	centroidAngle  float64

	// chain is the dense, position-indexed array of node ids from the start
	// depot (index 0) through the end depot (index size+1), kept in sync on
	// every structural mutation and rebuilt wholesale by Update(). It is
	// what makes At O(1): the arena's prev/next chain alone can only answer
	// "what comes next", not "what sits at position i", without a walk.
	chain []int

	dirty        bool
	lastModified int
}

// ID returns the route's arena index.
func (r *Route) ID() int { return r.id }

// VehicleType returns the route's vehicle type index.
func (r *Route) VehicleType() int { return r.vehicleType }

// Size returns the number of client visits (excludes depots).
func (r *Route) Size() int { return r.size }

// IsEmpty reports whether the route has no client visits.
func (r *Route) IsEmpty() bool { return r.size == 0 }

// Distance returns the route's total travel distance, valid after Update().
func (r *Route) Distance() measure.Distance { return r.distance }

// Duration returns the route's total duration, valid after Update().
func (r *Route) Duration() measure.Duration { return r.duration }

// TimeWarp returns the route's total time warp, valid after Update().
func (r *Route) TimeWarp() measure.Duration { return r.timeWarp }

// ExcessLoad returns the per-dimension excess load, valid after Update().
func (r *Route) ExcessLoad() []measure.Load { return r.excessLoad }

// ExcessDistance returns the distance beyond the vehicle type's MaxDistance,
// or 0 if the vehicle type has none, valid after Update().
func (r *Route) ExcessDistance() measure.Distance { return r.excessDistance }

// TotalDemand returns the per-dimension total demand carried by the route
// (not netted against capacity), valid after Update(). Since no client
// carries a pickup/supply quantity (vrpdata.Client has no Supply field),
// this equals the route's LoadSegment.MaxLoad for every dimension and is
// exactly what operators need to reconstruct a candidate route's excess
// load from a chain-level demand delta without re-walking the route.
func (r *Route) TotalDemand() []measure.Load { return r.totalDemand }

// Centroid returns the route's client centroid, valid after Update().
func (r *Route) Centroid() (measure.Coordinate, measure.Coordinate) { return r.centroidX, r.centroidY }

// IsDirty reports whether the route was modified since its last Update().
func (r *Route) IsDirty() bool { return r.dirty }

// LastModified returns the arena's move counter value as of the last
// mutation to this route, for don't-look-bit bookkeeping in localsearch.
func (r *Route) LastModified() int { return r.lastModified }

// Arena owns every Node and Route for one search thread: a flat pool sized
// once at construction, so the search loop allocates no further Node or
// Route (Route.Update still allocates small per-node load caches).
type Arena struct {
	data        *vrpdata.ProblemData
	nodes       []Node
	routes      []Route
	numMoves    int
	numClients  int
	instCentroidX, instCentroidY measure.Coordinate
}

// NewArena preallocates a Node for every client plus two depot sentinels per
// route, and one Route per numVehicles, per spec.md §4.3's pooled-arena
// ownership requirement.
func NewArena(data *vrpdata.ProblemData, numVehicles int) *Arena {
	numClients := data.NumClients()
	a := &Arena{
		data:       data,
		nodes:      make([]Node, numClients+2*numVehicles),
		routes:     make([]Route, numVehicles),
		numClients: numClients,
	}
	cx, cy := data.Centroid()
	a.instCentroidX, a.instCentroidY = cx, cy

	for c := 0; c < numClients; c++ {
		a.nodes[c] = Node{id: c, client: c, route: -1, prev: noNode, next: noNode}
	}
	for i := 0; i < numVehicles; i++ {
		startID := numClients + 2*i
		endID := startID + 1
		a.nodes[startID] = Node{id: startID, isDepot: true, route: i}
		a.nodes[endID] = Node{id: endID, isDepot: true, route: i}
		a.routes[i] = Route{
			id: i, arena: a, startNode: startID, endNode: endID,
			excessLoad:  make([]measure.Load, data.NumLoadDimensions()),
			totalDemand: make([]measure.Load, data.NumLoadDimensions()),
			chain:       append(make([]int, 0, numClients+2), startID, endID),
		}
		a.nodes[startID].position = 0
		a.nodes[endID].position = 1
	}
	return a
}

// Route returns the i'th pooled route.
func (a *Arena) Route(i int) *Route { return &a.routes[i] }

// NumRoutes returns the number of pooled routes.
func (a *Arena) NumRoutes() int { return len(a.routes) }

// Node returns the node with the given arena id.
func (a *Arena) Node(id int) *Node { return &a.nodes[id] }

// NumMoves returns the monotonic counter incremented by every structural
// mutation (Insert/Remove/Swap), used by localsearch's don't-look bits.
func (a *Arena) NumMoves() int { return a.numMoves }

// LoadSolution resets every pooled route's chain to match sol, assigning
// vehicle types and start/end depots from the solution's RouteSpecs in
// order; unused pooled routes are left empty.
func (a *Arena) LoadSolution(sol *solution.Solution) {
	for i := range a.nodes {
		a.nodes[i].route = -1
		a.nodes[i].prev = noNode
		a.nodes[i].next = noNode
	}

	routes := sol.Routes()
	for i := range a.routes {
		r := &a.routes[i]
		r.size = 0
		r.dirty = true
		startID, endID := r.startNode, r.endNode
		a.nodes[startID].next = endID
		a.nodes[startID].prev = noNode
		a.nodes[endID].prev = startID
		a.nodes[endID].next = noNode
		a.nodes[startID].route = i
		a.nodes[endID].route = i
		a.nodes[startID].position = 0
		a.nodes[endID].position = 1
		r.chain = append(r.chain[:0], startID, endID)

		if i >= len(routes) {
			r.vehicleType, r.startDepot, r.endDepot = 0, 0, 0
			continue
		}
		rt := routes[i]
		r.vehicleType, r.startDepot, r.endDepot = rt.VehicleType, rt.StartDepot, rt.EndDepot
		a.nodes[startID].client = rt.StartDepot
		a.nodes[endID].client = rt.EndDepot

		r.chain = append(r.chain[:0], startID)
		prev := startID
		pos := 0
		for _, c := range rt.Visits {
			pos++
			a.nodes[c].route = i
			a.nodes[c].prev = prev
			a.nodes[c].position = pos
			a.nodes[prev].next = c
			r.chain = append(r.chain, c)
			prev = c
			r.size++
		}
		pos++
		a.nodes[prev].next = endID
		a.nodes[endID].prev = prev
		a.nodes[endID].position = pos
		r.chain = append(r.chain, endID)
	}
	for i := range a.routes {
		a.routes[i].Update()
	}
}

// ExportSolution reads every non-empty pooled route back out into an
// immutable solution.Solution.
func (a *Arena) ExportSolution() (*solution.Solution, error) {
	specs := make([]solution.RouteSpec, 0, len(a.routes))
	for i := range a.routes {
		r := &a.routes[i]
		if r.IsEmpty() {
			continue
		}
		visits := make([]int, 0, r.size)
		cur := a.nodes[r.startNode].next
		for cur != r.endNode {
			n := &a.nodes[cur]
			visits = append(visits, n.client)
			cur = n.next
		}
		specs = append(specs, solution.RouteSpec{
			VehicleType: r.vehicleType, StartDepot: r.startDepot, EndDepot: r.endDepot, Visits: visits,
		})
	}
	return solution.NewSolution(a.data, specs)
}

// At returns the arena node id at position pos (0 is the start depot,
// r.size+1 the end depot), read directly off the position-indexed chain
// array in O(1).
func (r *Route) At(pos int) (int, error) {
	if pos < 0 || pos > r.size+1 {
		return 0, ErrInvalidPosition
	}
	return r.chain[pos], nil
}

// chainInsert splices id into the chain array at index pos, shifting
// everything at or after pos right by one slot and refreshing their cached
// Position.
func (r *Route) chainInsert(pos int, id int) {
	r.chain = append(r.chain, 0)
	copy(r.chain[pos+1:], r.chain[pos:len(r.chain)-1])
	r.chain[pos] = id
	for i := pos; i < len(r.chain); i++ {
		r.arena.nodes[r.chain[i]].position = i
	}
}

// chainRemove deletes the chain-array entry at index pos, shifting
// everything after it left by one slot and refreshing their cached Position.
func (r *Route) chainRemove(pos int) {
	copy(r.chain[pos:], r.chain[pos+1:])
	r.chain = r.chain[:len(r.chain)-1]
	for i := pos; i < len(r.chain); i++ {
		r.arena.nodes[r.chain[i]].position = i
	}
}

// Insert splices client before the node currently at pos, and marks the
// route dirty. pos must be in [1, size+1] (inserting before the end depot
// appends).
func (r *Route) Insert(pos int, client int) error {
	if pos < 1 || pos > r.size+1 {
		return ErrInvalidPosition
	}
	a := r.arena
	at := r.chain[pos]
	before := a.nodes[at].prev

	n := &a.nodes[client]
	n.route = r.id
	n.prev = before
	n.next = at
	a.nodes[before].next = client
	a.nodes[at].prev = client

	r.chainInsert(pos, client)
	r.size++
	r.markDirty()
	return nil
}

// Remove detaches the client node at pos (which must reference a client,
// not a depot) and marks the route dirty.
func (r *Route) Remove(pos int) error {
	if pos < 1 || pos > r.size {
		return ErrInvalidPosition
	}
	a := r.arena
	id := r.chain[pos]
	n := &a.nodes[id]
	a.nodes[n.prev].next = n.next
	a.nodes[n.next].prev = n.prev
	n.prev, n.next, n.route = noNode, noNode, -1

	r.chainRemove(pos)
	r.size--
	r.markDirty()
	return nil
}

// Swap exchanges the positions of two client nodes, possibly in different
// routes, by relinking their neighbours in place (no removal/reinsert,
// so a swap of adjacent nodes is handled correctly).
func Swap(nodeA, nodeB int, arena *Arena) {
	a := arena
	na, nb := &a.nodes[nodeA], &a.nodes[nodeB]
	ra, rb := a.routes[na.route].id, a.routes[nb.route].id
	posA, posB := na.position, nb.position

	paPrev, paNext := na.prev, na.next
	pbPrev, pbNext := nb.prev, nb.next

	if paNext == nodeB {
		// Adjacent, A immediately before B.
		a.nodes[paPrev].next = nodeB
		nb.prev = paPrev
		nb.next = nodeA
		na.prev = nodeB
		na.next = pbNext
		a.nodes[pbNext].prev = nodeA
	} else if pbNext == nodeA {
		// Adjacent, B immediately before A.
		a.nodes[pbPrev].next = nodeA
		na.prev = pbPrev
		na.next = nodeB
		nb.prev = nodeA
		nb.next = paNext
		a.nodes[paNext].prev = nodeB
	} else {
		a.nodes[paPrev].next = nodeB
		a.nodes[paNext].prev = nodeB
		a.nodes[pbPrev].next = nodeA
		a.nodes[pbNext].prev = nodeA
		nb.prev, nb.next = paPrev, paNext
		na.prev, na.next = pbPrev, pbNext
	}

	na.route, nb.route = rb, ra
	na.position, nb.position = posB, posA
	a.routes[ra].chain[posA] = nodeB
	a.routes[rb].chain[posB] = nodeA
	a.routes[ra].markDirty()
	a.routes[rb].markDirty()
}

// InsertAfter splices client directly after the node afterID, without
// walking positions; used by operators that already hold node ids from a
// prior traversal instead of positions. afterID's cached Position gives the
// chain-array insertion index directly, in O(1).
func (r *Route) InsertAfter(afterID int, client int) error {
	a := r.arena
	after := &a.nodes[afterID]
	if after.route != r.id {
		return ErrNodeNotInRoute
	}
	next := after.next
	n := &a.nodes[client]
	n.route = r.id
	n.prev = afterID
	n.next = next
	after.next = client
	a.nodes[next].prev = client

	r.chainInsert(after.position+1, client)
	r.size++
	r.markDirty()
	return nil
}

// RemoveNode detaches the client node id directly, without walking
// positions; the node's own cached Position gives the chain-array removal
// index directly, in O(1).
func (r *Route) RemoveNode(id int) error {
	a := r.arena
	n := &a.nodes[id]
	if n.route != r.id || n.isDepot {
		return ErrNodeNotInRoute
	}
	a.nodes[n.prev].next = n.next
	a.nodes[n.next].prev = n.prev
	pos := n.position
	n.prev, n.next, n.route = noNode, noNode, -1

	r.chainRemove(pos)
	r.size--
	r.markDirty()
	return nil
}

func (r *Route) markDirty() {
	r.dirty = true
	r.arena.numMoves++
	r.lastModified = r.arena.numMoves
}

// Update recomputes every cached statistic (distance, load, time warp,
// twBefore/twAfter, centroid, excess figures) in a single linear pass over
// the node chain, per spec.md §4.3's consistency invariant.
func (r *Route) Update() {
	a := r.arena
	data := a.data
	vt := data.VehicleType(r.vehicleType)
	numDims := data.NumLoadDimensions()

	distSeg := segment.DistanceSegment{}
	loadSegs := make([]segment.LoadSegment, numDims)
	var sx, sy measure.Coordinate

	r.chain = append(r.chain[:0], r.startNode)

	cur := r.startNode
	pos := 0
	var prevLoc int = locationIndex(data, &a.nodes[cur])
	a.nodes[cur].position = 0
	a.nodes[cur].cumulatedDistance = 0
	a.nodes[cur].twBefore = durationSegmentFor(data, vt, &a.nodes[cur], true, r.size == 0)

	for {
		next := a.nodes[cur].next
		pos++
		nextLoc := locationIndex(data, &a.nodes[next])
		edge := data.Dist(prevLoc, nextLoc)
		distSeg = distSeg.Merge(edge, segment.DistanceSegment{})

		n := &a.nodes[next]
		n.position = pos
		n.cumulatedDistance = distSeg.Distance
		n.twBefore = a.nodes[cur].twBefore.Merge(data.Dur(prevLoc, nextLoc), durationSegmentFor(data, vt, n, false, next == r.endNode))
		r.chain = append(r.chain, next)

		if !n.isDepot {
			dem := data.Client(n.client).Demand
			n.cumulatedLoad = make([]measure.Load, numDims)
			for d := 0; d < numDims; d++ {
				n.cumulatedLoad[d] = a.nodes[cur].cumulatedLoadAt(d) + dem[d]
				loadSegs[d] = loadSegs[d].Merge(segment.LoadSegment{Demand: dem[d], MaxLoad: dem[d]})
			}
			cl := data.Client(n.client)
			sx += cl.X
			sy += cl.Y
		} else {
			n.cumulatedLoad = make([]measure.Load, numDims)
			copy(n.cumulatedLoad, a.nodes[cur].cumulatedLoad)
		}

		prevLoc = nextLoc
		cur = next
		if cur == r.endNode {
			break
		}
	}

	// twAfter: backward pass.
	revCur := r.endNode
	a.nodes[revCur].twAfter = durationSegmentFor(data, vt, &a.nodes[revCur], r.size == 0, true)
	prevLoc = locationIndex(data, &a.nodes[revCur])
	for revCur != r.startNode {
		prev := a.nodes[revCur].prev
		p := &a.nodes[prev]
		thisLoc := locationIndex(data, p)
		p.twAfter = durationSegmentFor(data, vt, p, prev == r.startNode, false).Merge(data.Dur(thisLoc, prevLoc), a.nodes[revCur].twAfter)
		prevLoc = thisLoc
		revCur = prev
	}

	r.distance = distSeg.Distance
	if vt.HasMaxDistance {
		r.excessDistance = measure.Max(r.distance.Sub(vt.MaxDistance), 0)
	}
	merged := a.nodes[r.endNode].twBefore
	r.duration = merged.Duration
	r.timeWarp = merged.TotalTimeWarp()
	for d := 0; d < numDims; d++ {
		r.excessLoad[d] = loadSegs[d].ExcessLoad(vt.Capacity[d])
		r.totalDemand[d] = loadSegs[d].Demand
	}
	if r.size > 0 {
		n := measure.Coordinate(r.size)
		r.centroidX, r.centroidY = sx/n, sy/n
		r.centroidAngle = math.Atan2(float64(r.centroidY-a.instCentroidY), float64(r.centroidX-a.instCentroidX))
	}

	r.dirty = false
}

func (n *Node) cumulatedLoadAt(d int) measure.Load {
	if n.cumulatedLoad == nil {
		return 0
	}
	return n.cumulatedLoad[d]
}

func locationIndex(data *vrpdata.ProblemData, n *Node) int {
	if n.isDepot {
		return n.client
	}
	return data.NumDepots() + n.client
}

func durationSegmentFor(data *vrpdata.ProblemData, vt vrpdata.VehicleType, n *Node, isStart, isEnd bool) segment.DurationSegment {
	if n.isDepot {
		twE, twL := measure.Duration(0), measure.Duration(1<<62)
		if vt.HasShiftWindow {
			twE, twL = vt.TwEarly, vt.TwLate
		}
		return segment.DurationSegment{IdxFirst: n.client, IdxLast: n.client, TwEarly: twE, TwLate: twL}
	}
	return ClientSegment(data, n.client)
}

// ClientSegment returns the single-client DurationSegment for client, for
// use by operators composing candidate insertion/exchange chains via
// segment.Merge without mutating the arena (spec.md §4.3).
func ClientSegment(data *vrpdata.ProblemData, client int) segment.DurationSegment {
	cl := data.Client(client)
	return segment.DurationSegment{
		IdxFirst:    data.NumDepots() + client,
		IdxLast:     data.NumDepots() + client,
		Duration:    cl.ServiceDuration,
		TwEarly:     cl.TwEarly,
		TwLate:      cl.TwLate,
		ReleaseTime: cl.ReleaseTime,
	}
}

// Before returns the DurationSegment from the start depot through position i
// inclusive. Requires a prior Update().
func (r *Route) Before(i int) (segment.DurationSegment, error) {
	id, err := r.At(i)
	if err != nil {
		return segment.DurationSegment{}, err
	}
	return r.arena.nodes[id].twBefore, nil
}

// After returns the DurationSegment from position i through the end depot
// inclusive. Requires a prior Update().
func (r *Route) After(i int) (segment.DurationSegment, error) {
	id, err := r.At(i)
	if err != nil {
		return segment.DurationSegment{}, err
	}
	return r.arena.nodes[id].twAfter, nil
}

// Between returns the merged DurationSegment strictly covering positions
// [i, j] by re-walking the chain; used rarely (operators typically compose
// Before/After with single-edge merges instead for O(1) evaluation).
func (r *Route) Between(i, j int) (segment.DurationSegment, error) {
	if i > j {
		return segment.DurationSegment{}, ErrInvalidPosition
	}
	data := r.arena.data
	vt := data.VehicleType(r.vehicleType)
	id, err := r.At(i)
	if err != nil {
		return segment.DurationSegment{}, err
	}
	acc := durationSegmentFor(data, vt, &r.arena.nodes[id], i == 0, i == r.size+1)
	prevLoc := locationIndex(data, &r.arena.nodes[id])
	for pos := i + 1; pos <= j; pos++ {
		id = r.arena.nodes[id].next
		n := &r.arena.nodes[id]
		loc := locationIndex(data, n)
		acc = acc.Merge(data.Dur(prevLoc, loc), durationSegmentFor(data, vt, n, pos == 0, pos == r.size+1))
		prevLoc = loc
	}
	return acc, nil
}

// OverlapsWith reports whether this route's and other's centroid polar
// angles (around the instance centroid, as computed at Update()) differ by
// less than tolerance*2*pi modularly, per spec.md §4.3.
func (r *Route) OverlapsWith(other *Route, tolerance float64) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	diff := math.Abs(r.centroidAngle - other.centroidAngle)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff < tolerance*2*math.Pi
}
