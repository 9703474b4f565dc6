// Package vrplib reads and writes the VRPLIB text format described in
// spec.md §6: a depots-first ProblemData's NAME/DIMENSION/CAPACITY/VEHICLES
// header followed by EDGE_WEIGHT_SECTION or NODE_COORD_SECTION, an optional
// DEMAND_SECTION/TIME_WINDOW_SECTION/SERVICE_TIME_SECTION/
// RELEASE_TIME_SECTION, a single-entry DEPOT_SECTION, and EOF.
//
// Grounded on nothing structurally in the example pack (no line-oriented
// scientific-instance text format parser exists anywhere in the retrieved
// repos); built directly from spec.md §6's section list using stdlib
// bufio.Scanner and strconv, in the teacher's doc-comment and sentinel-error
// style (vrpdata/types.go's ErrXxx family).
package vrplib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// Sentinel errors for instance parsing, per spec.md §7's "parse error" kind.
var (
	ErrUnknownSection      = errors.New("vrplib: unknown section header")
	ErrUnsupportedWeight   = errors.New("vrplib: unsupported EDGE_WEIGHT_TYPE or EDGE_WEIGHT_FORMAT")
	ErrMissingDimension    = errors.New("vrplib: DIMENSION must precede any indexed section")
	ErrMalformedLine       = errors.New("vrplib: malformed data line")
	ErrDepotSectionInvalid = errors.New("vrplib: DEPOT_SECTION must contain exactly one depot index, then -1")
	ErrMissingCoordinates  = errors.New("vrplib: EUC_2D requires NODE_COORD_SECTION")
)

// edgeWeightType distinguishes the two instance families spec.md §6 supports.
type edgeWeightType int

const (
	weightExplicit edgeWeightType = iota
	weightEuc2D
)

// ReadInstance parses a VRPLIB-format instance from r into a ProblemData.
// Locations are 1-based in the text format (depot first, index 1); the
// returned ProblemData uses 0-based depots-first indexing throughout, per
// vrpdata's convention.
func ReadInstance(r io.Reader) (*vrpdata.ProblemData, error) {
	p := newParser()
	ls := newLineSource(r)

	for {
		line, ok := ls.next()
		if !ok {
			break
		}
		if line == "" || line == "EOF" {
			continue
		}
		if err := p.consume(line, ls); err != nil {
			return nil, err
		}
	}
	if err := ls.scanner.Err(); err != nil {
		return nil, fmt.Errorf("vrplib: reading instance: %w", err)
	}

	return p.build()
}

// lineSource wraps bufio.Scanner with a one-line pushback buffer, since a
// section reader must be able to recognize the next section's header line
// without consuming it out from under the outer loop.
type lineSource struct {
	scanner *bufio.Scanner
	pending string
	hasPending bool
}

func newLineSource(r io.Reader) *lineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &lineSource{scanner: scanner}
}

// next returns the next logical line (pushed-back, if any, otherwise freshly
// scanned), and whether one was available.
func (ls *lineSource) next() (string, bool) {
	if ls.hasPending {
		ls.hasPending = false
		return ls.pending, true
	}
	if !ls.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(ls.scanner.Text()), true
}

// pushBack returns line to the front of the stream, for the one-line
// lookahead a section reader needs to detect the next header without
// consuming it.
func (ls *lineSource) pushBack(line string) {
	ls.pending, ls.hasPending = line, true
}

type parser struct {
	dimension    int
	capacity     measure.Load
	vehicles     int
	weightType   edgeWeightType
	explicit     [][]measure.Distance
	coords       [][2]measure.Coordinate // 1-based index into coords[1:]
	demand       []measure.Load
	serviceTime  []measure.Duration
	twEarly      []measure.Duration
	twLate       []measure.Duration
	releaseTime  []measure.Duration
	depotIndex   int // 1-based; 0 means "not yet seen"
	sawDepot     bool
	sawCoords    bool
}

func newParser() *parser { return &parser{vehicles: 1} }

func (p *parser) consume(header string, ls *lineSource) error {
	key, value, hasValue := splitColon(header)
	switch key {
	case "NAME", "COMMENT", "TYPE":
		return nil
	case "DIMENSION":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: DIMENSION %q", ErrMalformedLine, value)
		}
		p.dimension = n
		p.allocate()
		return nil
	case "CAPACITY":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: CAPACITY %q", ErrMalformedLine, value)
		}
		p.capacity = measure.Load(v)
		return nil
	case "VEHICLES", "SALESMAN":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrMalformedLine, key, value)
		}
		p.vehicles = n
		return nil
	case "EDGE_WEIGHT_TYPE":
		switch value {
		case "EXPLICIT":
			p.weightType = weightExplicit
		case "EUC_2D":
			p.weightType = weightEuc2D
		default:
			return ErrUnsupportedWeight
		}
		return nil
	case "EDGE_WEIGHT_FORMAT":
		if value != "FULL_MATRIX" {
			return ErrUnsupportedWeight
		}
		return nil
	case "EDGE_WEIGHT_SECTION":
		return p.readExplicitMatrix(ls)
	case "NODE_COORD_SECTION":
		return p.readNodeCoords(ls)
	case "DEMAND_SECTION":
		return p.readPerNode(ls, func(i int, v float64) { p.demand[i] = measure.Load(v) })
	case "SERVICE_TIME_SECTION":
		return p.readPerNode(ls, func(i int, v float64) { p.serviceTime[i] = measure.Duration(v) })
	case "RELEASE_TIME_SECTION":
		return p.readPerNode(ls, func(i int, v float64) { p.releaseTime[i] = measure.Duration(v) })
	case "TIME_WINDOW_SECTION":
		return p.readTimeWindows(ls)
	case "DEPOT_SECTION":
		return p.readDepotSection(ls)
	default:
		if !hasValue {
			return fmt.Errorf("%w: %q", ErrUnknownSection, header)
		}
		return nil
	}
}

func splitColon(line string) (key, value string, hasValue bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return strings.TrimSpace(line), "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func (p *parser) allocate() {
	n := p.dimension + 1 // 1-based; index 0 unused
	p.coords = make([][2]measure.Coordinate, n)
	p.demand = make([]measure.Load, n)
	p.serviceTime = make([]measure.Duration, n)
	p.twEarly = make([]measure.Duration, n)
	p.twLate = make([]measure.Duration, n)
	p.releaseTime = make([]measure.Duration, n)
	for i := range p.twLate {
		p.twLate[i] = measure.Duration(math.MaxInt64 / 2)
	}
}

func (p *parser) readExplicitMatrix(ls *lineSource) error {
	if p.dimension == 0 {
		return ErrMissingDimension
	}
	n := p.dimension
	p.explicit = make([][]measure.Distance, n)
	for i := range p.explicit {
		p.explicit[i] = make([]measure.Distance, n)
	}

	values := make([]float64, 0, n*n)
	for len(values) < n*n {
		line, ok := ls.next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if isNextSectionHeader(line) {
			ls.pushBack(line)
			break
		}
		for _, f := range strings.Fields(line) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("%w: EDGE_WEIGHT_SECTION %q", ErrMalformedLine, f)
			}
			values = append(values, v)
		}
	}
	if len(values) < n*n {
		return fmt.Errorf("%w: EDGE_WEIGHT_SECTION has %d values, want %d", ErrMalformedLine, len(values), n*n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p.explicit[i][j] = measure.Distance(values[i*n+j])
		}
	}
	return nil
}

func (p *parser) readNodeCoords(ls *lineSource) error {
	if p.dimension == 0 {
		return ErrMissingDimension
	}
	for {
		line, ok := ls.next()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if isNextSectionHeader(line) {
			ls.pushBack(line)
			return nil
		}
		idx, x, y, err := parseIndexedTriple(line)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(p.coords) {
			return fmt.Errorf("%w: NODE_COORD_SECTION index %d out of range", ErrMalformedLine, idx)
		}
		p.coords[idx] = [2]measure.Coordinate{measure.Coordinate(x), measure.Coordinate(y)}
		p.sawCoords = true
	}
}

func (p *parser) readPerNode(ls *lineSource, set func(i int, v float64)) error {
	if p.dimension == 0 {
		return ErrMissingDimension
	}
	for {
		line, ok := ls.next()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if isNextSectionHeader(line) {
			ls.pushBack(line)
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		if idx < 0 || idx >= len(p.demand) {
			return fmt.Errorf("%w: index %d out of range", ErrMalformedLine, idx)
		}
		set(idx, v)
	}
}

func (p *parser) readTimeWindows(ls *lineSource) error {
	if p.dimension == 0 {
		return ErrMissingDimension
	}
	for {
		line, ok := ls.next()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if isNextSectionHeader(line) {
			ls.pushBack(line)
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		early, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		late, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		if idx < 0 || idx >= len(p.twEarly) {
			return fmt.Errorf("%w: index %d out of range", ErrMalformedLine, idx)
		}
		p.twEarly[idx] = measure.Duration(early)
		p.twLate[idx] = measure.Duration(late)
	}
}

func (p *parser) readDepotSection(ls *lineSource) error {
	var indices []int
	for {
		line, ok := ls.next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if isNextSectionHeader(line) {
			ls.pushBack(line)
			break
		}
		n, err := strconv.Atoi(strings.Fields(line)[0])
		if err != nil {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		if n == -1 {
			break
		}
		indices = append(indices, n)
	}
	if len(indices) != 1 {
		return ErrDepotSectionInvalid
	}
	p.depotIndex = indices[0]
	p.sawDepot = true
	return nil
}

// isNextSectionHeader reports whether line looks like the start of the next
// section rather than a data row: VRPLIB data rows begin with an integer
// index, so a line whose first token is not a number signals a new header.
func isNextSectionHeader(line string) bool {
	first := strings.Fields(line)[0]
	if _, err := strconv.ParseFloat(first, 64); err != nil {
		return true
	}
	return false
}

func parseIndexedTriple(line string) (idx int, x, y float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	i, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	xf, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	yf, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	return i, xf, yf, nil
}

// build converts the accumulated 1-based VRPLIB fields into a ProblemData,
// placing the single depot at location 0 and every other index (1-based,
// skipping the depot) as a client, in ascending index order.
func (p *parser) build() (*vrpdata.ProblemData, error) {
	if p.dimension == 0 {
		return nil, ErrMissingDimension
	}
	if !p.sawDepot {
		return nil, ErrDepotSectionInvalid
	}
	if p.weightType == weightEuc2D && !p.sawCoords {
		return nil, ErrMissingCoordinates
	}

	b := vrpdata.NewBuilder()
	b.AddDepot(vrpdata.Depot{X: p.coords[p.depotIndex][0], Y: p.coords[p.depotIndex][1]})

	clientOrder := make([]int, 0, p.dimension-1)
	for i := 1; i <= p.dimension; i++ {
		if i == p.depotIndex {
			continue
		}
		clientOrder = append(clientOrder, i)
		b.AddClient(vrpdata.Client{
			X: p.coords[i][0], Y: p.coords[i][1],
			Demand:          []measure.Load{p.demand[i]},
			ServiceDuration: p.serviceTime[i],
			TwEarly:         p.twEarly[i],
			TwLate:          p.twLate[i],
			ReleaseTime:     p.releaseTime[i],
			Required:        true,
		})
	}

	b.AddVehicleType(vrpdata.VehicleType{
		Capacity:     []measure.Load{p.capacity},
		NumAvailable: p.vehicles,
	})

	n := p.dimension
	locOrder := append([]int{p.depotIndex}, clientOrder...)
	dist := make([][]measure.Distance, n)
	dur := make([][]measure.Duration, n)
	for i := range dist {
		dist[i] = make([]measure.Distance, n)
		dur[i] = make([]measure.Duration, n)
	}
	for i, li := range locOrder {
		for j, lj := range locOrder {
			d := p.distanceBetween(li, lj)
			dist[i][j] = d
			dur[i][j] = measure.Duration(d) // VRPLIB carries no separate duration section; travel time equals distance
		}
	}
	b.SetDistanceMatrix(dist)
	b.SetDurationMatrix(dur)

	return b.Build()
}

// distanceBetween returns the travel distance between 1-based VRPLIB
// indices i and j, either from the explicit matrix or via the EUC_2D
// formula `floor(10*sqrt(dx^2+dy^2))` per spec.md §6.
func (p *parser) distanceBetween(i, j int) measure.Distance {
	if p.weightType == weightExplicit {
		return p.explicit[i-1][j-1]
	}
	dx := float64(p.coords[i][0] - p.coords[j][0])
	dy := float64(p.coords[i][1] - p.coords[j][1])
	return measure.Distance(math.Floor(10 * math.Sqrt(dx*dx+dy*dy)))
}

// WriteSolution renders sol in VRPLIB-compatible output format, per
// spec.md §6: one line per non-empty route, then a Cost line and a Time
// line, newline-terminated with no trailing whitespace.
func WriteSolution(w io.Writer, sol *solution.Solution, elapsed time.Duration) error {
	bw := bufio.NewWriter(w)
	for k, r := range sol.Routes() {
		fmt.Fprintf(bw, "Route #%d:", k+1)
		for _, c := range r.Visits {
			fmt.Fprintf(bw, " %d", c+1) // back to 1-based VRPLIB client indices
		}
		fmt.Fprint(bw, "\n")
	}
	fmt.Fprintf(bw, "Cost: %d\n", int64(sol.Distance()))
	fmt.Fprintf(bw, "Time: %.3f\n", elapsed.Seconds())
	return bw.Flush()
}
