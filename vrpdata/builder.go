package vrpdata

import "github.com/katalvlaran/hgsvrp/measure"

// Builder assembles a ProblemData. Grounded on matrix.NewMatrixOptions's
// Option-func-with-defaults shape, adapted here to accumulate slices rather
// than flip boolean flags since ProblemData's inputs are collections, not
// toggles.
type Builder struct {
	depots       []Depot
	clients      []Client
	vehicleTypes []VehicleType
	dist         *DistMatrixInput
	dur          *DurMatrixInput
}

// DistMatrixInput and DurMatrixInput let callers hand in a fully-populated
// matrix (e.g. parsed from VRPLIB) without the Builder re-deriving it.
type DistMatrixInput struct{ Rows [][]measure.Distance }
type DurMatrixInput struct{ Rows [][]measure.Duration }

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddDepot appends a depot and returns its location index.
func (b *Builder) AddDepot(d Depot) int {
	b.depots = append(b.depots, d)
	return len(b.depots) - 1
}

// AddClient appends a client and returns its client index.
func (b *Builder) AddClient(c Client) int {
	b.clients = append(b.clients, c)
	return len(b.clients) - 1
}

// AddVehicleType appends a vehicle type and returns its index.
func (b *Builder) AddVehicleType(vt VehicleType) int {
	b.vehicleTypes = append(b.vehicleTypes, vt)
	return len(b.vehicleTypes) - 1
}

// SetDistanceMatrix supplies the full numLocations x numLocations distance matrix.
func (b *Builder) SetDistanceMatrix(rows [][]measure.Distance) {
	b.dist = &DistMatrixInput{Rows: rows}
}

// SetDurationMatrix supplies the full numLocations x numLocations duration matrix.
func (b *Builder) SetDurationMatrix(rows [][]measure.Duration) {
	b.dur = &DurMatrixInput{Rows: rows}
}

// Build validates the accumulated data and constructs an immutable ProblemData.
func (b *Builder) Build() (*ProblemData, error) {
	return build(b.depots, b.clients, b.vehicleTypes, b.dist, b.dur)
}

// Replace derives a modified ProblemData from p, applying field-level
// overrides. Unset (nil) overrides keep p's original data. This mirrors
// spec.md §4.1's replace(...) builder, used primarily by tests that need a
// near-identical instance with one perturbation.
func (p *ProblemData) Replace(opts ...ReplaceOption) (*ProblemData, error) {
	r := replaceSpec{
		depots:       p.depots,
		clients:      p.clients,
		vehicleTypes: p.vehicleTypes,
	}
	for _, opt := range opts {
		opt(&r)
	}

	np := &ProblemData{
		depots:       r.depots,
		clients:      r.clients,
		vehicleTypes: r.vehicleTypes,
		dist:         p.dist,
		dur:          p.dur,
		numLoadDims:  p.numLoadDims,
	}
	if err := validate(np); err != nil {
		return nil, err
	}
	return np, nil
}

type replaceSpec struct {
	depots       []Depot
	clients      []Client
	vehicleTypes []VehicleType
}

// ReplaceOption overrides one field of a Replace call.
type ReplaceOption func(*replaceSpec)

// WithClients overrides the client list.
func WithClients(clients []Client) ReplaceOption {
	return func(r *replaceSpec) { r.clients = clients }
}

// WithDepots overrides the depot list.
func WithDepots(depots []Depot) ReplaceOption {
	return func(r *replaceSpec) { r.depots = depots }
}

// WithVehicleTypes overrides the vehicle type list.
func WithVehicleTypes(vts []VehicleType) ReplaceOption {
	return func(r *replaceSpec) { r.vehicleTypes = vts }
}
