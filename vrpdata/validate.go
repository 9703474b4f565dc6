package vrpdata

import "github.com/katalvlaran/hgsvrp/vrpmatrix"

// build assembles and validates a ProblemData from raw parts, grounded on
// core/types.go's NewGraph(opts...) constructor-time validation style
// (sentinel errors returned immediately, no partial construction).
func build(depots []Depot, clients []Client, vts []VehicleType, distIn *DistMatrixInput, durIn *DurMatrixInput) (*ProblemData, error) {
	if len(depots) == 0 {
		return nil, ErrNoDepots
	}
	if len(vts) == 0 {
		return nil, ErrNoVehicleTypes
	}

	numLoadDims := 0
	if len(clients) > 0 {
		numLoadDims = len(clients[0].Demand)
	} else if len(vts) > 0 {
		numLoadDims = len(vts[0].Capacity)
	}

	numLocations := len(depots) + len(clients)

	dist, err := vrpmatrix.NewDistanceMatrix(numLocations)
	if err != nil {
		return nil, err
	}
	dur, err := vrpmatrix.NewDurationMatrix(numLocations)
	if err != nil {
		return nil, err
	}

	if distIn != nil {
		if len(distIn.Rows) != numLocations {
			return nil, ErrMatrixSizeMismatch
		}
		for i, row := range distIn.Rows {
			if len(row) != numLocations {
				return nil, ErrMatrixSizeMismatch
			}
			for j, v := range row {
				_ = dist.Set(i, j, v)
			}
		}
	}
	if durIn != nil {
		if len(durIn.Rows) != numLocations {
			return nil, ErrMatrixSizeMismatch
		}
		for i, row := range durIn.Rows {
			if len(row) != numLocations {
				return nil, ErrMatrixSizeMismatch
			}
			for j, v := range row {
				_ = dur.Set(i, j, v)
			}
		}
	}

	p := &ProblemData{
		depots:       depots,
		clients:      clients,
		vehicleTypes: vts,
		dist:         dist,
		dur:          dur,
		numLoadDims:  numLoadDims,
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// validate checks every invariant from spec.md §4.1: diagonals zero, depot
// attributes clean, load dimensions non-negative and consistent, well-formed
// time windows, at least one depot, positive vehicle counts.
func validate(p *ProblemData) error {
	if len(p.depots) == 0 {
		return ErrNoDepots
	}
	if len(p.vehicleTypes) == 0 {
		return ErrNoVehicleTypes
	}

	n := p.NumLocations()
	for i := 0; i < n; i++ {
		if p.dist.Get(i, i) != 0 || p.dur.Get(i, i) != 0 {
			return ErrNonZeroDiagonal
		}
	}

	for _, c := range p.clients {
		if len(c.Demand) != p.numLoadDims {
			return ErrLoadDimensionMismatch
		}
		for _, d := range c.Demand {
			if d < 0 {
				return ErrNegativeLoad
			}
		}
		if c.TwEarly < 0 || c.TwEarly > c.TwLate {
			return ErrMalformedTimeWindow
		}
	}

	for _, vt := range p.vehicleTypes {
		if len(vt.Capacity) != p.numLoadDims {
			return ErrLoadDimensionMismatch
		}
		for _, cap := range vt.Capacity {
			if cap < 0 {
				return ErrNegativeLoad
			}
		}
		if vt.NumAvailable <= 0 {
			return ErrNonPositiveVehicleCount
		}
		if vt.StartDepot < 0 || vt.StartDepot >= len(p.depots) ||
			vt.EndDepot < 0 || vt.EndDepot >= len(p.depots) {
			return ErrInvalidDepotIndex
		}
		if vt.HasShiftWindow && vt.TwEarly > vt.TwLate {
			return ErrMalformedTimeWindow
		}
	}

	return nil
}
