// Package vrpmatrix provides contiguous, row-major two-dimensional arrays
// for the distance and duration lookups ProblemData needs.
//
// What & Why:
//
//	A DistanceMatrix or DurationMatrix stores n*n measures in a single flat
//	slice for cache-friendly access, the same layout the teacher's
//	matrix.Dense uses for its float64 backing store. Two concrete types are
//	provided instead of one generic Matrix interface because the engine only
//	ever needs these two fixed element types in its hot loops, and a generic
//	interface would force an allocation-boxing indirection on every At/Set
//	call inside the local-search inner loop.
//
// Complexity:
//
//	Size() runs in O(1). At() and Set() are O(1) with bounds checking.
//	Clone() is O(n^2).
package vrpmatrix

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/hgsvrp/measure"
)

// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
var ErrInvalidDimensions = errors.New("vrpmatrix: dimensions must be > 0")

// ErrIndexOutOfBounds indicates a row or column index is outside the valid range.
var ErrIndexOutOfBounds = errors.New("vrpmatrix: index out of bounds")

// ErrDimensionMismatch indicates two matrices have incompatible shapes for an operation.
var ErrDimensionMismatch = errors.New("vrpmatrix: dimension mismatch")

func outOfBounds(method string, row, col int) error {
	return fmt.Errorf("vrpmatrix.%s(%d,%d): %w", method, row, col, ErrIndexOutOfBounds)
}

// DistanceMatrix is a square, row-major matrix of Distance values.
type DistanceMatrix struct {
	n    int
	data []measure.Distance
}

// NewDistanceMatrix allocates an n*n DistanceMatrix initialized to zero.
// Complexity: O(n^2).
func NewDistanceMatrix(n int) (*DistanceMatrix, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &DistanceMatrix{n: n, data: make([]measure.Distance, n*n)}, nil
}

// Size returns the matrix's row/column count (it is always square).
func (m *DistanceMatrix) Size() int { return m.n }

// At returns the value at (row, col).
func (m *DistanceMatrix) At(row, col int) (measure.Distance, error) {
	idx, err := m.index(row, col)
	if err != nil {
		return 0, outOfBounds("At", row, col)
	}
	return m.data[idx], nil
}

// Get is a panic-free, unchecked fast-path accessor for hot loops where the
// caller has already validated indices (e.g. local search, which only ever
// queries locations known to exist). Behavior is undefined for
// out-of-bounds input.
func (m *DistanceMatrix) Get(row, col int) measure.Distance {
	return m.data[row*m.n+col]
}

// Set assigns v at (row, col).
func (m *DistanceMatrix) Set(row, col int, v measure.Distance) error {
	idx, err := m.index(row, col)
	if err != nil {
		return outOfBounds("Set", row, col)
	}
	m.data[idx] = v
	return nil
}

func (m *DistanceMatrix) index(row, col int) (int, error) {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		return 0, ErrIndexOutOfBounds
	}
	return row*m.n + col, nil
}

// Clone returns a deep copy of the matrix.
func (m *DistanceMatrix) Clone() *DistanceMatrix {
	out := &DistanceMatrix{n: m.n, data: make([]measure.Distance, len(m.data))}
	copy(out.data, m.data)
	return out
}

// DurationMatrix is a square, row-major matrix of Duration values.
type DurationMatrix struct {
	n    int
	data []measure.Duration
}

// NewDurationMatrix allocates an n*n DurationMatrix initialized to zero.
func NewDurationMatrix(n int) (*DurationMatrix, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &DurationMatrix{n: n, data: make([]measure.Duration, n*n)}, nil
}

// Size returns the matrix's row/column count (it is always square).
func (m *DurationMatrix) Size() int { return m.n }

// At returns the value at (row, col).
func (m *DurationMatrix) At(row, col int) (measure.Duration, error) {
	idx, err := m.index(row, col)
	if err != nil {
		return 0, outOfBounds("At", row, col)
	}
	return m.data[idx], nil
}

// Get is the unchecked fast-path accessor; see DistanceMatrix.Get.
func (m *DurationMatrix) Get(row, col int) measure.Duration {
	return m.data[row*m.n+col]
}

// Set assigns v at (row, col).
func (m *DurationMatrix) Set(row, col int, v measure.Duration) error {
	idx, err := m.index(row, col)
	if err != nil {
		return outOfBounds("Set", row, col)
	}
	m.data[idx] = v
	return nil
}

func (m *DurationMatrix) index(row, col int) (int, error) {
	if row < 0 || row >= m.n || col < 0 || col >= m.n {
		return 0, ErrIndexOutOfBounds
	}
	return row*m.n + col, nil
}

// Clone returns a deep copy of the matrix.
func (m *DurationMatrix) Clone() *DurationMatrix {
	out := &DurationMatrix{n: m.n, data: make([]measure.Duration, len(m.data))}
	copy(out.data, m.data)
	return out
}
