package vrpmatrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/vrpmatrix"
)

func TestNewDistanceMatrixRejectsBadDims(t *testing.T) {
	_, err := vrpmatrix.NewDistanceMatrix(0)
	require.ErrorIs(t, err, vrpmatrix.ErrInvalidDimensions)
}

func TestDistanceMatrixSetAt(t *testing.T) {
	m, err := vrpmatrix.NewDistanceMatrix(3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, measure.Distance(42)))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, measure.Distance(42), v)
	assert.Equal(t, measure.Distance(42), m.Get(1, 2))
}

func TestDistanceMatrixOutOfBounds(t *testing.T) {
	m, err := vrpmatrix.NewDistanceMatrix(2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, vrpmatrix.ErrIndexOutOfBounds)

	err = m.Set(-1, 0, 1)
	require.ErrorIs(t, err, vrpmatrix.ErrIndexOutOfBounds)
}

func TestDistanceMatrixClone(t *testing.T) {
	m, err := vrpmatrix.NewDistanceMatrix(2)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 1, 7))

	clone := m.Clone()
	require.NoError(t, clone.Set(0, 1, 99))

	v, _ := m.At(0, 1)
	assert.Equal(t, measure.Distance(7), v)
	cv, _ := clone.At(0, 1)
	assert.Equal(t, measure.Distance(99), cv)
}

func TestDurationMatrixSetAt(t *testing.T) {
	m, err := vrpmatrix.NewDurationMatrix(3)
	require.NoError(t, err)

	require.NoError(t, m.Set(0, 0, measure.Duration(5)))
	v, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, measure.Duration(5), v)
}
