package measure_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/hgsvrp/measure"
)

func TestDistanceAddSaturates(t *testing.T) {
	d := measure.Distance(math.MaxInt64 - 1)
	assert.Equal(t, measure.Distance(math.MaxInt64), d.Add(10))
}

func TestDistanceSubSaturates(t *testing.T) {
	d := measure.Distance(math.MinInt64 + 1)
	assert.Equal(t, measure.Distance(math.MinInt64), d.Sub(10))
}

func TestLoadAddSub(t *testing.T) {
	a := measure.Load(5)
	b := measure.Load(3)
	assert.Equal(t, measure.Load(8), a.Add(b))
	assert.Equal(t, measure.Load(2), a.Sub(b))
}

func TestCostScaleRounds(t *testing.T) {
	c := measure.Cost(10)
	assert.Equal(t, measure.Cost(5), c.Scale(0.5))
	assert.Equal(t, measure.Cost(3), c.Scale(0.34))
}

func TestMaxMin(t *testing.T) {
	assert.Equal(t, measure.Load(5), measure.Max(measure.Load(5), measure.Load(3)))
	assert.Equal(t, measure.Load(3), measure.Min(measure.Load(5), measure.Load(3)))
}
