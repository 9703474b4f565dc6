package penalty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/hgsvrp/penalty"
)

func baseConfig(initial float64) penalty.Config {
	return penalty.Config{
		InitialCapacityPenalty: initial,
		InitialTimeWarpPenalty: initial,
		TargetFeasible:         0.43,
		PenaltyIncrease:        1.34,
		PenaltyDecrease:        0.32,
	}
}

// TestScenario5Increase reproduces spec.md §8 scenario 5: three consecutive
// UpdateCapacityPenalty(0.0) calls monotonically increase the penalty up to
// the clamp (1000).
func TestScenario5Increase(t *testing.T) {
	mgr := penalty.New(baseConfig(100))

	var last float64 = 100
	for i := 0; i < 3; i++ {
		mgr.UpdateCapacityPenalty(0.0)
		assert.Greater(t, mgr.CapacityPenalty(), last)
		last = mgr.CapacityPenalty()
	}
	assert.LessOrEqual(t, mgr.CapacityPenalty(), 1000.0)

	// Drive it to the clamp with enough repetitions.
	for i := 0; i < 50; i++ {
		mgr.UpdateCapacityPenalty(0.0)
	}
	assert.Equal(t, 1000.0, mgr.CapacityPenalty())
}

// TestScenario5Decrease reproduces spec.md §8 scenario 5's second half:
// three consecutive UpdateCapacityPenalty(1.0) calls monotonically decrease
// the penalty toward the clamp (1).
func TestScenario5Decrease(t *testing.T) {
	mgr := penalty.New(baseConfig(100))

	var last float64 = 100
	for i := 0; i < 3; i++ {
		mgr.UpdateCapacityPenalty(1.0)
		assert.Less(t, mgr.CapacityPenalty(), last)
		last = mgr.CapacityPenalty()
	}

	for i := 0; i < 50; i++ {
		mgr.UpdateCapacityPenalty(1.0)
	}
	assert.Equal(t, 1.0, mgr.CapacityPenalty())
}

func TestUpdateWithinBandLeavesPenaltyUnchanged(t *testing.T) {
	mgr := penalty.New(baseConfig(100))
	mgr.UpdateCapacityPenalty(0.43) // exactly at target
	assert.Equal(t, 100.0, mgr.CapacityPenalty())
}

func TestTimeWarpPenaltyIsIndependent(t *testing.T) {
	mgr := penalty.New(baseConfig(100))
	mgr.UpdateCapacityPenalty(0.0)
	assert.Equal(t, 100.0, mgr.TimeWarpPenalty())
}

func TestBoosterAcquireAndRelease(t *testing.T) {
	mgr := penalty.New(baseConfig(100))
	b := mgr.Acquire(12)
	assert.Equal(t, 1000.0, mgr.CapacityPenalty()) // 100*12=1200, clamped to 1000
	b.Release()
	assert.Equal(t, 100.0, mgr.CapacityPenalty())
}

func TestBoosterReleaseIsIdempotent(t *testing.T) {
	mgr := penalty.New(baseConfig(100))
	b := mgr.Acquire(2)
	b.Release()
	mgr.UpdateCapacityPenalty(0.0) // changes state after release
	changed := mgr.CapacityPenalty()
	b.Release() // must not clobber state set after the first release
	assert.Equal(t, changed, mgr.CapacityPenalty())
}

func TestNewClampsInitialValue(t *testing.T) {
	mgr := penalty.New(baseConfig(5000))
	assert.Equal(t, 1000.0, mgr.CapacityPenalty())
}
