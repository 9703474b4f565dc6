package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/segment"
)

func client(idx int, dur, twE, twL measure.Duration) segment.DurationSegment {
	return segment.DurationSegment{
		IdxFirst: idx,
		IdxLast:  idx,
		Duration: dur,
		TwEarly:  twE,
		TwLate:   twL,
	}
}

// TestDurationMergeAssociative verifies segment algebra law #6: merge is
// associative for any three segments and matching edge weights.
func TestDurationMergeAssociative(t *testing.T) {
	a := client(0, 10, 0, 100)
	b := client(1, 20, 50, 150)
	c := client(2, 5, 60, 200)

	const eAB, eBC measure.Duration = 15, 8

	left := a.Merge(eAB, b).Merge(eBC, c)
	right := a.Merge(eAB, b.Merge(eBC, c))

	assert.Equal(t, left, right)
}

// TestDurationMergeZeroEdgeIdentity verifies law #7: merging a segment with
// itself via a zero edge behaves predictably (duration doubles, tw window
// shrinks to the intersection).
func TestDurationMergeZeroEdgeIdentity(t *testing.T) {
	a := client(0, 10, 0, 100)
	merged := a.Merge(0, a)
	assert.Equal(t, measure.Duration(20), merged.Duration)
	assert.Equal(t, measure.Duration(0), merged.TimeWarp)
}

// TestDurationMergeTardiness checks that arriving after b's twLate produces
// positive time warp and no waiting.
func TestDurationMergeTardiness(t *testing.T) {
	a := client(0, 0, 0, 5) // a starts at 0, takes 0 duration, window [0,5]
	b := client(1, 0, 0, 3) // b's window closes at 3
	merged := a.Merge(10, b)
	// atOther = 0 - 0 + 10 = 10; diffTw = max(0+10-3,0) = 7
	assert.Equal(t, measure.Duration(7), merged.TimeWarp)
	assert.Equal(t, measure.Duration(0), merged.TwEarly)
	assert.Equal(t, measure.Duration(0), merged.TwLate)
}

// TestDurationMergeWaiting checks that arriving early produces waiting time
// but no time warp: a's tight TwLate forces diffWait > 0 against b's later window.
func TestDurationMergeWaiting(t *testing.T) {
	a := client(0, 0, 0, 5)
	b := client(1, 0, 50, 100)
	merged := a.Merge(10, b)
	// atOther = 0-0+10 = 10; diffTw = max(0+10-100,0) = 0; diffWait = max(50-10-5,0) = 35.
	assert.Equal(t, measure.Duration(0), merged.TimeWarp)
	assert.Equal(t, measure.Duration(45), merged.Duration)
}

func TestTotalTimeWarpIncludesRelease(t *testing.T) {
	seg := segment.DurationSegment{TwLate: 10, ReleaseTime: 15}
	require.Equal(t, measure.Duration(5), seg.TotalTimeWarp())
}

func TestLoadSegmentMergeAndExcess(t *testing.T) {
	a := segment.LoadSegment{Demand: 5, Supply: 0, MaxLoad: 5}
	b := segment.LoadSegment{Demand: 3, Supply: 0, MaxLoad: 3}
	merged := a.Merge(b)
	assert.Equal(t, measure.Load(8), merged.Demand)
	assert.Equal(t, measure.Load(8), merged.MaxLoad)
	assert.Equal(t, measure.Load(3), merged.ExcessLoad(5))
	assert.Equal(t, measure.Load(0), merged.ExcessLoad(10))
}

func TestLoadSegmentMergeAssociative(t *testing.T) {
	a := segment.LoadSegment{Demand: 2, Supply: 1, MaxLoad: 2}
	b := segment.LoadSegment{Demand: 3, Supply: 0, MaxLoad: 3}
	c := segment.LoadSegment{Demand: 1, Supply: 2, MaxLoad: 1}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	assert.Equal(t, left, right)
}

func TestDistanceSegmentMerge(t *testing.T) {
	a := segment.DistanceSegment{Distance: 10}
	b := segment.DistanceSegment{Distance: 20}
	merged := a.Merge(5, b)
	assert.Equal(t, measure.Distance(35), merged.Distance)
}

func TestMergeDistancesFold(t *testing.T) {
	segs := []segment.DistanceSegment{{Distance: 1}, {Distance: 2}, {Distance: 3}}
	edges := []measure.Distance{10, 20}
	got := segment.MergeDistances(segs, edges)
	assert.Equal(t, measure.Distance(1+10+2+20+3), got.Distance)
}
