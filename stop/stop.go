// Package stop implements the GeneticAlgorithm driver's termination
// predicates: maximum iterations, maximum wall-clock runtime, and maximum
// iterations without improvement.
//
// Grounded directly on original_source/hgs/include/stop/{StoppingCriterion,
// MaxIterations,MaxRuntime}.h, translated idiom-for-idiom into a Go
// interface with a Stop(bestCost) bool method, and the original's
// panicking constructors replaced by error-returning constructors per Go
// convention.
package stop

import (
	"errors"
	"time"

	"github.com/katalvlaran/hgsvrp/measure"
)

// Sentinel errors for stop-criterion construction.
var (
	// ErrZeroIterations indicates MaxIterations was given a non-positive budget.
	ErrZeroIterations = errors.New("stop: zero iterations is not understood")

	// ErrNonPositiveRuntime indicates MaxRuntime was given a non-positive duration.
	ErrNonPositiveRuntime = errors.New("stop: runtime <= 0 is not understood")

	// ErrNonPositiveIdleLimit indicates MaxIdleIterations was given a non-positive budget.
	ErrNonPositiveIdleLimit = errors.New("stop: zero idle iterations is not understood")
)

// Criterion decides, once per outer-loop iteration, whether the genetic
// algorithm should stop. Stop is called with the current best-found cost
// (measure.Cost(-1) if no feasible solution has been found yet) once per
// iteration boundary; a running iteration always completes cleanly before
// Stop is consulted, per spec.md §5.
type Criterion interface {
	Stop(bestCost measure.Cost) bool
}

// MaxIterations stops after a fixed number of calls to Stop.
type MaxIterations struct {
	max     int
	current int
}

// NewMaxIterations returns a MaxIterations criterion that stops after max
// calls to Stop.
func NewMaxIterations(max int) (*MaxIterations, error) {
	if max <= 0 {
		return nil, ErrZeroIterations
	}
	return &MaxIterations{max: max}, nil
}

// Stop increments the internal counter and reports whether the limit was reached.
func (m *MaxIterations) Stop(measure.Cost) bool {
	m.current++
	return m.current > m.max
}

// MaxRuntime stops once maxRuntime has elapsed since construction.
type MaxRuntime struct {
	maxRuntime time.Duration
	start      time.Time
	now        func() time.Time
}

// NewMaxRuntime returns a MaxRuntime criterion whose clock starts now.
func NewMaxRuntime(maxRuntime time.Duration) (*MaxRuntime, error) {
	if maxRuntime <= 0 {
		return nil, ErrNonPositiveRuntime
	}
	return &MaxRuntime{maxRuntime: maxRuntime, start: time.Now(), now: time.Now}, nil
}

// Stop reports whether maxRuntime has elapsed since construction.
func (m *MaxRuntime) Stop(measure.Cost) bool {
	return m.now().Sub(m.start) >= m.maxRuntime
}

// MaxIdleIterations stops once maxIdle consecutive calls to Stop have
// passed without a strict improvement in bestCost.
type MaxIdleIterations struct {
	maxIdle    int
	idle       int
	haveBest   bool
	bestCost   measure.Cost
}

// NewMaxIdleIterations returns a MaxIdleIterations criterion.
func NewMaxIdleIterations(maxIdle int) (*MaxIdleIterations, error) {
	if maxIdle <= 0 {
		return nil, ErrNonPositiveIdleLimit
	}
	return &MaxIdleIterations{maxIdle: maxIdle}, nil
}

// Stop reports whether bestCost hasn't strictly improved for maxIdle
// consecutive calls. A bestCost of measure.Cost(-1) (no feasible solution
// yet) never counts as an improvement and never resets the idle counter.
func (m *MaxIdleIterations) Stop(bestCost measure.Cost) bool {
	if bestCost < 0 {
		m.idle++
		return m.idle > m.maxIdle
	}
	if !m.haveBest || bestCost < m.bestCost {
		m.haveBest = true
		m.bestCost = bestCost
		m.idle = 0
		return false
	}
	m.idle++
	return m.idle > m.maxIdle
}

// Any combines multiple criteria: it stops as soon as any one of them
// signals stop (all are still called every iteration, so each keeps its
// own internal counters consistent).
type Any []Criterion

// Stop reports whether any contained criterion signals stop.
func (a Any) Stop(bestCost measure.Cost) bool {
	stop := false
	for _, c := range a {
		if c.Stop(bestCost) {
			stop = true
		}
	}
	return stop
}
