// Package penalty implements the adaptive penalty state that tracks recent
// feasibility rates and adjusts the load/time-warp penalty coefficients
// CostEvaluator uses, plus a temporary booster for repair attempts.
//
// Grounded on original_source/hgs/include/PenaltyManager.h for the
// adaptive-rate contract, and on core.Graph's defer-friendly
// "defer g.muVert.Unlock()" RAII idiom for the scoped Booster: Acquire
// returns a value whose Release restores the prior coefficients, meant to
// be deferred at the call site exactly like a mutex unlock.
package penalty

import "github.com/katalvlaran/hgsvrp/measure"

const (
	// minPenalty and maxPenalty bound both coefficients, per spec.md §4.7.
	minPenalty = 1
	maxPenalty = 1000

	// feasibilityBand is the +/-0.05 tolerance band around the target
	// feasibility rate within which neither coefficient is adjusted.
	feasibilityBand = 0.05
)

// Manager holds the current capacity and time-warp penalty coefficients and
// adjusts them based on observed feasibility rates.
type Manager struct {
	capacityPenalty float64
	timeWarpPenalty float64

	targetFeasible  float64
	penaltyIncrease float64
	penaltyDecrease float64
}

// Config configures a new Manager.
type Config struct {
	InitialCapacityPenalty float64
	InitialTimeWarpPenalty float64
	TargetFeasible         float64
	PenaltyIncrease        float64
	PenaltyDecrease        float64
}

// New constructs a Manager from cfg, clamping the initial coefficients into
// [minPenalty, maxPenalty].
func New(cfg Config) *Manager {
	return &Manager{
		capacityPenalty: clamp(cfg.InitialCapacityPenalty),
		timeWarpPenalty: clamp(cfg.InitialTimeWarpPenalty),
		targetFeasible:  cfg.TargetFeasible,
		penaltyIncrease: cfg.PenaltyIncrease,
		penaltyDecrease: cfg.PenaltyDecrease,
	}
}

func clamp(v float64) float64 {
	if v < minPenalty {
		return minPenalty
	}
	if v > maxPenalty {
		return maxPenalty
	}
	return v
}

// CapacityPenalty returns the current capacity penalty coefficient.
func (m *Manager) CapacityPenalty() float64 { return m.capacityPenalty }

// TimeWarpPenalty returns the current time-warp penalty coefficient.
func (m *Manager) TimeWarpPenalty() float64 { return m.timeWarpPenalty }

// UpdateCapacityPenalty adjusts the capacity coefficient based on the
// observed feasibility rate (fraction of recent solutions with zero excess
// load), per spec.md §4.7.
func (m *Manager) UpdateCapacityPenalty(feasRate float64) {
	m.capacityPenalty = adjust(m.capacityPenalty, feasRate, m.targetFeasible, m.penaltyIncrease, m.penaltyDecrease)
}

// UpdateTimeWarpPenalty adjusts the time-warp coefficient based on the
// observed feasibility rate (fraction of recent solutions with zero time
// warp), per spec.md §4.7.
func (m *Manager) UpdateTimeWarpPenalty(feasRate float64) {
	m.timeWarpPenalty = adjust(m.timeWarpPenalty, feasRate, m.targetFeasible, m.penaltyIncrease, m.penaltyDecrease)
}

func adjust(penalty, feasRate, target, increase, decrease float64) float64 {
	switch {
	case feasRate < target-feasibilityBand:
		penalty *= increase
	case feasRate > target+feasibilityBand:
		penalty *= decrease
	}
	return clamp(penalty)
}

// Booster is a scoped handle returned by Acquire: it multiplies both
// coefficients by a boost factor, and Release restores the coefficients the
// Manager held at the moment of acquisition. Intended usage:
//
//	b := mgr.Acquire(repairBooster)
//	defer b.Release()
type Booster struct {
	mgr             *Manager
	priorCapacity   float64
	priorTimeWarp   float64
}

// Acquire boosts both penalty coefficients by factor (clamped into
// [minPenalty, maxPenalty]) and returns a handle that restores the prior
// coefficients on Release.
func (m *Manager) Acquire(factor float64) *Booster {
	b := &Booster{mgr: m, priorCapacity: m.capacityPenalty, priorTimeWarp: m.timeWarpPenalty}
	m.capacityPenalty = clamp(m.capacityPenalty * factor)
	m.timeWarpPenalty = clamp(m.timeWarpPenalty * factor)
	return b
}

// Release restores the Manager's coefficients to what they were when
// Acquire was called. Release is idempotent after the first call.
func (b *Booster) Release() {
	if b.mgr == nil {
		return
	}
	b.mgr.capacityPenalty = b.priorCapacity
	b.mgr.timeWarpPenalty = b.priorTimeWarp
	b.mgr = nil
}

// LoadOf converts an excess-load measure to the float64 the CostEvaluator
// expects, a small adapter so callers needn't import measure themselves.
func LoadOf(l measure.Load) float64 { return float64(l) }
