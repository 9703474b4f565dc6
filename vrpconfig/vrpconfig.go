// Package vrpconfig collects every tunable named in spec.md §6's
// configuration table into one Config struct, built via functional options
// with a DefaultOptions() baseline, per the teacher's dijkstra.Options /
// dijkstra.DefaultOptions idiom (same Option func(*Config) shape, same
// "panic in the option constructor on an out-of-range value" convention for
// options whose validity can be checked locally; options whose validity
// depends on another field, such as ubDiversity > lbDiversity, are instead
// checked once in Validate).
package vrpconfig

import (
	"errors"
	"time"
)

// Sentinel errors returned by Validate.
var (
	ErrDiversityWindowInverted = errors.New("vrpconfig: ubDiversity must be > lbDiversity")
	ErrNonPositivePopSize      = errors.New("vrpconfig: minPopSize must be > 0")
	ErrProbabilityOutOfRange   = errors.New("vrpconfig: probability must be in [0, 100]")
	ErrNonPositiveGranularity  = errors.New("vrpconfig: nbGranular must be > 0")
)

// Config holds every tunable of the genetic-algorithm search, per spec.md
// §6's configuration table.
type Config struct {
	Seed      int64
	NbIter    int
	TimeLimit time.Duration

	MinPopSize     int
	GenerationSize int
	NbElite        int
	NbClose        int

	LbDiversity float64
	UbDiversity float64

	TargetFeasible    float64
	RepairProbability int
	RepairBooster     float64
	SelectProbability int

	NbGranular     int
	WeightWaitTime float64
	WeightTimeWarp float64

	PenaltyIncrease        float64
	PenaltyDecrease        float64
	FeasBooster            float64
	NbPenaltyManagement    int
	InitialTimeWarpPenalty float64

	ShouldIntensify       bool
	PostProcessPathLength int
	NbKeepOnRestart       int
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithSeed sets the RNG seed.
func WithSeed(seed int64) Option { return func(c *Config) { c.Seed = seed } }

// WithNbIter sets the idle-iteration stopping bound. Panics on a
// non-positive value, per the teacher's "invalid argument panics in the
// option constructor" convention.
func WithNbIter(n int) Option {
	if n <= 0 {
		panic("vrpconfig: nbIter must be > 0")
	}
	return func(c *Config) { c.NbIter = n }
}

// WithTimeLimit sets the wall-clock stopping bound; zero means no limit.
func WithTimeLimit(d time.Duration) Option { return func(c *Config) { c.TimeLimit = d } }

// WithPopulationSizing sets the four population-sizing parameters together,
// since they are always tuned as a unit in practice.
func WithPopulationSizing(minPopSize, generationSize, nbElite, nbClose int) Option {
	return func(c *Config) {
		c.MinPopSize, c.GenerationSize, c.NbElite, c.NbClose = minPopSize, generationSize, nbElite, nbClose
	}
}

// WithDiversityWindow sets the parent-selection diversity window.
func WithDiversityWindow(lb, ub float64) Option {
	return func(c *Config) { c.LbDiversity, c.UbDiversity = lb, ub }
}

// WithTargetFeasible sets the feasibility-rate target the penalty manager
// steers toward.
func WithTargetFeasible(target float64) Option { return func(c *Config) { c.TargetFeasible = target } }

// WithRepairProbability sets the 0-100 chance of a repair attempt on an
// infeasible child. Panics if out of [0, 100].
func WithRepairProbability(pct int) Option {
	if pct < 0 || pct > 100 {
		panic("vrpconfig: repairProbability must be in [0, 100]")
	}
	return func(c *Config) { c.RepairProbability = pct }
}

// WithRepairBooster sets the penalty multiplier applied during a repair attempt.
func WithRepairBooster(factor float64) Option { return func(c *Config) { c.RepairBooster = factor } }

// WithSelectProbability sets the offspring-selection bias (0-100). Panics if
// out of range.
func WithSelectProbability(pct int) Option {
	if pct < 0 || pct > 100 {
		panic("vrpconfig: selectProbability must be in [0, 100]")
	}
	return func(c *Config) { c.SelectProbability = pct }
}

// WithGranularNeighbourhood sets the granular neighbourhood size and its
// proximity weighting. Panics if nbGranular isn't positive.
func WithGranularNeighbourhood(nbGranular int, weightWaitTime, weightTimeWarp float64) Option {
	if nbGranular <= 0 {
		panic("vrpconfig: nbGranular must be > 0")
	}
	return func(c *Config) {
		c.NbGranular, c.WeightWaitTime, c.WeightTimeWarp = nbGranular, weightWaitTime, weightTimeWarp
	}
}

// WithPenaltyControl sets the penalty-manager's rate-control parameters.
func WithPenaltyControl(increase, decrease, feasBooster float64, nbPenaltyManagement int) Option {
	return func(c *Config) {
		c.PenaltyIncrease, c.PenaltyDecrease, c.FeasBooster, c.NbPenaltyManagement =
			increase, decrease, feasBooster, nbPenaltyManagement
	}
}

// WithInitialTimeWarpPenalty sets the penalty manager's seed time-warp
// coefficient.
func WithInitialTimeWarpPenalty(p float64) Option {
	return func(c *Config) { c.InitialTimeWarpPenalty = p }
}

// WithShouldIntensify toggles whether route-level operators run after a new
// best-found solution.
func WithShouldIntensify(b bool) Option { return func(c *Config) { c.ShouldIntensify = b } }

// WithPostProcessPathLength sets the sub-path enumeration window used by
// post-optimization.
func WithPostProcessPathLength(n int) Option {
	return func(c *Config) { c.PostProcessPathLength = n }
}

// WithNbKeepOnRestart sets how many solutions survive a population restart.
func WithNbKeepOnRestart(n int) Option { return func(c *Config) { c.NbKeepOnRestart = n } }

// DefaultOptions returns a Config initialized with spec.md §6's defaults,
// ready for further functional-option overrides.
func DefaultOptions() Config {
	return Config{
		Seed:      0,
		NbIter:    10000,
		TimeLimit: 0,

		MinPopSize:     25,
		GenerationSize: 40,
		NbElite:        4,
		NbClose:        5,

		LbDiversity: 0.1,
		UbDiversity: 0.5,

		TargetFeasible:    0.43,
		RepairProbability: 79,
		RepairBooster:     12,
		SelectProbability: 90,

		NbGranular:     34,
		WeightWaitTime: 18,
		WeightTimeWarp: 20,

		PenaltyIncrease:        1.34,
		PenaltyDecrease:        0.32,
		FeasBooster:            2.5,
		NbPenaltyManagement:    47,
		InitialTimeWarpPenalty: 6,

		ShouldIntensify:       true,
		PostProcessPathLength: 7,
		NbKeepOnRestart:       0,
	}
}

// New builds a Config from DefaultOptions(), applying opts in order.
func New(opts ...Option) Config {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Validate checks the cross-field invariants that individual Option
// constructors cannot, per spec.md §7's "invalid configuration" error kind.
func (c Config) Validate() error {
	if c.UbDiversity <= c.LbDiversity {
		return ErrDiversityWindowInverted
	}
	if c.MinPopSize <= 0 {
		return ErrNonPositivePopSize
	}
	if c.RepairProbability < 0 || c.RepairProbability > 100 || c.SelectProbability < 0 || c.SelectProbability > 100 {
		return ErrProbabilityOutOfRange
	}
	if c.NbGranular <= 0 {
		return ErrNonPositiveGranularity
	}
	return nil
}
