// Package population implements the feasible/infeasible SubPopulation pair,
// biased-fitness ranking, broken-pairs diversity, binary-tournament parent
// selection, and restart, per spec.md §4.5.
//
// Grounded on tsp's bbEngine incumbent-tracking fields (bestTour, bestCost,
// foundAny) generalized from "track one incumbent" to "maintain a ranked,
// diversity-aware population", and on core.Graph's map-of-maps adjacency
// structure reused as the shape for the proximity map.
package population

import (
	"math/rand"
	"sort"

	"github.com/katalvlaran/hgsvrp/costeval"
	"github.com/katalvlaran/hgsvrp/measure"
	"github.com/katalvlaran/hgsvrp/solution"
	"github.com/katalvlaran/hgsvrp/vrpdata"
)

// Individual is one solution tracked by a SubPopulation, together with its
// penalised cost and feasibility under the Population's current
// CostEvaluator.
type Individual struct {
	Sol      *solution.Solution
	Cost     measure.Cost
	Feasible bool
}

// proximityEntry is one (distance, other) pair in an Individual's sorted
// proximity list.
type proximityEntry struct {
	dist  float64
	other *Individual
}

// Config sizes and tunes a Population, per spec.md §6's sizing table.
type Config struct {
	MinPopSize     int
	GenerationSize int
	NbElite        int
	NbClose        int
	LbDiversity    float64
	UbDiversity    float64
	MaxSelectTries int
}

// DefaultConfig returns spec.md §6's default sizing.
func DefaultConfig() Config {
	return Config{
		MinPopSize: 25, GenerationSize: 40, NbElite: 4, NbClose: 5,
		LbDiversity: 0.1, UbDiversity: 0.5, MaxSelectTries: 5,
	}
}

// SubPopulation is a sorted, diversity-aware container of Individuals, one
// instance each for feasible and infeasible solutions.
type SubPopulation struct {
	individuals []*Individual
	proximity   map[*Individual][]proximityEntry
	cfg         Config
}

func newSubPopulation(cfg Config) *SubPopulation {
	return &SubPopulation{proximity: make(map[*Individual][]proximityEntry), cfg: cfg}
}

// Size returns the number of individuals currently held.
func (sp *SubPopulation) Size() int { return len(sp.individuals) }

// Individuals returns the current individuals, sorted by ascending cost.
func (sp *SubPopulation) Individuals() []*Individual { return sp.individuals }

// Add inserts ind in cost order, rebuilds the proximity structure, and purges
// down to MinPopSize if the sub-population has grown past
// MinPopSize+GenerationSize.
func (sp *SubPopulation) Add(ind *Individual) {
	sp.individuals = append(sp.individuals, ind)
	sort.SliceStable(sp.individuals, func(i, j int) bool { return sp.individuals[i].Cost < sp.individuals[j].Cost })
	sp.rebuildProximity()
	if len(sp.individuals) > sp.cfg.MinPopSize+sp.cfg.GenerationSize {
		sp.purge()
	}
}

// rebuildProximity recomputes every individual's sorted neighbour-distance
// list from scratch via solution.BrokenPairsDistance. O(n^2 log n); fine at
// the population sizes spec.md §6 specifies (tens of individuals).
func (sp *SubPopulation) rebuildProximity() {
	for _, ind := range sp.individuals {
		entries := make([]proximityEntry, 0, len(sp.individuals)-1)
		for _, other := range sp.individuals {
			if other == ind {
				continue
			}
			entries = append(entries, proximityEntry{dist: solution.BrokenPairsDistance(ind.Sol, other.Sol), other: other})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].dist < entries[j].dist })
		sp.proximity[ind] = entries
	}
}

// avgDistanceToClosest returns the average broken-pairs distance from ind
// to its NbClose closest neighbours (or all neighbours, if fewer exist).
func (sp *SubPopulation) avgDistanceToClosest(ind *Individual) float64 {
	entries := sp.proximity[ind]
	if len(entries) == 0 {
		return 0
	}
	k := sp.cfg.NbClose
	if k > len(entries) {
		k = len(entries)
	}
	var sum float64
	for i := 0; i < k; i++ {
		sum += entries[i].dist
	}
	return sum / float64(k)
}

// biasedFitness computes every individual's fitness per spec.md §4.5: rank
// by cost (Rc), rank by descending average-closest-distance (Rd), fitness =
// Rc/N + (1 - nbElite/N)*Rd/N.
func (sp *SubPopulation) biasedFitness() map[*Individual]float64 {
	n := len(sp.individuals)
	fitness := make(map[*Individual]float64, n)
	if n == 0 {
		return fitness
	}

	byCost := append([]*Individual(nil), sp.individuals...)
	sort.SliceStable(byCost, func(i, j int) bool { return byCost[i].Cost < byCost[j].Cost })
	rc := make(map[*Individual]int, n)
	for i, ind := range byCost {
		rc[ind] = i
	}

	byDist := append([]*Individual(nil), sp.individuals...)
	sort.SliceStable(byDist, func(i, j int) bool {
		return sp.avgDistanceToClosest(byDist[i]) > sp.avgDistanceToClosest(byDist[j])
	})
	rd := make(map[*Individual]int, n)
	for i, ind := range byDist {
		rd[ind] = i
	}

	nElitePenaltyFactor := 1.0
	if n > 0 {
		nElitePenaltyFactor = 1.0 - float64(sp.cfg.NbElite)/float64(n)
	}
	for _, ind := range sp.individuals {
		fitness[ind] = float64(rc[ind])/float64(n) + nElitePenaltyFactor*float64(rd[ind])/float64(n)
	}
	return fitness
}

// purge removes solutions until Size()==MinPopSize: exact duplicates
// (broken-pairs distance 0) first, then the worst biased-fitness individual.
func (sp *SubPopulation) purge() {
	for len(sp.individuals) > sp.cfg.MinPopSize {
		if sp.removeOneDuplicate() {
			continue
		}
		fitness := sp.biasedFitness()
		worst, worstFitness := 0, -1.0
		for i, ind := range sp.individuals {
			if f := fitness[ind]; f > worstFitness {
				worst, worstFitness = i, f
			}
		}
		sp.removeAt(worst)
	}
}

func (sp *SubPopulation) removeOneDuplicate() bool {
	for i, ind := range sp.individuals {
		for _, e := range sp.proximity[ind] {
			if e.dist == 0 {
				sp.removeAt(i)
				return true
			}
		}
	}
	return false
}

func (sp *SubPopulation) removeAt(i int) {
	ind := sp.individuals[i]
	sp.individuals = append(sp.individuals[:i], sp.individuals[i+1:]...)
	delete(sp.proximity, ind)
	sp.rebuildProximity()
}

// Population holds the feasible and infeasible SubPopulations and tracks the
// best feasible solution seen across all generations.
type Population struct {
	data *vrpdata.ProblemData
	ce   costeval.CostEvaluator
	cfg  Config

	Feasible   *SubPopulation
	Infeasible *SubPopulation

	best *Individual
}

// New builds an empty Population.
func New(data *vrpdata.ProblemData, ce costeval.CostEvaluator, cfg Config) *Population {
	return &Population{
		data: data, ce: ce, cfg: cfg,
		Feasible:   newSubPopulation(cfg),
		Infeasible: newSubPopulation(cfg),
	}
}

// Add prices sol under the Population's CostEvaluator, wraps it in an
// Individual, routes it to the feasible or infeasible SubPopulation, and
// updates BestFound if it is the new best feasible solution.
func (p *Population) Add(sol *solution.Solution) *Individual {
	ind := &Individual{Sol: sol, Cost: p.ce.PenalisedCost(p.data, sol), Feasible: sol.IsFeasible()}
	if ind.Feasible {
		p.Feasible.Add(ind)
		if p.best == nil || ind.Cost < p.best.Cost {
			p.best = ind
		}
	} else {
		p.Infeasible.Add(ind)
	}
	return ind
}

// BestFound returns the lowest-cost feasible solution seen so far, or nil
// if no feasible solution has been added.
func (p *Population) BestFound() *Individual { return p.best }

// union returns every individual across both sub-populations, alongside
// each one's biased fitness computed within its own sub-population.
func (p *Population) union() ([]*Individual, map[*Individual]float64) {
	all := make([]*Individual, 0, p.Feasible.Size()+p.Infeasible.Size())
	all = append(all, p.Feasible.Individuals()...)
	all = append(all, p.Infeasible.Individuals()...)

	fitness := make(map[*Individual]float64, len(all))
	for k, v := range p.Feasible.biasedFitness() {
		fitness[k] = v
	}
	for k, v := range p.Infeasible.biasedFitness() {
		fitness[k] = v
	}
	return all, fitness
}

// BinaryTournament samples two distinct individuals uniformly from the
// union of both sub-populations and returns the one with lower biased
// fitness, per spec.md §4.5.
func (p *Population) BinaryTournament(r *rand.Rand) *Individual {
	all, fitness := p.union()
	if len(all) == 0 {
		return nil
	}
	if len(all) == 1 {
		return all[0]
	}
	i := r.Intn(len(all))
	j := i
	for j == i {
		j = r.Intn(len(all))
	}
	a, b := all[i], all[j]
	if fitness[a] <= fitness[b] {
		return a
	}
	return b
}

// SelectParents runs two binary tournaments; if the pair's broken-pairs
// distance falls outside [LbDiversity, UbDiversity], the second draw is
// redrawn up to MaxSelectTries times, per spec.md §4.5.
func (p *Population) SelectParents(r *rand.Rand) (*Individual, *Individual) {
	first := p.BinaryTournament(r)
	if first == nil {
		return nil, nil
	}
	second := p.BinaryTournament(r)
	for i := 0; i < p.cfg.MaxSelectTries && second != nil; i++ {
		d := solution.BrokenPairsDistance(first.Sol, second.Sol)
		if d >= p.cfg.LbDiversity && d <= p.cfg.UbDiversity {
			break
		}
		second = p.BinaryTournament(r)
	}
	return first, second
}

// Restart clears both sub-populations down to their nbKeep best individuals
// (by cost), discarding the rest; the caller is responsible for refilling
// the Population with newly generated solutions via Add, per spec.md §4.5.
func (p *Population) Restart(nbKeep int) {
	p.Feasible.keepBest(nbKeep)
	p.Infeasible.keepBest(nbKeep)
}

func (sp *SubPopulation) keepBest(nbKeep int) {
	sort.SliceStable(sp.individuals, func(i, j int) bool { return sp.individuals[i].Cost < sp.individuals[j].Cost })
	if nbKeep < len(sp.individuals) {
		sp.individuals = sp.individuals[:nbKeep]
	}
	sp.proximity = make(map[*Individual][]proximityEntry)
	sp.rebuildProximity()
}
