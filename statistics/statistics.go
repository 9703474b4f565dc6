// Package statistics collects one metrics record per genetic-algorithm
// iteration and exports them as CSV, per spec.md §6.
//
// Grounded on original_source/hgs/src/Statistics.cpp for the column set
// (collectSubPopStats's popSize/bestCost/avgCost/avgNumRoutes fields,
// doubled for the feasible and infeasible sub-populations), realized with
// stdlib encoding/csv. **Standard-library justification**: no CSV or
// metrics-export library appears anywhere in the example pack, and
// encoding/csv is already the complete, idiomatic answer for this exact
// column-per-iteration shape.
package statistics

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/katalvlaran/hgsvrp/population"
)

// missingValue substitutes for "no feasible solutions exist yet", mirroring
// Statistics.cpp's use of INT_MAX as a substitute for infinity.
const missingValue = math.MaxInt64

// Record is one iteration's snapshot, matching spec.md §6's CSV column set.
type Record struct {
	TotalRuntimeS   float64
	IterRuntimeS    float64
	FeasPopSize     int
	FeasBest        int64
	FeasAvg         int64
	FeasAvgRoutes   float64
	InfeasPopSize   int
	InfeasBest      int64
	InfeasAvg       int64
	InfeasAvgRoutes float64
}

// Collector accumulates one Record per iteration.
type Collector struct {
	records []Record
	start   time.Time
	lastIter time.Time
}

// NewCollector starts the Collector's wall-clock timers at the current
// instant.
func NewCollector() *Collector {
	now := time.Now()
	return &Collector{start: now, lastIter: now}
}

// CollectFrom appends one Record summarizing pop's current state, using the
// elapsed wall-clock time since NewCollector (or the previous CollectFrom)
// as the iteration's runtime.
func (c *Collector) CollectFrom(pop *population.Population) Record {
	now := time.Now()
	rec := Record{
		TotalRuntimeS: now.Sub(c.start).Seconds(),
		IterRuntimeS:  now.Sub(c.lastIter).Seconds(),
	}
	c.lastIter = now

	rec.FeasPopSize, rec.FeasBest, rec.FeasAvg, rec.FeasAvgRoutes = subPopStats(pop.Feasible)
	rec.InfeasPopSize, rec.InfeasBest, rec.InfeasAvg, rec.InfeasAvgRoutes = subPopStats(pop.Infeasible)

	c.records = append(c.records, rec)
	return rec
}

func subPopStats(sp *population.SubPopulation) (size int, best, avg int64, avgRoutes float64) {
	individuals := sp.Individuals()
	if len(individuals) == 0 {
		return 0, missingValue, missingValue, 0
	}
	size = len(individuals)
	best = int64(individuals[0].Cost)
	var totalCost int64
	var totalRoutes int
	for _, ind := range individuals {
		c := int64(ind.Cost)
		totalCost += c
		if c < best {
			best = c
		}
		totalRoutes += len(ind.Sol.Routes())
	}
	avg = totalCost / int64(size)
	avgRoutes = float64(totalRoutes) / float64(size)
	return size, best, avg, avgRoutes
}

// Records returns every Record collected so far.
func (c *Collector) Records() []Record { return c.records }

// header is the CSV column order from spec.md §6.
var header = []string{
	"total_runtime_s", "iter_runtime_s",
	"feas_pop_size", "feas_best", "feas_avg", "feas_avg_routes",
	"infeas_pop_size", "infeas_best", "infeas_avg", "infeas_avg_routes",
}

// WriteCSV writes the header row followed by one row per collected Record.
func (c *Collector) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range c.records {
		row := []string{
			strconv.FormatFloat(r.TotalRuntimeS, 'f', 6, 64),
			strconv.FormatFloat(r.IterRuntimeS, 'f', 6, 64),
			strconv.Itoa(r.FeasPopSize),
			strconv.FormatInt(r.FeasBest, 10),
			strconv.FormatInt(r.FeasAvg, 10),
			strconv.FormatFloat(r.FeasAvgRoutes, 'f', 3, 64),
			strconv.Itoa(r.InfeasPopSize),
			strconv.FormatInt(r.InfeasBest, 10),
			strconv.FormatInt(r.InfeasAvg, 10),
			strconv.FormatFloat(r.InfeasAvgRoutes, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
