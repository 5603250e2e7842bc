// core/demux/classify.go
package demux

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"umidemux-core/fastq"
)

// Class is the routing decision for one read pair.
type Class int

const (
	ClassMatched Class = iota
	ClassShort
	ClassUnmatched
	ClassDesync
)

func (c Class) String() string {
	switch c {
	case ClassMatched:
		return "matched"
	case ClassShort:
		return "short"
	case ClassUnmatched:
		return "unmatched"
	case ClassDesync:
		return "desync"
	}
	return "unknown"
}

// DefaultMinLen is the read-length floor: a pair with either mate below it
// is routed to the short sink before any index lookup.
const DefaultMinLen = 150

// ProgressEvery is the pair cadence at which Progress callbacks fire.
const ProgressEvery = 10000

// Result is one classified pair. Pop is non-nil only for ClassMatched.
type Result struct {
	Class Class
	Pop   *PopulationEntry
	Pair  fastq.Pair
}

// Counts are the per-run classification totals. Conservation holds after a
// full pass: Total == Desync + Short + Unmatched + sum over Matched.
type Counts struct {
	Total     int
	Short     int
	Unmatched int
	Desync    int
	Matched   map[string]int // key: population label, e.g. "P1"
}

func NewCounts() *Counts {
	return &Counts{Matched: make(map[string]int)}
}

// MatchedTotal sums matched reads over all populations.
func (c *Counts) MatchedTotal() int {
	n := 0
	for _, v := range c.Matched {
		n += v
	}
	return n
}

// Conserved reports whether every pair landed in exactly one bucket.
func (c *Counts) Conserved() bool {
	return c.Total == c.Desync+c.Short+c.Unmatched+c.MatchedTotal()
}

// Merge folds other into c. Used as the single aggregation point after
// per-population pipelines finish.
func (c *Counts) Merge(other *Counts) {
	if other == nil {
		return
	}
	c.Total += other.Total
	c.Short += other.Short
	c.Unmatched += other.Unmatched
	c.Desync += other.Desync
	for k, v := range other.Matched {
		c.Matched[k] += v
	}
}

// Classifier streams synchronized R1/R2 reads and routes each pair as
// short, unmatched, or matched-to-population. One pair is held in memory
// per step; there is no backtracking and no buffering.
type Classifier struct {
	Table    *Table
	MinLen   int              // length floor; <=0 means DefaultMinLen
	Log      *slog.Logger     // nil means no logging
	Progress func(pairs int)  // called every ProgressEvery pairs; may be nil
}

// Run consumes the pair stream until EOF or ctx cancellation, calling visit
// for every routed pair. Desync pairs (mate headers disagree) are logged,
// counted, and never passed to visit: no file slot is correct for them.
func (c *Classifier) Run(ctx context.Context, pairs *fastq.PairScanner, visit func(Result) error) (*Counts, error) {
	minLen := c.MinLen
	if minLen <= 0 {
		minLen = DefaultMinLen
	}
	indexLen := c.Table.IndexLen()
	counts := NewCounts()

	for {
		select {
		case <-ctx.Done():
			return counts, ctx.Err()
		default:
		}
		p, err := pairs.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return counts, err
		}
		counts.Total++

		res := c.classify(p, minLen, indexLen)
		switch res.Class {
		case ClassDesync:
			counts.Desync++
			if c.Log != nil {
				c.Log.Warn("mate headers do not match; skipping pair",
					"r1", p.R1.Name(), "r2", p.R2.Name())
			}
		case ClassShort:
			counts.Short++
		case ClassUnmatched:
			counts.Unmatched++
		case ClassMatched:
			counts.Matched[res.Pop.Label()]++
		}
		if res.Class != ClassDesync {
			if err := visit(res); err != nil {
				return counts, err
			}
		}
		if c.Progress != nil && counts.Total%ProgressEvery == 0 {
			c.Progress(counts.Total)
		}
	}
}

// classify applies the per-pair checks in their required order: identity,
// then length floor, then index lookup. The short determination takes
// precedence over index matching.
func (c *Classifier) classify(p fastq.Pair, minLen, indexLen int) Result {
	if p.R1.Name() != p.R2.Name() {
		return Result{Class: ClassDesync, Pair: p}
	}
	if p.R1.Len() < minLen || p.R2.Len() < minLen {
		return Result{Class: ClassShort, Pair: p}
	}
	// Length floor >= index width is enforced at config time, so slicing
	// the index prefix here cannot go out of bounds.
	fwd := strings.ToUpper(string(p.R1.Seq[:indexLen]))
	rev := strings.ToUpper(string(p.R2.Seq[:indexLen]))
	if pop, ok := c.Table.Lookup(fwd, rev); ok {
		return Result{Class: ClassMatched, Pop: pop, Pair: p}
	}
	return Result{Class: ClassUnmatched, Pair: p}
}
