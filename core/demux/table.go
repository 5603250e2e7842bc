// core/demux/table.go
package demux

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultIndexLen is the barcode width used by this assay: the first 8
// bases of each mate identify the originating population.
const DefaultIndexLen = 8

var (
	// ErrDuplicateIndex marks an index pair claimed by two populations,
	// which would make read routing ambiguous.
	ErrDuplicateIndex = errors.New("duplicate index pair")
	// ErrBadIndex marks an index of the wrong width or alphabet.
	ErrBadIndex = errors.New("invalid index")
)

// PopulationEntry is one row of the multiplexing table, loaded once per run
// and read-only afterwards.
type PopulationEntry struct {
	GWName     string // sequencing-facility sample name, e.g. "P22R1"
	Population string // population id, e.g. "1"
	Time       string // optional time label
	R1Index    string // forward index (first bases of R1)
	R2Index    string // reverse index (first bases of R2)
}

// Label returns the population folder/file prefix, e.g. "P1".
func (e *PopulationEntry) Label() string { return "P" + e.Population }

// IndexKey is the (forward, reverse) index pair that routes a read pair to
// a population.
type IndexKey struct {
	R1 string
	R2 string
}

// Table maps index pairs to populations. Build it once with NewTable; it is
// safe for concurrent lookups afterwards.
type Table struct {
	indexLen int
	entries  []*PopulationEntry
	byKey    map[IndexKey]*PopulationEntry
}

// NewTable validates rows and builds the lookup. Every index must be
// exactly indexLen bases over A/C/G/T (case-insensitive; stored upper), and
// every (R1Index, R2Index) pair must be unique.
func NewTable(rows []PopulationEntry, indexLen int) (*Table, error) {
	if indexLen <= 0 {
		indexLen = DefaultIndexLen
	}
	t := &Table{
		indexLen: indexLen,
		entries:  make([]*PopulationEntry, 0, len(rows)),
		byKey:    make(map[IndexKey]*PopulationEntry, len(rows)),
	}
	for i := range rows {
		e := rows[i]
		var err error
		if e.R1Index, err = normalizeIndex(e.R1Index, indexLen); err != nil {
			return nil, fmt.Errorf("population %s (GW_name %s): R1 %w", e.Population, e.GWName, err)
		}
		if e.R2Index, err = normalizeIndex(e.R2Index, indexLen); err != nil {
			return nil, fmt.Errorf("population %s (GW_name %s): R2 %w", e.Population, e.GWName, err)
		}
		k := IndexKey{R1: e.R1Index, R2: e.R2Index}
		if prev, ok := t.byKey[k]; ok {
			return nil, fmt.Errorf("%w %s/%s shared by populations %s and %s",
				ErrDuplicateIndex, k.R1, k.R2, prev.Population, e.Population)
		}
		t.byKey[k] = &e
		t.entries = append(t.entries, &e)
	}
	return t, nil
}

// TableFor builds a single-entry table restricted to one population, used
// when each population's reads arrive in their own file pair.
func TableFor(e *PopulationEntry, indexLen int) (*Table, error) {
	return NewTable([]PopulationEntry{*e}, indexLen)
}

// Lookup returns the population owning the given index pair, if any.
func (t *Table) Lookup(fwd, rev string) (*PopulationEntry, bool) {
	e, ok := t.byKey[IndexKey{R1: fwd, R2: rev}]
	return e, ok
}

// Entries returns the rows in input order.
func (t *Table) Entries() []*PopulationEntry { return t.entries }

// IndexLen returns the barcode width this table was built with.
func (t *Table) IndexLen() int { return t.indexLen }

func normalizeIndex(s string, indexLen int) (string, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if len(u) != indexLen {
		return "", fmt.Errorf("%w %q: want %d bases, got %d", ErrBadIndex, s, indexLen, len(u))
	}
	for i := 0; i < len(u); i++ {
		switch u[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return "", fmt.Errorf("%w %q: non-ACGT base %q at position %d", ErrBadIndex, s, u[i], i+1)
		}
	}
	return u, nil
}
