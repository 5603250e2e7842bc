// core/umi/library.go
package umi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"umidemux-core/fastq"
)

// PairKey groups reads that carry the same (forward, reverse) UMI pair.
type PairKey struct {
	Forward string
	Reverse string
}

// entry accumulates the trimmed mates under one key. Read names are carried
// alongside during accumulation so pairing order can be asserted, then
// dropped from the final artifact.
type entry struct {
	r1, r2       []string
	r1IDs, r2IDs []string
}

// Library is the per-population UMI collection: for every key, the i-th R1
// sequence and the i-th R2 sequence come from the same read pair.
type Library struct {
	entries map[PairKey]*entry
}

// Len returns the number of distinct UMI pairs.
func (l *Library) Len() int { return len(l.entries) }

// Keys returns all UMI pairs sorted by (forward, reverse) so that iteration
// order, and any serialized artifact, is deterministic.
func (l *Library) Keys() []PairKey {
	keys := make([]PairKey, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Forward != keys[j].Forward {
			return keys[i].Forward < keys[j].Forward
		}
		return keys[i].Reverse < keys[j].Reverse
	})
	return keys
}

// Reads returns the trimmed R1 and R2 sequence lists under k. The two
// slices always have equal length.
func (l *Library) Reads(k PairKey) (r1, r2 []string) {
	e, ok := l.entries[k]
	if !ok {
		return nil, nil
	}
	return e.r1, e.r2
}

// Stats are the per-population aggregation totals.
type Stats struct {
	TotalReads     int
	ReadsWithUMI   int
	UniqueUMIPairs int
	Desync         int
}

// MeanReadsPerUMI is ReadsWithUMI / UniqueUMIPairs. ok is false when no UMI
// pair was observed (the mean is undefined, not zero).
func (s Stats) MeanReadsPerUMI() (float64, bool) {
	if s.UniqueUMIPairs == 0 {
		return 0, false
	}
	return float64(s.ReadsWithUMI) / float64(s.UniqueUMIPairs), true
}

// Builder re-scans a population's matched reads and groups trimmed
// sequence pairs by UMI pair.
type Builder struct {
	Forward  Template        // applied to R1
	Reverse  Template        // applied to R2
	Log      *slog.Logger    // nil means no logging
	Progress func(reads int) // called every ProgressEvery pairs; may be nil
}

// ProgressEvery is the pair cadence at which Progress callbacks fire.
const ProgressEvery = 10000

// Build consumes the paired stream until EOF or ctx cancellation. Pairs
// with mismatched mate names are skipped with a warning; pairs where either
// mate yields no UMI count toward TotalReads only. Retained mates are
// trimmed past their full primer (anchor included) before storage.
func (b *Builder) Build(ctx context.Context, pairs *fastq.PairScanner) (*Library, Stats, error) {
	lib := &Library{entries: make(map[PairKey]*entry)}
	var stats Stats

	for {
		select {
		case <-ctx.Done():
			return lib, stats, ctx.Err()
		default:
		}
		p, err := pairs.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return lib, stats, err
		}
		stats.TotalReads++

		if p.R1.Name() != p.R2.Name() {
			stats.Desync++
			if b.Log != nil {
				b.Log.Warn("mate headers do not match; pair excluded from UMI library",
					"r1", p.R1.Name(), "r2", p.R2.Name())
			}
			continue
		}

		fwdUMI, fwdTrim, ok1 := b.Forward.Extract(p.R1.Seq)
		revUMI, revTrim, ok2 := b.Reverse.Extract(p.R2.Seq)
		if !ok1 || !ok2 {
			continue
		}
		stats.ReadsWithUMI++

		k := PairKey{Forward: fwdUMI, Reverse: revUMI}
		e, seen := lib.entries[k]
		if !seen {
			e = &entry{}
			lib.entries[k] = e
			stats.UniqueUMIPairs++
		}
		e.r1 = append(e.r1, trimmed(p.R1.Seq, fwdTrim+len(b.Forward.After)))
		e.r2 = append(e.r2, trimmed(p.R2.Seq, revTrim+len(b.Reverse.After)))
		e.r1IDs = append(e.r1IDs, p.R1.Name())
		e.r2IDs = append(e.r2IDs, p.R2.Name())

		if b.Progress != nil && stats.TotalReads%ProgressEvery == 0 {
			b.Progress(stats.TotalReads)
		}
	}

	if err := lib.finalize(); err != nil {
		return lib, stats, err
	}
	return lib, stats, nil
}

// finalize asserts the per-key pairing invariant, then drops the read name
// lists from the artifact.
func (l *Library) finalize() error {
	for k, e := range l.entries {
		if len(e.r1) != len(e.r2) {
			return fmt.Errorf("umi: key %s/%s: R1 list length %d != R2 list length %d",
				k.Forward, k.Reverse, len(e.r1), len(e.r2))
		}
		for i := range e.r1IDs {
			if e.r1IDs[i] != e.r2IDs[i] {
				return fmt.Errorf("umi: key %s/%s: pairing order broken at entry %d (%s vs %s)",
					k.Forward, k.Reverse, i, e.r1IDs[i], e.r2IDs[i])
			}
		}
		e.r1IDs, e.r2IDs = nil, nil
	}
	return nil
}

func trimmed(seq []byte, from int) string {
	if from >= len(seq) {
		return ""
	}
	return string(seq[from:])
}
