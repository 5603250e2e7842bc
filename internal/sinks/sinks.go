// internal/sinks/sinks.go
package sinks

import (
	"fmt"
	"os"
	"path/filepath"

	"umidemux-core/demux"
	"umidemux-core/fastq"
)

// PairSink writes one FASTQ pair stream (an R1 file and its R2 twin).
type PairSink struct {
	r1f, r2f *os.File
	r1, r2   *fastq.Writer
}

func newPairSink(r1Path, r2Path string) (*PairSink, error) {
	f1, err := os.Create(r1Path)
	if err != nil {
		return nil, err
	}
	f2, err := os.Create(r2Path)
	if err != nil {
		_ = f1.Close()
		return nil, err
	}
	return &PairSink{r1f: f1, r2f: f2, r1: fastq.NewWriter(f1), r2: fastq.NewWriter(f2)}, nil
}

// Write appends both mates verbatim.
func (s *PairSink) Write(p fastq.Pair) error {
	if err := s.r1.Write(p.R1); err != nil {
		return err
	}
	return s.r2.Write(p.R2)
}

// Close flushes and closes both files, returning the first error. It is
// called on every exit path so no sink is left with buffered tail records.
func (s *PairSink) Close() error {
	err := s.r1.Flush()
	if e := s.r2.Flush(); e != nil && err == nil {
		err = e
	}
	if e := s.r1f.Close(); e != nil && err == nil {
		err = e
	}
	if e := s.r2f.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

// Set is the sink registry for one population's classification pass:
// its matched-pair files plus the experiment-level short and unmatched
// files named after the population's GW_name.
type Set struct {
	pop       *PairSink
	short     *PairSink
	unmatched *PairSink
}

// Open creates the three sink pairs under outDir. The population sink
// lives in outDir/P<population>/; short and unmatched sit at the
// experiment level. Partially-opened sets are closed before returning an
// error.
func Open(outDir string, e *demux.PopulationEntry) (*Set, error) {
	popDir := filepath.Join(outDir, e.Label())
	if err := os.MkdirAll(popDir, 0o755); err != nil {
		return nil, err
	}

	s := &Set{}
	var err error
	s.pop, err = newPairSink(
		filepath.Join(popDir, e.Label()+"_R1.fastq"),
		filepath.Join(popDir, e.Label()+"_R2.fastq"),
	)
	if err != nil {
		return nil, err
	}
	s.short, err = newPairSink(
		filepath.Join(outDir, e.GWName+"_short_reads_R1.fastq"),
		filepath.Join(outDir, e.GWName+"_short_reads_R2.fastq"),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.unmatched, err = newPairSink(
		filepath.Join(outDir, e.GWName+"_unmatched_reads_R1.fastq"),
		filepath.Join(outDir, e.GWName+"_unmatched_reads_R2.fastq"),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Route writes a classified pair to its bucket's files.
func (s *Set) Route(r demux.Result) error {
	switch r.Class {
	case demux.ClassMatched:
		return s.pop.Write(r.Pair)
	case demux.ClassShort:
		return s.short.Write(r.Pair)
	case demux.ClassUnmatched:
		return s.unmatched.Write(r.Pair)
	}
	return fmt.Errorf("sinks: no file slot for class %v", r.Class)
}

// Close closes every open sink, returning the first error.
func (s *Set) Close() error {
	var err error
	for _, ps := range []*PairSink{s.pop, s.short, s.unmatched} {
		if ps == nil {
			continue
		}
		if e := ps.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
