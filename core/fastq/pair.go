// core/fastq/pair.go
package fastq

import "io"

// Pair holds the two mates sequenced from one fragment. The n-th record of
// the R1 stream and the n-th record of the R2 stream form one Pair.
type Pair struct {
	R1 Record
	R2 Record
}

// PairScanner advances two FASTQ streams in lock-step. Iteration stops at
// the end of the shorter stream (zip semantics); a ragged tail indicates
// upstream truncation and is not surfaced as an error here.
type PairScanner struct {
	r1, r2 *Reader
}

func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{r1: NewReader(r1), r2: NewReader(r2)}
}

// Next returns the next pair, or io.EOF once either stream is exhausted.
// Parse errors from either side are returned as-is.
func (s *PairScanner) Next() (Pair, error) {
	a, err := s.r1.Next()
	if err != nil {
		return Pair{}, err
	}
	b, err := s.r2.Next()
	if err != nil {
		return Pair{}, err
	}
	return Pair{R1: a, R2: b}, nil
}
