// core/fastq/record.go
package fastq

import "strings"

// Record is one FASTQ read: header (without the leading '@'), sequence,
// and per-base quality. Quality is carried verbatim and never interpreted.
type Record struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// Name returns the first whitespace-delimited token of the header, which is
// the part shared by the two mates of a pair.
func (r Record) Name() string {
	if i := strings.IndexAny(r.ID, " \t"); i >= 0 {
		return r.ID[:i]
	}
	return r.ID
}

// Len returns the sequence length in bases.
func (r Record) Len() int { return len(r.Seq) }
