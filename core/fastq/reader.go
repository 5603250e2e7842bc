// core/fastq/reader.go
package fastq

import (
	"bufio"
	"fmt"
	"io"
)

// Reader parses 4-line FASTQ records from an io.Reader. It is a strict
// forward-only scanner: each record is returned once, in file order.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r in a FASTQ reader. Lines up to 16 MiB are accepted to
// cover merged or unusually long reads.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	const maxLine = 16 * 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)
	return &Reader{sc: sc}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// A record truncated mid-way (EOF between its four lines) is an error,
// never a partial Record.
func (r *Reader) Next() (Record, error) {
	header, err := r.nextLine()
	if err != nil {
		return Record{}, err
	}
	if len(header) == 0 || header[0] != '@' {
		return Record{}, fmt.Errorf("fastq: line %d: expected '@' header, got %q", r.line, clip(header))
	}
	seq, err := r.requireLine("sequence")
	if err != nil {
		return Record{}, err
	}
	plus, err := r.requireLine("separator")
	if err != nil {
		return Record{}, err
	}
	if len(plus) == 0 || plus[0] != '+' {
		return Record{}, fmt.Errorf("fastq: line %d: expected '+' separator, got %q", r.line, clip(plus))
	}
	qual, err := r.requireLine("quality")
	if err != nil {
		return Record{}, err
	}
	if len(seq) != len(qual) {
		return Record{}, fmt.Errorf("fastq: line %d: sequence length %d != quality length %d", r.line, len(seq), len(qual))
	}
	return Record{
		ID:   string(header[1:]),
		Seq:  append([]byte(nil), seq...),
		Qual: append([]byte(nil), qual...),
	}, nil
}

// nextLine returns the next line, skipping blank lines between records.
func (r *Reader) nextLine() ([]byte, error) {
	for r.sc.Scan() {
		r.line++
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		return line, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("fastq scan: %w", err)
	}
	return nil, io.EOF
}

func (r *Reader) requireLine(what string) ([]byte, error) {
	line, err := r.nextLine()
	if err == io.EOF {
		return nil, fmt.Errorf("fastq: line %d: truncated record (missing %s line)", r.line, what)
	}
	return line, err
}

func clip(b []byte) string {
	if len(b) > 20 {
		return string(b[:20]) + "..."
	}
	return string(b)
}
