// core/fastq/writer.go
package fastq

import (
	"bufio"
	"io"
)

// Writer emits 4-line FASTQ records. Records pass through verbatim, so
// re-writing a parsed stream is byte-identical modulo blank lines.
type Writer struct {
	bw *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Write appends one record. No partial record is ever emitted: errors from
// the underlying writer surface here and the caller is expected to abandon
// the sink.
func (w *Writer) Write(rec Record) error {
	if err := w.bw.WriteByte('@'); err != nil {
		return err
	}
	if _, err := w.bw.WriteString(rec.ID); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := w.bw.Write(rec.Seq); err != nil {
		return err
	}
	if _, err := w.bw.WriteString("\n+\n"); err != nil {
		return err
	}
	if _, err := w.bw.Write(rec.Qual); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

// Flush drains the internal buffer.
func (w *Writer) Flush() error { return w.bw.Flush() }
