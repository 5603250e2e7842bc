package fastq

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `@read1 1:N:0:8
ACGTACGT
+
IIIIIIII
@read2 1:N:0:8
TTTT
+
!!!!
`

func TestReaderParsesRecords(t *testing.T) {
	r := NewReader(strings.NewReader(sample))

	first, err := r.Next()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.ID != "read1 1:N:0:8" || first.Name() != "read1" {
		t.Fatalf("bad header parse: %q / %q", first.ID, first.Name())
	}
	if string(first.Seq) != "ACGTACGT" || string(first.Qual) != "IIIIIIII" {
		t.Fatalf("bad seq/qual: %q %q", first.Seq, first.Qual)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Name() != "read2" || second.Len() != 4 {
		t.Fatalf("bad second record: %+v", second)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestReaderRejectsTruncatedRecord(t *testing.T) {
	r := NewReader(strings.NewReader("@read1\nACGT\n+\n"))
	if _, err := r.Next(); err == nil || err == io.EOF {
		t.Fatalf("want truncation error, got %v", err)
	}
}

func TestReaderRejectsLengthMismatch(t *testing.T) {
	r := NewReader(strings.NewReader("@read1\nACGT\n+\nII\n"))
	if _, err := r.Next(); err == nil || !strings.Contains(err.Error(), "quality length") {
		t.Fatalf("want length mismatch error, got %v", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	r := NewReader(strings.NewReader(sample))
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if buf.String() != sample {
		t.Fatalf("round trip not byte-identical:\n%q\nvs\n%q", buf.String(), sample)
	}
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(sample)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = rc.Close() }()

	rec, err := NewReader(rc).Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if rec.Name() != "read1" {
		t.Fatalf("gzip parse failed, got %q", rec.Name())
	}
}
