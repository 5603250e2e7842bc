package fastq

import (
	"io"
	"strings"
	"testing"
)

func fq(names ...string) string {
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString("@" + n + "\nACGT\n+\nIIII\n")
	}
	return sb.String()
}

func TestPairScannerLockStep(t *testing.T) {
	s := NewPairScanner(strings.NewReader(fq("a", "b")), strings.NewReader(fq("a", "b")))

	p, err := s.Next()
	if err != nil {
		t.Fatalf("first pair: %v", err)
	}
	if p.R1.Name() != "a" || p.R2.Name() != "a" {
		t.Fatalf("pair out of step: %q / %q", p.R1.Name(), p.R2.Name())
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("second pair: %v", err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestPairScannerStopsAtShorterStream(t *testing.T) {
	s := NewPairScanner(strings.NewReader(fq("a", "b", "c")), strings.NewReader(fq("a")))

	if _, err := s.Next(); err != nil {
		t.Fatalf("first pair: %v", err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("ragged tail should end iteration, got %v", err)
	}
}
