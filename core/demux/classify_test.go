package demux

import (
	"context"
	"strings"
	"testing"

	"umidemux-core/fastq"
)

const (
	idxP1R1 = "AAAAAAAA"
	idxP1R2 = "CCCCCCCC"
)

func rec(name, seq string) string {
	return "@" + name + "\n" + seq + "\n+\n" + strings.Repeat("I", len(seq)) + "\n"
}

func pad(prefix string, n int) string {
	return prefix + strings.Repeat("G", n-len(prefix))
}

func runClassifier(t *testing.T, r1, r2 string) (*Counts, []Result) {
	t.Helper()
	tab, err := NewTable([]PopulationEntry{
		{GWName: "GW1", Population: "1", R1Index: idxP1R1, R2Index: idxP1R2},
	}, 8)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	c := &Classifier{Table: tab, MinLen: 20}
	var got []Result
	counts, err := c.Run(context.Background(),
		fastq.NewPairScanner(strings.NewReader(r1), strings.NewReader(r2)),
		func(r Result) error { got = append(got, r); return nil },
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return counts, got
}

func TestClassifierRoutesPairs(t *testing.T) {
	r1 := rec("m", pad(idxP1R1, 30)) + rec("u", pad("TTTTTTTT", 30))
	r2 := rec("m", pad(idxP1R2, 30)) + rec("u", pad("TTTTTTTT", 30))

	counts, got := runClassifier(t, r1, r2)

	if counts.Total != 2 || counts.Matched["P1"] != 1 || counts.Unmatched != 1 {
		t.Fatalf("counts: %+v", counts)
	}
	if !counts.Conserved() {
		t.Fatalf("count conservation violated: %+v", counts)
	}
	if got[0].Class != ClassMatched || got[0].Pop.Population != "1" {
		t.Fatalf("first pair should match P1: %+v", got[0])
	}
	// Indexes are not trimmed during demultiplexing.
	if !strings.HasPrefix(string(got[0].Pair.R1.Seq), idxP1R1) {
		t.Fatalf("matched read must be routed verbatim: %q", got[0].Pair.R1.Seq)
	}
	if got[1].Class != ClassUnmatched {
		t.Fatalf("second pair should be unmatched: %+v", got[1])
	}
}

func TestShortCheckPrecedesIndexMatch(t *testing.T) {
	// Pair carries a perfectly matching index but is below the floor.
	r1 := rec("s", pad(idxP1R1, 12))
	r2 := rec("s", pad(idxP1R2, 12))

	counts, got := runClassifier(t, r1, r2)

	if counts.Short != 1 || counts.MatchedTotal() != 0 {
		t.Fatalf("short must take precedence over index match: %+v", counts)
	}
	if got[0].Class != ClassShort {
		t.Fatalf("want ClassShort, got %v", got[0].Class)
	}
}

func TestDesyncPairIsDiscarded(t *testing.T) {
	r1 := rec("readA", pad(idxP1R1, 30))
	r2 := rec("readB", pad(idxP1R2, 30))

	counts, got := runClassifier(t, r1, r2)

	if counts.Desync != 1 || counts.Total != 1 {
		t.Fatalf("counts: %+v", counts)
	}
	if counts.Short != 0 || counts.Unmatched != 0 || counts.MatchedTotal() != 0 {
		t.Fatalf("desync pair must not land in any other bucket: %+v", counts)
	}
	if len(got) != 0 {
		t.Fatalf("desync pair must not be routed, got %d results", len(got))
	}
	if !counts.Conserved() {
		t.Fatalf("count conservation violated: %+v", counts)
	}
}

func TestClassifierHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tab, _ := NewTable([]PopulationEntry{
		{GWName: "GW1", Population: "1", R1Index: idxP1R1, R2Index: idxP1R2},
	}, 8)
	c := &Classifier{Table: tab, MinLen: 20}
	_, err := c.Run(ctx,
		fastq.NewPairScanner(strings.NewReader(rec("a", pad(idxP1R1, 30))), strings.NewReader(rec("a", pad(idxP1R2, 30)))),
		func(Result) error { t.Fatal("visit after cancel"); return nil },
	)
	if err != context.Canceled {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestCountsMerge(t *testing.T) {
	a := NewCounts()
	a.Total, a.Short = 5, 1
	a.Matched["P1"] = 4
	b := NewCounts()
	b.Total, b.Unmatched, b.Desync = 3, 1, 1
	b.Matched["P1"], b.Matched["P2"] = 0, 1

	a.Merge(b)
	if a.Total != 8 || a.Short != 1 || a.Unmatched != 1 || a.Desync != 1 {
		t.Fatalf("merge totals: %+v", a)
	}
	if a.Matched["P1"] != 4 || a.Matched["P2"] != 1 {
		t.Fatalf("merge matched: %+v", a.Matched)
	}
	if !a.Conserved() {
		t.Fatalf("merged counts must conserve: %+v", a)
	}
}
