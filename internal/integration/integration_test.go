package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umidemux/internal/app"
	"umidemux/internal/library"
	"umidemux/internal/qcapp"
	"umidemux/internal/umiapp"
)

const (
	idxR1 = "AAAAAAAA"
	idxR2 = "CCCCCCCC"
	umiF  = "GGGGGGGGGG"
	umiR  = "CCCCCCCCCC"
)

func rec(name, seq string) string {
	return "@" + name + " 1:N:0\n" + seq + "\n+\n" + strings.Repeat("I", len(seq)) + "\n"
}

// r1Seq/r2Seq build full-length reads: index prefix, primer anchor, UMI,
// closing anchor, then a long tail to clear the 150-base floor.
func r1Seq(umi string) string { return idxR1 + "ACGT" + umi + "TTAA" + strings.Repeat("T", 130) }
func r2Seq(umi string) string { return idxR2 + "GTCA" + umi + "AATT" + strings.Repeat("T", 130) }

type fixture struct {
	input, output, mux, primers string
}

func setup(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		input:   filepath.Join(root, "input"),
		output:  filepath.Join(root, "out"),
		mux:     filepath.Join(root, "multiplexing_info.csv"),
		primers: filepath.Join(root, "UMI_primers.csv"),
	}
	require.NoError(t, os.MkdirAll(f.input, 0o755))

	require.NoError(t, os.WriteFile(f.mux, []byte(
		"GW_name,Population,Time,R1_index,R2_index\n"+
			"GW1,1,T0,"+idxR1+","+idxR2+"\n"), 0o644))
	require.NoError(t, os.WriteFile(f.primers, []byte(
		"f,r\nACGTNNNNNNNNNNTTAA,GTCANNNNNNNNNNAATT\n"), 0o644))

	// Four pairs: matched (twice, same UMI pair), short, unmatched,
	// plus one desynchronized pair.
	r1 := rec("m1", r1Seq(umiF)) +
		rec("m2", r1Seq(umiF)) +
		rec("s1", idxR1+"ACGT") +
		rec("u1", "GGGGGGGG"+strings.Repeat("A", 150)) +
		rec("readA", r1Seq(umiF))
	r2 := rec("m1", r2Seq(umiR)) +
		rec("m2", r2Seq(umiR)) +
		rec("s1", idxR2+"GTCA") +
		rec("u1", "TTTTTTTT"+strings.Repeat("A", 150)) +
		rec("readB", r2Seq(umiR))

	require.NoError(t, os.WriteFile(filepath.Join(f.input, "GW1_R1.fastq"), []byte(r1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.input, "GW1_R2.fastq"), []byte(r2), 0o644))
	return f
}

func runDemux(t *testing.T, f fixture) string {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--populations", f.mux,
		"--input", f.input,
		"--output", f.output,
		"--quiet",
	}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())
	return out.String()
}

func TestDemuxEndToEnd(t *testing.T) {
	f := setup(t)
	summary := runDemux(t, f)

	assert.Contains(t, summary, "P1 (GW_name: GW1):")
	assert.Contains(t, summary, "Total: 5, Matched: 2 (40.00%), Short: 1 (20.00%), Unmatched: 1 (20.00%), Desync skipped: 1")

	popR1, err := os.ReadFile(filepath.Join(f.output, "P1", "P1_R1.fastq"))
	require.NoError(t, err)
	assert.Contains(t, string(popR1), "@m1")
	assert.Contains(t, string(popR1), "@m2")
	// Index bases are not trimmed during demultiplexing.
	assert.Contains(t, string(popR1), "\n"+idxR1+"ACGT")
	assert.NotContains(t, string(popR1), "@s1")
	assert.NotContains(t, string(popR1), "@readA")

	short, err := os.ReadFile(filepath.Join(f.output, "GW1_short_reads_R1.fastq"))
	require.NoError(t, err)
	assert.Contains(t, string(short), "@s1")

	unmatched, err := os.ReadFile(filepath.Join(f.output, "GW1_unmatched_reads_R2.fastq"))
	require.NoError(t, err)
	assert.Contains(t, string(unmatched), "@u1")
}

func TestUMILibraryEndToEnd(t *testing.T) {
	f := setup(t)
	runDemux(t, f)

	var out, errBuf bytes.Buffer
	code := umiapp.Run([]string{
		"--populations", f.mux,
		"--primers", f.primers,
		"--output", f.output,
		"--quiet",
	}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())

	doc, err := library.ReadJSON(filepath.Join(f.output, "P1", "P1_umi_library.json"))
	require.NoError(t, err)
	assert.Equal(t, "P1", doc.Population)
	assert.Equal(t, 2, doc.Stats.TotalReads)
	assert.Equal(t, 2, doc.Stats.ReadsWithUMI)
	assert.Equal(t, 1, doc.Stats.UniqueUMIPairs)
	require.Len(t, doc.Entries, 1)
	e := doc.Entries[0]
	assert.Equal(t, umiF, e.ForwardUMI)
	assert.Equal(t, umiR, e.ReverseUMI)
	require.Len(t, e.R1Sequences, 2)
	assert.Equal(t, len(e.R1Sequences), len(e.R2Sequences))
	// Everything up to and including the primer is discarded.
	assert.Equal(t, strings.Repeat("T", 130), e.R1Sequences[0])
	assert.Equal(t, strings.Repeat("T", 130), e.R2Sequences[0])
}

func TestUMILibrarySQLiteFormat(t *testing.T) {
	f := setup(t)
	runDemux(t, f)

	var out, errBuf bytes.Buffer
	code := umiapp.Run([]string{
		"--populations", f.mux,
		"--primers", f.primers,
		"--output", f.output,
		"--format", "sqlite",
		"--quiet",
	}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())

	doc, err := library.ReadSQLite(filepath.Join(f.output, "P1", "P1_umi_library.db"))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Stats.UniqueUMIPairs)
}

func TestQCEndToEnd(t *testing.T) {
	f := setup(t)
	runDemux(t, f)

	var out, errBuf bytes.Buffer
	require.Equal(t, 0, umiapp.Run([]string{
		"--populations", f.mux, "--primers", f.primers, "--output", f.output, "--quiet",
	}, &out, &errBuf), "stderr: %s", errBuf.String())

	out.Reset()
	errBuf.Reset()
	code := qcapp.Run([]string{"--output", f.output, "--quiet"}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())
	assert.Contains(t, out.String(), "P1 (GW_name: GW1):")
	assert.Contains(t, out.String(), "Unique UMI pairs: 1")
	assert.Contains(t, out.String(), "Mean reads per UMI: 2.0")
}

func TestDeterministicReruns(t *testing.T) {
	f := setup(t)

	read := func(parts ...string) []byte {
		b, err := os.ReadFile(filepath.Join(append([]string{f.output}, parts...)...))
		require.NoError(t, err)
		return b
	}
	runAll := func() ([]byte, []byte) {
		runDemux(t, f)
		var out, errBuf bytes.Buffer
		require.Equal(t, 0, umiapp.Run([]string{
			"--populations", f.mux, "--primers", f.primers, "--output", f.output, "--quiet",
		}, &out, &errBuf))
		return read("P1", "P1_R1.fastq"), read("P1", "P1_umi_library.json")
	}

	fq1, lib1 := runAll()
	fq2, lib2 := runAll()
	assert.Equal(t, fq1, fq2, "sink contents must be byte-identical across reruns")
	assert.Equal(t, lib1, lib2, "library artifact must be byte-identical across reruns")
}

func TestMissingInputSkipsPopulationButRunContinues(t *testing.T) {
	f := setup(t)
	// Second population has no FASTQ files on disk.
	require.NoError(t, os.WriteFile(f.mux, []byte(
		"GW_name,Population,Time,R1_index,R2_index\n"+
			"GW1,1,T0,"+idxR1+","+idxR2+"\n"+
			"GW2,2,T0,GGGGGGGG,TTTTTTTT\n"), 0o644))

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--populations", f.mux, "--input", f.input, "--output", f.output, "--quiet",
	}, &out, &errBuf)
	assert.Equal(t, 1, code, "missing population is a partial failure")
	assert.Contains(t, out.String(), "P2 (GW_name: GW2): FAILED")
	// P1 still completed.
	assert.FileExists(t, filepath.Join(f.output, "P1", "P1_R1.fastq"))
}

func TestDuplicateIndexPairIsConfigError(t *testing.T) {
	f := setup(t)
	require.NoError(t, os.WriteFile(f.mux, []byte(
		"GW_name,Population,Time,R1_index,R2_index\n"+
			"GW1,1,T0,"+idxR1+","+idxR2+"\n"+
			"GW2,2,T0,"+idxR1+","+idxR2+"\n"), 0o644))

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--populations", f.mux, "--input", f.input, "--output", f.output, "--quiet",
	}, &out, &errBuf)
	assert.Equal(t, 2, code)
	assert.Contains(t, errBuf.String(), "duplicate index pair")
	// Aborts before any I/O mutation.
	assert.NoDirExists(t, f.output)
}
