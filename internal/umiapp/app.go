// internal/umiapp/app.go
package umiapp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"umidemux/internal/cmdutil"
	"umidemux/internal/config"
	"umidemux/internal/library"
	"umidemux/internal/pipeline"
	"umidemux/internal/umicli"
	"umidemux/internal/version"
	"umidemux/pkg/api"

	"umidemux-core/demux"
	"umidemux-core/fastq"
	"umidemux-core/umi"
)

// RunContext is the UMI library command: for every demultiplexed
// population, extract UMIs from both mates, group trimmed pairs by UMI
// pair, and write the library artifact beside the population's reads.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := umicli.NewFlagSet("umidemux-umi")
	fs.SetOutput(io.Discard)

	opts, err := umicli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return cmdutil.ExitOK
		}
		fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return cmdutil.ExitUsage
	}
	if opts.Version {
		fmt.Fprintf(stdout, "umidemux-umi version %s\n", version.Version)
		return cmdutil.ExitOK
	}

	log := cmdutil.NewLogger(stderr, opts.Quiet)

	rows, err := config.LoadPopulations(opts.Populations)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	fwd, rev, err := config.LoadPrimers(opts.Primers, opts.UMILen)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	log.Info("building UMI libraries",
		"populations", len(rows),
		"forward_primer", fwd.Raw,
		"reverse_primer", rev.Raw,
		"format", opts.Format,
	)

	jobs := make([]pipeline.Job, 0, len(rows))
	for i := range rows {
		e := &rows[i]
		jobs = append(jobs, pipeline.Job{
			Entry: e,
			R1:    filepath.Join(opts.Output, e.Label(), e.Label()+"_R1.fastq"),
			R2:    filepath.Join(opts.Output, e.Label(), e.Label()+"_R2.fastq"),
		})
	}

	results := pipeline.Map(ctx, opts.Threads, jobs, func(ctx context.Context, j pipeline.Job) (umi.Stats, error) {
		return buildPopulation(ctx, log, opts, fwd, rev, j)
	})

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			log.Warn("population failed", "population", res.Job.Entry.Label(), "err", res.Err)
			failed++
		}
	}
	if ctx.Err() != nil {
		return cmdutil.ExitCanceled
	}
	if failed > 0 {
		return cmdutil.ExitPartial
	}
	return cmdutil.ExitOK
}

// buildPopulation runs the extractor over one population's matched reads
// and persists the resulting library.
func buildPopulation(ctx context.Context, log *slog.Logger, opts umicli.Options, fwd, rev umi.Template, j pipeline.Job) (umi.Stats, error) {
	e := j.Entry
	plog := log.With("population", e.Label())

	r1, err := os.Open(j.R1)
	if err != nil {
		return umi.Stats{}, err
	}
	defer func() { _ = r1.Close() }()
	r2, err := os.Open(j.R2)
	if err != nil {
		return umi.Stats{}, err
	}
	defer func() { _ = r2.Close() }()

	b := &umi.Builder{
		Forward:  fwd,
		Reverse:  rev,
		Log:      plog,
		Progress: func(n int) { plog.Info("progress", "reads", n) },
	}
	lib, stats, err := b.Build(ctx, fastq.NewPairScanner(r1, r2))
	if err != nil {
		return stats, err
	}

	doc := library.Doc(e, lib, stats)
	path, err := writeArtifact(opts, e, doc)
	if err != nil {
		return stats, err
	}

	attrs := []any{
		"total_reads", stats.TotalReads,
		"reads_with_umi", stats.ReadsWithUMI,
		"unique_umi_pairs", stats.UniqueUMIPairs,
		"artifact", path,
	}
	if mean, ok := stats.MeanReadsPerUMI(); ok {
		attrs = append(attrs, "mean_reads_per_umi", mean)
	}
	plog.Info("library saved", attrs...)
	return stats, nil
}

func writeArtifact(opts umicli.Options, e *demux.PopulationEntry, doc api.LibraryV1) (string, error) {
	dir := filepath.Join(opts.Output, e.Label())
	switch opts.Format {
	case library.FormatSQLite:
		path := filepath.Join(dir, e.Label()+"_umi_library.db")
		return path, library.WriteSQLite(path, doc)
	default:
		path := filepath.Join(dir, e.Label()+"_umi_library.json")
		return path, library.WriteJSON(path, doc)
	}
}

// Run is the background-context entrypoint used by tests.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
