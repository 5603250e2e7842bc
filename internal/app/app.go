// internal/app/app.go
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"umidemux/internal/cli"
	"umidemux/internal/cmdutil"
	"umidemux/internal/config"
	"umidemux/internal/discover"
	"umidemux/internal/pipeline"
	"umidemux/internal/report"
	"umidemux/internal/sinks"
	"umidemux/internal/version"

	"umidemux-core/demux"
	"umidemux-core/fastq"
)

// RunContext is the demultiplexing command: route every read pair of every
// population to its matched/short/unmatched FASTQ files.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("umidemux")
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseArgs(fs, argv)
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
		fmt.Fprintf(stdout, "umidemux version %s\n", version.Version)
		return cmdutil.ExitOK
	}

	log := cmdutil.NewLogger(stderr, opts.Quiet)

	rows, err := config.LoadPopulations(opts.Populations)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	// The full table is built first so duplicate index pairs are rejected
	// before any file is touched, even though each population's pass runs
	// against its own single-entry table.
	table, err := demux.NewTable(rows, opts.IndexLen)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitIO
	}

	log.Info("demultiplexing", "populations", len(table.Entries()), "input", opts.Input, "output", opts.Output)

	summaries := make([]report.PopulationSummary, len(table.Entries()))
	var jobs []pipeline.Job
	var jobPos []int
	for i, e := range table.Entries() {
		summaries[i] = report.PopulationSummary{Population: e.Label(), GWName: e.GWName}
		r1, r2, err := discover.FindReadPair(opts.Input, e.GWName)
		if err != nil {
			log.Warn("skipping population", "population", e.Label(), "err", err)
			summaries[i].Err = err
			continue
		}
		log.Info("found reads", "population", e.Label(), "r1", r1, "r2", r2)
		jobs = append(jobs, pipeline.Job{Entry: e, R1: r1, R2: r2})
		jobPos = append(jobPos, i)
	}

	results := pipeline.Map(ctx, opts.Threads, jobs, func(ctx context.Context, j pipeline.Job) (*demux.Counts, error) {
		return demuxPopulation(ctx, log, opts, j)
	})
	for k, res := range results {
		i := jobPos[k]
		summaries[i].Counts = res.Out
		summaries[i].Err = res.Err
	}

	if err := report.WriteDemuxSummary(stdout, summaries); err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitIO
	}

	if ctx.Err() != nil {
		return cmdutil.ExitCanceled
	}
	for _, s := range summaries {
		if s.Err != nil {
			return cmdutil.ExitPartial
		}
	}
	return cmdutil.ExitOK
}

// demuxPopulation streams one population's FASTQ pair through the
// classifier. Sinks are closed on every exit path; a close failure
// surfaces as the population's error so truncated output is never silent.
func demuxPopulation(ctx context.Context, log *slog.Logger, opts cli.Options, j pipeline.Job) (counts *demux.Counts, err error) {
	e := j.Entry
	plog := log.With("population", e.Label())

	r1, err := fastq.Open(j.R1)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r1.Close() }()
	r2, err := fastq.Open(j.R2)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r2.Close() }()

	// Each pipeline classifies against its own one-row table: reads in
	// this file pair either belong to this population or are unmatched.
	sub, err := demux.TableFor(e, opts.IndexLen)
	if err != nil {
		return nil, err
	}
	set, err := sinks.Open(opts.Output, e)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := set.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	c := &demux.Classifier{
		Table:    sub,
		MinLen:   opts.MinLen,
		Log:      plog,
		Progress: func(n int) { plog.Info("progress", "pairs", n) },
	}
	counts, err = c.Run(ctx, fastq.NewPairScanner(r1, r2), set.Route)
	if err != nil {
		return counts, err
	}
	plog.Info("population done",
		"total", counts.Total,
		"matched", counts.MatchedTotal(),
		"short", counts.Short,
		"unmatched", counts.Unmatched,
		"desync_skipped", counts.Desync,
	)
	return counts, nil
}

// Run is the background-context entrypoint used by tests.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
