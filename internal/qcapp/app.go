// internal/qcapp/app.go
package qcapp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"umidemux/internal/cmdutil"
	"umidemux/internal/library"
	"umidemux/internal/qccli"
	"umidemux/internal/report"
	"umidemux/internal/version"
	"umidemux/pkg/api"
)

// RunContext is the QC command: load every population's library artifact
// under the output root and report UMI quality metrics.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := qccli.NewFlagSet("umidemux-qc")
	fs.SetOutput(io.Discard)

	opts, err := qccli.ParseArgs(fs, argv)
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
		fmt.Fprintf(stdout, "umidemux-qc version %s\n", version.Version)
		return cmdutil.ExitOK
	}

	log := cmdutil.NewLogger(stderr, opts.Quiet)

	docs, err := loadLibraries(opts.Output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitIO
	}
	if len(docs) == 0 {
		fmt.Fprintf(stderr, "no UMI library artifacts found under %s\n", opts.Output)
		return cmdutil.ExitUsage
	}
	log.Info("loaded libraries", "count", len(docs))

	qcs := make([]report.QC, 0, len(docs))
	for _, doc := range docs {
		qcs = append(qcs, report.Analyze(doc))
	}

	switch opts.Format {
	case qccli.FormatJSON:
		err = report.WriteQCJSON(stdout, qcs)
	default:
		err = report.WriteQCText(stdout, qcs)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return cmdutil.ExitIO
	}
	if ctx.Err() != nil {
		return cmdutil.ExitCanceled
	}
	return cmdutil.ExitOK
}

// loadLibraries scans root for P*/P*_umi_library.{json,db} artifacts,
// preferring JSON when a population has both. Results come back in
// population-number order.
func loadLibraries(root string) ([]api.LibraryV1, error) {
	dirs, err := filepath.Glob(filepath.Join(root, "P*"))
	if err != nil {
		return nil, err
	}
	var docs []api.LibraryV1
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		label := filepath.Base(dir)
		var doc api.LibraryV1
		switch {
		case exists(filepath.Join(dir, label+"_umi_library.json")):
			doc, err = library.ReadJSON(filepath.Join(dir, label+"_umi_library.json"))
		case exists(filepath.Join(dir, label+"_umi_library.db")):
			doc, err = library.ReadSQLite(filepath.Join(dir, label+"_umi_library.db"))
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return popOrder(docs[i].Population) < popOrder(docs[j].Population)
	})
	return docs, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// popOrder sorts "P2" before "P10"; non-numeric labels sort last.
func popOrder(label string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "P"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// Run is the background-context entrypoint used by tests.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
