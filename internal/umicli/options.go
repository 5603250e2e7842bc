// internal/umicli/options.go
package umicli

import (
	"errors"
	"flag"
	"fmt"

	"umidemux/internal/config"
	"umidemux/internal/library"
	"umidemux/internal/version"

	"umidemux-core/umi"
)

// Options holds all flags of the UMI library command.
type Options struct {
	Config      string
	Populations string // multiplexing CSV (for population ids and GW names)
	Primers     string // UMI primer CSV (f,r columns)
	Output      string // demultiplexing output root holding P*/ folders

	UMILen  int    // 0 = default (10)
	Format  string // json | sqlite
	Threads int
	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: build per-population UMI libraries from demultiplexed reads

Version: %s

Extracts the primer-flanked UMI from each mate, groups trimmed sequence
pairs by (forward UMI, reverse UMI), and writes one library artifact per
population next to its FASTQ pair.

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, merges the optional manifest,
// and validates the result.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.Config, "config", "", "YAML experiment manifest (flags take precedence) [\"\"]")
	fs.StringVar(&opt.Populations, "populations", "", "multiplexing CSV (GW_name,Population,...) [*]")
	fs.StringVar(&opt.Primers, "primers", "", "UMI primer CSV with f and r columns [*]")
	fs.StringVar(&opt.Output, "output", "", "demultiplexing output root holding P<population>/ folders [*]")

	fs.IntVar(&opt.UMILen, "umi-length", 0, fmt.Sprintf("UMI width: length of the primer wildcard run (0 = %d)", umi.DefaultUMILen))
	fs.StringVar(&opt.Format, "format", library.FormatJSON, "library artifact format: json | sqlite [json]")
	fs.IntVar(&opt.Threads, "threads", 0, "populations processed concurrently (0 = all CPUs) [0]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress progress and summary logging [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	if opt.Config != "" {
		m, err := config.LoadManifest(opt.Config)
		if err != nil {
			return opt, err
		}
		if opt.Populations == "" {
			opt.Populations = m.Populations
		}
		if opt.Primers == "" {
			opt.Primers = m.Primers
		}
		if opt.Output == "" {
			opt.Output = m.Output
		}
		if opt.UMILen == 0 {
			opt.UMILen = m.UMILength
		}
		if opt.Threads == 0 {
			opt.Threads = m.Threads
		}
	}

	switch {
	case opt.Populations == "":
		return opt, errors.New("--populations (or a manifest with one) is required")
	case opt.Primers == "":
		return opt, errors.New("--primers is required")
	case opt.Output == "":
		return opt, errors.New("--output is required")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be >= 0")
	}
	if opt.UMILen < 0 {
		return opt, errors.New("--umi-length must be >= 0")
	}
	if opt.Format != library.FormatJSON && opt.Format != library.FormatSQLite {
		return opt, fmt.Errorf("invalid --format %q", opt.Format)
	}
	return opt, nil
}
