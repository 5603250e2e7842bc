// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"umidemux/internal/config"
	"umidemux/internal/version"

	"umidemux-core/demux"
)

// Options holds all flags of the demultiplexing command.
type Options struct {
	Config      string // optional YAML manifest
	Populations string // multiplexing CSV
	Input       string // directory holding raw FASTQ pairs
	Output      string // demultiplexing output root

	MinLen   int // read-length floor; 0 = default (150)
	IndexLen int // barcode width; 0 = default (8)

	Threads int
	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: demultiplex paired-end NGS reads by embedded index barcodes

Version: %s

Routes each R1/R2 pair to its population by the first bases of both mates,
with short and unmatched reads captured in their own FASTQ pairs.

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
	fs.StringVar(&opt.Populations, "populations", "", "multiplexing CSV (GW_name,Population,Time,R1_index,R2_index) [*]")
	fs.StringVar(&opt.Input, "input", "", "directory searched recursively for <GW_name>_R{1,2}*.fastq[.gz] [*]")
	fs.StringVar(&opt.Output, "output", "", "output root; per-population folders are created below it [*]")

	fs.IntVar(&opt.MinLen, "min-length", 0, fmt.Sprintf("read-length floor; shorter pairs are routed to the short sink (0 = %d)", demux.DefaultMinLen))
	fs.IntVar(&opt.IndexLen, "index-length", 0, fmt.Sprintf("index barcode width in bases (0 = %d)", demux.DefaultIndexLen))

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
		applyManifest(&opt, m)
	}

	switch {
	case opt.Populations == "":
		return opt, errors.New("--populations (or a manifest with one) is required")
	case opt.Input == "":
		return opt, errors.New("--input is required")
	case opt.Output == "":
		return opt, errors.New("--output is required")
	}
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be >= 0")
	}
	if opt.MinLen < 0 || opt.IndexLen < 0 {
		return opt, errors.New("--min-length and --index-length must be >= 0")
	}
	minLen, indexLen := opt.MinLen, opt.IndexLen
	if minLen == 0 {
		minLen = demux.DefaultMinLen
	}
	if indexLen == 0 {
		indexLen = demux.DefaultIndexLen
	}
	// The classifier slices the index prefix only from reads above the
	// floor, so the floor must cover the barcode.
	if minLen < indexLen {
		return opt, fmt.Errorf("--min-length (%d) must be >= --index-length (%d)", minLen, indexLen)
	}
	return opt, nil
}

// applyManifest fills unset options from the manifest; explicit flags win.
func applyManifest(opt *Options, m config.Manifest) {
	if opt.Populations == "" {
		opt.Populations = m.Populations
	}
	if opt.Input == "" {
		opt.Input = m.Input
	}
	if opt.Output == "" {
		opt.Output = m.Output
	}
	if opt.MinLen == 0 {
		opt.MinLen = m.MinLength
	}
	if opt.IndexLen == 0 {
		opt.IndexLen = m.IndexLength
	}
	if opt.Threads == 0 {
		opt.Threads = m.Threads
	}
}
