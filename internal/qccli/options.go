// internal/qccli/options.go
package qccli

import (
	"errors"
	"flag"
	"fmt"

	"umidemux/internal/version"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options holds all flags of the QC command.
type Options struct {
	Output  string // demultiplexing output root scanned for P*/ libraries
	Format  string // text | json
	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: summarize UMI library quality per population

Version: %s

Loads the library artifacts produced by umidemux-umi and reports unique
UMI pairs, reads per UMI, and the depth distribution.

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags and validates the result.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.Output, "output", "", "demultiplexing output root holding P<population>/ library artifacts [*]")
	fs.StringVar(&opt.Format, "format", FormatText, "report format: text | json [text]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress logging [false]")
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
	if opt.Output == "" {
		return opt, errors.New("--output is required")
	}
	if opt.Format != FormatText && opt.Format != FormatJSON {
		return opt, fmt.Errorf("invalid --format %q", opt.Format)
	}
	return opt, nil
}
