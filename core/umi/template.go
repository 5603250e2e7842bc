// core/umi/template.go
package umi

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the base marking the UMI positions inside a primer.
const Wildcard = 'N'

// DefaultUMILen is the UMI width used by this assay: 10 random bases.
const DefaultUMILen = 10

// ErrTemplate marks a primer whose wildcard run is missing, split, or of
// the wrong length. Template errors are configuration errors and abort the
// run before any output is written.
var ErrTemplate = errors.New("invalid UMI primer template")

// Template is a parsed primer: the anchors flanking the UMI and the UMI
// width. Before or After may be empty when the UMI sits at the primer edge.
type Template struct {
	Before string
	After  string
	UMILen int
	Raw    string // upper-cased source primer, kept for reporting
}

// ParseTemplate parses a primer over A/C/G/T plus the N wildcard. The
// primer is upper-cased first. Exactly one contiguous run of N of length
// exactly umiLen must exist; anything else fails with ErrTemplate.
func ParseTemplate(primer string, umiLen int) (Template, error) {
	if umiLen <= 0 {
		umiLen = DefaultUMILen
	}
	upper := strings.ToUpper(strings.TrimSpace(primer))
	if upper == "" {
		return Template{}, fmt.Errorf("%w: empty primer", ErrTemplate)
	}

	runStart, runLen := -1, 0
	for i := 0; i < len(upper); i++ {
		if upper[i] != Wildcard {
			continue
		}
		if runStart >= 0 && i > runStart+runLen {
			return Template{}, fmt.Errorf("%w %q: more than one wildcard run", ErrTemplate, upper)
		}
		if runStart < 0 {
			runStart = i
		}
		runLen++
	}
	if runStart < 0 {
		return Template{}, fmt.Errorf("%w %q: no wildcard run found", ErrTemplate, upper)
	}
	if runLen != umiLen {
		return Template{}, fmt.Errorf("%w %q: wildcard run of %d bases, want %d", ErrTemplate, upper, runLen, umiLen)
	}
	return Template{
		Before: upper[:runStart],
		After:  upper[runStart+runLen:],
		UMILen: umiLen,
		Raw:    upper,
	}, nil
}
