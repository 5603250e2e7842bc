// core/umi/extract.go
package umi

import "strings"

// Extract attempts single-anchor, zero-mismatch extraction of the UMI
// embedded in seq:
//
//   - the Before anchor is located by exact substring search (first
//     occurrence); the UMI starts immediately after it, or at position 0
//     when Before is empty;
//   - the After anchor must sit exactly at the end of the UMI span — a
//     fixed-offset comparison, not a search.
//
// On success it returns the UMI and the trim position (first base past the
// UMI), so callers can discard everything up to and including the primer.
// Any anchor absence, overhang, or mismatch returns ok=false: by contract
// primer variation yields "no UMI", never a best-effort guess.
func (t Template) Extract(seq []byte) (umi string, trim int, ok bool) {
	s := strings.ToUpper(string(seq))

	start := 0
	if t.Before != "" {
		i := strings.Index(s, t.Before)
		if i < 0 {
			return "", 0, false
		}
		start = i + len(t.Before)
	}
	end := start + t.UMILen
	if end > len(s) {
		return "", 0, false
	}
	if t.After != "" {
		if end+len(t.After) > len(s) {
			return "", 0, false
		}
		if s[end:end+len(t.After)] != t.After {
			return "", 0, false
		}
	}
	return s[start:end], end, true
}
