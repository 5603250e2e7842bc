// internal/report/summary.go
package report

import (
	"fmt"
	"io"

	"umidemux-core/demux"
)

// PopulationSummary is one population's classification outcome.
type PopulationSummary struct {
	Population string
	GWName     string
	Counts     *demux.Counts
	Err        error
}

// WriteDemuxSummary renders the end-of-run demultiplexing report: one
// block per population with bucket percentages, then overall totals.
func WriteDemuxSummary(w io.Writer, summaries []PopulationSummary) error {
	overall := demux.NewCounts()
	line := func(format string, a ...any) error {
		_, err := fmt.Fprintf(w, format+"\n", a...)
		return err
	}

	if err := line("%s", rule); err != nil {
		return err
	}
	if err := line("DEMULTIPLEXING SUMMARY"); err != nil {
		return err
	}
	if err := line("%s", rule); err != nil {
		return err
	}
	for _, s := range summaries {
		if s.Err != nil {
			if err := line("%s (GW_name: %s): FAILED: %v", s.Population, s.GWName, s.Err); err != nil {
				return err
			}
			continue
		}
		c := s.Counts
		overall.Merge(c)
		if err := line("%s (GW_name: %s):", s.Population, s.GWName); err != nil {
			return err
		}
		if err := line("  Total: %d, Matched: %d (%s), Short: %d (%s), Unmatched: %d (%s), Desync skipped: %d",
			c.Total,
			c.MatchedTotal(), pct(c.MatchedTotal(), c.Total),
			c.Short, pct(c.Short, c.Total),
			c.Unmatched, pct(c.Unmatched, c.Total),
			c.Desync,
		); err != nil {
			return err
		}
	}
	if err := line("%s", rule); err != nil {
		return err
	}
	return line("Overall: total %d, matched %d, short %d, unmatched %d, desync skipped %d",
		overall.Total, overall.MatchedTotal(), overall.Short, overall.Unmatched, overall.Desync)
}

const rule = "============================================================"

// pct formats n/total as a percentage, tolerating an empty input file.
func pct(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}
