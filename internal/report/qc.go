// internal/report/qc.go
package report

import (
	"fmt"
	"io"
	"sort"

	"umidemux/internal/jsonutil"
	"umidemux/pkg/api"
)

// QC summarizes one population's UMI library for a human operator: how
// many distinct molecules were tagged and how deeply each was read.
type QC struct {
	Population      string   `json:"population"`
	GWName          string   `json:"gw_name,omitempty"`
	TotalReads      int      `json:"total_reads"`
	ReadsWithUMI    int      `json:"reads_with_umi"`
	UniqueUMIPairs  int      `json:"unique_umi_pairs"`
	MeanReadsPerUMI *float64 `json:"mean_reads_per_umi,omitempty"`
	MedianReads     int      `json:"median_reads_per_umi"`
	MaxReads        int      `json:"max_reads_per_umi"`
	// Histogram counts UMI pairs by read depth: Histogram[i] holds the
	// number of pairs with depth Depths[i].
	Depths    []int `json:"depths"`
	Histogram []int `json:"histogram"`
}

// Analyze derives QC metrics from a library document.
func Analyze(doc api.LibraryV1) QC {
	qc := QC{
		Population:      doc.Population,
		GWName:          doc.GWName,
		TotalReads:      doc.Stats.TotalReads,
		ReadsWithUMI:    doc.Stats.ReadsWithUMI,
		UniqueUMIPairs:  doc.Stats.UniqueUMIPairs,
		MeanReadsPerUMI: doc.Stats.MeanReadsPerUMI,
	}
	if len(doc.Entries) == 0 {
		return qc
	}

	depths := make([]int, 0, len(doc.Entries))
	byDepth := make(map[int]int)
	for _, e := range doc.Entries {
		d := len(e.R1Sequences)
		depths = append(depths, d)
		byDepth[d]++
		if d > qc.MaxReads {
			qc.MaxReads = d
		}
	}
	sort.Ints(depths)
	qc.MedianReads = depths[len(depths)/2]

	for d := range byDepth {
		qc.Depths = append(qc.Depths, d)
	}
	sort.Ints(qc.Depths)
	qc.Histogram = make([]int, len(qc.Depths))
	for i, d := range qc.Depths {
		qc.Histogram[i] = byDepth[d]
	}
	return qc
}

// WriteQCText renders QC blocks for the operator.
func WriteQCText(w io.Writer, qcs []QC) error {
	for _, qc := range qcs {
		if _, err := fmt.Fprintf(w, "%s (GW_name: %s):\n", qc.Population, qc.GWName); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Total reads: %d\n  Reads with UMI: %d\n  Unique UMI pairs: %d\n",
			qc.TotalReads, qc.ReadsWithUMI, qc.UniqueUMIPairs); err != nil {
			return err
		}
		if qc.MeanReadsPerUMI != nil {
			if _, err := fmt.Fprintf(w, "  Mean reads per UMI: %.1f\n  Median reads per UMI: %d\n  Max reads per UMI: %d\n",
				*qc.MeanReadsPerUMI, qc.MedianReads, qc.MaxReads); err != nil {
				return err
			}
		}
		for i, d := range qc.Depths {
			if _, err := fmt.Fprintf(w, "    %d read(s)/UMI: %d pair(s)\n", d, qc.Histogram[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteQCJSON renders the same metrics as a JSON array.
func WriteQCJSON(w io.Writer, qcs []QC) error {
	return jsonutil.EncodePretty(w, qcs)
}
