// pkg/api/library_v1.go
package api

// LibraryV1 is the stable serialized form of one population's UMI library,
// the shape handed to downstream consensus/QC tooling. Keep fields, names,
// and types stable. Add new fields only with ",omitempty".
type LibraryV1 struct {
	Population string           `json:"population"` // e.g. "P1"
	GWName     string           `json:"gw_name,omitempty"`
	Stats      LibraryStatsV1   `json:"stats"`
	Entries    []LibraryEntryV1 `json:"entries"`
}

// LibraryEntryV1 holds the trimmed mates collected under one UMI pair.
// The two lists always have equal length; the i-th elements of each come
// from the same read pair.
type LibraryEntryV1 struct {
	ForwardUMI  string   `json:"forward_umi"`
	ReverseUMI  string   `json:"reverse_umi"`
	R1Sequences []string `json:"r1_sequences"`
	R2Sequences []string `json:"r2_sequences"`
}

// LibraryStatsV1 summarizes the aggregation pass that produced the library.
// MeanReadsPerUMI is omitted when no UMI pair was observed.
type LibraryStatsV1 struct {
	TotalReads      int      `json:"total_reads"`
	ReadsWithUMI    int      `json:"reads_with_umi"`
	UniqueUMIPairs  int      `json:"unique_umi_pairs"`
	DesyncSkipped   int      `json:"desync_skipped,omitempty"`
	MeanReadsPerUMI *float64 `json:"mean_reads_per_umi,omitempty"`
}
