// internal/library/library.go
package library

import (
	"os"
	"path/filepath"

	"umidemux/internal/jsonutil"
	"umidemux/pkg/api"

	"umidemux-core/demux"
	"umidemux-core/umi"
)

// Formats accepted by --format.
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Doc flattens a built Library into its stable serialized form. Entries
// come out sorted by (forward_umi, reverse_umi), so identical inputs
// serialize byte-identically.
func Doc(e *demux.PopulationEntry, lib *umi.Library, stats umi.Stats) api.LibraryV1 {
	doc := api.LibraryV1{
		Population: e.Label(),
		GWName:     e.GWName,
		Stats: api.LibraryStatsV1{
			TotalReads:     stats.TotalReads,
			ReadsWithUMI:   stats.ReadsWithUMI,
			UniqueUMIPairs: stats.UniqueUMIPairs,
			DesyncSkipped:  stats.Desync,
		},
		Entries: make([]api.LibraryEntryV1, 0, lib.Len()),
	}
	if mean, ok := stats.MeanReadsPerUMI(); ok {
		doc.Stats.MeanReadsPerUMI = &mean
	}
	for _, k := range lib.Keys() {
		r1, r2 := lib.Reads(k)
		doc.Entries = append(doc.Entries, api.LibraryEntryV1{
			ForwardUMI:  k.Forward,
			ReverseUMI:  k.Reverse,
			R1Sequences: r1,
			R2Sequences: r2,
		})
	}
	return doc
}

// WriteJSON writes the library document to path atomically enough for this
// pipeline: a temp file in the same directory renamed into place, so a
// crash never leaves a half-written artifact under the final name.
func WriteJSON(path string, doc api.LibraryV1) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".umi_library_*.json")
	if err != nil {
		return err
	}
	if err := jsonutil.EncodePretty(tmp, doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadJSON loads a library document written by WriteJSON.
func ReadJSON(path string) (api.LibraryV1, error) {
	var doc api.LibraryV1
	fh, err := os.Open(path)
	if err != nil {
		return doc, err
	}
	defer func() { _ = fh.Close() }()
	if err := jsonutil.Decode(fh, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

