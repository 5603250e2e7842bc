// internal/config/populations.go
package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"umidemux-core/demux"
)

// Multiplexing table columns. GW_name maps a population to its sequencing
// files; R1_index/R2_index are the routing barcodes.
var requiredPopulationColumns = []string{"GW_name", "Population", "R1_index", "R2_index"}

// LoadPopulations reads the multiplexing CSV into table rows. The header
// row names the columns; Time is optional. Values are whitespace-trimmed
// and a UTF-8 BOM on the first header cell is ignored (the tables come
// from spreadsheet exports).
func LoadPopulations(path string) ([]demux.PopulationEntry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	rows, err := readCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty multiplexing table", path)
	}

	col := headerIndex(rows[0])
	for _, name := range requiredPopulationColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}

	entries := make([]demux.PopulationEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		get := func(name string) string {
			j, ok := col[name]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}
		e := demux.PopulationEntry{
			GWName:     get("GW_name"),
			Population: get("Population"),
			Time:       get("Time"),
			R1Index:    get("R1_index"),
			R2Index:    get("R2_index"),
		}
		if e.GWName == "" || e.Population == "" {
			return nil, fmt.Errorf("%s: row %d: GW_name and Population are required", path, i+2)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate trailing blank columns
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	return col
}
