// internal/config/primers.go
package config

import (
	"fmt"
	"os"
	"strings"

	"umidemux-core/umi"
)

// LoadPrimers reads the UMI primer CSV: columns "f" (forward primer,
// applied to R1) and "r" (reverse primer, applied to R2), each carrying
// exactly one wildcard run of umiLen N bases. Template errors surface
// immediately with the offending primer named.
func LoadPrimers(path string, umiLen int) (fwd, rev umi.Template, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return umi.Template{}, umi.Template{}, err
	}
	defer func() { _ = fh.Close() }()

	rows, err := readCSV(fh)
	if err != nil {
		return umi.Template{}, umi.Template{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) < 2 {
		return umi.Template{}, umi.Template{}, fmt.Errorf("%s: primer table needs a header and one data row", path)
	}

	col := headerIndex(rows[0])
	fi, fok := col["f"]
	ri, rok := col["r"]
	if !fok || !rok {
		return umi.Template{}, umi.Template{}, fmt.Errorf("%s: primer table must have %q and %q columns", path, "f", "r")
	}

	row := rows[1]
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	if fwd, err = umi.ParseTemplate(cell(fi), umiLen); err != nil {
		return umi.Template{}, umi.Template{}, fmt.Errorf("%s: forward primer: %w", path, err)
	}
	if rev, err = umi.ParseTemplate(cell(ri), umiLen); err != nil {
		return umi.Template{}, umi.Template{}, fmt.Errorf("%s: reverse primer: %w", path, err)
	}
	return fwd, rev, nil
}
