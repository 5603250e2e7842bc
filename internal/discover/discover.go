// internal/discover/discover.go
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoReads marks a population whose FASTQ pair could not be located.
// Missing inputs skip the population; the run continues.
var ErrNoReads = errors.New("no fastq pair found")

var fastqExts = []string{".fastq", ".fq", ".fastq.gz", ".fq.gz"}

// FindReadPair resolves a population's raw inputs: it walks dir recursively
// for files named <gwName>_R1*<ext> and <gwName>_R2*<ext>. When several
// candidates exist the lexicographically first of each mate is used, so
// resolution is deterministic.
func FindReadPair(dir, gwName string) (r1, r2 string, err error) {
	var r1s, r2s []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if !hasFastqExt(base) {
			return nil
		}
		switch {
		case strings.HasPrefix(base, gwName+"_R1"):
			r1s = append(r1s, path)
		case strings.HasPrefix(base, gwName+"_R2"):
			r2s = append(r2s, path)
		}
		return nil
	})
	if walkErr != nil {
		return "", "", fmt.Errorf("scan %s: %w", dir, walkErr)
	}
	if len(r1s) == 0 || len(r2s) == 0 {
		return "", "", fmt.Errorf("%w for %s under %s", ErrNoReads, gwName, dir)
	}
	sort.Strings(r1s)
	sort.Strings(r2s)
	return r1s[0], r2s[0], nil
}

func hasFastqExt(name string) bool {
	for _, ext := range fastqExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
