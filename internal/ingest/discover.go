package ingest

import (
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
)

// Discover returns the files matching pattern in lexicographic order.
func Discover(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: glob %s", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// FirstMatch returns the first file matching pattern, or "" when none does.
func FirstMatch(pattern string) (string, error) {
	matches, err := Discover(pattern)
	if err != nil || len(matches) == 0 {
		return "", err
	}
	return matches[0], nil
}
