package ingest

import (
	"path/filepath"
	"strings"
)

const termMarker = "-L"

// TermFromFilename derives the legislature code from a file name, e.g.
// "orgaosDeputados-L51.csv" yields "L51". The second result is false when
// the name carries no usable code.
func TermFromFilename(path string) (string, bool) {
	name := filepath.Base(path)
	_, rest, found := strings.Cut(name, termMarker)
	if !found {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, termMarker)
	rest, _, _ = strings.Cut(rest, ".")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return "L" + fields[0], true
}
