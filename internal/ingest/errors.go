// Package ingest loads per-term membership extracts and the legislator roster
// into unified tables.
package ingest

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrNoInputFiles is returned when no membership file is available.
var ErrNoInputFiles = eris.New("ingest: no membership files found")

// UnreadableFileError reports a file that could not be decoded or parsed
// with any configured encoding.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("ingest: unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error {
	return e.Err
}
