package model

import "fmt"

// WarningKind classifies a non-fatal ingest or reconcile problem.
type WarningKind string

const (
	WarningFilenamePattern WarningKind = "filename_pattern"
	WarningDate            WarningKind = "date"
	WarningRowWidth        WarningKind = "row_width"
	WarningRoster          WarningKind = "roster"
	WarningSkippedFile     WarningKind = "skipped_file"
)

// ParseWarning records a value that could not be interpreted. The affected
// field becomes null and processing continues.
type ParseWarning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Source  string      `json:"source,omitempty" yaml:"source,omitempty"`
	Row     int         `json:"row,omitempty" yaml:"row,omitempty"`
	Column  string      `json:"column,omitempty" yaml:"column,omitempty"`
	Value   string      `json:"value,omitempty" yaml:"value,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

// RowOrigin locates a membership row in its source file. Row is the 1-based
// data record number, not counting the header.
type RowOrigin struct {
	Path string
	Row  int
}

func (w ParseWarning) String() string {
	if w.Row > 0 {
		return fmt.Sprintf("%s: %s (row %d): %s", w.Kind, w.Source, w.Row, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Source, w.Message)
}
