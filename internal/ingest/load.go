package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// Loader reads membership and roster extracts.
type Loader struct {
	Encodings      []fetcher.Encoding // tried in order; defaults to utf-8 then latin-1
	Workers        int                // concurrent file reads; <= 1 reads sequentially
	SkipUnreadable bool               // skip a bad membership file instead of failing
}

// SourceInfo describes one membership file's contribution.
type SourceInfo struct {
	Path     string `json:"path" yaml:"path"`
	Term     string `json:"term,omitempty" yaml:"term,omitempty"`
	Encoding string `json:"encoding" yaml:"encoding"`
	Rows     int    `json:"rows" yaml:"rows"`
}

// Memberships is the unified raw membership table. Origins[i] locates
// Table row i in its source file.
type Memberships struct {
	Table    *table.Table
	Origins  []model.RowOrigin
	Sources  []SourceInfo
	Warnings []model.ParseWarning
}

// Roster is the legislator reference table. An empty Path means no roster
// file was found.
type Roster struct {
	Table    *table.Table
	Path     string
	Encoding string
	Warnings []model.ParseWarning
}

type fileResult struct {
	table    *table.Table
	info     SourceInfo
	warnings []model.ParseWarning
	err      error
}

// LoadMemberships reads every path, tags each row with the term derived from
// its file name, and concatenates the results in input order.
func (l *Loader) LoadMemberships(ctx context.Context, paths []string) (*Memberships, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputFiles
	}
	log := zap.L().With(zap.String("component", "ingest"))

	results := make([]fileResult, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.Workers))
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = l.loadMembershipFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "ingest: load memberships")
	}

	out := &Memberships{}
	var tables []*table.Table
	for _, r := range results {
		if r.err != nil {
			if !l.SkipUnreadable {
				return nil, r.err
			}
			log.Warn("skipping unreadable file", zap.String("path", r.info.Path), zap.Error(r.err))
			out.Warnings = append(out.Warnings, model.ParseWarning{
				Kind:    model.WarningSkippedFile,
				Source:  r.info.Path,
				Message: r.err.Error(),
			})
			continue
		}
		tables = append(tables, r.table)
		for k := range r.table.Len() {
			out.Origins = append(out.Origins, model.RowOrigin{Path: r.info.Path, Row: k + 1})
		}
		out.Sources = append(out.Sources, r.info)
		out.Warnings = append(out.Warnings, r.warnings...)
	}
	if len(tables) == 0 {
		return nil, ErrNoInputFiles
	}

	out.Table = table.Concat(tables...)
	for _, w := range out.Warnings {
		logWarning(log, w)
	}
	log.Info("loaded memberships",
		zap.Int("files", len(out.Sources)),
		zap.Int("rows", out.Table.Len()),
		zap.Int("columns", len(out.Table.Columns())),
	)
	return out, nil
}

func (l *Loader) loadMembershipFile(path string) fileResult {
	res := fileResult{info: SourceInfo{Path: path}}

	t, enc, warnings, err := l.readFile(path)
	if err != nil {
		res.err = err
		return res
	}

	term, ok := TermFromFilename(path)
	cell := table.Null()
	if ok {
		cell = table.Of(term)
	} else {
		warnings = append(warnings, model.ParseWarning{
			Kind:    model.WarningFilenamePattern,
			Source:  path,
			Message: fmt.Sprintf("no %q term marker in file name; term left empty", termMarker),
		})
	}
	for i := range t.Len() {
		t.Set(i, model.ColTerm, cell)
	}
	t.AddColumn(model.ColTerm)

	res.table = t
	res.warnings = warnings
	res.info.Term = term
	res.info.Encoding = enc
	res.info.Rows = t.Len()
	return res
}

// LoadRoster reads the roster at path. An empty path yields an empty table.
// A generic "uri" column is renamed to the canonical legislator URI column
// unless that column already exists.
func (l *Loader) LoadRoster(path string) (*Roster, error) {
	log := zap.L().With(zap.String("component", "ingest"))
	if path == "" {
		log.Warn("no roster file found; enrichment disabled")
		return &Roster{Table: table.New()}, nil
	}

	t, enc, warnings, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	if t.Has(model.RosterColURI) && !t.Has(model.ColLegislatorURI) {
		if err := t.Rename(model.RosterColURI, model.ColLegislatorURI); err != nil {
			return nil, eris.Wrap(err, "ingest: roster")
		}
	}
	for _, w := range warnings {
		logWarning(log, w)
	}
	log.Info("loaded roster", zap.String("path", path), zap.Int("rows", t.Len()))
	return &Roster{Table: t, Path: path, Encoding: enc, Warnings: warnings}, nil
}

func (l *Loader) readFile(path string) (*table.Table, string, []model.ParseWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", nil, &UnreadableFileError{Path: path, Err: err}
	}

	encs := l.Encodings
	if len(encs) == 0 {
		encs = fetcher.DefaultEncodings
	}
	text, enc, err := fetcher.Decode(data, encs)
	if err != nil {
		return nil, "", nil, &UnreadableFileError{Path: path, Err: err}
	}

	recs, err := fetcher.ReadDelimited(text, fetcher.CSVOptions{Delimiter: ';', LazyQuotes: true})
	if err != nil {
		return nil, "", nil, &UnreadableFileError{Path: path, Err: err}
	}

	var warnings []model.ParseWarning
	for _, w := range recs.Widths {
		warnings = append(warnings, model.ParseWarning{
			Kind:    model.WarningRowWidth,
			Source:  path,
			Row:     w.Row,
			Message: fmt.Sprintf("row has %d fields, header has %d", w.Got, w.Want),
		})
	}
	return table.FromRecords(recs.Header, recs.Rows), enc, warnings, nil
}

func logWarning(log *zap.Logger, w model.ParseWarning) {
	log.Warn("parse warning",
		zap.String("kind", string(w.Kind)),
		zap.String("source", w.Source),
		zap.Int("row", w.Row),
		zap.String("column", w.Column),
		zap.String("value", w.Value),
		zap.String("message", w.Message),
	)
}
