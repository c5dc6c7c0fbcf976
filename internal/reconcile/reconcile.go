// Package reconcile turns the raw membership table and the roster into the
// cleaned dataset: schema completion, roster enrichment, sentinel defaults,
// date coercion, deduplication, validity filtering, and column ordering.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// DefaultUnknownLabel replaces a missing party or state.
const DefaultUnknownLabel = "Unknown"

// Options tunes reconciliation.
type Options struct {
	UnknownLabel string
	// Origins locates each input row in its source file for date warnings.
	// Without it warnings carry the input row number only.
	Origins []model.RowOrigin
}

// Stats counts what each step did.
type Stats struct {
	InputRows         int  `json:"input_rows" yaml:"input_rows"`
	Enriched          bool `json:"enriched" yaml:"enriched"`
	RosterMatches     int  `json:"roster_matches" yaml:"roster_matches"`
	StateFromBirth    int  `json:"state_from_birth" yaml:"state_from_birth"`
	PartyDefaulted    int  `json:"party_defaulted" yaml:"party_defaulted"`
	StateDefaulted    int  `json:"state_defaulted" yaml:"state_defaulted"`
	DatesNulled       int  `json:"dates_nulled" yaml:"dates_nulled"`
	DuplicatesRemoved int  `json:"duplicates_removed" yaml:"duplicates_removed"`
	InvalidRanges     int  `json:"invalid_ranges_dropped" yaml:"invalid_ranges_dropped"`
	OutputRows        int  `json:"output_rows" yaml:"output_rows"`
}

// Result is the cleaned dataset with its step counters and date warnings.
type Result struct {
	Table    *table.Table
	Stats    Stats
	Warnings []model.ParseWarning
}

type enrichment struct {
	birthState table.Cell
	sex        table.Cell
}

// Reconcile produces the cleaned dataset. It never fails: unusable values
// degrade to nulls or the unknown label. Inputs are not modified.
func Reconcile(memberships, roster *table.Table, opts Options) *Result {
	if opts.UnknownLabel == "" {
		opts.UnknownLabel = DefaultUnknownLabel
	}
	if roster == nil {
		roster = table.New()
	}
	log := zap.L().With(zap.String("component", "reconcile"))

	t := memberships.Clone()
	res := &Result{Table: t}
	res.Stats.InputRows = t.Len()

	for _, col := range model.CanonicalColumns {
		t.AddColumn(col)
	}

	res.enrich(t, roster, log)
	res.fillDefaults(t, opts.UnknownLabel)
	res.coerceDates(t, opts.Origins)

	res.Stats.DuplicatesRemoved = t.Dedup()
	res.Stats.InvalidRanges = dropInvalidRanges(t)

	t.Reorder(model.OutputOrder)
	res.Stats.OutputRows = t.Len()

	for _, w := range res.Warnings {
		log.Warn("parse warning",
			zap.String("kind", string(w.Kind)),
			zap.String("source", w.Source),
			zap.Int("row", w.Row),
			zap.String("column", w.Column),
			zap.String("value", w.Value),
		)
	}
	log.Info("reconciled memberships",
		zap.Int("input_rows", res.Stats.InputRows),
		zap.Int("output_rows", res.Stats.OutputRows),
		zap.Int("duplicates_removed", res.Stats.DuplicatesRemoved),
		zap.Int("invalid_ranges_dropped", res.Stats.InvalidRanges),
	)
	return res
}

// enrich joins birth state and sex from the roster by legislator URI. Without
// a usable roster the sex column is uniformly null.
func (r *Result) enrich(t *table.Table, roster *table.Table, log *zap.Logger) {
	t.AddColumn(model.ColLegislatorSex)

	if !roster.Has(model.RosterColBirthState) {
		clearColumn(t, model.ColLegislatorSex)
		return
	}
	if !roster.Has(model.ColLegislatorURI) {
		log.Warn("roster has no legislator URI column; enrichment skipped")
		r.Warnings = append(r.Warnings, model.ParseWarning{
			Kind:    model.WarningRoster,
			Column:  model.ColLegislatorURI,
			Message: "roster has a birth-state column but no legislator URI column",
		})
		clearColumn(t, model.ColLegislatorSex)
		return
	}
	r.Stats.Enriched = true

	lookup := make(map[string]enrichment, roster.Len())
	for i := range roster.Len() {
		key := roster.Get(i, model.ColLegislatorURI)
		if !key.Valid {
			continue
		}
		if _, seen := lookup[key.Value]; seen {
			continue
		}
		lookup[key.Value] = enrichment{
			birthState: roster.Get(i, model.RosterColBirthState),
			sex:        roster.Get(i, model.RosterColSex),
		}
	}

	for i := range t.Len() {
		var e enrichment
		if key := t.Get(i, model.ColLegislatorURI); key.Valid {
			var ok bool
			if e, ok = lookup[key.Value]; ok {
				r.Stats.RosterMatches++
			}
		}
		t.Set(i, model.ColLegislatorSex, e.sex)
		if !t.Get(i, model.ColState).Valid && e.birthState.Valid {
			t.Set(i, model.ColState, e.birthState)
			r.Stats.StateFromBirth++
		}
	}
}

func (r *Result) fillDefaults(t *table.Table, label string) {
	for i := range t.Len() {
		if !t.Get(i, model.ColParty).Valid {
			t.Set(i, model.ColParty, table.Of(label))
			r.Stats.PartyDefaulted++
		}
		if !t.Get(i, model.ColState).Valid {
			t.Set(i, model.ColState, table.Of(label))
			r.Stats.StateDefaulted++
		}
	}
}

// coerceDates normalises tenure dates to DateLayout. Unparseable values
// become null and are reported.
func (r *Result) coerceDates(t *table.Table, origins []model.RowOrigin) {
	for _, col := range []string{model.ColStart, model.ColEnd} {
		for i := range t.Len() {
			c := t.Get(i, col)
			if !c.Valid {
				continue
			}
			d, ok := ParseDate(c.Value)
			if !ok {
				t.Set(i, col, table.Null())
				r.Stats.DatesNulled++
				origin := model.RowOrigin{Row: i + 1}
				if i < len(origins) {
					origin = origins[i]
				}
				r.Warnings = append(r.Warnings, model.ParseWarning{
					Kind:    model.WarningDate,
					Source:  origin.Path,
					Row:     origin.Row,
					Column:  col,
					Value:   c.Value,
					Message: "unparseable date set to null",
				})
				continue
			}
			t.Set(i, col, table.Of(d.Format(DateLayout)))
		}
	}
}

// dropInvalidRanges removes rows whose tenure starts after it ends. Rows with
// either date missing are kept.
func dropInvalidRanges(t *table.Table) int {
	si, _ := t.Index(model.ColStart)
	ei, _ := t.Index(model.ColEnd)
	return t.Filter(func(row []table.Cell) bool {
		start, end := row[si], row[ei]
		if !start.Valid || !end.Valid {
			return true
		}
		// Both are DateLayout strings, which order lexically.
		return start.Value <= end.Value
	})
}

func clearColumn(t *table.Table, col string) {
	for i := range t.Len() {
		t.Set(i, col, table.Null())
	}
}
