package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/ingest"
	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/reconcile"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// CleanResult is the output of a clean run.
type CleanResult struct {
	Dataset  *table.Table
	Manifest *Manifest
	Warnings []model.ParseWarning
}

// Clean discovers the raw extracts, ingests and reconciles them, and writes
// the cleaned dataset plus its manifest to the configured output directory.
func (r *Runner) Clean(ctx context.Context) (*CleanResult, error) {
	encs, err := fetcher.LookupEncodings(r.cfg.Input.Encodings)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: input encodings")
	}

	var res *CleanResult
	err = r.track(ctx, "clean", func(run *model.Run) (model.RunSummary, error) {
		var cerr error
		res, cerr = r.clean(ctx, run, encs)
		if cerr != nil {
			return model.RunSummary{}, cerr
		}
		return model.RunSummary{
			RowsIn:   res.Manifest.Stats.InputRows,
			RowsOut:  res.Manifest.Stats.OutputRows,
			Warnings: res.Manifest.Warnings,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) clean(ctx context.Context, run *model.Run, encs []fetcher.Encoding) (*CleanResult, error) {
	log := zap.L().With(zap.String("component", "pipeline.clean"), zap.String("run_id", run.ID))
	in := r.cfg.Input
	out := r.cfg.Clean

	m := &Manifest{RunID: run.ID, StartedAt: run.StartedAt}

	var paths []string
	var rosterPath string
	err := stage(log, &m.Stages, "discover", func() error {
		var err error
		if paths, err = ingest.Discover(in.MembershipGlob); err != nil {
			return err
		}
		if len(paths) == 0 {
			return eris.Wrapf(ingest.ErrNoInputFiles, "pipeline: glob %s", in.MembershipGlob)
		}
		if in.RosterGlob != "" {
			rosterPath, err = ingest.FirstMatch(in.RosterGlob)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	loader := &ingest.Loader{Encodings: encs, Workers: in.Workers, SkipUnreadable: in.SkipUnreadable}
	var members *ingest.Memberships
	var roster *ingest.Roster
	err = stage(log, &m.Stages, "ingest", func() error {
		var err error
		if members, err = loader.LoadMemberships(ctx, paths); err != nil {
			return err
		}
		roster, err = loader.LoadRoster(rosterPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	var result *reconcile.Result
	_ = stage(log, &m.Stages, "reconcile", func() error {
		result = reconcile.Reconcile(members.Table, roster.Table, reconcile.Options{UnknownLabel: out.UnknownLabel, Origins: members.Origins})
		return nil
	})

	outPath := out.OutputPath()
	err = stage(log, &m.Stages, "write", func() error {
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "pipeline: create output dir %s", dir)
			}
		}
		return WriteDataset(outPath, result.Table)
	})
	if err != nil {
		return nil, err
	}

	var warnings []model.ParseWarning
	warnings = append(warnings, members.Warnings...)
	warnings = append(warnings, roster.Warnings...)
	warnings = append(warnings, result.Warnings...)

	m.Inputs = members.Sources
	m.Roster = RosterInfo{Path: roster.Path, Encoding: roster.Encoding, Rows: roster.Table.Len()}
	m.Stats = result.Stats
	m.Warnings = len(warnings)
	m.WarningsByKind = countKinds(warnings)
	m.Output = outPath
	m.Columns = result.Table.Columns()
	m.FinishedAt = time.Now().UTC()

	if err := WriteManifest(filepath.Join(filepath.Dir(outPath), ManifestFile), m); err != nil {
		return nil, err
	}

	log.Info("pipeline: dataset written",
		zap.String("path", outPath),
		zap.Int("rows", result.Table.Len()),
		zap.Int("warnings", len(warnings)),
	)
	return &CleanResult{Dataset: result.Table, Manifest: m, Warnings: warnings}, nil
}

func countKinds(ws []model.ParseWarning) map[model.WarningKind]int {
	if len(ws) == 0 {
		return nil
	}
	out := make(map[model.WarningKind]int)
	for _, w := range ws {
		out[w.Kind]++
	}
	return out
}
