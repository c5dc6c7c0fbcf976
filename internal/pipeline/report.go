package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/report"
)

// WorkbookFile is the XLSX written by the report stage.
const WorkbookFile = "estatisticas.xlsx"

// ReportResult lists the aggregates, the files written and the stage timings.
type ReportResult struct {
	Stats  *report.Stats
	Files  []string
	Stages []StageTiming
}

// Report reads the cleaned dataset and writes the participation tables,
// the workbook and the charts next to it.
func (r *Runner) Report(ctx context.Context) (*ReportResult, error) {
	var res *ReportResult
	err := r.track(ctx, "report", func(run *model.Run) (model.RunSummary, error) {
		log := zap.L().With(zap.String("component", "pipeline.report"), zap.String("run_id", run.ID))

		path := r.cfg.Clean.OutputPath()
		ds, err := ReadDataset(path)
		if err != nil {
			return model.RunSummary{}, err
		}
		dir := filepath.Dir(path)

		res = &ReportResult{Stats: report.Compute(ds)}
		timings := &res.Stages
		err = stage(log, timings, "tables", func() error {
			files, err := report.WriteCSVs(dir, res.Stats)
			res.Files = append(res.Files, files...)
			return err
		})
		if err != nil {
			return model.RunSummary{}, err
		}

		if r.cfg.Report.XLSX {
			err = stage(log, timings, "workbook", func() error {
				wb := filepath.Join(dir, WorkbookFile)
				if err := report.WriteWorkbook(wb, res.Stats); err != nil {
					return err
				}
				res.Files = append(res.Files, wb)
				return nil
			})
			if err != nil {
				return model.RunSummary{}, err
			}
		}

		if r.cfg.Report.Charts {
			err = stage(log, timings, "charts", func() error {
				files, err := report.RenderCharts(dir, res.Stats, r.cfg.Report.TopN)
				res.Files = append(res.Files, files...)
				return err
			})
			if err != nil {
				return model.RunSummary{}, err
			}
		}

		var total int64
		for _, st := range res.Stages {
			total += st.DurationMS
		}
		log.Info("pipeline: report written",
			zap.String("dir", dir),
			zap.Int("files", len(res.Files)),
			zap.Int("stages", len(res.Stages)),
			zap.Int64("duration_ms", total),
		)
		return model.RunSummary{RowsIn: ds.Len(), RowsOut: len(res.Files)}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
