package pipeline

import (
	"context"

	"github.com/sells-group/orgaos-cli/internal/db"
	"github.com/sells-group/orgaos-cli/internal/model"
)

// Publish loads the cleaned dataset into the configured Postgres table,
// replacing its contents.
func (r *Runner) Publish(ctx context.Context, pool db.Pool) (int64, error) {
	var n int64
	err := r.track(ctx, "publish", func(_ *model.Run) (model.RunSummary, error) {
		ds, err := ReadDataset(r.cfg.Clean.OutputPath())
		if err != nil {
			return model.RunSummary{}, err
		}
		target := db.Target{Schema: r.cfg.Publish.Schema, Table: r.cfg.Publish.Table}
		if n, err = db.Publish(ctx, pool, target, ds); err != nil {
			return model.RunSummary{}, err
		}
		return model.RunSummary{RowsIn: ds.Len(), RowsOut: int(n)}, nil
	})
	return n, err
}
