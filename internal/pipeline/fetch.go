package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/model"
)

// MembershipURL is the per-term membership extract on the open data portal.
func MembershipURL(base string, term int) string {
	return fmt.Sprintf("%s/orgaosDeputados/csv/orgaosDeputados-L%d.csv", strings.TrimRight(base, "/"), term)
}

// RosterURL is the legislator roster extract.
func RosterURL(base string) string {
	return strings.TrimRight(base, "/") + "/deputados/csv/deputados.csv"
}

// Fetch downloads the membership extract of each term plus the roster into
// the configured destination directory and returns the files written.
func (r *Runner) Fetch(ctx context.Context, f fetcher.Fetcher, terms []int) ([]string, error) {
	if len(terms) == 0 {
		return nil, eris.New("pipeline: fetch: no terms given")
	}
	urls := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		urls = append(urls, MembershipURL(r.cfg.Fetch.BaseURL, t))
	}
	urls = append(urls, RosterURL(r.cfg.Fetch.BaseURL))

	var files []string
	err := r.track(ctx, "fetch", func(run *model.Run) (model.RunSummary, error) {
		log := zap.L().With(zap.String("component", "pipeline.fetch"), zap.String("run_id", run.ID))
		dest := r.cfg.Fetch.DestDir
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return model.RunSummary{}, eris.Wrapf(err, "pipeline: create %s", dest)
		}
		for _, u := range urls {
			p := filepath.Join(dest, path.Base(u))
			n, err := f.DownloadToFile(ctx, u, p)
			if err != nil {
				return model.RunSummary{}, eris.Wrapf(err, "pipeline: fetch %s", u)
			}
			log.Info("pipeline: downloaded", zap.String("url", u), zap.String("path", p), zap.Int64("bytes", n))
			files = append(files, p)
		}
		return model.RunSummary{RowsOut: len(files)}, nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
