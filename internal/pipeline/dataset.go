package pipeline

import (
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// WriteDataset writes the cleaned table as semicolon-delimited UTF-8.
func WriteDataset(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := table.WriteDelimited(f, t, ';'); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return eris.Wrapf(f.Close(), "pipeline: close %s", path)
}

// ReadDataset loads a cleaned dataset written by WriteDataset.
func ReadDataset(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read dataset %s", path)
	}
	text, _, err := fetcher.Decode(data, []fetcher.Encoding{fetcher.UTF8})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: decode dataset %s", path)
	}
	recs, err := fetcher.ReadDelimited(text, fetcher.CSVOptions{Delimiter: ';'})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse dataset %s", path)
	}
	return table.FromRecords(recs.Header, recs.Rows), nil
}
