package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/model"
	"github.com/sells-group/orgaos-cli/internal/table"
)

// Target names the table the dataset is published to.
type Target struct {
	Schema string
	Table  string
}

func (t Target) String() string { return t.Schema + "." + t.Table }

// dateColumns are stored as DATE; every other column is TEXT.
var dateColumns = map[string]bool{
	model.ColStart: true,
	model.ColEnd:   true,
}

// Publish replaces the target table with ds inside one transaction. The
// table is dropped and recreated so its columns always match the dataset.
func Publish(ctx context.Context, pool Pool, target Target, ds *table.Table) (int64, error) {
	log := zap.L().With(zap.String("component", "db.publish"), zap.String("target", target.String()))

	cols := ColumnNames(ds.Columns())
	if len(cols) == 0 {
		return 0, eris.New("db: publish: dataset has no columns")
	}
	rows, err := DatasetRows(ds)
	if err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: publish: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stmts := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{target.Schema}.Sanitize()),
		fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{target.Schema, target.Table}.Sanitize()),
		createTableSQL(target, cols),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, eris.Wrapf(err, "db: publish: exec %q", stmt)
		}
	}

	n, err := CopyFromSchema(ctx, tx, target.Schema, target.Table, cols, rows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: publish: commit tx")
	}

	log.Info("dataset published", zap.Int64("rows", n))
	return n, nil
}

// DatasetRows converts the table into COPY rows. Null cells become NULL and
// tenure dates are parsed into time.Time.
func DatasetRows(ds *table.Table) ([][]any, error) {
	cols := ds.Columns()
	rows := make([][]any, 0, ds.Len())
	for i := range ds.Len() {
		src := ds.Row(i)
		row := make([]any, len(cols))
		for j, c := range src {
			if !c.Valid {
				continue
			}
			if dateColumns[cols[j]] {
				d, err := time.Parse(time.DateOnly, c.Value)
				if err != nil {
					return nil, eris.Wrapf(err, "db: row %d column %s", i+1, cols[j])
				}
				row[j] = d
				continue
			}
			row[j] = c.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ColumnNames returns the Postgres column names for the dataset header.
// Blank names, as left by a trailing delimiter, become column_<position>.
func ColumnNames(cols []string) []string {
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[c] = true
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c) != "" {
			out[i] = c
			continue
		}
		name := fmt.Sprintf("column_%d", i+1)
		for taken[name] {
			name += "_"
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func createTableSQL(target Target, cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := "TEXT"
		if dateColumns[c] {
			typ = "DATE"
		}
		defs[i] = pgx.Identifier{c}.Sanitize() + " " + typ
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)",
		pgx.Identifier{target.Schema, target.Table}.Sanitize(), strings.Join(defs, ", "))
}
