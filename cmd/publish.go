package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/orgaos-cli/internal/pipeline"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Load the cleaned dataset into Postgres",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		ctx := cmd.Context()

		pool, err := pgxpool.New(ctx, cfg.PublishURL())
		if err != nil {
			return eris.Wrap(err, "publish: connect")
		}
		defer pool.Close()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := pipeline.New(cfg, st).Publish(ctx, pool)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "published %d rows to %s.%s\n", n, cfg.Publish.Schema, cfg.Publish.Table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
