package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/orgaos-cli/internal/fetcher"
	"github.com/sells-group/orgaos-cli/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download membership extracts and the roster from the open data portal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		terms, _ := cmd.Flags().GetIntSlice("terms")
		if dest, _ := cmd.Flags().GetString("dest"); dest != "" {
			cfg.Fetch.DestDir = dest
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:         cfg.Fetch.UserAgent,
			Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:        cfg.Fetch.MaxRetries,
			RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		})
		files, err := pipeline.New(cfg, st).Fetch(ctx, f, terms)
		if err != nil {
			return err
		}
		for _, p := range files {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntSlice("terms", nil, "legislature numbers to download, e.g. 55,56,57")
	fetchCmd.Flags().String("dest", "", "download directory (default from config)")
	_ = fetchCmd.MarkFlagRequired("terms")
	rootCmd.AddCommand(fetchCmd)
}
