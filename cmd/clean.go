package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/orgaos-cli/internal/pipeline"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Merge, enrich and clean the membership extracts",
	Long:  "Reads every orgaosDeputados-L*.csv extract, joins birth state and sex from the roster, fills sentinels, normalises dates, removes duplicates and invalid tenures, and writes the cleaned dataset with a run manifest.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyCleanFlags(cmd)
		if err := cfg.Validate("clean"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := pipeline.New(cfg, st).Clean(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "wrote %d rows to %s (%d input rows, %d warnings, run %s)\n",
			res.Dataset.Len(), res.Manifest.Output, res.Manifest.Stats.InputRows, res.Manifest.Warnings, res.Manifest.RunID)
		return nil
	},
}

func applyCleanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.MembershipGlob, _ = flags.GetString("input")
	}
	if flags.Changed("roster") {
		cfg.Input.RosterGlob, _ = flags.GetString("roster")
	}
	if flags.Changed("out-dir") {
		cfg.Clean.OutputDir, _ = flags.GetString("out-dir")
	}
	if flags.Changed("unknown-label") {
		cfg.Clean.UnknownLabel, _ = flags.GetString("unknown-label")
	}
	if flags.Changed("skip-unreadable") {
		cfg.Input.SkipUnreadable, _ = flags.GetBool("skip-unreadable")
	}
	if flags.Changed("workers") {
		cfg.Input.Workers, _ = flags.GetInt("workers")
	}
}

func init() {
	cleanCmd.Flags().String("input", "", "membership extract glob (default from config)")
	cleanCmd.Flags().String("roster", "", "roster glob (default from config)")
	cleanCmd.Flags().String("out-dir", "", "output directory (default from config)")
	cleanCmd.Flags().String("unknown-label", "", "label for a missing party or state (default from config)")
	cleanCmd.Flags().Bool("skip-unreadable", false, "skip membership files that cannot be decoded")
	cleanCmd.Flags().Int("workers", 0, "concurrent file reads (default from config)")
	rootCmd.AddCommand(cleanCmd)
}
