package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/orgaos-cli/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute participation statistics from the cleaned dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		if flags.Changed("top") {
			cfg.Report.TopN, _ = flags.GetInt("top")
		}
		if noCharts, _ := flags.GetBool("no-charts"); noCharts {
			cfg.Report.Charts = false
		}
		if noXLSX, _ := flags.GetBool("no-xlsx"); noXLSX {
			cfg.Report.XLSX = false
		}
		if err := cfg.Validate("report"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := pipeline.New(cfg, st).Report(ctx)
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			fmt.Fprintln(os.Stdout, f)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().Int("top", 10, "number of entries in the top-N charts")
	reportCmd.Flags().Bool("no-charts", false, "skip PNG charts")
	reportCmd.Flags().Bool("no-xlsx", false, "skip the XLSX workbook")
	rootCmd.AddCommand(reportCmd)
}
