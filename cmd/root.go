package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/orgaos-cli/internal/config"
	"github.com/sells-group/orgaos-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "orgaos-cli",
	Short:        "Committee membership dataset builder for the Chamber of Deputies",
	Long:         "Merges per-term committee membership extracts, enriches them from the legislator roster, cleans the result, and reports participation statistics.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the run ledger for the configured driver.
func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
