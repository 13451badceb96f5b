package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/pipeline"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagConfig       string
	flagEnvFile      string

	// storage
	flagDataDir string
	flagStore   string
	flagDSN     string
)

var rootCmd = &cobra.Command{
	Use:           "kirarank",
	Short:         "Track serialization order and color pages of the kirara magazines",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file to use instead of the active profile")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file with KIRARANK_* variables (default .env if present)")

	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory of the url list, raw tables and master table")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "table store: csv, memory, sqlite, mysql or postgres")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "data source name for sql stores")
}

// Execute runs the CLI. Validation failures exit with 3, other errors with 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, pipeline.ErrValidationFailed) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
