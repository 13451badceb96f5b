package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Scheduled batch: urls, scrape the current year, build and validate",
		Long: "Refresh the URL list, scrape the current year's issues, rebuild the master\n" +
			"table and validate it. Exits with status 3 when warnings remain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.interruptible(cmd.Context())
			defer cancel()

			start := time.Now()
			warnings, err := a.pipe.Run(ctx)
			if len(warnings) > 0 {
				// Run already wraps ErrValidationFailed; only print the table
				_ = reportWarnings(os.Stdout, warnings)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Pipeline finished in %s\n", time.Since(start).Round(time.Second))
			return nil
		},
	}
	addFetchFlags(runCmd)

	rootCmd.AddCommand(runCmd)
}
