package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the master table from the raw tables, aliases and overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		master, err := a.pipe.Build(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Master table: %d rows\n", len(master))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
