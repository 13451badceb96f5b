package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/pipeline"
	"github.com/brogergvhs/kirarank/internal/table"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every issue of the master table against its magazine profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		warnings, err := a.pipe.Validate(cmd.Context())
		if err != nil {
			return err
		}
		return reportWarnings(os.Stdout, warnings)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// reportWarnings prints the warning table and turns a non-empty one into
// ErrValidationFailed.
func reportWarnings(out io.Writer, warnings []table.ValidationWarning) error {
	if len(warnings) == 0 {
		fmt.Fprintln(out, "All pass.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "MAGAZINE\tISSUE\tTYPE\tDETAIL")
	for _, v := range warnings {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Magazine, v.IssueID, v.Type, v.Detail)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
	}

	return fmt.Errorf("%w: %d warnings", pipeline.ErrValidationFailed, len(warnings))
}
