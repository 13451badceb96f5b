package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/todo"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Append a row to the override table for every new validation warning",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := a.pipe.Todo(cmd.Context())
		if err != nil {
			return err
		}
		if len(added) == 0 {
			fmt.Println("No new TODO rows.")
			return nil
		}

		for _, o := range added {
			fmt.Printf("  %s  %s  %s\n", o.IssueID, o.Type, o.Detail)
		}
		fmt.Printf("%d TODO rows appended to %s\n", len(added), a.cfg.OverrideFile)
		return nil
	},
}

var todoReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk the open TODO rows and acknowledge them one by one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		overrides, err := a.pipe.LoadOverrides()
		if err != nil {
			return err
		}

		acked := 0
		for {
			open := todo.Pending(overrides)
			if len(open) == 0 {
				break
			}

			items := make([]string, 0, len(open)+1)
			for _, i := range open {
				o := overrides[i]
				items = append(items, fmt.Sprintf("%s  %s  %s", o.IssueID, o.Type, o.Detail))
			}
			items = append(items, "done")

			prompt := promptui.Select{
				Label: fmt.Sprintf("Acknowledge a checked issue (%d open)", len(open)),
				Items: items,
				Size:  12,
			}
			idx, _, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}
			if idx == len(open) {
				break
			}

			todo.Acknowledge(overrides, open[idx])
			acked++
		}

		if acked == 0 {
			fmt.Println("Nothing acknowledged.")
			return nil
		}
		if err := a.pipe.SaveOverrides(overrides); err != nil {
			return err
		}
		fmt.Printf("%d rows marked fixed=OK in %s\n", acked, a.cfg.OverrideFile)
		return nil
	},
}

func init() {
	todoCmd.AddCommand(todoReviewCmd)
	rootCmd.AddCommand(todoCmd)
}
