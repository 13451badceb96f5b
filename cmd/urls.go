package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/kirarank/internal/issues"
)

var flagURLSlugs string

func init() {
	urlsCmd := &cobra.Command{
		Use:   "urls",
		Short: "Refresh the issue URL list from the yearly index pages",
		RunE:  runURLs,
	}
	urlsCmd.Flags().StringVar(&flagURLSlugs, "slug", "", "magazines to harvest, comma separated (default all)")
	addFetchFlags(urlsCmd)

	rootCmd.AddCommand(urlsCmd)
}

func runURLs(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := a.interruptible(cmd.Context())
	defer cancel()

	urls, err := a.pipe.UpdateURLs(ctx, issues.ParseList(flagURLSlugs))
	if err != nil {
		return err
	}

	fmt.Printf("URL list: %d issues\n", len(urls))
	return nil
}
