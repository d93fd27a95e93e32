package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var boroughsCmd = &cobra.Command{
	Use:   "boroughs",
	Short: "List boroughs with the number of cached schools",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		counts, err := repo.Boroughs(cmdContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(counts) == 0 {
			fmt.Fprintln(out, "no schools cached")
			return nil
		}
		for _, c := range counts {
			fmt.Fprintf(out, "%-14s %s\n", c.Borough, humanize.Comma(int64(c.Schools)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boroughsCmd)
}
