package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/nycschools/internal/format"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the download history",
	Long:  "Show the download history, newest first (time, status, counts, error)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := repo.ListFetchHistory(cmdContext(cmd), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "no downloads yet; run 'nycschools fetch'")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(out, "%s (%s)\t%s\t%d schools\t%d SAT\t%s\n",
				format.Timestamp(r.StartedAt.Local()), humanize.Time(r.StartedAt),
				r.Status, r.Schools, r.SATScores, r.Source)
			if r.Error != "" {
				fmt.Fprintf(out, "\terror: %s\n", r.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
