package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/VoxDroid/nycschools/internal/config"
	"github.com/VoxDroid/nycschools/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the school directory and SAT results into the cache",
	Long: "Download the school directory and SAT results from NYC Open Data (or the\n" +
		"sources set in the config file) and store them in the local cache.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sources := settings.Sources
		if v, _ := cmd.Flags().GetString("schools"); v != "" {
			sources.Schools = v
		}
		if v, _ := cmd.Flags().GetString("sat"); v != "" {
			sources.SAT = v
		}
		return runFetch(cmd, sources)
	},
}

func runFetch(cmd *cobra.Command, sources config.Sources) error {
	repo, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	f := fetch.New(repo, sources,
		fetch.WithTimeout(settings.FetchTimeout),
		fetch.WithLogger(logger.Named("fetch")))
	res, err := f.Fetch(cmdContext(cmd))
	if err != nil {
		return err
	}
	printFetchResult(cmd.OutOrStdout(), res)
	return nil
}

func printFetchResult(w io.Writer, res fetch.Result) {
	fmt.Fprintf(w, "stored %s schools and %s SAT results (%s)\n",
		humanize.Comma(int64(res.Schools)), humanize.Comma(int64(res.SATScores)), res.Status)
	if res.Skipped > 0 {
		fmt.Fprintf(w, "skipped %d rows without a DBN or name\n", res.Skipped)
	}
	if res.SATErr != nil {
		fmt.Fprintf(w, "SAT results not updated: %v\n", res.SATErr)
	}
}

var importCmd = &cobra.Command{
	Use:   "import <schools.json> [sat.json]",
	Short: "Load the school directory (and optionally SAT results) from local JSON files",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := config.Sources{Schools: args[0]}
		if len(args) == 2 {
			sources.SAT = args[1]
		}
		return runFetch(cmd, sources)
	},
}

func init() {
	fetchCmd.Flags().String("schools", "", "School directory URL or file (overrides the config)")
	fetchCmd.Flags().String("sat", "", "SAT results URL or file (overrides the config)")
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(importCmd)
}
