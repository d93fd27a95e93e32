package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/nycschools/internal/tui/adapters"
)

var showCmd = &cobra.Command{
	Use:   "show <dbn>",
	Short: "Show every detail of a school",
	Long:  "Show every detail of a school, including SAT results. Example:\n  nycschools show 01M292",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		dbn := strings.ToUpper(strings.TrimSpace(args[0]))
		s, err := adapters.NewRepositoryAdapter(repo).GetSchool(cmdContext(cmd), dbn)
		if errors.Is(err, adapters.ErrNotFound) {
			return fmt.Errorf("school %s not found", dbn)
		}
		if err != nil {
			return err
		}
		printDetail(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
