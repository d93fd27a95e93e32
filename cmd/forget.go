package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/nycschools/internal/utils"
)

var forgetCmd = &cobra.Command{
	Use:   "forget <dbn>",
	Short: "Remove a school and its SAT results from the cache",
	Long: "Remove a school and its SAT results from the cache until the next fetch.\n" +
		"A running 'nycschools tui' or 'list --watch' picks up the change.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbn := strings.ToUpper(strings.TrimSpace(args[0]))
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !utils.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Remove %s from the cache?", dbn)) {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}

		repo, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()
		if err := repo.DeleteSchool(cmdContext(cmd), dbn); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", dbn)
		return nil
	},
}

func init() {
	forgetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(forgetCmd)
}
