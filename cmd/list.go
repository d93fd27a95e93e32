package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/internal/store"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
	"github.com/VoxDroid/nycschools/internal/watch"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached schools",
	Long: "List cached schools grouped by first letter. Examples:\n" +
		"  nycschools list --search academy\n" +
		"  nycschools list --borough bronx --borough queens --min-graduation 0.8 --detailed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, dbPath, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		search, _ := cmd.Flags().GetString("search")
		fuzzyFlag, _ := cmd.Flags().GetBool("fuzzy")
		detailed, _ := cmd.Flags().GetBool("detailed")
		watchFlag, _ := cmd.Flags().GetBool("watch")
		criteria, filtered, err := criteriaFromFlags(cmd)
		if err != nil {
			return err
		}
		if filtered && strings.TrimSpace(search) != "" {
			return errors.New("--search cannot be combined with filter flags")
		}

		mode, err := modelpkg.ParseDisplayMode(settings.DisplayMode)
		if err != nil {
			return err
		}
		if detailed {
			mode = modelpkg.Detailed
		}

		out := cmd.OutOrStdout()
		if fuzzyFlag && strings.TrimSpace(search) != "" {
			return printFuzzy(cmdContext(cmd), out, repo, search, mode)
		}

		ui := modelpkg.New(adapters.NewRepositoryAdapter(repo), nil, logger.Named("list"))
		ui.View().SetDisplayMode(mode)
		query := modelpkg.QueryForText(search)
		if filtered {
			query = modelpkg.Filter(criteria)
		}
		ctx := cmdContext(cmd)
		if _, err := ui.Binding().SetQuery(ctx, query); err != nil {
			return err
		}
		ui.View().Sync()
		printListing(out, ui.View())

		if !watchFlag {
			return nil
		}
		return watchListing(ctx, out, ui, dbPath)
	},
}

// criteriaFromFlags reports whether any filter flag was given.
func criteriaFromFlags(cmd *cobra.Command) (adapters.FilterCriteria, bool, error) {
	var c adapters.FilterCriteria
	boroughs, _ := cmd.Flags().GetStringSlice("borough")
	for _, b := range boroughs {
		if b = strings.TrimSpace(b); b != "" {
			c.Boroughs = append(c.Boroughs, b)
		}
	}
	c.Neighborhood, _ = cmd.Flags().GetString("neighborhood")
	if cmd.Flags().Changed("min-graduation") {
		v, _ := cmd.Flags().GetFloat64("min-graduation")
		c.MinGraduationRate = &v
	}
	filtered := len(c.Boroughs) > 0 || strings.TrimSpace(c.Neighborhood) != "" || c.MinGraduationRate != nil
	if !filtered {
		return c, false, nil
	}
	return c, true, c.Validate()
}

func printFuzzy(ctx context.Context, w io.Writer, repo *store.Repository, query string, mode modelpkg.DisplayMode) error {
	found, err := repo.FuzzySearchSchools(ctx, query)
	if err != nil {
		return err
	}
	for _, s := range found {
		fmt.Fprintln(w, listRow(adapters.FromStore(s), mode))
	}
	if len(found) == 0 {
		fmt.Fprintln(w, "no schools")
	}
	return nil
}

// watchListing reprints the listing whenever another process changes the
// cache, until interrupted.
func watchListing(parent context.Context, w io.Writer, ui *modelpkg.UIModel, dbPath string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := modelpkg.NewLoop(1)
	prev := ui.View().Snapshot()
	ch := modelpkg.NewUpdateChannel(ui.Binding(), loop,
		modelpkg.WithDebounce(settings.RefreshDebounce),
		modelpkg.WithLogger(logger.Named("updates")),
		modelpkg.WithRefreshHandler(func(rs adapters.ResultSet, err error) {
			if err != nil {
				fmt.Fprintf(w, "refresh failed: %v\n", err)
				return
			}
			ui.View().Sync()
			change := modelpkg.Diff(prev, rs)
			prev = rs
			if change.Empty() {
				return
			}
			fmt.Fprintf(w, "\n-- %d new, %d removed --\n", len(change.Inserted), len(change.Removed))
			printListing(w, ui.View())
		}))

	watcher, err := watch.New(dbPath, ch, logger.Named("watch"))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, modelpkg.ErrDispatcherClosed) {
			logger.Warn("update channel stopped", zap.Error(err))
		}
	}()
	fmt.Fprintln(w, "watching for changes, press Ctrl-C to stop")
	err = loop.Run(ctx)
	wg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	listCmd.Flags().String("search", "", "Show schools whose name contains this text (more than 3 characters)")
	listCmd.Flags().Bool("fuzzy", false, "Enable fuzzy matching for --search")
	listCmd.Flags().StringSlice("borough", nil, "Only show schools in this borough (repeatable)")
	listCmd.Flags().String("neighborhood", "", "Only show schools whose neighborhood contains this text")
	listCmd.Flags().Float64("min-graduation", 0, "Minimum graduation rate as a fraction, e.g. 0.8")
	listCmd.Flags().Bool("detailed", false, "Show borough, neighborhood and graduation rate")
	listCmd.Flags().Bool("watch", false, "Keep running and reprint when the cache changes")
	rootCmd.AddCommand(listCmd)
}
