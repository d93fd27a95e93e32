package cmd

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VoxDroid/nycschools/cmd/tui/ui"
	"github.com/VoxDroid/nycschools/internal/fetch"
	"github.com/VoxDroid/nycschools/internal/tui/adapters"
	modelpkg "github.com/VoxDroid/nycschools/internal/tui/model"
	"github.com/VoxDroid/nycschools/internal/watch"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive school browser",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, dbPath, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()

		mode, err := modelpkg.ParseDisplayMode(settings.DisplayMode)
		if err != nil {
			return err
		}
		if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
			mode = modelpkg.Detailed
		}

		ra := adapters.NewRepositoryAdapter(repo)
		uiModel := modelpkg.New(ra, ra, logger.Named("model"))
		tm := ui.NewModel(uiModel, ui.Options{Mode: mode, Log: logger.Named("tui")})
		p := ui.NewProgram(tm)

		done := make(chan struct{})
		updates := modelpkg.NewUpdateChannel(uiModel.Binding(), ui.Dispatcher(p, done),
			modelpkg.WithDebounce(settings.RefreshDebounce),
			modelpkg.WithRefreshHandler(tm.DataRefreshed),
			modelpkg.WithLogger(logger.Named("updates")))

		ctx, cancel := context.WithCancel(cmdContext(cmd))
		defer cancel()

		// database writes, from the TUI's own downloads or another process (e.g. 'nycschools fetch')
		watcher, err := watch.New(dbPath, updates, logger.Named("watch"))
		if err != nil {
			return err
		}
		watching := true
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("database watch disabled", zap.Error(err))
			watching = false
		}
		defer func() { _ = watcher.Stop() }()

		fetcher := fetch.New(repo, settings.Sources,
			fetch.WithTimeout(settings.FetchTimeout),
			fetch.WithNotifier(fetchNotifier(watching, updates)),
			fetch.WithLogger(logger.Named("fetch")))
		tm.SetFetcher(fetcher)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := updates.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("update channel stopped", zap.Error(err))
			}
		}()

		_, err = p.Run()
		close(done)
		cancel()
		wg.Wait()
		return err
	},
}

// fetchNotifier picks who hears about in-app downloads. A running watcher
// already sees the database write, so the fetcher stays silent then.
func fetchNotifier(watching bool, updates fetch.Notifier) fetch.Notifier {
	if watching {
		return nil
	}
	return updates
}

func init() {
	tuiCmd.Flags().Bool("detailed", false, "Start in detailed display mode")
	rootCmd.AddCommand(tuiCmd)
}
