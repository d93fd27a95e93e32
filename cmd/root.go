package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/VoxDroid/nycschools/internal/config"
	"github.com/VoxDroid/nycschools/internal/db"
	"github.com/VoxDroid/nycschools/internal/store"
)

var (
	cfgPath string
	verbose bool
	debug   bool

	settings = config.Default
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nycschools",
	Short: "nycschools browses the NYC high school directory from a local cache",
	Long: "nycschools downloads the NYC school directory and SAT results into a local\n" +
		"SQLite cache and lets you list, search, filter and inspect schools.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		settings = c
		var outputs []string
		if cmd.Name() == "tui" {
			// keep log lines off the alternate screen
			if _, err := config.EnsureDataDir(); err != nil {
				return err
			}
			p, err := config.LogPath()
			if err != nil {
				return err
			}
			outputs = []string{p}
		}
		l, err := newLogger(settings.LogLevel, outputs)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "nycschools: run 'nycschools --help' to see available commands")
	},
}

// newLogger builds the production logger, or the development one with --debug.
// Development loggers panic on DPanic, which turns presentation index bugs into
// crashes while debugging. outputs replaces stderr when set.
func newLogger(level string, outputs []string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(strings.ToLower(level)); err != nil {
			return nil, err
		}
	}
	if verbose || debug {
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}
	return cfg.Build()
}

// cmdContext returns the command's context, or Background when RunE is
// called directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the configured cache database.
func openStore() (*store.Repository, string, error) {
	p, err := settings.DatabasePath()
	if err != nil {
		return nil, "", err
	}
	conn, err := db.Open(p)
	if err != nil {
		return nil, "", fmt.Errorf("open cache %s: %w", p, err)
	}
	return store.NewRepository(conn), p, nil
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $NYCSCHOOLS_CONFIG or ~/.nycschools/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "use the development logger")
}
