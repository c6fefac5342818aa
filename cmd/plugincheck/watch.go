package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
	"github.com/jingkaihe/plugincheck/pkg/watcher"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	Run        *RunConfig
	Debounce   time.Duration
	IgnoreDirs []string
}

// NewWatchConfig creates a WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		Run:        NewRunConfig(),
		Debounce:   watcher.DefaultDebounce,
		IgnoreDirs: append([]string(nil), watcher.DefaultIgnoreDirs...),
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Re-run the checks whenever the plugin package changes",
	Long: `Run every structural check, then watch the plugin package and run them
again after each change. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config := getWatchConfigFromFlags(cmd, args)

		exp, err := getExpectationsFromViper()
		if err != nil {
			return err
		}

		presenter.SetQuiet(config.Run.Quiet)
		return watchChecks(ctx, config, exp, presenter.Default())
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().IntP("parallel", "p", defaults.Run.Parallel, "Number of checks to run at the same time")
	watchCmd.Flags().BoolP("quiet", "q", defaults.Run.Quiet, "Only print failures")
	watchCmd.Flags().String("report", defaults.Run.ReportPath, "Rewrite a JSON report to this file after each run")
	watchCmd.Flags().Duration("debounce", defaults.Debounce, "How long to wait for changes to settle")
	watchCmd.Flags().StringSlice("ignore", defaults.IgnoreDirs, "Directory names to ignore")

	rootCmd.AddCommand(watchCmd)
}

func getWatchConfigFromFlags(cmd *cobra.Command, args []string) *WatchConfig {
	config := NewWatchConfig()
	config.Run = getRunConfigFromFlags(cmd, args)

	if debounce, err := cmd.Flags().GetDuration("debounce"); err == nil {
		config.Debounce = debounce
	}
	if ignore, err := cmd.Flags().GetStringSlice("ignore"); err == nil {
		config.IgnoreDirs = ignore
	}
	return config
}

// watchChecks runs the suite on every settled change under the root until
// ctx is cancelled. Failing checks do not stop the watch.
func watchChecks(ctx context.Context, config *WatchConfig, exp checks.Expectations, p presenter.Presenter) error {
	if ctx == nil {
		ctx = context.Background()
	}

	w := watcher.New(config.Run.Root,
		watcher.WithDebounce(config.Debounce),
		watcher.WithIgnoreDirs(config.IgnoreDirs...),
	)

	return w.Watch(ctx, func(ctx context.Context) {
		_, err := runChecks(ctx, config.Run, exp, p)
		if err != nil && !errors.Is(err, errChecksFailed) {
			logger.G(ctx).WithError(err).Error("check run failed")
			p.Error(err, "check run failed")
		}
		p.Separator()
	})
}
