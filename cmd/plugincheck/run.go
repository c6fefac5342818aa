package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

// RunConfig holds configuration for the run command
type RunConfig struct {
	Root       string
	Parallel   int
	Quiet      bool
	ReportPath string
}

// NewRunConfig creates a RunConfig with default values
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Root:       ".",
		Parallel:   1,
		Quiet:      false,
		ReportPath: "",
	}
}

var runCmd = &cobra.Command{
	Use:   "run [root]",
	Short: "Run every structural check",
	Long: `Run every structural check against the plugin package and print the
result of each. The exit status is non-zero when any check fails.

Examples:
  plugincheck run
  plugincheck run ./plugins/tuivision --parallel 4
  plugincheck run --report plugincheck.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := getRunConfigFromFlags(cmd, args)

		exp, err := getExpectationsFromViper()
		if err != nil {
			return err
		}

		presenter.SetQuiet(config.Quiet)
		_, err = runChecks(cmd.Context(), config, exp, presenter.Default())
		return err
	},
}

func init() {
	defaults := NewRunConfig()
	runCmd.Flags().IntP("parallel", "p", defaults.Parallel, "Number of checks to run at the same time")
	runCmd.Flags().BoolP("quiet", "q", defaults.Quiet, "Only print failures")
	runCmd.Flags().String("report", defaults.ReportPath, "Write a JSON report to this file")

	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func getRunConfigFromFlags(cmd *cobra.Command, args []string) *RunConfig {
	config := NewRunConfig()
	config.Root = resolveRoot(args)

	if parallel, err := cmd.Flags().GetInt("parallel"); err == nil {
		config.Parallel = parallel
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		config.Quiet = quiet
	}
	if report, err := cmd.Flags().GetString("report"); err == nil {
		config.ReportPath = report
	}
	return config
}

// runChecks runs the full suite, prints the report and writes the JSON
// report if requested. It returns errChecksFailed when any check failed.
func runChecks(ctx context.Context, config *RunConfig, exp checks.Expectations, p presenter.Presenter) (*checks.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := checks.NewEnv(config.Root, exp)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, logrus.Fields{"root": env.Layout.Root()})
	runner := checks.NewRunner(checks.WithParallelism(config.Parallel))
	report := runner.RunSuite(ctx, env)

	p.Report(report)

	if config.ReportPath != "" {
		if err := report.WriteJSON(config.ReportPath); err != nil {
			return report, err
		}
		logger.G(ctx).WithField("path", config.ReportPath).Info("report written")
	}

	if !report.OK() {
		logger.G(ctx).WithError(report.Err()).Debug("checks failed")
		return report, errors.WithStack(errChecksFailed)
	}
	return report, nil
}
