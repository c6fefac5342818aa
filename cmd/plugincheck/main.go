package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

// errChecksFailed is returned when at least one check failed. The report
// has already been printed, so main only sets the exit status.
var errChecksFailed = errors.New("structural checks failed")

var rootCmd = &cobra.Command{
	Use:   "plugincheck",
	Short: "Check the structure of a plugin package",
	Long: `plugincheck validates that a plugin package is internally consistent: its
skills, commands, agents and scripts exist where .claude-plugin/plugin.json
says they do, SKILL.md files carry frontmatter, scripts are executable, and
the expected number of each is present.

Running plugincheck without a subcommand runs every check.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := initConfig(resolveRoot(args), configFile); err != nil {
			return err
		}
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		if viper.GetBool("no_color") {
			presenter.SetColorMode(presenter.ColorNever)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(runCmd, args)
	},
	Args: cobra.MaximumNArgs(1),
}

func init() {
	defaults := checks.DefaultExpectations()

	flags := rootCmd.PersistentFlags()
	flags.String("root", ".", "Root directory of the plugin package")
	flags.String("config", "", "Config file (default .plugincheck.yaml in the root or home directory)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", logger.FormatText, "Log format (fmt, json)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("plugin-name", defaults.PluginName, "Expected plugin name in plugin.json")
	flags.Int("skills", defaults.SkillCount, "Expected number of skills")
	flags.Int("scripts", defaults.ScriptCount, "Expected number of scripts")
	flags.String("script-pattern", defaults.ScriptPattern, "File name pattern of scripts under scripts/")

	bindFlags(flags)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			presenter.Error(err, "")
		}
		os.Exit(1)
	}
}
