package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/logger"
)

const configName = ".plugincheck"

// flagKeys maps persistent flags to their viper keys
var flagKeys = map[string]string{
	"root":           "root",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"no-color":       "no_color",
	"plugin-name":    "plugin_name",
	"skills":         "skill_count",
	"scripts":        "script_count",
	"script-pattern": "script_pattern",
}

func bindFlags(flags *pflag.FlagSet) {
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func setDefaults() {
	defaults := checks.DefaultExpectations()

	viper.SetDefault("root", ".")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", logger.FormatText)
	viper.SetDefault("no_color", false)
	viper.SetDefault("plugin_name", defaults.PluginName)
	viper.SetDefault("skill_count", defaults.SkillCount)
	viper.SetDefault("script_count", defaults.ScriptCount)
	viper.SetDefault("script_pattern", defaults.ScriptPattern)
	viper.SetDefault("required_files", defaults.RequiredFiles)
	viper.SetDefault("manifest_fields", defaults.ManifestFields)
}

// initConfig wires environment variables, defaults and the optional config
// file into viper. Without an explicit file, a missing .plugincheck.yaml is
// not an error.
func initConfig(root, configFile string) error {
	viper.SetEnvPrefix("PLUGINCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(root)
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}

	return nil
}

// getExpectationsFromViper decodes the check expectations from the merged
// flag, environment, file and default configuration
func getExpectationsFromViper() (checks.Expectations, error) {
	exp := checks.DefaultExpectations()
	if err := viper.Unmarshal(&exp); err != nil {
		return exp, errors.Wrap(err, "failed to unmarshal expectations")
	}
	if err := exp.Validate(); err != nil {
		return exp, errors.Wrap(err, "invalid expectations")
	}
	return exp, nil
}

// resolveRoot returns the positional root argument if given, else the
// configured root
func resolveRoot(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return viper.GetString("root")
}
