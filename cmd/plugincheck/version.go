package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()

		format, _ := cmd.Flags().GetString("format")
		if format != "json" {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		}

		out, err := info.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	versionCmd.Flags().String("format", "text", "Output format (text, json)")
	rootCmd.AddCommand(versionCmd)
}
