package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/checks"
)

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List the checks that would run",
	Long:  `List the ID and description of every check that would run against the plugin package, including one frontmatter check per discovered skill.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := getExpectationsFromViper()
		if err != nil {
			return err
		}

		env, err := checks.NewEnv(resolveRoot(args), exp)
		if err != nil {
			return err
		}

		return listChecks(cmd.Context(), os.Stdout, env)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listChecks(ctx context.Context, w io.Writer, env *checks.Env) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION")
	for _, c := range checks.Suite(ctx, env) {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Description)
	}
	return tw.Flush()
}
