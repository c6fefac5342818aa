package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/plugins"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory [root]",
	Short: "Show the skills, commands, agents and scripts of a plugin",
	Long: `Show what the plugin package ships: skills with their description and
title, commands, agents, and scripts with their permissions. Missing
directories are reported and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := getExpectationsFromViper()
		if err != nil {
			return err
		}

		env, err := checks.NewEnv(resolveRoot(args), exp)
		if err != nil {
			return err
		}

		return printInventory(os.Stdout, env.Discovery, presenter.Default())
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
}

func printInventory(w io.Writer, d *plugins.Discovery, p presenter.Presenter) error {
	p.Section("Skills")
	skills, err := d.DiscoverSkills()
	if err := skipMissing(err, p); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, skill := range skills {
		details, err := d.LoadSkill(skill)
		if err != nil {
			p.Warning(fmt.Sprintf("%s: %v", skill.Name, err))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, details.Title, details.Metadata.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, section := range []struct {
		title    string
		discover func() ([]*plugins.Entry, error)
	}{
		{"Commands", d.DiscoverCommands},
		{"Agents", d.DiscoverAgents},
	} {
		p.Section(section.title)
		entries, err := section.discover()
		if err := skipMissing(err, p); err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Fprintln(w, entry.Name)
		}
	}

	p.Section("Scripts")
	scripts, err := d.DiscoverScripts()
	if err := skipMissing(err, p); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, script := range scripts {
		fmt.Fprintf(tw, "%s\t%s\n", script.Mode, script.Name)
	}
	return tw.Flush()
}

// skipMissing turns a missing directory into a warning
func skipMissing(err error, p presenter.Presenter) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		p.Warning(errors.Cause(err).Error())
		return nil
	}
	return err
}
