// Package checktest runs the plugin conformance checks from go test and
// builds plugin trees for tests.
package checktest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugincheck/pkg/checks"
)

// Run runs every check for the plugin at root as a subtest of t, named by
// check ID. Each check fails its own subtest only.
func Run(t *testing.T, root string, exp checks.Expectations) {
	t.Helper()

	env, err := checks.NewEnv(root, exp)
	require.NoError(t, err)

	ctx := context.Background()
	for _, c := range checks.Suite(ctx, env) {
		t.Run(c.ID, func(t *testing.T) {
			if err := c.Run(ctx, env); err != nil {
				t.Error(err)
			}
		})
	}
}

// ValidManifest is a plugin.json matching the default expectations
const ValidManifest = `{
  "name": "tuivision",
  "version": "0.1.0",
  "description": "See and drive terminal user interfaces",
  "author": {"name": "tuivision"},
  "skills": ["./skills/tuivision"],
  "commands": ["./commands/tui-screenshot.md"]
}
`

// ValidSkill is a SKILL.md with frontmatter
const ValidSkill = `---
name: tuivision
description: Spawn, drive and screenshot terminal applications
---

# TUI Vision

Use the tuivision tools to inspect full-screen terminal programs.
`

// Scripts are the script names of a valid plugin tree
var Scripts = []string{"build.sh", "install.sh", "screenshot.sh", "test.sh"}

// WriteFile writes content to root/rel with perm, creating parent directories
func WriteFile(t *testing.T, root, rel, content string, perm os.FileMode) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

// NewPlugin writes a plugin tree that passes every check under the default
// expectations and returns its root
func NewPlugin(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	WriteFile(t, root, ".claude-plugin/plugin.json", ValidManifest, 0o644)
	WriteFile(t, root, "skills/tuivision/SKILL.md", ValidSkill, 0o644)
	WriteFile(t, root, "commands/tui-screenshot.md", "---\ndescription: Take a screenshot\n---\n", 0o644)
	WriteFile(t, root, "agents/tui-tester.md", "---\nname: tui-tester\ndescription: Tests TUIs\n---\n", 0o644)

	for _, name := range checks.DefaultRequiredFiles {
		WriteFile(t, root, name, name+"\n", 0o644)
	}
	for _, name := range Scripts {
		WriteFile(t, root, "scripts/"+name, "#!/bin/sh\nexit 0\n", 0o755)
	}

	return root
}
