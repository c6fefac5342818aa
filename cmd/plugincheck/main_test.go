package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugincheck/pkg/checks"
	"github.com/jingkaihe/plugincheck/pkg/checks/checktest"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

func newTestPresenter() (presenter.Presenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return presenter.NewWithOptions(&out, &errOut, presenter.ColorNever), &out, &errOut
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestRunChecksPasses(t *testing.T) {
	root := checktest.NewPlugin(t)
	p, out, errOut := newTestPresenter()

	config := NewRunConfig()
	config.Root = root

	report, err := runChecks(context.Background(), config, checks.DefaultExpectations(), p)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.OK())
	assert.Contains(t, out.String(), "PASS skill-count")
	assert.Contains(t, out.String(), "PASS skill-frontmatter/tuivision")
	assert.Contains(t, out.String(), "checks passed")
	assert.Empty(t, errOut.String())
}

func TestRunChecksFails(t *testing.T) {
	root := checktest.NewPlugin(t)
	require.NoError(t, os.Chmod(filepath.Join(root, "scripts", "build.sh"), 0o644))
	p, out, errOut := newTestPresenter()

	config := NewRunConfig()
	config.Root = root
	config.Parallel = 4

	report, err := runChecks(context.Background(), config, checks.DefaultExpectations(), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errChecksFailed))
	require.NotNil(t, report)
	assert.False(t, report.OK())

	assert.Contains(t, out.String(), "FAIL scripts-executable")
	assert.Contains(t, errOut.String(), "1 of")
	assert.Contains(t, errOut.String(), "scripts-executable (permission_mismatch)")
	assert.Contains(t, errOut.String(), "script not executable: build.sh")
}

func TestRunChecksQuiet(t *testing.T) {
	root := checktest.NewPlugin(t)
	p, out, _ := newTestPresenter()
	p.SetQuiet(true)

	config := NewRunConfig()
	config.Root = root

	_, err := runChecks(context.Background(), config, checks.DefaultExpectations(), p)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunChecksWritesReport(t *testing.T) {
	root := checktest.NewPlugin(t)
	require.NoError(t, os.Remove(filepath.Join(root, "LICENSE")))
	p, _, _ := newTestPresenter()

	config := NewRunConfig()
	config.Root = root
	config.ReportPath = filepath.Join(t.TempDir(), "report.json")

	_, err := runChecks(context.Background(), config, checks.DefaultExpectations(), p)
	require.True(t, errors.Is(err, errChecksFailed))

	data, err := os.ReadFile(config.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"required-files"`)
	assert.Contains(t, string(data), "missing required file: LICENSE")
}

func TestRunChecksInvalidExpectations(t *testing.T) {
	p, _, _ := newTestPresenter()
	exp := checks.DefaultExpectations()
	exp.SkillCount = -1

	config := NewRunConfig()
	config.Root = t.TempDir()

	_, err := runChecks(context.Background(), config, exp, p)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errChecksFailed))
}

func TestListChecks(t *testing.T) {
	root := checktest.NewPlugin(t)
	env, err := checks.NewEnv(root, checks.DefaultExpectations())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, listChecks(context.Background(), &buf, env))

	output := buf.String()
	assert.Contains(t, output, "ID")
	for _, id := range []string{
		checks.IDSkillCount,
		"skill-frontmatter/tuivision",
		checks.IDManifestValid,
		checks.IDManifestSkills,
		checks.IDManifestCommands,
		checks.IDRequiredFiles,
		checks.IDScriptsExecutable,
		checks.IDScriptsCount,
	} {
		assert.Contains(t, output, id)
	}
}

func TestPrintInventory(t *testing.T) {
	root := checktest.NewPlugin(t)
	env, err := checks.NewEnv(root, checks.DefaultExpectations())
	require.NoError(t, err)
	p, pout, _ := newTestPresenter()

	var buf bytes.Buffer
	require.NoError(t, printInventory(&buf, env.Discovery, p))

	output := buf.String()
	assert.Contains(t, output, "tuivision")
	assert.Contains(t, output, "TUI Vision")
	assert.Contains(t, output, "tui-screenshot")
	assert.Contains(t, output, "tui-tester")
	assert.Contains(t, output, "screenshot.sh")
	assert.Contains(t, output, "-rwxr-xr-x")

	for _, section := range []string{"Skills", "Commands", "Agents", "Scripts"} {
		assert.Contains(t, pout.String(), section)
	}
}

func TestPrintInventoryMissingDirs(t *testing.T) {
	root := t.TempDir()
	env, err := checks.NewEnv(root, checks.DefaultExpectations())
	require.NoError(t, err)
	p, pout, _ := newTestPresenter()

	var buf bytes.Buffer
	require.NoError(t, printInventory(&buf, env.Discovery, p))
	assert.Empty(t, buf.String())
	assert.Contains(t, pout.String(), "⚠")
}

func TestGetExpectationsFromViperDefaults(t *testing.T) {
	resetViper(t)
	require.NoError(t, initConfig(t.TempDir(), ""))

	exp, err := getExpectationsFromViper()
	require.NoError(t, err)
	assert.Equal(t, checks.DefaultExpectations(), exp)
}

func TestGetExpectationsFromConfigFile(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	checktest.WriteFile(t, root, ".plugincheck.yaml", `plugin_name: other
skill_count: 2
script_count: 0
required_files:
  - README.md
`, 0o644)

	require.NoError(t, initConfig(root, ""))

	exp, err := getExpectationsFromViper()
	require.NoError(t, err)
	assert.Equal(t, "other", exp.PluginName)
	assert.Equal(t, 2, exp.SkillCount)
	assert.Equal(t, 0, exp.ScriptCount)
	assert.Equal(t, []string{"README.md"}, exp.RequiredFiles)
	assert.Equal(t, checks.DefaultScriptPattern, exp.ScriptPattern)
}

func TestGetExpectationsFromEnv(t *testing.T) {
	resetViper(t)
	t.Setenv("PLUGINCHECK_SKILL_COUNT", "3")
	t.Setenv("PLUGINCHECK_PLUGIN_NAME", "fromenv")

	require.NoError(t, initConfig(t.TempDir(), ""))

	exp, err := getExpectationsFromViper()
	require.NoError(t, err)
	assert.Equal(t, 3, exp.SkillCount)
	assert.Equal(t, "fromenv", exp.PluginName)
}

func TestConfigFileFromPositionalRoot(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	checktest.WriteFile(t, root, ".plugincheck.yaml", "skill_count: 5\nplugin_name: positional\n", 0o644)

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, []string{root}))

	exp, err := getExpectationsFromViper()
	require.NoError(t, err)
	assert.Equal(t, 5, exp.SkillCount)
	assert.Equal(t, "positional", exp.PluginName)
}

func TestInitConfigExplicitFileMissing(t *testing.T) {
	resetViper(t)
	err := initConfig(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestResolveRoot(t *testing.T) {
	resetViper(t)
	viper.Set("root", "/configured")

	assert.Equal(t, "/configured", resolveRoot(nil))
	assert.Equal(t, "/configured", resolveRoot([]string{""}))
	assert.Equal(t, "/given", resolveRoot([]string{"/given"}))
}

func TestWatchChecksRunsUntilCancelled(t *testing.T) {
	root := checktest.NewPlugin(t)
	p, out, _ := newTestPresenter()

	config := NewWatchConfig()
	config.Run.Root = root
	config.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchChecks(ctx, config, checks.DefaultExpectations(), p)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.Contains(t, out.String(), "checks passed")
}
