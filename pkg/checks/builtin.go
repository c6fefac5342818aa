package checks

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/frontmatter"
	"github.com/jingkaihe/plugincheck/pkg/plugins"
)

const manifestRelPath = ".claude-plugin/plugin.json"

func skillCountCheck() Check {
	return Check{
		ID:          IDSkillCount,
		Description: "Total skill count matches the expected value",
		Run: func(_ context.Context, env *Env) error {
			want := env.Expectations.SkillCount
			skills, err := env.Discovery.DiscoverSkills()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return missing("skills", "expected %d skills, skills/ directory not found", want)
				}
				return err
			}

			if len(skills) != want {
				names := make([]string, len(skills))
				for i, s := range skills {
					names[i] = s.Name
				}
				return mismatch("expected %d skills, found %d: %s", want, len(skills), formatNames(names))
			}
			return nil
		},
	}
}

func skillFrontmatterCheck(skill *plugins.Skill) Check {
	return Check{
		ID:          IDSkillFrontmatter + "/" + skill.Name,
		Description: "SKILL.md of " + skill.Name + " has frontmatter with a description",
		Run: func(_ context.Context, _ *Env) error {
			rel := skill.Name + "/SKILL.md"
			doc, err := frontmatter.ParseFile(skill.SkillFile())
			if err != nil {
				return readFailure(rel, err)
			}
			if !doc.HasHeader() {
				return &Failure{Kind: KindStructuralMismatch, Path: rel, Message: rel + " has no frontmatter"}
			}
			if !doc.Has("description") {
				return &Failure{Kind: KindStructuralMismatch, Path: rel, Message: rel + " frontmatter missing 'description'"}
			}
			return nil
		},
	}
}

func manifestValidCheck() Check {
	return Check{
		ID:          IDManifestValid,
		Description: "plugin.json is valid JSON with the required fields",
		Run: func(_ context.Context, env *Env) error {
			m, err := loadManifest(env)
			if err != nil {
				return err
			}

			var failures []error
			for _, field := range env.Expectations.ManifestFields {
				if !m.Has(field) {
					failures = append(failures, &Failure{
						Kind:    KindStructuralMismatch,
						Path:    manifestRelPath,
						Message: "plugin.json missing required field: " + field,
					})
				}
			}

			for _, fe := range m.FieldErrors() {
				failures = append(failures, fieldFailure(fe))
			}

			if want := env.Expectations.PluginName; m.Has("name") && m.Valid("name") && m.Name != want {
				failures = append(failures, mismatch("plugin.json name is %q, expected %q", m.Name, want))
			}

			return combine(failures)
		},
	}
}

func manifestSkillsCheck() Check {
	return Check{
		ID:          IDManifestSkills,
		Description: "Every skill listed in plugin.json exists on disk",
		Run: func(_ context.Context, env *Env) error {
			m, err := loadManifest(env)
			if err != nil {
				return err
			}

			if fe := m.FieldError("skills"); fe != nil {
				return fieldFailure(fe)
			}

			var failures []error
			for _, skillPath := range m.Skills {
				resolved := env.Layout.Path(skillPath)
				info, err := os.Stat(resolved)
				if err != nil || !info.IsDir() {
					failures = append(failures, missing(skillPath, "skill dir not found: %s", skillPath))
					continue
				}
				if _, err := os.Stat(filepath.Join(resolved, "SKILL.md")); err != nil {
					failures = append(failures, missing(skillPath, "missing SKILL.md in %s", skillPath))
				}
			}

			return combine(failures)
		},
	}
}

func manifestCommandsCheck() Check {
	return Check{
		ID:          IDManifestCommands,
		Description: "Every command listed in plugin.json exists on disk",
		Run: func(_ context.Context, env *Env) error {
			m, err := loadManifest(env)
			if err != nil {
				return err
			}

			if fe := m.FieldError("commands"); fe != nil {
				return fieldFailure(fe)
			}

			var failures []error
			for _, cmdPath := range m.Commands {
				if _, err := os.Stat(env.Layout.Path(cmdPath)); err != nil {
					failures = append(failures, missing(cmdPath, "command not found: %s", cmdPath))
				}
			}

			return combine(failures)
		},
	}
}

func requiredFilesCheck() Check {
	return Check{
		ID:          IDRequiredFiles,
		Description: "All required root-level files exist",
		Run: func(_ context.Context, env *Env) error {
			var failures []error
			for _, name := range env.Expectations.RequiredFiles {
				if _, err := os.Stat(env.Layout.Path(name)); err != nil {
					failures = append(failures, missing(name, "missing required file: %s", name))
				}
			}
			return combine(failures)
		},
	}
}

func scriptsExecutableCheck() Check {
	return Check{
		ID:          IDScriptsExecutable,
		Description: "All shell scripts are executable",
		Run: func(_ context.Context, env *Env) error {
			scripts, err := env.Discovery.DiscoverScripts()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}

			var failures []error
			for _, script := range scripts {
				if !script.Executable() {
					failures = append(failures, notExecutable(script.Name, "script not executable: %s", script.Name))
				}
			}
			return combine(failures)
		},
	}
}

func scriptsCountCheck() Check {
	return Check{
		ID:          IDScriptsCount,
		Description: "Expected number of scripts",
		Run: func(_ context.Context, env *Env) error {
			want := env.Expectations.ScriptCount
			scripts, err := env.Discovery.DiscoverScripts()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return missing("scripts", "expected scripts/ directory")
				}
				return err
			}

			if len(scripts) != want {
				names := make([]string, len(scripts))
				for i, s := range scripts {
					names[i] = s.Name
				}
				return mismatch("expected %d scripts, found %d: %s", want, len(scripts), formatNames(names))
			}
			return nil
		},
	}
}

// loadManifest loads plugin.json and converts load errors into failures
func loadManifest(env *Env) (*plugins.Manifest, error) {
	m, err := env.Layout.LoadManifest()
	if err != nil {
		return nil, readFailure(manifestRelPath, err)
	}
	return m, nil
}

// fieldFailure reports a manifest field with a value of the wrong type
func fieldFailure(fe *plugins.FieldError) *Failure {
	return &Failure{
		Kind:    KindParseFailure,
		Path:    manifestRelPath,
		Message: "plugin.json field '" + fe.Field + "' has the wrong type",
		Err:     fe.Err,
	}
}

func formatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
