// Package checks implements the structural conformance checks of a plugin
// package and the runner that executes them.
//
// Every check is independent and read-only: it inspects the filesystem or
// the parsed manifest and returns nil on success or an error describing the
// violation. Failures carry a Kind so callers can tell a missing file from a
// count mismatch, a parse failure or a permission problem.
package checks

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/plugins"
)

// Check IDs
const (
	IDSkillCount        = "skill-count"
	IDSkillFrontmatter  = "skill-frontmatter"
	IDManifestValid     = "manifest-valid"
	IDManifestSkills    = "manifest-skills"
	IDManifestCommands  = "manifest-commands"
	IDRequiredFiles     = "required-files"
	IDScriptsExecutable = "scripts-executable"
	IDScriptsCount      = "scripts-count"
)

// Env is what every check reads from
type Env struct {
	Layout       *plugins.Layout
	Discovery    *plugins.Discovery
	Expectations Expectations
}

// NewEnv builds the check environment for the plugin rooted at root
func NewEnv(root string, exp Expectations) (*Env, error) {
	if err := exp.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid expectations")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve root %s", root)
	}

	layout := plugins.NewLayout(abs)
	discovery, err := plugins.NewDiscovery(layout, plugins.WithScriptPattern(exp.ScriptPattern))
	if err != nil {
		return nil, err
	}

	return &Env{
		Layout:       layout,
		Discovery:    discovery,
		Expectations: exp,
	}, nil
}

// Check is a single pass/fail assertion
type Check struct {
	ID          string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// Suite returns every check for env in run order. The frontmatter check is
// expanded into one check per discovered skill, identified as
// "skill-frontmatter/<dir>". When the skills directory cannot be read no
// frontmatter checks are produced; the skill count check reports it.
func Suite(ctx context.Context, env *Env) []Check {
	suite := []Check{skillCountCheck()}

	skills, err := env.Discovery.DiscoverSkills()
	if err != nil {
		logger.G(ctx).WithError(err).Debug("no skills to check frontmatter for")
	}
	for _, skill := range skills {
		suite = append(suite, skillFrontmatterCheck(skill))
	}

	return append(suite,
		manifestValidCheck(),
		manifestSkillsCheck(),
		manifestCommandsCheck(),
		requiredFilesCheck(),
		scriptsExecutableCheck(),
		scriptsCountCheck(),
	)
}
