package plugins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pkg/errors"
)

const (
	skillFileName    = "SKILL.md"
	skillsSubdir     = "skills"
	commandsSubdir   = "commands"
	agentsSubdir     = "agents"
	scriptsSubdir    = "scripts"
	manifestDir      = ".claude-plugin"
	manifestFileName = "plugin.json"
)

// Layout resolves the well-known paths of a plugin package relative to its
// root. Resolution is pure path joining; nothing is checked for existence.
type Layout struct {
	root string
}

// NewLayout creates a layout rooted at root
func NewLayout(root string) *Layout {
	return &Layout{root: filepath.Clean(root)}
}

// Root returns the project root
func (l *Layout) Root() string { return l.root }

// Path joins rel onto the project root
func (l *Layout) Path(rel string) string { return filepath.Join(l.root, rel) }

// SkillsDir returns the skills root
func (l *Layout) SkillsDir() string { return l.Path(skillsSubdir) }

// CommandsDir returns the commands root
func (l *Layout) CommandsDir() string { return l.Path(commandsSubdir) }

// AgentsDir returns the agents root
func (l *Layout) AgentsDir() string { return l.Path(agentsSubdir) }

// ScriptsDir returns the scripts root
func (l *Layout) ScriptsDir() string { return l.Path(scriptsSubdir) }

// ManifestPath returns the path of plugin.json
func (l *Layout) ManifestPath() string {
	return filepath.Join(l.root, manifestDir, manifestFileName)
}

// LoadManifest reads and parses plugin.json. A missing or malformed file is
// returned as an error.
func (l *Layout) LoadManifest() (*Manifest, error) {
	path := l.ManifestPath()
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	m, err := ParseManifest(content)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return m, nil
}

// ParseManifest decodes a plugin.json document. Only a document that is
// not a JSON object fails. A field whose value has the wrong type is left
// at its zero value and recorded in FieldErrors, so callers that do not
// read that field are unaffected.
func ParseManifest(content []byte) (*Manifest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, errors.Wrap(err, "invalid manifest json")
	}
	if fields == nil {
		return nil, errors.New("manifest must be a json object")
	}

	m := &Manifest{keys: make(map[string]struct{}, len(fields))}
	for k := range fields {
		m.keys[k] = struct{}{}
	}

	targets := map[string]any{
		"name":        &m.Name,
		"version":     &m.Version,
		"description": &m.Description,
		"author":      &m.Author,
		"skills":      &m.Skills,
		"commands":    &m.Commands,
	}
	for key, target := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			// json leaves partially decoded values behind
			v := reflect.ValueOf(target).Elem()
			v.Set(reflect.Zero(v.Type()))
			if m.invalid == nil {
				m.invalid = map[string]error{}
			}
			m.invalid[key] = err
		}
	}

	return m, nil
}
