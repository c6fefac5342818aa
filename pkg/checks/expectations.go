package checks

import "github.com/pkg/errors"

// Expected shape of the tuivision plugin
const (
	DefaultPluginName    = "tuivision"
	DefaultSkillCount    = 1
	DefaultScriptCount   = 4
	DefaultScriptPattern = "*.sh"
)

// DefaultRequiredFiles are the files that must exist directly under the root
var DefaultRequiredFiles = []string{"CLAUDE.md", "PHILOSOPHY.md", "LICENSE", ".gitignore"}

// DefaultManifestFields are the keys plugin.json must contain
var DefaultManifestFields = []string{"name", "version", "description", "author"}

// Expectations holds the fixed cardinalities and names the checks compare
// against
type Expectations struct {
	PluginName     string   `mapstructure:"plugin_name" json:"plugin_name" yaml:"plugin_name"`
	SkillCount     int      `mapstructure:"skill_count" json:"skill_count" yaml:"skill_count"`
	ScriptCount    int      `mapstructure:"script_count" json:"script_count" yaml:"script_count"`
	ScriptPattern  string   `mapstructure:"script_pattern" json:"script_pattern" yaml:"script_pattern"`
	RequiredFiles  []string `mapstructure:"required_files" json:"required_files" yaml:"required_files"`
	ManifestFields []string `mapstructure:"manifest_fields" json:"manifest_fields" yaml:"manifest_fields"`
}

// DefaultExpectations returns the expectations for the tuivision plugin
func DefaultExpectations() Expectations {
	return Expectations{
		PluginName:     DefaultPluginName,
		SkillCount:     DefaultSkillCount,
		ScriptCount:    DefaultScriptCount,
		ScriptPattern:  DefaultScriptPattern,
		RequiredFiles:  append([]string(nil), DefaultRequiredFiles...),
		ManifestFields: append([]string(nil), DefaultManifestFields...),
	}
}

// Validate returns an error if the expectations cannot be checked against
func (e Expectations) Validate() error {
	if e.PluginName == "" {
		return errors.New("plugin name must not be empty")
	}
	if e.SkillCount < 0 {
		return errors.Errorf("skill count cannot be negative: %d", e.SkillCount)
	}
	if e.ScriptCount < 0 {
		return errors.Errorf("script count cannot be negative: %d", e.ScriptCount)
	}
	if e.ScriptPattern == "" {
		return errors.New("script pattern must not be empty")
	}
	return nil
}
