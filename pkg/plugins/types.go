// Package plugins models a plugin package on disk: its layout, its
// plugin.json manifest, and the skills, commands, agents and scripts it
// ships.
package plugins

import (
	"io/fs"
	"path/filepath"
)

// EntryType represents the kind of a plugin entry
type EntryType string

// Entry types
const (
	EntryTypeSkill   EntryType = "skill"
	EntryTypeCommand EntryType = "command"
	EntryTypeAgent   EntryType = "agent"
	EntryTypeScript  EntryType = "script"
)

// SkillMetadata is the frontmatter of a SKILL.md file
type SkillMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Skill is a directory under the skills root that contains a SKILL.md file
type Skill struct {
	Name      string // Directory name
	Directory string
}

// SkillFile returns the path of the skill's SKILL.md
func (s *Skill) SkillFile() string {
	return filepath.Join(s.Directory, skillFileName)
}

// SkillDetails is a skill together with its parsed SKILL.md
type SkillDetails struct {
	*Skill
	Metadata  SkillMetadata
	HasHeader bool
	Title     string // First heading of the body, if any
	Body      string
}

// Script is a file under the scripts root matching the script pattern
type Script struct {
	Name string
	Path string
	Mode fs.FileMode
}

// Executable reports whether any execute permission bit is set
func (s *Script) Executable() bool {
	return s.Mode&0o111 != 0
}

// Entry is a markdown file under the commands or agents root
type Entry struct {
	Name string // Path relative to its root, without the .md suffix
	Path string
	Type EntryType
}
