package plugins

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/jingkaihe/plugincheck/pkg/frontmatter"
)

// DefaultScriptPattern matches the shell scripts shipped under scripts/
const DefaultScriptPattern = "*.sh"

const markdownPattern = "**/*.md"

// Discovery enumerates the skills, scripts, commands and agents of a plugin
// package. Every listing is sorted lexicographically by name.
type Discovery struct {
	layout        *Layout
	scriptPattern string
	scriptGlob    glob.Glob
}

// DiscoveryOption configures a Discovery instance
type DiscoveryOption func(*Discovery) error

// WithScriptPattern sets the file name pattern that identifies scripts
func WithScriptPattern(pattern string) DiscoveryOption {
	return func(d *Discovery) error {
		g, err := glob.Compile(pattern)
		if err != nil {
			return errors.Wrapf(err, "invalid script pattern %q", pattern)
		}
		d.scriptPattern = pattern
		d.scriptGlob = g
		return nil
	}
}

// NewDiscovery creates a discovery instance for the given layout
func NewDiscovery(layout *Layout, opts ...DiscoveryOption) (*Discovery, error) {
	if layout == nil {
		return nil, errors.New("layout is required")
	}

	d := &Discovery{layout: layout}
	if err := WithScriptPattern(DefaultScriptPattern)(d); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Layout returns the layout being discovered
func (d *Discovery) Layout() *Layout { return d.layout }

// ScriptPattern returns the script file name pattern
func (d *Discovery) ScriptPattern() string { return d.scriptPattern }

// DiscoverSkills returns the subdirectories of the skills root that contain
// a SKILL.md file. A missing skills root is returned as an error wrapping
// fs.ErrNotExist.
func (d *Discovery) DiscoverSkills() ([]*Skill, error) {
	dir := d.layout.SkillsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skills directory %s", dir)
	}

	var skills []*Skill
	// os.ReadDir returns entries sorted by file name
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		if _, err := os.Stat(filepath.Join(entryPath, skillFileName)); err != nil {
			continue
		}

		skills = append(skills, &Skill{
			Name:      entry.Name(),
			Directory: entryPath,
		})
	}

	return skills, nil
}

// LoadSkill parses the SKILL.md of a discovered skill
func (d *Discovery) LoadSkill(skill *Skill) (*SkillDetails, error) {
	path := skill.SkillFile()
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	doc, err := frontmatter.Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid frontmatter in %s", path)
	}

	details := &SkillDetails{
		Skill:     skill,
		HasHeader: doc.HasHeader(),
		Body:      doc.Body,
		Title:     firstHeading(content),
	}

	if doc.HasHeader() {
		if err := doc.Decode(&details.Metadata); err != nil {
			return nil, errors.Wrapf(err, "invalid skill metadata in %s", path)
		}
	}

	return details, nil
}

// DiscoverScripts returns the files directly under the scripts root whose
// name matches the script pattern, hidden files included. Directories are
// skipped and a symlink whose target is missing has mode 0. A missing
// scripts root is returned as an error wrapping fs.ErrNotExist.
func (d *Discovery) DiscoverScripts() ([]*Script, error) {
	dir := d.layout.ScriptsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scripts directory %s", dir)
	}

	var scripts []*Script
	for _, entry := range entries {
		name := entry.Name()
		if !d.scriptGlob.Match(name) {
			continue
		}

		path := filepath.Join(dir, name)
		var mode fs.FileMode
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			mode = info.Mode().Perm()
		case entry.Type()&fs.ModeSymlink != 0:
			// dangling symlink, nothing to execute
		default:
			return nil, errors.Wrapf(err, "failed to stat script %s", path)
		}

		scripts = append(scripts, &Script{
			Name: name,
			Path: path,
			Mode: mode,
		})
	}

	return scripts, nil
}

// DiscoverCommands returns the markdown files under the commands root
func (d *Discovery) DiscoverCommands() ([]*Entry, error) {
	return discoverMarkdown(d.layout.CommandsDir(), EntryTypeCommand)
}

// DiscoverAgents returns the markdown files under the agents root
func (d *Discovery) DiscoverAgents() ([]*Entry, error) {
	return discoverMarkdown(d.layout.AgentsDir(), EntryTypeAgent)
}

func discoverMarkdown(dir string, entryType EntryType) ([]*Entry, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s directory %s", entryType, dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), markdownPattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob %s", dir)
	}
	sort.Strings(matches)

	var entries []*Entry
	for _, match := range matches {
		path := filepath.Join(dir, filepath.FromSlash(match))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		entries = append(entries, &Entry{
			Name: strings.TrimSuffix(match, ".md"),
			Path: path,
			Type: entryType,
		})
	}

	return entries, nil
}

// firstHeading returns the text of the first markdown heading in source.
// The meta extension consumes the frontmatter block so its closing
// delimiter is not read as a setext heading underline.
func firstHeading(source []byte) string {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	pctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(inlineText(heading, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return title
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(inlineText(c, source))
	}
	return b.String()
}
