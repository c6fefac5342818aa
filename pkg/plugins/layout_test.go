package plugins

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".claude-plugin")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(content), 0o644))
}

func TestLayoutPaths(t *testing.T) {
	layout := NewLayout("/repo/plugin/")

	assert.Equal(t, "/repo/plugin", layout.Root())
	assert.Equal(t, "/repo/plugin/skills", layout.SkillsDir())
	assert.Equal(t, "/repo/plugin/commands", layout.CommandsDir())
	assert.Equal(t, "/repo/plugin/agents", layout.AgentsDir())
	assert.Equal(t, "/repo/plugin/scripts", layout.ScriptsDir())
	assert.Equal(t, "/repo/plugin/.claude-plugin/plugin.json", layout.ManifestPath())
	assert.Equal(t, "/repo/plugin/commands/run.md", layout.Path("commands/run.md"))
}

func TestLayoutDoesNotRequireExistingRoot(t *testing.T) {
	layout := NewLayout(filepath.Join(t.TempDir(), "missing"))
	assert.NotEmpty(t, layout.SkillsDir())
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{
  "name": "tuivision",
  "version": "0.3.0",
  "description": "Drive terminal UIs",
  "author": "someone",
  "skills": ["./skills/tuivision"],
  "commands": ["./commands/screenshot.md"]
}`)

	m, err := NewLayout(root).LoadManifest()
	require.NoError(t, err)

	assert.Equal(t, "tuivision", m.Name)
	assert.Equal(t, "0.3.0", m.Version)
	assert.Equal(t, "Drive terminal UIs", m.Description)
	assert.Equal(t, "someone", m.Author.String())
	assert.Equal(t, []string{"./skills/tuivision"}, m.Skills)
	assert.Equal(t, []string{"./commands/screenshot.md"}, m.Commands)
	assert.Equal(t, []string{"author", "commands", "description", "name", "skills", "version"}, m.Keys())
	assert.True(t, m.Has("author"))
	assert.False(t, m.Has("license"))
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := NewLayout(t.TempDir()).LoadManifest()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "plugin.json")
}

func TestLoadManifestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{name: tuivision"},
		{name: "array", content: `["name"]`},
		{name: "null", content: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeManifest(t, root, tt.content)

			_, err := NewLayout(root).LoadManifest()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse")
		})
	}
}

func TestParseManifestFieldTypes(t *testing.T) {
	m, err := ParseManifest([]byte(`{
  "name": "tuivision",
  "version": 1,
  "author": 7,
  "skills": ["./skills/a", 2],
  "commands": ["./commands/c.md"]
}`))
	require.NoError(t, err)

	assert.Equal(t, "tuivision", m.Name)
	assert.Equal(t, []string{"./commands/c.md"}, m.Commands)
	assert.True(t, m.Valid("name"))
	assert.True(t, m.Valid("commands"))
	assert.True(t, m.Valid("description"))

	assert.True(t, m.Has("version"))
	assert.False(t, m.Valid("version"))
	assert.Empty(t, m.Version)
	assert.Nil(t, m.Skills)
	assert.Nil(t, m.FieldError("commands"))

	var fields []string
	for _, fe := range m.FieldErrors() {
		fields = append(fields, fe.Field)
		assert.Contains(t, fe.Error(), "invalid "+fe.Field)
	}
	assert.Equal(t, []string{"author", "skills", "version"}, fields)
}

func TestManifestMissingFieldsAreNotPresent(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "tuivision", "version": "1.0.0", "description": "d"}`))
	require.NoError(t, err)
	assert.False(t, m.Has("author"))
	assert.Empty(t, m.Skills)
	assert.Empty(t, m.Commands)
}

func TestAuthorForms(t *testing.T) {
	m, err := ParseManifest([]byte(`{"author": {"name": "Jane", "email": "jane@example.com", "url": "https://example.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, Author{Name: "Jane", Email: "jane@example.com", URL: "https://example.com"}, m.Author)

	m, err = ParseManifest([]byte(`{"author": "Jane"}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane", m.Author.Name)
	assert.Empty(t, m.Author.Email)
}

func TestManifestSchema(t *testing.T) {
	s := ManifestSchema()
	require.NotNil(t, s)

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "plugin.json", decoded["title"])

	required, ok := decoded["required"].([]any)
	require.True(t, ok, "schema should list required fields")
	assert.ElementsMatch(t, []any{"name", "version", "description", "author"}, required)

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "skills")
	assert.Contains(t, props, "commands")
	assert.NotContains(t, props, "keys")
}
