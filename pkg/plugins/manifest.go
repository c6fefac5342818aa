package plugins

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Manifest is the plugin descriptor stored in .claude-plugin/plugin.json
type Manifest struct {
	Name        string   `json:"name" jsonschema:"required,description=Plugin identifier"`
	Version     string   `json:"version" jsonschema:"required,description=Plugin version"`
	Description string   `json:"description" jsonschema:"required,description=What the plugin provides"`
	Author      Author   `json:"author" jsonschema:"required"`
	Skills      []string `json:"skills,omitempty" jsonschema:"description=Skill directories relative to the plugin root"`
	Commands    []string `json:"commands,omitempty" jsonschema:"description=Command files relative to the plugin root"`

	keys    map[string]struct{}
	invalid map[string]error
}

// FieldError is a manifest field whose value has the wrong type
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

// Unwrap returns the decode error
func (e *FieldError) Unwrap() error { return e.Err }

// Has reports whether key was present in the parsed document
func (m *Manifest) Has(key string) bool {
	_, ok := m.keys[key]
	return ok
}

// Valid reports whether key is absent or decoded without error
func (m *Manifest) Valid(key string) bool {
	_, bad := m.invalid[key]
	return !bad
}

// FieldError returns the decode error of key, or nil
func (m *Manifest) FieldError(key string) *FieldError {
	err, ok := m.invalid[key]
	if !ok {
		return nil
	}
	return &FieldError{Field: key, Err: err}
}

// FieldErrors returns every field that failed to decode, sorted by name
func (m *Manifest) FieldErrors() []*FieldError {
	keys := make([]string, 0, len(m.invalid))
	for k := range m.invalid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]*FieldError, len(keys))
	for i, k := range keys {
		errs[i] = m.FieldError(k)
	}
	return errs
}

// Keys returns the top-level keys of the parsed document in sorted order
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.keys))
	for k := range m.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Author identifies the plugin author. plugin.json carries it either as a
// plain string or as an object.
type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form
func (a *Author) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*a = Author{Name: name}
		return nil
	}

	type author Author
	var obj author
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "author must be a string or an object")
	}
	*a = Author(obj)
	return nil
}

// String returns the author name
func (a Author) String() string { return a.Name }

// JSONSchema describes the two accepted author forms
func (Author) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Plugin author, as a name or an object with name, email and url",
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "object"},
		},
	}
}

// ManifestSchema returns the JSON schema of plugin.json
func ManifestSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&Manifest{})
	s.Title = "plugin.json"
	return s
}
