// Package frontmatter splits markdown documents into an optional YAML header
// delimited by "---" marker lines and the remaining body.
package frontmatter

import (
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Delimiter marks the start and end of a frontmatter header
const Delimiter = "---"

// Document is a markdown document split into header and body.
// Header is nil when the document carries no frontmatter. A header that is
// present but empty is a non-nil, empty map.
type Document struct {
	Header map[string]any
	Body   string
}

// HasHeader reports whether the document has a frontmatter header
func (d *Document) HasHeader() bool {
	return d.Header != nil
}

// Has reports whether the header contains key
func (d *Document) Has(key string) bool {
	if d.Header == nil {
		return false
	}
	_, ok := d.Header[key]
	return ok
}

// Decode decodes the header into out using its yaml struct tags
func (d *Document) Decode(out any) error {
	if d.Header == nil {
		return errors.New("document has no frontmatter")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Result:  out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create frontmatter decoder")
	}

	if err := decoder.Decode(d.Header); err != nil {
		return errors.Wrap(err, "failed to decode frontmatter")
	}
	return nil
}

// Parse splits text into frontmatter and body.
//
// Only the first two delimiters are significant: the text is split on the
// delimiter into at most three parts, so a literal "---" inside the header
// region ends the header early.
func Parse(text string) (*Document, error) {
	if !strings.HasPrefix(text, Delimiter) {
		return &Document{Body: text}, nil
	}

	parts := strings.SplitN(text, Delimiter, 3)
	if len(parts) < 3 {
		return &Document{Body: text}, nil
	}

	header := map[string]any{}
	if err := yaml.Unmarshal([]byte(parts[1]), &header); err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter")
	}
	if header == nil {
		header = map[string]any{}
	}

	return &Document{
		Header: header,
		Body:   trimLineBreak(parts[2]),
	}, nil
}

// ParseFile reads the file at path and parses it
func ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	doc, err := Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid frontmatter in %s", path)
	}
	return doc, nil
}

// trimLineBreak drops the line break that terminates the closing delimiter
func trimLineBreak(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}
