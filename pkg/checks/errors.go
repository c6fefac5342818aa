package checks

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Kind classifies why a check failed
type Kind string

// Failure kinds
const (
	// KindStructuralMismatch means an expected count or content differs from the actual one
	KindStructuralMismatch Kind = "structural_mismatch"
	// KindMissingPath means an expected file or directory is absent
	KindMissingPath Kind = "missing_path"
	// KindParseFailure means the manifest or a frontmatter header is malformed
	KindParseFailure Kind = "parse_failure"
	// KindPermissionMismatch means a script lacks the execute bit
	KindPermissionMismatch Kind = "permission_mismatch"
)

// Failure is a check violation. Path names the offending file, directory
// or manifest entry when there is one.
type Failure struct {
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

// Unwrap returns the underlying cause
func (f *Failure) Unwrap() error { return f.Err }

func mismatch(format string, args ...any) *Failure {
	return &Failure{Kind: KindStructuralMismatch, Message: fmt.Sprintf(format, args...)}
}

func missing(path, format string, args ...any) *Failure {
	return &Failure{Kind: KindMissingPath, Path: path, Message: fmt.Sprintf(format, args...)}
}

func notExecutable(path, format string, args ...any) *Failure {
	return &Failure{Kind: KindPermissionMismatch, Path: path, Message: fmt.Sprintf(format, args...)}
}

// readFailure classifies an error returned while loading path. Absent
// files are missing paths, anything else is a parse failure carrying the
// original error.
func readFailure(path string, err error) *Failure {
	if errors.Is(err, fs.ErrNotExist) {
		return &Failure{Kind: KindMissingPath, Path: path, Message: "missing " + path, Err: err}
	}
	return &Failure{Kind: KindParseFailure, Path: path, Message: "failed to load " + path, Err: err}
}

// KindOf returns the kind of the first Failure found in err's chain
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// combine merges the violations found by a single check
func combine(failures []error) error {
	switch len(failures) {
	case 0:
		return nil
	case 1:
		return failures[0]
	}

	merr := multierror.Append(nil, failures...)
	merr.ErrorFormat = listFormat
	return merr
}

func listFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
