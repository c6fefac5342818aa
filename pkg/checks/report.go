package checks

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// Result is the outcome of a single check
type Result struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Passed      bool          `json:"passed"`
	Kind        Kind          `json:"kind,omitempty"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Err         error         `json:"-"`
}

// Report is the outcome of one run over a plugin root
type Report struct {
	RunID     string    `json:"run_id"`
	Root      string    `json:"root"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Passed returns the results of the checks that passed
func (r *Report) Passed() []Result {
	return r.filter(true)
}

// Failed returns the results of the checks that failed
func (r *Report) Failed() []Result {
	return r.filter(false)
}

func (r *Report) filter(passed bool) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Passed == passed {
			out = append(out, res)
		}
	}
	return out
}

// Err returns every failure prefixed by its check ID, or nil if all passed
func (r *Report) Err() error {
	var merr *multierror.Error
	for _, res := range r.Failed() {
		cause := res.Err
		if cause == nil {
			cause = errors.New(res.Message)
		}
		merr = multierror.Append(merr, errors.Wrap(cause, res.ID))
	}
	return merr.ErrorOrNil()
}

// WriteJSON writes the report to path, holding a file lock while writing
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	data = append(data, '\n')

	if err := lockedfile.Write(path, bytes.NewReader(data), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write report to %s", path)
	}
	return nil
}
