package checks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/plugincheck/pkg/logger"
)

// Runner executes checks exactly once each and collects their results
type Runner struct {
	parallelism int
	now         func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithParallelism runs up to n checks at the same time. Values below 2 run
// the checks sequentially.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) {
		r.parallelism = n
	}
}

// NewRunner creates a runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		parallelism: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes checks against env. A failing check never stops the others;
// results are reported in the order of checks regardless of parallelism.
func (r *Runner) Run(ctx context.Context, env *Env, checks []Check) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		Root:      env.Layout.Root(),
		StartedAt: r.now(),
		Results:   make([]Result, len(checks)),
	}

	ctx = logger.WithFields(ctx, logrus.Fields{
		"run_id": report.RunID,
		"root":   report.Root,
	})

	if r.parallelism < 2 {
		for i, c := range checks {
			report.Results[i] = r.runOne(ctx, env, c)
		}
		return report
	}

	g := new(errgroup.Group)
	g.SetLimit(r.parallelism)
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			report.Results[i] = r.runOne(ctx, env, c)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

// RunSuite executes the full suite for env
func (r *Runner) RunSuite(ctx context.Context, env *Env) *Report {
	return r.Run(ctx, env, Suite(ctx, env))
}

func (r *Runner) runOne(ctx context.Context, env *Env, c Check) Result {
	log := logger.G(ctx).WithField("check", c.ID)

	start := r.now()
	err := c.Run(ctx, env)
	result := Result{
		ID:          c.ID,
		Description: c.Description,
		Passed:      err == nil,
		Duration:    r.now().Sub(start),
		Err:         err,
	}

	if err != nil {
		result.Message = err.Error()
		if kind, ok := KindOf(err); ok {
			result.Kind = kind
		}
		log.WithError(err).Info("check failed")
		return result
	}

	log.Debug("check passed")
	return result
}
