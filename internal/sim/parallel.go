package sim

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pitchloop/internal/control"
)

// Member is one configuration of an ensemble.
type Member struct {
	Name   string
	Config Config
	Loop   control.Loop
}

// Ensemble runs independent models concurrently. Each member gets its
// own Model, so no state is shared between goroutines.
type Ensemble struct {
	members     []Member
	parallelism int
	newMetrics  func() []Metric
	logger      *zap.SugaredLogger
}

func NewEnsemble(members []Member, logger *zap.SugaredLogger) *Ensemble {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Ensemble{
		members:     members,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      logger,
	}
}

// SetParallelism caps the number of concurrently running members.
func (e *Ensemble) SetParallelism(n int) {
	if n > 0 {
		e.parallelism = n
	}
}

// SetMetrics installs a factory producing a fresh metric set per member.
func (e *Ensemble) SetMetrics(newMetrics func() []Metric) { e.newMetrics = newMetrics }

// Run drives every member with opts. Results are indexed like the
// members; a failed member keeps its partial result with Err set, and
// all member failures are combined into the returned error.
func (e *Ensemble) Run(ctx context.Context, opts RunOptions) ([]*Result, error) {
	results := make([]*Result, len(e.members))
	errs := make([]error, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i := range e.members {
		i := i
		g.Go(func() error {
			member := e.members[i]
			memberOpts := opts
			memberOpts.Logger = e.logger.With("member", member.Name)
			if e.newMetrics != nil {
				memberOpts.Metrics = e.newMetrics()
			}

			loop := member.Loop
			m := New(member.Config, &loop)
			if err := m.Initialize(); err != nil {
				errs[i] = errors.Wrapf(err, "member %q", member.Name)
				results[i] = &Result{Metrics: map[string]float64{}, Err: errs[i]}
				return nil
			}

			res, err := Run(ctx, m, memberOpts)
			if err != nil {
				errs[i] = errors.Wrapf(err, "member %q", member.Name)
				// Cancellation is the only error that stops the group.
				if ctx.Err() != nil {
					results[i] = res
					return ctx.Err()
				}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := multierr.Combine(errs...); err != nil {
		e.logger.Infow("ensemble finished with failures", "failed", len(multierr.Errors(err)), "members", len(e.members))
		return results, err
	}
	return results, nil
}
