package sim

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// RunOptions bound a free-running drive of a model. Zero values mean
// unbounded; with both unbounded the run ends only on a fault, a stop
// request or ctx cancellation.
type RunOptions struct {
	MaxSteps int
	StopTime float64
	Record   bool
	Metrics  []Metric
	Logger   *zap.SugaredLogger
}

func (o RunOptions) validate() error {
	if o.MaxSteps < 0 {
		return errors.Errorf("max steps must be non-negative, got %d", o.MaxSteps)
	}
	if math.IsNaN(o.StopTime) || o.StopTime < 0 {
		return errors.Errorf("stop time must be non-negative, got %v", o.StopTime)
	}
	return nil
}

// Run steps an initialized model back to back until its error status is
// set or a stop is requested, the same loop a bare-metal main runs
// without a timer. The model must not be stepped by anyone else meanwhile.
func Run(ctx context.Context, m *Model, opts RunOptions) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	result := &Result{Metrics: make(map[string]float64)}
	if opts.MaxSteps > 0 && opts.Record {
		result.Times = make([]float64, 0, opts.MaxSteps+1)
		result.States = make([]dynamo.State, 0, opts.MaxSteps+1)
		result.Signals = make([]control.Signals, 0, opts.MaxSteps+1)
	}
	for _, mt := range opts.Metrics {
		mt.Reset()
	}

	record := func() {
		if !opts.Record {
			return
		}
		result.Times = append(result.Times, m.Time())
		result.States = append(result.States, m.State())
		result.Signals = append(result.Signals, m.Signals())
	}
	record()

	logger.Debugw("run started", "step_size", m.Timing().StepSize, "max_steps", opts.MaxSteps, "stop_time", opts.StopTime)

	for m.ErrorStatus() == nil && !m.StopRequested() {
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
			finish(result, opts.Metrics)
			return result, result.Err
		default:
		}

		tick := m.Timing().ClockTick0
		m.Step()
		if m.Timing().ClockTick0 == tick {
			break
		}
		result.StepsTaken++
		record()
		for _, mt := range opts.Metrics {
			mt.Observe(m.Time(), m.State(), m.Signals())
		}

		if opts.MaxSteps > 0 && result.StepsTaken >= opts.MaxSteps {
			m.RequestStop()
		}
		// Half a step of slack keeps float rounding from adding a tick.
		if opts.StopTime > 0 && m.Time() >= opts.StopTime-m.Timing().StepSize/2 {
			m.RequestStop()
		}
	}

	finish(result, opts.Metrics)
	if err := m.ErrorStatus(); err != nil {
		logger.Warnw("run stopped on fault", "tick", m.Timing().ClockTick0, "t", m.Time(), "error", err)
		result.Err = err
		return result, err
	}
	logger.Debugw("run finished", "steps", result.StepsTaken, "t", m.Time())
	return result, nil
}

func finish(result *Result, metrics []Metric) {
	for _, mt := range metrics {
		result.Metrics[mt.Name()] = mt.Value()
	}
}
