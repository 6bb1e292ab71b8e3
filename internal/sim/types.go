package sim

import (
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// DefaultStepSize is the fixed base-rate step of the reference controller.
const DefaultStepSize = 0.2

// Config holds the values fixed for the lifetime of an initialized model.
type Config struct {
	StepSize      float64
	InitialState  dynamo.State
	Disabled      dynamo.Disabled
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		StepSize:      DefaultStepSize,
		ValidateState: true,
	}
}

// Validate fails fast on a step size that would poison the integrator.
func (c Config) Validate() error {
	if math.IsNaN(c.StepSize) || math.IsInf(c.StepSize, 0) || c.StepSize <= 0 {
		return errors.Wrapf(dynamo.ErrInvalidStepSize, "got %v", c.StepSize)
	}
	if !c.InitialState.IsValid() {
		return errors.Wrap(dynamo.ErrInvalidState, "initial state")
	}
	return nil
}

// Timing is the scheduler's bookkeeping. T is always ClockTick0 * StepSize
// after a completed major step.
type Timing struct {
	ClockTick0 uint32
	ClockTick1 uint32
	StepSize   float64
	T          float64
}

// Observer is notified after every committed major step.
type Observer interface {
	OnStep(t float64, x dynamo.State, sig control.Signals)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(t float64, x dynamo.State, sig control.Signals)

func (f ObserverFunc) OnStep(t float64, x dynamo.State, sig control.Signals) { f(t, x, sig) }

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(t float64, x dynamo.State, sig control.Signals)
	Value() float64
	Reset()
}

// Result is the recorded trace of a run.
type Result struct {
	Times      []float64
	States     []dynamo.State
	Signals    []control.Signals
	Metrics    map[string]float64
	StepsTaken int
	Err        error
}
