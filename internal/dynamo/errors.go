package dynamo

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain errors for the execution core.
var (
	// ErrOverrun indicates a step was triggered before the previous one completed.
	ErrOverrun = errors.New("dynamo: overrun")

	// ErrInvalidStepSize indicates a non-finite or non-positive fixed step size.
	ErrInvalidStepSize = errors.New("dynamo: step size must be finite and positive")

	// ErrInvalidState indicates the integrated state diverged (NaN or Inf detected).
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNotInitialized indicates a step on a model that was never initialized.
	ErrNotInitialized = errors.New("dynamo: model not initialized")

	// ErrConstantsFrozen indicates a gain write after the first step.
	ErrConstantsFrozen = errors.New("dynamo: channel constants are frozen after the first step")

	// ErrUnknownChannel indicates a channel name or index outside {a, b}.
	ErrUnknownChannel = errors.New("dynamo: unknown channel")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")
)

// SimulationError wraps an error with the tick and time it was raised at.
type SimulationError struct {
	Tick    uint32
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
