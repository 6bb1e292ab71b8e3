package integrators

import "fmt"

// TimeStep is the solver phase. Model outputs computed during a minor
// step belong to an RK stage and must not be sampled as final values.
type TimeStep int

const (
	MajorTimeStep TimeStep = iota
	MinorTimeStep
)

func (ts TimeStep) String() string {
	switch ts {
	case MajorTimeStep:
		return "major"
	case MinorTimeStep:
		return "minor"
	}
	return fmt.Sprintf("timestep(%d)", int(ts))
}

// SolverInfo is the solver's view of time for the step in progress.
type SolverInfo struct {
	T        float64
	StopTime float64
	StepSize float64
	Mode     TimeStep
}

func (si *SolverInfo) IsMajor() bool { return si.Mode == MajorTimeStep }
func (si *SolverInfo) IsMinor() bool { return si.Mode == MinorTimeStep }
