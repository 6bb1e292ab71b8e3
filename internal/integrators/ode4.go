package integrators

import "github.com/san-kum/pitchloop/internal/dynamo"

// ODE4 is the classical fixed-step fourth-order Runge-Kutta solver.
// The scratch buffers are reused across steps; an ODE4 must not be
// shared between models.
type ODE4 struct {
	y       dynamo.State
	f       [4]dynamo.State
	scratch dynamo.State

	// ValidateState rejects a step whose combined state is not finite.
	ValidateState bool
}

func NewODE4() *ODE4 {
	return &ODE4{ValidateState: true}
}

// Update advances x from si.T to si.StopTime in one step of si.StepSize.
// Stages are evaluated on private scratch state; x is written once, after
// the final combine. si.Mode is minor while stages run and major again on
// return. If validation is enabled and the result is not finite, x is left
// untouched, si.T is restored and ErrInvalidState is returned.
func (r *ODE4) Update(si *SolverInfo, x *dynamo.State, dis *dynamo.Disabled, dyn dynamo.Deriver) error {
	t := si.T
	tnew := si.StopTime
	h := si.StepSize
	si.Mode = MinorTimeStep

	r.y = *x

	// f0 = f(t, y)
	dyn.Derive(t, &r.y, &r.f[0])
	hold(&r.f[0], dis)

	// f1 = f(t + h/2, y + (h/2)*f0)
	half := 0.5 * h
	r.stage(&r.f[0], half)
	si.T = t + half
	dyn.Derive(si.T, &r.scratch, &r.f[1])
	hold(&r.f[1], dis)

	// f2 = f(t + h/2, y + (h/2)*f1)
	r.stage(&r.f[1], half)
	dyn.Derive(si.T, &r.scratch, &r.f[2])
	hold(&r.f[2], dis)

	// f3 = f(t + h, y + h*f2)
	r.stage(&r.f[2], h)
	si.T = tnew
	dyn.Derive(si.T, &r.scratch, &r.f[3])
	hold(&r.f[3], dis)

	h6 := h / 6.0
	var next dynamo.State
	for i := range next {
		next[i] = r.y[i] + h6*(r.f[0][i]+2*r.f[1][i]+2*r.f[2][i]+r.f[3][i])
	}

	si.Mode = MajorTimeStep
	if r.ValidateState && !next.IsValid() {
		si.T = t
		return dynamo.ErrInvalidState
	}
	*x = next
	return nil
}

// Step is a convenience wrapper that integrates x over [t, t+h] with no
// disabled states and returns the new state.
func (r *ODE4) Step(dyn dynamo.Deriver, x dynamo.State, t, h float64) (dynamo.State, error) {
	si := SolverInfo{T: t, StopTime: t + h, StepSize: h}
	var dis dynamo.Disabled
	err := r.Update(&si, &x, &dis, dyn)
	return x, err
}

func (r *ODE4) stage(f *dynamo.State, scale float64) {
	for i := range r.scratch {
		r.scratch[i] = r.y[i] + scale*f[i]
	}
}

func hold(dx *dynamo.State, dis *dynamo.Disabled) {
	if dis == nil {
		return
	}
	for i, off := range dis {
		if off {
			dx[i] = 0
		}
	}
}
