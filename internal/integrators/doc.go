// Package integrators provides the fixed-step ODE4 solver that advances
// the continuous state of a model.
//
// [ODE4.Update] drives a [dynamo.Deriver] through the four classical
// Runge-Kutta stages and reports the stage times through [SolverInfo]:
//
//	si := integrators.SolverInfo{T: t, StopTime: t + h, StepSize: h}
//	err := solver.Update(&si, &x, &disabled, model)
//
// The derivative function is evaluated at every stage on the stage's
// intermediate state, so any model output that depends on state must be
// recomputed inside Derive.
package integrators
