// Package control provides the two-channel PID law with filtered
// derivative.
//
// Each channel is described by [ChannelConstants]. The filter state is
// driven by
//
//	FilterCoefficient = (DerivativeGain - Filter) * N
//
// and the integrator state by the constant IntegralGain. [Loop.Outputs]
// computes the signals from a state vector and [Loop.Derivatives] turns
// them into a derivative vector; together they form the derivative
// function the solver evaluates at every stage.
//
//	loop := control.NewLoop(a, b)
//	loop.Outputs(&x, &sig)
//	loop.Derivatives(&sig, &dx)
//
// Constants can also be derived from PID tunings with [Gains.Constants].
package control
