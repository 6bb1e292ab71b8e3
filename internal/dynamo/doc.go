// Package dynamo provides the primitives shared by the execution core.
//
//   - [State]: the fixed four-element continuous state vector
//   - [Disabled]: per-state hold flags honored by the integrator
//   - [Deriver]: the single capability the solver needs from a model
//   - [Channel]: index of one of the two control channels
//
// State layout is channel-major: filter then integrator for channel A,
// followed by the same pair for channel B.
//
// # Errors
//
// Faults are reported with the sentinel values in errors.go, optionally
// wrapped in a [SimulationError] carrying the tick and time they were
// raised at. Use errors.Is to classify them.
package dynamo
