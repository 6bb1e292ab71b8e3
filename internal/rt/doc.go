// Package rt drives a model from a periodic clock, one step per tick.
//
// Every tick dispatches its step on a fresh goroutine, so a step that is
// still running when the next tick arrives overlaps it and is reported by
// the model as an overrun. The scheduler stops at the first fault or stop
// request.
package rt
