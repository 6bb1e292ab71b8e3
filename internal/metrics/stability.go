package metrics

import (
	"math"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// Stability measures how well a run keeps both PID channels bounded. A
// channel leaves the band on a tick when its filter state (the smoothed
// derivative estimate) or its integrator (the accumulated correction)
// exceeds threshold in magnitude or is no longer finite. Integrator
// wind-up and a filter coefficient outside the solver's stability region
// both show up here.
//
// Value is the fraction of ticks on which every channel stayed inside;
// 1 means the run never left the band.
type Stability struct {
	threshold float64
	samples   int
	// ticks with any channel outside the band
	violations int
	channel    [dynamo.NumChannels]int
	firstExit  float64
	exited     bool
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) outside(v float64) bool {
	return math.IsNaN(v) || math.Abs(v) > s.threshold
}

func (s *Stability) Observe(t float64, x dynamo.State, sig control.Signals) {
	s.samples++
	violated := false
	for _, ch := range dynamo.Channels {
		filter, integrator := x.Channel(ch)
		if s.outside(filter) || s.outside(integrator) {
			s.channel[ch]++
			violated = true
		}
	}
	if !violated {
		return
	}
	s.violations++
	if !s.exited {
		s.exited = true
		s.firstExit = t
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// ChannelValue is Value restricted to one channel.
func (s *Stability) ChannelValue(ch dynamo.Channel) float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.channel[ch])/float64(s.samples)
}

// FirstExit reports the time of the first tick outside the band.
func (s *Stability) FirstExit() (float64, bool) {
	return s.firstExit, s.exited
}

func (s *Stability) Reset() {
	*s = Stability{threshold: s.threshold}
}
