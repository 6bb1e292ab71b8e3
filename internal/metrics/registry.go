package metrics

import "github.com/san-kum/pitchloop/internal/sim"

type Metric = sim.Metric

var (
	_ Metric = (*ControlEffort)(nil)
	_ Metric = (*Stability)(nil)
	_ Metric = (*PeakSignal)(nil)
)

// Lookup returns a fresh metric by name.
func Lookup(name string, threshold float64) (Metric, bool) {
	switch name {
	case "control_effort":
		return NewControlEffort(), true
	case "stability":
		return NewStability(threshold), true
	case "peak_signal":
		return NewPeakSignal(), true
	}
	return nil, false
}

// Names lists the metrics Lookup knows.
func Names() []string {
	return []string{"control_effort", "peak_signal", "stability"}
}
