package metrics

import (
	"math"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// PeakSignal tracks the largest filter-coefficient magnitude seen on any
// channel, the quantity that saturates an actuator first.
type PeakSignal struct {
	name string
	peak float64
}

func NewPeakSignal() *PeakSignal {
	return &PeakSignal{name: "peak_signal"}
}

func (p *PeakSignal) Name() string { return p.name }

func (p *PeakSignal) Observe(t float64, x dynamo.State, sig control.Signals) {
	for _, v := range sig.FilterCoefficient {
		p.peak = math.Max(p.peak, math.Abs(v))
	}
}

func (p *PeakSignal) Value() float64 { return p.peak }

func (p *PeakSignal) Reset() { p.peak = 0 }
