package metrics

import (
	"math"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// ControlEffort measures how hard the controller drives its actuators:
// the per-tick control output u = P + I + D of each channel, taken in
// magnitude and averaged over the run. Value sums the channel means, so
// a loop that holds both outputs at zero scores 0, and a diverging
// channel drives it to Inf or NaN.
type ControlEffort struct {
	sum     [dynamo.NumChannels]float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(t float64, x dynamo.State, sig control.Signals) {
	for _, ch := range dynamo.Channels {
		c.sum[ch] += math.Abs(sig.Output[ch])
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	var total float64
	for _, ch := range dynamo.Channels {
		total += c.ChannelValue(ch)
	}
	return total
}

// ChannelValue is the mean |u| of one channel.
func (c *ControlEffort) ChannelValue(ch dynamo.Channel) float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum[ch] / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	*c = ControlEffort{}
}
