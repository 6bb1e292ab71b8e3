package control

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/pitchloop/internal/dynamo"
)

// DefaultFilterCoefficient is the filtered-derivative gain N of the
// reference pitch controller.
const DefaultFilterCoefficient = 664.682083275505

// ChannelConstants are the invariant inputs of one PID channel. The
// error-dependent terms are pre-multiplied: DerivativeGain is Kd*e,
// IntegralGain is Ki*e and Proportional is Kp*e.
type ChannelConstants struct {
	DerivativeGain    float64 `yaml:"derivative_gain" json:"derivative_gain"`
	IntegralGain      float64 `yaml:"integral_gain" json:"integral_gain"`
	FilterCoefficient float64 `yaml:"filter_coefficient" json:"filter_coefficient"`
	Proportional      float64 `yaml:"proportional" json:"proportional"`
}

// DefaultConstants returns the reference channel: all gains zero and the
// reference filter coefficient.
func DefaultConstants() ChannelConstants {
	return ChannelConstants{FilterCoefficient: DefaultFilterCoefficient}
}

// FilterSignal is the filter-coefficient gain output for the given
// filter state: (DerivativeGain - filter) * N.
func (c ChannelConstants) FilterSignal(filter float64) float64 {
	return (c.DerivativeGain - filter) * c.FilterCoefficient
}

// Output is the channel's control output u = P + I + D.
func (c ChannelConstants) Output(filter, integrator float64) float64 {
	return c.Proportional + integrator + c.FilterSignal(filter)
}

// Validate rejects non-finite constants and a negative filter coefficient.
func (c ChannelConstants) Validate() error {
	for name, v := range c.Params() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(dynamo.ErrParameterBounds, "%s is not finite", name)
		}
	}
	if c.FilterCoefficient < 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "filter_coefficient %g is negative", c.FilterCoefficient)
	}
	return nil
}

// Params returns tunable parameters by name.
func (c ChannelConstants) Params() map[string]float64 {
	return map[string]float64{
		"derivative_gain":    c.DerivativeGain,
		"integral_gain":      c.IntegralGain,
		"filter_coefficient": c.FilterCoefficient,
		"proportional":       c.Proportional,
	}
}

// ParamNames lists the names accepted by SetParam in sorted order.
func ParamNames() []string {
	names := make([]string, 0, 4)
	for name := range DefaultConstants().Params() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam adjusts a single constant by name.
func (c *ChannelConstants) SetParam(name string, value float64) error {
	switch name {
	case "derivative_gain":
		c.DerivativeGain = value
	case "integral_gain":
		c.IntegralGain = value
	case "filter_coefficient":
		c.FilterCoefficient = value
	case "proportional":
		c.Proportional = value
	default:
		return errors.Errorf("unknown channel parameter %q", name)
	}
	return nil
}

// Gains describes a channel by its PID tuning and a constant error
// source; Constants folds them into the invariant channel inputs.
type Gains struct {
	Kp          float64 `yaml:"kp"`
	Ki          float64 `yaml:"ki"`
	Kd          float64 `yaml:"kd"`
	N           float64 `yaml:"n"`
	Setpoint    float64 `yaml:"setpoint"`
	Measurement float64 `yaml:"measurement"`
}

// TrackingError is the constant error seen by the channel.
func (g Gains) TrackingError() float64 {
	return g.Setpoint - g.Measurement
}

func (g Gains) Constants() ChannelConstants {
	e := g.TrackingError()
	n := g.N
	if n == 0 {
		n = DefaultFilterCoefficient
	}
	return ChannelConstants{
		DerivativeGain:    g.Kd * e,
		IntegralGain:      g.Ki * e,
		FilterCoefficient: n,
		Proportional:      g.Kp * e,
	}
}
