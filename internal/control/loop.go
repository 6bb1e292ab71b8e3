package control

import "github.com/san-kum/pitchloop/internal/dynamo"

// Signals are the block outputs recomputed on every tick and at every
// solver stage. They are never part of the continuous state.
type Signals struct {
	FilterCoefficient [dynamo.NumChannels]float64
	Output            [dynamo.NumChannels]float64
}

// Loop holds the two independent PID channels.
type Loop struct {
	Channels [dynamo.NumChannels]ChannelConstants
}

func NewLoop(a, b ChannelConstants) *Loop {
	return &Loop{Channels: [dynamo.NumChannels]ChannelConstants{a, b}}
}

// NewReferenceLoop returns a loop with both channels at DefaultConstants.
func NewReferenceLoop() *Loop {
	return NewLoop(DefaultConstants(), DefaultConstants())
}

// Outputs recomputes every channel's signals from the state x.
func (l *Loop) Outputs(x *dynamo.State, sig *Signals) {
	for _, ch := range dynamo.Channels {
		filter, integrator := x.Channel(ch)
		c := &l.Channels[ch]
		sig.FilterCoefficient[ch] = c.FilterSignal(filter)
		sig.Output[ch] = c.Proportional + integrator + sig.FilterCoefficient[ch]
	}
}

// Derivatives maps the current signals to dx: each filter integrates its
// filter-coefficient signal and each integrator integrates its gain.
func (l *Loop) Derivatives(sig *Signals, dx *dynamo.State) {
	for _, ch := range dynamo.Channels {
		dx[ch.FilterIndex()] = sig.FilterCoefficient[ch]
		dx[ch.IntegratorIndex()] = l.Channels[ch].IntegralGain
	}
}

// Validate checks both channels.
func (l *Loop) Validate() error {
	for _, ch := range dynamo.Channels {
		if err := l.Channels[ch].Validate(); err != nil {
			return &ChannelError{Channel: ch, Err: err}
		}
	}
	return nil
}

// ChannelError attributes a constants error to a channel.
type ChannelError struct {
	Channel dynamo.Channel
	Err     error
}

func (e *ChannelError) Error() string {
	return "channel " + e.Channel.String() + ": " + e.Err.Error()
}

func (e *ChannelError) Unwrap() error { return e.Err }
