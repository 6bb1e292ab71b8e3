package dynamo

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Continuous state layout. Each channel owns a filter state and an
// integrator state; the two pairs never alias.
const (
	FilterA = iota
	IntegratorA
	FilterB
	IntegratorB

	NumStates
)

// State is the continuous state vector advanced by the integrator.
type State [NumStates]float64

// IsValid reports whether every element is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Channel returns the filter and integrator states of ch.
func (s State) Channel(ch Channel) (filter, integrator float64) {
	return s[ch.FilterIndex()], s[ch.IntegratorIndex()]
}

func (s State) String() string {
	return fmt.Sprintf("[fa=%.6g ia=%.6g fb=%.6g ib=%.6g]",
		s[FilterA], s[IntegratorA], s[FilterB], s[IntegratorB])
}

// Disabled marks continuous states the integrator must hold constant.
type Disabled [NumStates]bool

// Deriver evaluates dx/dt at time t for the state x. Implementations
// write every element of dx and must not retain either pointer.
type Deriver interface {
	Derive(t float64, x *State, dx *State)
}

// Channel identifies one of the two independent control channels.
type Channel int

const (
	ChannelA Channel = iota
	ChannelB

	NumChannels = 2
)

// Channels lists every channel in state order.
var Channels = [NumChannels]Channel{ChannelA, ChannelB}

func (c Channel) FilterIndex() int     { return int(c) * 2 }
func (c Channel) IntegratorIndex() int { return int(c)*2 + 1 }

func (c Channel) Valid() bool { return c == ChannelA || c == ChannelB }

func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "a"
	case ChannelB:
		return "b"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// ParseChannel maps "a"/"b" (any case) to a Channel.
func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a":
		return ChannelA, nil
	case "b":
		return ChannelB, nil
	}
	return 0, errors.Wrapf(ErrUnknownChannel, "parse %q", name)
}
