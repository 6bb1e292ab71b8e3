package dynamo

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"zeros", State{}, true},
		{"normal", State{1.0, 2.0, 3.0, -4.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{0, 0, math.Inf(1)}, false},
		{"with -Inf", State{0, 0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Channel(t *testing.T) {
	s := State{1, 2, 3, 4}

	f, i := s.Channel(ChannelA)
	if f != 1 || i != 2 {
		t.Errorf("channel a = (%v, %v), want (1, 2)", f, i)
	}
	f, i = s.Channel(ChannelB)
	if f != 3 || i != 4 {
		t.Errorf("channel b = (%v, %v), want (3, 4)", f, i)
	}
}

func TestChannelIndices(t *testing.T) {
	if ChannelA.FilterIndex() != FilterA || ChannelA.IntegratorIndex() != IntegratorA {
		t.Error("channel a indices do not match state layout")
	}
	if ChannelB.FilterIndex() != FilterB || ChannelB.IntegratorIndex() != IntegratorB {
		t.Error("channel b indices do not match state layout")
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"a", ChannelA, false},
		{"B", ChannelB, false},
		{" b ", ChannelB, false},
		{"c", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownChannel) {
				t.Errorf("ParseChannel(%q) error = %v, want ErrUnknownChannel", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseChannel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Tick: 150, Time: 30.0, Wrapped: ErrOverrun}
	expected := "tick 150 (t=30.0000): dynamo: overrun"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrOverrun) {
		t.Error("SimulationError does not unwrap to ErrOverrun")
	}
}
