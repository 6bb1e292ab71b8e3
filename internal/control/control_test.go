package control

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/san-kum/pitchloop/internal/dynamo"
)

func TestFilterSignal(t *testing.T) {
	tests := []struct {
		name   string
		c      ChannelConstants
		filter float64
		want   float64
	}{
		{"reference zero", DefaultConstants(), 0, 0},
		{"gain minus state", ChannelConstants{DerivativeGain: 2, FilterCoefficient: 10}, 0.5, 15},
		{"state above gain", ChannelConstants{DerivativeGain: 1, FilterCoefficient: 4}, 3, -8},
		{"reference coefficient", ChannelConstants{DerivativeGain: 1, FilterCoefficient: DefaultFilterCoefficient}, 0, DefaultFilterCoefficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.FilterSignal(tt.filter); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FilterSignal(%v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestLoopOutputsAndDerivatives(t *testing.T) {
	loop := NewLoop(
		ChannelConstants{DerivativeGain: 1, IntegralGain: -1, FilterCoefficient: 2, Proportional: 0.5},
		ChannelConstants{DerivativeGain: -3, IntegralGain: 4, FilterCoefficient: 1},
	)
	x := dynamo.State{0.25, 10, -1, 7}

	var sig Signals
	loop.Outputs(&x, &sig)

	if sig.FilterCoefficient[dynamo.ChannelA] != 1.5 {
		t.Errorf("filter coefficient a = %v, want 1.5", sig.FilterCoefficient[dynamo.ChannelA])
	}
	if sig.FilterCoefficient[dynamo.ChannelB] != -2 {
		t.Errorf("filter coefficient b = %v, want -2", sig.FilterCoefficient[dynamo.ChannelB])
	}
	if sig.Output[dynamo.ChannelA] != 0.5+10+1.5 {
		t.Errorf("output a = %v, want 12", sig.Output[dynamo.ChannelA])
	}
	if sig.Output[dynamo.ChannelB] != 7-2 {
		t.Errorf("output b = %v, want 5", sig.Output[dynamo.ChannelB])
	}

	var dx dynamo.State
	loop.Derivatives(&sig, &dx)
	want := dynamo.State{1.5, -1, -2, 4}
	if dx != want {
		t.Errorf("derivatives = %v, want %v", dx, want)
	}
}

func TestLoopChannelsIndependent(t *testing.T) {
	base := NewReferenceLoop()
	perturbed := NewReferenceLoop()
	perturbed.Channels[dynamo.ChannelA] = ChannelConstants{DerivativeGain: 9, IntegralGain: 3, FilterCoefficient: 1}

	xBase := dynamo.State{0, 0, 0.5, 2}
	xPert := dynamo.State{4, 1, 0.5, 2}

	var s1, s2 Signals
	var d1, d2 dynamo.State
	base.Outputs(&xBase, &s1)
	base.Derivatives(&s1, &d1)
	perturbed.Outputs(&xPert, &s2)
	perturbed.Derivatives(&s2, &d2)

	if s1.FilterCoefficient[dynamo.ChannelB] != s2.FilterCoefficient[dynamo.ChannelB] {
		t.Error("channel b signal depends on channel a")
	}
	if d1[dynamo.FilterB] != d2[dynamo.FilterB] || d1[dynamo.IntegratorB] != d2[dynamo.IntegratorB] {
		t.Error("channel b derivatives depend on channel a")
	}
}

func TestGainsConstants(t *testing.T) {
	g := Gains{Kp: 2, Ki: 0.5, Kd: 0.1, Setpoint: 3, Measurement: 1}
	c := g.Constants()

	if g.TrackingError() != 2 {
		t.Fatalf("error = %v, want 2", g.TrackingError())
	}
	if c.Proportional != 4 || c.IntegralGain != 1 || math.Abs(c.DerivativeGain-0.2) > 1e-12 {
		t.Errorf("unexpected constants: %+v", c)
	}
	if c.FilterCoefficient != DefaultFilterCoefficient {
		t.Errorf("filter coefficient = %v, want default", c.FilterCoefficient)
	}

	g.N = 100
	if g.Constants().FilterCoefficient != 100 {
		t.Error("explicit N not used")
	}
}

func TestSetParam(t *testing.T) {
	c := DefaultConstants()
	for _, name := range ParamNames() {
		if err := c.SetParam(name, 1.25); err != nil {
			t.Fatalf("SetParam(%s): %v", name, err)
		}
		if c.Params()[name] != 1.25 {
			t.Errorf("%s not applied", name)
		}
	}
	if err := c.SetParam("kp", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       ChannelConstants
		wantErr bool
	}{
		{"reference", DefaultConstants(), false},
		{"negative integral gain", ChannelConstants{IntegralGain: -1, FilterCoefficient: 1}, false},
		{"nan gain", ChannelConstants{DerivativeGain: math.NaN()}, true},
		{"inf coefficient", ChannelConstants{FilterCoefficient: math.Inf(1)}, true},
		{"negative coefficient", ChannelConstants{FilterCoefficient: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("error %v is not ErrParameterBounds", err)
			}
		})
	}
}

func TestLoopValidateNamesChannel(t *testing.T) {
	loop := NewReferenceLoop()
	loop.Channels[dynamo.ChannelB].IntegralGain = math.NaN()

	err := loop.Validate()
	var chErr *ChannelError
	if !errors.As(err, &chErr) {
		t.Fatalf("expected ChannelError, got %v", err)
	}
	if chErr.Channel != dynamo.ChannelB {
		t.Errorf("error attributed to channel %v", chErr.Channel)
	}
}
