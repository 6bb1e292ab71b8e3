package config

import (
	"sort"

	"github.com/san-kum/pitchloop/internal/control"
)

// Presets are named starting points for the two channels.
var Presets = map[string]*Config{
	// The reference controller: all gains zero, the state stays at rest.
	"reference": DefaultConfig(),
	"ramp": withChannels(
		ChannelConfig{ChannelConstants: control.ChannelConstants{IntegralGain: -1, FilterCoefficient: control.DefaultFilterCoefficient}},
		DefaultChannel(),
	),
	"damped": withChannels(
		ChannelConfig{ChannelConstants: control.ChannelConstants{DerivativeGain: 1, IntegralGain: 0.1, FilterCoefficient: 2}},
		ChannelConfig{ChannelConstants: control.ChannelConstants{DerivativeGain: -0.5, IntegralGain: 0.05, FilterCoefficient: 2}},
	),
	"asymmetric": withChannels(
		ChannelConfig{Gains: &control.Gains{Kp: 2, Ki: 0.5, Kd: 0.8, N: 4, Setpoint: 1}},
		ChannelConfig{Gains: &control.Gains{Kp: 1, Ki: 0.2, Kd: 0.1, N: 1, Setpoint: 0.5, Measurement: 1}},
	),
}

func withChannels(a, b ChannelConfig) *Config {
	cfg := DefaultConfig()
	cfg.Channels = ChannelsConfig{A: a, B: b}
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
