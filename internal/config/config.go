package config

import (
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/rt"
	"github.com/san-kum/pitchloop/internal/sim"
)

const (
	DefaultStepSize  = sim.DefaultStepSize
	DefaultStopTime  = 10.0
	DefaultSpeedup   = 1.0
	DefaultThreshold = 100.0
)

type Config struct {
	StepSize      float64         `yaml:"step_size"`
	StopTime      float64         `yaml:"stop_time"`
	ValidateState bool            `yaml:"validate_state"`
	InitState     InitStateConfig `yaml:"initial_state"`
	Channels      ChannelsConfig  `yaml:"channels"`
	Realtime      RealtimeConfig  `yaml:"realtime"`
	Stability     float64         `yaml:"stability_threshold"`
}

type InitStateConfig struct {
	FilterA     float64 `yaml:"filter_a"`
	IntegratorA float64 `yaml:"integrator_a"`
	FilterB     float64 `yaml:"filter_b"`
	IntegratorB float64 `yaml:"integrator_b"`
}

type ChannelsConfig struct {
	A ChannelConfig `yaml:"a"`
	B ChannelConfig `yaml:"b"`
}

// ChannelConfig gives a channel's constants directly, or through Gains
// when present, in which case the direct values are ignored.
type ChannelConfig struct {
	control.ChannelConstants `yaml:",inline"`

	Gains             *control.Gains `yaml:"gains,omitempty"`
	DisableFilter     bool           `yaml:"disable_filter,omitempty"`
	DisableIntegrator bool           `yaml:"disable_integrator,omitempty"`
}

// RealtimeConfig paces the realtime driver. A non-zero Period wins over
// Speedup.
type RealtimeConfig struct {
	Period  time.Duration `yaml:"period,omitempty"`
	Speedup float64       `yaml:"speedup"`
}

func DefaultChannel() ChannelConfig {
	return ChannelConfig{ChannelConstants: control.DefaultConstants()}
}

func DefaultConfig() *Config {
	return &Config{
		StepSize:      DefaultStepSize,
		StopTime:      DefaultStopTime,
		ValidateState: true,
		Channels: ChannelsConfig{
			A: DefaultChannel(),
			B: DefaultChannel(),
		},
		Realtime:  RealtimeConfig{Speedup: DefaultSpeedup},
		Stability: DefaultThreshold,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cfg := *c
	for _, cc := range []*ChannelConfig{&cfg.Channels.A, &cfg.Channels.B} {
		if cc.Gains != nil {
			g := *cc.Gains
			cc.Gains = &g
		}
	}
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on anything Initialize would reject, plus the
// driver settings.
func (c *Config) Validate() error {
	if math.IsNaN(c.StepSize) || math.IsInf(c.StepSize, 0) || c.StepSize <= 0 {
		return errors.Wrapf(dynamo.ErrInvalidStepSize, "step_size %v", c.StepSize)
	}
	if math.IsNaN(c.StopTime) || c.StopTime < 0 {
		return errors.Errorf("stop_time must be non-negative, got %v", c.StopTime)
	}
	if !c.InitialState().IsValid() {
		return errors.Wrap(dynamo.ErrInvalidState, "initial_state")
	}
	if _, err := c.Loop(); err != nil {
		return err
	}
	if c.Realtime.Period < 0 {
		return errors.Errorf("realtime.period must be non-negative, got %v", c.Realtime.Period)
	}
	if c.Realtime.Period == 0 && c.Realtime.Speedup <= 0 {
		return errors.Errorf("realtime.speedup must be positive, got %v", c.Realtime.Speedup)
	}
	return nil
}

func (c *Config) Channel(ch dynamo.Channel) *ChannelConfig {
	if ch == dynamo.ChannelB {
		return &c.Channels.B
	}
	return &c.Channels.A
}

// Constants resolves the channel's constants, deriving them from the
// gains block when one is given.
func (cc ChannelConfig) Constants() control.ChannelConstants {
	if cc.Gains != nil {
		return cc.Gains.Constants()
	}
	return cc.ChannelConstants
}

// Loop builds the control loop and validates it.
func (c *Config) Loop() (*control.Loop, error) {
	loop := control.NewLoop(c.Channels.A.Constants(), c.Channels.B.Constants())
	if err := loop.Validate(); err != nil {
		return nil, err
	}
	return loop, nil
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State{
		dynamo.FilterA:     c.InitState.FilterA,
		dynamo.IntegratorA: c.InitState.IntegratorA,
		dynamo.FilterB:     c.InitState.FilterB,
		dynamo.IntegratorB: c.InitState.IntegratorB,
	}
}

func (c *Config) Disabled() dynamo.Disabled {
	var dis dynamo.Disabled
	for _, ch := range dynamo.Channels {
		cc := c.Channel(ch)
		dis[ch.FilterIndex()] = cc.DisableFilter
		dis[ch.IntegratorIndex()] = cc.DisableIntegrator
	}
	return dis
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		StepSize:      c.StepSize,
		InitialState:  c.InitialState(),
		Disabled:      c.Disabled(),
		ValidateState: c.ValidateState,
	}
}

// NewModel builds an initialized model from the config.
func (c *Config) NewModel() (*sim.Model, error) {
	loop, err := c.Loop()
	if err != nil {
		return nil, err
	}
	m := sim.New(c.SimConfig(), loop)
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	return m, nil
}

// Steps is the number of ticks covering StopTime, or 0 when unbounded.
func (c *Config) Steps() int {
	if c.StopTime <= 0 {
		return 0
	}
	return int(math.Round(c.StopTime / c.StepSize))
}

// TickPeriod is the wall-clock time between realtime ticks.
func (c *Config) TickPeriod() (time.Duration, error) {
	if c.Realtime.Period > 0 {
		return c.Realtime.Period, nil
	}
	return rt.PeriodFor(c.StepSize, c.Realtime.Speedup)
}

// SetParam applies a dotted override such as "a.integral_gain" or
// "step_size". A gains block on the channel is dropped so the override
// takes effect.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "step_size":
		c.StepSize = value
		return nil
	case "stop_time":
		c.StopTime = value
		return nil
	}

	chName, param, ok := strings.Cut(name, ".")
	if !ok {
		return errors.Errorf("unknown parameter %q", name)
	}
	ch, err := dynamo.ParseChannel(chName)
	if err != nil {
		return err
	}
	cc := c.Channel(ch)
	if cc.Gains != nil {
		cc.ChannelConstants = cc.Gains.Constants()
		cc.Gains = nil
	}
	return cc.ChannelConstants.SetParam(param, value)
}
