package sim

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/integrators"
)

// Model is the execution core: two PID channels advanced by a fixed-step
// ODE4 solver under a major/minor time-step scheduler.
//
// Step is non-reentrant. A Step that starts while another is executing is
// rejected, records ErrOverrun and leaves the state untouched. Accessors
// and Initialize must not run concurrently with Step; ErrorStatus,
// StopRequested and RequestStop are safe from any goroutine.
type Model struct {
	cfg    Config
	loop   control.Loop
	solver *integrators.ODE4
	si     integrators.SolverInfo

	x      dynamo.State
	dis    dynamo.Disabled
	sig    control.Signals
	stage  control.Signals
	timing Timing

	initialized bool
	started     bool

	running       atomic.Bool
	stopRequested atomic.Bool

	statusMu sync.Mutex
	status   error

	observers []Observer
}

// New builds an uninitialized model. A nil loop selects the reference
// channel constants.
func New(cfg Config, loop *control.Loop) *Model {
	if loop == nil {
		loop = control.NewReferenceLoop()
	}
	return &Model{
		cfg:    cfg,
		loop:   *loop,
		solver: integrators.NewODE4(),
	}
}

func (m *Model) AddObserver(o Observer) { m.observers = append(m.observers, o) }

// Initialize resets the continuous state to its initial values, clears
// the timing counters, error status and reentrancy guard, and selects a
// major time step.
func (m *Model) Initialize() error {
	m.initialized = false
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if err := m.loop.Validate(); err != nil {
		return errors.Wrap(err, "initialize")
	}

	h := m.cfg.StepSize
	m.x = m.cfg.InitialState
	m.dis = m.cfg.Disabled
	m.stage = control.Signals{}
	m.timing = Timing{StepSize: h}
	m.si = integrators.SolverInfo{StepSize: h, Mode: integrators.MajorTimeStep}
	m.solver.ValidateState = m.cfg.ValidateState
	m.loop.Outputs(&m.x, &m.sig)

	m.setStatus(nil)
	m.stopRequested.Store(false)
	m.running.Store(false)
	m.started = false
	m.initialized = true
	return nil
}

// Step advances the model by one tick. Faults are reported through
// ErrorStatus; once set, Step does nothing until the next Initialize.
func (m *Model) Step() {
	if !m.running.CompareAndSwap(false, true) {
		m.fail(dynamo.ErrOverrun)
		return
	}
	defer m.running.Store(false)

	if m.ErrorStatus() != nil {
		return
	}
	if !m.initialized {
		m.fail(dynamo.ErrNotInitialized)
		return
	}
	m.started = true

	if m.si.IsMajor() {
		m.si.StopTime = float64(m.timing.ClockTick0+1) * m.timing.StepSize
	}
	m.syncMinorTime()
	m.loop.Outputs(&m.x, &m.sig)

	if !m.si.IsMajor() {
		return
	}

	if err := m.solver.Update(&m.si, &m.x, &m.dis, m); err != nil {
		m.timing.T = m.si.T
		m.fail(&dynamo.SimulationError{Tick: m.timing.ClockTick0, Time: m.timing.T, Wrapped: err})
		return
	}

	m.timing.ClockTick0++
	m.timing.T = m.si.StopTime
	m.timing.ClockTick1++
	m.loop.Outputs(&m.x, &m.sig)

	for _, o := range m.observers {
		o.OnStep(m.timing.T, m.x, m.sig)
	}
}

// Derive is the derivative function evaluated by the solver at every
// stage. The output pass runs on the stage state so the filter signals
// track the intermediate values; published signals are not touched.
func (m *Model) Derive(t float64, x *dynamo.State, dx *dynamo.State) {
	m.syncMinorTime()
	m.loop.Outputs(x, &m.stage)
	m.loop.Derivatives(&m.stage, dx)
}

func (m *Model) syncMinorTime() {
	if m.si.IsMinor() {
		m.timing.T = m.si.T
	}
}

// Terminate releases nothing; the state is simply abandoned.
func (m *Model) Terminate() {}

// SetChannelConstants replaces a channel's constants. It is only
// accepted between Initialize and the first Step.
func (m *Model) SetChannelConstants(ch dynamo.Channel, c control.ChannelConstants) error {
	if !ch.Valid() {
		return errors.Wrapf(dynamo.ErrUnknownChannel, "index %d", int(ch))
	}
	if m.started {
		return errors.Wrapf(dynamo.ErrConstantsFrozen, "channel %s", ch)
	}
	if err := c.Validate(); err != nil {
		return &control.ChannelError{Channel: ch, Err: err}
	}
	m.loop.Channels[ch] = c
	m.loop.Outputs(&m.x, &m.sig)
	return nil
}

func (m *Model) ChannelConstants(ch dynamo.Channel) control.ChannelConstants {
	return m.loop.Channels[ch]
}

func (m *Model) State() dynamo.State             { return m.x }
func (m *Model) Disabled() dynamo.Disabled       { return m.dis }
func (m *Model) Signals() control.Signals        { return m.sig }
func (m *Model) Time() float64                   { return m.timing.T }
func (m *Model) Timing() Timing                  { return m.timing }
func (m *Model) Mode() integrators.TimeStep      { return m.si.Mode }
func (m *Model) SolverInfo() integrators.SolverInfo { return m.si }

// RequestStop asks the driver to stop issuing ticks.
func (m *Model) RequestStop()        { m.stopRequested.Store(true) }
func (m *Model) StopRequested() bool { return m.stopRequested.Load() }

// ErrorStatus returns the sticky fault, or nil.
func (m *Model) ErrorStatus() error {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status
}

// fail records err unless a fault is already recorded.
func (m *Model) fail(err error) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	if m.status == nil {
		m.status = err
	}
}

func (m *Model) setStatus(err error) {
	m.statusMu.Lock()
	m.status = err
	m.statusMu.Unlock()
}
