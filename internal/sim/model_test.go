package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/integrators"
)

func stepN(m *Model, n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

var _ = Describe("Model", func() {
	var m *Model

	BeforeEach(func() {
		m = New(DefaultConfig(), nil)
		Expect(m.Initialize()).To(Succeed())
	})

	Describe("Initialize", func() {
		It("starts from a zero state in a major step", func() {
			Expect(m.State()).To(Equal(dynamo.State{}))
			Expect(m.Timing()).To(Equal(Timing{StepSize: DefaultStepSize}))
			Expect(m.Mode()).To(Equal(integrators.MajorTimeStep))
			Expect(m.ErrorStatus()).To(BeNil())
			Expect(m.StopRequested()).To(BeFalse())
		})

		DescribeTable("rejects a bad step size",
			func(h float64) {
				cfg := DefaultConfig()
				cfg.StepSize = h
				err := New(cfg, nil).Initialize()
				Expect(errors.Is(err, dynamo.ErrInvalidStepSize)).To(BeTrue())
			},
			Entry("zero", 0.0),
			Entry("negative", -0.2),
			Entry("NaN", math.NaN()),
			Entry("infinite", math.Inf(1)),
		)

		It("rejects invalid channel constants", func() {
			loop := control.NewReferenceLoop()
			loop.Channels[dynamo.ChannelB].FilterCoefficient = -1
			err := New(DefaultConfig(), loop).Initialize()
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("uses the configured initial state", func() {
			cfg := DefaultConfig()
			cfg.InitialState = dynamo.State{0, 1, 0, 2}
			m = New(cfg, nil)
			Expect(m.Initialize()).To(Succeed())
			Expect(m.State()).To(Equal(dynamo.State{0, 1, 0, 2}))
		})

		It("resets a model that has already run", func() {
			stepN(m, 3)
			m.RequestStop()
			Expect(m.Initialize()).To(Succeed())
			Expect(m.Timing().ClockTick0).To(BeZero())
			Expect(m.Time()).To(BeZero())
			Expect(m.StopRequested()).To(BeFalse())
		})
	})

	Describe("Step", func() {
		It("advances the ticks and time by whole steps", func() {
			stepN(m, 7)
			tm := m.Timing()
			Expect(tm.ClockTick0).To(Equal(uint32(7)))
			Expect(tm.ClockTick1).To(Equal(uint32(7)))
			Expect(m.Time()).To(Equal(float64(7) * m.Timing().StepSize))
			Expect(m.Mode()).To(Equal(integrators.MajorTimeStep))
		})

		It("keeps the zero state fixed with zero gains", func() {
			stepN(m, 50)
			Expect(m.State()).To(Equal(dynamo.State{}))
			Expect(m.Signals()).To(Equal(control.Signals{}))
			Expect(m.ErrorStatus()).To(BeNil())
		})

		It("integrates a constant integral gain exactly", func() {
			c := control.DefaultConstants()
			c.IntegralGain = -1
			Expect(m.SetChannelConstants(dynamo.ChannelA, c)).To(Succeed())

			stepN(m, 5)
			x := m.State()
			Expect(x[dynamo.IntegratorA]).To(BeNumerically("~", -1.0, 1e-12))
			Expect(x[dynamo.FilterA]).To(BeZero())
			Expect(x[dynamo.IntegratorB]).To(BeZero())
		})

		It("tracks the filtered derivative response", func() {
			c := control.ChannelConstants{DerivativeGain: 1, FilterCoefficient: 1}
			Expect(m.SetChannelConstants(dynamo.ChannelB, c)).To(Succeed())

			stepN(m, 10)
			want := 1 - math.Exp(-m.Time())
			Expect(m.State()[dynamo.FilterB]).To(BeNumerically("~", want, 1e-5))
			Expect(m.Signals().FilterCoefficient[dynamo.ChannelB]).To(BeNumerically("~", 1-want, 1e-5))
		})

		DescribeTable("keeps the channels independent",
			func(perturbed, watched dynamo.Channel) {
				trajectory := func(p control.ChannelConstants, init float64) [][4]float64 {
					cfg := DefaultConfig()
					cfg.InitialState[perturbed.FilterIndex()] = init
					m := New(cfg, nil)
					Expect(m.Initialize()).To(Succeed())
					Expect(m.SetChannelConstants(watched, control.ChannelConstants{
						DerivativeGain: 0.7, IntegralGain: -0.3, FilterCoefficient: 1.5, Proportional: 0.2,
					})).To(Succeed())
					Expect(m.SetChannelConstants(perturbed, p)).To(Succeed())

					var out [][4]float64
					m.AddObserver(ObserverFunc(func(_ float64, x dynamo.State, sig control.Signals) {
						filter, integrator := x.Channel(watched)
						out = append(out, [4]float64{filter, integrator, sig.FilterCoefficient[watched], sig.Output[watched]})
					}))
					stepN(m, 40)
					Expect(m.ErrorStatus()).To(BeNil())
					return out
				}

				quiet := trajectory(control.DefaultConstants(), 0)
				busy := trajectory(control.ChannelConstants{DerivativeGain: 3, IntegralGain: 2, FilterCoefficient: 4, Proportional: -1}, 0.8)
				Expect(quiet).To(HaveLen(40))
				Expect(busy).To(Equal(quiet))
				Expect(quiet[39][1]).To(BeNumerically("~", -0.3*40*DefaultStepSize, 1e-9))
			},
			Entry("channel b unaffected by channel a", dynamo.ChannelA, dynamo.ChannelB),
			Entry("channel a unaffected by channel b", dynamo.ChannelB, dynamo.ChannelA),
		)

		It("fails when stepped before Initialize", func() {
			m = New(DefaultConfig(), nil)
			m.Step()
			Expect(errors.Is(m.ErrorStatus(), dynamo.ErrNotInitialized)).To(BeTrue())
		})

		It("synchronizes time without integrating in a minor step", func() {
			stepN(m, 2)
			before := m.State()
			m.si.Mode = integrators.MinorTimeStep
			m.si.T = 0.5

			m.Step()
			Expect(m.Time()).To(Equal(0.5))
			Expect(m.Timing().ClockTick0).To(Equal(uint32(2)))
			Expect(m.State()).To(Equal(before))
		})

		It("notifies observers after each committed step", func() {
			var times []float64
			m.AddObserver(ObserverFunc(func(t float64, _ dynamo.State, _ control.Signals) {
				times = append(times, t)
			}))
			stepN(m, 3)
			Expect(times).To(HaveLen(3))
			Expect(times[2]).To(BeNumerically("~", 0.6, 1e-15))
		})
	})

	It("leaves state and status alone on Terminate", func() {
		stepN(m, 3)
		x := m.State()
		m.Terminate()
		Expect(m.State()).To(Equal(x))
		Expect(m.Timing().ClockTick0).To(Equal(uint32(3)))
		Expect(m.ErrorStatus()).To(BeNil())
	})

	Describe("overrun", func() {
		It("rejects an overlapping step and stays faulted", func() {
			c := control.DefaultConstants()
			c.IntegralGain = 1
			Expect(m.SetChannelConstants(dynamo.ChannelA, c)).To(Succeed())
			stepN(m, 2)
			before, timing := m.State(), m.Timing()

			m.running.Store(true)
			m.Step()
			m.running.Store(false)

			Expect(errors.Is(m.ErrorStatus(), dynamo.ErrOverrun)).To(BeTrue())
			Expect(m.State()).To(Equal(before))

			stepN(m, 3)
			Expect(m.State()).To(Equal(before))
			Expect(m.Timing()).To(Equal(timing))
			Expect(errors.Is(m.ErrorStatus(), dynamo.ErrOverrun)).To(BeTrue())
		})

		It("is cleared by Initialize", func() {
			m.running.Store(true)
			m.Step()
			Expect(m.ErrorStatus()).To(HaveOccurred())

			Expect(m.Initialize()).To(Succeed())
			Expect(m.ErrorStatus()).To(BeNil())
			m.Step()
			Expect(m.Timing().ClockTick0).To(Equal(uint32(1)))
		})
	})

	Describe("SetChannelConstants", func() {
		It("is frozen after the first step", func() {
			m.Step()
			err := m.SetChannelConstants(dynamo.ChannelA, control.DefaultConstants())
			Expect(errors.Is(err, dynamo.ErrConstantsFrozen)).To(BeTrue())
		})

		It("rejects an unknown channel", func() {
			err := m.SetChannelConstants(dynamo.Channel(5), control.DefaultConstants())
			Expect(errors.Is(err, dynamo.ErrUnknownChannel)).To(BeTrue())
		})

		It("refreshes the published signals", func() {
			c := control.ChannelConstants{DerivativeGain: 0.5, FilterCoefficient: 4}
			Expect(m.SetChannelConstants(dynamo.ChannelA, c)).To(Succeed())
			Expect(m.Signals().FilterCoefficient[dynamo.ChannelA]).To(Equal(2.0))
			Expect(m.ChannelConstants(dynamo.ChannelA)).To(Equal(c))
		})
	})

	Describe("state validation", func() {
		var c control.ChannelConstants

		BeforeEach(func() {
			c = control.DefaultConstants()
			c.DerivativeGain = 1
		})

		It("faults instead of committing a diverged state", func() {
			Expect(m.SetChannelConstants(dynamo.ChannelA, c)).To(Succeed())
			for i := 0; i < 500 && m.ErrorStatus() == nil; i++ {
				m.Step()
			}
			err := m.ErrorStatus()
			Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Tick).To(Equal(m.Timing().ClockTick0))
			Expect(m.State().IsValid()).To(BeTrue())
			Expect(m.Time()).To(Equal(float64(m.Timing().ClockTick0) * DefaultStepSize))
		})

		It("commits anything when disabled", func() {
			cfg := DefaultConfig()
			cfg.ValidateState = false
			m = New(cfg, nil)
			Expect(m.Initialize()).To(Succeed())
			Expect(m.SetChannelConstants(dynamo.ChannelA, c)).To(Succeed())
			stepN(m, 500)
			Expect(m.ErrorStatus()).To(BeNil())
			Expect(m.State().IsValid()).To(BeFalse())
		})
	})

	It("holds disabled states", func() {
		cfg := DefaultConfig()
		cfg.Disabled[dynamo.IntegratorB] = true
		cfg.InitialState[dynamo.IntegratorB] = 3
		loop := control.NewReferenceLoop()
		loop.Channels[dynamo.ChannelB].IntegralGain = 1
		m = New(cfg, loop)
		Expect(m.Initialize()).To(Succeed())

		stepN(m, 4)
		Expect(m.State()[dynamo.IntegratorB]).To(Equal(3.0))
		Expect(m.Disabled()[dynamo.IntegratorB]).To(BeTrue())
	})
})
