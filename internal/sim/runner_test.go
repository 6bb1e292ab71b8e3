package sim

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
)

// tickCounter counts observed ticks.
type tickCounter struct{ n int }

func (c *tickCounter) Name() string                                   { return "ticks" }
func (c *tickCounter) Observe(float64, dynamo.State, control.Signals) { c.n++ }
func (c *tickCounter) Value() float64                                 { return float64(c.n) }
func (c *tickCounter) Reset()                                         { c.n = 0 }

func rampLoop(gain float64) control.Loop {
	loop := control.NewReferenceLoop()
	loop.Channels[dynamo.ChannelA].IntegralGain = gain
	return *loop
}

var _ = Describe("Run", func() {
	var (
		m   *Model
		ctx context.Context
	)

	BeforeEach(func() {
		loop := rampLoop(-1)
		m = New(DefaultConfig(), &loop)
		Expect(m.Initialize()).To(Succeed())
		ctx = context.Background()
	})

	It("stops after the requested number of steps", func() {
		res, err := Run(ctx, m, RunOptions{MaxSteps: 5, Record: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(5))
		Expect(res.Times).To(HaveLen(6))
		Expect(res.States[5][dynamo.IntegratorA]).To(BeNumerically("~", -1.0, 1e-12))
		Expect(m.StopRequested()).To(BeTrue())
	})

	It("stops at the stop time", func() {
		res, err := Run(ctx, m, RunOptions{StopTime: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(15))
		Expect(res.Times).To(BeEmpty())
		Expect(m.Time()).To(BeNumerically("~", 3.0, 1e-12))
	})

	It("does nothing once a stop was requested", func() {
		m.RequestStop()
		res, err := Run(ctx, m, RunOptions{MaxSteps: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(BeZero())
	})

	It("returns the context error when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := Run(cctx, m, RunOptions{})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.StepsTaken).To(BeZero())
	})

	It("feeds metrics once per tick", func() {
		counter := &tickCounter{n: 42}
		res, err := Run(ctx, m, RunOptions{MaxSteps: 8, Metrics: []Metric{counter}})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("ticks", 8.0))
	})

	It("reports a fault and logs it", func() {
		core, logs := observer.New(zapcore.WarnLevel)
		m.running.Store(true)
		m.Step()
		m.running.Store(false)

		res, err := Run(ctx, m, RunOptions{MaxSteps: 3, Logger: zap.New(core).Sugar()})
		Expect(errors.Is(err, dynamo.ErrOverrun)).To(BeTrue())
		Expect(res.Err).To(Equal(err))
		Expect(res.StepsTaken).To(BeZero())
		Expect(logs.FilterMessage("run stopped on fault").Len()).To(Equal(1))
	})

	It("rejects negative bounds", func() {
		_, err := Run(ctx, m, RunOptions{MaxSteps: -1})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every member independently", func() {
		members := []Member{
			{Name: "down", Config: DefaultConfig(), Loop: rampLoop(-1)},
			{Name: "up", Config: DefaultConfig(), Loop: rampLoop(2)},
		}
		e := NewEnsemble(members, nil)
		e.SetParallelism(2)
		e.SetMetrics(func() []Metric { return []Metric{&tickCounter{}} })

		results, err := e.Run(context.Background(), RunOptions{MaxSteps: 5, Record: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].States[5][dynamo.IntegratorA]).To(BeNumerically("~", -1.0, 1e-12))
		Expect(results[1].States[5][dynamo.IntegratorA]).To(BeNumerically("~", 2.0, 1e-12))
		Expect(results[1].Metrics).To(HaveKeyWithValue("ticks", 5.0))
	})

	It("combines member failures", func() {
		bad := DefaultConfig()
		bad.StepSize = 0
		diverging := control.NewReferenceLoop()
		diverging.Channels[dynamo.ChannelB].DerivativeGain = 1

		members := []Member{
			{Name: "ok", Config: DefaultConfig(), Loop: rampLoop(1)},
			{Name: "bad-step", Config: bad, Loop: rampLoop(1)},
			{Name: "diverging", Config: DefaultConfig(), Loop: *diverging},
		}
		results, err := NewEnsemble(members, zap.NewNop().Sugar()).Run(context.Background(), RunOptions{MaxSteps: 500})
		Expect(err).To(HaveOccurred())

		errs := multierr.Errors(err)
		Expect(errs).To(HaveLen(2))
		Expect(errors.Is(errs[0], dynamo.ErrInvalidStepSize)).To(BeTrue())
		Expect(errors.Is(errs[1], dynamo.ErrInvalidState)).To(BeTrue())

		Expect(results[0].Err).To(BeNil())
		Expect(results[0].StepsTaken).To(Equal(500))
		Expect(results[1].Err).To(HaveOccurred())
	})
})
