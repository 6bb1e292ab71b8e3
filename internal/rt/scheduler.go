package rt

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Stepper is the part of a model the scheduler needs. Step must be safe
// to call while a previous Step is still running; sim.Model rejects the
// overlapping call and records an overrun.
type Stepper interface {
	Step()
	ErrorStatus() error
	StopRequested() bool
}

type Option func(*Scheduler)

// WithClock replaces the wall clock, typically with clock.NewMock in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

type Scheduler struct {
	model  Stepper
	period time.Duration
	clock  clock.Clock
	logger *zap.SugaredLogger

	ticks atomic.Uint64

	mu       sync.Mutex
	running  bool
	stopping bool
	stop     chan struct{}
	done     chan struct{}
	err      error

	activeBackgroundWorkers sync.WaitGroup
	steps                   sync.WaitGroup
}

func NewScheduler(model Stepper, period time.Duration, logger *zap.SugaredLogger, opts ...Option) (*Scheduler, error) {
	if model == nil {
		return nil, errors.New("scheduler needs a model")
	}
	if period <= 0 {
		return nil, errors.Errorf("period must be positive, got %v", period)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Scheduler{
		model:  model,
		period: period,
		clock:  clock.New(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PeriodFor converts a step size in seconds to a tick period, scaled by
// speedup (2 runs twice as fast as real time).
func PeriodFor(stepSize, speedup float64) (time.Duration, error) {
	if stepSize <= 0 || speedup <= 0 {
		return 0, errors.Errorf("step size %v and speedup %v must be positive", stepSize, speedup)
	}
	period := time.Duration(math.Round(stepSize / speedup * float64(time.Second)))
	if period <= 0 {
		return 0, errors.Errorf("period for step size %v at speedup %v rounds to zero", stepSize, speedup)
	}
	return period, nil
}

// Start arms the ticker and returns once the tick loop is running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}

	ticker := s.clock.Ticker(s.period)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.err = nil
	s.running = true
	s.stopping = false
	s.logger.Infow("realtime scheduler started", "period", s.period)

	waitCh := make(chan struct{})
	s.activeBackgroundWorkers.Add(1)
	go func() {
		defer s.activeBackgroundWorkers.Done()
		close(waitCh)

		err := s.loop(ctx, ticker)
		ticker.Stop()
		s.steps.Wait()
		if err == nil {
			err = s.model.ErrorStatus()
		}
		if err != nil {
			s.logger.Warnw("realtime scheduler stopped on fault", "ticks", s.ticks.Load(), "error", err)
		} else {
			s.logger.Infow("realtime scheduler stopped", "ticks", s.ticks.Load())
		}

		s.mu.Lock()
		s.err = err
		s.running = false
		s.mu.Unlock()
		close(s.done)
	}()
	<-waitCh
	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker *clock.Ticker) error {
	stepped := make(chan struct{}, 1)
	for {
		if err := s.model.ErrorStatus(); err != nil {
			return err
		}
		if s.model.StopRequested() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-stepped:
		case <-ticker.C:
			if s.model.ErrorStatus() != nil || s.model.StopRequested() {
				continue
			}
			s.ticks.Inc()
			s.steps.Add(1)
			go func() {
				defer s.steps.Done()
				s.model.Step()
				select {
				case stepped <- struct{}{}:
				default:
				}
			}()
		}
	}
}

// Stop ends the tick loop and waits for the step in flight, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running && !s.stopping {
		s.stopping = true
		close(s.stop)
	}
	s.mu.Unlock()
	s.activeBackgroundWorkers.Wait()
}

// Wait blocks until the loop has stopped and returns the fault or
// context error that stopped it; a stop request yields nil.
func (s *Scheduler) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return errors.New("scheduler never started")
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Ticks reports how many ticks dispatched a step.
func (s *Scheduler) Ticks() uint64 { return s.ticks.Load() }
