package server

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrFrameLimit is returned by Loop.Start when MaxFrames elapse before the
// step function reports completion.
var ErrFrameLimit = errors.New("server: frame limit reached")

// StepFunc advances the simulation by one frame of length cycle and reports
// whether it has more work to do.
type StepFunc func(cycle time.Duration) bool

// LoopConfig configures a Loop.
type LoopConfig struct {
	Interval  time.Duration // wall time between frames
	MaxFrames int           // 0 means unlimited
	// Grace bounds how long Stop waits for the step function to finish after
	// an interrupt.
	Grace time.Duration
}

// Loop is a Service that calls a StepFunc once per frame with a fixed cycle
// equal to the interval, so runs are reproducible regardless of scheduling.
//
// Stop does not cut the loop short: it runs the interrupt function on the
// loop goroutine and keeps stepping until the step function reports
// completion, so the simulation can tear itself down.
type Loop struct {
	cfg       LoopConfig
	step      StepFunc
	interrupt func()
	logger    *zap.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	frames   int
}

// NewLoop creates a Loop.
//
// Precondition: cfg.Interval > 0; step must be non-nil. interrupt may be nil.
func NewLoop(cfg LoopConfig, step StepFunc, interrupt func(), logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Grace <= 0 {
		cfg.Grace = 5 * time.Second
	}
	return &Loop{
		cfg:       cfg,
		step:      step,
		interrupt: interrupt,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs frames until the step function reports completion.
//
// Postcondition: returns nil on completion, or ErrFrameLimit.
func (l *Loop) Start() error {
	defer close(l.doneCh)
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	stop := l.stopCh
	for {
		select {
		case <-stop:
			stop = nil
			l.logger.Info("loop interrupted", zap.Int("frame", l.frames))
			if l.interrupt != nil {
				l.interrupt()
			}
		case <-ticker.C:
			l.frames++
			if !l.step(l.cfg.Interval) {
				l.logger.Info("loop complete", zap.Int("frames", l.frames))
				return nil
			}
			if l.cfg.MaxFrames > 0 && l.frames >= l.cfg.MaxFrames {
				l.logger.Warn("loop frame limit reached", zap.Int("frames", l.frames))
				return ErrFrameLimit
			}
		}
	}
}

// Stop interrupts the loop and waits up to the grace period for it to finish.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	select {
	case <-l.doneCh:
	case <-time.After(l.cfg.Grace):
		l.logger.Warn("loop did not finish within grace period", zap.Duration("grace", l.cfg.Grace))
	}
}

// Frames returns the number of frames stepped. It is only meaningful after
// Start has returned.
func (l *Loop) Frames() int { return l.frames }
