// Package scheduler drives the reminder cycle on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/infrastructure/cache"
	"github.com/wimotos/backend/internal/infrastructure/telemetry"
)

// DefaultLockKey names the cycle lock shared by every worker
const DefaultLockKey = "reminder-cycle"

// Cycle is one reminder iteration
type Cycle interface {
	RunCycle(ctx context.Context) (notificationapp.CycleReport, error)
}

// CycleObserver is told how long each cycle took and whether it failed
type CycleObserver interface {
	ObserveCycle(ctx context.Context, elapsed time.Duration, err error)
}

type nopCycleObserver struct{}

func (nopCycleObserver) ObserveCycle(context.Context, time.Duration, error) {}

// LoopConfig holds the loop timing
type LoopConfig struct {
	Interval time.Duration
	MinSleep time.Duration
	LockKey  string
	LockTTL  time.Duration
}

// DefaultLoopConfig returns the 30s interval with a 1s floor between cycles
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Interval: 30 * time.Second,
		MinSleep: time.Second,
		LockKey:  DefaultLockKey,
		LockTTL:  5 * time.Minute,
	}
}

func (c LoopConfig) withDefaults() LoopConfig {
	d := DefaultLoopConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.MinSleep <= 0 {
		c.MinSleep = d.MinSleep
	}
	if c.LockKey == "" {
		c.LockKey = d.LockKey
	}
	if c.LockTTL <= 0 {
		c.LockTTL = d.LockTTL
	}
	return c
}

// ReminderLoop runs a Cycle until stopped. Errors and panics are logged and the
// loop carries on with the next iteration.
type ReminderLoop struct {
	config   LoopConfig
	cycle    Cycle
	locker   cache.Locker
	logger   *zap.Logger
	observer CycleObserver
	now      func() time.Time

	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
}

// LoopOption configures a ReminderLoop
type LoopOption func(*ReminderLoop)

// WithCycleObserver reports every cycle, including skipped ones, to o
func WithCycleObserver(o CycleObserver) LoopOption {
	return func(l *ReminderLoop) {
		if o != nil {
			l.observer = o
		}
	}
}

// NewReminderLoop creates a loop. A nil locker runs cycles without a lock.
func NewReminderLoop(config LoopConfig, cycle Cycle, locker cache.Locker, logger *zap.Logger, opts ...LoopOption) *ReminderLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &ReminderLoop{
		config:   config.withDefaults(),
		cycle:    cycle,
		locker:   locker,
		logger:   logger,
		observer: nopCycleObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start runs the loop in a goroutine. Calling Start on a running loop is a no-op.
func (l *ReminderLoop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.isRunning {
		return nil
	}
	l.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)

	l.logger.Info("Reminder loop started",
		zap.Duration("interval", l.config.Interval),
		zap.Bool("locked", l.locker != nil))
	return nil
}

// Stop cancels the loop and waits for the running cycle to finish, or for ctx
func (l *ReminderLoop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.isRunning {
		l.mu.Unlock()
		return nil
	}
	l.isRunning = false
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	select {
	case <-done:
		l.logger.Info("Reminder loop stopped gracefully")
		return nil
	case <-ctx.Done():
		l.logger.Warn("Reminder loop stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start was called without a matching Stop
func (l *ReminderLoop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isRunning
}

func (l *ReminderLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		started := l.now()
		_, err := l.RunOnce(ctx)
		if errors.Is(err, ErrCycleLocked) {
			err = nil
		}
		if err != nil && ctx.Err() == nil {
			l.logger.Error("Reminder cycle failed", zap.Error(err))
		}
		elapsed := l.now().Sub(started)
		l.observer.ObserveCycle(ctx, elapsed, err)
		if !sleep(ctx, l.nextSleep(elapsed)) {
			return
		}
	}
}

func (l *ReminderLoop) nextSleep(elapsed time.Duration) time.Duration {
	return max(l.config.MinSleep, l.config.Interval-elapsed)
}

// RunOnce runs a single cycle under the lock. A panic inside the cycle is returned
// as ErrCyclePanic.
func (l *ReminderLoop) RunOnce(ctx context.Context) (report notificationapp.CycleReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, "reminder.cycle")
	defer func() {
		telemetry.RecordError(span, err)
		span.SetAttributes(attribute.Int("messages", report.Total()))
		span.End()
	}()

	if l.locker != nil {
		lease, ok, lockErr := l.locker.TryLock(ctx, l.config.LockKey, l.config.LockTTL)
		if lockErr != nil {
			return report, fmt.Errorf("acquire cycle lock: %w", lockErr)
		}
		if !ok {
			l.logger.Debug("Reminder cycle skipped, lock held elsewhere")
			return report, ErrCycleLocked
		}
		defer func() {
			// the lease outlives a cancelled loop context
			if relErr := lease.Release(context.WithoutCancel(ctx)); relErr != nil {
				l.logger.Warn("Release cycle lock", zap.Error(relErr))
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
			l.logger.Error("Reminder cycle panic recovered", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	return l.cycle.RunCycle(ctx)
}

// sleep waits d and reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
