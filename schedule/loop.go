package schedule

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 200 * time.Millisecond

// Loop drives a Schedule at a fixed cadence.
type Loop struct {
	schedule *Schedule
	now      func() time.Time
	last     time.Time
	interval time.Duration
	ticks    atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock replaces time.Now, for deterministic deltas in tests.
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) { l.now = now }
}

// NewLoop creates a loop over s. A non-positive interval uses DefaultInterval.
func NewLoop(s *Schedule, interval time.Duration, opts ...LoopOption) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	l := &Loop{
		schedule: s,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Interval() time.Duration { return l.interval }

// Ticks returns the number of completed ticks. Safe from any goroutine.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Step runs one tick immediately. The first tick has a zero Delta.
func (l *Loop) Step(ctx context.Context) *Tick {
	now := l.now()
	var delta time.Duration
	if !l.last.IsZero() {
		delta = now.Sub(l.last)
	}
	l.last = now

	tick := &Tick{Now: now, Seq: l.ticks.Load(), Delta: delta}
	l.schedule.Run(ctx, tick)
	l.ticks.Add(1)
	return tick
}

// Run steps once immediately and then once per interval. It returns the
// final tick when a system calls Exit, or ctx.Err() when ctx is done.
func (l *Loop) Run(ctx context.Context) (*Tick, error) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tick := l.Step(ctx); tick.Exited() {
			return tick, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
