package schedule

import (
	"context"
	"fmt"
	"time"
)

// Phase orders systems within a tick. Phases always run in declaration order.
type Phase int

const (
	First Phase = iota
	PreUpdate
	Update
	PostUpdate
	Last

	phaseCount
)

var phaseNames = [phaseCount]string{"first", "pre-update", "update", "post-update", "last"}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases returns every phase in run order.
func Phases() []Phase {
	out := make([]Phase, phaseCount)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// Tick is the per-iteration context handed to every system.
type Tick struct {
	Now   time.Time
	Seq   uint64
	Delta time.Duration

	exitReason string
	exit       bool
}

// Exit asks the loop to stop after this tick completes. The first reason wins.
func (t *Tick) Exit(reason string) {
	if t.exit {
		return
	}
	t.exit = true
	t.exitReason = reason
}

// Exited reports whether a system asked the loop to stop.
func (t *Tick) Exited() bool { return t.exit }

// ExitReason returns the reason passed to the first Exit call.
func (t *Tick) ExitReason() string { return t.exitReason }

// System is one unit of per-tick work.
type System func(ctx context.Context, tick *Tick)

type entry struct {
	name string
	run  System
}

// Schedule holds systems grouped by phase. Within a phase, systems run in
// the order they were added. Not safe for concurrent modification; build it
// before the loop starts.
type Schedule struct {
	phases [phaseCount][]entry
}

func New() *Schedule {
	return &Schedule{}
}

// Add registers sys under phase. Panics on an unknown phase.
func (s *Schedule) Add(phase Phase, name string, sys System) *Schedule {
	if phase < 0 || phase >= phaseCount {
		panic(fmt.Sprintf("schedule: unknown phase %d for system %q", int(phase), name))
	}
	s.phases[phase] = append(s.phases[phase], entry{name: name, run: sys})
	return s
}

// Names lists the systems registered under phase in run order.
func (s *Schedule) Names(phase Phase) []string {
	if phase < 0 || phase >= phaseCount {
		return nil
	}
	names := make([]string, 0, len(s.phases[phase]))
	for _, e := range s.phases[phase] {
		names = append(names, e.name)
	}
	return names
}

// Run executes every system of every phase once. An Exit request does not
// cut the tick short.
func (s *Schedule) Run(ctx context.Context, tick *Tick) {
	for p := range s.phases {
		for _, e := range s.phases[p] {
			e.run(ctx, tick)
		}
	}
}
