package heartbeat

import (
	"sync/atomic"
	"time"
)

const (
	// DefaultTimeout is how long the gate tolerates silence.
	DefaultTimeout = 2 * time.Minute
)

// Default is the process-wide liveness flag written by the host facade.
var Default = &Flag{}

// Flag is a one-word liveness signal. Any goroutine may Request; the tick
// loop consumes it with Take. It never blocks and never locks.
type Flag struct {
	set atomic.Bool
}

// Request marks the engine as wanted. Idempotent.
func (f *Flag) Request() {
	f.set.Store(true)
}

// Take reports whether a heartbeat was requested since the last Take and
// clears the flag.
func (f *Flag) Take() bool {
	return f.set.Swap(false)
}

// Pending reports whether a heartbeat is waiting, without clearing it.
func (f *Flag) Pending() bool {
	return f.set.Load()
}

// Decision is the gate's verdict for one tick.
type Decision int

const (
	Continue Decision = iota
	Shutdown
)

func (d Decision) String() string {
	if d == Shutdown {
		return "shutdown"
	}
	return "continue"
}

// Gate turns heartbeats into a keep-running decision. A Gate belongs to one
// tick loop and is not safe for concurrent use; only its Flag is shared.
type Gate struct {
	flag    *Flag
	timeout time.Duration
	idle    time.Duration
}

// NewGate creates a gate over flag. A timeout <= 0 disables shutdown.
func NewGate(flag *Flag, timeout time.Duration) *Gate {
	if flag == nil {
		flag = Default
	}
	return &Gate{flag: flag, timeout: timeout}
}

// Tick accounts elapsed time since the previous tick. A pending heartbeat
// resets the idle duration to zero; otherwise elapsed is added to it. The
// gate returns Shutdown once the idle duration exceeds the timeout.
func (g *Gate) Tick(elapsed time.Duration) Decision {
	if g.flag.Take() {
		g.idle = 0
		return Continue
	}

	if elapsed > 0 {
		g.idle += elapsed
	}

	if g.timeout > 0 && g.idle > g.timeout {
		return Shutdown
	}
	return Continue
}

// Idle returns the time since the last heartbeat as seen by Tick.
func (g *Gate) Idle() time.Duration { return g.idle }

// Timeout returns the configured idle timeout.
func (g *Gate) Timeout() time.Duration { return g.timeout }
