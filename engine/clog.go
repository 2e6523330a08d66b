package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/schedule"
)

// MaxFullTicks is how many consecutive full ticks the outbound queue may
// accumulate before its oldest message is evicted.
const MaxFullTicks = 10

// checkClog evicts one outbound message once the host has left the queue
// full for more than MaxFullTicks consecutive ticks. A zero-capacity queue
// is never considered clogged.
func (a *App) checkClog(_ context.Context, tick *schedule.Tick) {
	out := a.binding.Maintenance()
	if out.Cap() == 0 || !out.IsFull() {
		a.fullTicks = 0
		return
	}

	a.fullTicks++
	if a.fullTicks <= MaxFullTicks {
		return
	}
	a.fullTicks = 0

	msg, ok := out.TryRecv()
	if !ok {
		return
	}
	a.evicted.Add(1)
	a.log.Warn("outbound queue clogged, evicted oldest message",
		zap.Stringer("evicted", msg),
		zap.Int("capacity", out.Cap()),
		zap.Uint64("tick", tick.Seq))
}
