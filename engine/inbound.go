package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/abi"
	"github.com/wippyai/cortex-bridge/errors"
	"github.com/wippyai/cortex-bridge/schedule"
)

// reply maps an inbound message to its response.
func reply(msg abi.InMsg) (abi.OutMsg, error) {
	switch msg {
	case abi.InMsgPing:
		return abi.OutMsgPong, nil
	default:
		return 0, errors.InvalidMessage(errors.PhaseDispatch, uint8(msg))
	}
}

// processInbound drains the inbound queue in FIFO order. A failed reply is
// logged and the drain continues.
func (a *App) processInbound(_ context.Context, tick *schedule.Tick) {
	in := a.binding.Inbound()
	out := a.binding.Outbound()

	for i := 0; ; i++ {
		msg, ok := in.TryRecv()
		if !ok {
			return
		}
		a.processed.Add(1)

		resp, err := reply(msg)
		if err != nil {
			a.log.Warn("skipping inbound message",
				zap.Int("index", i),
				zap.Uint64("tick", tick.Seq),
				zap.Error(err))
			continue
		}

		if err := out.TrySend(resp); err != nil {
			a.sendFailures.Add(1)
			a.log.Error("failed to send reply",
				zap.Int("index", i),
				zap.Uint64("tick", tick.Seq),
				zap.Stringer("request", msg),
				zap.Stringer("reply", resp),
				zap.Error(err))
		}
	}
}
