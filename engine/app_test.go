package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cortex-bridge/abi"
	"github.com/wippyai/cortex-bridge/channel"
	"github.com/wippyai/cortex-bridge/errors"
	"github.com/wippyai/cortex-bridge/heartbeat"
	"github.com/wippyai/cortex-bridge/schedule"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	app   *App
	reg   *channel.Registry
	flag  *heartbeat.Flag
	clock *fakeClock
	host  channel.HostEnd
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		reg:   channel.NewRegistry(),
		flag:  &heartbeat.Flag{},
		clock: &fakeClock{now: time.Unix(1_700_000_000, 0)},
	}
	all := append([]Option{
		WithConfig(cfg),
		WithRegistry(h.reg),
		WithFlag(h.flag),
		WithClock(h.clock.Now),
	}, opts...)

	app, err := New(all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	h.app = app

	host, ok := h.reg.Host()
	require.True(t, ok)
	h.host = host
	return h
}

func (h *harness) drain() []abi.OutMsg {
	var out []abi.OutMsg
	for {
		msg, ok := h.host.Outbound.TryRecv()
		if !ok {
			return out
		}
		out = append(out, msg)
	}
}

func TestNewPushesStartedBeforeFirstTick(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	assert.Equal(t, uint64(0), h.app.Stats().Ticks)
	assert.Equal(t, []abi.OutMsg{abi.OutMsgStarted}, h.drain())
	assert.NotEmpty(t, h.app.RunID())
}

func TestNewTwiceOnSameRegistryFails(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	_, err := New(WithRegistry(h.reg), WithFlag(h.flag))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Kind: errors.KindAlreadyBound})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	reg := channel.NewRegistry()
	cfg := DefaultConfig()
	cfg.TickInterval = 0

	_, err := New(WithConfig(cfg), WithRegistry(reg))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Kind: errors.KindInvalidConfig})
	assert.False(t, reg.Bound(), "registry must stay unbound on config errors")
}

func TestNewZeroOutboundCapacityIsFatal(t *testing.T) {
	reg := channel.NewRegistry()
	cfg := DefaultConfig()
	cfg.OutboundCapacity = 0

	_, err := New(WithConfig(cfg), WithRegistry(reg))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Kind: errors.KindInitialSend})
}

func TestPingsProducePongsInOrder(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	require.Equal(t, []abi.OutMsg{abi.OutMsgStarted}, h.drain())

	for i := 0; i < 5; i++ {
		require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	}
	h.app.Update(context.Background())

	got := h.drain()
	require.Len(t, got, 5)
	for _, msg := range got {
		assert.Equal(t, abi.OutMsgPong, msg)
	}

	stats := h.app.Stats()
	assert.Equal(t, uint64(1), stats.Ticks)
	assert.Equal(t, uint64(5), stats.Processed)
	assert.Zero(t, stats.SendFailures)
}

func TestStartedPrecedesReplies(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	h.app.Update(context.Background())

	assert.Equal(t, []abi.OutMsg{abi.OutMsgStarted, abi.OutMsgPong}, h.drain())
}

func TestFailedReplyDoesNotAbortDrain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutboundCapacity = 2
	h := newHarness(t, cfg)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	}
	h.app.Update(context.Background())

	stats := h.app.Stats()
	assert.Equal(t, uint64(3), stats.Processed)
	assert.Equal(t, uint64(2), stats.SendFailures)
	assert.Zero(t, h.host.Inbound.Len(), "inbound must be drained")
	assert.Equal(t, []abi.OutMsg{abi.OutMsgStarted, abi.OutMsgPong}, h.drain())
}

func TestUnknownInboundMessageIsSkipped(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drain()

	require.NoError(t, h.host.Inbound.TrySend(abi.InMsg(42)))
	require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	h.app.Update(context.Background())

	assert.Equal(t, []abi.OutMsg{abi.OutMsgPong}, h.drain())
	assert.Equal(t, uint64(2), h.app.Stats().Processed)
}

func TestMockInboundDrivesEngine(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.drain()

	require.NoError(t, h.app.Binding().InboundMock().TrySend(abi.InMsgPing))
	h.app.Update(context.Background())

	assert.Equal(t, []abi.OutMsg{abi.OutMsgPong}, h.drain())
}

func TestClogEvictsOneAfterMaxFullTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutboundCapacity = 3
	h := newHarness(t, cfg)
	ctx := context.Background()

	require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))

	for i := 0; i < MaxFullTicks; i++ {
		h.app.Update(ctx)
		require.Zero(t, h.app.Stats().Evicted, "tick %d", i)
	}

	h.app.Update(ctx)
	assert.Equal(t, uint64(1), h.app.Stats().Evicted)

	for i := 0; i < 3*MaxFullTicks; i++ {
		h.app.Update(ctx)
	}
	assert.Equal(t, uint64(1), h.app.Stats().Evicted, "queue below capacity must not be evicted again")

	assert.Equal(t, []abi.OutMsg{abi.OutMsgPong, abi.OutMsgPong}, h.drain(), "oldest message is evicted")
}

func TestClogCounterResetsWhenHostReads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutboundCapacity = 1
	h := newHarness(t, cfg)
	ctx := context.Background()

	for i := 0; i < MaxFullTicks; i++ {
		h.app.Update(ctx)
	}
	msg, ok := h.host.Outbound.TryRecv()
	require.True(t, ok)
	require.Equal(t, abi.OutMsgStarted, msg)

	h.app.Update(ctx)

	require.NoError(t, h.host.Inbound.TrySend(abi.InMsgPing))
	for i := 0; i < MaxFullTicks; i++ {
		h.app.Update(ctx)
	}
	assert.Zero(t, h.app.Stats().Evicted, "a non-full tick resets the count")

	h.app.Update(ctx)
	assert.Equal(t, uint64(1), h.app.Stats().Evicted)
}

func TestLivenessGateShutsDownAfterTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatTimeout = time.Second
	h := newHarness(t, cfg)
	ctx := context.Background()

	require.False(t, h.app.Update(ctx).Exited())

	h.clock.Advance(600 * time.Millisecond)
	require.False(t, h.app.Update(ctx).Exited())

	h.clock.Advance(600 * time.Millisecond)
	tick := h.app.Update(ctx)
	assert.True(t, tick.Exited())
	assert.Equal(t, "heartbeat timeout", tick.ExitReason())
}

func TestHeartbeatResetsIdle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatTimeout = time.Second
	h := newHarness(t, cfg)
	ctx := context.Background()

	h.app.Update(ctx)
	for i := 0; i < 10; i++ {
		h.clock.Advance(600 * time.Millisecond)
		h.flag.Request()
		require.False(t, h.app.Update(ctx).Exited(), "tick %d", i)
	}
	assert.False(t, h.flag.Pending(), "gate consumes the heartbeat")
}

func TestZeroHeartbeatTimeoutNeverShutsDown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartbeatTimeout = 0
	h := newHarness(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		h.clock.Advance(time.Hour)
		require.False(t, h.app.Update(ctx).Exited())
	}
}

func TestRunReturnsNilOnHeartbeatTimeout(t *testing.T) {
	reg := channel.NewRegistry()
	cfg := DefaultConfig()
	cfg.TickInterval = time.Millisecond
	cfg.HeartbeatTimeout = 20 * time.Millisecond

	app, err := New(WithConfig(cfg), WithRegistry(reg), WithFlag(&heartbeat.Flag{}))
	require.NoError(t, err)
	host, ok := reg.Host()
	require.True(t, ok)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop without heartbeats")
	}

	msg, err := host.Outbound.RecvTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, abi.OutMsgStarted, msg, "buffered messages survive teardown")

	_, err = host.Outbound.RecvTimeout(time.Second)
	assert.True(t, errors.IsQueueClosed(err), "teardown wakes receivers: %v", err)

	assert.True(t, errors.IsQueueClosed(host.Inbound.TrySend(abi.InMsgPing)))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = time.Millisecond
	h := newHarness(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.app.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPluginSystemsRunEachTick(t *testing.T) {
	var seen []uint64
	p := PluginFunc(func(app *App) error {
		app.AddSystem(schedule.Update, "recorder", func(_ context.Context, tick *schedule.Tick) {
			seen = append(seen, tick.Seq)
		})
		return nil
	})
	h := newHarness(t, DefaultConfig(), WithPlugins(p))

	h.app.Update(context.Background())
	h.app.Update(context.Background())
	assert.Equal(t, []uint64{0, 1}, seen)
}

func TestPluginBuildErrorClosesApp(t *testing.T) {
	reg := channel.NewRegistry()
	boom := errors.Instantiation("boom", nil)

	var closed bool
	p := PluginFunc(func(app *App) error {
		app.OnClose(func(context.Context) error {
			closed = true
			return nil
		})
		return boom
	})

	_, err := New(WithRegistry(reg), WithPlugins(p))
	require.ErrorIs(t, err, boom)
	assert.True(t, closed)

	host, ok := reg.Host()
	require.True(t, ok)
	assert.True(t, errors.IsQueueClosed(host.Inbound.TrySend(abi.InMsgPing)))
}

func TestCloseRunsHooksOnceInReverse(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	var order []string
	h.app.OnClose(func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	h.app.OnClose(func(context.Context) error {
		order = append(order, "second")
		return errors.Instantiation("cleanup", nil)
	})

	err := h.app.Close(context.Background())
	require.Error(t, err)
	require.NoError(t, h.app.Close(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}
