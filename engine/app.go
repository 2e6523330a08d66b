package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/channel"
	"github.com/wippyai/cortex-bridge/heartbeat"
	"github.com/wippyai/cortex-bridge/schedule"
)

// Plugin extends an App before its first tick, typically by adding systems.
type Plugin interface {
	Build(app *App) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(app *App) error

func (f PluginFunc) Build(app *App) error { return f(app) }

// Stats are cumulative counters for one App.
type Stats struct {
	Ticks        uint64
	Processed    uint64
	Evicted      uint64
	SendFailures uint64
}

type options struct {
	registry *channel.Registry
	flag     *heartbeat.Flag
	clock    func() time.Time
	plugins  []Plugin
	cfg      Config
}

// Option configures New.
type Option func(*options)

func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithRegistry binds a registry other than channel.Default.
func WithRegistry(r *channel.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithFlag watches a heartbeat flag other than heartbeat.Default.
func WithFlag(f *heartbeat.Flag) Option {
	return func(o *options) { o.flag = f }
}

func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithClock replaces time.Now for tick deltas.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// App is one engine run: a bound registry, a liveness gate and a phased
// schedule driven at the configured cadence.
type App struct {
	binding  *channel.Binding
	gate     *heartbeat.Gate
	schedule *schedule.Schedule
	loop     *schedule.Loop
	log      *zap.Logger
	runID    string
	cleanups []func(context.Context) error
	cfg      Config

	closeOnce sync.Once

	// touched only from the tick goroutine
	fullTicks int

	processed    atomic.Uint64
	evicted      atomic.Uint64
	sendFailures atomic.Uint64
}

// New binds the registry, pushes the started message and builds plugins.
// A bind failure is fatal for the process: the registry cannot be bound again.
func New(opts ...Option) (*App, error) {
	o := options{
		cfg:      DefaultConfig(),
		registry: channel.Default,
		flag:     heartbeat.Default,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := Logger().With(zap.String("run_id", runID))

	binding, err := o.registry.Bind(
		channel.WithInboundCapacity(o.cfg.InboundCapacity),
		channel.WithOutboundCapacity(o.cfg.OutboundCapacity),
	)
	if err != nil {
		log.Error("failed to bind message queues", zap.Error(err))
		return nil, err
	}

	a := &App{
		binding:  binding,
		gate:     heartbeat.NewGate(o.flag, o.cfg.HeartbeatTimeout),
		schedule: schedule.New(),
		log:      log,
		runID:    runID,
		cfg:      o.cfg,
	}
	a.loop = schedule.NewLoop(a.schedule, o.cfg.TickInterval, schedule.WithClock(o.clock))

	a.schedule.
		Add(schedule.First, "liveness-gate", a.checkLiveness).
		Add(schedule.PreUpdate, "inbound", a.processInbound).
		Add(schedule.Last, "clog-monitor", a.checkClog)

	for _, p := range o.plugins {
		if err := p.Build(a); err != nil {
			log.Error("plugin build failed", zap.String("plugin", fmt.Sprintf("%T", p)), zap.Error(err))
			_ = a.Close(context.Background())
			return nil, err
		}
	}

	log.Info("engine created", append(o.cfg.Fields(), zap.Stringer("binding", binding))...)
	return a, nil
}

func (a *App) RunID() string { return a.runID }

func (a *App) Config() Config { return a.cfg }

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger { return a.log }

func (a *App) Binding() *channel.Binding { return a.binding }

// AddSystem registers sys on the app's schedule. Call it from Plugin.Build.
func (a *App) AddSystem(phase schedule.Phase, name string, sys schedule.System) *App {
	a.schedule.Add(phase, name, sys)
	return a
}

// OnClose registers fn to run when the app is closed, in reverse order.
func (a *App) OnClose(fn func(context.Context) error) {
	a.cleanups = append(a.cleanups, fn)
}

// Update runs exactly one tick.
func (a *App) Update(ctx context.Context) *schedule.Tick {
	return a.loop.Step(ctx)
}

// Run ticks at the configured interval until the liveness gate shuts the
// engine down or ctx is done. A gate shutdown returns nil. The app is closed
// on return, which wakes any host blocked on the outbound queue.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("engine running", zap.Duration("tick_interval", a.loop.Interval()))
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			a.log.Warn("engine cleanup failed", zap.Error(err))
		}
	}()

	final, err := a.loop.Run(ctx)
	if err != nil {
		a.log.Info("engine cancelled", zap.Uint64("ticks", a.loop.Ticks()), zap.Error(err))
		return err
	}
	a.log.Info("engine stopped",
		zap.String("reason", final.ExitReason()),
		zap.Uint64("ticks", a.loop.Ticks()))
	return nil
}

// Close tears down the queues and runs OnClose hooks. Idempotent.
func (a *App) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		a.binding.Close()
		var errs []error
		for i := len(a.cleanups) - 1; i >= 0; i-- {
			if cerr := a.cleanups[i](ctx); cerr != nil {
				errs = append(errs, cerr)
			}
		}
		err = stderrors.Join(errs...)
	})
	return err
}

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (a *App) Stats() Stats {
	return Stats{
		Ticks:        a.loop.Ticks(),
		Processed:    a.processed.Load(),
		Evicted:      a.evicted.Load(),
		SendFailures: a.sendFailures.Load(),
	}
}

func (a *App) checkLiveness(_ context.Context, tick *schedule.Tick) {
	if a.gate.Tick(tick.Delta) == heartbeat.Shutdown {
		a.log.Info("no heartbeat within timeout, shutting down",
			zap.Duration("idle", a.gate.Idle()),
			zap.Duration("timeout", a.gate.Timeout()))
		tick.Exit("heartbeat timeout")
	}
}
