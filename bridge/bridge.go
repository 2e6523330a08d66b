package bridge

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/abi"
	"github.com/wippyai/cortex-bridge/channel"
	"github.com/wippyai/cortex-bridge/engine"
	"github.com/wippyai/cortex-bridge/heartbeat"
	"github.com/wippyai/cortex-bridge/plugin"
)

// TryReceiveTimeout bounds TryGetMessage.
const TryReceiveTimeout = time.Second

// Bridge is the host-facing side of one registry and heartbeat flag.
// All methods are safe to call from any goroutine.
type Bridge struct {
	registry *channel.Registry
	flag     *heartbeat.Flag
	lookup   engine.LookupFunc
}

// Option configures New.
type Option func(*Bridge)

func WithRegistry(r *channel.Registry) Option {
	return func(b *Bridge) { b.registry = r }
}

func WithFlag(f *heartbeat.Flag) Option {
	return func(b *Bridge) { b.flag = f }
}

// WithLookup replaces os.LookupEnv as the configuration source.
func WithLookup(lookup engine.LookupFunc) Option {
	return func(b *Bridge) { b.lookup = lookup }
}

func New(opts ...Option) *Bridge {
	b := &Bridge{
		registry: channel.Default,
		flag:     heartbeat.Default,
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Default is the process-wide bridge behind the package functions.
var Default = New()

// Run builds an engine from the environment and ticks it until the liveness
// gate shuts it down (nil) or ctx is done. Construction errors are returned
// before any tick.
func (b *Bridge) Run(ctx context.Context) error {
	installLoggers(b.lookup)
	log := Logger()

	cfg := engine.ConfigFromEnv(b.lookup)
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithConfig(cfg),
		engine.WithRegistry(b.registry),
		engine.WithFlag(b.flag),
	}

	var p *plugin.Wasm
	if cfg.PluginPath != "" {
		var err error
		p, err = plugin.LoadFile(ctx, cfg.PluginPath, &plugin.Config{Flag: b.flag})
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithPlugins(p))
	}

	app, err := engine.New(opts...)
	if err != nil {
		if p != nil {
			_ = p.Close(ctx)
		}
		return err
	}

	log.Info("autorun started", zap.String("run_id", app.RunID()))
	err = app.Run(ctx)
	log.Info("autorun finished", zap.String("run_id", app.RunID()), zap.Error(err))
	return err
}

// CreateAndAutorun runs the engine on the calling goroutine and returns
// when the liveness gate shuts it down. Initialization failures, including
// a second call in the same process, are fatal and panic.
func (b *Bridge) CreateAndAutorun() {
	if err := b.Run(context.Background()); err != nil {
		Logger().Error("autorun failed", zap.Error(err))
		panic(err)
	}
}

// Start runs CreateAndAutorun on a new goroutine and returns immediately.
func (b *Bridge) Start() {
	go b.CreateAndAutorun()
}

// RequestHeartbeat keeps the engine alive for another timeout window.
func (b *Bridge) RequestHeartbeat() {
	b.flag.Request()
}

// AwaitMessage blocks until the engine produces a message. It returns None
// when the engine is not running yet or has been torn down.
func (b *Bridge) AwaitMessage() abi.Option[abi.OutMsg] {
	host, ok := b.registry.Host()
	if !ok {
		return abi.None[abi.OutMsg]()
	}
	msg, err := host.Outbound.Recv(context.Background())
	if err != nil {
		return abi.None[abi.OutMsg]()
	}
	return abi.Some(msg)
}

// TryGetMessage waits up to TryReceiveTimeout for a message.
func (b *Bridge) TryGetMessage() abi.Option[abi.OutMsg] {
	host, ok := b.registry.Host()
	if !ok {
		return abi.None[abi.OutMsg]()
	}
	msg, err := host.Outbound.RecvTimeout(TryReceiveTimeout)
	if err != nil {
		return abi.None[abi.OutMsg]()
	}
	return abi.Some(msg)
}

// WritePing queues a ping without blocking. It reports false when the
// inbound queue is full or the engine is not running.
func (b *Bridge) WritePing() bool {
	host, ok := b.registry.Host()
	if !ok {
		return false
	}
	if err := host.Inbound.TrySend(abi.InMsgPing); err != nil {
		Logger().Debug("ping rejected", zap.Error(err))
		return false
	}
	return true
}

// CreateAndAutorun runs the default bridge. See Bridge.CreateAndAutorun.
func CreateAndAutorun() { Default.CreateAndAutorun() }

// Start runs the default bridge in the background.
func Start() { Default.Start() }

func RequestHeartbeat() { Default.RequestHeartbeat() }

func AwaitMessage() abi.Option[abi.OutMsg] { return Default.AwaitMessage() }

func TryGetMessage() abi.Option[abi.OutMsg] { return Default.TryGetMessage() }

func WritePing() bool { return Default.WritePing() }
