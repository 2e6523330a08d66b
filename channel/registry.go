package channel

import (
	"fmt"
	"sync/atomic"

	"github.com/wippyai/cortex-bridge/abi"
	"github.com/wippyai/cortex-bridge/errors"
)

const (
	DefaultInboundCapacity  = 100
	DefaultOutboundCapacity = 100

	InboundName  = "inbound"
	OutboundName = "outbound"
)

// Default is the process-wide registry used by the host facade.
var Default = NewRegistry()

// Registry owns the inbound and outbound queues. It can be bound exactly
// once; both queues are published together so the two ends always agree.
type Registry struct {
	claimed atomic.Bool
	binding atomic.Pointer[Binding]
}

// NewRegistry returns an unbound registry.
func NewRegistry() *Registry {
	return &Registry{}
}

type bindConfig struct {
	inbound  int
	outbound int
}

// BindOption configures Bind.
type BindOption func(*bindConfig)

// WithInboundCapacity overrides DefaultInboundCapacity.
func WithInboundCapacity(n int) BindOption {
	return func(c *bindConfig) { c.inbound = n }
}

// WithOutboundCapacity overrides DefaultOutboundCapacity.
func WithOutboundCapacity(n int) BindOption {
	return func(c *bindConfig) { c.outbound = n }
}

// Bind creates both queues and queues abi.OutMsgStarted on the outbound one.
//
// A second call fails with errors.KindAlreadyBound, even if the first call
// failed. If the startup message cannot be queued (capacity zero) Bind fails
// with errors.KindInitialSend and the registry stays unpublished.
func (r *Registry) Bind(opts ...BindOption) (*Binding, error) {
	cfg := bindConfig{
		inbound:  DefaultInboundCapacity,
		outbound: DefaultOutboundCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.inbound < 0 || cfg.outbound < 0 {
		return nil, errors.New(errors.PhaseBind, errors.KindInvalidConfig).
			Detail("negative capacity (inbound %d, outbound %d)", cfg.inbound, cfg.outbound).
			Build()
	}

	if !r.claimed.CompareAndSwap(false, true) {
		return nil, errors.AlreadyBound("channel registry")
	}

	b := &Binding{
		inbound: NewQueue[abi.InMsg](InboundName, cfg.inbound),
	}

	b.outbound = NewQueue[abi.OutMsg](OutboundName, cfg.outbound)
	if err := b.outbound.TrySend(abi.OutMsgStarted); err != nil {
		return nil, errors.InitialSend(OutboundName, err)
	}

	r.binding.Store(b)
	return b, nil
}

// Bound reports whether Bind has published queues.
func (r *Registry) Bound() bool {
	return r.binding.Load() != nil
}

// Host returns the host-facing ends: write to inbound, read from outbound.
// ok is false until Bind succeeds.
func (r *Registry) Host() (HostEnd, bool) {
	b := r.binding.Load()
	if b == nil {
		return HostEnd{}, false
	}
	return HostEnd{
		Inbound:  Sender[abi.InMsg]{q: b.inbound},
		Outbound: Receiver[abi.OutMsg]{q: b.outbound},
	}, true
}

// HostEnd is the half of a Binding that the host facade may touch.
type HostEnd struct {
	Inbound  Sender[abi.InMsg]
	Outbound Receiver[abi.OutMsg]
}

// Binding is the engine-side view of a bound registry.
type Binding struct {
	inbound  *Queue[abi.InMsg]
	outbound *Queue[abi.OutMsg]
}

// Inbound is read access to messages sent by the host.
func (b *Binding) Inbound() Receiver[abi.InMsg] {
	return Receiver[abi.InMsg]{q: b.inbound}
}

// Outbound is write access to messages for the host.
func (b *Binding) Outbound() Sender[abi.OutMsg] {
	return Sender[abi.OutMsg]{q: b.outbound}
}

// Maintenance is read access to the outbound queue, reserved for evicting
// messages the host never collected.
func (b *Binding) Maintenance() Receiver[abi.OutMsg] {
	return Receiver[abi.OutMsg]{q: b.outbound}
}

// InboundMock is write access to the inbound queue for test harnesses.
// Production code must go through Registry.Host.
func (b *Binding) InboundMock() Sender[abi.InMsg] {
	return Sender[abi.InMsg]{q: b.inbound}
}

// Close tears down both queues, waking blocked host receivers.
func (b *Binding) Close() {
	b.inbound.Close()
	b.outbound.Close()
}

func (b *Binding) String() string {
	return fmt.Sprintf("binding(inbound %d/%d, outbound %d/%d)",
		b.inbound.Len(), b.inbound.Cap(), b.outbound.Len(), b.outbound.Cap())
}
