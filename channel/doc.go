// Package channel provides the bounded queues that carry messages between
// the host and the engine, and the registry that binds them once per process.
//
// The registry hands out directional handles. The engine gets a Binding:
//
//	b, err := channel.Default.Bind()
//	msg, ok := b.Inbound().TryRecv()
//	err = b.Outbound().TrySend(abi.OutMsgPong)
//
// The host facade gets the inverse through Registry.Host:
//
//	host, ok := channel.Default.Host()
//	err := host.Inbound.TrySend(abi.InMsgPing)
//	msg, err := host.Outbound.RecvTimeout(time.Second)
//
// Write access to the outbound queue never leaves the engine side and write
// access to the inbound queue never leaves the host side, except for
// Binding.InboundMock which exists for tests.
package channel
