// Package cortexbridge connects a foreign host to an autonomous tick-driven
// decision engine through bounded message queues.
//
// The host talks to the engine through a small C function table. Requests go
// into a bounded inbound queue, the engine answers on a bounded outbound
// queue, and the engine keeps running only while the host sends heartbeats.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	cortexbridge/
//	├── abi/           Boundary types, option encoding, layouts, C and WIT renderers
//	├── channel/       Bounded queues and the bind-once registry
//	├── heartbeat/     Liveness flag and idle-timeout gate
//	├── schedule/      Phased per-tick scheduler and fixed-cadence loop
//	├── engine/        Engine app: inbound processor, clog monitor, liveness gate
//	├── plugin/        WebAssembly decision plugin host (wazero)
//	├── bridge/        Host facade: start, keepalive, send and receive
//	├── errors/        Structured error types
//	├── cmd/libcortex  C shared library exports
//	└── cmd/cortex-abi Prints the C header, WIT interface and type layouts
//
// # Quick Start
//
// From C, after building with -buildmode=c-shared:
//
//	cortex_start();
//	cortex_option_out_msg m = cortex_await_message(); // started
//	cortex_write_ping();
//	cortex_keepalive();
//	m = cortex_try_get_message();                      // pong
//
// From Go, the same operations are on the bridge package:
//
//	bridge.Start()
//	started := bridge.AwaitMessage()
//	bridge.WritePing()
//	bridge.RequestHeartbeat()
//	pong := bridge.TryGetMessage()
//
// # Backpressure
//
// Host sends never block: WritePing reports false when the inbound queue is
// full. If the host stops reading, the outbound queue fills up; once it has
// been full for more than engine.MaxFullTicks consecutive ticks the engine
// drops the oldest message so that it can keep making progress.
//
// # Lifetime
//
// The queues are created once per process. The engine stops when no
// heartbeat arrives for the configured timeout (two minutes by default);
// stopping tears the queues down, which wakes any host blocked in
// AwaitMessage with an absent result. A stopped engine cannot be restarted
// in the same process.
//
// # Configuration
//
// The engine reads CORTEX_AUTORUN_RATE_MILLISECONDS,
// CORTEX_AUTORUN_HEARTBEAT_TIMEOUT_SECONDS, CORTEX_INBOUND_CAPACITY,
// CORTEX_OUTBOUND_CAPACITY, CORTEX_PLUGIN_PATH, CORTEX_LOG_LEVEL and
// CORTEX_LOG_FORMAT from the environment. See engine.ConfigFromEnv and
// bridge.NewLogger.
package cortexbridge
