// Package bridge is the host-facing side of the engine.
//
// # Lifecycle
//
//  1. Start (or CreateAndAutorun on a dedicated thread) binds the queues and
//     queues the started message.
//  2. The host sends pings with WritePing and keeps the engine alive with
//     RequestHeartbeat.
//  3. The host reads replies with AwaitMessage or TryGetMessage.
//  4. Without heartbeats the engine stops after the configured timeout and
//     every later receive returns None.
//
// # Thread Safety
//
// All functions are safe for concurrent use. WritePing never blocks,
// TryGetMessage waits at most TryReceiveTimeout, and AwaitMessage blocks
// until a message arrives or the engine is torn down.
//
// # Failure
//
// Initialization failures are fatal: CreateAndAutorun logs the error and
// panics. That covers a second start in the same process, invalid
// configuration, and a plugin that fails to load. Use Run to get the error
// instead.
package bridge
