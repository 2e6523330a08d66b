// Package engine runs the tick loop behind the host bridge.
//
// New binds a channel.Registry (which queues the started message before any
// tick), then registers three systems on a phased schedule:
//
//   - First: the liveness gate, which ends the run once no heartbeat has
//     arrived for Config.HeartbeatTimeout.
//   - PreUpdate: the inbound processor, which drains host messages in order
//     and answers each ping with a pong.
//   - Last: the clog monitor, which evicts the oldest outbound message after
//     the host has left the queue full for more than MaxFullTicks ticks.
//
// Plugins add their own systems in Build, usually in schedule.Update.
//
// Basic usage:
//
//	app, err := engine.New(engine.WithConfig(engine.ConfigFromEnv(os.LookupEnv)))
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx)
//
// Run returns nil when the liveness gate shuts the engine down and closes the
// queues, which wakes any host blocked on a receive. Update runs a single tick
// for callers that drive the cadence themselves.
package engine
