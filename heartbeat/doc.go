// Package heartbeat keeps an autorunning engine alive only while someone is
// asking for it.
//
// Callers that cannot see the engine's tick cadence set a Flag. Once per
// tick the engine's Gate consumes the flag: a heartbeat resets the idle
// duration, silence grows it, and once it exceeds the timeout the gate
// returns Shutdown. Shutdown is a normal end of the run loop, not an error,
// and no farewell message is sent to the host.
package heartbeat
