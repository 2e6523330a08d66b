// Package schedule runs per-tick systems in fixed phases at a fixed cadence.
//
// Systems are plain functions registered under a Phase. Every tick runs all
// phases in order (First, PreUpdate, Update, PostUpdate, Last), and within a
// phase, systems run in registration order:
//
//	s := schedule.New().
//		Add(schedule.PreUpdate, "inbound", processInbound).
//		Add(schedule.Last, "clog", checkClog)
//	loop := schedule.NewLoop(s, 200*time.Millisecond)
//	final, err := loop.Run(ctx)
//
// A system ends the loop by calling Tick.Exit; the current tick still
// completes. Loop.Step runs a single tick for callers that drive the cadence
// themselves.
package schedule
