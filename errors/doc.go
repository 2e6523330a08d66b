// Package errors provides structured error types for the cortex bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the queue involved, a detail message, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSend, errors.KindQueueFull).
//		Queue("outbound").
//		Detail("capacity %d reached", 100).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.QueueFull("inbound", 100)
//	err := errors.AlreadyBound("channel registry")
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches errors of that Kind from any phase.
package errors
