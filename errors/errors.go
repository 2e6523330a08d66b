package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseBind     Phase = "bind"     // registry binding
	PhaseDispatch Phase = "dispatch" // inbound message handling
	PhaseSend     Phase = "send"     // queue send
	PhaseReceive  Phase = "receive"  // queue receive
	PhaseConfig   Phase = "config"   // configuration loading
	PhasePlugin   Phase = "plugin"   // decision plugin loading and ticking
	PhaseRuntime  Phase = "runtime"  // tick loop
)

// Kind categorizes the error
type Kind string

const (
	KindAlreadyBound   Kind = "already_bound"
	KindInitialSend    Kind = "initial_send"
	KindQueueFull      Kind = "queue_full"
	KindQueueClosed    Kind = "queue_closed"
	KindNotBound       Kind = "not_bound"
	KindInvalidConfig  Kind = "invalid_config"
	KindInvalidMessage Kind = "invalid_message"
	KindMissingExport  Kind = "missing_export"
	KindInstantiation  Kind = "instantiation"
	KindTimeout        Kind = "timeout"
	KindTrap           Kind = "trap"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Queue  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Queue != "" {
		b.WriteString(" on ")
		b.WriteString(e.Queue)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// An empty Phase on target matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Queue sets the name of the queue involved
func (b *Builder) Queue(name string) *Builder {
	b.err.Queue = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// AlreadyBound creates an error for a second registry bind
func AlreadyBound(what string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindAlreadyBound,
		Detail: fmt.Sprintf("%s is already bound", what),
	}
}

// InitialSend creates an error for a failed mandatory startup notification
func InitialSend(queue string, cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindInitialSend,
		Queue:  queue,
		Detail: "initial message could not be queued",
		Cause:  cause,
	}
}

// QueueFull creates an error for a send on a queue at capacity
func QueueFull(queue string, capacity int) *Error {
	return &Error{
		Phase:  PhaseSend,
		Kind:   KindQueueFull,
		Queue:  queue,
		Detail: fmt.Sprintf("capacity %d reached", capacity),
		Value:  capacity,
	}
}

// QueueClosed creates an error for an operation on a torn down queue
func QueueClosed(phase Phase, queue string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindQueueClosed,
		Queue: queue,
	}
}

// Timeout creates an error for a receive that gave up waiting
func Timeout(queue string, after time.Duration) *Error {
	return &Error{
		Phase:  PhaseReceive,
		Kind:   KindTimeout,
		Queue:  queue,
		Detail: fmt.Sprintf("nothing received within %s", after),
		Value:  after,
	}
}

// NotBound creates an error for access before the registry was bound
func NotBound(what string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindNotBound,
		Detail: fmt.Sprintf("%s not bound", what),
	}
}

// InvalidConfig creates a configuration error
func InvalidConfig(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidMessage creates an error for a discriminant outside the closed message set
func InvalidMessage(phase Phase, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidMessage,
		Detail: fmt.Sprintf("unknown message discriminant %v", value),
		Value:  value,
	}
}

// MissingExport creates an error for a plugin lacking a required export
func MissingExport(name string) *Error {
	return &Error{
		Phase:  PhasePlugin,
		Kind:   KindMissingExport,
		Detail: fmt.Sprintf("export %q not found", name),
	}
}

// Instantiation creates a plugin instantiation error
func Instantiation(detail string, cause error) *Error {
	return &Error{
		Phase:  PhasePlugin,
		Kind:   KindInstantiation,
		Detail: detail,
		Cause:  cause,
	}
}

// Trap creates an error for a guest call that failed at runtime
func Trap(detail string, cause error) *Error {
	return &Error{
		Phase:  PhasePlugin,
		Kind:   KindTrap,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsQueueFull reports whether err is a full-queue send failure.
func IsQueueFull(err error) bool {
	return errors.Is(err, &Error{Kind: KindQueueFull})
}

// IsQueueClosed reports whether err was caused by a torn down queue.
func IsQueueClosed(err error) bool {
	return errors.Is(err, &Error{Kind: KindQueueClosed})
}

// IsTimeout reports whether err is a receive timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, &Error{Kind: KindTimeout})
}
