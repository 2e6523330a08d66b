package channel

import (
	"context"
	"time"

	"github.com/wippyai/cortex-bridge/errors"
)

// Sender is the write half of a Queue. The zero Sender is unbound and
// rejects every send.
type Sender[T any] struct {
	q *Queue[T]
}

// TrySend enqueues v without blocking.
func (s Sender[T]) TrySend(v T) error {
	if s.q == nil {
		return errors.NotBound("sender")
	}
	return s.q.TrySend(v)
}

// Bound reports whether the handle refers to a queue.
func (s Sender[T]) Bound() bool { return s.q != nil }

func (s Sender[T]) Len() int {
	if s.q == nil {
		return 0
	}
	return s.q.Len()
}

func (s Sender[T]) Cap() int {
	if s.q == nil {
		return 0
	}
	return s.q.Cap()
}

// Receiver is the read half of a Queue. The zero Receiver is unbound and
// never yields a message.
type Receiver[T any] struct {
	q *Queue[T]
}

// Bound reports whether the handle refers to a queue.
func (r Receiver[T]) Bound() bool { return r.q != nil }

// TryRecv dequeues the oldest message without blocking.
func (r Receiver[T]) TryRecv() (T, bool) {
	if r.q == nil {
		var zero T
		return zero, false
	}
	return r.q.TryRecv()
}

// Recv blocks until a message arrives, the queue is torn down, or ctx is done.
func (r Receiver[T]) Recv(ctx context.Context) (T, error) {
	if r.q == nil {
		var zero T
		return zero, errors.NotBound("receiver")
	}
	return r.q.Recv(ctx)
}

// RecvTimeout blocks for at most d.
func (r Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	if r.q == nil {
		var zero T
		return zero, errors.NotBound("receiver")
	}
	return r.q.RecvTimeout(d)
}

func (r Receiver[T]) Len() int {
	if r.q == nil {
		return 0
	}
	return r.q.Len()
}

func (r Receiver[T]) Cap() int {
	if r.q == nil {
		return 0
	}
	return r.q.Cap()
}

// IsFull reports whether the underlying queue is at capacity.
func (r Receiver[T]) IsFull() bool {
	return r.q != nil && r.q.IsFull()
}

// NewPair creates a standalone queue and returns both halves.
func NewPair[T any](name string, capacity int) (Sender[T], Receiver[T]) {
	q := NewQueue[T](name, capacity)
	return Sender[T]{q: q}, Receiver[T]{q: q}
}
