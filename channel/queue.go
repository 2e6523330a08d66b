package channel

import (
	"context"
	"sync"
	"time"

	"github.com/wippyai/cortex-bridge/errors"
)

// Queue is a bounded FIFO. Capacity is fixed at creation. A zero-capacity
// queue is a rendezvous: a send only succeeds while a receiver is waiting.
//
// Queue is safe for concurrent use. Sends never block. Close wakes every
// blocked receiver; messages still buffered remain receivable.
type Queue[T any] struct {
	name      string
	ch        chan T
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue holding at most capacity messages.
func NewQueue[T any](name string, capacity int) *Queue[T] {
	return &Queue[T]{
		name: name,
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

func (q *Queue[T]) Name() string { return q.name }

func (q *Queue[T]) Cap() int { return cap(q.ch) }

func (q *Queue[T]) Len() int { return len(q.ch) }

// IsFull reports whether a send would fail for lack of room.
// A zero-capacity queue always reports full.
func (q *Queue[T]) IsFull() bool { return len(q.ch) >= cap(q.ch) }

// TrySend enqueues v without blocking.
func (q *Queue[T]) TrySend(v T) error {
	select {
	case <-q.done:
		return errors.QueueClosed(errors.PhaseSend, q.name)
	default:
	}

	select {
	case q.ch <- v:
		return nil
	default:
		return errors.QueueFull(q.name, cap(q.ch))
	}
}

// TryRecv dequeues the oldest message without blocking.
func (q *Queue[T]) TryRecv() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Recv blocks until a message arrives, the queue is closed and drained, or
// ctx is done.
func (q *Queue[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-q.done:
		return q.drainOne()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// RecvTimeout is Recv bounded by d.
func (q *Queue[T]) RecvTimeout(d time.Duration) (T, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case v := <-q.ch:
		return v, nil
	case <-q.done:
		return q.drainOne()
	case <-timer.C:
		var zero T
		return zero, errors.Timeout(q.name, d)
	}
}

// Close tears the queue down. Idempotent.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Closed reports whether Close was called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

func (q *Queue[T]) drainOne() (T, error) {
	if v, ok := q.TryRecv(); ok {
		return v, nil
	}
	var zero T
	return zero, errors.QueueClosed(errors.PhaseReceive, q.name)
}
