package queue

import (
	"context"
	"errors"
	"sync"
)

// DefaultCapacity is the number of prepared items held ahead of the presenter.
const DefaultCapacity = 5

// ErrClosed is returned by blocking operations after Close.
var ErrClosed = errors.New("queue closed")

// Queue is a bounded FIFO of prepared items.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool
	changed  chan struct{}
}

// New creates a queue holding at most capacity items. A capacity below one
// is replaced with DefaultCapacity.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

// notify wakes every waiter. Callers must hold q.mu.
func (q *Queue[T]) notify() {
	close(q.changed)
	q.changed = make(chan struct{})
}

// wait blocks until the next state change or until ctx is done.
func (q *Queue[T]) wait(ctx context.Context, changed <-chan struct{}) error {
	select {
	case <-changed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Push appends item, blocking while the queue is full.
func (q *Queue[T]) Push(ctx context.Context, item T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if len(q.items) < q.capacity {
			q.items = append(q.items, item)
			q.notify()
			q.mu.Unlock()
			return nil
		}
		changed := q.changed
		q.mu.Unlock()

		if err := q.wait(ctx, changed); err != nil {
			return err
		}
	}
}

// Pop removes and returns the oldest item, blocking while the queue is empty.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.take()
			q.mu.Unlock()
			return item, nil
		}
		if q.closed {
			q.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		changed := q.changed
		q.mu.Unlock()

		if err := q.wait(ctx, changed); err != nil {
			var zero T
			return zero, err
		}
	}
}

// TryPop removes and returns the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.take(), true
}

// take pops the head. Callers must hold q.mu and ensure the queue is non-empty.
func (q *Queue[T]) take() T {
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	q.notify()
	return item
}

// WaitForSpace blocks until at least one slot is free. The producer calls it
// before decoding so that no decoded item waits outside the queue.
func (q *Queue[T]) WaitForSpace(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if len(q.items) < q.capacity {
			q.mu.Unlock()
			return nil
		}
		changed := q.changed
		q.mu.Unlock()

		if err := q.wait(ctx, changed); err != nil {
			return err
		}
	}
}

// Full reports whether the queue is at capacity.
func (q *Queue[T]) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) >= q.capacity
}

// Len returns the current number of items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the capacity.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Close stops further pushes and wakes all waiters. Items already queued
// can still be popped or drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notify()
}

// Drain removes every queued item and hands each to release in FIFO order.
func (q *Queue[T]) Drain(release func(T)) int {
	q.mu.Lock()
	items := q.items
	q.items = make([]T, 0, q.capacity)
	if len(items) > 0 {
		q.notify()
	}
	q.mu.Unlock()

	if release != nil {
		for _, item := range items {
			release(item)
		}
	}
	return len(items)
}
