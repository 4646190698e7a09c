package messenger

import (
	"container/list"
	"context"
	"sync"
)

// queue is an unbounded FIFO with many producers and a single consumer.
// push never blocks on the consumer.
type queue[T any] struct {
	mu     sync.Mutex
	items  *list.List
	notify chan struct{}
	closed bool
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{
		items:  list.New(),
		notify: make(chan struct{}, 1),
	}
}

func (q *queue[T]) push(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items.PushBack(v)
	q.mu.Unlock()

	q.wake()
	return nil
}

// pop blocks until an item is available. It returns false once ctx is done,
// or once the queue is closed and fully drained.
func (q *queue[T]) pop(ctx context.Context) (T, bool) {
	var zero T
	for {
		if ctx.Err() != nil {
			return zero, false
		}

		q.mu.Lock()
		if front := q.items.Front(); front != nil {
			q.items.Remove(front)
			q.mu.Unlock()
			return front.Value.(T), true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, false
		}

		select {
		case <-ctx.Done():
			return zero, false
		case <-q.notify:
		}
	}
}

// close rejects further pushes; items already queued can still be popped.
func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wake()
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
