package parser

import (
	"context"
	"sync"

	"github.com/calderk/glean/internal/cursor"
	"github.com/calderk/glean/internal/event"
)

// feedQueue is a thread-safe FIFO feeding decoded events to the parse
// goroutine.
//
// The queue is unbounded so a fast producer (e.g. a network reader
// flushing a whole turn at once) never blocks. Thread-safety exists for
// the producer side only; the single parse goroutine is the only
// consumer.
//
// A buffered signal channel of size one coalesces wakeups and lets the
// consumer wait with context awareness.
type feedQueue struct {
	mu     sync.Mutex
	events []event.Event
	closed bool
	signal chan struct{}
}

func newFeedQueue() *feedQueue {
	return &feedQueue{
		events: make([]event.Event, 0, 32),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds an event to the back of the queue.
// Returns false if the queue has been closed.
func (q *feedQueue) enqueue(ev event.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue attempts to dequeue without blocking.
func (q *feedQueue) tryDequeue() (event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event.Event{}, false
	}
	ev := q.events[0]
	q.events[0] = event.Event{} // release for GC
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return ev, true
}

func (q *feedQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// close marks the end of input. Idempotent; wakes any blocked waiter.
func (q *feedQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Next implements cursor.Feeder: it blocks until an event is available,
// the queue is closed and drained (ErrExhausted), or the context ends.
func (q *feedQueue) Next(ctx context.Context) (event.Event, error) {
	for {
		if ev, ok := q.tryDequeue(); ok {
			return ev, nil
		}
		if q.drained() {
			return event.Event{}, cursor.ErrExhausted
		}
		select {
		case <-ctx.Done():
			return event.Event{}, ctx.Err()
		case <-q.signal:
			// Signal received or queue closed; loop back to tryDequeue.
		}
	}
}
