package queue

import "github.com/jonboulle/clockwork"

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithClock sets the clock used to stamp items.
func WithClock(c clockwork.Clock) Option {
	return func(q *InMemoryQueue) {
		if c != nil {
			q.clock = c
		}
	}
}
