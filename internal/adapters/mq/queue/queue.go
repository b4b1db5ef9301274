// Package queue provides the bounded buffer between match-end ingestion
// and the settlement workers.
//
// Settlement hits the rating store synchronously, so callers on
// latency-sensitive paths hand results to this queue instead of settling
// inline.
package queue

import (
	"context"
	"sync"

	"github.com/JericNisperos/pvparena/internal/domain/model"
	"github.com/JericNisperos/pvparena/pkg/metrics"
)

// Default queue configuration constants.
const defaultCapacity = 10000

// Result is the payload type flowing through the queue.
type Result = model.Result

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a match result. Returns false when the queue is full
	// or closed and the result was not accepted.
	Enqueue(ctx context.Context, r Result) bool

	// Dequeue returns a channel delivering results as they arrive. The
	// channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Result

	// Len returns the current number of queued results.
	Len(ctx context.Context) int

	// Close stops the queue; no further results can be enqueued.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	results  chan Result
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.results = make(chan Result, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a result without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Result) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop()
		return false
	}

	select {
	case q.results <- r:
		metrics.RecordQueueEnqueue()
		q.publishDepth()
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop()
		return false
	default:
		// Buffer full: reject rather than stall the caller.
		metrics.RecordQueueDrop()
		return false
	}
}

// Dequeue returns a channel delivering queued results.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for r := range q.results {
			select {
			case out <- r:
				metrics.RecordQueueDequeue()
				q.publishDepth()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued results.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	n := len(q.results)
	q.publishDepth()
	return n
}

// Close stops the queue. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.results)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishDepth() {
	size := len(q.results)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
