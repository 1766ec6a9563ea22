package observation

import (
	"context"

	"github.com/sandrolain/gobinding/pkg/observability"
)

// FlushQueue deduplicates observers marked dirty and flushes them in FIFO
// order. Adding to an idle queue drains it before Add returns; items added
// while a drain is running are serviced by that same drain.
type FlushQueue struct {
	items    []Flushable
	pending  map[Flushable]struct{}
	flushing bool
	batch    int
	epoch    uint64
	metrics  observability.MetricsRecorder
}

// NewFlushQueue creates an empty queue.
func NewFlushQueue(metrics observability.MetricsRecorder) *FlushQueue {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &FlushQueue{
		pending: make(map[Flushable]struct{}),
		metrics: metrics,
	}
}

// Add enqueues item unless it is already pending, then drains the queue
// unless a drain or a batch is in progress.
func (q *FlushQueue) Add(item Flushable) {
	if _, ok := q.pending[item]; !ok {
		q.pending[item] = struct{}{}
		q.items = append(q.items, item)
	}
	if q.flushing || q.batch > 0 {
		return
	}
	q.drain()
}

// Batch runs fn with draining suspended; the queue drains once when the
// outermost batch returns.
func (q *FlushQueue) Batch(fn func()) {
	q.batch++
	defer func() {
		q.batch--
		if q.batch == 0 && !q.flushing && len(q.items) > 0 {
			q.drain()
		}
	}()
	fn()
}

// Count returns the number of pending items.
func (q *FlushQueue) Count() int { return len(q.items) }

// Flushing reports whether a drain is in progress.
func (q *FlushQueue) Flushing() bool { return q.flushing }

// Epoch identifies the drain in progress. It returns 0 when the queue is idle.
func (q *FlushQueue) Epoch() uint64 {
	if !q.flushing {
		return 0
	}
	return q.epoch
}

// Clear drops every pending item without flushing it.
func (q *FlushQueue) Clear() {
	q.items = nil
	q.pending = make(map[Flushable]struct{})
}

func (q *FlushQueue) drain() {
	q.flushing = true
	q.epoch++
	flushed := 0
	defer func() {
		q.flushing = false
		q.metrics.RecordFlush(context.Background(), flushed)
	}()
	for len(q.items) > 0 {
		item := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		// Removed before flushing so that the item can re-add itself.
		delete(q.pending, item)
		item.Flush()
		flushed++
	}
	q.items = nil
}
