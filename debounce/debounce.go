// Package debounce coalesces bursts of watcher events into one flattened
// batch per sync pass (spec.md §4.3). It absorbs editor save-storms — many
// filesystem events within ~100ms — into a single accumulator that
// downstream canonicalizes and de-duplicates.
package debounce

import (
	"context"
	"time"
)

// Queue is the blocking queue of path batches fed by the filesystem
// watcher. Push blocks only when the channel buffer is full; Debouncer
// only ever calls the blocking/non-blocking receive sides.
type Queue struct {
	ch chan []string
}

// NewQueue returns a Queue with the given buffer depth. The queue is
// conceptually unbounded (spec.md §9); callers that want backpressure
// instead of unbounded growth can still pick a large buffer and rely on
// debouncing to keep it drained.
func NewQueue(buffer int) *Queue {
	return &Queue{ch: make(chan []string, buffer)}
}

// Push enqueues one watcher batch. Never blocks if the channel has room;
// callers sizing the buffer generously keep the watcher thread honest to
// spec.md §5's "never blocks on the queue" rule.
func (q *Queue) Push(batch []string) {
	q.ch <- batch
}

// Len reports how many batches are currently buffered, without blocking.
// Used by the orchestrator to decide whether to fire the completion
// callback at the end of a sync pass (spec.md §4.8).
func (q *Queue) Len() int {
	return len(q.ch)
}

// Debouncer implements the debouncedDeque algorithm of spec.md §4.3.
type Debouncer struct {
	queue    *Queue
	debounce time.Duration
	sleepFn  func(time.Duration)
}

// New returns a Debouncer draining queue, sleeping debounce between
// quiescence checks.
func New(queue *Queue, debounce time.Duration) *Debouncer {
	return &Debouncer{queue: queue, debounce: debounce, sleepFn: time.Sleep}
}

// Collect blocks until at least one batch has arrived, then repeatedly
// sleeps debounce and drains again until a full debounce period passes
// with nothing new queued. It returns the flattened accumulator, or
// (nil, false) if ctx was cancelled while waiting for the first batch.
//
// Algorithm (spec.md §4.3):
//  1. Block until one batch arrives; append its elements.
//  2. Non-blocking drain of anything already queued.
//  3. Sleep debounceMs.
//  4. Non-blocking drain again. If nothing was drained, return. Otherwise
//     go to 3.
func (d *Debouncer) Collect(ctx context.Context) ([]string, bool) {
	var acc []string

	select {
	case batch := <-d.queue.ch:
		acc = append(acc, batch...)
	case <-ctx.Done():
		return nil, false
	}

	acc = append(acc, d.drainNonBlocking()...)

	for {
		select {
		case <-ctx.Done():
			return acc, true
		default:
		}

		d.sleepFn(d.debounce)

		drained := d.drainNonBlocking()
		if len(drained) == 0 {
			return acc, true
		}
		acc = append(acc, drained...)
	}
}

func (d *Debouncer) drainNonBlocking() []string {
	var out []string
	for {
		select {
		case batch := <-d.queue.ch:
			out = append(out, batch...)
		default:
			return out
		}
	}
}
