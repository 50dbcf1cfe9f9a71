// Package effects runs fire-and-forget side effects (persistence writes,
// alerts) in submission order on a single background worker.
package effects

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single job.
const DefaultTimeout = 10 * time.Second

// Job is a side effect.
type Job func(ctx context.Context) error

type item struct {
	name string
	fn   Job
	done chan struct{}
}

// Queue executes submitted jobs one at a time in FIFO order. Submit never
// blocks on job execution, so it is safe to call while holding a lock.
type Queue struct {
	log     zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []item
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

// NewQueue starts a queue worker.
func NewQueue(log zerolog.Logger) *Queue {
	q := &Queue{
		log:     log.With().Str("component", "effects").Logger(),
		timeout: DefaultTimeout,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues fn. Jobs submitted after Close are dropped with a warning.
func (q *Queue) Submit(name string, fn Job) {
	q.enqueue(item{name: name, fn: fn})
}

// Flush blocks until every job submitted before the call has run.
func (q *Queue) Flush() {
	done := make(chan struct{})
	if !q.enqueue(item{name: "flush", done: done}) {
		return
	}
	<-done
}

// Close runs the remaining jobs and stops the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.stopped
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.signal()
	<-q.stopped
}

func (q *Queue) enqueue(it item) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Warn().Str("job", it.name).Msg("effect dropped: queue closed")
		return false
	}
	q.pending = append(q.pending, it)
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.stopped)

	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, it := range batch {
			q.exec(it)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}

func (q *Queue) exec(it item) {
	if it.done != nil {
		defer close(it.done)
	}
	if it.fn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Str("job", it.name).Interface("panic", r).Msg("effect panicked")
		}
	}()

	if err := it.fn(ctx); err != nil {
		q.log.Error().Err(err).Str("job", it.name).Msg("effect failed")
	}
}
