// Package async runs blocking calls on a fixed-size worker pool and hands
// back futures for their results.
package async

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Defaults used by NewExecutor for non-positive arguments.
const (
	DefaultWorkers   = 3
	DefaultQueueSize = 64
)

var (
	// ErrClosed is reported by futures submitted after Close.
	ErrClosed = errors.New("executor closed")

	// ErrQueueFull is reported when every worker is busy and the queue is full.
	ErrQueueFull = errors.New("executor queue full")
)

// Executor is a fixed pool of workers draining a bounded task queue.
type Executor struct {
	tasks chan func()
	wg    conc.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewExecutor starts workers goroutines sharing a queue of queueSize tasks.
func NewExecutor(workers, queueSize int) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	e := &Executor{tasks: make(chan func(), queueSize)}
	for i := 0; i < workers; i++ {
		e.wg.Go(e.work)
	}
	return e
}

func (e *Executor) work() {
	for task := range e.tasks {
		task()
	}
}

// enqueue never blocks: a full queue is reported as ErrQueueFull.
func (e *Executor) enqueue(task func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}
	select {
	case e.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting tasks and waits for queued and running ones.
func (e *Executor) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()

	e.wg.Wait()
}

// Submit schedules fn on the executor. The returned future completes with
// fn's result, with ctx's error if ctx is done before fn starts, or with the
// recovered panic if fn panics.
func Submit[T any](ctx context.Context, e *Executor, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	task := func() {
		if err := ctx.Err(); err != nil {
			var zero T
			f.complete(zero, err)
			return
		}

		var (
			val T
			err error
			pc  panics.Catcher
		)
		pc.Try(func() { val, err = fn(ctx) })
		if r := pc.Recovered(); r != nil {
			var zero T
			f.complete(zero, r.AsError())
			return
		}
		f.complete(val, err)
	}

	if err := e.enqueue(task); err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}
