package async

import "context"

// Future holds the eventual result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete must be called exactly once.
func (f *Future[T]) complete(val T, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the task finishes or ctx is done. Cancelling ctx does
// not cancel the task itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
