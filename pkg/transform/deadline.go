package transform

import (
	"context"
	"time"
)

// DefaultTransformTimeout is the default 60 000 ms wall-clock
// cap on a single file's transform.
const DefaultTransformTimeout = 60 * time.Second

// RunWithDeadline runs fn in its own goroutine and returns its result, or a
// TimeoutError if fn has not returned within timeout. Modeled on
// pkg/shutdown/controller.go's ctx.Done()/select race between "work
// finished" and "stop condition fired" — here the "stop condition" is
// simply a timer instead of a signal or stop file.
func RunWithDeadline(ctx context.Context, timeout time.Duration, fn func() (*Result, error)) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTransformTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := fn()
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, &TimeoutError{Elapsed: timeout.String()}
	}
}
