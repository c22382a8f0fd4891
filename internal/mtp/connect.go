package mtp

import (
	"context"
	"errors"
)

// runner is the client that keeps the connection open while f is running.
type runner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
}

// stopFunc disconnects and waits until Run returns.
type stopFunc func() error

// connect runs the client in background and blocks until the connection is
// established, ctx is cancelled, or Run fails.
func connect(ctx context.Context, cl runner) (stopFunc, error) {
	// the connection lives until stopped, not until ctx is done.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	ready := make(chan struct{})
	errC := make(chan error, 1)
	go func() {
		defer close(errC)
		errC <- cl.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		})
	}()

	select {
	case <-ctx.Done():
		cancel()
		<-errC
		return nil, ctx.Err()
	case err := <-errC:
		cancel()
		if err == nil {
			err = errors.New("connection closed")
		}
		return nil, err
	case <-ready:
	}

	return func() error {
		cancel()
		return <-errC
	}, nil
}
