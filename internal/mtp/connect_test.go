package mtp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	err   error // returned before calling f
	delay time.Duration
}

func (r fakeRunner) Run(ctx context.Context, f func(ctx context.Context) error) error {
	if r.err != nil {
		return r.err
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f(ctx)
}

func Test_connect(t *testing.T) {
	t.Run("connects and stops", func(t *testing.T) {
		stop, err := connect(context.Background(), fakeRunner{})
		require.NoError(t, err)
		assert.NoError(t, stop())
	})
	t.Run("run error", func(t *testing.T) {
		errConn := errors.New("no route to host")
		stop, err := connect(context.Background(), fakeRunner{err: errConn})
		assert.ErrorIs(t, err, errConn)
		assert.Nil(t, stop)
	})
	t.Run("cancelled before connected", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		stop, err := connect(ctx, fakeRunner{delay: time.Minute})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, stop)
	})
	t.Run("connection outlives the context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		stop, err := connect(ctx, fakeRunner{})
		require.NoError(t, err)
		cancel()
		assert.NoError(t, stop())
	})
}
