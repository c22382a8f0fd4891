package waipu

import (
	"context"
	"time"
)

// SleepFunc waits for d or until ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// floodWaiter calls fn until it succeeds or fails with an error other than
// flood wait.  There's no limit on number of attempts, server is trusted to
// report the wait time.
type floodWaiter struct {
	sleep SleepFunc
	log   Logger
}

func (fw floodWaiter) do(ctx context.Context, what string, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			return nil
		}
		wait, ok := AsFloodWait(err)
		if !ok {
			return err
		}
		fw.log.Printf("flood control: %s: waiting %s before retrying", what, wait)
		if err := fw.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
