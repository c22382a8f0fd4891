package waipu

import (
	"context"
	"fmt"
	"runtime/trace"
)

// Outcome is the result of the deletion phase for one chat.
type Outcome struct {
	Chunks      int  // chunks submitted, or skipped in the dry run
	Deleted     int  // messages deleted
	WouldDelete int  // messages that would have been deleted in the dry run
	DryRun      bool // no delete requests were made
}

// Deleter deletes messages in chunks.  If the server asks to wait, Deleter
// waits and retries the same chunk.
type Deleter struct {
	r       Remover
	chunkSz int
	dryRun  bool
	fw      floodWaiter
	log     Logger
}

// NewDeleter returns the deleter that submits at most chunkSize IDs per
// request.  chunkSize must be in [1, MaxChunkSize].  If dryRun is true, the
// remover is never called.
func NewDeleter(r Remover, chunkSize int, dryRun bool, opts ...Option) (*Deleter, error) {
	if chunkSize < 1 || MaxChunkSize < chunkSize {
		return nil, fmt.Errorf("%w: chunk size must be in [1, %d], got %d", ErrInvalidArgument, MaxChunkSize, chunkSize)
	}
	st := applyOpts(opts)
	return &Deleter{
		r:       r,
		chunkSz: chunkSize,
		dryRun:  dryRun,
		fw:      floodWaiter{sleep: st.sleep, log: st.log},
		log:     st.log,
	}, nil
}

// DryRun returns true if the deleter is in the dry run mode.
func (d *Deleter) DryRun() bool {
	return d.dryRun
}

// Delete deletes ids in chat.  On failure it returns the partial outcome and
// a *RemoteError listing the IDs that were not deleted.  If ctx is cancelled,
// the chunk that is being deleted is completed, and the rest are not
// attempted.
func (d *Deleter) Delete(ctx context.Context, chat Chat, ids []int) (Outcome, error) {
	ctx, task := trace.NewTask(ctx, "Delete")
	defer task.End()

	out := Outcome{DryRun: d.dryRun}
	if len(ids) == 0 {
		return out, nil
	}
	if d.dryRun {
		d.log.Printf("dry run: would delete %d messages in %q", len(ids), chat.Title)
	} else {
		d.log.Printf("deleting %d messages in %q", len(ids), chat.Title)
	}
	d.log.Debugf("message IDs: %v", ids)

	chunks := splitBy(d.chunkSz, ids, func(i int) int { return ids[i] })
	trace.Logf(ctx, "logic", "split chunks: %d", len(chunks))

	done := 0 // number of ids processed
	for _, chunk := range chunks {
		if d.dryRun {
			d.log.Debugf("dry run: skipping deletion of %d messages in this chunk", len(chunk))
			out.Chunks++
			out.WouldDelete += len(chunk)
			done += len(chunk)
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, d.remoteErr(chat, ids[done:], err)
		}
		n, err := d.deleteChunk(ctx, chat, chunk)
		if err != nil {
			trace.Logf(ctx, "api", "revoke error: %s", err)
			return out, d.remoteErr(chat, ids[done:], err)
		}
		out.Chunks++
		out.Deleted += n
		done += len(chunk)
		d.log.Debugf("deleted %d of %d messages in %q", done, len(ids), chat.Title)
	}
	trace.Log(ctx, "logic", "ok")
	return out, nil
}

// deleteChunk deletes a single chunk, retrying on flood wait.  The request
// itself is not cancelled with ctx, so that the chunk is either deleted or
// not attempted.
func (d *Deleter) deleteChunk(ctx context.Context, chat Chat, chunk []int) (int, error) {
	var n int
	err := d.fw.do(ctx, fmt.Sprintf("delete in %q", chat.Title), func() error {
		var err error
		n, err = d.r.DeleteMessages(context.WithoutCancel(ctx), chat, chunk)
		return err
	})
	return n, err
}

func (d *Deleter) remoteErr(chat Chat, remaining []int, err error) error {
	rest := make([]int, len(remaining))
	copy(rest, remaining)
	return &RemoteError{ChatID: chat.ID, Remaining: rest, Err: err}
}

// splitBy splits the input of M items to X chunks of `n` items.
// For each element of input, the fn is called, that should return
// the value.
func splitBy[T, S any](n int, input []S, fn func(i int) T) [][]T {
	var out [][]T = make([][]T, 0, (len(input)+n-1)/n)
	var chunk []T
	for i := range input {
		if i > 0 && i%n == 0 {
			out = append(out, chunk)
			chunk = make([]T, 0, n)
		}
		chunk = append(chunk, fn(i))
	}
	if len(chunk) > 0 {
		out = append(out, chunk)
	}
	return out
}
