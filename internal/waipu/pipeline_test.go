package waipu

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/tgcleaner/internal/cutoff"
)

var (
	chatA = Chat{ID: 1, Title: "A", Kind: KindGroup}
	chatB = Chat{ID: 2, Title: "B", Kind: KindBroadcast}
)

func newTestPipeline(t *testing.T, tg Telegramer, dryRun bool, opts ...Option) *Pipeline {
	t.Helper()
	pg, err := NewPaginator(tg, 100, opts...)
	require.NoError(t, err)
	d, err := NewDeleter(tg, 100, dryRun, opts...)
	require.NoError(t, err)
	return NewPipeline(pg, d, opts...)
}

func deleteAll() *cutoff.Policy {
	p := cutoff.New()
	p.SetDeleteAll()
	return p
}

func TestPipeline_RunPrecondition(t *testing.T) {
	pl := newTestPipeline(t, newFakeTelegram(chatA), false)
	for name, p := range map[string]*cutoff.Policy{"nil": nil, "unset": cutoff.New()} {
		t.Run(name, func(t *testing.T) {
			rep, err := pl.Run(context.Background(), []Chat{chatA}, p)
			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Nil(t, rep)
		})
	}
}

func TestPipeline_Run150(t *testing.T) {
	ft := newFakeTelegram(chatA)
	ft.generate(chatA.ID, 150, time.Now())
	pl := newTestPipeline(t, ft, false)

	rep, err := pl.Run(context.Background(), []Chat{chatA}, deleteAll())
	require.NoError(t, err)

	assert.Len(t, ft.searches, 2)
	assert.Equal(t, 0, ft.searches[0].offset)
	assert.Equal(t, 100, ft.searches[1].offset)
	require.Len(t, ft.deletes, 2)
	assert.Len(t, ft.deletes[0], 100)
	assert.Len(t, ft.deletes[1], 50)

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.True(t, res.OK())
	assert.Equal(t, 150, res.Found)
	assert.Equal(t, 150, res.Outcome.Deleted)
	assert.Equal(t, StDone, res.State)
	assert.Equal(t, 150, rep.Deleted())
}

func TestPipeline_RunDays(t *testing.T) {
	now := time.Now()
	ft := newFakeTelegram(chatA)
	ft.msgs[chatA.ID] = []Message{
		{ID: 3, Date: now.Add(-29 * 24 * time.Hour)},
		{ID: 2, Date: now.Add(-30*24*time.Hour - time.Minute)},
		{ID: 1, Date: now.Add(-31 * 24 * time.Hour)},
	}
	pl := newTestPipeline(t, ft, false)
	p := cutoff.New(cutoff.WithClock(func() time.Time { return now }))
	require.NoError(t, p.SetDays(30))

	rep, err := pl.Run(context.Background(), []Chat{chatA}, p)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ft.deletedIDs())
	assert.Equal(t, 2, rep.Results[0].Found)
}

func TestPipeline_RunDryRun(t *testing.T) {
	ft := newFakeTelegram(chatA, chatB)
	ft.generate(chatA.ID, 120, time.Now())
	ft.generate(chatB.ID, 5, time.Now())
	pl := newTestPipeline(t, ft, true)

	rep, err := pl.Run(context.Background(), []Chat{chatA, chatB}, deleteAll())
	require.NoError(t, err)
	assert.Empty(t, ft.deletes)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 125, rep.WouldDelete())
	assert.Equal(t, 0, rep.Deleted())
	assert.Equal(t, 2, rep.Succeeded())
}

func TestPipeline_RunFailureDoesNotAbort(t *testing.T) {
	ft := newFakeTelegram(chatA, chatB)
	ft.generate(chatA.ID, 10, time.Now())
	ft.generate(chatB.ID, 20, time.Now())
	ft.deleteFail[chatA.ID] = errBoom
	pl := newTestPipeline(t, ft, false)

	rep, err := pl.Run(context.Background(), []Chat{chatA, chatB}, deleteAll())
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)

	a, b := rep.Results[0], rep.Results[1]
	assert.False(t, a.OK())
	assert.ErrorIs(t, a.Err, ErrRemoteOperationFailed)
	assert.Equal(t, StFailed, a.State)
	assert.Len(t, a.Remaining, 10)
	assert.Equal(t, 10, a.Found)

	assert.True(t, b.OK())
	assert.Equal(t, StDone, b.State)
	assert.Equal(t, 20, b.Outcome.Deleted)

	assert.Equal(t, 1, rep.Succeeded())
	assert.Equal(t, 1, rep.Failed())
}

func TestPipeline_RunSearchFailure(t *testing.T) {
	ft := newFakeTelegram(chatA, chatB)
	ft.generate(chatB.ID, 3, time.Now())
	ft.searchErrs = []error{errBoom}
	pl := newTestPipeline(t, ft, false)

	rep, err := pl.Run(context.Background(), []Chat{chatA, chatB}, deleteAll())
	require.NoError(t, err)
	assert.ErrorIs(t, rep.Results[0].Err, ErrRemoteOperationFailed)
	assert.ErrorIs(t, rep.Results[0].Err, errBoom)
	assert.Equal(t, StFailed, rep.Results[0].State)
	assert.True(t, rep.Results[1].OK())
	assert.Equal(t, []int{3, 2, 1}, ft.deletedIDs())
}

func TestPipeline_RunCancelled(t *testing.T) {
	ft := newFakeTelegram(chatA, chatB)
	ft.generate(chatA.ID, 10, time.Now())
	ft.generate(chatB.ID, 10, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pl := newTestPipeline(t, cancellingTelegram{ft, cancel}, false)

	rep, err := pl.Run(ctx, []Chat{chatA, chatB}, deleteAll())
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, rep.Results, 2)
	assert.True(t, rep.Results[0].OK(), "last chunk of A completed")
	assert.Equal(t, StCancelled, rep.Results[1].State)
	assert.Len(t, ft.deletes, 1)
}

func TestPipeline_RunInterrupted(t *testing.T) {
	tests := []struct {
		name          string
		prepare       func(ft *fakeTelegram, cancel context.CancelFunc) (Telegramer, []Option)
		chunkSize     int
		wantFound     int
		wantDeleted   int
		wantRemaining int
	}{
		{
			name: "during search flood wait",
			prepare: func(ft *fakeTelegram, cancel context.CancelFunc) (Telegramer, []Option) {
				ft.searchErrs = []error{tgerr.New(420, "FLOOD_WAIT_30")}
				return ft, []Option{WithSleep(func(ctx context.Context, _ time.Duration) error {
					cancel()
					return ctx.Err()
				})}
			},
			chunkSize: 100,
		},
		{
			name: "between deletion chunks",
			prepare: func(ft *fakeTelegram, cancel context.CancelFunc) (Telegramer, []Option) {
				return cancellingTelegram{ft, cancel}, nil
			},
			chunkSize:     4,
			wantFound:     10,
			wantDeleted:   4,
			wantRemaining: 6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTelegram(chatA, chatB)
			ft.generate(chatA.ID, 10, time.Now())
			ft.generate(chatB.ID, 10, time.Now())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tg, opts := tt.prepare(ft, cancel)

			pg, err := NewPaginator(tg, 100, opts...)
			require.NoError(t, err)
			d, err := NewDeleter(tg, tt.chunkSize, false, opts...)
			require.NoError(t, err)

			rep, err := NewPipeline(pg, d, opts...).Run(ctx, []Chat{chatA, chatB}, deleteAll())
			assert.ErrorIs(t, err, context.Canceled)
			require.Len(t, rep.Results, 2)

			a := rep.Results[0]
			assert.Equal(t, StCancelled, a.State)
			assert.ErrorIs(t, a.Err, context.Canceled)
			assert.Equal(t, tt.wantFound, a.Found)
			assert.Equal(t, tt.wantDeleted, a.Outcome.Deleted)
			assert.Len(t, a.Remaining, tt.wantRemaining)
			if tt.wantRemaining == 0 {
				assert.NotErrorIs(t, a.Err, ErrRemoteOperationFailed)
			}

			assert.Equal(t, StCancelled, rep.Results[1].State)
			assert.Equal(t, 2, rep.Failed())
		})
	}
}

// cancellingTelegram cancels the context after the first delete request.
type cancellingTelegram struct {
	*fakeTelegram
	cancel context.CancelFunc
}

func (c cancellingTelegram) DeleteMessages(ctx context.Context, chat Chat, ids []int) (int, error) {
	return cancellingRemover{c.fakeTelegram, c.cancel}.DeleteMessages(ctx, chat, ids)
}

func TestReport_Summary(t *testing.T) {
	color.NoColor = true
	ft := newFakeTelegram(chatA, chatB)
	ft.generate(chatA.ID, 10, time.Now())
	ft.generate(chatB.ID, 20, time.Now())
	ft.deleteFail[chatA.ID] = errBoom
	pl := newTestPipeline(t, ft, false)

	rep, err := pl.Run(context.Background(), []Chat{chatA, chatB}, deleteAll())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.Summary(&buf))
	want := "FAILED: chat 1 (A): chat 1: 10 message(s) not deleted: boom\n" +
		"OK: chat 2 (B): found 20, deleted 20\n" +
		"chats: 2, succeeded: 1, failed: 1, messages: deleted 20\n"
	assert.Equal(t, want, buf.String())
}

func TestReport_SummaryCancelled(t *testing.T) {
	color.NoColor = true
	rep := &Report{
		Results: []Result{
			{Chat: chatA, State: StCancelled, Err: context.Canceled},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, rep.Summary(&buf))
	assert.Equal(t, "CANCELLED: chat 1 (A): context canceled\n"+
		"chats: 1, succeeded: 0, failed: 1, messages: deleted 0\n", buf.String())
}

func TestReport_SummaryDryRun(t *testing.T) {
	color.NoColor = true
	rep := &Report{
		DryRun: true,
		Results: []Result{
			{Chat: chatA, Found: 7, Outcome: Outcome{Chunks: 1, WouldDelete: 7, DryRun: true}, State: StDone},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, rep.Summary(&buf))
	assert.Equal(t, "DRY RUN: chat 1 (A): found 7, would delete 7\n"+
		"chats: 1, succeeded: 1, failed: 0, messages: would delete 7\n", buf.String())
}

func TestTracker(t *testing.T) {
	tr := newTracker(context.Background(), chatA, nopLogger{})
	assert.Equal(t, StFetching, tr.fsm.Current())
	tr.Fetched(0, 100)
	assert.Equal(t, StFiltering, tr.fsm.Current())
	tr.Filtered(100)
	assert.Equal(t, StFetching, tr.fsm.Current())
	tr.event(evExhausted)
	assert.Equal(t, StDeleting, tr.fsm.Current())
	assert.Equal(t, StFailed, tr.fail())

	tr = newTracker(context.Background(), chatA, nopLogger{})
	tr.Fetched(0, 100)
	assert.Equal(t, StCancelled, tr.cancel())
}
