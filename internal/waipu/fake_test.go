package waipu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errBoom = errors.New("boom")

type searchCall struct {
	chatID        int64
	offset, limit int
}

// fakeTelegram keeps messages per chat, the newest first, the way the server
// returns them.
type fakeTelegram struct {
	mu sync.Mutex

	chats []Chat
	msgs  map[int64][]Message

	searches []searchCall
	deletes  [][]int

	// searchErrs and deleteErrs are returned by the subsequent calls, one
	// error per call, before the calls start to succeed.
	searchErrs []error
	deleteErrs map[int64][]error
	// deleteFail makes the delete calls in the chat fail with the error,
	// after the first failAfter successful calls.
	deleteFail map[int64]error
	failAfter  int
}

func newFakeTelegram(chats ...Chat) *fakeTelegram {
	return &fakeTelegram{
		chats:      chats,
		msgs:       make(map[int64][]Message),
		deleteErrs: make(map[int64][]error),
		deleteFail: make(map[int64]error),
	}
}

// generate adds n messages to the chat, one per hour going back from now.
func (f *fakeTelegram) generate(chatID int64, n int, now time.Time) {
	for i := 0; i < n; i++ {
		f.msgs[chatID] = append(f.msgs[chatID], Message{
			ID:   n - i,
			Date: now.Add(-time.Duration(i) * time.Hour),
			Text: fmt.Sprintf("message %d", n-i),
		})
	}
}

func (f *fakeTelegram) GetChats(ctx context.Context) ([]Chat, error) {
	return f.chats, nil
}

func (f *fakeTelegram) SearchMyMessages(ctx context.Context, chat Chat, offset, limit int) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{chatID: chat.ID, offset: offset, limit: limit})
	if len(f.searchErrs) > 0 {
		err := f.searchErrs[0]
		f.searchErrs = f.searchErrs[1:]
		return nil, err
	}
	all := f.msgs[chat.ID]
	if offset >= len(all) {
		return []Message{}, nil
	}
	end := min(offset+limit, len(all))
	page := make([]Message, end-offset)
	copy(page, all[offset:end])
	return page, nil
}

func (f *fakeTelegram) DeleteMessages(ctx context.Context, chat Chat, ids []int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if errs := f.deleteErrs[chat.ID]; len(errs) > 0 {
		f.deleteErrs[chat.ID] = errs[1:]
		return 0, errs[0]
	}
	if err, ok := f.deleteFail[chat.ID]; ok {
		if f.failAfter <= 0 {
			return 0, err
		}
		f.failAfter--
	}
	chunk := make([]int, len(ids))
	copy(chunk, ids)
	f.deletes = append(f.deletes, chunk)
	return len(ids), nil
}

func (f *fakeTelegram) deletedIDs() []int {
	var out []int
	for _, chunk := range f.deletes {
		out = append(out, chunk...)
	}
	return out
}

// fakeSleeper records the waits instead of sleeping.
type fakeSleeper struct {
	waits []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

// fakeLogger collects the log lines.
type fakeLogger struct {
	lines []string
}

func (l *fakeLogger) Printf(format string, a ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, a...))
}

func (l *fakeLogger) Debugf(format string, a ...any) {}

type fixedPolicy struct {
	cutoff time.Time
}

func (p fixedPolicy) IsEligible(t time.Time) bool {
	return !t.After(p.cutoff)
}

type allPolicy struct{}

func (allPolicy) IsEligible(time.Time) bool { return true }
