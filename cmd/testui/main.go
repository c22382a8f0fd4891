// Command testui emulates the work of the Text UI and the cleaning pipeline
// over a fake telegram, for making screenshots.
package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rusq/dlog"

	"github.com/rusq/tgcleaner/internal/tui"
	"github.com/rusq/tgcleaner/internal/waipu"
)

const (
	fakeSearchDelay      = 5 * time.Millisecond
	fakeDeleteMultiplier = 500 * time.Microsecond
	maxFakeMessages      = 500
	maxAge               = 365 * 24 * time.Hour
)

func main() {
	ft := newFakeTelegram(fakechats)
	chats, _ := ft.GetChats(context.Background())
	waipu.SortByTitle(chats)

	sel, err := tui.New(tui.WithDefaults("30", true)).Run(context.Background(), chats)
	if err != nil {
		if errors.Is(err, tui.ErrCancelled) {
			return
		}
		dlog.Fatal(err)
	}

	lg := dlog.New(os.Stderr, "", dlog.Flags(), true)
	pg, err := waipu.NewPaginator(ft, waipu.MaxPageSize, waipu.WithLogger(lg))
	if err != nil {
		dlog.Fatal(err)
	}
	d, err := waipu.NewDeleter(ft, waipu.MaxChunkSize, sel.DryRun, waipu.WithLogger(lg))
	if err != nil {
		dlog.Fatal(err)
	}
	rep, err := waipu.NewPipeline(pg, d, waipu.WithLogger(lg)).Run(context.Background(), sel.Chats, sel.Policy)
	if rep != nil {
		rep.Summary(os.Stdout)
	}
	if err != nil {
		dlog.Fatal(err)
	}
}

var fakechats = []string{
	"Get to the Chopper",
	"Kelly Green",
	"Invest with us, quickly!",
	"NFT: pay $$$ get JPG",
	"Biohacking: your butt",
	"Crypto mining: y u no mine",
	"🔞 18+ LINQ expressions in C#",
	"Everything you need to know about everything you need to know about",
	"Dumbass: Breaking News",
	"Slackdump",
}

// FakeTelegram keeps the generated messages of each chat, newest first.
type FakeTelegram struct {
	chats    []waipu.Chat
	messages map[int64][]waipu.Message
}

func newFakeTelegram(titles []string) *FakeTelegram {
	ft := &FakeTelegram{messages: make(map[int64][]waipu.Message)}
	now := time.Now()
	for _, title := range titles {
		chat := waipu.Chat{ID: rand.Int64(), Title: title, Kind: randKind()}
		ft.chats = append(ft.chats, chat)

		n := rand.IntN(maxFakeMessages)
		msgs := make([]waipu.Message, n)
		for i := range msgs {
			age := time.Duration(i) * maxAge / time.Duration(n)
			msgs[i] = waipu.Message{ID: n - i, Date: now.Add(-age), Text: "lorem ipsum"}
		}
		ft.messages[chat.ID] = msgs
	}
	return ft
}

func randKind() waipu.ChatKind {
	switch rand.IntN(8) {
	case 0:
		return waipu.KindGroup
	case 1:
		return waipu.KindDirect
	default:
		return waipu.KindBroadcast
	}
}

func (ft *FakeTelegram) GetChats(ctx context.Context) ([]waipu.Chat, error) {
	return append([]waipu.Chat(nil), ft.chats...), nil
}

func (ft *FakeTelegram) SearchMyMessages(ctx context.Context, chat waipu.Chat, offset, limit int) ([]waipu.Message, error) {
	time.Sleep(fakeSearchDelay)
	msgs := ft.messages[chat.ID]
	if offset >= len(msgs) {
		return nil, nil
	}
	return msgs[offset:min(offset+limit, len(msgs))], nil
}

func (ft *FakeTelegram) DeleteMessages(ctx context.Context, chat waipu.Chat, ids []int) (int, error) {
	time.Sleep(time.Duration(len(ids)) * fakeDeleteMultiplier)
	return len(ids), nil
}
