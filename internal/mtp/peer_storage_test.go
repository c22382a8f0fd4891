package mtp

import (
	"context"
	"testing"

	"github.com/gotd/contrib/storage"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/tgcleaner/internal/waipu"
)

func testStorage(t *testing.T) *MemStorage {
	t.Helper()
	ctx := context.Background()
	ms := NewMemStorage()
	peers := map[string]storage.Peer{
		"c1": {Chat: &tg.Chat{ID: 1, Title: "Basic group"}},
		"c2": {Channel: &tg.Channel{ID: 2, Title: "Supergroup", Megagroup: true}},
		"c3": {Channel: &tg.Channel{ID: 3, Title: "News", Broadcast: true}},
		"u4": {User: &tg.User{ID: 4, FirstName: "Jane", LastName: "Doe"}},
		"u5": {User: &tg.User{ID: 5, Username: "ghost", Deleted: true}},
		"u6": {User: &tg.User{ID: 6, Username: "nobody"}},
	}
	for k, p := range peers {
		require.NoError(t, ms.Assign(ctx, k, p))
	}
	return ms
}

func TestMemStorage_Resolve(t *testing.T) {
	ms := testStorage(t)
	p, err := ms.Resolve(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Chat.ID)

	_, err = ms.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrPeerNotFound)
	assert.Equal(t, 6, ms.Len())
}

func TestMemStorage_Iterate(t *testing.T) {
	ms := testStorage(t)
	ctx := context.Background()
	it, err := ms.Iterate(ctx)
	require.NoError(t, err)

	// adding while iterating must not deadlock and is not visible.
	require.NoError(t, ms.Assign(ctx, "z9", storage.Peer{Chat: &tg.Chat{ID: 9}}))

	var n int
	for it.Next(ctx) {
		n++
		assert.NotEqual(t, storage.Peer{}, it.Value())
	}
	assert.NoError(t, it.Err())
	assert.NoError(t, it.Close())
	assert.Equal(t, 6, n)
}

func TestMemStorage_IterateCancelled(t *testing.T) {
	ms := testStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	it, err := ms.Iterate(ctx)
	require.NoError(t, err)
	cancel()
	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), context.Canceled)

	_, err = ms.Iterate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_collect(t *testing.T) {
	ms := testStorage(t)
	tests := []struct {
		name string
		fn   FilterFunc
		want []waipu.Chat
	}{
		{
			"chats",
			FilterChat(),
			[]waipu.Chat{
				{ID: 1, Title: "Basic group", Kind: waipu.KindGroup},
				{ID: 2, Title: "Supergroup", Kind: waipu.KindSupergroup},
			},
		},
		{
			"channels",
			FilterChannel(),
			[]waipu.Chat{{ID: 3, Title: "News", Kind: waipu.KindBroadcast}},
		},
		{
			"users, deleted skipped",
			FilterUser(),
			[]waipu.Chat{
				{ID: 4, Title: "Jane Doe", Kind: waipu.KindDirect},
				{ID: 6, Title: "@nobody", Kind: waipu.KindDirect},
			},
		},
		{
			"any",
			FilterAny(FilterChat(), FilterChannel()),
			[]waipu.Chat{
				{ID: 1, Title: "Basic group", Kind: waipu.KindGroup},
				{ID: 2, Title: "Supergroup", Kind: waipu.KindSupergroup},
				{ID: 3, Title: "News", Kind: waipu.KindBroadcast},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ents, err := collect(context.Background(), ms, tt.fn)
			require.NoError(t, err)
			var got []waipu.Chat
			for _, e := range ents {
				got = append(got, e.chat)
				assert.NotNil(t, e.input)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
