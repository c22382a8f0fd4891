package mtp

import (
	"context"
	"fmt"
	"runtime/trace"

	"github.com/gotd/contrib/storage"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"

	"github.com/rusq/tgcleaner/internal/waipu"
)

// GetChats retrieves the account groups and supergroups.
func (c *Client) GetChats(ctx context.Context) ([]waipu.Chat, error) {
	return c.GetEntities(ctx, FilterChat())
}

// GetAll retrieves groups, channels and direct conversations.
func (c *Client) GetAll(ctx context.Context) ([]waipu.Chat, error) {
	return c.GetEntities(ctx, FilterAny(FilterChat(), FilterChannel(), FilterUser()))
}

// GetEntities ensures that storage is populated, then iterates through storage
// peers calling filterFn for each peer.  Input peers of the selected entities
// are cached for the subsequent search and delete calls.
func (c *Client) GetEntities(ctx context.Context, filterFn FilterFunc) ([]waipu.Chat, error) {
	ctx, task := trace.NewTask(ctx, "GetEntities")
	defer task.End()

	if err := c.ensureStoragePopulated(ctx); err != nil {
		return nil, err
	}
	ents, err := collect(ctx, c.storage, filterFn)
	if err != nil {
		return nil, err
	}
	chats := make([]waipu.Chat, 0, len(ents))
	for _, ent := range ents {
		c.peers.set(ent.chat, ent.input)
		chats = append(chats, ent.chat)
	}
	return chats, nil
}

func collect(ctx context.Context, s storage.PeerStorage, filterFn FilterFunc) ([]entity, error) {
	peerIter, err := s.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	defer peerIter.Close()

	var ee []entity
	for peerIter.Next(ctx) {
		ent, ok := filterFn(peerIter.Value())
		if !ok {
			continue
		}
		ee = append(ee, ent)
	}
	if err := peerIter.Err(); err != nil {
		return nil, err
	}
	return ee, nil
}

// ensureStoragePopulated ensures that the peer storage has been populated within
// defCacheEvict duration.
func (c *Client) ensureStoragePopulated(ctx context.Context) error {
	if cached, err := c.cache.Get(cacheDlgStorage); err == nil && cached.(bool) {
		trace.Log(ctx, "cache", "hit")
		return nil
	}
	trace.Log(ctx, "cache", "miss")

	dlgIter := dialogs.NewQueryBuilder(c.cl.API()).
		GetDialogs().
		BatchSize(defBatchSize).
		Iter()
	if err := storage.CollectPeers(c.storage).Dialogs(ctx, dlgIter); err != nil {
		return err
	}
	return c.cache.SetWithExpire(cacheDlgStorage, true, defCacheEvict)
}

// inputPeer returns the input peer for the chat.  If the chat was not seen
// yet, the peers are collected from the storage again, and the dialogs are
// refetched if the storage is stale.
func (c *Client) inputPeer(ctx context.Context, chat waipu.Chat) (tg.InputPeerClass, error) {
	if ip, ok := c.peers.get(chat); ok {
		return ip, nil
	}
	if _, err := c.GetAll(ctx); err != nil {
		return nil, err
	}
	ip, ok := c.peers.get(chat)
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", chat.Kind, chat.ID, waipu.ErrChatNotFound)
	}
	return ip, nil
}
