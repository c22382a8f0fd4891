package mtp

import (
	"sync"

	"github.com/gotd/td/tg"

	"github.com/rusq/tgcleaner/internal/waipu"
)

// peerClass is the ID space of the peer.  Users, basic groups and channels
// are numbered independently, so the same ID may refer to the peers of
// different classes.
type peerClass int8

const (
	classUser peerClass = iota
	classChat
	classChannel
)

// peerRef identifies the peer across all classes.
type peerRef struct {
	class peerClass
	id    int64
}

// refOf returns the peer reference for the chat.  Supergroups and broadcast
// channels are both channels.
func refOf(chat waipu.Chat) peerRef {
	switch chat.Kind {
	case waipu.KindDirect:
		return peerRef{class: classUser, id: chat.ID}
	case waipu.KindGroup:
		return peerRef{class: classChat, id: chat.ID}
	default:
		return peerRef{class: classChannel, id: chat.ID}
	}
}

// peerCache keeps the input peers of all chats returned by the client, for
// the search and delete calls.  It is not bounded: the chat selected by the
// user must stay resolvable for the whole run.
type peerCache struct {
	mu sync.RWMutex
	m  map[peerRef]tg.InputPeerClass
}

func newPeerCache() *peerCache {
	return &peerCache{m: make(map[peerRef]tg.InputPeerClass)}
}

func (pc *peerCache) set(chat waipu.Chat, ip tg.InputPeerClass) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.m[refOf(chat)] = ip
}

func (pc *peerCache) get(chat waipu.Chat) (tg.InputPeerClass, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	ip, ok := pc.m[refOf(chat)]
	return ip, ok
}

func (pc *peerCache) len() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.m)
}
