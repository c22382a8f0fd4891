package mtp

import (
	"strings"

	"github.com/gotd/contrib/storage"
	"github.com/gotd/td/tg"

	"github.com/rusq/tgcleaner/internal/waipu"
)

// entity is the peer from the storage, converted to a chat, along with the
// input peer required for API calls.
type entity struct {
	chat  waipu.Chat
	input tg.InputPeerClass
}

// FilterFunc should return the entity and true, if the peer satisfies the
// criteria, or false otherwise.
type FilterFunc func(storage.Peer) (ent entity, ok bool)

// FilterChat selects groups and supergroups.
func FilterChat() FilterFunc {
	return func(peer storage.Peer) (entity, bool) {
		if peer.Chat != nil {
			return fromChat(peer.Chat), true
		} else if peer.Channel != nil && !peer.Channel.Broadcast {
			return fromChannel(peer.Channel), true
		}
		return entity{}, false
	}
}

// FilterChannel selects broadcast channels.
func FilterChannel() FilterFunc {
	return func(peer storage.Peer) (entity, bool) {
		if peer.Channel != nil && peer.Channel.Broadcast {
			return fromChannel(peer.Channel), true
		}
		return entity{}, false
	}
}

// FilterUser selects direct conversations.
func FilterUser() FilterFunc {
	return func(peer storage.Peer) (entity, bool) {
		if peer.User != nil && !peer.User.Deleted {
			return fromUser(peer.User), true
		}
		return entity{}, false
	}
}

// FilterAny selects any peer accepted by one of the filters.
func FilterAny(filters ...FilterFunc) FilterFunc {
	return func(peer storage.Peer) (entity, bool) {
		for _, fn := range filters {
			if ent, ok := fn(peer); ok {
				return ent, true
			}
		}
		return entity{}, false
	}
}

func fromChat(c *tg.Chat) entity {
	return entity{
		chat:  waipu.Chat{ID: c.GetID(), Title: c.GetTitle(), Kind: waipu.KindGroup},
		input: c.AsInputPeer(),
	}
}

func fromChannel(c *tg.Channel) entity {
	kind := waipu.KindSupergroup
	if c.Broadcast {
		kind = waipu.KindBroadcast
	}
	return entity{
		chat:  waipu.Chat{ID: c.GetID(), Title: c.GetTitle(), Kind: kind},
		input: c.AsInputPeer(),
	}
}

func fromUser(u *tg.User) entity {
	title := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if title == "" {
		title = "@" + u.Username
	}
	return entity{
		chat:  waipu.Chat{ID: u.GetID(), Title: title, Kind: waipu.KindDirect},
		input: u.AsInputPeer(),
	}
}
