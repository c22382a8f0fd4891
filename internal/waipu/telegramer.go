// Package waipu finds and wipes the user's own messages in the selected chats.
//
// The pipeline for each chat is: page through the search results for the
// messages authored by the current user, keep the ones that are old enough
// according to the cutoff policy, then delete the collected IDs in chunks,
// waiting out the flood control when the server asks for it.
package waipu

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxPageSize is the maximum number of messages the server returns in a
	// single search request.
	MaxPageSize = 100
	// MaxChunkSize is the maximum number of message IDs the server accepts
	// in a single delete request.
	MaxChunkSize = 100
)

// ChatKind is the kind of the chat.  Chats of different kinds may have the
// same ID.
type ChatKind int

const (
	KindGroup ChatKind = iota
	KindBroadcast
	KindDirect
	KindSupergroup
)

func (k ChatKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindBroadcast:
		return "channel"
	case KindDirect:
		return "user"
	case KindSupergroup:
		return "supergroup"
	default:
		return "unknown"
	}
}

// Chat is the target chat.  ID together with Kind is the handle that the
// Telegramer understands.
type Chat struct {
	ID    int64
	Title string
	Kind  ChatKind
}

// Message is the message found in the chat.
type Message struct {
	ID   int
	Date time.Time
	Text string
}

const nonText = "[non-text message]"

// Preview returns the single line preview of the message text, no longer than
// max runes.
func (m Message) Preview(max int) string {
	s := strings.TrimSpace(strings.ReplaceAll(m.Text, "\n", " "))
	if s == "" {
		return nonText
	}
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}

// Searcher searches the messages of the current user in the chat.  It must
// return at most limit messages, starting at the offset.
type Searcher interface {
	SearchMyMessages(ctx context.Context, chat Chat, offset, limit int) ([]Message, error)
}

// Remover deletes the messages with the given IDs in the chat in a single
// request.  It returns the number of messages deleted.
type Remover interface {
	DeleteMessages(ctx context.Context, chat Chat, ids []int) (int, error)
}

// Telegramer is the subset of telegram client functions used by the package.
type Telegramer interface {
	GetChats(ctx context.Context) ([]Chat, error)
	Searcher
	Remover
}

// Logger is the progress log.
type Logger interface {
	Printf(format string, a ...any)
	Debugf(format string, a ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Debugf(string, ...any) {}
