package mtp

import (
	"context"
	"fmt"
	"runtime/trace"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"

	"github.com/rusq/tgcleaner/internal/waipu"
)

// SearchMyMessages returns up to limit messages of the current user in the
// chat, starting at offset, newest first.
func (c *Client) SearchMyMessages(ctx context.Context, chat waipu.Chat, offset, limit int) ([]waipu.Message, error) {
	ctx, task := trace.NewTask(ctx, "SearchMyMessages")
	defer task.End()

	ip, err := c.inputPeer(ctx, chat)
	if err != nil {
		return nil, err
	}
	resp, err := c.cl.API().MessagesSearch(ctx, &tg.MessagesSearchRequest{
		Peer:      ip,
		FromID:    &tg.InputPeerSelf{},
		Filter:    &tg.InputMessagesFilterEmpty{},
		AddOffset: offset,
		Limit:     limit,
	})
	if err != nil {
		trace.Logf(ctx, "api", "search error: %s", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	mm, ok := resp.AsModified()
	if !ok {
		return nil, fmt.Errorf("search: unexpected response: %T", resp)
	}
	return convertMessages(mm.GetMessages()), nil
}

// convertMessages converts the API messages.  Every API message produces a
// message, so that the caller can tell the end of search by the number of
// messages returned.
func convertMessages(mm []tg.MessageClass) []waipu.Message {
	out := make([]waipu.Message, 0, len(mm))
	for _, m := range mm {
		msg := waipu.Message{ID: m.GetID()}
		switch m := m.(type) {
		case *tg.Message:
			msg.Date = unixTime(m.Date)
			msg.Text = m.Message
		case *tg.MessageService:
			msg.Date = unixTime(m.Date)
		}
		out = append(out, msg)
	}
	return out
}

func unixTime(ts int) time.Time {
	return time.Unix(int64(ts), 0).UTC()
}

// DeleteMessages deletes (revokes) the messages with ids in the chat in one
// request.  Caller must ensure that len(ids) does not exceed the server limit.
func (c *Client) DeleteMessages(ctx context.Context, chat waipu.Chat, ids []int) (int, error) {
	ctx, task := trace.NewTask(ctx, "DeleteMessages")
	defer task.End()

	ip, err := c.inputPeer(ctx, chat)
	if err != nil {
		trace.Log(ctx, "logic", err.Error())
		return 0, err
	}
	resp, err := message.NewSender(c.cl.API()).To(ip).Revoke().Messages(ctx, ids...)
	if err != nil {
		trace.Logf(ctx, "api", "revoke error: %s", err)
		return 0, fmt.Errorf("failed to delete: %w", err)
	}
	trace.Logf(ctx, "api", "pts count: %d", resp.GetPtsCount())
	return len(ids), nil
}
