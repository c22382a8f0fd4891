package waipu

import (
	"context"
	"fmt"

	"github.com/rusq/tgcleaner/internal/cutoff"
)

// Batch wipes the messages in chats with the given ids.  IDs that are not
// found in the chat list are reported as failed.
func Batch(ctx context.Context, tg Telegramer, pl *Pipeline, policy *cutoff.Policy, ids []int64) (*Report, error) {
	chats, err := tg.GetChats(ctx)
	if err != nil {
		return nil, err
	}
	var (
		targets  []Chat
		notFound []Result
	)
	for _, id := range ids {
		idx, err := findIdxOf(chats, id)
		if err != nil {
			notFound = append(notFound, Result{
				Chat:  Chat{ID: id},
				State: StFailed,
				Err:   fmt.Errorf("%d: %w", id, err),
			})
			continue
		}
		targets = append(targets, chats[idx])
	}
	rep, err := pl.Run(ctx, targets, policy)
	if rep != nil {
		rep.Results = append(rep.Results, notFound...)
	}
	return rep, err
}

func findIdxOf(chats []Chat, id int64) (int, error) {
	for i := range chats {
		if chats[i].ID == id {
			return i, nil
		}
	}
	return 0, ErrChatNotFound
}
