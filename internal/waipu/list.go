package waipu

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// List prints the chats sorted by title.
func List(ctx context.Context, w io.Writer, tg Telegramer) error {
	chats, err := tg.GetChats(ctx)
	if err != nil {
		return err
	}
	SortByTitle(chats)
	for _, chat := range chats {
		if _, err := fmt.Fprintf(w, "%15d - %-10s - %s\n", chat.ID, chat.Kind, chat.Title); err != nil {
			return err
		}
	}
	return nil
}

// SortByTitle sorts chats by title in place.
func SortByTitle(chats []Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].Title < chats[j].Title
	})
}
