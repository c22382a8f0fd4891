package tui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/rusq/tgcleaner/internal/waipu"
)

// picks is the set of marked chat IDs.
type picks map[int64]struct{}

// toggle marks or unmarks the chat, returns true if the chat is marked
// after the call.
func (p picks) toggle(id int64) bool {
	if _, ok := p[id]; ok {
		delete(p, id)
		return false
	}
	p[id] = struct{}{}
	return true
}

func (p picks) has(id int64) bool {
	_, ok := p[id]
	return ok
}

// of returns the marked chats in the order of chats.
func (p picks) of(chats []waipu.Chat) []waipu.Chat {
	var ret []waipu.Chat
	for _, c := range chats {
		if p.has(c.ID) {
			ret = append(ret, c)
		}
	}
	return ret
}

func mark(marked bool) string {
	if marked {
		return "[x] "
	}
	return "[ ] "
}

// itemText returns the main and secondary text of the list item.
func itemText(c waipu.Chat, marked bool) (string, string) {
	return tview.Escape(mark(marked) + c.Title), tview.Escape(fmt.Sprintf("    %s (%d)", c.Kind, c.ID))
}
