package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rusq/tgcleaner/internal/waipu"
)

const infoText = "Press [Ctrl+Q] or [F10] to quit, [Ctrl+F] or [/] to search, Enter or Space to mark, [Ctrl+D] or [F2] to continue"

func (app *App) initMain() {
	app.view.lvChats.
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(tcell.Color190).
		SetSelectedTextColor(tcell.ColorBlack).
		SetMainTextColor(tcell.Color190).
		ShowSecondaryText(true).
		SetSelectedFunc(func(idx int, _ string, _ string, _ rune) { app.toggle(idx) }).
		SetInputCapture(app.chatInputCapture).
		SetBorder(true).
		SetTitle("[ Chats ]")

	app.view.tvLog.
		SetWordWrap(true).
		SetScrollable(true).
		SetBorder(true).
		SetTitle("[ Information ]")

	// main is the main screen, split in two parts.
	workspace := tview.NewFlex().
		AddItem(app.view.lvChats, 0, 35, true).
		AddItem(app.view.tvLog, 0, 65, false)

	// The bottom row is the help message
	info := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorRed).
		SetText(infoText)

	mainScreen := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(workspace, 0, 1, true).
		AddItem(info, 1, 1, false)

	app.pages.AddPage(stSelecting, mainScreen, true, true)
}

func (app *App) populateChatList(chats []waipu.Chat) {
	app.chats = chats
	app.view.lvChats.Clear()
	for _, chat := range chats {
		main, secondary := itemText(chat, app.marked.has(chat.ID))
		app.view.lvChats.AddItem(main, secondary, 0, nil)
	}
	app.logf("%d chats loaded, mark the chats to clean up", len(chats))
}

// toggle marks or unmarks the chat at idx.
func (app *App) toggle(idx int) {
	if idx < 0 || len(app.chats) <= idx {
		return
	}
	chat := app.chats[idx]
	marked := app.marked.toggle(chat.ID)
	main, secondary := itemText(chat, marked)
	app.view.lvChats.SetItemText(idx, main, secondary)
	app.log.Debugf("chat %d marked: %v", chat.ID, marked)
	app.logf("%d chat(s) selected", len(app.marked))
}

// proceed moves to the cutoff form, or tells the user to mark some chats.
func (app *App) proceed() {
	if len(app.marked) == 0 {
		app.event(evNothing)
		return
	}
	app.event(evConfigure)
}

func (app *App) chatInputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlF:
		if app.event(evSearch) {
			return nil
		}
	case tcell.KeyCtrlD, tcell.KeyF2:
		app.proceed()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case '/':
			if app.event(evSearch) {
				return nil
			}
		case ' ':
			app.toggle(app.view.lvChats.GetCurrentItem())
			return nil
		}
	}
	return event
}
