package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

func (app *App) initConfirm() {
	app.pages.AddPage(stConfirming, app.view.mbConfirm, false, false)
	app.view.mbConfirm.
		AddButtons([]string{btnYes, btnNo}).
		SetDoneFunc(app.handleConfirm).
		SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			if event.Key() == tcell.KeyESC {
				app.cancel()
				return nil
			}
			return event
		})
}

func (app *App) handleConfirm(_ int, buttonLabel string) {
	switch buttonLabel {
	case btnYes:
		app.event(evConfirmed)
	case btnNo:
		app.cancel()
	}
}

func confirmText(sel Selection) string {
	if sel.DryRun {
		return fmt.Sprintf("Count %s in %d chat(s)?\n\nDry run: nothing will be deleted.", sel.Policy, len(sel.Chats))
	}
	return fmt.Sprintf("Delete %s in %d chat(s)?\n\nThis can not be undone.", sel.Policy, len(sel.Chats))
}
