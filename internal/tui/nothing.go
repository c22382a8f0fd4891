package tui

func (app *App) initNothing() {
	app.pages.AddPage(stNothing, app.view.mbNothing, false, false)
	app.view.mbNothing.
		SetDoneFunc(func(_ int, _ string) {
			app.cancel()
		}).
		SetText("No chats selected.  Mark the chats with Enter or Space.").
		AddButtons([]string{btnOK})
}
