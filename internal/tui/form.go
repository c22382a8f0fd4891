package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rusq/tgcleaner/internal/cutoff"
)

const (
	lblCutoff = "Delete messages older than"
	lblDryRun = "Dry run (only count)"

	hintText = "Enter a " + cutoff.InputHelp + "."
)

func (app *App) initCutoff() {
	app.view.tvHint.
		SetWordWrap(true).
		SetText(hintText)

	app.view.fmCutoff.
		AddInputField(lblCutoff, app.defCutoff, 20, nil, nil).
		AddCheckbox(lblDryRun, app.defDryRun, nil).
		AddButton(btnNext, app.resolveCutoff).
		AddButton(btnBack, app.cancel).
		SetCancelFunc(app.cancel)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(app.view.tvHint, 3, 0, false).
		AddItem(app.view.fmCutoff, 0, 1, true)
	layout.
		SetBorder(true).
		SetTitle("[ Cutoff ]").
		SetBackgroundColor(tcell.ColorDarkCyan)

	app.pages.AddPage(stConfiguring, modal(layout, 76, 12), true, false)
}

func (app *App) cutoffInput() *tview.InputField {
	return app.view.fmCutoff.GetFormItemByLabel(lblCutoff).(*tview.InputField)
}

func (app *App) dryRunInput() *tview.Checkbox {
	return app.view.fmCutoff.GetFormItemByLabel(lblDryRun).(*tview.Checkbox)
}

// resolveCutoff creates the policy from the form values and asks for the
// confirmation.  On invalid input, the user stays on the form.
func (app *App) resolveCutoff() {
	sel, err := app.selection(app.cutoffInput().GetText(), app.dryRunInput().IsChecked())
	if err != nil {
		app.error(err)
		app.view.tvHint.SetText(err.Error())
		return
	}
	app.pending = &sel
	app.view.mbConfirm.SetText(confirmText(sel))
	app.event(evResolved)
}

// selection returns the marked chats along with the policy parsed from
// input.
func (app *App) selection(input string, dryRun bool) (Selection, error) {
	p := cutoff.New(app.policyOpts...)
	if err := p.Parse(input); err != nil {
		return Selection{}, err
	}
	return Selection{
		Chats:  app.marked.of(app.chats),
		Policy: p,
		DryRun: dryRun,
	}, nil
}
