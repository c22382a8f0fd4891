// Package tui implements the text UI for selecting the chats and the
// cutoff.
package tui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/looplab/fsm"
	"github.com/rivo/tview"
	"github.com/rusq/dlog"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/tgcleaner/internal/cutoff"
	"github.com/rusq/tgcleaner/internal/waipu"
)

const (
	btnYes  = "Yes"
	btnNo   = "No"
	btnOK   = "OK"
	btnNext = "Next"
	btnBack = "Back"
)

// ErrCancelled is returned by Run if the user quits without confirming.
var ErrCancelled = errors.New("cancelled by user")

// Selection is what the user has chosen.
type Selection struct {
	Chats  []waipu.Chat
	Policy *cutoff.Policy
	DryRun bool
}

type App struct {
	tva *tview.Application
	log *dlog.Logger
	fsm *fsm.FSM

	pages *tview.Pages
	view  views

	chats  []waipu.Chat
	marked picks

	defCutoff  string
	defDryRun  bool
	policyOpts []cutoff.Option

	pending *Selection // resolved in the configuring state
	result  *Selection // set when confirmed
}

type views struct {
	mbConfirm *tview.Modal
	mbNothing *tview.Modal
	fmSearch  *tview.Form
	fmCutoff  *tview.Form
	tvHint    *tview.TextView

	lvChats *tview.List
	tvLog   *tview.TextView
}

type Option func(*App)

// WithDefaults sets the initial values of the cutoff form.
func WithDefaults(cutoffInput string, dryRun bool) Option {
	return func(app *App) {
		app.defCutoff = cutoffInput
		app.defDryRun = dryRun
	}
}

// WithPolicyOptions sets the options for the cutoff policy created from the
// user input.
func WithPolicyOptions(opts ...cutoff.Option) Option {
	return func(app *App) {
		app.policyOpts = opts
	}
}

func New(opts ...Option) *App {
	app := &App{
		tva: tview.NewApplication(),

		pages: tview.NewPages(),
		view: views{
			mbConfirm: tview.NewModal(),
			mbNothing: tview.NewModal(),
			fmSearch:  tview.NewForm(),
			fmCutoff:  tview.NewForm(),
			tvHint:    tview.NewTextView(),

			lvChats: tview.NewList(),
			tvLog:   tview.NewTextView(),
		},
		marked: make(picks),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.log = dlog.New(app.view.tvLog, "", dlog.Flags(), osenv.Value("DEBUG", "") != "")

	app.initMain()
	app.initFind()
	app.initCutoff()
	app.initConfirm()
	app.initNothing()

	app.tva.SetInputCapture(app.handleKeystrokes)

	// init finite state machine
	app.fsm = initFSM(app)

	return app
}

// Run shows the chats and blocks until the user confirms the selection or
// quits.  If the user quits, ErrCancelled is returned.
func (app *App) Run(ctx context.Context, chats []waipu.Chat) (Selection, error) {
	app.populateChatList(chats)
	app.view.tvLog.SetChangedFunc(func() { app.tva.Draw() })

	stop := context.AfterFunc(ctx, app.tva.Stop)
	defer stop()

	if err := app.tva.SetRoot(app.pages, true).EnableMouse(false).Run(); err != nil {
		return Selection{}, err
	}
	if err := ctx.Err(); err != nil {
		return Selection{}, err
	}
	if app.result == nil {
		return Selection{}, ErrCancelled
	}
	return *app.result, nil
}

func (app *App) logf(format string, a ...any) {
	app.log.Printf(format, a...)
}

func (app *App) error(err error) {
	app.log.Printf("ERROR: %s", err)
}

func (app *App) handleKeystrokes(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlQ, tcell.KeyF10:
		app.tva.Stop()
	default:
		return event
	}
	return nil
}

// cancel sends a evCancelled event.
func (app *App) cancel() {
	app.event(evCancelled)
}

// event sends an event to FSM, will return true, if there were no errors.
func (app *App) event(event string) bool {
	if err := app.fsm.Event(context.Background(), event); err != nil {
		app.error(err)
		return false
	}
	return true
}

// modal wraps a primitive in a modal box.
func modal(p tview.Primitive, width int, height int) tview.Primitive {
	return tview.NewGrid().
		SetColumns(0, width, 0).
		SetRows(0, height, 0).
		AddItem(p, 1, 1, 1, 1, 0, 0, true)
}
