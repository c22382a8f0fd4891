package tui

import (
	"context"

	"github.com/looplab/fsm"
)

type machine struct {
	app *App
	fsm *fsm.FSM
}

const (
	// events
	evSearch    = "search"
	evLocate    = "locate"
	evConfigure = "configure"
	evNothing   = "nothing_selected"
	evResolved  = "resolved"
	evConfirmed = "confirmed"
	evCancelled = "cancelled"

	// states
	stSelecting   = "selecting"
	stSearching   = "searching"
	stConfiguring = "configuring"
	stConfirming  = "confirming"
	stNothing     = "nothing"
	stDone        = "done"
)

func initFSM(app *App) *fsm.FSM {
	m := machine{app: app}
	sm := fsm.NewFSM(
		stSelecting,
		fsm.Events{
			// search
			{Name: evSearch, Src: []string{stSelecting}, Dst: stSearching},
			{Name: evLocate, Src: []string{stSearching}, Dst: stSelecting},
			// cutoff and confirmation
			{Name: evNothing, Src: []string{stSelecting}, Dst: stNothing},
			{Name: evConfigure, Src: []string{stSelecting}, Dst: stConfiguring},
			{Name: evResolved, Src: []string{stConfiguring}, Dst: stConfirming},
			{Name: evConfirmed, Src: []string{stConfirming}, Dst: stDone},
			// cancel
			{Name: evCancelled, Src: []string{stSearching, stNothing, stConfiguring, stConfirming}, Dst: stSelecting},
		},
		fsm.Callbacks{
			m.enter("state"): func(_ context.Context, e *fsm.Event) {
				m.app.log.Debugf("*** transition: %q -> %q\n", e.Src, e.Dst)
				m.app.pages.ShowPage(e.Dst)
			},
			// states
			m.leave(stSearching):   m.hidePage,
			m.leave(stNothing):     m.hidePage,
			m.leave(stConfiguring): m.hidePage,
			m.leave(stConfirming):  m.hidePage,
			m.enter(stConfiguring): m.enterConfiguring,
			m.enter(stDone):        m.enterDone,
			// events
			m.after(evCancelled): m.afterCancelled,
		},
	)
	m.fsm = sm

	return m.fsm
}

func (*machine) leave(state string) string {
	return "leave_" + state
}

func (*machine) enter(state string) string {
	return "enter_" + state
}

func (*machine) after(event string) string {
	return "after_" + event
}

//
// States
//

func (m *machine) hidePage(_ context.Context, e *fsm.Event) {
	m.app.pages.HidePage(e.Src)
}

func (m *machine) enterConfiguring(context.Context, *fsm.Event) {
	m.app.view.tvHint.SetText(hintText)
}

func (m *machine) enterDone(context.Context, *fsm.Event) {
	m.app.result = m.app.pending
	m.app.tva.Stop()
}

//
// Events
//

func (m *machine) afterCancelled(_ context.Context, e *fsm.Event) {
	m.app.pending = nil
	if e.Src != stSearching {
		m.app.logf("Operation cancelled")
	}
}
