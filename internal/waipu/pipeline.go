package waipu

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"

	"github.com/looplab/fsm"

	"github.com/rusq/tgcleaner/internal/cutoff"
)

const (
	// events
	evFetched   = "fetched"
	evFiltered  = "filtered"
	evExhausted = "exhausted"
	evDeleted   = "deleted"
	evFailed    = "failed"
	evCancelled = "cancelled"

	// states
	StFetching  = "fetching"
	StFiltering = "filtering"
	StDeleting  = "deleting"
	StDone      = "done"
	StFailed    = "failed"
	StCancelled = "cancelled" // run was interrupted before the chat was done
)

// Pipeline runs the search, filter and delete for each of the chats.
type Pipeline struct {
	pg  *Paginator
	d   *Deleter
	log Logger
}

func NewPipeline(pg *Paginator, d *Deleter, opts ...Option) *Pipeline {
	st := applyOpts(opts)
	return &Pipeline{pg: pg, d: d, log: st.log}
}

// Run processes chats one by one.  Failure in one chat does not stop the
// processing of the other chats, it is recorded in the report.  If ctx is
// cancelled, the chats that were not processed are reported as cancelled, and
// the ctx error is returned along with the report.
func (p *Pipeline) Run(ctx context.Context, chats []Chat, policy *cutoff.Policy) (*Report, error) {
	if !policy.Resolved() {
		return nil, fmt.Errorf("%w: cutoff policy is not set", ErrPrecondition)
	}
	ctx, task := trace.NewTask(ctx, "Run")
	defer task.End()

	p.log.Printf("deleting %s in %d chat(s)", policy, len(chats))
	rep := &Report{DryRun: p.d.DryRun()}
	for i, chat := range chats {
		if err := ctx.Err(); err != nil {
			for _, c := range chats[i:] {
				rep.Results = append(rep.Results, Result{Chat: c, State: StCancelled, Err: err})
			}
			return rep, err
		}
		rep.Results = append(rep.Results, p.wipe(ctx, chat, policy))
	}
	return rep, ctx.Err()
}

// wipe runs the pipeline for a single chat.
func (p *Pipeline) wipe(ctx context.Context, chat Chat, policy Eligibility) Result {
	defer trace.StartRegion(ctx, "wipe").End()

	tr := newTracker(ctx, chat, p.log)
	res := Result{Chat: chat}

	ids, err := p.pg.FetchEligibleIDs(ctx, chat, policy, tr)
	res.Found = len(ids)
	if isCancelled(err) {
		res.Err = err
		res.State = tr.cancel()
		p.log.Printf("chat %q: search interrupted: %s", chat.Title, err)
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrRemoteOperationFailed, err)
		res.State = tr.fail()
		p.log.Printf("ERROR: chat %q: %s", chat.Title, err)
		return res
	}
	tr.event(evExhausted)

	res.Outcome, err = p.d.Delete(ctx, chat, ids)
	if err != nil {
		res.Err = err
		var re *RemoteError
		if errors.As(err, &re) {
			res.Remaining = re.Remaining
		}
		if isCancelled(err) {
			res.State = tr.cancel()
			p.log.Printf("chat %q: deletion interrupted, %d message(s) left", chat.Title, len(res.Remaining))
			return res
		}
		res.State = tr.fail()
		p.log.Printf("ERROR: chat %q: %s", chat.Title, err)
		return res
	}
	tr.event(evDeleted)
	res.State = tr.fsm.Current()
	return res
}

// tracker follows the state of a single chat.
type tracker struct {
	ctx  context.Context
	chat Chat
	log  Logger
	fsm  *fsm.FSM
}

func newTracker(ctx context.Context, chat Chat, log Logger) *tracker {
	// transitions must happen even if the run is interrupted.
	tr := &tracker{ctx: context.WithoutCancel(ctx), chat: chat, log: log}
	tr.fsm = fsm.NewFSM(
		StFetching,
		fsm.Events{
			{Name: evFetched, Src: []string{StFetching}, Dst: StFiltering},
			{Name: evFiltered, Src: []string{StFiltering}, Dst: StFetching},
			{Name: evExhausted, Src: []string{StFetching}, Dst: StDeleting},
			{Name: evDeleted, Src: []string{StDeleting}, Dst: StDone},
			{Name: evFailed, Src: []string{StFetching, StFiltering, StDeleting}, Dst: StFailed},
			{Name: evCancelled, Src: []string{StFetching, StFiltering, StDeleting}, Dst: StCancelled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				tr.log.Debugf("chat %d: %s -> %s", tr.chat.ID, e.Src, e.Dst)
			},
		},
	)
	return tr
}

func (tr *tracker) Fetched(offset, n int) {
	tr.event(evFetched)
}

func (tr *tracker) Filtered(found int) {
	tr.event(evFiltered)
}

func (tr *tracker) event(ev string) {
	if err := tr.fsm.Event(tr.ctx, ev); err != nil {
		tr.log.Debugf("chat %d: event %q: %s", tr.chat.ID, ev, err)
	}
}

// fail moves the chat to the failed state and returns it.
func (tr *tracker) fail() string {
	tr.event(evFailed)
	return tr.fsm.Current()
}

// cancel moves the chat to the cancelled state and returns it.
func (tr *tracker) cancel() string {
	tr.event(evCancelled)
	return tr.fsm.Current()
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
