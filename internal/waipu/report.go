package waipu

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Result is the result of the pipeline for a single chat.
type Result struct {
	Chat      Chat
	Found     int // eligible messages found
	Outcome   Outcome
	State     string // final state
	Remaining []int  // IDs not confirmed deleted, if failed during deletion
	Err       error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Report is the collection of per-chat results.
type Report struct {
	DryRun  bool
	Results []Result
}

// Succeeded returns the number of chats processed without errors.
func (r *Report) Succeeded() int {
	var n int
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of chats that failed or were not processed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Deleted returns the total number of deleted messages.
func (r *Report) Deleted() int {
	var n int
	for _, res := range r.Results {
		n += res.Outcome.Deleted
	}
	return n
}

// WouldDelete returns the total number of messages that would have been
// deleted in the dry run.
func (r *Report) WouldDelete() int {
	var n int
	for _, res := range r.Results {
		n += res.Outcome.WouldDelete
	}
	return n
}

var (
	clrOK   = color.New(color.FgGreen)
	clrFail = color.New(color.FgHiRed)
	clrDry  = color.New(color.FgYellow)
	clrStop = color.New(color.FgHiYellow)
)

// Summary writes per-chat results and totals to w.
func (r *Report) Summary(w io.Writer) error {
	for _, res := range r.Results {
		var err error
		switch {
		case res.State == StCancelled:
			_, err = fmt.Fprintf(w, "%s: chat %d (%s): %s\n", clrStop.Sprint("CANCELLED"), res.Chat.ID, res.Chat.Title, res.Err)
		case !res.OK():
			_, err = fmt.Fprintf(w, "%s: chat %d (%s): %s\n", clrFail.Sprint("FAILED"), res.Chat.ID, res.Chat.Title, res.Err)
		case res.Outcome.DryRun:
			_, err = fmt.Fprintf(w, "%s: chat %d (%s): found %d, would delete %d\n", clrDry.Sprint("DRY RUN"), res.Chat.ID, res.Chat.Title, res.Found, res.Outcome.WouldDelete)
		default:
			_, err = fmt.Fprintf(w, "%s: chat %d (%s): found %d, deleted %d\n", clrOK.Sprint("OK"), res.Chat.ID, res.Chat.Title, res.Found, res.Outcome.Deleted)
		}
		if err != nil {
			return err
		}
	}
	total := fmt.Sprintf("deleted %d", r.Deleted())
	if r.DryRun {
		total = fmt.Sprintf("would delete %d", r.WouldDelete())
	}
	_, err := fmt.Fprintf(w, "chats: %d, succeeded: %d, failed: %d, messages: %s\n", len(r.Results), r.Succeeded(), r.Failed(), total)
	return err
}
