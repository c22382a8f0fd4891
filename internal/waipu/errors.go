package waipu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gotd/td/tgerr"

	"github.com/rusq/tgcleaner/internal/cutoff"
)

var (
	// ErrInvalidArgument is returned for page or chunk sizes outside of the
	// server limits.
	ErrInvalidArgument = cutoff.ErrInvalidArgument
	// ErrPrecondition is returned by Run if the cutoff policy is not set.
	ErrPrecondition = errors.New("precondition not met")
	// ErrRemoteOperationFailed is wrapped by all non-recoverable errors
	// returned by the telegram API.
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	// ErrChatNotFound is returned when the chat ID is not in the list of
	// chats.
	ErrChatNotFound = errors.New("chat not found")
)

// FloodWaitError is returned by the Searcher or Remover, if the server asks to
// wait before retrying.
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: %s", e.Wait)
}

// AsFloodWait returns the wait duration, if err is a flood wait error, either
// *FloodWaitError or telegram FLOOD_WAIT_X RPC error.
func AsFloodWait(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	var fwe *FloodWaitError
	if errors.As(err, &fwe) {
		return fwe.Wait, true
	}
	return tgerr.AsFloodWait(err)
}

// RemoteError is the error for the chat deletion phase.  Remaining holds the
// IDs that were not confirmed deleted.
type RemoteError struct {
	ChatID    int64
	Remaining []int
	Err       error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("chat %d: %d message(s) not deleted: %s", e.ChatID, len(e.Remaining), e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteOperationFailed, e.Err}
}
