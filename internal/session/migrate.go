package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	sess "github.com/gotd/td/session"
)

// plainSignature is the beginning of the unencrypted gotd session file.
const plainSignature = `{"Version":1`

var errInvalidSession = errors.New("invalid session file")

// Migrate encrypts the plain text session file at path in place, so that
// the session created by other gotd based tools can be reused.  It returns
// true if the file was migrated, and false if there was nothing to do.
func Migrate(ctx context.Context, path string) (bool, error) {
	plain, err := isPlain(path)
	if err != nil || !plain {
		return false, err
	}
	data, err := (&sess.FileStorage{Path: path}).LoadSession(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	enc := FileStorage{Path: path}
	if err := enc.StoreSession(ctx, data); err != nil {
		return false, fmt.Errorf("failed to save session: %w", err)
	}
	return true, nil
}

// isPlain checks if the file at path is the unencrypted session.  Missing or
// empty file is not.
func isPlain(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	b := make([]byte, len(plainSignature))
	n, err := io.ReadFull(f, b)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return false, fmt.Errorf("%w: %d bytes", errInvalidSession, n)
	case err != nil:
		return false, fmt.Errorf("failed to read session file: %w", err)
	}
	return bytes.Equal(b, []byte(plainSignature)), nil
}
