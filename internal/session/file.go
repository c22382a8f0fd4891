// Package session provides the encrypted file storage for the telegram
// session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	sess "github.com/gotd/td/session"
	"github.com/rusq/encio"
)

var _ sess.Storage = (*FileStorage)(nil)

// FileStorage implements session.Storage, the session is stored encrypted in
// the file at Path.
type FileStorage struct {
	Path string
	mu   sync.Mutex
}

// LoadSession loads session from file.  It returns session.ErrNotFound if
// there's no file.
func (f *FileStorage) LoadSession(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sess.ErrNotFound
		}
		return nil, fmt.Errorf("stat: %w", err)
	}
	r, err := encio.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

// StoreSession stores session to file.
func (f *FileStorage) StoreSession(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, err := encio.Create(f.Path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write: %w", err)
	}
	return w.Close()
}

// Reset removes the session file, so that the user has to log in again.
func (f *FileStorage) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
