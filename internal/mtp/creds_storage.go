package mtp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rusq/encio"
)

var errInvalidCreds = errors.New("invalid credentials")

// credsStorage keeps the API ID and hash in the encrypted file, so that the
// user doesn't have to enter them on every run.
type credsStorage struct {
	filename string
}

type apiCreds struct {
	ID   int    `json:"api_id,omitempty"`
	Hash string `json:"api_hash,omitempty"`
}

func (a apiCreds) validate() error {
	if a.ID <= 0 || a.Hash == "" {
		return errInvalidCreds
	}
	return nil
}

func (cs credsStorage) IsAvailable() bool {
	return cs.filename != ""
}

// Save writes the credentials to the file, replacing it.
func (cs credsStorage) Save(apiID int, apiHash string) error {
	f, err := encio.Create(cs.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return cs.write(f, apiCreds{ID: apiID, Hash: apiHash})
}

func (cs credsStorage) write(w io.Writer, c apiCreds) error {
	if err := c.validate(); err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(c)
}

// Load reads the credentials from the file.
func (cs credsStorage) Load() (int, string, error) {
	f, err := encio.Open(cs.filename)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	c, err := cs.read(f)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", cs.filename, err)
	}
	return c.ID, c.Hash, nil
}

func (cs credsStorage) read(r io.Reader) (apiCreds, error) {
	var c apiCreds
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return apiCreds{}, err
	}
	if err := c.validate(); err != nil {
		return apiCreds{}, err
	}
	return c, nil
}

// Remove deletes the file.  It's not an error if the file does not exist.
func (cs credsStorage) Remove() error {
	if !cs.IsAvailable() {
		return nil
	}
	if err := os.Remove(cs.filename); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ResetCredentials removes the cached API credentials file.
func ResetCredentials(filename string) error {
	return credsStorage{filename: filename}.Remove()
}
