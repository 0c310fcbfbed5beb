// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package filekv realizes the repo.KeyValue interface on a local
// directory, storing each entry as one file which is named after its
// key. Writes go to a temporary file in the same directory which is
// renamed over the previous content, so readers observe either the old
// or the new value as a whole.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/momeni/fieldpin/pkg/core/cerr"
)

var keyRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ErrInvalidKey indicates a key which may not be used as a file name.
var ErrInvalidKey = errors.New("invalid key")

// Store keeps entries as files in dir.
type Store struct {
	dir string
}

// New creates dir (if missing) and returns a Store which keeps its
// entries in there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if !keyRegex.MatchString(key) || key == "." || key == ".." {
		return "", cerr.BadRequest(fmt.Errorf("%w: %q", ErrInvalidKey, key))
	}
	return filepath.Join(s.dir, key), nil
}

// Get implements repo.KeyValue.
func (s *Store) Get(
	ctx context.Context, key string,
) (value []byte, found bool, err error) {
	p, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	value, err = os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return value, true, nil
}

// Put implements repo.KeyValue.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename
	if _, err = f.Write(value); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", tmp, err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing %q: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", tmp, err)
	}
	if err = os.Rename(tmp, p); err != nil {
		return fmt.Errorf("renaming to %q: %w", p, err)
	}
	return nil
}

// Delete implements repo.KeyValue. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
