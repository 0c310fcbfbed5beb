// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memkv is an internal helper for the test packages.
// It provides an in-memory repo.KeyValue whose reads and writes may be
// failed on demand, so storage error paths can be exercised without a
// real storage medium.
package memkv

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by the failing operations.
var ErrInjected = errors.New("injected storage failure")

// Store keeps entries in a map.
type Store struct {
	mutex     sync.Mutex
	entries   map[string][]byte
	failGet   bool
	failPut   bool
	puts      int
	lastValue []byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Get implements repo.KeyValue.
func (s *Store) Get(
	ctx context.Context, key string,
) (value []byte, found bool, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.failGet {
		return nil, false, ErrInjected
	}
	v, found := s.entries[key]
	if !found {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put implements repo.KeyValue.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.puts++
	if s.failPut {
		return ErrInjected
	}
	s.entries[key] = append([]byte(nil), value...)
	s.lastValue = s.entries[key]
	return nil
}

// Delete implements repo.KeyValue.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, key)
	return nil
}

// Set stores raw data for key, e.g., a legacy or a corrupt document.
func (s *Store) Set(key string, data []byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = append([]byte(nil), data...)
}

// FailGet makes the following Get calls fail (or succeed again).
func (s *Store) FailGet(fail bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failGet = fail
}

// FailPut makes the following Put calls fail (or succeed again).
func (s *Store) FailPut(fail bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failPut = fail
}

// Puts returns the number of attempted writes.
func (s *Store) Puts() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.puts
}

// LastValue returns a copy of the last successfully written value.
func (s *Store) LastValue() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]byte(nil), s.lastValue...)
}
