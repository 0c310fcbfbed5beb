// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pinsrp realizes the repo.Pins interface by storing the whole
// pins collection as one versioned JSON document in a single named
// entry of a repo.KeyValue store.
//
// Documents are always written with the latest Version, while Load
// accepts the legacy unversioned array too and migrates it in memory.
// Use Migrate in order to rewrite a legacy entry in place.
package pinsrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// DefaultKey is the name of the durable entry holding the pins.
const DefaultKey = "pins"

// Repo keeps the pins document in the key entry of kv.
type Repo struct {
	kv  repo.KeyValue
	key string
}

// New instantiates a pins repository. An empty key selects DefaultKey.
func New(kv repo.KeyValue, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{kv: kv, key: key}
}

// Key returns the name of the durable entry.
func (r *Repo) Key() string {
	return r.key
}

// Load implements repo.Pins. A missing entry yields no pins.
func (r *Repo) Load(ctx context.Context) ([]model.Pin, error) {
	data, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("reading %q entry: %w", r.key, err)
	}
	if !found {
		return []model.Pin{}, nil
	}
	pins, v, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %q entry: %w", r.key, err)
	}
	if v != Version {
		log.Debug(ctx, "pins document migrated in memory",
			log.Version("from", v), log.Version("to", Version),
		)
	}
	return pins, nil
}

// Save implements repo.Pins, rewriting the entry as a whole.
func (r *Repo) Save(ctx context.Context, pins []model.Pin) error {
	data, err := Encode(pins)
	if err != nil {
		return fmt.Errorf("encoding pins: %w", err)
	}
	if err := r.kv.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("writing %q entry: %w", r.key, err)
	}
	return nil
}

// ErrNothingToMigrate indicates that Migrate found no entry.
var ErrNothingToMigrate = errors.New("no pins document")

// Migrate rewrites the entry with the latest Version if it was written
// by an older version. It returns the version which was found. An
// undecodable entry is reported and left untouched.
func (r *Repo) Migrate(ctx context.Context) (model.SemVer, error) {
	data, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return model.SemVer{}, fmt.Errorf("reading %q entry: %w", r.key, err)
	}
	if !found {
		return model.SemVer{}, ErrNothingToMigrate
	}
	pins, v, err := Decode(data)
	if err != nil {
		return v, fmt.Errorf("decoding %q entry: %w", r.key, err)
	}
	if v == Version {
		return v, nil
	}
	if err := r.Save(ctx, pins); err != nil {
		return v, err
	}
	log.Info(ctx, "pins document migrated",
		log.Version("from", v), log.Version("to", Version),
		log.Count("pins", len(pins)),
	)
	return v, nil
}

// Reset deletes the entry, which is the only way to remove pins.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.kv.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("deleting %q entry: %w", r.key, err)
	}
	return nil
}
