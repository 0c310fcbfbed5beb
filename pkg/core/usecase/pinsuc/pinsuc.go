// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pinsuc contains the pins UseCase which owns the ordered pins
// collection. Two use cases are supported:
//  1. Restoring the collection from durable storage (at start up),
//  2. Committing a new pin from a confirmed capture.
//
// Rendering layers observe the collection by registering a Listener,
// so this package never reaches into the presentation layer.
package pinsuc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// ErrEmptyImage indicates that a commit was asked without a payload.
var ErrEmptyImage = errors.New("empty image payload")

// ErrNotPersisted indicates that a committed pin is kept in memory and
// rendered for the current session, but the durable storage rejected
// the rewritten collection, so it will be lost by a restart.
var ErrNotPersisted = errors.New("pin is not persisted")

// Listener observes the pins collection. PinsRestored receives the
// whole collection after a Restore (which replaces anything that was
// rendered before) and PinCommitted receives each new pin in order.
// Listeners are called synchronously, in registration order, while the
// collection is locked; they must not call back into the UseCase.
type Listener interface {
	PinsRestored(ctx context.Context, pins []model.Pin)
	PinCommitted(ctx context.Context, pin model.Pin)
}

// UseCase represents the pins use case. It holds the pins repository
// and the in-memory collection which is rewritten to that repository
// after each mutation.
type UseCase struct {
	pinsrp    repo.Pins
	listeners []Listener

	mutex sync.Mutex
	pins  []model.Pin
}

// New instantiates a pins use case with an empty collection. Restore
// should be called once before serving users, so persisted pins are
// loaded and rendered.
func New(r repo.Pins, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pinsrp: r, pins: []model.Pin{}}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return uc, nil
}

// Restore reads the persisted pins and replaces the in-memory
// collection with them. A missing, corrupt, or unreadable document is
// equivalent to having no pins yet; the failure is logged and an empty
// collection is restored. Listeners receive the restored sequence, so
// calling Restore twice renders the same markers instead of duplicates.
func (uc *UseCase) Restore(ctx context.Context) []model.Pin {
	pins, err := uc.pinsrp.Load(ctx)
	if err != nil {
		log.Warn(ctx, "restoring pins failed, starting empty", log.Err("err", err))
		pins = nil
	}
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	uc.pins = model.ClonePins(pins)
	for _, l := range uc.listeners {
		l.PinsRestored(ctx, model.ClonePins(uc.pins))
	}
	log.Info(ctx, "pins restored", log.Count("pins", len(uc.pins)))
	return model.ClonePins(uc.pins)
}

// Commit creates a pin from the image payload and location, appends it
// to the collection, and rewrites the durable document.
// Invalid arguments are rejected with a cerr.BadRequest error before
// any change. If the durable write fails, the pin is still appended
// and rendered, and it is returned together with an error which wraps
// ErrNotPersisted (classified as cerr.InsufficientStorage).
func (uc *UseCase) Commit(
	ctx context.Context, image string, loc model.Coordinate,
) (*model.Pin, error) {
	if image == "" {
		return nil, cerr.BadRequest(ErrEmptyImage)
	}
	if err := loc.Validate(); err != nil {
		return nil, cerr.BadRequest(fmt.Errorf("invalid location: %w", err))
	}
	pin := model.Pin{Image: image, Location: loc}

	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	uc.pins = append(uc.pins, pin)
	saveErr := uc.pinsrp.Save(ctx, model.ClonePins(uc.pins))
	for _, l := range uc.listeners {
		l.PinCommitted(ctx, pin)
	}
	if saveErr != nil {
		log.Error(ctx, "persisting pins failed",
			log.Err("err", saveErr), log.Count("pins", len(uc.pins)),
		)
		return &pin, cerr.InsufficientStorage(
			fmt.Errorf("%w: %w", ErrNotPersisted, saveErr),
		)
	}
	log.Info(ctx, "pin committed",
		log.Coord("location", loc), log.Count("pins", len(uc.pins)),
	)
	return &pin, nil
}

// Pins returns a copy of the current collection in capture order.
func (uc *UseCase) Pins() []model.Pin {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return model.ClonePins(uc.pins)
}
