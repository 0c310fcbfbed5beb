// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pushfeed realizes the repo.LocationFeed interface for fixes
// which are pushed into the process, e.g., by a browser which watches
// its geolocation and posts each fix over the REST API.
package pushfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// ErrUnknownSubscription indicates an Unsubscribe call with a handle
// which is not subscribed anymore (or was never returned by this Feed).
var ErrUnknownSubscription = errors.New("unknown subscription")

type subscription struct {
	id uuid.UUID
}

func (subscription) IsSubscription() {}

type handlers struct {
	onFix repo.FixHandler
	onErr repo.FixErrorHandler
}

// Feed fans each published fix or error out to its subscribers.
// Handlers are called synchronously without holding the Feed lock, so
// they may (un)subscribe in turn. They are never called from within
// Subscribe.
type Feed struct {
	mutex sync.Mutex
	subs  map[uuid.UUID]handlers
	order []uuid.UUID
}

// New returns a Feed without subscribers.
func New() *Feed {
	return &Feed{subs: make(map[uuid.UUID]handlers)}
}

// Subscribe implements repo.LocationFeed.
func (f *Feed) Subscribe(
	onFix repo.FixHandler, onErr repo.FixErrorHandler,
) (repo.Subscription, error) {
	if onFix == nil || onErr == nil {
		return nil, errors.New("subscription handlers must be non-nil")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating subscription id: %w", err)
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.subs[id] = handlers{onFix: onFix, onErr: onErr}
	f.order = append(f.order, id)
	return subscription{id: id}, nil
}

// Unsubscribe implements repo.LocationFeed.
func (f *Feed) Unsubscribe(s repo.Subscription) error {
	sub, ok := s.(subscription)
	if !ok {
		return ErrUnknownSubscription
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if _, found := f.subs[sub.id]; !found {
		return ErrUnknownSubscription
	}
	delete(f.subs, sub.id)
	for i, id := range f.order {
		if id == sub.id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *Feed) snapshot() []handlers {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	hs := make([]handlers, 0, len(f.order))
	for _, id := range f.order {
		hs = append(hs, f.subs[id])
	}
	return hs
}

// Publish validates pos and delivers it to all subscribers in their
// subscription order. It returns how many subscribers received it.
func (f *Feed) Publish(ctx context.Context, pos model.Position) (int, error) {
	if err := pos.Validate(); err != nil {
		return 0, cerr.BadRequest(fmt.Errorf("invalid fix: %w", err))
	}
	if pos.Accuracy < 0 {
		return 0, cerr.BadRequest(errors.New("negative accuracy"))
	}
	hs := f.snapshot()
	for _, h := range hs {
		h.onFix(ctx, pos.Clone())
	}
	return len(hs), nil
}

// Fail delivers err to all subscribers and returns their count.
func (f *Feed) Fail(ctx context.Context, err error) int {
	hs := f.snapshot()
	for _, h := range hs {
		h.onErr(ctx, err)
	}
	return len(hs)
}

// Subscribers returns the number of current subscribers.
func (f *Feed) Subscribers() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.subs)
}
