// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fakes is an internal helper for the test packages.
// It provides in-memory camera, location feed, and map surface
// implementations which record their calls and may be instructed to
// fail or block, so the session state machine can be tested without
// devices or a rendering layer.
package fakes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// ErrDenied is returned by a Camera which denies its streams.
var ErrDenied = errors.New("camera permission denied")

type stream int

func (stream) IsStream() {}

// Camera is a fake repo.Camera.
type Camera struct {
	mutex   sync.Mutex
	deny    bool
	gate    chan struct{}
	waiting int
	next    int
	active  map[stream]bool
	started int
	stopped int
}

// NewCamera returns a Camera which opens streams immediately.
func NewCamera() *Camera {
	return &Camera{active: make(map[stream]bool)}
}

// Deny makes the following StartStream calls fail with ErrDenied.
func (c *Camera) Deny(deny bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.deny = deny
}

// Hold makes the following StartStream calls block until the returned
// function is called, emulating a pending permission prompt.
func (c *Camera) Hold() (release func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	gate := make(chan struct{})
	c.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// StartStream implements repo.Camera.
func (c *Camera) StartStream(ctx context.Context) (repo.Stream, error) {
	c.mutex.Lock()
	gate := c.gate
	c.waiting++
	c.mutex.Unlock()
	var err error
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.waiting--
	if err != nil {
		return nil, err
	}
	if c.deny {
		return nil, ErrDenied
	}
	c.next++
	s := stream(c.next)
	c.active[s] = true
	c.started++
	return s, nil
}

// StopStream implements repo.Camera.
func (c *Camera) StopStream(ctx context.Context, s repo.Stream) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ss, ok := s.(stream)
	if !ok || !c.active[ss] {
		return fmt.Errorf("unknown stream %v", s)
	}
	delete(c.active, ss)
	c.stopped++
	return nil
}

// GrabFrame implements repo.Camera, naming the still after its stream.
func (c *Camera) GrabFrame(ctx context.Context, s repo.Stream) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ss, ok := s.(stream)
	if !ok || !c.active[ss] {
		return "", fmt.Errorf("unknown stream %v", s)
	}
	return fmt.Sprintf("still-of-stream-%d", int(ss)), nil
}

// Active returns the number of open streams.
func (c *Camera) Active() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.active)
}

// Waiting returns the number of StartStream calls which are blocked.
func (c *Camera) Waiting() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.waiting
}

// Started returns the number of streams which were opened so far.
func (c *Camera) Started() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.started
}

type subscription int

func (subscription) IsSubscription() {}

// Feed is a fake repo.LocationFeed with one subscriber at most.
type Feed struct {
	mutex sync.Mutex
	onFix repo.FixHandler
	onErr repo.FixErrorHandler
	subs  int
}

// Subscribe implements repo.LocationFeed.
func (f *Feed) Subscribe(
	onFix repo.FixHandler, onErr repo.FixErrorHandler,
) (repo.Subscription, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.onFix != nil {
		return nil, errors.New("already subscribed")
	}
	f.onFix, f.onErr = onFix, onErr
	f.subs++
	return subscription(f.subs), nil
}

// Unsubscribe implements repo.LocationFeed.
func (f *Feed) Unsubscribe(s repo.Subscription) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if s != subscription(f.subs) || f.onFix == nil {
		return errors.New("unknown subscription")
	}
	f.onFix, f.onErr = nil, nil
	return nil
}

// Subscribed reports if a subscriber is registered.
func (f *Feed) Subscribed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.onFix != nil
}

// Fix delivers pos to the subscriber, if any.
func (f *Feed) Fix(ctx context.Context, pos model.Position) {
	f.mutex.Lock()
	h := f.onFix
	f.mutex.Unlock()
	if h != nil {
		h(ctx, pos)
	}
}

// Fail delivers err to the subscriber, if any.
func (f *Feed) Fail(ctx context.Context, err error) {
	f.mutex.Lock()
	h := f.onErr
	f.mutex.Unlock()
	if h != nil {
		h(ctx, err)
	}
}

// Marker is one marker which is placed on a Surface.
type Marker struct {
	Location model.Coordinate
	Popup    string
}

// Surface is a fake repo.MapSurface.
type Surface struct {
	mutex     sync.Mutex
	markers   []Marker
	indicator *model.Coordinate
	accuracy  float64
	centers   []model.Coordinate
}

// PlaceMarker implements repo.MapSurface.
func (s *Surface) PlaceMarker(
	ctx context.Context, loc model.Coordinate, popup string,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.markers = append(s.markers, Marker{Location: loc, Popup: popup})
	return nil
}

// PlaceOrUpdateLiveIndicator implements repo.MapSurface.
func (s *Surface) PlaceOrUpdateLiveIndicator(
	ctx context.Context, loc model.Coordinate, accuracy float64,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.indicator = &loc
	s.accuracy = accuracy
	return nil
}

// CenterOn implements repo.MapSurface.
func (s *Surface) CenterOn(ctx context.Context, loc model.Coordinate) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.centers = append(s.centers, loc)
	return nil
}

// ClearMarkers implements repo.MapSurface.
func (s *Surface) ClearMarkers(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.markers = nil
	return nil
}

// Markers returns a copy of the placed markers.
func (s *Surface) Markers() []Marker {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Marker(nil), s.markers...)
}

// Indicator returns the live indicator location and accuracy.
func (s *Surface) Indicator() (*model.Coordinate, float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.indicator, s.accuracy
}

// Centers returns the locations which the surface was centered on.
func (s *Surface) Centers() []model.Coordinate {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]model.Coordinate(nil), s.centers...)
}
