// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package captureuc contains the capture UseCase which realizes the
// capture confirmation flow of a session. It tracks the current
// position which is reported by a location feed, drives the camera
// stream through the idle, previewing, and reviewing states, and
// commits confirmed stills as pins using the pins use case.
//
// All session state is kept in the UseCase fields, so REST handlers
// and feed callbacks (running on distinct go routines) observe the
// same state machine.
package captureuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
	"github.com/momeni/fieldpin/pkg/core/usecase/pinsuc"
)

var (
	// ErrLocationUnknown indicates a confirm attempt before any valid
	// location fix was received.
	ErrLocationUnknown = errors.New("current location is unknown")

	// ErrInvalidTransition indicates an operation which is not
	// permitted in the current capture state.
	ErrInvalidTransition = errors.New("invalid capture transition")

	// ErrCaptureAborted indicates that a capture start was cancelled
	// (or the session was closed) while the camera was still opening
	// its stream, so the late stream was stopped right away.
	ErrCaptureAborted = errors.New("capture start was aborted")

	// ErrClosed indicates that the session was closed already.
	ErrClosed = errors.New("session is closed")
)

// UseCase represents a capture session.
type UseCase struct {
	pins    *pinsuc.UseCase
	camera  repo.Camera
	feed    repo.LocationFeed
	surface repo.MapSurface

	startTimeout time.Duration
	follow       bool

	// mutex protects all following fields. It is not held while the
	// camera is opening a stream, since that may wait for a user to
	// answer a permission prompt.
	mutex    sync.Mutex
	state    model.CaptureState
	starting bool // a StartStream call is pending
	aborted  bool // the pending StartStream result must be dropped
	stream   repo.Stream
	still    string
	position *model.Position
	centered bool
	sub      repo.Subscription
	closed   bool
}

// New instantiates a capture session in the idle state. The pins use
// case receives confirmed captures, the camera provides streams and
// stills, the feed provides location fixes (after Watch is called),
// and the surface shows the live position indicator.
func New(
	pins *pinsuc.UseCase,
	camera repo.Camera,
	feed repo.LocationFeed,
	surface repo.MapSurface,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pins:    pins,
		camera:  camera,
		feed:    feed,
		surface: surface,
		follow:  true,
		state:   model.CaptureStateIdle,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return uc, nil
}

// Watch subscribes the session to its location feed. Calling it again
// while subscribed has no effect.
func (uc *UseCase) Watch(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if uc.closed {
		return cerr.Conflict(ErrClosed)
	}
	if uc.sub != nil {
		return nil
	}
	sub, err := uc.feed.Subscribe(uc.OnFix, uc.OnLocationError)
	if err != nil {
		return cerr.Unavailable(fmt.Errorf("subscribing to feed: %w", err))
	}
	uc.sub = sub
	return nil
}

// Close tears the session down. Any open or pending camera stream is
// stopped and the feed subscription is cancelled. Other operations
// fail with ErrClosed afterwards, while Close itself is idempotent.
func (uc *UseCase) Close(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if uc.closed {
		return nil
	}
	uc.closed = true
	if uc.starting {
		uc.aborted = true
	}
	uc.toIdle(ctx)
	if uc.sub == nil {
		return nil
	}
	sub := uc.sub
	uc.sub = nil
	if err := uc.feed.Unsubscribe(sub); err != nil {
		return fmt.Errorf("unsubscribing from feed: %w", err)
	}
	return nil
}

// OnFix records pos as the current position, replacing the previous
// fix, and updates the live indicator on the map surface. Fixes with
// an invalid coordinate are logged and ignored.
func (uc *UseCase) OnFix(ctx context.Context, pos model.Position) {
	if err := pos.Validate(); err != nil {
		log.Warn(ctx, "ignoring invalid location fix", log.Err("err", err))
		return
	}
	pos = pos.Clone()
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if uc.closed {
		return
	}
	uc.position = &pos
	err := uc.surface.PlaceOrUpdateLiveIndicator(
		ctx, pos.Coordinate, pos.Accuracy,
	)
	if err != nil {
		log.Warn(ctx, "updating live indicator", log.Err("err", err))
	}
	if uc.follow || !uc.centered {
		if err = uc.surface.CenterOn(ctx, pos.Coordinate); err != nil {
			log.Warn(ctx, "centering map", log.Err("err", err))
		}
		uc.centered = true
	}
}

// OnLocationError reports a location feed failure. It is not fatal:
// the last known fix (if any) stays as the current position.
func (uc *UseCase) OnLocationError(ctx context.Context, err error) {
	uc.mutex.Lock()
	known := uc.position != nil
	uc.mutex.Unlock()
	log.Warn(ctx, "location feed failed",
		log.Err("err", err), slog.Bool("known_position", known),
	)
}

// Snapshot returns the current state of the session.
func (uc *UseCase) Snapshot() model.CaptureSnapshot {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	s := model.CaptureSnapshot{
		State:    uc.state,
		HasStill: uc.still != "",
		Still:    uc.still,
	}
	if uc.position != nil {
		p := uc.position.Clone()
		s.Position = &p
	}
	return s
}

// StartCapture moves the idle session to previewing by opening a
// camera stream. Opening the stream may take long, so the session is
// not locked in the meantime and it stays idle until the stream is
// ready. Failing to open a stream keeps it idle and is reported as an
// unavailable error.
func (uc *UseCase) StartCapture(ctx context.Context) error {
	uc.mutex.Lock()
	if err := uc.expect("start", model.CaptureStateIdle); err != nil {
		uc.mutex.Unlock()
		return err
	}
	if uc.starting {
		uc.mutex.Unlock()
		return cerr.Conflict(fmt.Errorf(
			"%w: a capture start is pending", ErrInvalidTransition,
		))
	}
	uc.starting = true
	uc.aborted = false
	uc.mutex.Unlock()

	sctx, cancel := ctx, context.CancelFunc(func() {})
	if uc.startTimeout > 0 {
		sctx, cancel = context.WithTimeout(ctx, uc.startTimeout)
	}
	s, err := uc.camera.StartStream(sctx)
	cancel()

	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	uc.starting = false
	if err != nil {
		log.Warn(ctx, "camera is unavailable", log.Err("err", err))
		return cerr.Unavailable(fmt.Errorf("starting stream: %w", err))
	}
	if uc.aborted {
		uc.stream = s
		uc.releaseStream(ctx)
		return cerr.Conflict(ErrCaptureAborted)
	}
	uc.stream = s
	uc.state = model.CaptureStatePreviewing
	log.Info(ctx, "capture started", log.State("state", uc.state))
	return nil
}

// TakeStill freezes the current camera frame as the still image and
// moves the session from previewing to reviewing. The stream remains
// open, so Retake may resume the preview.
func (uc *UseCase) TakeStill(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if err := uc.expect("still", model.CaptureStatePreviewing); err != nil {
		return err
	}
	img, err := uc.camera.GrabFrame(ctx, uc.stream)
	if err != nil {
		return cerr.Unavailable(fmt.Errorf("grabbing frame: %w", err))
	}
	if img == "" {
		return cerr.Unavailable(errors.New("camera returned an empty frame"))
	}
	uc.still = img
	uc.state = model.CaptureStateReviewing
	return nil
}

// Retake discards the still image and moves the session from reviewing
// back to previewing on the same stream.
func (uc *UseCase) Retake(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if err := uc.expect("retake", model.CaptureStateReviewing); err != nil {
		return err
	}
	uc.still = ""
	uc.state = model.CaptureStatePreviewing
	return nil
}

// Confirm commits the still image as a pin at the current location and
// moves the session from reviewing to idle, releasing the stream.
//
// Confirming without a known location fails with ErrLocationUnknown
// (as a cerr.Conflict) and changes nothing, so the still may be
// confirmed after a fix arrives or be cancelled. Otherwise, the stream
// is released even if the pin may not be committed. When the pin is
// kept in memory but could not be persisted, both the pin and an error
// wrapping pinsuc.ErrNotPersisted are returned.
func (uc *UseCase) Confirm(ctx context.Context) (*model.Pin, error) {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if err := uc.expect("confirm", model.CaptureStateReviewing); err != nil {
		return nil, err
	}
	if uc.position == nil {
		return nil, cerr.Conflict(ErrLocationUnknown)
	}
	img, loc := uc.still, uc.position.Coordinate
	uc.toIdle(ctx)
	return uc.pins.Commit(ctx, img, loc)
}

// Cancel discards the stream and still (if any) and moves the session
// to idle without committing anything. Cancelling a pending start makes
// the late stream be stopped as soon as it is opened. Cancelling an
// idle session has no effect.
func (uc *UseCase) Cancel(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	if uc.closed {
		return cerr.Conflict(ErrClosed)
	}
	if uc.starting {
		uc.aborted = true
	}
	uc.toIdle(ctx)
	return nil
}

// expect must be called while holding the mutex.
func (uc *UseCase) expect(op string, s model.CaptureState) error {
	if uc.closed {
		return cerr.Conflict(ErrClosed)
	}
	if uc.state != s {
		return cerr.Conflict(fmt.Errorf(
			"%w: %s while %s", ErrInvalidTransition, op, uc.state,
		))
	}
	return nil
}

// toIdle releases the stream and discards the still. It must be called
// while holding the mutex.
func (uc *UseCase) toIdle(ctx context.Context) {
	uc.releaseStream(ctx)
	uc.still = ""
	uc.state = model.CaptureStateIdle
}

func (uc *UseCase) releaseStream(ctx context.Context) {
	if uc.stream == nil {
		return
	}
	if err := uc.camera.StopStream(ctx, uc.stream); err != nil {
		log.Warn(ctx, "stopping camera stream", log.Err("err", err))
	}
	uc.stream = nil
}
