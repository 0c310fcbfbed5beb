// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package captureuc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/momeni/fieldpin/internal/test/fakes"
	"github.com/momeni/fieldpin/internal/test/memkv"
	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/usecase/captureuc"
	"github.com/momeni/fieldpin/pkg/core/usecase/pinsuc"
	"github.com/stretchr/testify/suite"
)

type CaptureSuite struct {
	suite.Suite

	ctx     context.Context
	kv      *memkv.Store
	camera  *fakes.Camera
	feed    *fakes.Feed
	surface *fakes.Surface
	pins    *pinsuc.UseCase
	uc      *captureuc.UseCase
}

func TestCaptureSuite(t *testing.T) {
	suite.Run(t, new(CaptureSuite))
}

var here = model.Position{
	Coordinate: model.Coordinate{Lat: 47.406653, Lon: 9.744844},
	Accuracy:   12.5,
}

func (cs *CaptureSuite) SetupTest() {
	cs.ctx = context.Background()
	cs.kv = memkv.New()
	cs.camera = fakes.NewCamera()
	cs.feed = &fakes.Feed{}
	cs.surface = &fakes.Surface{}
	var err error
	cs.pins, err = pinsuc.New(
		pinsrp.New(cs.kv, ""),
		pinsuc.WithListener(captureuc.Markers{Surface: cs.surface}),
	)
	cs.Require().NoError(err)
	cs.pins.Restore(cs.ctx)
	cs.uc, err = captureuc.New(
		cs.pins, cs.camera, cs.feed, cs.surface,
		captureuc.WithStartTimeout(time.Second),
	)
	cs.Require().NoError(err)
	cs.Require().NoError(cs.uc.Watch(cs.ctx))
}

func (cs *CaptureSuite) TearDownTest() {
	cs.NoError(cs.uc.Close(cs.ctx))
	cs.Zero(cs.camera.Active(), "streams must not leak")
	cs.False(cs.feed.Subscribed(), "feed must be unsubscribed")
}

func (cs *CaptureSuite) state() model.CaptureState {
	return cs.uc.Snapshot().State
}

func (cs *CaptureSuite) statusOf(err error) int {
	var e *cerr.Error
	cs.Require().ErrorAs(err, &e)
	return e.HTTPStatusCode
}

func (cs *CaptureSuite) reviewing() {
	cs.Require().NoError(cs.uc.StartCapture(cs.ctx))
	cs.Require().NoError(cs.uc.TakeStill(cs.ctx))
	cs.Require().Equal(model.CaptureStateReviewing, cs.state())
}

func (cs *CaptureSuite) TestInitialSnapshot() {
	s := cs.uc.Snapshot()
	cs.Equal(model.CaptureStateIdle, s.State)
	cs.False(s.HasStill)
	cs.Nil(s.Position)
}

func (cs *CaptureSuite) TestFixesUpdateIndicator() {
	cs.feed.Fix(cs.ctx, here)
	later := here
	later.Lat += 0.001
	alt := 431.2
	later.Altitude = &alt
	cs.feed.Fix(cs.ctx, later)

	loc, acc := cs.surface.Indicator()
	cs.Require().NotNil(loc)
	cs.Equal(later.Coordinate, *loc, "latest fix wins")
	cs.Equal(12.5, acc)
	cs.Equal([]model.Coordinate{here.Coordinate, later.Coordinate},
		cs.surface.Centers(),
	)
	s := cs.uc.Snapshot()
	cs.Require().NotNil(s.Position)
	cs.Equal(later.Coordinate, s.Position.Coordinate)
	cs.Require().NotNil(s.Position.Altitude)
	alt = 0
	cs.Equal(431.2, *s.Position.Altitude, "fix is copied")
}

func (cs *CaptureSuite) TestInvalidFixIgnored() {
	cs.feed.Fix(cs.ctx, model.Position{Coordinate: model.Coordinate{Lat: 123}})
	cs.Nil(cs.uc.Snapshot().Position)
	loc, _ := cs.surface.Indicator()
	cs.Nil(loc)
}

func (cs *CaptureSuite) TestLocationErrorKeepsLastFix() {
	cs.feed.Fix(cs.ctx, here)
	cs.feed.Fail(cs.ctx, errors.New("position unavailable"))
	cs.Require().NotNil(cs.uc.Snapshot().Position)
}

func (cs *CaptureSuite) TestConfirmFlow() {
	cs.feed.Fix(cs.ctx, here)
	cs.reviewing()
	cs.True(cs.uc.Snapshot().HasStill)
	cs.Equal(1, cs.camera.Active())

	p, err := cs.uc.Confirm(cs.ctx)
	cs.Require().NoError(err)
	cs.Equal(model.Pin{Image: "still-of-stream-1", Location: here.Coordinate}, *p)
	cs.Equal(model.CaptureStateIdle, cs.state())
	cs.False(cs.uc.Snapshot().HasStill)
	cs.Zero(cs.camera.Active())
	cs.Equal([]fakes.Marker{{
		Location: here.Coordinate, Popup: "still-of-stream-1",
	}}, cs.surface.Markers())
	cs.Equal([]model.Pin{*p}, cs.pins.Pins())
	cs.Equal(1, cs.kv.Puts())
}

func (cs *CaptureSuite) TestConfirmWithoutLocation() {
	cs.reviewing()
	_, err := cs.uc.Confirm(cs.ctx)
	cs.ErrorIs(err, captureuc.ErrLocationUnknown)
	cs.Equal(http.StatusConflict, cs.statusOf(err))
	cs.Empty(cs.pins.Pins(), "no pin may be created")
	cs.Zero(cs.kv.Puts(), "storage may not be written")
	cs.Empty(cs.surface.Markers())
	cs.Equal(model.CaptureStateReviewing, cs.state())

	// a later fix unblocks the same still
	cs.feed.Fix(cs.ctx, here)
	_, err = cs.uc.Confirm(cs.ctx)
	cs.NoError(err)
}

func (cs *CaptureSuite) TestConfirmWriteFailure() {
	cs.feed.Fix(cs.ctx, here)
	cs.reviewing()
	cs.kv.FailPut(true)
	p, err := cs.uc.Confirm(cs.ctx)
	cs.ErrorIs(err, pinsuc.ErrNotPersisted)
	cs.Equal(http.StatusInsufficientStorage, cs.statusOf(err))
	cs.Require().NotNil(p)
	cs.Len(cs.surface.Markers(), 1, "pin is still rendered")
	cs.Equal(model.CaptureStateIdle, cs.state())
	cs.Zero(cs.camera.Active())
}

func (cs *CaptureSuite) TestCancelReleasesStream() {
	cs.Require().NoError(cs.uc.StartCapture(cs.ctx))
	cs.Equal(1, cs.camera.Active())
	cs.Require().NoError(cs.uc.Cancel(cs.ctx))
	cs.Zero(cs.camera.Active())
	cs.Equal(model.CaptureStateIdle, cs.state())

	cs.reviewing()
	cs.Require().NoError(cs.uc.Cancel(cs.ctx))
	cs.Zero(cs.camera.Active())
	cs.False(cs.uc.Snapshot().HasStill)
	cs.Empty(cs.pins.Pins())

	cs.NoError(cs.uc.Cancel(cs.ctx), "cancelling while idle is a no-op")
}

func (cs *CaptureSuite) TestRetakeReusesStream() {
	cs.reviewing()
	cs.Require().NoError(cs.uc.Retake(cs.ctx))
	cs.Equal(model.CaptureStatePreviewing, cs.state())
	cs.False(cs.uc.Snapshot().HasStill)
	cs.Equal(1, cs.camera.Active(), "no second stream is opened")
	cs.Equal(1, cs.camera.Started())
	cs.Require().NoError(cs.uc.TakeStill(cs.ctx))
	cs.Require().NoError(cs.uc.Cancel(cs.ctx))
	cs.Zero(cs.camera.Active())
}

func (cs *CaptureSuite) TestCameraDenied() {
	cs.camera.Deny(true)
	err := cs.uc.StartCapture(cs.ctx)
	cs.ErrorIs(err, fakes.ErrDenied)
	cs.Equal(http.StatusServiceUnavailable, cs.statusOf(err))
	cs.Equal(model.CaptureStateIdle, cs.state())

	cs.camera.Deny(false)
	cs.NoError(cs.uc.StartCapture(cs.ctx), "a later attempt may succeed")
}

func (cs *CaptureSuite) TestStartTimeout() {
	release := cs.camera.Hold()
	defer release()
	uc, err := captureuc.New(cs.pins, cs.camera, cs.feed, cs.surface,
		captureuc.WithStartTimeout(10*time.Millisecond),
	)
	cs.Require().NoError(err)
	err = uc.StartCapture(cs.ctx)
	cs.ErrorIs(err, context.DeadlineExceeded)
	cs.Equal(model.CaptureStateIdle, uc.Snapshot().State)
}

func (cs *CaptureSuite) TestCancelWhileStarting() {
	release := cs.camera.Hold()
	done := make(chan error, 1)
	go func() {
		done <- cs.uc.StartCapture(cs.ctx)
	}()
	cs.Eventually(func() bool {
		return cs.camera.Waiting() == 1
	}, time.Second, time.Millisecond)

	// other events are handled while the camera is pending
	cs.feed.Fix(cs.ctx, here)
	cs.NotNil(cs.uc.Snapshot().Position)
	cs.ErrorIs(cs.uc.StartCapture(cs.ctx), captureuc.ErrInvalidTransition)

	cs.Require().NoError(cs.uc.Cancel(cs.ctx))
	release()
	err := <-done
	cs.ErrorIs(err, captureuc.ErrCaptureAborted)
	cs.Equal(model.CaptureStateIdle, cs.state())
	cs.Zero(cs.camera.Active(), "late stream is stopped")
	cs.Equal(1, cs.camera.Started())
}

func (cs *CaptureSuite) TestInvalidTransitions() {
	cs.ErrorIs(cs.uc.TakeStill(cs.ctx), captureuc.ErrInvalidTransition)
	cs.ErrorIs(cs.uc.Retake(cs.ctx), captureuc.ErrInvalidTransition)
	_, err := cs.uc.Confirm(cs.ctx)
	cs.ErrorIs(err, captureuc.ErrInvalidTransition)
	cs.Equal(http.StatusConflict, cs.statusOf(err))

	cs.Require().NoError(cs.uc.StartCapture(cs.ctx))
	cs.ErrorIs(cs.uc.StartCapture(cs.ctx), captureuc.ErrInvalidTransition)
	cs.ErrorIs(cs.uc.Retake(cs.ctx), captureuc.ErrInvalidTransition)
	_, err = cs.uc.Confirm(cs.ctx)
	cs.ErrorIs(err, captureuc.ErrInvalidTransition)
	cs.Equal(1, cs.camera.Started())
}

func (cs *CaptureSuite) TestCloseReleasesEverything() {
	cs.reviewing()
	cs.Require().NoError(cs.uc.Close(cs.ctx))
	cs.Zero(cs.camera.Active())
	cs.False(cs.feed.Subscribed())
	cs.Equal(model.CaptureStateIdle, cs.state())
	cs.ErrorIs(cs.uc.StartCapture(cs.ctx), captureuc.ErrClosed)
	cs.ErrorIs(cs.uc.Watch(cs.ctx), captureuc.ErrClosed)

	// fixes after close are dropped
	cs.feed.Fix(cs.ctx, here)
	cs.Nil(cs.uc.Snapshot().Position)
}

func (cs *CaptureSuite) TestRestoreRendersMarkersOnce() {
	cs.feed.Fix(cs.ctx, here)
	cs.reviewing()
	_, err := cs.uc.Confirm(cs.ctx)
	cs.Require().NoError(err)

	cs.pins.Restore(cs.ctx)
	cs.pins.Restore(cs.ctx)
	cs.Len(cs.surface.Markers(), 1)
}

func TestFollowOption(t *testing.T) {
	ctx := context.Background()
	pins, err := pinsuc.New(pinsrp.New(memkv.New(), ""))
	if err != nil {
		t.Fatal(err)
	}
	surface := &fakes.Surface{}
	feed := &fakes.Feed{}
	uc, err := captureuc.New(pins, fakes.NewCamera(), feed, surface,
		captureuc.WithFollow(false),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err = uc.Watch(ctx); err != nil {
		t.Fatal(err)
	}
	feed.Fix(ctx, here)
	feed.Fix(ctx, here)
	if n := len(surface.Centers()); n != 1 {
		t.Errorf("expected one centering, got %d", n)
	}
	if _, err = captureuc.New(pins, nil, nil, nil,
		captureuc.WithStartTimeout(-time.Second),
	); err == nil {
		t.Error("negative start timeout must be rejected")
	}
}
