// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all use case and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fieldpin/pkg/adapter/config/cfg1"
	"github.com/momeni/fieldpin/pkg/adapter/device/framecam"
	"github.com/momeni/fieldpin/pkg/adapter/device/pushfeed"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/capturers"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/maprs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/pinsrs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/positionrs"
	"github.com/momeni/fieldpin/pkg/adapter/surface/geojsonmap"
	"github.com/momeni/fieldpin/pkg/core/repo"
	"github.com/momeni/fieldpin/pkg/core/usecase/captureuc"
	"github.com/momeni/fieldpin/pkg/core/usecase/pinsuc"
)

// BasePath is the common prefix of all registered REST APIs.
const BasePath = "/api/fieldpin/v1"

// Session holds the use cases and device adapters which are shared by
// all registered resources. It must be closed when the server stops,
// so the feed subscription and any open camera stream are released
// and the map WebSockets are closed.
type Session struct {
	Pins    *pinsuc.UseCase
	Capture *captureuc.UseCase
	Feed    *pushfeed.Feed
	Camera  *framecam.Camera
	Surface *geojsonmap.Surface

	cancel context.CancelFunc
}

// Register instantiates the device adapters and use cases based on
// the c configuration settings and the pins repository, restores the
// persisted pins (rendering them on the map surface), and subscribes
// the capture session to the location feed. Thereafter, it registers
// one resource per use case, from packages which are named like
// pinsrs, as request handlers using the e gin-gonic engine instance.
// Possible errors will be returned after possible wrapping.
func Register(
	ctx context.Context, e *gin.Engine, pins repo.Pins, c *cfg1.Config,
) (*Session, error) {
	surface := c.Map.NewSurface()
	camera := c.Camera.NewCamera()
	feed := pushfeed.New()

	pinsUseCase, err := pinsuc.New(
		pins, pinsuc.WithListener(captureuc.Markers{Surface: surface}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pins use case: %w", err)
	}
	captureUseCase, err := captureuc.New(
		pinsUseCase, camera, feed, surface,
		c.Usecases.CaptureOptions()...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating capture use case: %w", err)
	}
	pinsUseCase.Restore(ctx)
	if err = captureUseCase.Watch(ctx); err != nil {
		return nil, fmt.Errorf("watching location feed: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	r := e.Group(BasePath)
	pinsrs.Register(r, pinsUseCase)
	positionrs.Register(r, feed, captureUseCase)
	capturers.Register(r, captureUseCase, camera, *c.Camera.MaxFrameBytes)
	maprs.Register(sctx, r, surface)
	return &Session{
		Pins:    pinsUseCase,
		Capture: captureUseCase,
		Feed:    feed,
		Camera:  camera,
		Surface: surface,
		cancel:  cancel,
	}, nil
}

// Close ends the map WebSockets and releases the capture session
// resources. It may be called more than once, e.g., from an
// http.Server.RegisterOnShutdown hook and after the server returns.
func (s *Session) Close(ctx context.Context) error {
	s.cancel()
	return s.Capture.Close(ctx)
}
