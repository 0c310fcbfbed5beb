// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package framecam realizes the repo.Camera interface for frames which
// are pushed into the process, e.g., by a browser which captures its
// video element and posts the frames over the REST API.
//
// A still is made from the latest frame which was pushed after its
// stream was started. Frames are limited by their pixel count, since
// decoding allocates the whole raster which their header asks for.
// The frame is rotated according to its EXIF orientation (if any),
// scaled to the configured width keeping the aspect ratio, and encoded
// as a JPEG data URL.
package framecam

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// Default values of the Camera settings.
const (
	DefaultWidth   = 320
	DefaultQuality = 85

	// DefaultMaxPixels admits frames up to 4096x4096 pixels.
	DefaultMaxPixels = 4096 * 4096
)

var (
	// ErrDisabled indicates that the camera may not be used, similar
	// to a denied camera permission.
	ErrDisabled = errors.New("camera is disabled")

	// ErrUnknownStream indicates a stream which is not open.
	ErrUnknownStream = errors.New("unknown camera stream")

	// ErrNoStream indicates a frame which is pushed while no stream is
	// open, so nobody may consume it.
	ErrNoStream = errors.New("no open camera stream")

	// ErrNoFrame indicates that no frame is pushed since the stream
	// was started.
	ErrNoFrame = errors.New("no frame is available yet")

	// ErrFrameTooLarge indicates a frame which declares more pixels
	// than the camera accepts.
	ErrFrameTooLarge = errors.New("frame has too many pixels")
)

type stream struct {
	id uuid.UUID
}

func (stream) IsStream() {}

// Camera keeps the latest pushed frame for its open streams.
type Camera struct {
	width   int
	quality int

	mutex     sync.Mutex
	enabled   bool
	maxPixels int64
	streams   map[uuid.UUID]bool
	frame     []byte
}

// New returns an enabled Camera which scales stills to width pixels
// and encodes them with the given JPEG quality. Non-positive values
// select DefaultWidth and DefaultQuality. Frames are limited to
// DefaultMaxPixels until SetMaxPixels is called.
func New(width, quality int) *Camera {
	if width <= 0 {
		width = DefaultWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Camera{
		width:     width,
		quality:   quality,
		enabled:   true,
		maxPixels: DefaultMaxPixels,
		streams:   make(map[uuid.UUID]bool),
	}
}

// SetMaxPixels changes the largest accepted width*height of frames.
// Non-positive values select DefaultMaxPixels.
func (c *Camera) SetMaxPixels(n int64) {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxPixels = n
}

// SetEnabled enables or disables the camera. Disabling it does not
// close the open streams, but following StartStream calls fail.
func (c *Camera) SetEnabled(enabled bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.enabled = enabled
}

// StartStream implements repo.Camera. Frames which were pushed before
// a stream is started are discarded.
func (c *Camera) StartStream(ctx context.Context) (repo.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating stream id: %w", err)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.enabled {
		return nil, ErrDisabled
	}
	c.streams[id] = true
	c.frame = nil
	return stream{id: id}, nil
}

// StopStream implements repo.Camera. The latest frame is dropped when
// the last stream is stopped.
func (c *Camera) StopStream(ctx context.Context, s repo.Stream) error {
	st, ok := s.(stream)
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !ok || !c.streams[st.id] {
		return ErrUnknownStream
	}
	delete(c.streams, st.id)
	if len(c.streams) == 0 {
		c.frame = nil
	}
	return nil
}

// Active returns the number of open streams.
func (c *Camera) Active() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.streams)
}

// PushFrame stores data as the latest frame, replacing the previous
// one. The data must be an encoded image, e.g., JPEG or PNG, whose
// header declares at most the configured number of pixels. Only the
// header is decoded here.
func (c *Camera) PushFrame(ctx context.Context, data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cerr.BadRequest(fmt.Errorf("decoding frame: %w", err))
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if px := int64(cfg.Width) * int64(cfg.Height); px > c.maxPixels {
		return cerr.BadRequest(fmt.Errorf(
			"%w: %dx%d exceeds %d pixels",
			ErrFrameTooLarge, cfg.Width, cfg.Height, c.maxPixels,
		))
	}
	if len(c.streams) == 0 {
		return cerr.Conflict(ErrNoStream)
	}
	c.frame = append([]byte(nil), data...)
	return nil
}

// GrabFrame implements repo.Camera.
func (c *Camera) GrabFrame(ctx context.Context, s repo.Stream) (string, error) {
	st, ok := s.(stream)
	c.mutex.Lock()
	if !ok || !c.streams[st.id] {
		c.mutex.Unlock()
		return "", ErrUnknownStream
	}
	frame := c.frame
	c.mutex.Unlock()
	if frame == nil {
		return "", ErrNoFrame
	}
	data, err := c.still(frame)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (c *Camera) still(frame []byte) ([]byte, error) {
	img, err := imaging.Decode(
		bytes.NewReader(frame), imaging.AutoOrientation(true),
	)
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}
	img = imaging.Resize(img, c.width, 0, imaging.Lanczos)
	buf := &bytes.Buffer{}
	err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(c.quality))
	if err != nil {
		return nil, fmt.Errorf("encoding still: %w", err)
	}
	return buf.Bytes(), nil
}
