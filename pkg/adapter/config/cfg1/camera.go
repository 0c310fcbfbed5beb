// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/config/settings"
	"github.com/momeni/fieldpin/pkg/adapter/device/framecam"
)

// DefaultMaxFrameBytes bounds the size of one pushed camera frame.
const DefaultMaxFrameBytes = 8 << 20

// Camera contains the pushed camera frames settings.
type Camera struct {
	Enabled       *bool  `yaml:"enabled,omitempty"`
	Width         *int   `yaml:"width,omitempty"`   // still width in pixels
	Quality       *int   `yaml:"quality,omitempty"` // JPEG quality, 1 to 100
	MaxFrameBytes *int64 `yaml:"max-frame-bytes,omitempty"`

	// MaxFramePixels bounds width*height of one pushed frame, as its
	// header declares them. A few bytes of PNG may ask for gigabytes.
	MaxFramePixels *int64 `yaml:"max-frame-pixels,omitempty"`
}

// ValidateAndNormalize validates the camera settings.
func (c *Camera) ValidateAndNormalize() error {
	enabled, width, quality := true, framecam.DefaultWidth, framecam.DefaultQuality
	maxFrame := int64(DefaultMaxFrameBytes)
	maxPixels := int64(framecam.DefaultMaxPixels)
	settings.OverwriteNil(&c.Enabled, &enabled)
	settings.OverwriteNil(&c.Width, &width)
	settings.OverwriteNil(&c.Quality, &quality)
	settings.OverwriteNil(&c.MaxFrameBytes, &maxFrame)
	settings.OverwriteNil(&c.MaxFramePixels, &maxPixels)
	minWidth, maxWidth := 16, 4096
	if err := settings.VerifyRange(&c.Width, &minWidth, &maxWidth); err != nil {
		return fmt.Errorf("width: %w", err)
	}
	minQuality, maxQuality := 1, 100
	if err := settings.VerifyRange(
		&c.Quality, &minQuality, &maxQuality,
	); err != nil {
		return fmt.Errorf("quality: %w", err)
	}
	minFrame := int64(1)
	if err := settings.VerifyRange(&c.MaxFrameBytes, &minFrame, nil); err != nil {
		return fmt.Errorf("max-frame-bytes: %w", err)
	}
	if err := settings.VerifyRange(
		&c.MaxFramePixels, &minFrame, nil,
	); err != nil {
		return fmt.Errorf("max-frame-pixels: %w", err)
	}
	return nil
}

// NewCamera instantiates the camera adapter.
func (c *Camera) NewCamera() *framecam.Camera {
	cam := framecam.New(*c.Width, *c.Quality)
	cam.SetEnabled(*c.Enabled)
	cam.SetMaxPixels(*c.MaxFramePixels)
	return cam
}
