// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"fmt"
	"time"

	"github.com/momeni/fieldpin/pkg/adapter/config/settings"
	"github.com/momeni/fieldpin/pkg/core/usecase/captureuc"
)

// Usecases contains the settings of the supported use cases.
type Usecases struct {
	Capture Capture // capture confirmation flow settings
}

// Capture contains the capture use case settings. The StartTimeout
// bounds the wait for the camera to open a stream and is kept between
// its minimum and maximum values. Follow makes the map be centered on
// every location fix (only the first fix otherwise).
type Capture struct {
	StartTimeout    *settings.Duration `yaml:"start-timeout,omitempty"`
	MinStartTimeout *settings.Duration `yaml:"start-timeout-minimum,omitempty"`
	MaxStartTimeout *settings.Duration `yaml:"start-timeout-maximum,omitempty"`
	Follow          *bool              `yaml:"follow,omitempty"`
}

// ValidateAndNormalize validates the use cases settings.
func (u *Usecases) ValidateAndNormalize() error {
	c := &u.Capture
	follow := true
	settings.OverwriteNil(&c.Follow, &follow)
	if err := settings.VerifyRange(
		&c.StartTimeout, c.MinStartTimeout, c.MaxStartTimeout,
	); err != nil {
		return fmt.Errorf("start-timeout: %w", err)
	}
	if c.StartTimeout != nil && *c.StartTimeout < 0 {
		return fmt.Errorf("negative start timeout: %v", c.StartTimeout)
	}
	return nil
}

// CaptureOptions returns the functional options of the capture use case.
func (u *Usecases) CaptureOptions() []captureuc.Option {
	opts := make([]captureuc.Option, 0, 2)
	if d := u.Capture.StartTimeout; d != nil {
		opts = append(opts, captureuc.WithStartTimeout(time.Duration(*d)))
	}
	if f := u.Capture.Follow; f != nil {
		opts = append(opts, captureuc.WithFollow(*f))
	}
	return opts
}
