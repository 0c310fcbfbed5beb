// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package captureuc

import (
	"errors"
	"time"
)

// Option is a functional option for the capture use case.
type Option func(uc *UseCase) error

// WithStartTimeout bounds the wait for the camera to open a stream.
// Zero means that StartCapture waits as long as its context allows.
func WithStartTimeout(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d < 0 {
			return errors.New("start timeout must be non-negative")
		}
		uc.startTimeout = d
		return nil
	}
}

// WithFollow specifies if the map surface should be centered on every
// location fix (true, the default) or only on the first one.
func WithFollow(follow bool) Option {
	return func(uc *UseCase) error {
		uc.follow = follow
		return nil
	}
}
