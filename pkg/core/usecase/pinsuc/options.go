// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pinsuc

import "errors"

// Option is a functional option for the pins use case.
type Option func(uc *UseCase) error

// WithListener registers l, so it observes restores and commits.
// It may be passed several times; listeners are notified in the order
// of their registration.
func WithListener(l Listener) Option {
	return func(uc *UseCase) error {
		if l == nil {
			return errors.New("listener is nil")
		}
		uc.listeners = append(uc.listeners, l)
		return nil
	}
}
