// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models of fieldpin: pins, positions,
// and the capture flow states.
// This layer may not depend on outer layers, while all other layers
// may depend on it.
package model

// Pin pairs a captured still image with the location where it was
// taken. A Pin is immutable once created. The Image is an opaque
// string-encoded payload (a data URL produced by the capture device)
// and Location is a snapshot of the current position at the moment the
// capture was confirmed. Accuracy, heading, and speed are not kept.
type Pin struct {
	Image    string     // encoded still image, e.g. a data URL
	Location Coordinate // where the still was confirmed
}

// ClonePins returns a copy of pins, so callers may not mutate the
// backing array of a use case. A nil or empty input yields an empty,
// non-nil slice, which serializes as [] instead of null.
func ClonePins(pins []Pin) []Pin {
	c := make([]Pin, len(pins))
	copy(c, pins)
	return c
}
