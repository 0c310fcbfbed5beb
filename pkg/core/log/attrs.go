// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"

	"github.com/momeni/fieldpin/pkg/core/model"
)

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// Coord returns a group Attr holding the lat and lon of c.
func Coord(key string, c model.Coordinate) slog.Attr {
	return slog.Group(key, slog.Float64("lat", c.Lat), slog.Float64("lon", c.Lon))
}

// Count returns an Attr for a collection length.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// State returns an Attr for a capture state. Invalid states are logged
// by their numeric value instead of panicking.
func State(key string, s model.CaptureState) slog.Attr {
	if s.Validate() != nil {
		return slog.Int(key, int(s))
	}
	return slog.String(key, s.String())
}

// Version returns an Attr for a semantic version.
func Version(key string, v model.SemVer) slog.Attr {
	return slog.String(key, v.String())
}
