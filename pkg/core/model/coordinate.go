// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"math"
)

// Coordinate represents a geographical location with a latitude and
// longitude, both in degrees. It is the location half of a Pin and the
// horizontal part of a Position.
type Coordinate struct {
	Lat, Lon float64 // latitude and longitude of the geo-location
}

// ErrNotFinite indicates that a latitude or longitude was NaN or an
// infinite value, so it may not be placed on a map.
var ErrNotFinite = errors.New("coordinate component is not finite")

// CoordinateRangeError reports a finite coordinate component which is
// out of its acceptable degrees range. Axis is either "latitude" or
// "longitude" and Value is the rejected component.
type CoordinateRangeError struct {
	Axis  string
	Value float64
}

// Error implements the error interface.
func (e *CoordinateRangeError) Error() string {
	return fmt.Sprintf("%s is out of range: %v", e.Axis, e.Value)
}

// Validate returns nil if c can be used as a Pin location, that is,
// its latitude is within [-90, 90] and its longitude is within
// [-180, 180]. Otherwise, ErrNotFinite or a *CoordinateRangeError is
// returned.
func (c Coordinate) Validate() error {
	for _, v := range [2]float64{c.Lat, c.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	switch {
	case c.Lat < -90 || c.Lat > 90:
		return &CoordinateRangeError{Axis: "latitude", Value: c.Lat}
	case c.Lon < -180 || c.Lon > 180:
		return &CoordinateRangeError{Axis: "longitude", Value: c.Lon}
	}
	return nil
}

// String returns c as "lat,lon" with full precision.
func (c Coordinate) String() string {
	return fmt.Sprintf("%v,%v", c.Lat, c.Lon)
}
