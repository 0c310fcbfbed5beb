// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Position is one fix reported by a location feed. Altitude, Heading,
// and Speed are optional because the sensor may not provide them; a nil
// pointer means the value is absent (which is different from zero).
// Accuracy is the radius of uncertainty in meters.
type Position struct {
	Coordinate
	Altitude *float64 // meters above the WGS84 ellipsoid
	Accuracy float64  // meters
	Heading  *float64 // degrees clockwise from true north
	Speed    *float64 // meters per second
}

// Clone returns a deep copy of p, so the optional components may not
// be shared between the copies.
func (p Position) Clone() Position {
	p.Altitude = cloneFloat(p.Altitude)
	p.Heading = cloneFloat(p.Heading)
	p.Speed = cloneFloat(p.Speed)
	return p
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
