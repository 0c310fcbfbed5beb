// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pinsrs

import "github.com/momeni/fieldpin/pkg/core/model"

// Pin is the REST representation of a model.Pin. Its location is
// listed as [lat, lng], like the persisted pin records.
type Pin struct {
	Image    string     `json:"image"`
	Location [2]float64 `json:"location"`
}

// SerPin converts p to its REST representation.
func SerPin(p model.Pin) Pin {
	return Pin{
		Image:    p.Image,
		Location: [2]float64{p.Location.Lat, p.Location.Lon},
	}
}

// SerPins converts pins to their REST representation.
func SerPins(pins []model.Pin) []Pin {
	res := make([]Pin, 0, len(pins))
	for _, p := range pins {
		res = append(res, SerPin(p))
	}
	return res
}
