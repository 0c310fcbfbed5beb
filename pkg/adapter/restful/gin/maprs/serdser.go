// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package maprs

import (
	"github.com/momeni/fieldpin/pkg/adapter/surface/geojsonmap"
	"github.com/paulmach/orb/geojson"
)

// View is the REST representation of the map view. Center is listed
// as [lat, lng] like the pin locations.
type View struct {
	Center      [2]float64 `json:"center"`
	Zoom        int        `json:"zoom"`
	MaxZoom     int        `json:"max_zoom"`
	TileURL     string     `json:"tile_url"`
	Attribution string     `json:"attribution"`
}

// Snapshot is the REST representation of the map surface content.
type Snapshot struct {
	Revision uint64                     `json:"revision"`
	View     View                       `json:"view"`
	Features *geojson.FeatureCollection `json:"features"`
}

type popupReq struct {
	Index int `uri:"index" binding:"min=0"`
}

// Popup is the REST representation of one marker popup, which is the
// still photo of its pin as a data URL.
type Popup struct {
	Index int    `json:"index"`
	Popup string `json:"popup"`
}

// SerSnapshot converts s to its REST representation.
func SerSnapshot(s geojsonmap.Snapshot) Snapshot {
	return Snapshot{
		Revision: s.Revision,
		View: View{
			Center:      [2]float64{s.View.Center.Lat, s.View.Center.Lon},
			Zoom:        s.View.Zoom,
			MaxZoom:     s.View.MaxZoom,
			TileURL:     s.View.TileURL,
			Attribution: s.View.Attribution,
		},
		Features: s.Features,
	}
}
