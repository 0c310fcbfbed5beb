// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/config/settings"
	"github.com/momeni/fieldpin/pkg/adapter/surface/geojsonmap"
	"github.com/momeni/fieldpin/pkg/core/model"
)

// Map contains the map surface view settings. The Center is listed as
// [lat, lng] and is shown until the first location fix arrives.
type Map struct {
	Center      *[2]float64 `yaml:"center,flow,omitempty"`
	Zoom        *int        `yaml:"zoom,omitempty"`
	MaxZoom     *int        `yaml:"max-zoom,omitempty"`
	TileURL     string      `yaml:"tile-url,omitempty"`
	Attribution string      `yaml:"attribution,omitempty"`
	HerePopup   string      `yaml:"here-popup,omitempty"`
}

// ValidateAndNormalize validates the map settings.
func (m *Map) ValidateAndNormalize() error {
	d := geojsonmap.DefaultView()
	center := [2]float64{d.Center.Lat, d.Center.Lon}
	settings.OverwriteNil(&m.Center, &center)
	settings.OverwriteNil(&m.MaxZoom, &d.MaxZoom)
	settings.OverwriteNil(&m.Zoom, &d.Zoom)
	c := model.Coordinate{Lat: m.Center[0], Lon: m.Center[1]}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	minZoom, maxZoom := 0, 22
	if err := settings.VerifyRange(&m.MaxZoom, &minZoom, &maxZoom); err != nil {
		return fmt.Errorf("max-zoom: %w", err)
	}
	if err := settings.VerifyRange(&m.Zoom, &minZoom, m.MaxZoom); err != nil {
		return fmt.Errorf("zoom: %w", err)
	}
	if m.TileURL == "" {
		m.TileURL = d.TileURL
	}
	if m.Attribution == "" {
		m.Attribution = d.Attribution
	}
	if m.HerePopup == "" {
		m.HerePopup = geojsonmap.DefaultHerePopup
	}
	return nil
}

// NewSurface instantiates the map surface adapter.
func (m *Map) NewSurface() *geojsonmap.Surface {
	return geojsonmap.New(geojsonmap.View{
		Center:      model.Coordinate{Lat: m.Center[0], Lon: m.Center[1]},
		Zoom:        *m.Zoom,
		MaxZoom:     *m.MaxZoom,
		TileURL:     m.TileURL,
		Attribution: m.Attribution,
	}, m.HerePopup)
}
