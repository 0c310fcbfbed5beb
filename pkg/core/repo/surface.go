// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/fieldpin/pkg/core/model"
)

// MapSurface renders a basemap, one live position indicator, and point
// markers with attached popups. The core only pushes plain data to it.
type MapSurface interface {
	// PlaceMarker adds a marker at loc with the given popup content.
	PlaceMarker(ctx context.Context, loc model.Coordinate, popup string) error

	// PlaceOrUpdateLiveIndicator moves the live position indicator to
	// loc, creating it on the first call, and sets its accuracy circle
	// radius in meters.
	PlaceOrUpdateLiveIndicator(
		ctx context.Context, loc model.Coordinate, accuracy float64,
	) error

	// CenterOn moves the map view so loc is at its center.
	CenterOn(ctx context.Context, loc model.Coordinate) error

	// ClearMarkers removes all markers placed by PlaceMarker, keeping
	// the live indicator.
	ClearMarkers(ctx context.Context) error
}
