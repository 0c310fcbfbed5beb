// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package captureuc

import (
	"context"

	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// Markers is a pinsuc.Listener which renders each pin as a marker on
// a map surface, using the pin image as the marker popup content.
type Markers struct {
	Surface repo.MapSurface
}

// PinsRestored replaces all markers with the restored pins.
func (m Markers) PinsRestored(ctx context.Context, pins []model.Pin) {
	if err := m.Surface.ClearMarkers(ctx); err != nil {
		log.Warn(ctx, "clearing markers", log.Err("err", err))
	}
	for _, p := range pins {
		m.PinCommitted(ctx, p)
	}
}

// PinCommitted adds one marker for pin.
func (m Markers) PinCommitted(ctx context.Context, pin model.Pin) {
	err := m.Surface.PlaceMarker(ctx, pin.Location, pin.Image)
	if err != nil {
		log.Warn(ctx, "placing marker",
			log.Coord("location", pin.Location), log.Err("err", err),
		)
	}
}
