// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package geojsonmap realizes the repo.MapSurface interface as a map
// model which may be rendered by any web map client. The markers and
// the live position indicator are published as a GeoJSON feature
// collection, next to a view (center, zoom, and tile layer). Clients
// fetch a Snapshot and may Watch for changes.
package geojsonmap

import (
	"context"
	"sync"

	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Default view settings.
const (
	DefaultZoom        = 17
	DefaultMaxZoom     = 19
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="http://www.openstreetmap.org/copyright">OpenStreetMap</a>`
	DefaultHerePopup   = "You are here!"
)

// DefaultCenter is shown until the first location fix arrives.
var DefaultCenter = model.Coordinate{Lat: 47.406653, Lon: 9.744844}

// Values of the "kind" feature property.
const (
	KindPin      = "pin"
	KindPosition = "position"
)

// View describes the visible map area and its tile layer.
type View struct {
	Center      model.Coordinate
	Zoom        int
	MaxZoom     int
	TileURL     string
	Attribution string
}

// DefaultView returns the view which is used when no settings exist.
func DefaultView() View {
	return View{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		MaxZoom:     DefaultMaxZoom,
		TileURL:     DefaultTileURL,
		Attribution: DefaultAttribution,
	}
}

// Snapshot is a consistent copy of the surface content. Revision is
// increased by each change, so clients may skip stale snapshots.
type Snapshot struct {
	Revision uint64
	View     View
	Features *geojson.FeatureCollection
}

type marker struct {
	loc   model.Coordinate
	popup string
}

type indicator struct {
	loc      model.Coordinate
	accuracy float64
}

// Surface keeps the map content and notifies its watchers.
type Surface struct {
	herePopup string

	mutex     sync.Mutex
	view      View
	markers   []marker
	indicator *indicator
	revision  uint64
	watchers  map[chan struct{}]struct{}
}

// New returns an empty Surface with the given view. The herePopup is
// shown by the live position indicator; an empty string selects the
// DefaultHerePopup.
func New(v View, herePopup string) *Surface {
	if herePopup == "" {
		herePopup = DefaultHerePopup
	}
	return &Surface{
		herePopup: herePopup,
		view:      v,
		watchers:  make(map[chan struct{}]struct{}),
	}
}

// PlaceMarker implements repo.MapSurface.
func (s *Surface) PlaceMarker(
	ctx context.Context, loc model.Coordinate, popup string,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.markers = append(s.markers, marker{loc: loc, popup: popup})
	s.changed()
	return nil
}

// PlaceOrUpdateLiveIndicator implements repo.MapSurface.
func (s *Surface) PlaceOrUpdateLiveIndicator(
	ctx context.Context, loc model.Coordinate, accuracy float64,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.indicator = &indicator{loc: loc, accuracy: accuracy}
	s.changed()
	return nil
}

// CenterOn implements repo.MapSurface.
func (s *Surface) CenterOn(ctx context.Context, loc model.Coordinate) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.view.Center == loc {
		return nil
	}
	s.view.Center = loc
	s.changed()
	return nil
}

// ClearMarkers implements repo.MapSurface. The live indicator stays.
func (s *Surface) ClearMarkers(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.markers) == 0 {
		return nil
	}
	s.markers = nil
	s.changed()
	return nil
}

// changed must be called while holding the mutex.
func (s *Surface) changed() {
	s.revision++
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default: // a notification is pending already
		}
	}
}

// Snapshot returns the current content. Markers are listed in their
// placement order, followed by the live indicator (if any). Marker
// features carry their index instead of the popup, since popups are
// photos which would be copied into every snapshot; see Popup.
func (s *Surface) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fc := geojson.NewFeatureCollection()
	for i, m := range s.markers {
		f := geojson.NewFeature(point(m.loc))
		f.Properties = geojson.Properties{
			"kind":  KindPin,
			"index": i,
		}
		fc.Append(f)
	}
	if s.indicator != nil {
		f := geojson.NewFeature(point(s.indicator.loc))
		f.Properties = geojson.Properties{
			"kind":   KindPosition,
			"popup":  s.herePopup,
			"radius": s.indicator.accuracy,
		}
		fc.Append(f)
	}
	return Snapshot{Revision: s.revision, View: s.view, Features: fc}
}

// Popup returns the popup of the i-th marker, as placed by
// PlaceMarker, or false if there is no such marker.
func (s *Surface) Popup(i int) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if i < 0 || i >= len(s.markers) {
		return "", false
	}
	return s.markers[i].popup, true
}

// Watch returns a channel which receives a value after changes. Many
// changes may be coalesced into one notification, so receivers should
// take a fresh Snapshot per notification. The channel is closed when
// ctx is done.
func (s *Surface) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mutex.Lock()
	s.watchers[ch] = struct{}{}
	s.mutex.Unlock()
	go func() {
		<-ctx.Done()
		s.mutex.Lock()
		delete(s.watchers, ch)
		s.mutex.Unlock()
		close(ch)
	}()
	return ch
}

// Watchers returns the number of active watchers.
func (s *Surface) Watchers() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.watchers)
}

// point converts loc to a GeoJSON point, which lists the longitude
// before the latitude.
func point(loc model.Coordinate) orb.Point {
	return orb.Point{loc.Lon, loc.Lat}
}
