// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pinsrp

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/model"
)

// These constants represent the major, minor, and patch components of
// the pins document version which is written by this package.
//
// Major version 1 is the unversioned legacy layout, a bare JSON array
// of pin records. Major version 2 wraps the same records in an object
// which carries the version string, so later layout changes can be
// detected before decoding the records.
const (
	Major = 2
	Minor = 0
	Patch = 0
)

// Version is the latest supported pins document version.
var Version = model.SemVer{Major, Minor, Patch}

// legacyVersion is reported for documents without a version tag.
var legacyVersion = model.SemVer{1, 0, 0}

// ErrEmptyDocument indicates a document with no JSON value at all.
var ErrEmptyDocument = errors.New("empty pins document")

// ErrUnknownLayout indicates a document which is neither a JSON array
// (version 1) nor a JSON object (version 2 and later).
var ErrUnknownLayout = errors.New("unknown pins document layout")

// record is one persisted pin. Location is kept as [lat, lng], so both
// document versions share it.
type record struct {
	Image    string    `json:"image"`
	Location []float64 `json:"location"`
}

// document2 is the version 2 layout.
type document2 struct {
	Version model.SemVer `json:"version"`
	Pins    []record     `json:"pins"`
}

// versionProbe decodes only the version of an object document.
type versionProbe struct {
	Version *model.SemVer `json:"version"`
}

func newRecord(p model.Pin) record {
	return record{
		Image:    p.Image,
		Location: []float64{p.Location.Lat, p.Location.Lon},
	}
}

func (r record) model(i int) (model.Pin, error) {
	if n := len(r.Location); n != 2 {
		return model.Pin{}, fmt.Errorf(
			"pin #%d: location has %d components instead of 2", i, n,
		)
	}
	c := model.Coordinate{Lat: r.Location[0], Lon: r.Location[1]}
	if err := c.Validate(); err != nil {
		return model.Pin{}, fmt.Errorf("pin #%d: %w", i, err)
	}
	return model.Pin{Image: r.Image, Location: c}, nil
}

func models(records []record) ([]model.Pin, error) {
	pins := make([]model.Pin, 0, len(records))
	for i, r := range records {
		p, err := r.model(i)
		if err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// Encode serializes pins as a document with the latest Version.
func Encode(pins []model.Pin) ([]byte, error) {
	d := document2{Version: Version, Pins: make([]record, 0, len(pins))}
	for _, p := range pins {
		d.Pins = append(d.Pins, newRecord(p))
	}
	return json.Marshal(d)
}

// Decode detects the version of data, migrates it upwards to the latest
// known layout if it was written by an older version, and returns its
// pins together with the detected version. Documents with a newer or
// unknown major version are rejected with a *cerr.MismatchingSemVerError
// because their records may not be interpreted safely.
func Decode(data []byte) ([]model.Pin, model.SemVer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, model.SemVer{}, ErrEmptyDocument
	}
	switch trimmed[0] {
	case '[':
		var records []record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, legacyVersion, fmt.Errorf("decoding v1 records: %w", err)
		}
		pins, err := models(records)
		return pins, legacyVersion, err
	case '{':
		probe := versionProbe{}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, model.SemVer{}, fmt.Errorf("decoding version: %w", err)
		}
		if probe.Version == nil {
			return nil, model.SemVer{}, errors.New("document has no version")
		}
		v := *probe.Version
		if v.Major() != Major {
			return nil, v, &cerr.MismatchingSemVerError{Version, v}
		}
		d := document2{}
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, v, fmt.Errorf("decoding v%s document: %w", v, err)
		}
		pins, err := models(d.Pins)
		return pins, v, err
	default:
		return nil, model.SemVer{}, ErrUnknownLayout
	}
}
