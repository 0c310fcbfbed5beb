// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		c    model.Coordinate
		axis string
		nan  bool
	}{
		{name: "origin", c: model.Coordinate{}},
		{name: "field", c: model.Coordinate{Lat: 47.406653, Lon: 9.744844}},
		{name: "poles", c: model.Coordinate{Lat: -90, Lon: 180}},
		{name: "lat high", c: model.Coordinate{Lat: 90.1}, axis: "latitude"},
		{name: "lon low", c: model.Coordinate{Lon: -180.5}, axis: "longitude"},
		{name: "nan", c: model.Coordinate{Lat: math.NaN()}, nan: true},
		{name: "inf", c: model.Coordinate{Lon: math.Inf(1)}, nan: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			switch {
			case tc.nan:
				assert.ErrorIs(t, err, model.ErrNotFinite)
			case tc.axis != "":
				var re *model.CoordinateRangeError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, tc.axis, re.Axis)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCaptureStateRoundTrip(t *testing.T) {
	for _, s := range []model.CaptureState{
		model.CaptureStateIdle,
		model.CaptureStatePreviewing,
		model.CaptureStateReviewing,
	} {
		require.NoError(t, s.Validate())
		parsed, err := model.ParseCaptureState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		text, err := s.MarshalText()
		require.NoError(t, err)
		var decoded model.CaptureState
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, s, decoded)
	}
	_, err := model.ParseCaptureState("paused")
	assert.ErrorIs(t, err, model.ErrUnknownCaptureState)
	assert.Error(t, model.CaptureStateInvalid.Validate())
	assert.Panics(t, func() { _ = model.CaptureStateInvalid.String() })
}

func TestSemVerText(t *testing.T) {
	var sv model.SemVer
	require.NoError(t, sv.UnmarshalText([]byte("2.1")))
	assert.Equal(t, model.SemVer{2, 1, 0}, sv)
	assert.Equal(t, uint(2), sv.Major())
	assert.Error(t, sv.UnmarshalText([]byte("2.x.0")))
	assert.Error(t, sv.UnmarshalText([]byte("1.2.3.4")))
	assert.Equal(t, model.SemVer{2, 1, 0}, sv, "failed parse changed sv")

	b, err := json.Marshal(struct {
		V model.SemVer `json:"v"`
	}{V: model.SemVer{1, 4, 5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"1.4.5"}`, string(b))
}

func TestClonePins(t *testing.T) {
	assert.NotNil(t, model.ClonePins(nil))
	src := []model.Pin{{Image: "imgA"}}
	c := model.ClonePins(src)
	c[0].Image = "changed"
	assert.Equal(t, "imgA", src[0].Image)
}
