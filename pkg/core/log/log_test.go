// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/momeni/fieldpin/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

func TestAttrsAreLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	defer slog.SetDefault(prev)
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))

	ctx := context.Background()
	log.Warn(ctx, "restore failed",
		log.Err("err", errors.New("corrupt")),
		log.Coord("at", model.Coordinate{Lat: 47.5, Lon: 9.75}),
		log.Count("pins", 3),
		log.State("state", model.CaptureStateReviewing),
	)
	log.Debug(ctx, "hidden")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `err=corrupt`)
	assert.Contains(t, out, "at.lat=47.5")
	assert.Contains(t, out, "at.lon=9.75")
	assert.Contains(t, out, "pins=3")
	assert.Contains(t, out, "state=reviewing")
	assert.NotContains(t, out, "hidden")
}

func TestNilErrAndInvalidState(t *testing.T) {
	assert.Equal(t, "no-error", log.Err("err", nil).Value.String())
	assert.Equal(t, int64(0), log.State("s", model.CaptureStateInvalid).Value.Int64())
}
