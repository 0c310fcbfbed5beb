// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapping(t *testing.T) {
	base := errors.New("camera permission denied")
	err := error(cerr.Unavailable(base))
	assert.ErrorIs(t, err, base)
	var ce *cerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusServiceUnavailable, ce.HTTPStatusCode)
	assert.Equal(t, "[503] camera permission denied", err.Error())
	assert.Equal(t, 507, cerr.InsufficientStorage(base).HTTPStatusCode)
	assert.Equal(t, 409, cerr.Conflict(base).HTTPStatusCode)
}

func TestMismatchingSemVerError(t *testing.T) {
	err := &cerr.MismatchingSemVerError{{2, 0, 0}, {3, 1, 0}}
	assert.Equal(t, "expected v2.0.0, but got v3.1.0", err.Error())
}
