// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serdser

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixReq struct {
	Lat *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lon *float64 `form:"lon" binding:"required,min=-180,max=180"`
}

func formContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost, "/", strings.NewReader(body),
	)
	c.Request.Header.Set("Content-Type", binding.MIMEPOSTForm)
	return c, w
}

func TestAddErr(t *testing.T) {
	var errs map[string][]string
	addErr(&errs, "lat", "too large")
	addErr(&errs, "lat", "not a fix", "stale")
	addErr(&errs, "lon")
	assert.Equal(t, map[string][]string{
		"lat": {"too large", "not a fix", "stale"},
		"lon": nil,
	}, errs)
}

func TestBind(t *testing.T) {
	c, _ := formContext("lat=47.5&lon=9.75")
	req := &fixReq{}
	require.True(t, Bind(c, req, binding.Form))
	assert.Equal(t, 47.5, *req.Lat)
	assert.Equal(t, 9.75, *req.Lon)

	c, w := formContext("lat=95")
	assert.False(t, Bind(c, &fixReq{}, binding.Form))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errs map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errs))
	assert.Len(t, errs, 2, "lat is out of range and lon is missing")
	assert.Len(t, errs["Lat"], 1)
	assert.Len(t, errs["Lon"], 1)

	c, w = formContext("lat=north")
	assert.False(t, Bind(c, &fixReq{}, binding.Form))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"detail"`)
}

func TestSerErr(t *testing.T) {
	c, w := formContext("")
	SerErr(c, cerr.Conflict(errors.New("location is unknown")))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail": "location is unknown"}`, w.Body.String())

	c, w = formContext("")
	SerErr(c, errors.New("disk is gone"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
