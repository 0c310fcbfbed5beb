// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package positionrs realizes the position resource. Clients push their
// location fixes (and location errors) which are delivered to the
// location feed, and read the current position with its display form.
package positionrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fieldpin/pkg/adapter/device/pushfeed"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fieldpin/pkg/core/usecase/captureuc"
)

type resource struct {
	feed    *pushfeed.Feed
	capture *captureuc.UseCase
}

// Register instantiates a resource adapting the location feed and the
// capture use case with the relevant REST APIs including:
//  1. POST request to /api/fieldpin/v1/position
//     in order to report a location fix,
//  2. POST request to /api/fieldpin/v1/position/errors
//     in order to report a location failure,
//  3. GET request to /api/fieldpin/v1/position
//     in order to fetch the current position.
func Register(
	r *gin.RouterGroup, feed *pushfeed.Feed, capture *captureuc.UseCase,
) {
	rs := &resource{feed: feed, capture: capture}
	r.POST("position", rs.ReportFix)
	r.POST("position/errors", rs.ReportError)
	r.GET("position", rs.GetPosition)
}

func (rs *resource) ReportFix(c *gin.Context) {
	pos := rs.DserFixReq(c)
	if pos == nil {
		return
	}
	n, err := rs.feed.Publish(c, *pos)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"delivered": n})
}

func (rs *resource) ReportError(c *gin.Context) {
	fe := rs.DserErrorReq(c)
	if fe == nil {
		return
	}
	n := rs.feed.Fail(c, fe)
	c.JSON(http.StatusAccepted, gin.H{"delivered": n})
}

func (rs *resource) GetPosition(c *gin.Context) {
	s := rs.capture.Snapshot()
	c.JSON(http.StatusOK, SerPosition(s.Position))
}
