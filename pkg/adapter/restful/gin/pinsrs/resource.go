// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pinsrs realizes the pins resource, allowing the persisted and
// in-session pins to be listed through the REST API.
package pinsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fieldpin/pkg/core/usecase/pinsuc"
)

type resource struct {
	pins *pinsuc.UseCase
}

// Register instantiates a resource adapting the pins use case instance
// with the relevant REST APIs including:
//  1. GET request to /api/fieldpin/v1/pins
//     in order to list all pins in their capture order.
func Register(r *gin.RouterGroup, pins *pinsuc.UseCase) {
	rs := &resource{pins: pins}
	r.GET("pins", rs.ListPins)
}

func (rs *resource) ListPins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pins": SerPins(rs.pins.Pins()),
	})
}
