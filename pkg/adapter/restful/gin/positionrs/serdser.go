// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package positionrs

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fieldpin/pkg/core/model"
)

type rawFixReq struct {
	Lat      *float64 `json:"lat" binding:"required,latitude"`
	Lon      *float64 `json:"lon" binding:"required,longitude"`
	Altitude *float64 `json:"altitude" binding:"omitempty"`
	Accuracy float64  `json:"accuracy" binding:"gte=0"`
	Heading  *float64 `json:"heading" binding:"omitempty,gte=0,lt=360"`
	Speed    *float64 `json:"speed" binding:"omitempty,gte=0"`
}

func (rs *resource) DserFixReq(c *gin.Context) *model.Position {
	req := &rawFixReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Position{
		Coordinate: model.Coordinate{Lat: *req.Lat, Lon: *req.Lon},
		Altitude:   req.Altitude,
		Accuracy:   req.Accuracy,
		Heading:    req.Heading,
		Speed:      req.Speed,
	}
}

// FixError is a location failure which is reported by a client. Code
// follows the geolocation error codes, i.e., 1 for a denied permission,
// 2 for an unavailable position, and 3 for a timeout.
type FixError struct {
	Code    int    `json:"code" binding:"omitempty,oneof=1 2 3"`
	Message string `json:"message" binding:"required"`
}

// Error implements the error interface.
func (fe *FixError) Error() string {
	if fe.Code == 0 {
		return fe.Message
	}
	return fmt.Sprintf("code %d: %s", fe.Code, fe.Message)
}

func (rs *resource) DserErrorReq(c *gin.Context) *FixError {
	req := &FixError{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return req
}

// Position is the REST representation of the current position.
type Position struct {
	Known    bool     `json:"known"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Altitude *float64 `json:"altitude,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	Speed    *float64 `json:"speed,omitempty"`
	Display  Display  `json:"display"`
}

// SerPosition converts p to its REST representation. A nil p reports
// an unknown position whose display values are all "-".
func SerPosition(p *model.Position) Position {
	if p == nil {
		return Position{Display: NewDisplay(nil)}
	}
	acc := p.Accuracy
	lat, lon := p.Lat, p.Lon
	return Position{
		Known:    true,
		Lat:      &lat,
		Lon:      &lon,
		Altitude: p.Altitude,
		Accuracy: &acc,
		Heading:  p.Heading,
		Speed:    p.Speed,
		Display:  NewDisplay(p),
	}
}
