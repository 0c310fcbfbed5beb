// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package capturers realizes the capture resource, allowing a client
// to drive the capture confirmation flow and to push its camera frames.
package capturers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fieldpin/pkg/adapter/device/framecam"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/pinsrs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fieldpin/pkg/core/usecase/captureuc"
	"github.com/momeni/fieldpin/pkg/core/usecase/pinsuc"
)

type resource struct {
	capture       *captureuc.UseCase
	camera        *framecam.Camera
	maxFrameBytes int64
}

// Register instantiates a resource adapting the capture use case and
// the camera with the relevant REST APIs including:
//  1. GET request to /api/fieldpin/v1/capture
//     in order to fetch the capture state,
//  2. PATCH request to /api/fieldpin/v1/capture
//     in order to start, take a still, retake, confirm, or cancel,
//  3. POST request to /api/fieldpin/v1/capture/frames
//     in order to push an encoded camera frame (up to maxFrameBytes).
func Register(
	r *gin.RouterGroup,
	capture *captureuc.UseCase,
	camera *framecam.Camera,
	maxFrameBytes int64,
) {
	rs := &resource{
		capture:       capture,
		camera:        camera,
		maxFrameBytes: maxFrameBytes,
	}
	r.GET("capture", rs.GetCapture)
	r.PATCH("capture", rs.UpdateCapture)
	r.POST("capture/frames", rs.PushFrame)
}

func (rs *resource) GetCapture(c *gin.Context) {
	c.JSON(http.StatusOK, SerSnapshot(rs.capture.Snapshot()))
}

func (rs *resource) UpdateCapture(c *gin.Context) {
	req := rs.DserUpdateCaptureReq(c)
	if req == nil {
		return
	}
	var err error
	switch req.Op {
	case "start":
		err = rs.capture.StartCapture(c)
	case "still":
		err = rs.capture.TakeStill(c)
	case "retake":
		err = rs.capture.Retake(c)
	case "cancel":
		err = rs.capture.Cancel(c)
	case "confirm":
		rs.confirm(c)
		return
	default:
		panic("unexpected op:" + req.Op)
	}
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerSnapshot(rs.capture.Snapshot()))
}

func (rs *resource) confirm(c *gin.Context) {
	pin, err := rs.capture.Confirm(c)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"pin":       pinsrs.SerPin(*pin),
			"persisted": true,
		})
	case pin != nil && errors.Is(err, pinsuc.ErrNotPersisted):
		c.JSON(http.StatusInsufficientStorage, gin.H{
			"detail":    err.Error(),
			"pin":       pinsrs.SerPin(*pin),
			"persisted": false,
		})
	default:
		serdser.SerErr(c, err)
	}
}

func (rs *resource) PushFrame(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, rs.maxFrameBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"detail": err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err = rs.camera.PushFrame(c, data); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
