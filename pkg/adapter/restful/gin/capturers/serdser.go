// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package capturers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/positionrs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fieldpin/pkg/core/model"
)

type captureUpdateReq struct {
	Op string `form:"op" binding:"required,oneof=start still retake confirm cancel"`
}

func (rs *resource) DserUpdateCaptureReq(c *gin.Context) *captureUpdateReq {
	req := &captureUpdateReq{}
	if ok := serdser.Bind(c, req, binding.Form); !ok {
		return nil
	}
	return req
}

// Snapshot is the REST representation of a capture session.
type Snapshot struct {
	State    model.CaptureState  `json:"state"`
	HasStill bool                `json:"has_still"`
	Still    string              `json:"still,omitempty"`
	Position positionrs.Position `json:"position"`
}

// SerSnapshot converts s to its REST representation.
func SerSnapshot(s model.CaptureSnapshot) Snapshot {
	return Snapshot{
		State:    s.State,
		HasStill: s.HasStill,
		Still:    s.Still,
		Position: positionrs.SerPosition(s.Position),
	}
}
