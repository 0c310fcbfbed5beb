// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package maprs realizes the map resource. The map surface content is
// served as a snapshot and streamed over a WebSocket after each change,
// so a web map client may render the markers and the live position.
package maprs

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fieldpin/pkg/adapter/surface/geojsonmap"
	"github.com/momeni/fieldpin/pkg/core/cerr"
	"github.com/momeni/fieldpin/pkg/core/log"
)

// PingPeriod is the interval of the WebSocket heartbeat messages.
var PingPeriod = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the API is served for the local device only
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type resource struct {
	ctx     context.Context
	surface *geojsonmap.Surface
}

// Register instantiates a resource adapting the map surface with the
// relevant REST APIs including:
//  1. GET request to /api/fieldpin/v1/map
//     in order to fetch the view and features,
//  2. GET request to /api/fieldpin/v1/map/popups/:index
//     in order to fetch the popup image of one pin marker,
//  3. GET request to /api/fieldpin/v1/map/events
//     in order to upgrade to a WebSocket which receives a snapshot
//     initially and after each change.
//
// The ctx must be cancelled when the server shuts down. WebSockets are
// hijacked connections which http.Server.Shutdown does not wait for or
// close, so they are closed (with a going away message) on ctx instead.
func Register(
	ctx context.Context, r *gin.RouterGroup, surface *geojsonmap.Surface,
) {
	rs := &resource{ctx: ctx, surface: surface}
	r.GET("map", rs.GetMap)
	r.GET("map/popups/:index", rs.GetPopup)
	r.GET("map/events", rs.WatchMap)
}

func (rs *resource) GetMap(c *gin.Context) {
	c.JSON(http.StatusOK, SerSnapshot(rs.surface.Snapshot()))
}

func (rs *resource) GetPopup(c *gin.Context) {
	req := &popupReq{}
	if err := c.ShouldBindUri(req); err != nil {
		serdser.SerErr(c, cerr.BadRequest(err))
		return
	}
	popup, ok := rs.surface.Popup(req.Index)
	if !ok {
		serdser.SerErr(c, cerr.NotFound(
			fmt.Errorf("no marker with index %d", req.Index),
		))
		return
	}
	c.JSON(http.StatusOK, Popup{Index: req.Index, Popup: popup})
}

// session serializes the writes of one WebSocket connection.
type session struct {
	conn   *websocket.Conn
	mutex  sync.Mutex
	cancel context.CancelFunc
}

func (s *session) write(f func() error) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := f(); err != nil {
		s.cancel()
		return false
	}
	return true
}

func (rs *resource) WatchMap(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn(c, "upgrading to websocket", log.Err("err", err))
		return // the upgrader wrote an error response already
	}
	ctx, cancel := context.WithCancel(rs.ctx)
	stop := context.AfterFunc(c.Request.Context(), cancel)
	s := &session{conn: conn, cancel: cancel}
	defer func() {
		stop()
		cancel()
		if rs.ctx.Err() != nil {
			s.goingAway()
		}
		conn.Close()
		log.Debug(ctx, "map websocket closed")
	}()
	changes := rs.surface.Watch(ctx)

	go s.readLoop(ctx)
	go s.pingLoop(ctx)

	var last uint64
	send := func() bool {
		snap := rs.surface.Snapshot()
		if snap.Revision == last && last != 0 {
			return true
		}
		last = snap.Revision
		return s.write(func() error {
			return conn.WriteJSON(SerSnapshot(snap))
		})
	}
	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok || !send() {
				return
			}
		}
	}
}

func (s *session) goingAway() {
	msg := websocket.FormatCloseMessage(
		websocket.CloseGoingAway, "server is shutting down",
	)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_ = s.conn.WriteControl(
		websocket.CloseMessage, msg, time.Now().Add(time.Second),
	)
}

// readLoop consumes (and drops) client messages, so control frames are
// processed, and cancels the session when the connection is closed.
func (s *session) readLoop(ctx context.Context) {
	defer s.cancel()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure,
			) {
				log.Warn(ctx, "map websocket failed", log.Err("err", err))
			}
			return
		}
	}
}

func (s *session) pingLoop(ctx context.Context) {
	t := time.NewTicker(PingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.write(func() error {
				return s.conn.WriteMessage(websocket.PingMessage, nil)
			}) {
				return
			}
		}
	}
}
