// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/momeni/fieldpin/internal/test/memkv"
	"github.com/momeni/fieldpin/pkg/adapter/config/cfg1"
	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/capturers"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/maprs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/pinsrs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/positionrs"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/routes"
	"github.com/momeni/fieldpin/pkg/adapter/surface/geojsonmap"
	"github.com/stretchr/testify/suite"
)

const testConfig = `
storage:
    path: /nonexistent
gin:
    mode: test
camera:
    width: 32
    max-frame-bytes: 65536
    max-frame-pixels: 4096
versions:
    config: 1.0.0
    pins: 2.0.0
`

type RestfulGinTestSuite struct {
	suite.Suite

	Ctx     context.Context
	KV      *memkv.Store
	Gin     *gin.Engine
	Session *routes.Session
}

func TestRestfulGinTestSuite(t *testing.T) {
	suite.Run(t, &RestfulGinTestSuite{Ctx: context.Background()})
}

func (rgts *RestfulGinTestSuite) SetupTest() {
	c, err := cfg1.Load([]byte(testConfig))
	rgts.Require().NoError(err, "failed to load test configs")
	rgts.KV = memkv.New()
	rgts.Gin = c.Gin.NewEngine()
	rgts.Require().NotNil(rgts.Gin, "cannot instantiate Gin engine")
	rgts.Session, err = routes.Register(
		rgts.Ctx, rgts.Gin, pinsrp.New(rgts.KV, ""), c,
	)
	rgts.Require().NoError(err, "failed to register Gin routes")
}

func (rgts *RestfulGinTestSuite) TearDownTest() {
	rgts.NoError(rgts.Session.Close(rgts.Ctx))
	rgts.Zero(rgts.Session.Camera.Active(), "camera stream is leaked")
	rgts.Zero(rgts.Session.Feed.Subscribers(), "feed is still watched")
}

func stringAddr(s string) *string {
	return &s
}

func urlEncoded(m map[string]string) io.Reader {
	u := url.Values{}
	for k, v := range m {
		u.Set(k, v)
	}
	return strings.NewReader(u.Encode())
}

func jsonBody(v any) io.Reader {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(b)
}

func pngFrame(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// pngHeader encodes just the signature and IHDR chunk of a w x h PNG.
func pngHeader(w, h uint32) []byte {
	ihdr := binary.BigEndian.AppendUint32([]byte("IHDR"), w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 6, 0, 0, 0)
	b := binary.BigEndian.AppendUint32([]byte("\x89PNG\r\n\x1a\n"), 13)
	b = append(b, ihdr...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(ihdr))
}

func (rgts *RestfulGinTestSuite) serve(
	method, path, contentType string, body io.Reader, res any,
) int {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, routes.BasePath+path, body)
	rgts.Require().NoError(err, "cannot create %s request", method)
	if contentType != "" {
		req.Header.Add("Content-Type", contentType)
	}
	rgts.Gin.ServeHTTP(w, req)
	if res != nil {
		rgts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	}
	return w.Code
}

const formType = "application/x-www-form-urlencoded"

func (rgts *RestfulGinTestSuite) patchCapture(op string, res any) int {
	return rgts.serve(
		http.MethodPatch, "/capture", formType,
		urlEncoded(map[string]string{"op": op}), res,
	)
}

func (rgts *RestfulGinTestSuite) postFix(fix map[string]any) int {
	return rgts.serve(
		http.MethodPost, "/position", "application/json",
		jsonBody(fix), nil,
	)
}

func (rgts *RestfulGinTestSuite) assertOptContains(
	expectedPart *string, seen []string, msgAndArgs ...any,
) bool {
	if expectedPart == nil {
		return true
	}
	if !rgts.Equal(1, len(seen), msgAndArgs...) {
		return false
	}
	return rgts.Contains(seen[0], *expectedPart, msgAndArgs...)
}

func (rgts *RestfulGinTestSuite) TestBadCaptureRequest() {
	for _, tc := range []struct {
		name       string
		body       io.Reader
		detail, op *string
	}{
		{
			name:   "no body",
			body:   nil,
			detail: stringAddr("missing form body"),
		},
		{
			name: "empty body",
			body: urlEncoded(nil),
			op:   stringAddr("failed on the 'required' tag"),
		},
		{
			name: "invalid op",
			body: urlEncoded(map[string]string{
				"op": "invalid",
			}),
			op: stringAddr("failed on the 'oneof' tag"),
		},
	} {
		rgts.Run(tc.name, func() {
			res := &struct {
				Detail string
				Op     []string
			}{}
			code := rgts.serve(
				http.MethodPatch, "/capture", formType, tc.body, res,
			)
			rgts.Equal(400, code)
			if tc.detail != nil {
				rgts.Equal(*tc.detail, res.Detail, "wrong detail")
			}
			rgts.assertOptContains(tc.op, res.Op, "wrong op")
		})
	}
}

func (rgts *RestfulGinTestSuite) TestBadPositionRequest() {
	for _, tc := range []struct {
		name                   string
		fix                    map[string]any
		lat, lon, acc, heading *string
	}{
		{
			name: "no coordinate",
			fix:  map[string]any{"accuracy": 3},
			lat:  stringAddr("failed on the 'required' tag"),
			lon:  stringAddr("failed on the 'required' tag"),
		},
		{
			name: "out of range",
			fix:  map[string]any{"lat": 95, "lon": 200},
			lat:  stringAddr("failed on the 'latitude' tag"),
			lon:  stringAddr("failed on the 'longitude' tag"),
		},
		{
			name: "negative accuracy",
			fix:  map[string]any{"lat": 1, "lon": 2, "accuracy": -1},
			acc:  stringAddr("failed on the 'gte' tag"),
		},
		{
			name:    "full circle heading",
			fix:     map[string]any{"lat": 1, "lon": 2, "heading": 360},
			heading: stringAddr("failed on the 'lt' tag"),
		},
	} {
		rgts.Run(tc.name, func() {
			res := &struct {
				Lat, Lon, Accuracy, Heading []string
			}{}
			code := rgts.serve(
				http.MethodPost, "/position", "application/json",
				jsonBody(tc.fix), res,
			)
			rgts.Equal(400, code)
			rgts.assertOptContains(tc.lat, res.Lat, "wrong lat")
			rgts.assertOptContains(tc.lon, res.Lon, "wrong lon")
			rgts.assertOptContains(tc.acc, res.Accuracy, "wrong accuracy")
			rgts.assertOptContains(tc.heading, res.Heading, "wrong heading")
		})
	}
	rgts.Nil(rgts.Session.Capture.Snapshot().Position)
}

func (rgts *RestfulGinTestSuite) TestPosition() {
	pos := &positionrs.Position{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/position", "", nil, pos))
	rgts.False(pos.Known)
	rgts.Equal(positionrs.Absent, pos.Display.Lat)

	rgts.Equal(202, rgts.postFix(map[string]any{
		"lat": 47.406653, "lon": 9.744844, "accuracy": 12.5,
		"heading": 90,
	}))
	pos = &positionrs.Position{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/position", "", nil, pos))
	rgts.True(pos.Known)
	rgts.Require().NotNil(pos.Lat)
	rgts.Equal(47.406653, *pos.Lat)
	rgts.Equal(9.744844, *pos.Lon)
	rgts.Nil(pos.Altitude)
	rgts.Contains(pos.Display.Accuracy, "12,5")
	rgts.Equal(positionrs.Absent, pos.Display.Altitude)

	res := map[string]int{}
	rgts.Equal(202, rgts.serve(
		http.MethodPost, "/position/errors", "application/json",
		jsonBody(map[string]any{"code": 1, "message": "denied"}), &res,
	))
	rgts.Equal(1, res["delivered"])
	rgts.True(rgts.Session.Capture.Snapshot().Position != nil,
		"location errors keep the last known position",
	)
}

func (rgts *RestfulGinTestSuite) TestCaptureFlow() {
	snap := &capturers.Snapshot{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/capture", "", nil, snap))
	rgts.Equal("idle", snap.State.String())

	rgts.Equal(409, rgts.patchCapture("still", nil), "still while idle")
	rgts.Equal(200, rgts.patchCapture("start", snap))
	rgts.Equal("previewing", snap.State.String())
	rgts.Equal(503, rgts.patchCapture("still", nil), "no frame yet")

	rgts.Equal(204, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngFrame(64, 48)), nil,
	))
	snap = &capturers.Snapshot{}
	rgts.Equal(200, rgts.patchCapture("still", snap))
	rgts.Equal("reviewing", snap.State.String())
	rgts.True(snap.HasStill)
	rgts.True(strings.HasPrefix(snap.Still, "data:image/jpeg;base64,"))

	detail := map[string]string{}
	rgts.Equal(409, rgts.patchCapture("confirm", &detail))
	rgts.Contains(detail["detail"], "location")
	rgts.Zero(rgts.KV.Puts(), "blocked confirm must not write")

	rgts.Equal(202, rgts.postFix(map[string]any{
		"lat": 47.406653, "lon": 9.744844, "accuracy": 5,
	}))
	res := &struct {
		Pin       pinsrs.Pin
		Persisted bool
	}{}
	rgts.Equal(200, rgts.patchCapture("confirm", res))
	rgts.True(res.Persisted)
	rgts.Equal([2]float64{47.406653, 9.744844}, res.Pin.Location)
	rgts.Equal(snap.Still, res.Pin.Image)
	rgts.Zero(rgts.Session.Camera.Active())
	rgts.Equal(1, rgts.KV.Puts())

	list := &struct{ Pins []pinsrs.Pin }{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/pins", "", nil, list))
	rgts.Equal([]pinsrs.Pin{res.Pin}, list.Pins)

	m := &maprs.Snapshot{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/map", "", nil, m))
	rgts.Equal([2]float64{47.406653, 9.744844}, m.View.Center)
	rgts.Require().Len(m.Features.Features, 2)
	rgts.Equal(geojsonmap.KindPin, m.Features.Features[0].Properties.MustString("kind"))
	rgts.Equal(geojsonmap.KindPosition, m.Features.Features[1].Properties.MustString("kind"))
	rgts.Equal(0.0, m.Features.Features[0].Properties["index"])
	rgts.NotContains(m.Features.Features[0].Properties, "popup",
		"snapshots must not repeat the photos",
	)

	popup := &maprs.Popup{}
	rgts.Equal(200, rgts.serve(http.MethodGet, "/map/popups/0", "", nil, popup))
	rgts.Equal(maprs.Popup{Index: 0, Popup: res.Pin.Image}, *popup)
	rgts.Equal(404, rgts.serve(http.MethodGet, "/map/popups/1", "", nil, nil))
	rgts.Equal(400, rgts.serve(http.MethodGet, "/map/popups/-1", "", nil, nil))
	rgts.Equal(400, rgts.serve(http.MethodGet, "/map/popups/first", "", nil, nil))
}

func (rgts *RestfulGinTestSuite) TestConfirmNotPersisted() {
	rgts.Equal(202, rgts.postFix(map[string]any{"lat": 1.5, "lon": 2.5}))
	rgts.Equal(200, rgts.patchCapture("start", nil))
	rgts.Equal(204, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngFrame(16, 16)), nil,
	))
	rgts.Equal(200, rgts.patchCapture("still", nil))
	rgts.KV.FailPut(true)
	res := &struct {
		Detail    string
		Pin       pinsrs.Pin
		Persisted bool
	}{}
	rgts.Equal(507, rgts.patchCapture("confirm", res))
	rgts.False(res.Persisted)
	rgts.Equal([2]float64{1.5, 2.5}, res.Pin.Location)
	rgts.Len(rgts.Session.Pins.Pins(), 1, "pin is kept for the session")
}

func (rgts *RestfulGinTestSuite) TestCancelReleasesStream() {
	rgts.Equal(200, rgts.patchCapture("start", nil))
	rgts.Equal(1, rgts.Session.Camera.Active())
	snap := &capturers.Snapshot{}
	rgts.Equal(200, rgts.patchCapture("cancel", snap))
	rgts.Equal("idle", snap.State.String())
	rgts.Zero(rgts.Session.Camera.Active())
	rgts.Equal(409, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngFrame(16, 16)), nil,
	), "frames need an open stream")
}

func (rgts *RestfulGinTestSuite) TestPushFrameRejects() {
	rgts.Equal(200, rgts.patchCapture("start", nil))
	rgts.Equal(400, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		strings.NewReader("not an image"), nil,
	))
	rgts.Equal(413, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(make([]byte, 65537)), nil,
	))
	rgts.Equal(400, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngHeader(20000, 20000)), nil,
	), "a tiny header may declare a huge raster")
	rgts.Equal(400, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngFrame(65, 64)), nil,
	))
	rgts.Equal(204, rgts.serve(
		http.MethodPost, "/capture/frames", "image/png",
		bytes.NewReader(pngFrame(64, 64)), nil,
	))
}

func (rgts *RestfulGinTestSuite) TestMapEvents() {
	srv := httptest.NewServer(rgts.Gin)
	defer srv.Close()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + routes.BasePath +
		"/map/events"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	rgts.Require().NoError(err, "cannot dial map events")
	defer conn.Close()

	first := &maprs.Snapshot{}
	rgts.Require().NoError(conn.ReadJSON(first))
	rgts.Empty(first.Features.Features)

	rgts.Equal(202, rgts.postFix(map[string]any{
		"lat": 10, "lon": 20, "accuracy": 7,
	}))
	rgts.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		next := &maprs.Snapshot{}
		rgts.Require().NoError(conn.ReadJSON(next))
		rgts.Greater(next.Revision, first.Revision)
		if len(next.Features.Features) == 0 ||
			next.View.Center != [2]float64{10, 20} {
			continue // centering is a separate change
		}
		f := next.Features.Features[0]
		rgts.Equal(geojsonmap.KindPosition, f.Properties.MustString("kind"))
		rgts.Equal(7.0, f.Properties.MustFloat64("radius"))
		break
	}
}

func (rgts *RestfulGinTestSuite) TestMapEventsEndOnClose() {
	srv := httptest.NewServer(rgts.Gin)
	defer srv.Close()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + routes.BasePath +
		"/map/events"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	rgts.Require().NoError(err, "cannot dial map events")
	defer conn.Close()
	rgts.Require().NoError(conn.ReadJSON(&maprs.Snapshot{}))
	rgts.Equal(1, rgts.Session.Surface.Watchers())

	rgts.NoError(rgts.Session.Close(rgts.Ctx))
	rgts.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, _, err = conn.ReadMessage()
	rgts.True(websocket.IsCloseError(err, websocket.CloseGoingAway),
		"expected a going away close, got %v", err,
	)
	rgts.Eventually(func() bool {
		return rgts.Session.Surface.Watchers() == 0
	}, 5*time.Second, 10*time.Millisecond, "map watcher is leaked")
}
