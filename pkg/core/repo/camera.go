// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Stream is an opaque handle of an open live capture stream, as
// returned by Camera.StartStream. It holds a hardware resource which
// is not garbage collected implicitly and must be passed to
// Camera.StopStream exactly once.
type Stream interface {
	// IsStream prevents unrelated values from implementing Stream.
	IsStream()
}

// Camera is the capture service. StartStream may block for a long time
// (e.g., while a permission prompt is shown) and may fail if there is
// no usable camera.
type Camera interface {
	StartStream(ctx context.Context) (Stream, error)
	StopStream(ctx context.Context, s Stream) error

	// GrabFrame freezes the current frame of s into an encoded still
	// image payload. The stream remains open.
	GrabFrame(ctx context.Context, s Stream) (image string, err error)
}
