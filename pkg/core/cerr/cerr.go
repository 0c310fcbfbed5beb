// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core errors which carry an HTTP status
// code, so the use cases layer can classify a failure once and the
// REST adapter can report it without knowing the use case details.
package cerr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

// Conflict reports an operation which is not acceptable in the current
// state, such as confirming a capture while no location is known.
func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

// Unavailable reports a device (camera, location sensor) which could
// not be used, for example because the permission was denied.
func Unavailable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusServiceUnavailable}
}

// InsufficientStorage reports that the durable storage rejected a
// write, so the in-memory state will be lost by a restart.
func InsufficientStorage(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusInsufficientStorage}
}
