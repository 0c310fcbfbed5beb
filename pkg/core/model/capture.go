// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// CaptureState enumerates the states of the capture confirmation flow.
// Although this enum is numeric, it is (de)serialized as a string for
// readability in the adapter layer.
type CaptureState int

// Valid values for the CaptureState enum.
const (
	CaptureStateInvalid CaptureState = iota // zero value is invalid

	CaptureStateIdle       // map visible, no capture in progress
	CaptureStatePreviewing // live stream is open, no still is taken
	CaptureStateReviewing  // a still is taken, awaiting confirm/cancel
)

// ErrUnknownCaptureState indicates that a string may not be parsed as a
// known capture state. The caller of ParseCaptureState already knows
// the rejected string, so it is not repeated here.
var ErrUnknownCaptureState = errors.New("unknown capture state")

// CaptureStateError indicates an invalid numeric capture state.
type CaptureStateError int

// Error implements the error interface.
func (e CaptureStateError) Error() string {
	return fmt.Sprintf("invalid capture state: %d", e)
}

// Validate returns nil for the three known states and an instance of
// CaptureStateError otherwise.
func (s CaptureState) Validate() error {
	switch s {
	case CaptureStateIdle, CaptureStatePreviewing, CaptureStateReviewing:
		return nil
	default:
		return CaptureStateError(s)
	}
}

// String converts s to its lower-case name. Invalid states panic.
func (s CaptureState) String() string {
	switch s {
	case CaptureStateIdle:
		return "idle"
	case CaptureStatePreviewing:
		return "previewing"
	case CaptureStateReviewing:
		return "reviewing"
	default:
		panic(CaptureStateError(s))
	}
}

// MarshalText implements encoding.TextMarshaler, so the state can be
// reported as a string in JSON responses.
func (s CaptureState) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// ParseCaptureState parses the lower-case name of a capture state.
// For unknown strings, CaptureStateInvalid and ErrUnknownCaptureState
// will be returned.
func ParseCaptureState(s string) (CaptureState, error) {
	switch s {
	case "idle":
		return CaptureStateIdle, nil
	case "previewing":
		return CaptureStatePreviewing, nil
	case "reviewing":
		return CaptureStateReviewing, nil
	default:
		return CaptureStateInvalid, ErrUnknownCaptureState
	}
}

// CaptureSnapshot is a read-only view of a capture session, as reported
// to the presentation layer.
type CaptureSnapshot struct {
	State    CaptureState
	HasStill bool      // true only in the reviewing state
	Still    string    // the still image payload, if HasStill
	Position *Position // nil while no fix is known
}

// UnmarshalText parses text as a capture state, so it may be used in
// json or yaml decoding.
func (s *CaptureState) UnmarshalText(text []byte) error {
	cs, err := ParseCaptureState(string(text))
	if err != nil {
		return err
	}
	*s = cs
	return nil
}
