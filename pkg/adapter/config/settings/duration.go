// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from and written to the
// configuration file in the time.ParseDuration format, e.g., the
// capture start-timeout and its minimum and maximum bounds.
type Duration time.Duration

// UnmarshalText parses data as a time.ParseDuration string, such as
// "90s" or "2m". The receiver is kept unchanged on errors.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// Marshal formats d for the configuration file, dropping the zero
// trailing units of time.Duration.String, so 1h0m0s is written as 1h
// and 2m0s as 2m. A nil d yields nil, letting an unset start-timeout
// stay out of the marshaled document.
func (d *Duration) Marshal() *string {
	if d == nil {
		return nil
	}
	s := (*time.Duration)(d).String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return &s
}

// MarshalText implements encoding.TextMarshaler using Marshal.
func (d *Duration) MarshalText() ([]byte, error) {
	if s := d.Marshal(); s != nil {
		return []byte(*s), nil
	}
	return nil, errors.New("nil duration")
}

// LogValue implements slog.LogValuer. Unset durations are logged as
// "nil-duration".
func (d *Duration) LogValue() slog.Value {
	if d == nil {
		return slog.StringValue("nil-duration")
	}
	return slog.DurationValue(time.Duration(*d))
}

// String returns d in the time.Duration string format.
func (d Duration) String() string {
	return time.Duration(d).String()
}
