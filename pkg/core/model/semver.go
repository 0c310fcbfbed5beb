// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer represents a released semantic version with major, minor, and
// patch components. It versions the configuration file format and the
// persisted pins document format. Incrementing the major component
// represents a backward-incompatible layout change which needs an
// explicit migration, while minor and patch changes may be read by the
// same decoder.
type SemVer [3]uint

// UnmarshalText deserializes text as one to three dot-separated
// non-negative numbers and fills sv. Missing components are zero, so
// "2" is read as 2.0.0. In case of errors, sv will be left unchanged.
func (sv *SemVer) UnmarshalText(text []byte) (err error) {
	p := strings.Split(string(text), ".")
	l := len(p)
	if l == 0 || l > 3 {
		return fmt.Errorf("the %q has wrong number of components", text)
	}
	var v [3]int
	for i := 0; i < l; i++ {
		v[i], err = strconv.Atoi(p[i])
		if err != nil {
			return fmt.Errorf("the %q component is not numeric", p[i])
		}
		if v[i] < 0 {
			return fmt.Errorf("the %q component is negative", p[i])
		}
	}
	*sv = SemVer{uint(v[0]), uint(v[1]), uint(v[2])}
	return nil
}

// MarshalText implements encoding.TextMarshaler interface and
// serializes sv as its string representation, for both YAML and JSON.
func (sv SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// Major returns the first component of sv.
func (sv SemVer) Major() uint {
	return sv[0]
}

// String returns sv as major.minor.patch.
func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}
