// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// OutOfRangeError reports a setting outside of its bounds, such as a
// camera width of 8 pixels or a zoom level above the map max-zoom.
// The Error message names the configured value and the violated
// bound, so callers only prefix it with the setting name.
type OutOfRangeError[T cmp.Ordered] struct {
	Value        *T // configured value, before clamping
	Bound        *T // violated minimum or maximum
	LessThanMin  bool
	InvalidRange bool // minimum exceeds maximum, Value is nil
}

// Error implements the error interface.
func (e *OutOfRangeError[T]) Error() string {
	switch {
	case e.InvalidRange:
		return "min is greater than max"
	case e.LessThanMin:
		return fmt.Sprintf("%v is less than min %v", *e.Value, *e.Bound)
	default:
		return fmt.Sprintf("%v is greater than max %v", *e.Value, *e.Bound)
	}
}

// VerifyRange checks an optional setting against optional minb and
// maxb bounds. Nil values pass, as they are replaced by defaults
// later. Values outside the bounds are clamped to the nearest bound
// and reported, so a caller may log and continue with the clamped
// value (e.g., a too long capture start-timeout) or fail loading.
// Bounds may come from the configuration itself, like the
// start-timeout-minimum and start-timeout-maximum pair, so they are
// checked against each other first.
func VerifyRange[T cmp.Ordered](
	value **T, minb, maxb *T,
) *OutOfRangeError[T] {
	switch {
	case minb != nil && maxb != nil && *minb > *maxb:
		return &OutOfRangeError[T]{InvalidRange: true}
	case *value == nil:
		return nil
	}
	switch v := **value; {
	case minb != nil && v < *minb:
		**value = *minb
		return &OutOfRangeError[T]{Value: &v, Bound: minb, LessThanMin: true}
	case maxb != nil && v > *maxb:
		**value = *maxb
		return &OutOfRangeError[T]{Value: &v, Bound: maxb}
	}
	return nil
}
