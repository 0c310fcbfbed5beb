// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package positionrs

import (
	"github.com/momeni/fieldpin/pkg/core/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Absent is displayed for unknown values.
const Absent = "-"

var printer = message.NewPrinter(language.German)

// Display holds the German (de-DE) rendering of a position, as shown
// in the location panel of the map page.
type Display struct {
	Lat      string `json:"LAT"`
	Lon      string `json:"LONG"`
	Altitude string `json:"ALT"`
	Accuracy string `json:"ACC"`
	Heading  string `json:"HEAD"`
	Speed    string `json:"SPED"`
}

// NewDisplay renders p. Optional components which are missing or zero
// are displayed as Absent. A nil p is displayed as Absent entirely.
func NewDisplay(p *model.Position) Display {
	if p == nil {
		return Display{Absent, Absent, Absent, Absent, Absent, Absent}
	}
	return Display{
		Lat:      coord(p.Lat),
		Lon:      coord(p.Lon),
		Altitude: optional(p.Altitude, meters),
		Accuracy: meters(p.Accuracy),
		Heading:  optional(p.Heading, degrees),
		Speed:    optional(p.Speed, meters),
	}
}

func coord(v float64) string {
	return printer.Sprint(number.Decimal(v,
		number.MinIntegerDigits(3),
		number.MinFractionDigits(6),
		number.MaxFractionDigits(6),
	)) + "°"
}

func meters(v float64) string {
	return oneDecimal(v) + " m"
}

func degrees(v float64) string {
	return oneDecimal(v) + "°"
}

func oneDecimal(v float64) string {
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
	))
}

func optional(v *float64, format func(float64) string) string {
	if v == nil || *v == 0 {
		return Absent
	}
	return format(*v)
}
