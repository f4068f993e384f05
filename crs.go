/*
Copyright © 2017 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package crs describes coordinate reference systems and converts
// geodetic coordinates between datums.
//
// A coordinate reference system is held in a ProjectionInfo, which can be
// read from and written to Proj4 parameter strings and Esri well-known
// text. Its GeographicInfo holds the Datum, which in turn owns the
// Spheroid. Points are converted between datums either with DatumShift,
// which chooses the conversion from the two datums the way PROJ does, or
// with an explicit DatumTransform pipeline of grid shift and Helmert
// stages.
//
// Coordinates are passed in batches: xy holds interleaved longitude and
// latitude values in radians and z holds heights in meters, and each
// call operates on the points with indices [start, start+n).
package crs

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Version is the version of this module.
const Version = "1.0.0"

// Log receives diagnostics about the strings being parsed. It can be
// replaced to redirect or silence them.
var Log logrus.FieldLogger = logrus.StandardLogger()

const (
	degToRad = 0.01745329251994329577
	secToRad = 4.84813681109535993589914102357e-6
	halfPi   = 1.5707963267948966
)

// FormatError reports a string that is not a valid CRS definition.
type FormatError struct {
	// Format is the notation being parsed, such as "proj4" or "esri".
	Format string

	// Input is the offending string.
	Input string

	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("crs: invalid %s string %q: %s", e.Format, e.Input, e.Msg)
}

func formatErrorf(format, input, msg string, args ...interface{}) error {
	return &FormatError{Format: format, Input: input, Msg: fmt.Sprintf(msg, args...)}
}
