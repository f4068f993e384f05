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

// Package nad reads empirical datum correction grids (NTv1 .dat, NTv2 .gsb,
// NADCON .las/.los pairs and the .lla text format) and applies them to
// geodetic coordinates using bilinear interpolation.
//
// Tables are registered in a GridShift, which loads each table's header the
// first time it is requested and its dense correction values the first time
// a point falls inside it. A process-wide registry is available as Default.
package nad

import "math"

const (
	// SecToRad converts arc-seconds to radians.
	SecToRad = 4.84813681109535993589914102357e-6

	// USecToRad converts micro-arc-seconds, the unit of the integer
	// offsets in .lla files, to radians.
	USecToRad = 4.848136811095359935899141023e-12

	degToRad = math.Pi / 180

	// sPi is slightly greater than math.Pi so that longitudes that
	// exceed the ±180° range by floating point noise are not wrapped.
	sPi   = 3.14159265359
	twoPi = 2 * math.Pi
)

// HugeVal is the sentinel value stored in both components of a PhiLam
// when no correction is available.
const HugeVal = math.MaxFloat64

// PhiLam holds a latitude (Phi) and longitude (Lambda) pair in radians.
// It is also used for grid cell sizes and for shift vectors.
type PhiLam struct {
	Phi, Lambda float64
}

// huge returns the "no correction available" value.
func huge() PhiLam {
	return PhiLam{Phi: HugeVal, Lambda: HugeVal}
}

// IsHuge returns whether p is the "no correction available" sentinel.
func (p PhiLam) IsHuge() bool {
	return p.Lambda == HugeVal
}

// adjustLongitude wraps lon into the range [-π, π].
func adjustLongitude(lon float64) float64 {
	if math.Abs(lon) <= sPi {
		return lon
	}
	lon += math.Pi
	lon -= twoPi * math.Floor(lon/twoPi)
	return lon - math.Pi
}
