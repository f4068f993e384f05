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

package crs

import "math"

// Series coefficients for the meridional distance.
const (
	c00 = 1.0
	c02 = 0.25
	c04 = 0.046875
	c06 = 0.01953125
	c08 = 0.01068115234375
	c22 = 0.75
	c44 = 0.46875
	c46 = 0.01302083333333333333
	c48 = 0.00712076822916666666
	c66 = 0.36458333333333333333
	c68 = 0.00569661458333333333
	c88 = 0.3076171875
)

// MeridionalCoefficients returns the series coefficients used by
// MeridionalLength and AngularDistance for eccentricity squared es.
func MeridionalCoefficients(es float64) [5]float64 {
	var en [5]float64
	en[0] = c00 - es*(c02+es*(c04+es*(c06+es*c08)))
	en[1] = es * (c22 - es*(c04+es*(c06+es*c08)))
	t := es * es
	en[2] = t * (c44 - es*(c46+es*c48))
	t *= es
	en[3] = t * (c66 - es*c68)
	en[4] = t * es * c88
	return en
}

// MeridionalLength returns the distance along the meridian from the
// equator to latitude phi, in units of the semi-major axis.
func MeridionalLength(phi, sinPhi, cosPhi float64, en [5]float64) float64 {
	cosPhi *= sinPhi
	sinPhi *= sinPhi
	return en[0]*phi - cosPhi*(en[1]+sinPhi*(en[2]+sinPhi*(en[3]+sinPhi*en[4])))
}

// AngularDistance returns the latitude at which the meridional length
// is length. It stops after 10 Newton steps and returns its best estimate
// if the steps have not become smaller than 1e-11 by then.
func AngularDistance(length, es float64, en [5]float64) float64 {
	const (
		maxIter = 10
		eps     = 1e-11
	)
	k := 1 / (1 - es)
	phi := length
	for i := 0; i < maxIter; i++ {
		s, c := math.Sincos(phi)
		t := 1 - es*s*s
		t = (MeridionalLength(phi, s, c, en) - length) * (t * math.Sqrt(t)) * k
		phi -= t
		if math.Abs(t) < eps {
			return phi
		}
	}
	return phi
}
