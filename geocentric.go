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

// GeocentricGeodetic converts between geodetic coordinates and earth
// centered cartesian coordinates on one spheroid.
type GeocentricGeodetic struct {
	a, b, a2, b2, es, ep2 float64
}

// NewGeocentricGeodetic returns a converter for s.
func NewGeocentricGeodetic(s Spheroid) *GeocentricGeodetic {
	g := &GeocentricGeodetic{
		a:  s.EquatorialRadius,
		b:  s.PolarRadius,
		es: s.EccentricitySquared(),
	}
	g.a2 = g.a * g.a
	g.b2 = g.b * g.b
	if g.b2 != 0 {
		g.ep2 = (g.a2 - g.b2) / g.b2
	}
	return g
}

// GeodeticToGeocentric replaces the longitude, latitude (radians) and
// height (meters) of points [start, start+n) with geocentric X, Y and Z,
// where X and Y are stored in xy and Z in z. Latitudes slightly beyond the
// poles are clamped to them; points further out become NaN.
func (g *GeocentricGeodetic) GeodeticToGeocentric(xy, z []float64, start, n int) {
	for i := start; i < start+n; i++ {
		xy[2*i], xy[2*i+1], z[i] = g.ToGeocentric(xy[2*i], xy[2*i+1], z[i])
	}
}

// ToGeocentric converts a single point. NaN values are returned for
// latitudes more than 0.1% beyond the poles.
func (g *GeocentricGeodetic) ToGeocentric(lon, lat, h float64) (x, y, z float64) {
	switch {
	case lat < -halfPi && lat > -1.001*halfPi:
		lat = -halfPi
	case lat > halfPi && lat < 1.001*halfPi:
		lat = halfPi
	case lat < -halfPi || lat > halfPi:
		return math.NaN(), math.NaN(), math.NaN()
	}
	if lon > math.Pi {
		lon -= 2 * math.Pi
	}
	sinLat, cosLat := math.Sincos(lat)
	rn := g.a / math.Sqrt(1-g.es*sinLat*sinLat)
	x = (rn + h) * cosLat * math.Cos(lon)
	y = (rn + h) * cosLat * math.Sin(lon)
	z = (rn*(1-g.es) + h) * sinLat
	return x, y, z
}

// GeocentricToGeodetic is the inverse of GeodeticToGeocentric.
func (g *GeocentricGeodetic) GeocentricToGeodetic(xy, z []float64, start, n int) {
	for i := start; i < start+n; i++ {
		xy[2*i], xy[2*i+1], z[i] = g.ToGeodetic(xy[2*i], xy[2*i+1], z[i])
	}
}

// ToGeodetic converts a single point using the iteration of the
// Institut für Erdmessung, University of Hannover (1988). The last
// estimate is returned if the iteration has not converged after 30
// passes.
func (g *GeocentricGeodetic) ToGeodetic(x, y, z float64) (lon, lat, h float64) {
	const (
		genau   = 1e-12
		genau2  = genau * genau
		maxIter = 30
	)
	p := math.Sqrt(x*x + y*y)
	rr := math.Sqrt(x*x + y*y + z*z)

	if p/g.a < genau {
		lon = 0
		// At the center of the earth the height is the negative polar radius.
		if rr/g.a < genau {
			return 0, halfPi, -g.b
		}
	} else {
		lon = math.Atan2(y, x)
	}

	ct := z / rr
	st := p / rr
	rx := 1 / math.Sqrt(1-g.es*(2-g.es)*st*st)
	cphi0 := st * (1 - g.es) * rx
	sphi0 := ct * rx
	var cphi, sphi float64
	for iter := 1; ; iter++ {
		rn := g.a / math.Sqrt(1-g.es*sphi0*sphi0)
		h = p*cphi0 + z*sphi0 - rn*(1-g.es*sphi0*sphi0)

		rk := g.es * rn / (rn + h)
		rx = 1 / math.Sqrt(1-rk*(2-rk)*st*st)
		cphi = st * (1 - rk) * rx
		sphi = ct * rx
		sdphi := sphi*cphi0 - cphi*sphi0
		cphi0, sphi0 = cphi, sphi
		if sdphi*sdphi <= genau2 || iter >= maxIter {
			break
		}
	}
	lat = math.Atan(sphi / math.Abs(cphi))
	return lon, lat, h
}
