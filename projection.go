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

import (
	"fmt"
	"strings"
)

// A Projection converts batches of points between geodetic coordinates,
// longitude and latitude in radians, and the coordinates of a
// coordinate reference system.
type Projection interface {
	// Forward converts geodetic points [start, start+n) in place.
	Forward(xy, z []float64, start, n int) error

	// Inverse converts points [start, start+n) to geodetic coordinates
	// in place.
	Inverse(xy, z []float64, start, n int) error
}

// A ProjectionFunc creates the Projection for a coordinate reference
// system.
type ProjectionFunc func(*ProjectionInfo) (Projection, error)

var projections map[string]ProjectionFunc

// RegisterProjection makes f the projection for each of names. It is
// meant to be called from init functions.
func RegisterProjection(f ProjectionFunc, names ...string) {
	if projections == nil {
		projections = make(map[string]ProjectionFunc)
	}
	for _, n := range names {
		projections[strings.ToLower(n)] = f
	}
}

// Projection returns the projection of p.
func (p *ProjectionInfo) Projection() (Projection, error) {
	f, ok := projections[strings.ToLower(p.Name)]
	if !ok {
		return nil, fmt.Errorf("crs: unsupported projection %q", p.Name)
	}
	return f(p)
}

// longLat converts between radians and the angular unit of a geographic
// system.
type longLat struct {
	toRad float64
}

// LongLat is the projection of geographic coordinate systems.
func LongLat(p *ProjectionInfo) (Projection, error) {
	r := p.GeographicInfo.Unit.Radians
	if r == 0 {
		r = degToRad
	}
	if !(r > 0) {
		return nil, fmt.Errorf("crs: invalid angular unit %v", r)
	}
	return longLat{toRad: r}, nil
}

func (l longLat) Forward(xy, z []float64, start, n int) error {
	for i := 2 * start; i < 2*(start+n); i++ {
		xy[i] /= l.toRad
	}
	return nil
}

func (l longLat) Inverse(xy, z []float64, start, n int) error {
	for i := 2 * start; i < 2*(start+n); i++ {
		xy[i] *= l.toRad
	}
	return nil
}

func init() {
	RegisterProjection(LongLat, "longlat", "latlong", "lonlat", "latlon")
}
