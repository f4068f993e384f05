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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spatialmodel/crs/nad"
)

// Method is the conversion performed by a DatumTransformStage.
type Method int

// These are the stage methods.
const (
	MethodGridShift Method = iota
	MethodParam3
	MethodParam7
)

func (m Method) String() string {
	switch m {
	case MethodGridShift:
		return "GridShift"
	case MethodParam3:
		return "Param3"
	case MethodParam7:
		return "Param7"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod returns the method named s, ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "gridshift":
		return MethodGridShift, nil
	case "param3":
		return MethodParam3, nil
	case "param7":
		return MethodParam7, nil
	}
	return 0, fmt.Errorf("crs: unknown datum transform method %q", s)
}

// DatumTransformStage is one step of a DatumTransform.
type DatumTransformStage struct {
	FromDatum, ToDatum string
	Method             Method

	// Dx, Dy and Dz are translations in meters.
	Dx, Dy, Dz float64

	// Rx, Ry and Rz are rotations in radians.
	Rx, Ry, Rz float64

	// Ds is the scale change in parts per million.
	Ds float64

	// GridTable holds the comma separated names of the grids of a
	// MethodGridShift stage.
	GridTable string

	// ApplyInverse reverses the stage.
	ApplyInverse bool

	// FromSpheroid and ToSpheroid are the ellipsoids of the input and
	// output coordinates. A nil FromSpheroid is the spheroid the previous
	// stage produced, or that of the source coordinate system for the
	// first stage. A nil ToSpheroid is that of the destination coordinate
	// system for the last stage and that of ToDatum, when it is a
	// catalogued datum code, for the others.
	FromSpheroid, ToSpheroid *Spheroid
}

// Grids returns the grid names of the stage.
func (s *DatumTransformStage) Grids() []string {
	var out []string
	for _, g := range strings.Split(s.GridTable, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// helmert applies the translation, or the translation, rotation and
// scale, of the stage to geocentric points [start, start+n). Inverse
// stages are applied with all parameters negated.
func (s *DatumTransformStage) helmert(xy, z []float64, start, n int) {
	sign := 1.
	if s.ApplyInverse {
		sign = -1
	}
	dx, dy, dz := sign*s.Dx, sign*s.Dy, sign*s.Dz
	if s.Method == MethodParam3 {
		for i := start; i < start+n; i++ {
			xy[2*i] += dx
			xy[2*i+1] += dy
			z[i] += dz
		}
		return
	}
	rx, ry, rz := sign*s.Rx, sign*s.Ry, sign*s.Rz
	m := 1 + sign*s.Ds/1e6
	for i := start; i < start+n; i++ {
		x, y, zz := xy[2*i], xy[2*i+1], z[i]
		xy[2*i] = m*x - rz*y + ry*zz + dx
		xy[2*i+1] = rz*x + m*y - rx*zz + dy
		z[i] = -ry*x + rx*y + m*zz + dz
	}
}

// DatumTransform converts points through an ordered list of stages.
type DatumTransform struct {
	Stages []*DatumTransformStage

	// Grids provides the correction grids of grid shift stages. When nil,
	// nad.Default is used.
	Grids *nad.GridShift
}

// NewDatumTransform returns a transform running stages in order. The
// stages are not checked to be chained; see Chained.
func NewDatumTransform(stages []*DatumTransformStage) (*DatumTransform, error) {
	if stages == nil {
		return nil, errors.New("crs: datum transform needs a list of stages")
	}
	return &DatumTransform{Stages: stages}, nil
}

// Chained returns whether the datum each stage converts to is the datum
// the next stage converts from.
func (dt *DatumTransform) Chained() bool {
	for i := 1; i < len(dt.Stages); i++ {
		if !strings.EqualFold(dt.Stages[i-1].ToDatum, dt.Stages[i].FromDatum) {
			return false
		}
	}
	return true
}

// Transform converts points [start, start+n) in place. xy holds
// longitudes and latitudes in radians and z heights in meters; z may be
// nil, in which case heights of zero are used and discarded. source and
// dest supply spheroids for stages that do not name them and may be nil.
func (dt *DatumTransform) Transform(ctx context.Context, source, dest *ProjectionInfo, xy, z []float64, start, n int) {
	if len(dt.Stages) == 0 || n <= 0 {
		return
	}
	if z == nil {
		z = make([]float64, start+n)
	}
	grids := dt.Grids
	if grids == nil {
		grids = nad.Default
	}
	// cur is the spheroid of the coordinates entering the next stage.
	cur := crsSpheroid(source)
	dstSpheroid := crsSpheroid(dest)
	last := len(dt.Stages) - 1
	geocentric := false
	for i, s := range dt.Stages {
		from := cur
		if s.FromSpheroid != nil {
			from = *s.FromSpheroid
		}
		switch s.Method {
		case MethodGridShift:
			if geocentric {
				NewGeocentricGeodetic(from).GeocentricToGeodetic(xy, z, start, n)
				geocentric = false
			}
			grids.Apply(ctx, s.Grids(), s.ApplyInverse, xy, start, n)
		case MethodParam3, MethodParam7:
			if !geocentric {
				NewGeocentricGeodetic(from).GeodeticToGeocentric(xy, z, start, n)
				geocentric = true
			}
			s.helmert(xy, z, start, n)
		}
		cur = stageToSpheroid(s, i == last, from, dstSpheroid)
	}
	if geocentric {
		NewGeocentricGeodetic(cur).GeocentricToGeodetic(xy, z, start, n)
	}
}

// stageToSpheroid returns the spheroid of the coordinates a stage
// produces: its ToSpheroid if set, the destination spheroid for the last
// stage, the spheroid of ToDatum if that is a catalogued datum code, and
// otherwise the spheroid the stage started from.
func stageToSpheroid(s *DatumTransformStage, last bool, from, dst Spheroid) Spheroid {
	switch {
	case s.ToSpheroid != nil:
		return *s.ToSpheroid
	case last:
		return dst
	}
	if def, ok := lookupDatumCode(s.ToDatum); ok {
		return NewSpheroidFromEllipsoid(def.ellipsoid)
	}
	return from
}

// crsSpheroid returns the spheroid of p, or WGS 84 if p is nil.
func crsSpheroid(p *ProjectionInfo) Spheroid {
	if p == nil {
		return WGS84()
	}
	return p.GeographicInfo.Datum.Spheroid
}
