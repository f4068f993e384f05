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
	"strings"

	"github.com/spatialmodel/crs/nad"
)

// DatumShift converts points [start, start+n) from datum src to datum
// dst in place. Grid shift datums are first corrected to WGS 84 with
// their grids, Helmert datums are converted through WGS 84 geocentric
// coordinates, and the destination grids are removed last. Nothing is
// done if the datums match or either is of unknown type. z may be nil.
func DatumShift(ctx context.Context, src, dst *Datum, xy, z []float64, start, n int) {
	if n <= 0 || src.Matches(dst) || src.Type == DatumUnknown || dst.Type == DatumUnknown {
		return
	}
	if z == nil {
		z = make([]float64, start+n)
	}
	srcSpheroid, dstSpheroid := src.Spheroid, dst.Spheroid
	if src.Type == DatumGridShift {
		nad.Default.Apply(ctx, src.NadGrids, false, xy, start, n)
		srcSpheroid = WGS84()
	}
	if dst.Type == DatumGridShift {
		dstSpheroid = WGS84()
	}
	if !srcSpheroid.Matches(dstSpheroid) || src.isHelmert() || dst.isHelmert() {
		NewGeocentricGeodetic(srcSpheroid).GeodeticToGeocentric(xy, z, start, n)
		if src.isHelmert() {
			src.geocentricToWGS84(xy, z, start, n)
		}
		if dst.isHelmert() {
			dst.geocentricFromWGS84(xy, z, start, n)
		}
		NewGeocentricGeodetic(dstSpheroid).GeocentricToGeodetic(xy, z, start, n)
	}
	if dst.Type == DatumGridShift {
		nad.Default.Apply(ctx, dst.NadGrids, true, xy, start, n)
	}
}

func (d *Datum) isHelmert() bool {
	return d.Type == DatumParam3 || d.Type == DatumParam7
}

func (d *Datum) geocentricToWGS84(xy, z []float64, start, n int) {
	p := d.ToWGS84
	for i := start; i < start+n; i++ {
		x, y, zz := xy[2*i], xy[2*i+1], z[i]
		if d.Type == DatumParam3 {
			xy[2*i], xy[2*i+1], z[i] = x+p[0], y+p[1], zz+p[2]
			continue
		}
		rx, ry, rz, m := p[3], p[4], p[5], p[6]
		xy[2*i] = m*(x-rz*y+ry*zz) + p[0]
		xy[2*i+1] = m*(rz*x+y-rx*zz) + p[1]
		z[i] = m*(-ry*x+rx*y+zz) + p[2]
	}
}

func (d *Datum) geocentricFromWGS84(xy, z []float64, start, n int) {
	p := d.ToWGS84
	for i := start; i < start+n; i++ {
		x, y, zz := xy[2*i], xy[2*i+1], z[i]
		if d.Type == DatumParam3 {
			xy[2*i], xy[2*i+1], z[i] = x-p[0], y-p[1], zz-p[2]
			continue
		}
		rx, ry, rz, m := p[3], p[4], p[5], p[6]
		xt := (x - p[0]) / m
		yt := (y - p[1]) / m
		zt := (zz - p[2]) / m
		xy[2*i] = xt + rz*yt - ry*zt
		xy[2*i+1] = -rz*xt + yt + rx*zt
		z[i] = ry*xt - rx*yt + zt
	}
}

// StagesBetween returns a pipeline that converts from datum src to datum
// dst through WGS 84, the way DatumShift does. It returns an empty list
// if no conversion is needed.
func StagesBetween(src, dst *Datum) []*DatumTransformStage {
	stages := []*DatumTransformStage{}
	if src.Matches(dst) || src.Type == DatumUnknown || dst.Type == DatumUnknown {
		return stages
	}
	wgs84 := WGS84()
	srcName, dstName := datumLabel(src), datumLabel(dst)
	switch {
	case src.Type == DatumGridShift:
		stages = append(stages, &DatumTransformStage{
			FromDatum: srcName, ToDatum: "WGS84", Method: MethodGridShift,
			GridTable: strings.Join(src.NadGrids, ","),
		})
	case src.isHelmert():
		stages = append(stages, helmertStage(src, srcName, "WGS84", false, src.Spheroid, wgs84))
	}
	switch {
	case dst.Type == DatumGridShift:
		stages = append(stages, &DatumTransformStage{
			FromDatum: "WGS84", ToDatum: dstName, Method: MethodGridShift,
			GridTable: strings.Join(dst.NadGrids, ","), ApplyInverse: true,
		})
	case dst.isHelmert():
		stages = append(stages, helmertStage(dst, "WGS84", dstName, true, wgs84, dst.Spheroid))
	}

	// Convert ellipsoids with a null translation when no Helmert stage
	// does so.
	srcSpheroid, dstSpheroid := src.Spheroid, dst.Spheroid
	if src.Type == DatumGridShift {
		srcSpheroid = wgs84
	}
	if dst.Type == DatumGridShift {
		dstSpheroid = wgs84
	}
	if !src.isHelmert() && !dst.isHelmert() && !srcSpheroid.Matches(dstSpheroid) {
		s1, s2 := srcSpheroid, dstSpheroid
		null := &DatumTransformStage{FromDatum: srcName, ToDatum: "WGS84", Method: MethodParam3,
			FromSpheroid: &s1, ToSpheroid: &s2}
		if src.Type == DatumGridShift {
			null.FromDatum = "WGS84"
			stages = append(stages[:1], append([]*DatumTransformStage{null}, stages[1:]...)...)
		} else {
			stages = append([]*DatumTransformStage{null}, stages...)
		}
	}
	return stages
}

func helmertStage(d *Datum, from, to string, inverse bool, fromSpheroid, toSpheroid Spheroid) *DatumTransformStage {
	s := &DatumTransformStage{
		FromDatum: from, ToDatum: to, Method: MethodParam3,
		Dx: d.ToWGS84[0], Dy: d.ToWGS84[1], Dz: d.ToWGS84[2],
		ApplyInverse: inverse,
		FromSpheroid: &fromSpheroid, ToSpheroid: &toSpheroid,
	}
	if d.Type == DatumParam7 {
		s.Method = MethodParam7
		s.Rx, s.Ry, s.Rz = d.ToWGS84[3], d.ToWGS84[4], d.ToWGS84[5]
		s.Ds = (d.ToWGS84[6] - 1) * 1e6
	}
	return s
}

func datumLabel(d *Datum) string {
	if code := d.Proj4DatumName(); code != "" {
		return code
	}
	return d.Name
}
