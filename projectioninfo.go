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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// LinearUnit is the unit of projected coordinates.
type LinearUnit struct {
	Name   string
	Meters float64
}

// AngularUnit is the unit of geographic coordinates.
type AngularUnit struct {
	Name    string
	Radians float64
}

// Meridian is a prime meridian.
type Meridian struct {
	Name string

	// Longitude is the longitude east of Greenwich, in degrees.
	Longitude float64
}

// GeographicInfo is the geographic part of a coordinate reference
// system.
type GeographicInfo struct {
	Name     string
	Datum    Datum
	Meridian Meridian
	Unit     AngularUnit
}

// ProjectionInfo is a coordinate reference system. Angles are in
// degrees and distances in meters. Parameters that are unset are NaN.
type ProjectionInfo struct {
	// Name is the Proj4 projection name, such as "longlat" or "utm".
	Name string

	// EsriName is the Esri projection name, if the system was read from
	// Esri well-known text.
	EsriName string

	Title    string
	IsLatLon bool

	FalseEasting, FalseNorthing float64
	ScaleFactor                 float64
	LatitudeOfOrigin            float64
	CentralMeridian             float64
	StandardParallel1           float64
	StandardParallel2           float64
	LatitudeOfTrueScale         float64
	Alpha                       float64
	LongitudeOfCenter           float64

	// Zone is the UTM zone, or 0.
	Zone int

	Over, Geoc, IsSouth, NoDefs bool

	// AuxiliarySphereType is the Esri Auxiliary_Sphere_Type parameter.
	AuxiliarySphereType int

	// EsriSpheroid is the spheroid written in the Esri text of a
	// Mercator_Auxiliary_Sphere system. The datum holds the sphere that
	// replaces it.
	EsriSpheroid *Spheroid

	Unit           LinearUnit
	GeographicInfo GeographicInfo
}

// NewProjectionInfo returns a WGS 84 geographic coordinate system.
func NewProjectionInfo() *ProjectionInfo {
	nan := math.NaN()
	return &ProjectionInfo{
		Name:                "longlat",
		IsLatLon:            true,
		FalseEasting:        nan,
		FalseNorthing:       nan,
		ScaleFactor:         nan,
		LatitudeOfOrigin:    nan,
		CentralMeridian:     nan,
		StandardParallel1:   nan,
		StandardParallel2:   nan,
		LatitudeOfTrueScale: nan,
		Alpha:               nan,
		LongitudeOfCenter:   nan,
		Unit:                LinearUnit{Name: "Meter", Meters: 1},
		GeographicInfo: GeographicInfo{
			Name:     "GCS_WGS_1984",
			Datum:    *NewDatum(),
			Meridian: Meridian{Name: "Greenwich"},
			Unit:     AngularUnit{Name: "Degree", Radians: 0.0174532925199433},
		},
	}
}

// Parse reads a coordinate reference system from either a Proj4 string
// or Esri well-known text.
func Parse(s string) (*ProjectionInfo, error) {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "+") || strings.Contains(t, "+proj="):
		return ParseProj4String(t)
	case strings.Contains(t, "GEOGCS[") || strings.Contains(t, "PROJCS["):
		return ParseEsriString(t)
	}
	return nil, formatErrorf("crs", s, "neither a Proj4 string nor Esri well-known text")
}

// Clone returns a deep copy of p.
func (p *ProjectionInfo) Clone() *ProjectionInfo {
	c := *p
	c.GeographicInfo.Datum = *p.GeographicInfo.Datum.Clone()
	if p.EsriSpheroid != nil {
		s := *p.EsriSpheroid
		c.EsriSpheroid = &s
	}
	return &c
}

// Equal returns whether p and o are the same to within ulp units in the
// last place. Unset parameters only equal unset parameters.
func (p *ProjectionInfo) Equal(o *ProjectionInfo, ulp uint) bool {
	eq := func(a, b float64) bool {
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.IsNaN(a) && math.IsNaN(b)
		}
		return floats.EqualWithinULP(a, b, ulp)
	}
	if p.Name != o.Name || p.IsLatLon != o.IsLatLon || p.Zone != o.Zone ||
		p.Over != o.Over || p.Geoc != o.Geoc || p.IsSouth != o.IsSouth ||
		p.AuxiliarySphereType != o.AuxiliarySphereType {
		return false
	}
	pf := p.parameters()
	for i, v := range o.parameters() {
		if !eq(pf[i], v) {
			return false
		}
	}
	if !eq(p.Unit.Meters, o.Unit.Meters) {
		return false
	}
	g, og := &p.GeographicInfo, &o.GeographicInfo
	if !eq(g.Meridian.Longitude, og.Meridian.Longitude) || !eq(g.Unit.Radians, og.Unit.Radians) {
		return false
	}
	d, od := &g.Datum, &og.Datum
	if d.Type != od.Type || !eq(d.Spheroid.EquatorialRadius, od.Spheroid.EquatorialRadius) ||
		!eq(d.Spheroid.PolarRadius, od.Spheroid.PolarRadius) ||
		len(d.ToWGS84) != len(od.ToWGS84) || strings.Join(d.NadGrids, ",") != strings.Join(od.NadGrids, ",") {
		return false
	}
	for i, v := range d.ToWGS84 {
		if !eq(v, od.ToWGS84[i]) {
			return false
		}
	}
	return true
}

func (p *ProjectionInfo) parameters() []float64 {
	return []float64{p.FalseEasting, p.FalseNorthing, p.ScaleFactor, p.LatitudeOfOrigin,
		p.CentralMeridian, p.StandardParallel1, p.StandardParallel2, p.LatitudeOfTrueScale,
		p.Alpha, p.LongitudeOfCenter}
}

// TransformPoints converts points [start, start+n) of xy and z from
// system src to system dst in place. Coordinates of geographic systems
// are in their angular unit, usually degrees. The datum conversion uses
// pipeline if it is not nil, and DatumShift otherwise. z may be nil.
func TransformPoints(ctx context.Context, src, dst *ProjectionInfo, pipeline *DatumTransform, xy, z []float64, start, n int) error {
	if n <= 0 {
		return nil
	}
	if len(xy) < 2*(start+n) || (z != nil && len(z) < start+n) {
		return fmt.Errorf("crs: %d points from %d do not fit in the coordinate buffers", n, start)
	}
	from, err := src.Projection()
	if err != nil {
		return err
	}
	to, err := dst.Projection()
	if err != nil {
		return err
	}
	if err := from.Inverse(xy, z, start, n); err != nil {
		return fmt.Errorf("crs: inverse %s projection: %v", src.Name, err)
	}
	shiftMeridian(xy, start, n, src.GeographicInfo.Meridian.Longitude*degToRad)
	if pipeline != nil {
		pipeline.Transform(ctx, src, dst, xy, z, start, n)
	} else {
		DatumShift(ctx, &src.GeographicInfo.Datum, &dst.GeographicInfo.Datum, xy, z, start, n)
	}
	shiftMeridian(xy, start, n, -dst.GeographicInfo.Meridian.Longitude*degToRad)
	if err := to.Forward(xy, z, start, n); err != nil {
		return fmt.Errorf("crs: forward %s projection: %v", dst.Name, err)
	}
	return nil
}

func shiftMeridian(xy []float64, start, n int, lon float64) {
	if lon == 0 {
		return
	}
	for i := start; i < start+n; i++ {
		xy[2*i] += lon
	}
}
