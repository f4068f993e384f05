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
	"math"
	"strconv"
	"strings"
)

// Spheroid is a reference ellipsoid. A sphere has equal radii.
type Spheroid struct {
	// EquatorialRadius is the semi-major axis a, in meters.
	EquatorialRadius float64

	// PolarRadius is the semi-minor axis b, in meters.
	PolarRadius float64

	// KnownEllipsoid is the catalogued ellipsoid this spheroid was built
	// from, or EllipsoidCustom.
	KnownEllipsoid Ellipsoid

	// Name is the name used in Esri well-known text.
	Name string

	// Code is the Proj4 ellipsoid code, empty for custom spheroids.
	Code string
}

// NewSpheroid returns a spheroid with semi-major axis a and inverse
// flattening rf. An inverse flattening of zero gives a sphere.
func NewSpheroid(a, rf float64) Spheroid {
	s := Spheroid{EquatorialRadius: a, PolarRadius: a, Name: "Custom"}
	s.SetInverseFlattening(rf)
	return s
}

// NewSpheroidFromRadii returns a spheroid with semi-major axis a and
// semi-minor axis b.
func NewSpheroidFromRadii(a, b float64) Spheroid {
	return Spheroid{EquatorialRadius: a, PolarRadius: b, Name: "Custom"}
}

// NewSphere returns a sphere with the given radius.
func NewSphere(radius float64) Spheroid {
	return Spheroid{EquatorialRadius: radius, PolarRadius: radius, Name: "Sphere"}
}

// NewSpheroidFromEllipsoid returns the catalogued ellipsoid e.
func NewSpheroidFromEllipsoid(e Ellipsoid) Spheroid {
	d := e.def()
	s := Spheroid{
		EquatorialRadius: d.a,
		PolarRadius:      d.b,
		KnownEllipsoid:   e,
		Name:             d.esri,
		Code:             d.code,
	}
	if d.b == 0 {
		s.PolarRadius = d.a
		if d.rf != 0 {
			s.PolarRadius = d.a * (1 - 1/d.rf)
		}
	}
	return s
}

// NewSpheroidFromProj4 returns the ellipsoid with the given Proj4 code.
func NewSpheroidFromProj4(code string) (Spheroid, error) {
	e, ok := LookupEllipsoid(code)
	if !ok {
		return Spheroid{}, fmt.Errorf("crs: unknown ellipsoid %q", code)
	}
	return NewSpheroidFromEllipsoid(e), nil
}

// WGS84 returns the WGS 84 ellipsoid.
func WGS84() Spheroid { return NewSpheroidFromEllipsoid(EllipsoidWGS84) }

// Flattening returns (a-b)/a.
func (s Spheroid) Flattening() float64 {
	if s.EquatorialRadius == 0 {
		return 0
	}
	return (s.EquatorialRadius - s.PolarRadius) / s.EquatorialRadius
}

// EccentricitySquared returns 2f-f².
func (s Spheroid) EccentricitySquared() float64 {
	f := s.Flattening()
	return 2*f - f*f
}

// Eccentricity returns the first eccentricity.
func (s Spheroid) Eccentricity() float64 {
	return math.Sqrt(s.EccentricitySquared())
}

// InverseFlattening returns a/(a-b), or 0 for a sphere.
func (s Spheroid) InverseFlattening() float64 {
	if s.EquatorialRadius == s.PolarRadius {
		return 0
	}
	return s.EquatorialRadius / (s.EquatorialRadius - s.PolarRadius)
}

// SetInverseFlattening recomputes the polar radius from the equatorial
// radius and rf. Zero makes the spheroid a sphere.
func (s *Spheroid) SetInverseFlattening(rf float64) {
	if rf == 0 {
		s.PolarRadius = s.EquatorialRadius
		return
	}
	s.PolarRadius = s.EquatorialRadius * (1 - 1/rf)
}

// IsOblate returns whether the polar radius is less than the equatorial
// radius.
func (s Spheroid) IsOblate() bool {
	return s.PolarRadius < s.EquatorialRadius
}

// Matches returns whether both spheroids have the same radii.
func (s Spheroid) Matches(o Spheroid) bool {
	return s.EquatorialRadius == o.EquatorialRadius && s.PolarRadius == o.PolarRadius
}

// ToProj4String returns " +ellps=<code>" for catalogued ellipsoids and
// " +a=<a> +b=<b>" otherwise.
func (s Spheroid) ToProj4String() string {
	if s.KnownEllipsoid != EllipsoidCustom {
		return " +ellps=" + s.KnownEllipsoid.Code()
	}
	return " +a=" + formatNumber(s.EquatorialRadius) + " +b=" + formatNumber(s.PolarRadius)
}

// ToEsriString returns the SPHEROID clause of Esri well-known text.
func (s Spheroid) ToEsriString() string {
	name := s.Name
	if name == "" {
		name = s.KnownEllipsoid.Esri()
	}
	return `SPHEROID["` + name + `",` + formatEsriNumber(s.EquatorialRadius) + "," +
		formatEsriNumber(s.InverseFlattening()) + "]"
}

// ParseEsriString reads the first SPHEROID clause of s. It returns false
// if there is none, in which case the spheroid is unchanged.
func (s *Spheroid) ParseEsriString(str string) (bool, error) {
	body, ok, err := esriClause(str, "SPHEROID")
	if !ok || err != nil {
		return ok, err
	}
	f := splitEsriArgs(body)
	if len(f) < 3 {
		return true, formatErrorf("esri", str, "SPHEROID needs a name, a semi-major axis and an inverse flattening")
	}
	a, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return true, formatErrorf("esri", str, "SPHEROID semi-major axis: %v", err)
	}
	rf, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return true, formatErrorf("esri", str, "SPHEROID inverse flattening: %v", err)
	}
	name := unquote(f[0])
	*s = NewSpheroid(a, rf)
	s.Name = name
	// Catalogued ellipsoids are recognized by name, and keep their exact
	// radii when the text only rounds them.
	if e, ok := lookupEsriEllipsoid(name); ok {
		if k := NewSpheroidFromEllipsoid(e); k.EquatorialRadius == a &&
			math.Abs(k.InverseFlattening()-rf) <= 1e-6*rf {
			*s = k
			s.Name = name
		}
	}
	return true, nil
}

// formatNumber writes v with the fewest digits that read back exactly.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatEsriNumber is formatNumber with a decimal point always present,
// as Esri software writes numbers.
func formatEsriNumber(v float64) string {
	s := formatNumber(v)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
