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
	"math"
	"strconv"
	"strings"
)

// krovakProj4 is used for any Esri definition mentioning Krovak, whose
// Esri parameters do not map onto Proj4 ones.
const krovakProj4 = "+proj=krovak +lat_0=49.5 +lon_0=24.83333333333333 +alpha=30.28813972222222 " +
	"+k=0.9999 +x_0=0 +y_0=0 +ellps=bessel +towgs84=589,76,480,0,0,0,0 +units=m +no_defs"

// esriProjections maps Esri projection names to Proj4 names.
var esriProjections = []struct{ esri, proj4 string }{
	{"Transverse_Mercator", "tmerc"},
	{"Lambert_Conformal_Conic", "lcc"},
	{"Albers", "aea"},
	{"Mercator", "merc"},
	{"Mercator_Auxiliary_Sphere", "merc"},
	{"Hotine_Oblique_Mercator_Azimuth_Center", "omerc"},
	{"Krovak", "krovak"},
	{"Stereographic", "stere"},
	{"Double_Stereographic", "sterea"},
	{"Lambert_Azimuthal_Equal_Area", "laea"},
	{"Azimuthal_Equidistant", "aeqd"},
	{"Equidistant_Conic", "eqdc"},
	{"Equidistant_Cylindrical", "eqc"},
	{"Cylindrical_Equal_Area", "cea"},
	{"Cassini", "cass"},
	{"Polyconic", "poly"},
	{"Robinson", "robin"},
	{"Sinusoidal", "sinu"},
	{"Mollweide", "moll"},
	{"Gnomonic", "gnom"},
	{"Orthographic", "ortho"},
	{"Miller_Cylindrical", "mill"},
	{"Van_der_Grinten_I", "vandg"},
	{"Eckert_IV", "eck4"},
	{"Eckert_VI", "eck6"},
	{"New_Zealand_Map_Grid", "nzmg"},
}

func esriToProj4Name(esri string) (string, bool) {
	for _, p := range esriProjections {
		if strings.EqualFold(p.esri, esri) {
			return p.proj4, true
		}
	}
	return "", false
}

func proj4ToEsriName(name string) (string, bool) {
	if name == "utm" {
		return "Transverse_Mercator", true
	}
	for _, p := range esriProjections {
		if p.proj4 == name {
			return p.esri, true
		}
	}
	return "", false
}

// esriClause returns the contents of the first tag[...] clause of str.
// ok is false if there is no such clause. Brackets within quoted names
// are ignored.
func esriClause(str, tag string) (body string, ok bool, err error) {
	i := indexTag(str, tag)
	if i < 0 {
		return "", false, nil
	}
	open := i + len(tag)
	end := matchBracket(str, open)
	if end < 0 {
		return "", true, formatErrorf("esri", str, "%s clause is not closed", tag)
	}
	return str[open+1 : end], true, nil
}

// indexTag returns the index of the first occurrence of tag followed by
// an opening bracket that is not part of a longer tag name.
func indexTag(str, tag string) int {
	for off := 0; ; {
		i := strings.Index(str[off:], tag+"[")
		if i < 0 {
			return -1
		}
		i += off
		if i == 0 || !isTagByte(str[i-1]) {
			return i
		}
		off = i + 1
	}
}

func isTagByte(c byte) bool {
	return c == '_' || ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}

// matchBracket returns the index of the bracket closing the one at open,
// or -1.
func matchBracket(str string, open int) int {
	depth := 0
	quoted := false
	for i := open; i < len(str); i++ {
		switch c := str[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitEsriArgs splits the contents of a clause on the commas that are
// not nested in brackets or quotes.
func splitEsriArgs(body string) []string {
	var out []string
	depth := 0
	quoted := false
	last := 0
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			out = append(out, strings.TrimSpace(body[last:i]))
			last = i + 1
		}
	}
	return append(out, strings.TrimSpace(body[last:]))
}

// esriItem splits an argument of the form TAG[body].
func esriItem(arg string) (tag, body string, ok bool) {
	i := strings.IndexByte(arg, '[')
	if i <= 0 || !strings.HasSuffix(arg, "]") {
		return "", "", false
	}
	return strings.TrimSpace(arg[:i]), arg[i+1 : len(arg)-1], true
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// esriNameValue reads a clause of the form "name",value.
func esriNameValue(str, tag, body string) (string, float64, error) {
	args := splitEsriArgs(body)
	if len(args) < 2 {
		return "", 0, formatErrorf("esri", str, "%s needs a name and a value", tag)
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", 0, formatErrorf("esri", str, "%s value: %v", tag, err)
	}
	return unquote(args[0]), v, nil
}

// ParseEsriString reads a coordinate reference system from Esri
// well-known text, as found in .prj files. A GEOGCS clause is required;
// a surrounding PROJCS clause makes the system projected.
func ParseEsriString(str string) (*ProjectionInfo, error) {
	str = strings.TrimSpace(str)
	if strings.Contains(str, "Krovak") {
		return ParseProj4String(krovakProj4)
	}
	p := NewProjectionInfo()
	if err := p.GeographicInfo.parseEsri(str); err != nil {
		return nil, err
	}
	body, ok, err := esriClause(str, "PROJCS")
	if err != nil {
		return nil, err
	}
	if !ok {
		p.Name = "longlat"
		p.IsLatLon = true
		p.Title = p.GeographicInfo.Name
		return p, nil
	}
	p.Name = ""
	p.IsLatLon = false
	args := splitEsriArgs(body)
	p.Title = unquote(args[0])

	// The linear unit applies to the false easting and northing, so it
	// is read first.
	for _, arg := range args[1:] {
		if tag, b, ok := esriItem(arg); ok && tag == "UNIT" {
			name, v, err := esriNameValue(str, tag, b)
			if err != nil {
				return nil, err
			}
			p.Unit = LinearUnit{Name: name, Meters: v}
		}
	}
	var auxType float64
	for _, arg := range args[1:] {
		tag, b, ok := esriItem(arg)
		if !ok {
			continue
		}
		switch tag {
		case "PROJECTION":
			p.EsriName = unquote(splitEsriArgs(b)[0])
			name, ok := esriToProj4Name(p.EsriName)
			if !ok {
				Log.WithField("projection", p.EsriName).Warn("crs: unsupported Esri projection")
				name = strings.ToLower(p.EsriName)
			}
			p.Name = name
		case "PARAMETER":
			name, v, err := esriNameValue(str, tag, b)
			if err != nil {
				return nil, err
			}
			if name == "Auxiliary_Sphere_Type" {
				auxType = v
			}
			p.setEsriParameter(name, v)
		}
	}
	if p.Name == "" {
		return nil, formatErrorf("esri", str, "PROJCS needs a PROJECTION")
	}
	if p.EsriName == "Mercator_Auxiliary_Sphere" {
		p.AuxiliarySphereType = int(auxType)
		src := p.GeographicInfo.Datum.Spheroid
		p.EsriSpheroid = &src
		p.GeographicInfo.Datum.Spheroid = auxiliarySphere(src, p.AuxiliarySphereType)
	}
	return p, nil
}

func (p *ProjectionInfo) setEsriParameter(name string, v float64) {
	switch strings.ToLower(name) {
	case "false_easting":
		p.FalseEasting = v * p.Unit.Meters
	case "false_northing":
		p.FalseNorthing = v * p.Unit.Meters
	case "scale_factor":
		p.ScaleFactor = v
	case "central_meridian":
		p.CentralMeridian = v
	case "latitude_of_origin", "latitude_of_center", "central_parallel":
		p.LatitudeOfOrigin = v
	case "standard_parallel_1":
		p.StandardParallel1 = v
	case "standard_parallel_2":
		p.StandardParallel2 = v
	case "longitude_of_center":
		p.LongitudeOfCenter = v
	case "azimuth":
		p.Alpha = v
	case "auxiliary_sphere_type":
	default:
		Log.WithField("parameter", name).Warn("crs: unsupported Esri parameter")
	}
}

// auxiliarySphere returns the sphere Esri uses in place of s for an
// auxiliary sphere of type t: 0 uses the semi-major axis, 1 the
// semi-minor axis and 2 the authalic radius.
func auxiliarySphere(s Spheroid, t int) Spheroid {
	switch t {
	case 1:
		return NewSphere(s.PolarRadius)
	case 2:
		es := s.EccentricitySquared()
		if es == 0 {
			return NewSphere(s.EquatorialRadius)
		}
		e := math.Sqrt(es)
		q := (1 - es) * (1/(1-es) + math.Log((1+e)/(1-e))/(2*e))
		return NewSphere(s.EquatorialRadius * math.Sqrt(q/2))
	default:
		return NewSphere(s.EquatorialRadius)
	}
}

// parseEsri reads the first GEOGCS clause of str.
func (g *GeographicInfo) parseEsri(str string) error {
	body, ok, err := esriClause(str, "GEOGCS")
	if err != nil {
		return err
	}
	if !ok {
		return formatErrorf("esri", str, "no GEOGCS clause")
	}
	g.Name = unquote(splitEsriArgs(body)[0])
	if ok, err := g.Datum.ParseEsriString(body); err != nil {
		return err
	} else if !ok {
		return formatErrorf("esri", str, "GEOGCS needs a DATUM")
	}
	if pm, ok, err := esriClause(body, "PRIMEM"); err != nil {
		return err
	} else if ok {
		if g.Meridian.Name, g.Meridian.Longitude, err = esriNameValue(str, "PRIMEM", pm); err != nil {
			return err
		}
	}
	if u, ok, err := esriClause(body, "UNIT"); err != nil {
		return err
	} else if ok {
		if g.Unit.Name, g.Unit.Radians, err = esriNameValue(str, "UNIT", u); err != nil {
			return err
		}
	}
	return nil
}

// toEsri returns the GEOGCS clause.
func (g *GeographicInfo) toEsri() string {
	name := g.Name
	if name == "" {
		name = geogcsName(&g.Datum)
	}
	return `GEOGCS["` + name + `",` + g.Datum.ToEsriString() +
		`,PRIMEM["` + g.Meridian.Name + `",` + formatEsriNumber(g.Meridian.Longitude) +
		`],UNIT["` + g.Unit.Name + `",` + formatNumber(g.Unit.Radians) + "]]"
}

// geogcsName derives a geographic system name from a datum name, as in
// D_WGS_1984 to GCS_WGS_1984.
func geogcsName(d *Datum) string {
	if d.Name == "" {
		return "GCS_Unknown"
	}
	return "GCS_" + strings.TrimPrefix(d.Name, "D_")
}

// ToEsriString returns p as Esri well-known text.
func (p *ProjectionInfo) ToEsriString() string {
	if p.IsLatLon {
		return p.GeographicInfo.toEsri()
	}
	esri := p.EsriName
	if esri == "" {
		var ok bool
		if esri, ok = proj4ToEsriName(p.Name); !ok {
			esri = p.Name
		}
	}
	g := p.GeographicInfo
	if esri == "Mercator_Auxiliary_Sphere" && p.EsriSpheroid != nil {
		g.Datum.Spheroid = *p.EsriSpheroid
	}
	geog := g.toEsri()
	title := p.Title
	if title == "" {
		title = "Unknown"
	}
	toUnit := 1.
	if p.Unit.Meters != 0 {
		toUnit = 1 / p.Unit.Meters
	}
	fe, fn, k, cm := p.FalseEasting, p.FalseNorthing, p.ScaleFactor, p.CentralMeridian
	if p.Name == "utm" {
		fe, k, cm = 500000, 0.9996, float64(6*p.Zone-183)
		fn = 0.
		if p.IsSouth {
			fn = 10000000
		}
	}
	var b strings.Builder
	b.WriteString(`PROJCS["` + title + `",` + geog + `,PROJECTION["` + esri + `"]`)
	param := func(name string, v float64) {
		if !math.IsNaN(v) {
			b.WriteString(`,PARAMETER["` + name + `",` + formatEsriNumber(v) + "]")
		}
	}
	param("False_Easting", orZero(fe)*toUnit)
	param("False_Northing", orZero(fn)*toUnit)
	param("Central_Meridian", orZero(cm))
	param("Scale_Factor", k)
	param("Standard_Parallel_1", p.StandardParallel1)
	param("Standard_Parallel_2", p.StandardParallel2)
	param("Latitude_Of_Origin", p.LatitudeOfOrigin)
	param("Longitude_Of_Center", p.LongitudeOfCenter)
	param("Azimuth", p.Alpha)
	if esri == "Mercator_Auxiliary_Sphere" {
		param("Auxiliary_Sphere_Type", float64(p.AuxiliarySphereType))
	}
	b.WriteString(`,UNIT["` + p.Unit.Name + `",` + formatEsriNumber(p.Unit.Meters) + "]]")
	return b.String()
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
