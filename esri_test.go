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
	"strings"
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
)

const (
	wgs84Esri = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],` +
		`PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

	utm10Esri = `PROJCS["NAD_1983_UTM_Zone_10N",GEOGCS["GCS_North_American_1983",` +
		`DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],` +
		`PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],` +
		`PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",0.0],` +
		`PARAMETER["Central_Meridian",-123.0],PARAMETER["Scale_Factor",0.9996],` +
		`PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`

	webMercatorEsri = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",` + wgs84Esri +
		`,PROJECTION["Mercator_Auxiliary_Sphere"],PARAMETER["False_Easting",0.0],` +
		`PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",0.0],` +
		`PARAMETER["Standard_Parallel_1",0.0],PARAMETER["Auxiliary_Sphere_Type",%d.0],UNIT["Meter",1.0]]`
)

func TestEsriWGS84(t *testing.T) {
	p, err := ParseEsriString(wgs84Esri)
	if err != nil {
		t.Fatal(err)
	}
	s := p.GeographicInfo.Datum.Spheroid
	if s.EquatorialRadius != 6378137 {
		t.Errorf("a=%g", s.EquatorialRadius)
	}
	if !floats.EqualWithinAbs(s.InverseFlattening(), 298.257223563, 1e-6) {
		t.Errorf("rf=%.9f", s.InverseFlattening())
	}
	if !p.IsLatLon || p.Name != "longlat" || p.GeographicInfo.Datum.Proj4DatumName() != "WGS84" {
		t.Errorf("%# v", pretty.Formatter(p))
	}
	if p.GeographicInfo.Name != "GCS_WGS_1984" || p.GeographicInfo.Unit.Radians != 0.0174532925199433 {
		t.Errorf("geographic info %+v", p.GeographicInfo)
	}
	back, err := ParseEsriString(p.ToEsriString())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p, 0) {
		t.Errorf("round trip of %s: %v", p.ToEsriString(), pretty.Diff(back, p))
	}
	if have := p.ToEsriString(); !strings.HasPrefix(have, `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.25722356`) {
		t.Errorf("serialized as %s", have)
	}
}

func TestEsriProjected(t *testing.T) {
	p, err := ParseEsriString(utm10Esri)
	if err != nil {
		t.Fatal(err)
	}
	if p.IsLatLon || p.Name != "tmerc" || p.EsriName != "Transverse_Mercator" || p.Title != "NAD_1983_UTM_Zone_10N" {
		t.Errorf("%# v", pretty.Formatter(p))
	}
	if p.FalseEasting != 500000 || p.FalseNorthing != 0 || p.CentralMeridian != -123 ||
		p.ScaleFactor != 0.9996 || p.LatitudeOfOrigin != 0 {
		t.Errorf("parameters %# v", pretty.Formatter(p))
	}
	if p.GeographicInfo.Datum.Proj4DatumName() != "NAD83" {
		t.Errorf("datum %q", p.GeographicInfo.Datum.Name)
	}
	back, err := ParseEsriString(p.ToEsriString())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p, 4) {
		t.Errorf("round trip of %s: %v", p.ToEsriString(), pretty.Diff(back, p))
	}

	proj4, err := ParseProj4String(p.ToProj4String())
	if err != nil {
		t.Fatal(err)
	}
	if !proj4.Equal(p, 4) {
		t.Errorf("via proj4 %s: %v", p.ToProj4String(), pretty.Diff(proj4, p))
	}
}

func TestEsriFeet(t *testing.T) {
	s := strings.Replace(utm10Esri, `UNIT["Meter",1.0]]`, `UNIT["Foot_US",0.3048006096012192]]`, 1)
	s = strings.Replace(s, `"False_Easting",500000.0`, `"False_Easting",1640416.666666667`, 1)
	p, err := ParseEsriString(s)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(p.FalseEasting, 500000, 1e-6) {
		t.Errorf("false easting %g m", p.FalseEasting)
	}
	if !strings.Contains(p.ToEsriString(), `PARAMETER["False_Easting",1640416.66666666`) {
		t.Errorf("serialized as %s", p.ToEsriString())
	}
	if have := p.ToProj4String(); !strings.Contains(have, "+units=us-ft") {
		t.Errorf("proj4 %s", have)
	}
}

func TestUTMToEsri(t *testing.T) {
	p, err := ParseProj4String("+proj=utm +zone=10 +south +datum=WGS84 +units=m +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	s := p.ToEsriString()
	for _, want := range []string{
		`PROJECTION["Transverse_Mercator"]`,
		`PARAMETER["False_Easting",500000.0]`,
		`PARAMETER["False_Northing",10000000.0]`,
		`PARAMETER["Central_Meridian",-123.0]`,
		`PARAMETER["Scale_Factor",0.9996]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("%s does not contain %s", s, want)
		}
	}
}

func TestEsriKrovak(t *testing.T) {
	p, err := ParseEsriString(`PROJCS["S-JTSK_Krovak_East_North",GEOGCS["GCS_S_JTSK",DATUM["D_S_JTSK",` +
		`SPHEROID["Bessel_1841",6377397.155,299.1528128]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],` +
		`PROJECTION["Krovak"],PARAMETER["Pseudo_Standard_Parallel_1",78.5],UNIT["Meter",1.0]]`)
	if err != nil {
		t.Fatal(err)
	}
	d := p.GeographicInfo.Datum
	if p.Name != "krovak" || p.ScaleFactor != 0.9999 || d.Type != DatumParam3 ||
		d.Spheroid.KnownEllipsoid != EllipsoidBessel || d.ToWGS84[0] != 589 {
		t.Errorf("%# v", pretty.Formatter(p))
	}
}

func TestEsriAuxiliarySphere(t *testing.T) {
	for _, test := range []struct {
		typ    int
		radius float64
	}{
		{typ: 0, radius: 6378137},
		{typ: 1, radius: WGS84().PolarRadius},
		{typ: 2, radius: 6371007.1809},
	} {
		p, err := ParseEsriString(strings.Replace(webMercatorEsri, "%d", string(rune('0'+test.typ)), 1))
		if err != nil {
			t.Fatal(err)
		}
		s := p.GeographicInfo.Datum.Spheroid
		if p.Name != "merc" || p.AuxiliarySphereType != test.typ || s.PolarRadius != s.EquatorialRadius ||
			!floats.EqualWithinAbs(s.EquatorialRadius, test.radius, 1e-3) {
			t.Errorf("type %d: %s radius %.4f", test.typ, p.Name, s.EquatorialRadius)
		}
		out := p.ToEsriString()
		if !strings.Contains(out, `PROJECTION["Mercator_Auxiliary_Sphere"]`) ||
			!strings.Contains(out, `DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.25722356`) {
			t.Errorf("type %d: serialized as %s", test.typ, out)
		}
		back, err := ParseEsriString(out)
		if err != nil {
			t.Fatal(err)
		}
		if bs := back.GeographicInfo.Datum.Spheroid; bs.EquatorialRadius != s.EquatorialRadius {
			t.Errorf("type %d: reparsed radius %.4f, want %.4f", test.typ, bs.EquatorialRadius, s.EquatorialRadius)
		}
		if c := p.Clone(); c.EsriSpheroid == p.EsriSpheroid || *c.EsriSpheroid != *p.EsriSpheroid {
			t.Errorf("type %d: clone shares or changes the Esri spheroid", test.typ)
		}
	}
}

func TestEsriErrors(t *testing.T) {
	for _, s := range []string{
		`PROJCS["x",PROJECTION["Mercator"],UNIT["Meter",1.0]]`,
		`GEOGCS["x",PRIMEM["Greenwich",0.0]]`,
		`GEOGCS["x",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",zero]]`,
		strings.Replace(utm10Esri, `"Scale_Factor",0.9996`, `"Scale_Factor",big`, 1),
		strings.TrimSuffix(wgs84Esri, "]"),
		`PROJCS["x",` + wgs84Esri + `,UNIT["Meter",1.0]]`,
	} {
		_, err := ParseEsriString(s)
		if _, ok := err.(*FormatError); !ok {
			t.Errorf("%s: error %v", s, err)
		}
	}
}

func TestEsriUnknownParameter(t *testing.T) {
	hook := captureLog(t)
	s := strings.Replace(utm10Esri, `UNIT["Meter",1.0]]`, `PARAMETER["Rectified_Grid_Angle",1.0],UNIT["Meter",1.0]]`, 1)
	if _, err := ParseEsriString(s); err != nil {
		t.Fatal(err)
	}
	if e := hook.LastEntry(); e == nil || e.Data["parameter"] != "Rectified_Grid_Angle" {
		t.Errorf("unknown parameter was not logged: %v", e)
	}
}

func TestSplitEsriArgs(t *testing.T) {
	have := splitEsriArgs(`"a,b", X["c",[1,2]] ,3`)
	want := []string{`"a,b"`, `X["c",[1,2]]`, `3`}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Errorf("have %q, want %q", have, want)
	}
	body, ok, err := esriClause(`VERT_DATUM["v"],DATUM["d",SPHEROID["s]",1,2]]`, "DATUM")
	if err != nil || !ok || body != `"d",SPHEROID["s]",1,2]` {
		t.Errorf("have %q %v %v", body, ok, err)
	}
}
