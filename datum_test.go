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
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
)

func mustDatum(t *testing.T, code string) *Datum {
	t.Helper()
	d, err := NewDatumFromProj4(code)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDatumMatches(t *testing.T) {
	if !mustDatum(t, "WGS84").Matches(mustDatum(t, "WGS84")) {
		t.Error("WGS84 does not match itself")
	}
	if mustDatum(t, "NAD27").Matches(mustDatum(t, "NAD83")) {
		t.Error("NAD27 matches NAD83")
	}
	if !mustDatum(t, "NAD83").Matches(NewDatum()) {
		t.Error("datums of type WGS84 should match each other")
	}
	a, b := mustDatum(t, "potsdam"), mustDatum(t, "potsdam")
	b.ToWGS84[2] += 1e-9
	if a.Matches(b) {
		t.Error("translations are compared exactly")
	}
	c, d := mustDatum(t, "NAD27"), mustDatum(t, "NAD27")
	d.NadGrids = d.NadGrids[:1]
	if c.Matches(d) {
		t.Error("grid lists of different length match")
	}
	e := mustDatum(t, "potsdam")
	e.Spheroid = WGS84()
	if e.Matches(mustDatum(t, "potsdam")) {
		t.Error("datums on different spheroids match")
	}
}

func TestProj4DatumName(t *testing.T) {
	for _, code := range DatumCodes() {
		d := mustDatum(t, code)
		if have := d.Proj4DatumName(); have != code {
			t.Errorf("%s: Proj4DatumName is %q", code, have)
		}
	}
	d := NewDatum()
	if d.SetProj4DatumName("nonesuch") {
		t.Error("unknown code accepted")
	}
	if d.Proj4DatumName() != "WGS84" {
		t.Error("unknown code modified the datum")
	}
	if _, err := NewDatumFromProj4("nonesuch"); err == nil {
		t.Error("expected an error")
	}
}

func TestInitializeToWGS84(t *testing.T) {
	d := new(Datum)
	if err := d.InitializeToWGS84([]string{"446.448", "-125.157", "542.06", "0.15", "0.247", "0.842", "-20.489"}); err != nil {
		t.Fatal(err)
	}
	if d.Type != DatumParam7 || len(d.ToWGS84) != 7 {
		t.Fatalf("type %v with %d values", d.Type, len(d.ToWGS84))
	}
	want := []float64{446.448, -125.157, 542.06, 0.15 * secToRad, 0.247 * secToRad, 0.842 * secToRad, 1 - 20.489e-6}
	if !floats.EqualApprox(d.ToWGS84, want, 1e-15) {
		t.Errorf("have %v, want %v", d.ToWGS84, want)
	}

	if err := d.InitializeToWGS84([]string{"1", "2", "3", "0", "0", "0", "0"}); err != nil {
		t.Fatal(err)
	}
	if d.Type != DatumParam3 || len(d.ToWGS84) != 3 {
		t.Errorf("zero rotations and scale: type %v with %d values", d.Type, len(d.ToWGS84))
	}

	for _, bad := range [][]string{{"1", "2"}, {"1", "2", "3", "4"}, {"1", "x", "3"}} {
		err := d.InitializeToWGS84(bad)
		if _, ok := err.(*FormatError); !ok {
			t.Errorf("%v: error %v", bad, err)
		}
	}
}

func TestDatumProj4String(t *testing.T) {
	for _, test := range []struct {
		d    *Datum
		want string
	}{
		{d: NewDatum(), want: " +datum=WGS84"},
		{d: &Datum{Type: DatumParam3, ToWGS84: []float64{1, 2, 3}, Spheroid: NewSpheroidFromEllipsoid(EllipsoidBessel)},
			want: " +towgs84=1,2,3 +ellps=bessel"},
		{d: &Datum{Type: DatumGridShift, NadGrids: []string{"a.gsb", "b.gsb"}, Spheroid: NewSpheroidFromRadii(6378000, 6357000)},
			want: " +nadgrids=a.gsb,b.gsb +a=6378000 +b=6357000"},
	} {
		if have := test.d.ToProj4String(); have != test.want {
			t.Errorf("have %q, want %q", have, test.want)
		}
	}

	d := new(Datum)
	d.Spheroid = NewSpheroidFromEllipsoid(EllipsoidAiry)
	if err := d.InitializeToWGS84([]string{"446.448", "-125.157", "542.06", "0.15", "0.247", "0.842", "-20.489"}); err != nil {
		t.Fatal(err)
	}
	p, err := ParseProj4String("+proj=longlat" + d.ToProj4String())
	if err != nil {
		t.Fatal(err)
	}
	back := p.GeographicInfo.Datum
	if back.Type != DatumParam7 || !back.Spheroid.Matches(d.Spheroid) || !floats.EqualApprox(back.ToWGS84, d.ToWGS84, 1e-12) {
		t.Errorf("Param7 round trip: %s", pretty.Diff(back, *d))
	}
}

func TestDatumClone(t *testing.T) {
	d := mustDatum(t, "OSGB36")
	c := d.Clone()
	if diff := pretty.Diff(*d, *c); len(diff) != 0 {
		t.Errorf("clone differs: %v", diff)
	}
	c.ToWGS84[0] = 0
	c.Spheroid.EquatorialRadius = 1
	if d.ToWGS84[0] == 0 || d.Spheroid.EquatorialRadius == 1 {
		t.Error("clone shares state with the original")
	}
}

func TestDatumEsri(t *testing.T) {
	d := mustDatum(t, "NAD83")
	s := d.ToEsriString()
	if want := `DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,`; !floatPrefix(s, want) {
		t.Errorf("have %s, want prefix %s", s, want)
	}
	var back Datum
	if ok, err := back.ParseEsriString(s); !ok || err != nil {
		t.Fatal(ok, err)
	}
	if !back.Matches(d) || back.Proj4DatumName() != "NAD83" {
		t.Errorf("round trip: %s", pretty.Diff(back, *d))
	}

	var custom Datum
	ok, err := custom.ParseEsriString(`DATUM["D_Mine",SPHEROID["Mine",6378000.0,300.0],TOWGS84[1,2,3,0,0,0,0]]`)
	if !ok || err != nil {
		t.Fatal(ok, err)
	}
	if custom.Type != DatumParam3 || custom.Name != "D_Mine" || custom.Spheroid.EquatorialRadius != 6378000 {
		t.Errorf("custom: %# v", pretty.Formatter(custom))
	}
	if ok, err := custom.ParseEsriString(`SPHEROID["Mine",6378000.0,300.0]`); ok || err != nil {
		t.Errorf("absent tag: %v, %v", ok, err)
	}
	if _, err := custom.ParseEsriString(`DATUM["D_Mine",SPHEROID["Mine",6378000.0,300.0]`); err == nil {
		t.Error("expected an error for an unclosed clause")
	}
}
