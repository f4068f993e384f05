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
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// captureLog redirects Log for the duration of a test.
func captureLog(t *testing.T) *test.Hook {
	logger, hook := test.NewNullLogger()
	old := Log
	Log = logger
	t.Cleanup(func() { Log = old })
	return hook
}

func TestProj4LongLat(t *testing.T) {
	check := func(p *ProjectionInfo) {
		t.Helper()
		if !p.IsLatLon {
			t.Error("not geographic")
		}
		if have := p.GeographicInfo.Datum.Proj4DatumName(); have != "WGS84" {
			t.Errorf("datum %q", have)
		}
	}
	p, err := ParseProj4String("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	check(p)
	s := p.ToProj4String()
	if s != "+proj=longlat +datum=WGS84 +no_defs" {
		t.Errorf("serialized as %q", s)
	}
	p2, err := ParseProj4String(s)
	if err != nil {
		t.Fatal(err)
	}
	check(p2)
	if !p.Equal(p2, 0) {
		t.Errorf("round trip differs: %v", pretty.Diff(p, p2))
	}
}

func TestProj4Parameters(t *testing.T) {
	p, err := ParseProj4String("+proj=lcc +lat_1=33 +lat_2=45 +lat_0=40 +lon_0=-97 +x_0=1000 +y_0=-20 " +
		"+ellps=GRS80 +towgs84=0,0,0 +units=us-ft +pm=paris +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	want := NewProjectionInfo()
	want.Name = "lcc"
	want.IsLatLon = false
	want.StandardParallel1, want.StandardParallel2 = 33, 45
	want.LatitudeOfOrigin, want.CentralMeridian = 40, -97
	want.FalseEasting, want.FalseNorthing = 1000, -20
	want.NoDefs = true
	want.Unit = LinearUnit{Name: "Foot_US", Meters: 1200. / 3937.}
	want.GeographicInfo.Name = "GCS_Unknown"
	want.GeographicInfo.Meridian = Meridian{Name: "Paris", Longitude: 2.337229166667}
	want.GeographicInfo.Datum = Datum{Type: DatumWGS84, ToWGS84: []float64{0, 0, 0},
		Spheroid: NewSpheroidFromEllipsoid(EllipsoidGRS80)}
	if !p.Equal(want, 0) {
		t.Errorf("%v", pretty.Diff(p, want))
	}
	back, err := ParseProj4String(p.ToProj4String())
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(p, 4) {
		t.Errorf("round trip of %s: %v", p.ToProj4String(), pretty.Diff(back, p))
	}
}

func TestProj4Zone(t *testing.T) {
	p, err := ParseProj4String("+zone=10 +proj=utm +datum=NAD83 +units=m +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	if p.Zone != 10 || p.ScaleFactor != 0.9996 || p.IsLatLon || p.Name != "utm" {
		t.Errorf("%# v", pretty.Formatter(p))
	}
	p, err = ParseProj4String("+proj=utm +k=0.5 +zone=10")
	if err != nil {
		t.Fatal(err)
	}
	if p.ScaleFactor != 0.5 {
		t.Errorf("an explicit scale factor was replaced by %g", p.ScaleFactor)
	}
}

func TestProj4To(t *testing.T) {
	p, err := ParseProj4String("+proj=longlat +ellps=clrk66 +to +proj=longlat +datum=WGS84")
	if err != nil {
		t.Fatal(err)
	}
	if p.GeographicInfo.Datum.Spheroid.KnownEllipsoid != EllipsoidClarke1866 {
		t.Errorf("parameters after +to were read: %+v", p.GeographicInfo.Datum.Spheroid)
	}
	if p.GeographicInfo.Datum.Type != DatumUnknown {
		t.Errorf("an ellipsoid on its own gave a datum of type %v", p.GeographicInfo.Datum.Type)
	}
}

func TestProj4Spheroids(t *testing.T) {
	for _, test := range []struct {
		s    string
		a, b float64
	}{
		{s: "+proj=longlat +a=6378000 +b=6357000", a: 6378000, b: 6357000},
		{s: "+proj=longlat +R=6371000", a: 6371000, b: 6371000},
		{s: "+proj=longlat +a=6378000 +rf=300", a: 6378000, b: 6378000 * (1 - 1./300)},
		{s: "+proj=longlat +ellps=WGS84 +datum=potsdam", a: 6378137, b: WGS84().PolarRadius},
	} {
		p, err := ParseProj4String(test.s)
		if err != nil {
			t.Errorf("%s: %v", test.s, err)
			continue
		}
		sp := p.GeographicInfo.Datum.Spheroid
		if sp.EquatorialRadius != test.a || math.Abs(sp.PolarRadius-test.b) > 1e-9 {
			t.Errorf("%s: a=%g b=%g", test.s, sp.EquatorialRadius, sp.PolarRadius)
		}
	}
}

func TestProj4UnknownToken(t *testing.T) {
	hook := captureLog(t)
	p, err := ParseProj4String("+proj=longlat +datum=WGS84 +wktext +bogus=3")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsLatLon {
		t.Error("parsing stopped at an unknown token")
	}
	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("%d log entries, want 2", len(entries))
	}
	for i, want := range []string{"wktext", "bogus=3"} {
		if e := entries[i]; e.Level != logrus.WarnLevel || e.Data["token"] != want {
			t.Errorf("entry %d: %v %v", i, e.Level, e.Data)
		}
	}

	hook.Reset()
	p, err = ParseProj4String("+proj=longlat +datum=nonesuch")
	if err != nil {
		t.Fatal(err)
	}
	if p.GeographicInfo.Datum.Proj4DatumName() != "WGS84" {
		t.Error("an unknown datum modified the datum")
	}
	if e := hook.LastEntry(); e == nil || e.Data["datum"] != "nonesuch" {
		t.Errorf("unknown datum was not logged: %v", e)
	}

	hook.Reset()
	p, err = ParseProj4String("+proj=merc +units=furlong +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	if p.Unit.Meters != 1 || !p.NoDefs {
		t.Errorf("unit %+v after an unknown unit", p.Unit)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel || e.Data["units"] != "furlong" {
		t.Errorf("unknown unit was not logged: %v", e)
	}
}

func TestProj4Errors(t *testing.T) {
	for _, s := range []string{
		"+proj=longlat +lat_0=abc",
		"+proj=longlat +ellps=nonesuch",
		"+proj=longlat +towgs84=1,2",
		"+proj=utm +zone=ten",
		"+proj=longlat +pm=atlantis",
		"+datum=WGS84",
	} {
		_, err := ParseProj4String(s)
		if _, ok := err.(*FormatError); !ok {
			t.Errorf("%s: error %v", s, err)
		}
	}
}

func TestProj4NadGrids(t *testing.T) {
	p, err := ParseProj4String("+proj=longlat +ellps=clrk66 +nadgrids=@conus,@alaska +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	d := p.GeographicInfo.Datum
	if d.Type != DatumGridShift || len(d.NadGrids) != 2 || d.NadGrids[1] != "@alaska" {
		t.Errorf("%# v", pretty.Formatter(d))
	}
	if have, want := p.ToProj4String(), "+proj=longlat +nadgrids=@conus,@alaska +ellps=clrk66 +no_defs"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}
