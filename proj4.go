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

	"gonum.org/v1/gonum/floats"
)

// primeMeridians holds the Proj4 prime meridian names and their
// longitudes in degrees.
var primeMeridians = []struct {
	code, name string
	lon        float64
}{
	{"greenwich", "Greenwich", 0},
	{"lisbon", "Lisbon", -9.131906111111},
	{"paris", "Paris", 2.337229166667},
	{"bogota", "Bogota", -74.080916666667},
	{"madrid", "Madrid", -3.687938888889},
	{"rome", "Rome", 12.452333333333},
	{"bern", "Bern", 7.439583333333},
	{"jakarta", "Jakarta", 106.807719444444},
	{"ferro", "Ferro", -17.666666666667},
	{"brussels", "Brussels", 4.367975},
	{"stockholm", "Stockholm", 18.058277777778},
	{"athens", "Athens", 23.7163375},
	{"oslo", "Oslo", 10.722916666667},
}

// linearUnits holds the Proj4 unit codes with their Esri names.
var linearUnits = []linearUnit{
	{"m", "Meter", 1},
	{"km", "Kilometer", 1000},
	{"dm", "Decimeter", 0.1},
	{"cm", "Centimeter", 0.01},
	{"mm", "Millimeter", 0.001},
	{"ft", "Foot", 0.3048},
	{"us-ft", "Foot_US", 1200. / 3937.},
	{"yd", "Yard", 0.9144},
	{"us-yd", "Yard_US", 3600. / 3937.},
	{"mi", "Mile", 1609.344},
	{"us-mi", "Mile_US", 6336000. / 3937.},
	{"kmi", "Nautical_Mile", 1852},
	{"fath", "Fathom", 1.8288},
	{"ch", "Chain", 20.1168},
	{"link", "Link", 0.201168},
}

type linearUnit struct {
	code, name string
	meters     float64
}

// unitFor returns the catalogued unit of the given length, allowing for
// the rounding of lengths in Esri well-known text.
func unitFor(meters float64) (linearUnit, bool) {
	for _, u := range linearUnits {
		if floats.EqualWithinRel(u.meters, meters, 1e-12) {
			return u, true
		}
	}
	return linearUnit{}, false
}

func isLatLonName(name string) bool {
	switch name {
	case "longlat", "latlong", "lonlat", "latlon":
		return true
	}
	return false
}

// ParseProj4String reads a coordinate reference system from a Proj4
// parameter string such as "+proj=utm +zone=10 +datum=NAD83 +units=m".
// Unsupported parameters are logged and skipped. A bare +to parameter
// ends the definition.
func ParseProj4String(str string) (*ProjectionInfo, error) {
	p := NewProjectionInfo()
	p.Name = ""
	d := &p.GeographicInfo.Datum
	nan := math.NaN()
	a, b, rf := nan, nan, nan
	var datumSet, ellpsSet bool
	for i, tok := range strings.Split(str, "+") {
		if i == 0 {
			continue // skip everything to the left of the first +
		}
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		kv := strings.SplitN(tok, "=", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := ""
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		if key == "to" {
			break
		}
		var err error
		num := func() float64 {
			var v float64
			if v, err = strconv.ParseFloat(val, 64); err != nil {
				err = formatErrorf("proj4", str, "+%s: %v", key, err)
			}
			return v
		}
		switch key {
		case "proj":
			p.Name = val
			p.IsLatLon = isLatLonName(val)
		case "title":
			p.Title = val
		case "x_0":
			p.FalseEasting = num()
		case "y_0":
			p.FalseNorthing = num()
		case "k", "k_0":
			p.ScaleFactor = num()
		case "lat_0":
			p.LatitudeOfOrigin = num()
		case "lon_0":
			p.CentralMeridian = num()
		case "lat_1":
			p.StandardParallel1 = num()
		case "lat_2":
			p.StandardParallel2 = num()
		case "lat_ts":
			p.LatitudeOfTrueScale = num()
		case "alpha":
			p.Alpha = num()
		case "lonc":
			p.LongitudeOfCenter = num()
		case "zone":
			var z int64
			if z, err = strconv.ParseInt(val, 10, 0); err != nil {
				err = formatErrorf("proj4", str, "+zone: %v", err)
			}
			p.Zone = int(z)
			if math.IsNaN(p.ScaleFactor) {
				p.ScaleFactor = 0.9996
			}
		case "over":
			p.Over = true
		case "geoc":
			p.Geoc = true
		case "south":
			p.IsSouth = true
		case "no_defs":
			p.NoDefs = true
		case "to_meter":
			p.Unit = LinearUnit{Name: "Custom", Meters: num()}
			if u, ok := unitFor(p.Unit.Meters); ok {
				p.Unit.Name = u.name
			}
		case "units":
			found := false
			for _, u := range linearUnits {
				if u.code == val {
					p.Unit = LinearUnit{Name: u.name, Meters: u.meters}
					found = true
				}
			}
			if !found {
				Log.WithField("units", val).Warn("crs: unknown proj4 unit")
			}
		case "pm":
			p.GeographicInfo.Meridian, err = parseMeridian(str, val)
		case "datum":
			sp := d.Spheroid
			if !d.SetProj4DatumName(val) {
				Log.WithField("datum", val).Warn("crs: unknown proj4 datum")
				break
			}
			datumSet = true
			if ellpsSet {
				d.Spheroid = sp
			}
		case "nadgrids":
			d.Name = ""
			d.Type = DatumGridShift
			d.ToWGS84 = nil
			d.NadGrids = nil
			for _, g := range strings.Split(val, ",") {
				if g = strings.TrimSpace(g); g != "" {
					d.NadGrids = append(d.NadGrids, g)
				}
			}
			datumSet = true
		case "towgs84":
			d.Name = ""
			d.NadGrids = nil
			err = d.InitializeToWGS84(strings.Split(val, ","))
			if err == nil && d.Type == DatumParam3 && d.ToWGS84[0] == 0 && d.ToWGS84[1] == 0 && d.ToWGS84[2] == 0 {
				d.Type = DatumWGS84
			}
			datumSet = true
		case "ellps":
			var s Spheroid
			if s, err = NewSpheroidFromProj4(val); err != nil {
				err = formatErrorf("proj4", str, "unknown ellipsoid %q", val)
				break
			}
			d.Spheroid = s
			ellpsSet = true
		case "a", "r":
			a = num()
		case "b":
			b = num()
		case "rf":
			rf = num()
		default:
			Log.WithField("token", tok).Warn("crs: unsupported proj4 parameter")
		}
		if err != nil {
			return nil, err
		}
	}
	if p.Name == "" {
		return nil, formatErrorf("proj4", str, "no +proj parameter")
	}

	switch {
	case !math.IsNaN(a) && !math.IsNaN(b):
		d.Spheroid = NewSpheroidFromRadii(a, b)
	case !math.IsNaN(a) && !math.IsNaN(rf):
		d.Spheroid = NewSpheroid(a, rf)
	case !math.IsNaN(a):
		d.Spheroid = NewSphere(a)
	case !math.IsNaN(rf):
		d.Spheroid.SetInverseFlattening(rf)
		d.Spheroid.KnownEllipsoid = EllipsoidCustom
		d.Spheroid.Code = ""
	case !math.IsNaN(b):
		d.Spheroid.PolarRadius = b
		d.Spheroid.KnownEllipsoid = EllipsoidCustom
		d.Spheroid.Code = ""
	}
	spheroidSet := ellpsSet || !math.IsNaN(a) || !math.IsNaN(b) || !math.IsNaN(rf)
	if spheroidSet && !datumSet {
		// An ellipsoid alone does not tie the system to a datum.
		d.Name = ""
		d.Description = ""
		d.Type = DatumUnknown
		d.ToWGS84 = nil
		d.NadGrids = nil
	}
	p.GeographicInfo.Name = geogcsName(d)
	if p.Title == "" && p.IsLatLon {
		p.Title = p.GeographicInfo.Name
	}
	return p, nil
}

func parseMeridian(str, val string) (Meridian, error) {
	for _, pm := range primeMeridians {
		if strings.EqualFold(pm.code, val) {
			return Meridian{Name: pm.name, Longitude: pm.lon}, nil
		}
	}
	lon, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return Meridian{}, formatErrorf("proj4", str, "+pm: unknown prime meridian %q", val)
	}
	return Meridian{Name: "Custom", Longitude: lon}, nil
}

// ToProj4String returns p as a Proj4 parameter string.
func (p *ProjectionInfo) ToProj4String() string {
	var b strings.Builder
	b.WriteString("+proj=" + p.Name)
	param := func(key string, v float64) {
		if !math.IsNaN(v) {
			b.WriteString(" +" + key + "=" + formatNumber(v))
		}
	}
	param("lat_0", p.LatitudeOfOrigin)
	param("lon_0", p.CentralMeridian)
	param("lat_1", p.StandardParallel1)
	param("lat_2", p.StandardParallel2)
	param("lat_ts", p.LatitudeOfTrueScale)
	param("alpha", p.Alpha)
	param("lonc", p.LongitudeOfCenter)
	param("k", p.ScaleFactor)
	param("x_0", p.FalseEasting)
	param("y_0", p.FalseNorthing)
	if p.Zone != 0 {
		b.WriteString(" +zone=" + strconv.Itoa(p.Zone))
	}
	if p.IsSouth {
		b.WriteString(" +south")
	}

	d := &p.GeographicInfo.Datum
	b.WriteString(d.ToProj4String())
	if def, ok := lookupDatumName(d.Name); ok && !d.Spheroid.Matches(NewSpheroidFromEllipsoid(def.ellipsoid)) {
		b.WriteString(d.Spheroid.ToProj4String())
	}
	if m := p.GeographicInfo.Meridian; m.Longitude != 0 {
		pm := formatNumber(m.Longitude)
		for _, known := range primeMeridians {
			if known.lon == m.Longitude {
				pm = known.code
			}
		}
		b.WriteString(" +pm=" + pm)
	}
	if !p.IsLatLon {
		if u, ok := unitFor(p.Unit.Meters); ok {
			b.WriteString(" +units=" + u.code)
		} else {
			b.WriteString(" +to_meter=" + formatNumber(p.Unit.Meters))
		}
	}
	if p.Over {
		b.WriteString(" +over")
	}
	if p.Geoc {
		b.WriteString(" +geoc")
	}
	if p.NoDefs {
		b.WriteString(" +no_defs")
	}
	return b.String()
}
