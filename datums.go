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

import "strings"

// datumDef is one catalogued datum. Rotations in toWGS84 are in
// arc-seconds and the scale in parts per million, as written in Proj4
// strings.
type datumDef struct {
	// code is the Proj4 name. It is matched case-insensitively.
	code string

	// name is the name used in Esri well-known text.
	name        string
	description string
	ellipsoid   Ellipsoid
	datumType   DatumType
	toWGS84     []float64
	nadGrids    []string
}

var datumDefs = []datumDef{
	{code: "WGS84", name: "D_WGS_1984", description: "WGS 1984", ellipsoid: EllipsoidWGS84, datumType: DatumWGS84},
	{code: "GGRS87", name: "D_GGRS_1987", description: "Greek Geodetic Reference System 1987", ellipsoid: EllipsoidGRS80,
		datumType: DatumParam3, toWGS84: []float64{-199.87, 74.79, 246.62}},
	{code: "NAD83", name: "D_North_American_1983", description: "North American Datum 1983", ellipsoid: EllipsoidGRS80,
		datumType: DatumWGS84},
	{code: "NAD27", name: "D_North_American_1927", description: "North American Datum 1927", ellipsoid: EllipsoidClarke1866,
		datumType: DatumGridShift, nadGrids: []string{"@conus", "@alaska", "@ntv2_0.gsb", "@ntv1_can.dat"}},
	{code: "potsdam", name: "D_Potsdam", description: "Potsdam Rauenberg 1950 DHDN", ellipsoid: EllipsoidBessel,
		datumType: DatumParam3, toWGS84: []float64{606.0, 23.0, 413.0}},
	{code: "carthage", name: "D_Carthage", description: "Carthage 1934 Tunisia", ellipsoid: EllipsoidClarke1880,
		datumType: DatumParam3, toWGS84: []float64{-263.0, 6.0, 431.0}},
	{code: "hermannskogel", name: "D_Hermannskogel", description: "Hermannskogel", ellipsoid: EllipsoidBessel,
		datumType: DatumParam3, toWGS84: []float64{653.0, -212.0, 449.0}},
	{code: "ire65", name: "D_TM65", description: "Ireland 1965", ellipsoid: EllipsoidModAiry,
		datumType: DatumParam7, toWGS84: []float64{482.530, -130.596, 564.557, -1.042, -0.214, -0.631, 8.15}},
	{code: "nzgd49", name: "D_New_Zealand_1949", description: "New Zealand Geodetic Datum 1949", ellipsoid: EllipsoidInternational,
		datumType: DatumParam7, toWGS84: []float64{59.47, -5.04, 187.44, 0.47, -0.1, 1.024, -4.5993}},
	{code: "OSGB36", name: "D_OSGB_1936", description: "Airy 1830", ellipsoid: EllipsoidAiry,
		datumType: DatumParam7, toWGS84: []float64{446.448, -125.157, 542.060, 0.1502, 0.2470, 0.8421, -20.4894}},
	{code: "rassadiran", name: "D_Rassadiran", description: "Rassadiran", ellipsoid: EllipsoidInternational,
		datumType: DatumParam3, toWGS84: []float64{-133.63, -157.5, -158.62}},
	{code: "s_jtsk", name: "D_S_JTSK", description: "S-JTSK (Ferro)", ellipsoid: EllipsoidBessel,
		datumType: DatumParam3, toWGS84: []float64{589, 76, 480}},
	{code: "rnb72", name: "D_Belge_1972", description: "Reseau National Belge 1972", ellipsoid: EllipsoidInternational,
		datumType: DatumParam7, toWGS84: []float64{106.869, -52.2978, 103.724, -0.33657, 0.456955, -1.84218, 1}},
	{code: "ch1903", name: "D_CH1903", description: "swiss", ellipsoid: EllipsoidBessel,
		datumType: DatumParam3, toWGS84: []float64{674.374, 15.056, 405.346}},
	{code: "beduaram", name: "D_Beduaram", description: "Beduaram", ellipsoid: EllipsoidClarke1880,
		datumType: DatumParam3, toWGS84: []float64{-106, -87, 188}},
	{code: "gunung_segara", name: "D_Gunung_Segara", description: "Gunung Segara Jakarta", ellipsoid: EllipsoidBessel,
		datumType: DatumParam3, toWGS84: []float64{-403, 684, 41}},
}

// esriDatumAliases maps other spellings of Esri datum names, in lower
// case, to Proj4 codes.
var esriDatumAliases = map[string]string{
	"d_wgs84":                           "wgs84",
	"d_greek":                           "ggrs87",
	"d_new_zealand_geodetic_datum_1949": "nzgd49",
	"d_s_jtsk_ferro":                    "s_jtsk",
	"d_gunung_segara_jakarta":           "gunung_segara",
	"d_reseau_national_belge_1972":      "rnb72",
	"d_deutsches_hauptdreiecksnetz":     "potsdam",
}

func lookupDatumCode(code string) (*datumDef, bool) {
	for i := range datumDefs {
		if strings.EqualFold(datumDefs[i].code, code) {
			return &datumDefs[i], true
		}
	}
	return nil, false
}

func lookupDatumName(name string) (*datumDef, bool) {
	for i := range datumDefs {
		if strings.EqualFold(datumDefs[i].name, name) {
			return &datumDefs[i], true
		}
	}
	if code, ok := esriDatumAliases[strings.ToLower(name)]; ok {
		return lookupDatumCode(code)
	}
	return nil, false
}

// DatumCodes returns the Proj4 codes of the catalogued datums.
func DatumCodes() []string {
	out := make([]string, len(datumDefs))
	for i, d := range datumDefs {
		out[i] = d.code
	}
	return out
}
