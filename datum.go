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
	"strconv"
	"strings"
)

// DatumType classifies how a datum relates to WGS 84.
type DatumType int

// These are the datum classifications.
const (
	// DatumUnknown datums take no part in datum shifts.
	DatumUnknown DatumType = iota

	// DatumWGS84 datums are WGS 84 or equivalent to it.
	DatumWGS84

	// DatumParam3 datums are related to WGS 84 by a translation.
	DatumParam3

	// DatumParam7 datums are related to WGS 84 by a Helmert transform.
	DatumParam7

	// DatumGridShift datums are related to WGS 84 by correction grids.
	DatumGridShift
)

func (t DatumType) String() string {
	switch t {
	case DatumWGS84:
		return "WGS84"
	case DatumParam3:
		return "Param3"
	case DatumParam7:
		return "Param7"
	case DatumGridShift:
		return "GridShift"
	default:
		return "Unknown"
	}
}

// Datum is a geodetic reference frame.
type Datum struct {
	// Name is the name used in Esri well-known text, such as "D_WGS_1984".
	Name        string
	Description string
	Type        DatumType
	Spheroid    Spheroid

	// ToWGS84 holds the 3 translations (meters) of a DatumParam3 datum,
	// or the translations, rotations (radians) and scale factor of a
	// DatumParam7 datum.
	ToWGS84 []float64

	// NadGrids names the correction grids of a DatumGridShift datum.
	NadGrids []string
}

// NewDatum returns the WGS 84 datum.
func NewDatum() *Datum {
	d := new(Datum)
	d.SetProj4DatumName("WGS84")
	return d
}

// NewDatumFromProj4 returns the catalogued datum with the given Proj4
// code.
func NewDatumFromProj4(code string) (*Datum, error) {
	d := new(Datum)
	if !d.SetProj4DatumName(code) {
		return nil, formatErrorf("proj4", code, "unknown datum")
	}
	return d, nil
}

// Proj4DatumName returns the Proj4 code of the datum, or "" if Name is
// not a catalogued datum.
func (d *Datum) Proj4DatumName() string {
	if def, ok := lookupDatumName(d.Name); ok {
		return def.code
	}
	return ""
}

// SetProj4DatumName replaces the datum with the catalogued datum whose
// Proj4 code is code. It returns false, leaving the datum unchanged, if
// there is no such datum.
func (d *Datum) SetProj4DatumName(code string) bool {
	def, ok := lookupDatumCode(code)
	if !ok {
		return false
	}
	*d = Datum{
		Name:        def.name,
		Description: def.description,
		Type:        def.datumType,
		Spheroid:    NewSpheroidFromEllipsoid(def.ellipsoid),
	}
	switch def.datumType {
	case DatumParam3, DatumParam7:
		d.setToWGS84(def.toWGS84)
	case DatumGridShift:
		d.NadGrids = append([]string(nil), def.nadGrids...)
	}
	return true
}

// InitializeToWGS84 sets the datum parameters from the 3 or 7 values of
// a Proj4 towgs84 list: translations in meters, rotations in arc-seconds
// and scale in parts per million.
func (d *Datum) InitializeToWGS84(values []string) error {
	if len(values) != 3 && len(values) != 7 {
		return formatErrorf("proj4", strings.Join(values, ","), "towgs84 needs 3 or 7 values, not %d", len(values))
	}
	p := make([]float64, len(values))
	for i, v := range values {
		var err error
		if p[i], err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return formatErrorf("proj4", strings.Join(values, ","), "towgs84 value %d: %v", i, err)
		}
	}
	d.setToWGS84(p)
	return nil
}

// setToWGS84 sets the type and parameters from raw towgs84 values.
func (d *Datum) setToWGS84(p []float64) {
	if len(p) == 7 && (p[3] != 0 || p[4] != 0 || p[5] != 0 || p[6] != 0) {
		d.Type = DatumParam7
		d.ToWGS84 = []float64{p[0], p[1], p[2],
			p[3] * secToRad, p[4] * secToRad, p[5] * secToRad,
			1 + p[6]/1e6}
		return
	}
	d.Type = DatumParam3
	d.ToWGS84 = []float64{p[0], p[1], p[2]}
}

// rawToWGS84 returns the parameters in Proj4 units.
func (d *Datum) rawToWGS84() []float64 {
	p := append([]float64(nil), d.ToWGS84...)
	if len(p) == 7 {
		for i := 3; i < 6; i++ {
			p[i] /= secToRad
		}
		p[6] = (p[6] - 1) * 1e6
	}
	return p
}

// ToProj4String returns " +datum=<code>" for catalogued datums and the
// parameters of the datum followed by its spheroid otherwise.
func (d *Datum) ToProj4String() string {
	if code := d.Proj4DatumName(); code != "" {
		return " +datum=" + code
	}
	var s string
	switch d.Type {
	case DatumWGS84:
		s = " +towgs84=0,0,0"
	case DatumParam3, DatumParam7:
		p := d.rawToWGS84()
		v := make([]string, len(p))
		for i, x := range p {
			v[i] = formatNumber(x)
		}
		s = " +towgs84=" + strings.Join(v, ",")
	case DatumGridShift:
		s = " +nadgrids=" + strings.Join(d.NadGrids, ",")
	}
	return s + d.Spheroid.ToProj4String()
}

// Matches returns whether d and o describe the same reference frame.
// Only the fields relevant to the datum type are compared.
func (d *Datum) Matches(o *Datum) bool {
	if d.Type != o.Type {
		return false
	}
	if d.Type == DatumWGS84 {
		return true
	}
	if !d.Spheroid.Matches(o.Spheroid) {
		return false
	}
	switch d.Type {
	case DatumParam3, DatumParam7:
		if len(d.ToWGS84) != len(o.ToWGS84) {
			return false
		}
		for i, v := range d.ToWGS84 {
			if v != o.ToWGS84[i] {
				return false
			}
		}
	case DatumGridShift:
		if len(d.NadGrids) != len(o.NadGrids) {
			return false
		}
		for i, g := range d.NadGrids {
			if g != o.NadGrids[i] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of d.
func (d *Datum) Clone() *Datum {
	c := *d
	c.ToWGS84 = append([]float64(nil), d.ToWGS84...)
	c.NadGrids = append([]string(nil), d.NadGrids...)
	return &c
}

// ToEsriString returns the DATUM clause of Esri well-known text.
func (d *Datum) ToEsriString() string {
	name := d.Name
	if name == "" {
		name = "D_Unknown"
	}
	return `DATUM["` + name + `",` + d.Spheroid.ToEsriString() + "]"
}

// ParseEsriString reads the first DATUM clause of str. Catalogued datums
// are recognized by name, and an optional TOWGS84 clause sets the datum
// parameters. It returns false if there is no DATUM clause, in which
// case the datum is unchanged.
func (d *Datum) ParseEsriString(str string) (bool, error) {
	body, ok, err := esriClause(str, "DATUM")
	if !ok || err != nil {
		return ok, err
	}
	args := splitEsriArgs(body)
	name := unquote(args[0])
	*d = Datum{Name: name, Type: DatumUnknown}
	if def, ok := lookupDatumName(name); ok {
		d.SetProj4DatumName(def.code)
		// Use the canonical spelling.
		d.Name = def.name
	}
	if _, err := d.Spheroid.ParseEsriString(body); err != nil {
		return true, err
	}
	if tw, ok, err := esriClause(body, "TOWGS84"); err != nil {
		return true, err
	} else if ok {
		if err := d.InitializeToWGS84(splitEsriArgs(tw)); err != nil {
			return true, err
		}
		if d.Type == DatumParam3 && d.ToWGS84[0] == 0 && d.ToWGS84[1] == 0 && d.ToWGS84[2] == 0 {
			d.Type = DatumWGS84
		}
	}
	return true, nil
}
