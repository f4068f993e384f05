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

// Ellipsoid identifies one of the catalogued reference ellipsoids.
type Ellipsoid int

// These are the catalogued ellipsoids. EllipsoidCustom marks a spheroid
// whose radii were given explicitly.
const (
	EllipsoidCustom Ellipsoid = iota
	EllipsoidMERIT
	EllipsoidSGS85
	EllipsoidGRS80
	EllipsoidIAU76
	EllipsoidAiry
	EllipsoidAPL4
	EllipsoidNWL9D
	EllipsoidModAiry
	EllipsoidAndrae
	EllipsoidAustSA
	EllipsoidGRS67
	EllipsoidBessel
	EllipsoidBesselNamibia
	EllipsoidClarke1866
	EllipsoidClarke1880
	EllipsoidClarke1880IGN
	EllipsoidClarke1858
	EllipsoidCPM
	EllipsoidDelambre
	EllipsoidEngelis
	EllipsoidEverest1830
	EllipsoidEverest1948
	EllipsoidEverest1956
	EllipsoidEverest1969
	EllipsoidEverestSS
	EllipsoidFischer1960
	EllipsoidFischer1960Mod
	EllipsoidFischer1968
	EllipsoidHelmert
	EllipsoidHough
	EllipsoidInternational
	EllipsoidKaula
	EllipsoidLerch
	EllipsoidMaupertius
	EllipsoidNewInternational
	EllipsoidPlessis
	EllipsoidKrassovsky
	EllipsoidSoutheastAsia
	EllipsoidWalbeck
	EllipsoidWGS60
	EllipsoidWGS66
	EllipsoidWGS72
	EllipsoidWGS84
	EllipsoidPZ90
	EllipsoidGSK2011
	EllipsoidSphere
	numEllipsoids
)

// ellipsoidDef holds the defining dimensions of an ellipsoid: the
// semi-major axis and either the semi-minor axis b or the inverse
// flattening rf.
type ellipsoidDef struct {
	code, name, esri string
	a, b, rf         float64
}

// ellipsoidDefs is indexed by Ellipsoid.
var ellipsoidDefs = [numEllipsoids]ellipsoidDef{
	EllipsoidCustom:           {code: "", name: "Custom", esri: "Custom"},
	EllipsoidMERIT:            {code: "MERIT", name: "MERIT 1983", esri: "MERIT_1983", a: 6378137.0, rf: 298.257},
	EllipsoidSGS85:            {code: "SGS85", name: "Soviet Geodetic System 85", esri: "Soviet_Geodetic_System_1985", a: 6378136.0, rf: 298.257},
	EllipsoidGRS80:            {code: "GRS80", name: "GRS 1980(IUGG, 1980)", esri: "GRS_1980", a: 6378137.0, rf: 298.257222101},
	EllipsoidIAU76:            {code: "IAU76", name: "IAU 1976", esri: "IAU_1976", a: 6378140.0, rf: 298.257},
	EllipsoidAiry:             {code: "airy", name: "Airy 1830", esri: "Airy_1830", a: 6377563.396, b: 6356256.910},
	EllipsoidAPL4:             {code: "APL4.9", name: "Appl. Physics. 1965", esri: "Applied_Physics_1965", a: 6378137.0, rf: 298.25},
	EllipsoidNWL9D:            {code: "NWL9D", name: "Naval Weapons Lab., 1965", esri: "NWL_9D", a: 6378145.0, rf: 298.25},
	EllipsoidModAiry:          {code: "mod_airy", name: "Modified Airy", esri: "Airy_Modified", a: 6377340.189, b: 6356034.446},
	EllipsoidAndrae:           {code: "andrae", name: "Andrae 1876 (Den., Iclnd.)", esri: "Andrae_1876", a: 6377104.43, rf: 300.0},
	EllipsoidAustSA:           {code: "aust_SA", name: "Australian Natl & S. Amer. 1969", esri: "Australian", a: 6378160.0, rf: 298.25},
	EllipsoidGRS67:            {code: "GRS67", name: "GRS 67(IUGG 1967)", esri: "GRS_1967", a: 6378160.0, rf: 298.2471674270},
	EllipsoidBessel:           {code: "bessel", name: "Bessel 1841", esri: "Bessel_1841", a: 6377397.155, rf: 299.1528128},
	EllipsoidBesselNamibia:    {code: "bess_nam", name: "Bessel 1841 (Namibia)", esri: "Bessel_Namibia", a: 6377483.865, rf: 299.1528128},
	EllipsoidClarke1866:       {code: "clrk66", name: "Clarke 1866", esri: "Clarke_1866", a: 6378206.4, b: 6356583.8},
	EllipsoidClarke1880:       {code: "clrk80", name: "Clarke 1880 mod.", esri: "Clarke_1880_RGS", a: 6378249.145, rf: 293.4663},
	EllipsoidClarke1880IGN:    {code: "clrk80ign", name: "Clarke 1880 (IGN)", esri: "Clarke_1880_IGN", a: 6378249.2, b: 6356515.0},
	EllipsoidClarke1858:       {code: "clrk58", name: "Clarke 1858", esri: "Clarke_1858", a: 6378293.645208759, rf: 294.2606763692654},
	EllipsoidCPM:              {code: "CPM", name: "Comm. des Poids et Mesures 1799", esri: "Comm_des_Poids_et_Mesures_1799", a: 6375738.7, rf: 334.29},
	EllipsoidDelambre:         {code: "delmbr", name: "Delambre 1810 (Belgium)", esri: "Delambre_1810", a: 6376428.0, rf: 311.5},
	EllipsoidEngelis:          {code: "engelis", name: "Engelis 1985", esri: "Engelis_1985", a: 6378136.05, rf: 298.2566},
	EllipsoidEverest1830:      {code: "evrst30", name: "Everest 1830", esri: "Everest_1830", a: 6377276.345, rf: 300.8017},
	EllipsoidEverest1948:      {code: "evrst48", name: "Everest 1948", esri: "Everest_Modified", a: 6377304.063, rf: 300.8017},
	EllipsoidEverest1956:      {code: "evrst56", name: "Everest 1956", esri: "Everest_1956", a: 6377301.243, rf: 300.8017},
	EllipsoidEverest1969:      {code: "evrst69", name: "Everest 1969", esri: "Everest_Modified_1969", a: 6377295.664, rf: 300.8017},
	EllipsoidEverestSS:        {code: "evrstSS", name: "Everest (Sabah & Sarawak)", esri: "Everest_Sabah_Sarawak", a: 6377298.556, rf: 300.8017},
	EllipsoidFischer1960:      {code: "fschr60", name: "Fischer (Mercury Datum) 1960", esri: "Fischer_1960", a: 6378166.0, rf: 298.3},
	EllipsoidFischer1960Mod:   {code: "fschr60m", name: "Fischer 1960", esri: "Fischer_Modified", a: 6378155.0, rf: 298.3},
	EllipsoidFischer1968:      {code: "fschr68", name: "Fischer 1968", esri: "Fischer_1968", a: 6378150.0, rf: 298.3},
	EllipsoidHelmert:          {code: "helmert", name: "Helmert 1906", esri: "Helmert_1906", a: 6378200.0, rf: 298.3},
	EllipsoidHough:            {code: "hough", name: "Hough", esri: "Hough_1960", a: 6378270.0, rf: 297.0},
	EllipsoidInternational:    {code: "intl", name: "International 1909 (Hayford)", esri: "International_1924", a: 6378388.0, rf: 297.0},
	EllipsoidKaula:            {code: "kaula", name: "Kaula 1961", esri: "Kaula_1961", a: 6378163.0, rf: 298.24},
	EllipsoidLerch:            {code: "lerch", name: "Lerch 1979", esri: "Lerch_1979", a: 6378139.0, rf: 298.257},
	EllipsoidMaupertius:       {code: "mprts", name: "Maupertius 1738", esri: "Maupertius_1738", a: 6397300.0, rf: 191.0},
	EllipsoidNewInternational: {code: "new_intl", name: "New International 1967", esri: "New_International_1967", a: 6378157.5, b: 6356772.2},
	EllipsoidPlessis:          {code: "plessis", name: "Plessis 1817 (France)", esri: "Plessis_1817", a: 6376523.0, b: 6355863.0},
	EllipsoidKrassovsky:       {code: "krass", name: "Krassovsky, 1942", esri: "Krasovsky_1940", a: 6378245.0, rf: 298.3},
	EllipsoidSoutheastAsia:    {code: "SEasia", name: "Southeast Asia", esri: "Southeast_Asia", a: 6378155.0, b: 6356773.3205},
	EllipsoidWalbeck:          {code: "walbeck", name: "Walbeck", esri: "Walbeck", a: 6376896.0, b: 6355834.8467},
	EllipsoidWGS60:            {code: "WGS60", name: "WGS 60", esri: "WGS_1960", a: 6378165.0, rf: 298.3},
	EllipsoidWGS66:            {code: "WGS66", name: "WGS 66", esri: "WGS_1966", a: 6378145.0, rf: 298.25},
	EllipsoidWGS72:            {code: "WGS72", name: "WGS 72", esri: "WGS_1972", a: 6378135.0, rf: 298.26},
	EllipsoidWGS84:            {code: "WGS84", name: "WGS 84", esri: "WGS_1984", a: 6378137.0, rf: 298.257223563},
	EllipsoidPZ90:             {code: "PZ90", name: "PZ-90", esri: "PZ_1990", a: 6378136.0, rf: 298.257839303},
	EllipsoidGSK2011:          {code: "GSK2011", name: "GSK-2011", esri: "GSK_2011", a: 6378136.5, rf: 298.2564151},
	EllipsoidSphere:           {code: "sphere", name: "Normal Sphere (r=6370997)", esri: "Sphere", a: 6370997.0, b: 6370997.0},
}

// Code returns the Proj4 code of the ellipsoid, or "" for EllipsoidCustom.
func (e Ellipsoid) Code() string { return e.def().code }

// Esri returns the name used for the ellipsoid in Esri well-known text.
func (e Ellipsoid) Esri() string { return e.def().esri }

func (e Ellipsoid) String() string { return e.def().name }

func (e Ellipsoid) def() ellipsoidDef {
	if e < 0 || e >= numEllipsoids {
		return ellipsoidDefs[EllipsoidCustom]
	}
	return ellipsoidDefs[e]
}

// Ellipsoids returns every catalogued ellipsoid.
func Ellipsoids() []Ellipsoid {
	out := make([]Ellipsoid, 0, numEllipsoids-1)
	for e := EllipsoidCustom + 1; e < numEllipsoids; e++ {
		out = append(out, e)
	}
	return out
}

// LookupEllipsoid returns the ellipsoid with the given Proj4 code. Codes
// are matched case-insensitively.
func LookupEllipsoid(code string) (Ellipsoid, bool) {
	for e := EllipsoidCustom + 1; e < numEllipsoids; e++ {
		if strings.EqualFold(ellipsoidDefs[e].code, code) {
			return e, true
		}
	}
	return EllipsoidCustom, false
}

// lookupEsriEllipsoid matches name against the Esri names, the Proj4
// codes and the descriptive names of the catalog. Spaces and
// underscores are interchangeable.
func lookupEsriEllipsoid(name string) (Ellipsoid, bool) {
	norm := func(s string) string { return strings.ToLower(strings.Replace(s, " ", "_", -1)) }
	n := norm(name)
	for e := EllipsoidCustom + 1; e < numEllipsoids; e++ {
		d := ellipsoidDefs[e]
		if n == norm(d.esri) || n == norm(d.code) || n == norm(d.name) {
			return e, true
		}
	}
	return EllipsoidCustom, false
}
