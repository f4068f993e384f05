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

package nad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// shiftFunc returns the latitude and longitude shifts, in arc-seconds,
// of the node at the given row and column.
type shiftFunc func(row, col int) (phi, lam float64)

// record writes a 16-byte header record: an 8-byte label and a value.
func record(buf *bytes.Buffer, bo binary.ByteOrder, label string, v interface{}) {
	l := make([]byte, 8)
	copy(l, label)
	buf.Write(l)
	switch x := v.(type) {
	case float64:
		binary.Write(buf, bo, x)
	case int32:
		binary.Write(buf, bo, x)
		buf.Write(make([]byte, 4))
	case string:
		s := make([]byte, 8)
		copy(s, x)
		buf.Write(s)
	default:
		panic(fmt.Sprintf("unsupported record type %T", v))
	}
}

// datFixture builds an NTv1 grid with its lower left node at (lat0, lon0)
// degrees.
func datFixture(lat0, lon0, dLat, dLon float64, nPhi, nLam int, f shiftFunc) []byte {
	bo := binary.BigEndian
	buf := new(bytes.Buffer)
	record(buf, bo, "NUM_OREC", int32(12))
	record(buf, bo, "S_LAT", lat0)
	record(buf, bo, "N_LAT", lat0+float64(nPhi-1)*dLat)
	record(buf, bo, "E_LONG", -(lon0 + float64(nLam-1)*dLon))
	record(buf, bo, "W_LONG", -lon0)
	record(buf, bo, "LAT_INC", dLat)
	record(buf, bo, "LONG_INC", dLon)
	record(buf, bo, "GS_TYPE", "SECONDS")
	record(buf, bo, "VERSION", "NTv1")
	record(buf, bo, "SYSTEM_F", "NAD27")
	record(buf, bo, "SYSTEM_T", "NAD83")
	for row := 0; row < nPhi; row++ {
		for i := 0; i < nLam; i++ {
			phi, lam := f(row, nLam-i-1)
			binary.Write(buf, bo, phi)
			binary.Write(buf, bo, lam)
		}
	}
	return buf.Bytes()
}

// gsbSub describes one NTv2 sub-grid in degrees.
type gsbSub struct {
	name, parent string
	lat0, lon0   float64
	inc          float64
	nPhi, nLam   int
	f            shiftFunc
}

// gsbFixture builds an NTv2 grid holding the given sub-grids.
func gsbFixture(bo binary.ByteOrder, subs ...gsbSub) []byte {
	const sec = 3600
	buf := new(bytes.Buffer)
	record(buf, bo, "NUM_OREC", int32(11))
	record(buf, bo, "NUM_SREC", int32(11))
	record(buf, bo, "NUM_FILE", int32(len(subs)))
	record(buf, bo, "GS_TYPE", "SECONDS")
	record(buf, bo, "VERSION", "NTv2.0")
	record(buf, bo, "SYSTEM_F", "NAD27")
	record(buf, bo, "SYSTEM_T", "NAD83")
	record(buf, bo, "MAJOR_F", 6378206.4)
	record(buf, bo, "MINOR_F", 6356583.8)
	record(buf, bo, "MAJOR_T", 6378137.0)
	record(buf, bo, "MINOR_T", 6356752.314)
	for _, s := range subs {
		record(buf, bo, "SUB_NAME", s.name)
		record(buf, bo, "PARENT", s.parent)
		record(buf, bo, "CREATED", "")
		record(buf, bo, "UPDATED", "")
		record(buf, bo, "S_LAT", s.lat0*sec)
		record(buf, bo, "N_LAT", (s.lat0+float64(s.nPhi-1)*s.inc)*sec)
		record(buf, bo, "E_LONG", -(s.lon0+float64(s.nLam-1)*s.inc)*sec)
		record(buf, bo, "W_LONG", -s.lon0*sec)
		record(buf, bo, "LAT_INC", s.inc*sec)
		record(buf, bo, "LONG_INC", s.inc*sec)
		record(buf, bo, "GS_COUNT", int32(s.nPhi*s.nLam))
		for row := 0; row < s.nPhi; row++ {
			for i := 0; i < s.nLam; i++ {
				phi, lam := s.f(row, s.nLam-i-1)
				binary.Write(buf, bo, float32(phi))
				binary.Write(buf, bo, float32(lam))
				binary.Write(buf, bo, float32(0))
				binary.Write(buf, bo, float32(0))
			}
		}
	}
	return buf.Bytes()
}

// llaFixture builds a text grid. Shifts are given in micro-arc-seconds
// and written as differences along each row.
func llaFixture(name string, lat0, lon0, dLat, dLon float64, nPhi, nLam int, f func(row, col int) (phi, lam int64)) []byte {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s\n", name)
	fmt.Fprintf(buf, "%d %d 1 %g %g %g %g\n", nLam, nPhi, lon0, dLon, lat0, dLat)
	for row := 0; row < nPhi; row++ {
		fmt.Fprintf(buf, "%d:", row)
		var prevPhi, prevLam int64
		for col := 0; col < nLam; col++ {
			phi, lam := f(row, col)
			fmt.Fprintf(buf, " %d %d,", lam-prevLam, phi-prevPhi)
			prevPhi, prevLam = phi, lam
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// lasLosFixture builds a NADCON pair. Every node of the .las file holds
// las and every node of the .los file holds los. nLam must be at least
// 23 so that the header fits in the first record.
func lasLosFixture(lat0, lon0, dLat, dLon float64, nPhi, nLam int, las, los float32) (latFile, lonFile []byte) {
	build := func(v float32) []byte {
		bo := binary.LittleEndian
		recLen := (nLam + 1) * 4
		b := make([]byte, recLen*(nPhi+1))
		copy(b, "NADCON EXTRACTED REGION")
		copy(b[56:], "NADGRD  ")
		bo.PutUint32(b[lasNumCols:], uint32(nLam))
		bo.PutUint32(b[lasNumRows:], uint32(nPhi))
		bo.PutUint32(b[lasNumZ:], 1)
		bo.PutUint32(b[lasMinLon:], math.Float32bits(float32(lon0)))
		bo.PutUint32(b[lasLonInc:], math.Float32bits(float32(dLon)))
		bo.PutUint32(b[lasMinLat:], math.Float32bits(float32(lat0)))
		bo.PutUint32(b[lasLatInc:], math.Float32bits(float32(dLat)))
		for row := 0; row < nPhi; row++ {
			start := (row + 1) * recLen
			for col := 0; col < nLam; col++ {
				bo.PutUint32(b[start+4+col*4:], math.Float32bits(v))
			}
		}
		return b
	}
	return build(las), build(los)
}

var binaryLE = binary.LittleEndian

func floatsNear(a, b, tol float64) bool { return math.Abs(a-b) <= tol }
