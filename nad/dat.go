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
	"context"
	"encoding/binary"
	"math"
)

// headerSize is the length of NTv1 headers and of NTv2 overview and
// sub-grid headers: eleven 16-byte records.
const headerSize = 176

// NTv1 header value offsets. Each record is an 8-byte label followed by
// an 8-byte value. Longitudes are positive west.
const (
	datSouthLat = 24
	datNorthLat = 40
	datEastLon  = 56
	datWestLon  = 72
	datLatInc   = 88
	datLonInc   = 104
)

// datNodeSize is the size of one NTv1 node: latitude and longitude
// shifts as doubles.
const datNodeSize = 16

// datReader reads NTv1 grids. All values are big-endian; header values
// are in degrees and shifts in arc-seconds.
type datReader struct{}

func float64At(bo binary.ByteOrder, b []byte, off int) float64 {
	return math.Float64frombits(bo.Uint64(b[off:]))
}

func float32At(bo binary.ByteOrder, b []byte, off int) float64 {
	return float64(math.Float32frombits(bo.Uint32(b[off:])))
}

// nodeCount returns the number of grid nodes between lo and hi.
func nodeCount(lo, hi, inc float64) int {
	return int(math.Abs(hi-lo)/inc+0.5) + 1
}

func (datReader) readHeader(ctx context.Context, t *Table) error {
	b, err := readRange(ctx, t.source, t.location, 0, headerSize)
	if err != nil {
		return err
	}
	bo := binary.BigEndian
	ll := PhiLam{Phi: float64At(bo, b, datSouthLat), Lambda: -float64At(bo, b, datWestLon)}
	ur := PhiLam{Phi: float64At(bo, b, datNorthLat), Lambda: -float64At(bo, b, datEastLon)}
	cs := PhiLam{Phi: float64At(bo, b, datLatInc), Lambda: float64At(bo, b, datLonInc)}
	if !(cs.Phi > 0 && cs.Lambda > 0) {
		return &FormatError{Grid: t.location, Msg: "cell size must be positive"}
	}
	t.NumLambdas = nodeCount(ll.Lambda, ur.Lambda, cs.Lambda)
	t.NumPhis = nodeCount(ll.Phi, ur.Phi, cs.Phi)
	t.LowerLeft = PhiLam{Phi: ll.Phi * degToRad, Lambda: ll.Lambda * degToRad}
	t.CellSize = PhiLam{Phi: cs.Phi * degToRad, Lambda: cs.Lambda * degToRad}
	t.offset = headerSize
	return t.checkCounts()
}

func (datReader) fillData(ctx context.Context, t *Table) error {
	b, err := readRange(ctx, t.source, t.location, t.offset, int64(t.NumPhis*t.NumLambdas*datNodeSize))
	if err != nil {
		return err
	}
	t.Cells = readNodes(b, binary.BigEndian, t.NumPhis, t.NumLambdas, datNodeSize, float64At, 8)
	return nil
}

// readNodes decodes rows of nodes stored east to west, so that columns are
// reversed relative to the table's west to east ordering. Each node starts
// with the latitude shift followed by the longitude shift, both in
// arc-seconds, each width bytes wide.
func readNodes(b []byte, bo binary.ByteOrder, numPhis, numLambdas, nodeSize int,
	value func(binary.ByteOrder, []byte, int) float64, width int) [][]PhiLam {
	cells := make([][]PhiLam, numPhis)
	pos := 0
	for row := 0; row < numPhis; row++ {
		cells[row] = make([]PhiLam, numLambdas)
		for i := 0; i < numLambdas; i++ {
			cells[row][numLambdas-i-1] = PhiLam{
				Phi:    value(bo, b, pos) * SecToRad,
				Lambda: value(bo, b, pos+width) * SecToRad,
			}
			pos += nodeSize
		}
	}
	return cells
}
