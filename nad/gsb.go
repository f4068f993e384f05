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
	"fmt"
	"strings"
)

// NTv2 overview header offsets.
const (
	gsbNumORec   = 8
	gsbNumSubGrd = 40
)

// NTv2 sub-grid header offsets. Values are in arc-seconds and longitudes
// are positive west.
const (
	gsbSubName  = 8
	gsbParent   = 24
	gsbSouthLat = 72
	gsbNorthLat = 88
	gsbEastLon  = 104
	gsbWestLon  = 120
	gsbLatInc   = 136
	gsbLonInc   = 152
	gsbCount    = 168
)

// gsbNodeSize is the size of one NTv2 node: latitude shift, longitude
// shift and their two accuracies as float32.
const gsbNodeSize = 16

// gsbReader reads NTv2 grids. The overview header holds the number of
// sub-grids, and each sub-grid header follows the previous sub-grid's data.
type gsbReader struct {
	bo binary.ByteOrder
}

// gsbByteOrder detects the byte order of an NTv2 file from the overview
// record count, which is always 11. Files that do not say otherwise are
// read as big-endian.
func gsbByteOrder(b []byte) binary.ByteOrder {
	if binary.LittleEndian.Uint32(b[gsbNumORec:]) == 11 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (r gsbReader) readHeader(ctx context.Context, t *Table) error {
	if r.bo != nil {
		return r.readSubHeader(ctx, t)
	}
	b, err := readRange(ctx, t.source, t.location, 0, headerSize)
	if err != nil {
		return err
	}
	bo := gsbByteOrder(b)
	n := int(int32(bo.Uint32(b[gsbNumSubGrd:])))
	if n < 1 {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("invalid sub-grid count %d", n)}
	}
	offset := int64(headerSize)
	subs := make([]*Table, 0, n)
	for i := 0; i < n; i++ {
		sub := &Table{
			Format:   FormatGsb,
			source:   t.source,
			location: t.location,
			offset:   offset,
			reader:   gsbReader{bo: bo},
		}
		if err := sub.reader.readHeader(ctx, sub); err != nil {
			return err
		}
		sub.extent = sub.cellExtent()
		sub.headerRead = true
		subs = append(subs, sub)
		offset += headerSize + int64(sub.NumPhis*sub.NumLambdas*gsbNodeSize)
	}
	t.setSubGrids(subs)
	return nil
}

func (r gsbReader) readSubHeader(ctx context.Context, t *Table) error {
	b, err := readRange(ctx, t.source, t.location, t.offset, headerSize)
	if err != nil {
		return err
	}
	bo := r.bo
	t.Name = strings.TrimSpace(string(b[gsbSubName : gsbSubName+8]))
	t.Parent = strings.TrimSpace(string(b[gsbParent : gsbParent+8]))
	ll := PhiLam{Phi: float64At(bo, b, gsbSouthLat), Lambda: -float64At(bo, b, gsbWestLon)}
	ur := PhiLam{Phi: float64At(bo, b, gsbNorthLat), Lambda: -float64At(bo, b, gsbEastLon)}
	cs := PhiLam{Phi: float64At(bo, b, gsbLatInc), Lambda: float64At(bo, b, gsbLonInc)}
	if !(cs.Phi > 0 && cs.Lambda > 0) {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("sub-grid %s: cell size must be positive", t.Name)}
	}
	t.NumLambdas = nodeCount(ll.Lambda, ur.Lambda, cs.Lambda)
	t.NumPhis = nodeCount(ll.Phi, ur.Phi, cs.Phi)
	t.LowerLeft = PhiLam{Phi: ll.Phi * SecToRad, Lambda: ll.Lambda * SecToRad}
	t.CellSize = PhiLam{Phi: cs.Phi * SecToRad, Lambda: cs.Lambda * SecToRad}
	if err := t.checkCounts(); err != nil {
		return err
	}
	if count := int(int32(bo.Uint32(b[gsbCount:]))); count != t.NumPhis*t.NumLambdas {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("sub-grid %s: node count %d does not match %d x %d",
			t.Name, count, t.NumPhis, t.NumLambdas)}
	}
	return nil
}

func (r gsbReader) fillData(ctx context.Context, t *Table) error {
	if r.bo == nil {
		return nil // overview tables hold no data of their own
	}
	b, err := readRange(ctx, t.source, t.location, t.offset+headerSize, int64(t.NumPhis*t.NumLambdas*gsbNodeSize))
	if err != nil {
		return err
	}
	t.Cells = readNodes(b, r.bo, t.NumPhis, t.NumLambdas, gsbNodeSize, float32At, 4)
	return nil
}
