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
)

// NADCON header layout: 56 bytes of identification and 8 bytes of
// program name, followed by the grid description.
const (
	lasNumCols = 64
	lasNumRows = 68
	lasNumZ    = 72
	lasMinLon  = 76
	lasLonInc  = 80
	lasMinLat  = 84
	lasLatInc  = 88
	lasHdrLen  = 96
)

// lasLosReader reads a pair of little-endian NADCON files: las holds
// latitude values and los longitude values, both in arc-seconds. The
// header occupies the first record, and every record is one row of
// float32 values prefixed with a dummy value.
type lasLosReader struct {
	las, los string
}

func (r lasLosReader) readHeader(ctx context.Context, t *Table) error {
	b, err := readRange(ctx, t.source, r.las, 0, lasHdrLen)
	if err != nil {
		return err
	}
	bo := binary.LittleEndian
	t.NumLambdas = int(int32(bo.Uint32(b[lasNumCols:])))
	t.NumPhis = int(int32(bo.Uint32(b[lasNumRows:])))
	if nz := int32(bo.Uint32(b[lasNumZ:])); nz != 1 {
		return &FormatError{Grid: r.las, Msg: fmt.Sprintf("nz is %d, want 1", nz)}
	}
	t.LowerLeft = PhiLam{Phi: float32At(bo, b, lasMinLat) * degToRad, Lambda: float32At(bo, b, lasMinLon) * degToRad}
	t.CellSize = PhiLam{Phi: float32At(bo, b, lasLatInc) * degToRad, Lambda: float32At(bo, b, lasLonInc) * degToRad}
	if !(t.CellSize.Phi > 0 && t.CellSize.Lambda > 0) {
		return &FormatError{Grid: r.las, Msg: "cell size must be positive"}
	}
	return t.checkCounts()
}

// rows reads the data records of one file of the pair.
func (r lasLosReader) rows(ctx context.Context, t *Table, name string) ([][]float64, error) {
	recLen := (t.NumLambdas + 1) * 4
	b, err := readRange(ctx, t.source, name, int64(recLen), int64(recLen*t.NumPhis))
	if err != nil {
		return nil, err
	}
	bo := binary.LittleEndian
	out := make([][]float64, t.NumPhis)
	for row := range out {
		out[row] = make([]float64, t.NumLambdas)
		start := row*recLen + 4 // skip the leading dummy value
		for col := range out[row] {
			out[row][col] = float32At(bo, b, start+col*4)
		}
	}
	return out, nil
}

func (r lasLosReader) fillData(ctx context.Context, t *Table) error {
	las, err := r.rows(ctx, t, r.las)
	if err != nil {
		return err
	}
	los, err := r.rows(ctx, t, r.los)
	if err != nil {
		return err
	}
	cells := t.allocCells()
	for row := range cells {
		var phi, lam float64
		for col := range cells[row] {
			phi += las[row][col]
			lam += los[row][col]
			cells[row][col] = PhiLam{Phi: phi * SecToRad, Lambda: lam * SecToRad}
		}
	}
	t.Cells = cells
	return nil
}
