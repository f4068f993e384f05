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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// llaReader reads the text grid format. The first line is a name, the
// second holds
//
//	numLambdas numPhis skip lon0 dLon lat0 dLat
//
// with angles in degrees. It is followed by one record per row, each
// starting with the row index and holding numLambdas pairs of integer
// longitude and latitude offsets from the previous node in the row, in
// micro-arc-seconds.
type llaReader struct{}

// llaFields splits s on whitespace, commas and colons.
func llaFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\r', '\n', ',', ':':
			return true
		}
		return false
	})
}

func (llaReader) readHeader(ctx context.Context, t *Table) error {
	r, err := t.source.OpenRange(ctx, t.location, 0, -1)
	if err != nil {
		return err
	}
	defer r.Close()
	br := bufio.NewReader(r)
	name, err := br.ReadString('\n')
	if err != nil {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("reading name: %v", err)}
	}
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("reading header: %v", err)}
	}
	f := llaFields(line)
	if len(f) < 7 {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("header has %d fields, want 7", len(f))}
	}
	v := make([]float64, 7)
	for i := range v {
		if v[i], err = strconv.ParseFloat(f[i], 64); err != nil {
			return &FormatError{Grid: t.location, Msg: fmt.Sprintf("header field %d: %v", i, err)}
		}
	}
	if s := strings.TrimSpace(name); s != "" {
		t.Name = s
	}
	t.NumLambdas = int(v[0])
	t.NumPhis = int(v[1])
	t.LowerLeft = PhiLam{Phi: v[5] * degToRad, Lambda: v[3] * degToRad}
	t.CellSize = PhiLam{Phi: v[6] * degToRad, Lambda: v[4] * degToRad}
	return t.checkCounts()
}

func (llaReader) fillData(ctx context.Context, t *Table) error {
	b, err := readRange(ctx, t.source, t.location, 0, -1)
	if err != nil {
		return err
	}
	// Skip the name and header lines.
	for i := 0; i < 2; i++ {
		n := bytes.IndexByte(b, '\n')
		if n < 0 {
			return &FormatError{Grid: t.location, Msg: "missing data records"}
		}
		b = b[n+1:]
	}
	tok := llaFields(string(b))
	next := func() (int64, error) {
		if len(tok) == 0 {
			return 0, &FormatError{Grid: t.location, Msg: "unexpected end of data"}
		}
		v, err := strconv.ParseInt(tok[0], 10, 64)
		tok = tok[1:]
		if err != nil {
			return 0, &FormatError{Grid: t.location, Msg: err.Error()}
		}
		return v, nil
	}
	cells := t.allocCells()
	for row := 0; row < t.NumPhis; row++ {
		idx, err := next()
		if err != nil {
			return err
		}
		if idx != int64(row) {
			return &FormatError{Grid: t.location, Msg: fmt.Sprintf("found row %d where row %d was expected", idx, row)}
		}
		var lam, phi int64
		for col := 0; col < t.NumLambdas; col++ {
			dLam, err := next()
			if err != nil {
				return err
			}
			dPhi, err := next()
			if err != nil {
				return err
			}
			lam += dLam
			phi += dPhi
			cells[row][col] = PhiLam{Phi: float64(phi) * USecToRad, Lambda: float64(lam) * USecToRad}
		}
	}
	t.Cells = cells
	return nil
}
