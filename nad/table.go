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
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ctessum/geom"
	"github.com/dhconnelly/rtreego"
)

// Format is the on-disk format of a correction grid.
type Format int

// These are the supported grid formats.
const (
	FormatUnknown Format = iota
	FormatDat            // NTv1
	FormatGsb            // NTv2
	FormatLla            // text, cumulative micro-arc-seconds
	FormatLasLos         // NADCON .las/.los pair
)

func (f Format) String() string {
	switch f {
	case FormatDat:
		return "dat"
	case FormatGsb:
		return "gsb"
	case FormatLla:
		return "lla"
	case FormatLasLos:
		return "las/los"
	default:
		return "unknown"
	}
}

// FormatFor returns the grid format implied by the extension of name.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".dat":
		return FormatDat
	case ".gsb":
		return FormatGsb
	case ".lla":
		return FormatLla
	case ".las", ".los":
		return FormatLasLos
	default:
		return FormatUnknown
	}
}

// FormatError reports malformed grid contents.
type FormatError struct {
	Grid string
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("nad: malformed grid %s: %s", e.Grid, e.Msg)
}

// tableReader parses one grid format.
type tableReader interface {
	readHeader(ctx context.Context, t *Table) error
	fillData(ctx context.Context, t *Table) error
}

// Table is one correction grid. Cells is indexed by latitude row (south
// to north) and then longitude column (west to east). Each cell holds
// the shift, in radians, to be applied at that grid node.
//
// Tables that hold SubGrids are headers only: their own Cells are never
// filled and points are routed to the first sub-grid containing them.
type Table struct {
	Name       string
	LowerLeft  PhiLam
	CellSize   PhiLam
	NumPhis    int
	NumLambdas int
	Cells      [][]PhiLam
	Format     Format
	SubGrids   []*Table

	// Parent is the name of the parent sub-grid in NTv2 files.
	Parent string

	source   Source
	location string
	offset   int64
	reader   tableReader
	extent   *geom.Bounds
	index    *rtreego.Rtree

	mu         sync.Mutex
	headerRead bool
	filled     int32

	// fillTried is set once the correction values have been read, and
	// fillErr holds the error of that read.
	fillTried bool
	fillErr   error
}

// NewTable returns a table that reads the named resource from src in the
// format implied by the resource's extension. Nothing is read until
// ReadHeader is called.
func NewTable(name string, src Source) *Table {
	t := &Table{
		Name:     strings.TrimSuffix(path.Base(name), path.Ext(name)),
		Format:   FormatFor(name),
		source:   src,
		location: name,
	}
	switch t.Format {
	case FormatDat:
		t.reader = datReader{}
	case FormatGsb:
		t.reader = gsbReader{}
	case FormatLla:
		t.reader = llaReader{}
	case FormatLasLos:
		base := strings.TrimSuffix(name, path.Ext(name))
		t.reader = lasLosReader{las: base + ".las", los: base + ".los"}
	}
	return t
}

// NewMemoryTable returns a filled table built from the given cells, which
// must be indexed as described for Table.Cells.
func NewMemoryTable(name string, lowerLeft, cellSize PhiLam, cells [][]PhiLam) *Table {
	t := &Table{
		Name:       name,
		LowerLeft:  lowerLeft,
		CellSize:   cellSize,
		Cells:      cells,
		NumPhis:    len(cells),
		headerRead: true,
		filled:     1,
	}
	if len(cells) > 0 {
		t.NumLambdas = len(cells[0])
	}
	t.extent = t.cellExtent()
	return t
}

// ReadHeader reads the bounds, cell size and counts of the table without
// loading the correction values. If the resource cannot be found the table
// is left empty and no error is returned.
func (t *Table) ReadHeader(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.headerRead || t.source == nil || t.reader == nil {
		return nil
	}
	if err := t.reader.readHeader(ctx, t); err != nil {
		if err == ErrNotExist {
			return nil
		}
		return err
	}
	if t.extent == nil {
		t.extent = t.cellExtent()
	}
	t.headerRead = true
	return nil
}

// HeaderRead returns whether the header has been read successfully.
func (t *Table) HeaderRead() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.headerRead
}

// FillData loads the correction values. It only reads the resource once;
// later calls return immediately, with the error of the first read if it
// failed. Tables with sub-grids and tables whose header is unavailable are
// left unfilled without an error.
func (t *Table) FillData(ctx context.Context) error {
	_, err := t.fill(ctx)
	return err
}

// fill is FillData that also reports whether this call read the
// resource.
func (t *Table) fill(ctx context.Context) (read bool, err error) {
	if t.Filled() {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.filled == 1 || !t.headerRead || len(t.SubGrids) > 0 || t.reader == nil {
		return false, nil
	}
	if t.fillTried {
		return false, t.fillErr
	}
	t.fillTried = true
	if err := t.reader.fillData(ctx, t); err != nil {
		t.Cells = nil
		if err == ErrNotExist {
			return true, nil
		}
		t.fillErr = err
		return true, err
	}
	atomic.StoreInt32(&t.filled, 1)
	return true, nil
}

// Filled returns whether the correction values have been loaded.
func (t *Table) Filled() bool {
	return atomic.LoadInt32(&t.filled) == 1
}

// Bounds returns the extent of the table, where X is longitude and Y is
// latitude, both in radians. The extent of a table with sub-grids
// is the union of the sub-grid extents.
func (t *Table) Bounds() *geom.Bounds {
	if t.extent == nil {
		return geom.NewBounds()
	}
	return t.extent.Copy()
}

// UpperRight returns the position of the last grid node.
func (t *Table) UpperRight() PhiLam {
	return PhiLam{
		Phi:    t.LowerLeft.Phi + float64(t.NumPhis-1)*t.CellSize.Phi,
		Lambda: t.LowerLeft.Lambda + float64(t.NumLambdas-1)*t.CellSize.Lambda,
	}
}

func (t *Table) cellExtent() *geom.Bounds {
	ur := t.UpperRight()
	return &geom.Bounds{
		Min: geom.Point{X: t.LowerLeft.Lambda, Y: t.LowerLeft.Phi},
		Max: geom.Point{X: ur.Lambda, Y: ur.Phi},
	}
}

// Contains returns whether p lies within the table bounds, edges included.
func (t *Table) Contains(p PhiLam) bool {
	b := t.extent
	if b == nil || b.Empty() {
		return false
	}
	return b.Min.Y <= p.Phi && b.Min.X <= p.Lambda && b.Max.Y >= p.Phi && b.Max.X >= p.Lambda
}

// Value returns the cell at the given row and column. Indices outside
// of the table are clamped to the nearest edge.
func (t *Table) Value(iPhi, iLam int) PhiLam {
	if len(t.Cells) == 0 {
		return huge()
	}
	if iPhi < 0 {
		iPhi = 0
	} else if iPhi >= len(t.Cells) {
		iPhi = len(t.Cells) - 1
	}
	row := t.Cells[iPhi]
	if len(row) == 0 {
		return huge()
	}
	if iLam < 0 {
		iLam = 0
	} else if iLam >= len(row) {
		iLam = len(row) - 1
	}
	return row[iLam]
}

// indexedGrid wraps a sub-grid for the spatial index.
type indexedGrid struct {
	i int
	t *Table
}

// searchPad keeps degenerate and edge-touching rectangles searchable.
const searchPad = 1e-9

// Bounds implements rtreego.Spatial.
func (g indexedGrid) Bounds() rtreego.Rect {
	b := g.t.extent
	r, err := rtreego.NewRect(
		rtreego.Point{b.Min.X - searchPad, b.Min.Y - searchPad},
		[]float64{b.Max.X - b.Min.X + 2*searchPad, b.Max.Y - b.Min.Y + 2*searchPad},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// setSubGrids stores the sub-grids, indexes them and sets the table
// extent to their union.
func (t *Table) setSubGrids(subs []*Table) {
	t.SubGrids = subs
	t.extent = geom.NewBounds()
	t.index = rtreego.NewTree(2, 25, 50)
	for i, s := range subs {
		if s.extent == nil {
			s.extent = s.cellExtent()
		}
		t.extent.Extend(s.extent)
		t.index.Insert(indexedGrid{i: i, t: s})
	}
	if len(subs) > 0 {
		t.CellSize = subs[0].CellSize
		t.LowerLeft = PhiLam{Phi: t.extent.Min.Y, Lambda: t.extent.Min.X}
	}
}

// SubGridFor returns the first sub-grid, in file order, that contains p,
// or nil if there is none.
func (t *Table) SubGridFor(p PhiLam) *Table {
	if t.index == nil {
		return nil
	}
	q, err := rtreego.NewRect(
		rtreego.Point{p.Lambda - searchPad, p.Phi - searchPad},
		[]float64{2 * searchPad, 2 * searchPad},
	)
	if err != nil {
		return nil
	}
	best := -1
	for _, s := range t.index.SearchIntersect(q) {
		g := s.(indexedGrid)
		if (best < 0 || g.i < best) && g.t.Contains(p) {
			best = g.i
		}
	}
	if best < 0 {
		return nil
	}
	return t.SubGrids[best]
}

// allocCells returns a NumPhis by NumLambdas cell array.
func (t *Table) allocCells() [][]PhiLam {
	cells := make([][]PhiLam, t.NumPhis)
	for i := range cells {
		cells[i] = make([]PhiLam, t.NumLambdas)
	}
	return cells
}

// checkCounts guards against headers that would make allocCells explode.
func (t *Table) checkCounts() error {
	const maxNodes = 1 << 28
	if t.NumPhis < 1 || t.NumLambdas < 1 || t.NumPhis*t.NumLambdas > maxNodes {
		return &FormatError{Grid: t.location, Msg: fmt.Sprintf("invalid grid size %d x %d", t.NumPhis, t.NumLambdas)}
	}
	return nil
}
