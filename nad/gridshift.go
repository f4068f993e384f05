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
	"errors"
	"math"
	"path"
	"strings"
	"sync"

	"github.com/golang/groupcache/singleflight"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/crs/internal/hash"
)

const (
	// maxTry is the number of refinement attempts for an inverse shift.
	maxTry = 9

	// tol is the convergence tolerance of the inverse shift, in radians.
	tol = 1e-12
)

// ErrGridUnavailable is returned by GridShift.Table when the named grid
// cannot be found.
var ErrGridUnavailable = errors.New("nad: grid unavailable")

// GridShift is a registry of correction tables. Tables are loaded from
// its Source the first time they are requested and then shared by all
// callers. It is safe for concurrent use.
type GridShift struct {
	Log logrus.FieldLogger

	mu        sync.RWMutex
	source    Source
	sourceKey string
	gen       int
	tables    map[string]*Table
	loads     singleflight.Group
}

// NewGridShift returns a registry that loads tables from src.
func NewGridShift(src Source) *GridShift {
	if src == nil {
		src = NoSource{}
	}
	return &GridShift{
		Log:    logrus.StandardLogger(),
		source: src,
		tables: make(map[string]*Table),
	}
}

// Default is the process-wide registry used by datum transformations.
// It holds no grids until SetSearchPaths or SetSource is called.
var Default = NewGridShift(nil)

// SetSource replaces the source of the registry and discards every
// table loaded from the previous source. Registered tables are kept.
func (g *GridShift) SetSource(src Source) {
	if src == nil {
		src = NoSource{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.source = src
	g.sourceKey = ""
	g.gen++
	g.dropLoaded()
}

// SetSearchPaths makes the registry load grid files from the given
// directories. The cache is only invalidated if the paths changed.
func (g *GridShift) SetSearchPaths(paths ...string) {
	key := hash.Strings(paths...)
	g.mu.Lock()
	defer g.mu.Unlock()
	if key == g.sourceKey {
		return
	}
	g.source = NewDirSource(paths...)
	g.sourceKey = key
	g.gen++
	g.dropLoaded()
}

func (g *GridShift) dropLoaded() {
	for name, t := range g.tables {
		if t == nil || t.source != nil {
			delete(g.tables, name)
		}
	}
}

// Register adds a table to the registry under name, replacing any table
// already known by that name.
func (g *GridShift) Register(name string, t *Table) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tables[tableKey(name)] = t
}

// tableKey strips the PROJ "optional grid" marker.
func tableKey(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "@")
}

// Table returns the named table with its header read. Tables without an
// extension are looked up as .lla and then .las/.los resources.
// ErrGridUnavailable is returned if the grid cannot be found.
func (g *GridShift) Table(ctx context.Context, name string) (*Table, error) {
	key := tableKey(name)
	g.mu.RLock()
	t, ok := g.tables[key]
	src, gen := g.source, g.gen
	g.mu.RUnlock()
	if ok {
		if t == nil {
			return nil, ErrGridUnavailable
		}
		return t, nil
	}
	v, err := g.loads.Do(key, func() (interface{}, error) {
		g.mu.RLock()
		t, ok := g.tables[key]
		g.mu.RUnlock()
		if ok {
			return t, nil
		}
		t, err := loadTable(ctx, key, src)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		if g.gen == gen {
			g.tables[key] = t
		}
		g.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t = v.(*Table)
	if t == nil {
		return nil, ErrGridUnavailable
	}
	return t, nil
}

// loadTable reads the header of the named grid. It returns a nil table
// if no resource matches the name.
func loadTable(ctx context.Context, name string, src Source) (*Table, error) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = []string{name + ".lla", name + ".las"}
	}
	for _, c := range candidates {
		t := NewTable(c, src)
		if err := t.ReadHeader(ctx); err != nil {
			return nil, err
		}
		if t.HeaderRead() {
			return t, nil
		}
	}
	return nil, nil
}

// Apply shifts the points in xy, which holds interleaved longitude and
// latitude values in radians, for point indices [start, start+n). For
// each point the named tables are tried in order and the first one that
// produces a correction is used. Points outside every table are left
// unchanged.
func (g *GridShift) Apply(ctx context.Context, names []string, inverse bool, xy []float64, start, n int) {
	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := g.Table(ctx, name)
		if err != nil {
			g.Log.WithFields(logrus.Fields{
				"grid":  name,
				"error": err,
			}).Debug("nad: grid shift table unavailable")
			continue
		}
		tables = append(tables, t)
	}
	for i := start; i < start+n; i++ {
		in := PhiLam{Phi: xy[2*i+1], Lambda: xy[2*i]}
		out := huge()
		for _, t := range tables {
			if !t.Contains(in) {
				continue
			}
			if len(t.SubGrids) > 0 {
				if t = t.SubGridFor(in); t == nil {
					continue
				}
			}
			if read, err := t.fill(ctx); err != nil {
				if read {
					g.Log.WithFields(logrus.Fields{
						"grid":  t.location,
						"error": err,
					}).Warn("nad: reading grid shift table")
				}
				continue
			}
			if !t.Filled() {
				continue
			}
			out = g.Convert(in, inverse, t)
			if !out.IsHuge() {
				break
			}
		}
		if out.IsHuge() {
			g.Log.WithFields(logrus.Fields{
				"lon":   in.Lambda / degToRad,
				"lat":   in.Phi / degToRad,
				"grids": strings.Join(names, ","),
			}).Debug("nad: point outside of grid shift tables")
			continue
		}
		xy[2*i] = out.Lambda
		xy[2*i+1] = out.Phi
	}
}

// Convert applies the shift from table t to point p, or removes it if
// inverse is true. HugeVal is returned if no correction is available.
func (g *GridShift) Convert(p PhiLam, inverse bool, t *Table) PhiLam {
	if p.IsHuge() {
		return p
	}
	tb := PhiLam{
		Phi:    p.Phi - t.LowerLeft.Phi,
		Lambda: adjustLongitude(p.Lambda-t.LowerLeft.Lambda-math.Pi) + math.Pi,
	}
	if !inverse {
		s := Interpolate(tb, t)
		if s.IsHuge() {
			return s
		}
		return PhiLam{Phi: p.Phi + s.Phi, Lambda: p.Lambda - s.Lambda}
	}
	r, attempts, ok := invert(tb, func(q PhiLam) PhiLam { return Interpolate(q, t) })
	if !ok {
		g.Log.WithFields(logrus.Fields{
			"grid":     t.Name,
			"attempts": attempts,
		}).Warn("nad: inverse grid shift failed to converge")
		return r
	}
	if r.IsHuge() {
		return r
	}
	return PhiLam{
		Phi:    r.Phi + t.LowerLeft.Phi,
		Lambda: adjustLongitude(r.Lambda + t.LowerLeft.Lambda),
	}
}

// invert finds the grid-local point whose forward shift lands on tb by
// fixed-point iteration. It returns the estimate, the number of
// refinement attempts made, and false if the estimate did not converge
// within maxTry attempts, in which case the estimate is HugeVal.
func invert(tb PhiLam, shift func(PhiLam) PhiLam) (PhiLam, int, bool) {
	t := shift(tb)
	if t.IsHuge() {
		return t, 0, true
	}
	t.Lambda = tb.Lambda + t.Lambda
	t.Phi = tb.Phi - t.Phi
	for attempts := 1; ; attempts++ {
		del := shift(t)
		if del.IsHuge() {
			// The estimate left the grid; keep the first order
			// approximation.
			return t, attempts, true
		}
		difLam := t.Lambda - del.Lambda - tb.Lambda
		difPhi := t.Phi + del.Phi - tb.Phi
		t.Lambda -= difLam
		t.Phi -= difPhi
		if !(math.Abs(difLam) > tol && math.Abs(difPhi) > tol) {
			return t, attempts, true
		}
		if attempts == maxTry {
			return huge(), attempts, false
		}
	}
}

// Interpolate returns the bilinearly interpolated shift at p, which must
// be relative to the lower left corner of t. HugeVal is returned if p
// falls outside of the table.
func Interpolate(p PhiLam, t *Table) PhiLam {
	fLam := p.Lambda / t.CellSize.Lambda
	fPhi := p.Phi / t.CellSize.Phi
	iLam := int(math.Floor(fLam))
	iPhi := int(math.Floor(fPhi))
	frLam := fLam - float64(iLam)
	frPhi := fPhi - float64(iPhi)

	if iLam < 0 {
		if iLam == -1 && frLam > 0.99999999999 {
			iLam++
			frLam = 0
		} else {
			return huge()
		}
	} else if iLam+1 >= t.NumLambdas {
		if iLam+1 == t.NumLambdas && frLam < 1e-11 {
			iLam--
			frLam = 1
		} else {
			return huge()
		}
	}
	if iPhi < 0 {
		if iPhi == -1 && frPhi > 0.99999999999 {
			iPhi++
			frPhi = 0
		} else {
			return huge()
		}
	} else if iPhi+1 >= t.NumPhis {
		if iPhi+1 == t.NumPhis && frPhi < 1e-11 {
			iPhi--
			frPhi = 1
		} else {
			return huge()
		}
	}

	f00 := t.Value(iPhi, iLam)
	f10 := t.Value(iPhi, iLam+1)
	f01 := t.Value(iPhi+1, iLam)
	f11 := t.Value(iPhi+1, iLam+1)
	if f00.IsHuge() {
		return f00
	}

	m00 := (1 - frLam) * (1 - frPhi)
	m01 := (1 - frLam) * frPhi
	m10 := frLam * (1 - frPhi)
	m11 := frLam * frPhi
	return PhiLam{
		Phi:    m00*f00.Phi + m10*f10.Phi + m01*f01.Phi + m11*f11.Phi,
		Lambda: m00*f00.Lambda + m10*f10.Lambda + m01*f01.Lambda + m11*f11.Lambda,
	}
}
