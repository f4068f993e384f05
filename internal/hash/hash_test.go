/*
Copyright © 2019 the InMAP authors.
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
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.*/

package hash

import (
	"math"
	"testing"
)

type stage struct {
	Dx, Dy, Dz float64
	Grids      []string
}

func TestHash(t *testing.T) {
	a := Hash(stage{Dx: 1, Grids: []string{"conus"}})
	b := Hash(stage{Dx: 1, Grids: []string{"conus"}})
	c := Hash(stage{Dx: 2, Grids: []string{"conus"}})
	if a != b {
		t.Errorf("equal values: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("different values have the same key %s", a)
	}
}

func TestHashNaN(t *testing.T) {
	a := Hash(map[string]float64{"x": math.NaN()})
	if a == "" {
		t.Error("empty key")
	}
}

func TestStrings(t *testing.T) {
	if Strings() != Strings([]string{}...) {
		t.Error("nil and empty lists should match")
	}
	if Strings("a", "b") == Strings("ab") {
		t.Error("list boundaries should be part of the key")
	}
	if Strings("a", "b") == Strings("b", "a") {
		t.Error("order should be part of the key")
	}
	if Strings("/usr/share/proj") != Strings("/usr/share/proj") {
		t.Error("equal lists should match")
	}
}
