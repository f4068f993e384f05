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

package crsutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/crs"
)

// arcSecToRad converts arc-seconds to radians.
const arcSecToRad = 4.84813681109536e-06

// stageConfig is one [[Stage]] table of a pipeline file. Rotations are
// given in arc-seconds and spheroids as Proj4 ellipsoid codes.
type stageConfig struct {
	FromDatum, ToDatum string
	Method             string
	Dx, Dy, Dz         float64
	Rx, Ry, Rz         float64
	Ds                 float64
	GridTable          string
	ApplyInverse       bool
	FromSpheroid       string
	ToSpheroid         string
}

// pipelineConfig holds the contents of a pipeline file.
type pipelineConfig struct {
	Stage []stageConfig
}

// LoadPipeline reads a datum transformation from the TOML file at path.
// Each stage is given by a [[Stage]] table, for example:
//
//	[[Stage]]
//	FromDatum = "NAD27"
//	ToDatum = "NAD83"
//	Method = "GridShift"
//	GridTable = "conus"
//
//	[[Stage]]
//	FromDatum = "NAD83"
//	ToDatum = "WGS84"
//	Method = "Param7"
//	Dx = 1.0
//	Rz = 0.5 # arc-seconds
//	Ds = 0.1 # parts per million
func LoadPipeline(path string) (*crs.DatumTransform, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("crsutil: opening pipeline file: %v", err)
	}
	defer f.Close()
	var c pipelineConfig
	if _, err := toml.DecodeReader(f, &c); err != nil {
		return nil, fmt.Errorf("crsutil: reading pipeline file %s: %v", path, err)
	}
	stages := make([]*crs.DatumTransformStage, len(c.Stage))
	for i, sc := range c.Stage {
		s, err := sc.stage()
		if err != nil {
			return nil, fmt.Errorf("crsutil: pipeline file %s stage %d: %v", path, i+1, err)
		}
		stages[i] = s
	}
	return crs.NewDatumTransform(stages)
}

func (sc stageConfig) stage() (*crs.DatumTransformStage, error) {
	m, err := crs.ParseMethod(sc.Method)
	if err != nil {
		return nil, err
	}
	if m == crs.MethodGridShift && strings.TrimSpace(sc.GridTable) == "" {
		return nil, fmt.Errorf("GridShift stage needs a GridTable")
	}
	s := &crs.DatumTransformStage{
		FromDatum:    sc.FromDatum,
		ToDatum:      sc.ToDatum,
		Method:       m,
		Dx:           sc.Dx,
		Dy:           sc.Dy,
		Dz:           sc.Dz,
		Rx:           sc.Rx * arcSecToRad,
		Ry:           sc.Ry * arcSecToRad,
		Rz:           sc.Rz * arcSecToRad,
		Ds:           sc.Ds,
		GridTable:    sc.GridTable,
		ApplyInverse: sc.ApplyInverse,
	}
	if s.FromSpheroid, err = optionalSpheroid(sc.FromSpheroid); err != nil {
		return nil, err
	}
	if s.ToSpheroid, err = optionalSpheroid(sc.ToSpheroid); err != nil {
		return nil, err
	}
	return s, nil
}

func optionalSpheroid(code string) (*crs.Spheroid, error) {
	if code == "" {
		return nil, nil
	}
	s, err := crs.NewSpheroidFromProj4(code)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// reversePipeline returns a transform running the stages of dt backwards,
// each one inverted.
func reversePipeline(dt *crs.DatumTransform) *crs.DatumTransform {
	stages := make([]*crs.DatumTransformStage, len(dt.Stages))
	for i, s := range dt.Stages {
		r := *s
		r.FromDatum, r.ToDatum = s.ToDatum, s.FromDatum
		r.FromSpheroid, r.ToSpheroid = s.ToSpheroid, s.FromSpheroid
		r.ApplyInverse = !s.ApplyInverse
		stages[len(stages)-1-i] = &r
	}
	return &crs.DatumTransform{Stages: stages, Grids: dt.Grids}
}
