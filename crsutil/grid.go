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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/crs/nad"
	"github.com/spf13/cast"
)

const radToDeg = 57.29577951308232

// setGridSource points g at the GridBucket configuration value if it is
// set, and at the GridSearchPaths directories otherwise.
func setGridSource(ctx context.Context, cfg *viper.Viper, g *nad.GridShift) error {
	if bucket := os.ExpandEnv(cfg.GetString("GridBucket")); bucket != "" {
		src, err := nad.OpenBucketSource(ctx, bucket)
		if err != nil {
			return err
		}
		g.SetSource(src)
		logrus.WithField("bucket", bucket).Debug("crsutil: reading grids from bucket")
		return nil
	}
	paths, err := cast.ToStringSliceE(cfg.Get("GridSearchPaths"))
	if err != nil {
		return fmt.Errorf("crsutil: GridSearchPaths: %v", err)
	}
	paths = expandStringSlice(paths)
	g.SetSearchPaths(paths...)
	logrus.WithField("paths", strings.Join(paths, ",")).Debug("crsutil: reading grids from directories")
	return nil
}

// DescribeGrids writes the header information of the named grids to w.
func DescribeGrids(ctx context.Context, w io.Writer, g *nad.GridShift, names ...string) error {
	for _, name := range names {
		t, err := g.Table(ctx, name)
		if err == nad.ErrGridUnavailable {
			return fmt.Errorf("crsutil: grid %s not found", name)
		} else if err != nil {
			return err
		}
		describeTable(w, t, "")
	}
	return nil
}

func describeTable(w io.Writer, t *nad.Table, indent string) {
	ur := t.UpperRight()
	fmt.Fprintf(w, "%s%s (%s)\n", indent, t.Name, t.Format)
	fmt.Fprintf(w, "%s  lower left:  %.6f %.6f\n", indent, t.LowerLeft.Lambda*radToDeg, t.LowerLeft.Phi*radToDeg)
	fmt.Fprintf(w, "%s  upper right: %.6f %.6f\n", indent, ur.Lambda*radToDeg, ur.Phi*radToDeg)
	fmt.Fprintf(w, "%s  cell size:   %.4f\" x %.4f\"\n", indent,
		t.CellSize.Lambda*radToDeg*3600, t.CellSize.Phi*radToDeg*3600)
	fmt.Fprintf(w, "%s  nodes:       %d x %d\n", indent, t.NumLambdas, t.NumPhis)
	if t.Parent != "" {
		fmt.Fprintf(w, "%s  parent:      %s\n", indent, t.Parent)
	}
	for _, s := range t.SubGrids {
		describeTable(w, s, indent+"  ")
	}
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}
