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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/crs"
	"github.com/spatialmodel/crs/internal/hash"
)

// Transformer converts coordinate text from one reference system to
// another.
type Transformer struct {
	From, To *crs.ProjectionInfo

	// Pipeline is the datum transformation to use. When nil, the
	// conversion is derived from the datums of From and To.
	Pipeline *crs.DatumTransform
}

// NewTransformer creates a Transformer from the From, To, Pipeline and
// Inverse configuration values.
func NewTransformer(cfg *viper.Viper) (*Transformer, error) {
	from, err := crs.Parse(os.ExpandEnv(cfg.GetString("From")))
	if err != nil {
		return nil, fmt.Errorf("crsutil: From: %v", err)
	}
	to, err := crs.Parse(os.ExpandEnv(cfg.GetString("To")))
	if err != nil {
		return nil, fmt.Errorf("crsutil: To: %v", err)
	}
	t := &Transformer{From: from, To: to}
	if path := cfg.GetString("Pipeline"); path != "" {
		if t.Pipeline, err = LoadPipeline(path); err != nil {
			return nil, err
		}
		log := logrus.WithFields(logrus.Fields{
			"pipeline":    path,
			"fingerprint": hash.Hash(t.Pipeline.Stages),
		})
		if !t.Pipeline.Chained() {
			log.Warn("crsutil: pipeline stages are not chained")
		}
		log.WithField("stages", len(t.Pipeline.Stages)).Debug("crsutil: loaded pipeline")
	}
	if cfg.GetBool("Inverse") {
		t.From, t.To = t.To, t.From
		if t.Pipeline != nil {
			t.Pipeline = reversePipeline(t.Pipeline)
		}
	}
	return t, nil
}

// line is one input line: either a point or text to copy through.
type line struct {
	text      string
	point     int // -1 for text lines
	hasHeight bool
}

// Run reads lines of 'x y [z]' from r and writes the converted points to
// w, one per line. Blank lines and lines starting with '#' are copied
// unchanged.
func (t *Transformer) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	var (
		lines []line
		xy, z []float64
	)
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		text := s.Text()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lines = append(lines, line{text: text, point: -1})
			continue
		}
		f := strings.Fields(trimmed)
		if len(f) != 2 && len(f) != 3 {
			return fmt.Errorf("crsutil: line %d: want 2 or 3 values, have %d", n, len(f))
		}
		var v [3]float64
		for i, fv := range f {
			var err error
			if v[i], err = strconv.ParseFloat(fv, 64); err != nil {
				return fmt.Errorf("crsutil: line %d: %v", n, err)
			}
		}
		lines = append(lines, line{point: len(z), hasHeight: len(f) == 3})
		xy = append(xy, v[0], v[1])
		z = append(z, v[2])
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("crsutil: reading input: %v", err)
	}
	if err := crs.TransformPoints(ctx, t.From, t.To, t.Pipeline, xy, z, 0, len(z)); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"points": len(z),
		"from":   t.From.ToProj4String(),
		"to":     t.To.ToProj4String(),
	}).Debug("crsutil: converted points")

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if l.point < 0 {
			fmt.Fprintln(bw, l.text)
			continue
		}
		i := l.point
		if l.hasHeight {
			fmt.Fprintf(bw, "%.9f %.9f %.4f\n", xy[2*i], xy[2*i+1], z[i])
		} else {
			fmt.Fprintf(bw, "%.9f %.9f\n", xy[2*i], xy[2*i+1])
		}
	}
	return bw.Flush()
}

// openInput opens the named file, or standard input for "" and "-".
func openInput(name string) (io.Reader, func() error, error) {
	if name == "" || name == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(os.ExpandEnv(name))
	if err != nil {
		return nil, nil, fmt.Errorf("crsutil: opening input: %v", err)
	}
	return f, f.Close, nil
}

// openOutput creates the named file, or returns standard output for ""
// and "-".
func openOutput(name string) (io.Writer, func() error, error) {
	if name == "" || name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(os.ExpandEnv(name))
	if err != nil {
		return nil, nil, fmt.Errorf("crsutil: creating output: %v", err)
	}
	return f, f.Close, nil
}
