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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrNotExist is returned by a Source when the requested grid resource
// does not exist.
var ErrNotExist = errors.New("nad: grid resource does not exist")

// A Source provides access to the bytes of named grid resources.
type Source interface {
	// OpenRange opens length bytes of the named resource starting at
	// byte offset off. A negative length reads to the end of the resource.
	// ErrNotExist is returned if there is no such resource.
	OpenRange(ctx context.Context, name string, off, length int64) (io.ReadCloser, error)
}

// NoSource is a Source that holds no grids.
type NoSource struct{}

// OpenRange always returns ErrNotExist.
func (NoSource) OpenRange(ctx context.Context, name string, off, length int64) (io.ReadCloser, error) {
	return nil, ErrNotExist
}

// MemSource serves grids held in memory, keyed by name. It is used for
// grids embedded in a program and for testing.
type MemSource map[string][]byte

// OpenRange implements Source.
func (m MemSource) OpenRange(ctx context.Context, name string, off, length int64) (io.ReadCloser, error) {
	b, ok := m[name]
	if !ok {
		return nil, ErrNotExist
	}
	if off > int64(len(b)) {
		off = int64(len(b))
	}
	b = b[off:]
	if length >= 0 && length < int64(len(b)) {
		b = b[:length]
	}
	return ioutil.NopCloser(bytes.NewReader(b)), nil
}

// DirSource searches a list of directories for grid files. The first
// directory holding a file with the requested name wins. Absolute
// names are opened directly.
type DirSource struct {
	Paths []string
}

// NewDirSource returns a DirSource that searches paths in order.
func NewDirSource(paths ...string) *DirSource {
	return &DirSource{Paths: paths}
}

type sectionFile struct {
	io.Reader
	f *os.File
}

func (s *sectionFile) Close() error { return s.f.Close() }

// OpenRange implements Source.
func (d *DirSource) OpenRange(ctx context.Context, name string, off, length int64) (io.ReadCloser, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = candidates[:0]
		for _, dir := range d.Paths {
			candidates = append(candidates, filepath.Join(os.ExpandEnv(dir), name))
		}
	}
	for _, c := range candidates {
		f, err := os.Open(c)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("nad: opening grid %s: %v", c, err)
		}
		if _, err = f.Seek(off, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("nad: seeking grid %s: %v", c, err)
		}
		var r io.Reader = f
		if length >= 0 {
			r = io.LimitReader(f, length)
		}
		return &sectionFile{Reader: r, f: f}, nil
	}
	return nil, ErrNotExist
}

// BucketSource reads grids from a blob storage bucket. Transient read
// failures are retried with exponential backoff.
type BucketSource struct {
	Bucket *blob.Bucket

	// Prefix is prepended to grid names to form blob keys.
	Prefix string

	// MaxRetries is the maximum number of retries for a failed read.
	MaxRetries uint64
}

// OpenRange implements Source.
func (s *BucketSource) OpenRange(ctx context.Context, name string, off, length int64) (io.ReadCloser, error) {
	key := path.Join(s.Prefix, name)
	var r *blob.Reader
	var missing bool
	err := backoff.RetryNotify(
		func() error {
			var err error
			r, err = s.Bucket.NewRangeReader(ctx, key, off, length, nil)
			if gcerrors.Code(err) == gcerrors.NotFound {
				missing = true
				return nil
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.MaxRetries), ctx),
		func(err error, d time.Duration) {
			logrus.WithFields(logrus.Fields{
				"key":   key,
				"error": err,
				"delay": d,
			}).Warn("nad: retrying blob read")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("nad: reading blob %s: %v", key, err)
	}
	if missing {
		return nil, ErrNotExist
	}
	return r, nil
}

// readRange reads exactly length bytes (or the whole remainder when
// length is negative) of the named resource starting at off.
func readRange(ctx context.Context, src Source, name string, off, length int64) ([]byte, error) {
	r, err := src.OpenRange(ctx, name, off, length)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if length < 0 {
		return ioutil.ReadAll(r)
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, &FormatError{Grid: name, Msg: fmt.Sprintf("reading %d bytes at offset %d: %v", length, off, err)}
	}
	return b, nil
}
