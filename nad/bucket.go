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
	"net/url"

	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

// OpenBucketSource opens the blob storage bucket at bucketURL, which must
// be in the format 'provider://name'. The accepted providers are "file"
// for a directory in the local filesystem and "mem" for an empty
// in-memory bucket.
func OpenBucketSource(ctx context.Context, bucketURL string) (*BucketSource, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("nad.OpenBucketSource: %v", err)
	}
	s := &BucketSource{MaxRetries: 5}
	switch u.Scheme {
	case "file":
		s.Bucket, err = fileblob.OpenBucket(u.Host+u.Path, nil)
	case "mem":
		s.Bucket = memblob.OpenBucket(nil)
	default:
		return nil, fmt.Errorf("nad.OpenBucketSource: invalid provider %s", u.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("nad.OpenBucketSource: %v", err)
	}
	return s, nil
}
