// pkg/utils/bwlimit.go

package utils

import (
	"io"

	"github.com/juju/ratelimit"
)

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if l.r != nil && n > 0 {
		l.r.Wait(int64(n))
	}
	return n, err
}

// Close closes the underlying reader
func (l *limitedReader) Close() error {
	if rc, ok := l.Reader.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

// NewLimitedReader paces reads to bps bytes per second; bps <= 0 disables the limit.
func NewLimitedReader(r io.Reader, bps int64) io.ReadCloser {
	lr := &limitedReader{Reader: r}
	if bps > 0 {
		lr.r = ratelimit.NewBucketWithRate(float64(bps), bps)
	}
	return lr
}
