// pkg/compress/compress.go

package compress

import (
	"encoding/binary"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/hungys/go-lz4"
	"github.com/pkg/errors"
)

// ZSTD_LEVEL compression level used by ZStandard
const ZSTD_LEVEL = 1

// headerSize is the length prefix carried by Encode, lz4 blocks do not record it.
const headerSize = 4

// Compressor compresses a whole body in one block.
type Compressor interface {
	Name() string
	CompressBound(int) int
	Compress(dst, src []byte) (int, error)
	Decompress(dst, src []byte) (int, error)
}

// NewCompressor returns nil for an unknown algorithm.
func NewCompressor(algr string) Compressor {
	switch strings.ToLower(algr) {
	case "zstd":
		return ZStandard{ZSTD_LEVEL}
	case "lz4":
		return LZ4{}
	case "none", "":
		return noOp{}
	}
	return nil
}

type noOp struct{}

func (n noOp) Name() string            { return "Noop" }
func (n noOp) CompressBound(l int) int { return l }
func (n noOp) Compress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, errors.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	copy(dst, src)
	return len(src), nil
}
func (n noOp) Decompress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, errors.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	copy(dst, src)
	return len(src), nil
}

// ZStandard implements Compressor using zstd.
type ZStandard struct {
	level int
}

func (n ZStandard) Name() string            { return "Zstd" }
func (n ZStandard) CompressBound(l int) int { return zstd.CompressBound(l) }
func (n ZStandard) Compress(dst, src []byte) (int, error) {
	d, err := zstd.CompressLevel(dst, src, n.level)
	if err != nil {
		return 0, err
	}
	return into(dst, d)
}
func (n ZStandard) Decompress(dst, src []byte) (int, error) {
	d, err := zstd.Decompress(nil, src)
	if err != nil {
		return 0, err
	}
	return into(dst, d)
}

// into makes sure the result ends up in dst, zstd may allocate its own buffer.
func into(dst, d []byte) (int, error) {
	if len(d) > 0 && len(dst) > 0 && &d[0] == &dst[0] {
		return len(d), nil
	}
	if len(d) > len(dst) {
		return 0, errors.Errorf("buffer too short: %d < %d", len(dst), len(d))
	}
	return copy(dst, d), nil
}

// LZ4 implements Compressor using lz4 blocks.
type LZ4 struct{}

func (l LZ4) Name() string               { return "LZ4" }
func (l LZ4) CompressBound(size int) int { return lz4.CompressBound(size) }
func (l LZ4) Compress(dst, src []byte) (int, error) {
	return lz4.CompressDefault(src, dst)
}
func (l LZ4) Decompress(dst, src []byte) (int, error) {
	return lz4.DecompressSafe(src, dst)
}

// Encode compresses a body and prefixes it with the original length.
func Encode(c Compressor, body []byte) ([]byte, error) {
	buf := make([]byte, headerSize+c.CompressBound(len(body)))
	binary.BigEndian.PutUint32(buf, uint32(len(body)))
	if len(body) == 0 {
		return buf[:headerSize], nil
	}
	n, err := c.Compress(buf[headerSize:], body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s compress %d bytes", c.Name(), len(body))
	}
	return buf[:headerSize+n], nil
}

// Decode reverses Encode.
func Decode(c Compressor, data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errors.Errorf("%s body too short: %d bytes", c.Name(), len(data))
	}
	size := int(binary.BigEndian.Uint32(data))
	body := make([]byte, size)
	if size == 0 {
		return body, nil
	}
	n, err := c.Decompress(body, data[headerSize:])
	if err != nil {
		return nil, errors.Wrapf(err, "%s decompress", c.Name())
	}
	if n != size {
		return nil, errors.Errorf("%s decompressed %d bytes, expect %d", c.Name(), n, size)
	}
	return body, nil
}

// Transform returns a body transform for the named algorithm; "none" returns nil.
func Transform(algr string) (func([]byte) ([]byte, error), error) {
	c := NewCompressor(algr)
	if c == nil {
		return nil, errors.Errorf("unsupported compress algorithm: %s", algr)
	}
	if _, ok := c.(noOp); ok {
		return nil, nil
	}
	return func(body []byte) ([]byte, error) {
		return Encode(c, body)
	}, nil
}
