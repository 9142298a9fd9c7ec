// pkg/filter/filter_test.go

package filter

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AveBody/pkg/body"
	"AveBody/pkg/capture"
	"AveBody/pkg/chunk"
	"AveBody/pkg/compress"
)

func frags(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func callBody(f *Filter, d chunk.Direction, eos bool) Status {
	if d == chunk.Request {
		return f.OnRequestBody(eos)
	}
	return f.OnResponseBody(eos)
}

// deliver plays the host: each fragment is received, then buffered or forwarded
// depending on the returned status. It returns what left the host downstream.
func deliver(t *testing.T, s *chunk.MemStore, f *Filter, d chunk.Direction, fragments [][]byte) []byte {
	var out []byte
	for i, frag := range fragments {
		s.Receive(d, frag)
		switch st := callBody(f, d, i == len(fragments)-1); st {
		case StopAndBuffer:
			require.NoError(t, s.Buffer(d))
		case Continue:
			out = append(out, s.Forward(d)...)
		default:
			t.Fatalf("unexpected status %s", st)
		}
	}
	return out
}

func newFilter(t *testing.T, conf *Config, s chunk.Store, sink capture.Sink) *Filter {
	f, err := New(conf, s, sink)
	require.NoError(t, err)
	return f
}

func TestStreamingPassThrough(t *testing.T) {
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{}, s, nil)

	out := deliver(t, s, f, chunk.Request, frags("a", "b", "c"))
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, "abc", string(f.Accumulated(chunk.Request)))

	// earlier fragments already left, so the reader only sees the last one
	final, ok := f.FinalBody(chunk.Request)
	require.True(t, ok)
	assert.Equal(t, "c", string(final))
	assert.NoError(t, f.Err())
}

func TestCaptureWholeBody(t *testing.T) {
	ctx := context.Background()
	sink, err := capture.NewSink("memory://", nil)
	require.NoError(t, err)
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Capture: true}, s, sink)

	out := deliver(t, s, f, chunk.Request, frags("nice", "nice", "nice", "nice", "nice", "nice"))
	assert.Equal(t, "nicenicenicenicenicenice", string(out))
	final, ok := f.FinalBody(chunk.Request)
	require.True(t, ok)
	assert.Equal(t, "nicenicenicenicenicenice", string(final))

	out = deliver(t, s, f, chunk.Response, frags("cool", "cool", "cool"))
	assert.Equal(t, "coolcoolcool", string(out))

	require.NoError(t, f.OnStreamComplete(ctx))
	r, err := sink.Get(ctx, f.ID(), chunk.Request)
	require.NoError(t, err)
	assert.Len(t, r.Body, 24)
	r, err = sink.Get(ctx, f.ID(), chunk.Response)
	require.NoError(t, err)
	assert.Equal(t, "coolcoolcool", string(r.Body))

	_, ok = f.FinalBody(chunk.Request)
	assert.True(t, ok)
	assert.Empty(t, f.Accumulated(chunk.Request))
}

func TestEarlierStageBuffered(t *testing.T) {
	// an earlier stage held every fragment; this stage gets the buffered body as received
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Compression: "zstd"}, s, nil)

	for _, p := range frags("hello", " ", "world") {
		s.Receive(chunk.Response, p)
		require.NoError(t, s.Buffer(chunk.Response))
	}
	s.Redeliver(chunk.Response)
	require.Equal(t, Continue, f.OnResponseBody(true))

	final, ok := f.FinalBody(chunk.Response)
	require.True(t, ok)
	out := s.Forward(chunk.Response)
	assert.Equal(t, final, out)
	plain, err := compress.Decode(compress.NewCompressor("zstd"), out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(plain))
	// the received fragment is the whole buffered body
	assert.Equal(t, "hello world", string(f.Accumulated(chunk.Response)))
}

func TestCompressRequest(t *testing.T) {
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Compression: "lz4"}, s, nil)
	src := bytes.Repeat([]byte("0123456789"), 100)

	out := deliver(t, s, f, chunk.Request, [][]byte{src[:300], src[300:700], src[700:]})
	assert.Less(t, len(out), len(src))
	plain, err := compress.Decode(compress.LZ4{}, out)
	require.NoError(t, err)
	assert.Equal(t, src, plain)
}

func TestTrailersFinalize(t *testing.T) {
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Capture: true}, s, nil)

	for _, p := range frags("x", "y") {
		s.Receive(chunk.Request, p)
		require.Equal(t, StopAndBuffer, f.OnRequestBody(false))
		require.NoError(t, s.Buffer(chunk.Request))
	}
	require.Equal(t, Continue, f.OnRequestTrailers())
	final, ok := f.FinalBody(chunk.Request)
	require.True(t, ok)
	assert.Equal(t, "xy", string(final))

	// finalized once: later callbacks change nothing
	s.Receive(chunk.Request, []byte("z"))
	assert.Equal(t, Continue, f.OnRequestBody(true))
	final, _ = f.FinalBody(chunk.Request)
	assert.Equal(t, "xy", string(final))
	assert.Equal(t, "xy", string(f.Accumulated(chunk.Request)))
}

func TestReplaceOverLimit(t *testing.T) {
	src := make([]byte, 256)
	rand.New(rand.NewSource(7)).Read(src)
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Compression: "lz4", BufferLimit: 256}, s, nil)
	assert.EqualValues(t, 256, s.BufferLimit())

	s.Receive(chunk.Response, src[:128])
	require.Equal(t, StopAndBuffer, f.OnResponseBody(false))
	require.NoError(t, s.Buffer(chunk.Response))
	s.Receive(chunk.Response, src[128:])
	assert.Equal(t, StopIteration, f.OnResponseBody(true))

	var re *body.ReplaceError
	require.True(t, errors.As(f.Err(), &re))
	assert.Equal(t, "append", re.Op)
	assert.True(t, errors.Is(f.Err(), chunk.ErrBufferLimit))
	final, ok := f.FinalBody(chunk.Response)
	require.True(t, ok)
	assert.Equal(t, src, final)
}

func TestDirections(t *testing.T) {
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Capture: true, Directions: []chunk.Direction{chunk.Response}}, s, nil)

	s.Receive(chunk.Request, []byte("req"))
	assert.Equal(t, Continue, f.OnRequestBody(false))
	s.Receive(chunk.Response, []byte("resp"))
	assert.Equal(t, StopAndBuffer, f.OnResponseBody(false))
}

func TestStreamReset(t *testing.T) {
	s := chunk.NewMemStore(0)
	f := newFilter(t, &Config{Capture: true}, s, nil)
	s.Receive(chunk.Request, []byte("partial"))
	f.OnRequestBody(false)
	f.OnStreamReset()
	assert.Empty(t, f.Accumulated(chunk.Request))
}

func TestUnknownCompression(t *testing.T) {
	_, err := New(&Config{Compression: "brotli"}, chunk.NewMemStore(0), nil)
	assert.Error(t, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Continue", Continue.String())
	assert.Equal(t, "StopAndBuffer", StopAndBuffer.String())
	assert.Equal(t, "StopIteration", StopIteration.String())
}
