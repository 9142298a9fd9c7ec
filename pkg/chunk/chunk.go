// pkg/chunk/chunk.go

package chunk

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBufferLimit is returned by a store that refuses to grow a view past its buffer limit.
var ErrBufferLimit = errors.New("buffer limit exceeded")

// Direction of a body stream.
type Direction uint8

const (
	Request Direction = iota
	Response
)

var directions = [...]string{"request", "response"}

func (d Direction) String() string {
	if int(d) < len(directions) {
		return directions[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection accepts the names printed by String.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directions {
		if s == name {
			return Direction(i), nil
		}
	}
	return 0, errors.Errorf("unknown direction %q", s)
}

// View is one of the two windows a host keeps onto a direction's body.
type View uint8

const (
	// Received holds the fragment(s) just delivered to this stage.
	Received View = iota
	// Buffered holds content the host retained for earlier stages.
	Buffered
)

func (v View) String() string {
	switch v {
	case Received:
		return "received"
	case Buffered:
		return "buffered"
	}
	return fmt.Sprintf("view(%d)", uint8(v))
}

// Identity names the storage behind a chunk. Only equality is meaningful.
type Identity uint64

// Chunk is a borrowed view onto one piece of host storage.
type Chunk struct {
	ID   Identity
	Data []byte
}

// Sequence is an ordered list of chunks; order is byte order.
type Sequence []Chunk

func (s Sequence) Identities() []Identity {
	ids := make([]Identity, len(s))
	for i, c := range s {
		ids[i] = c.ID
	}
	return ids
}

// Size returns the total number of bytes in the sequence.
func (s Sequence) Size() int {
	var n int
	for _, c := range s {
		n += len(c.Data)
	}
	return n
}

// Bytes returns an owned copy of the concatenated chunks.
func (s Sequence) Bytes() []byte {
	buf := make([]byte, 0, s.Size())
	for _, c := range s {
		buf = append(buf, c.Data...)
	}
	return buf
}

// Store is the host capability that owns body chunks.
type Store interface {
	// GetView returns the chunks of a view, ok is false if the view is absent.
	GetView(d Direction, v View) (seq Sequence, ok bool)
	// DrainView removes every chunk and reports whether anything was removed.
	DrainView(d Direction, v View) (bool, error)
	// AppendView appends data as one new chunk, creating the view if absent.
	AppendView(d Direction, v View, data []byte) error
	BufferLimit() uint64
	SetBufferLimit(limit uint64)
}

// Sharer is implemented by stores that can re-deliver buffered storage as the received view.
type Sharer interface {
	ShareView(d Direction) error
}
