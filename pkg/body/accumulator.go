// pkg/body/accumulator.go

package body

import "AveBody/pkg/chunk"

type State uint8

const (
	// Collecting is the initial state, fragments are appended as they arrive.
	Collecting State = iota
	// Finalized is terminal for the stream direction.
	Finalized
)

func (s State) String() string {
	if s == Finalized {
		return "finalized"
	}
	return "collecting"
}

// Accumulator keeps the body of one direction of one stream across callbacks.
// It is owned by the stream and never shared; callbacks of a stream are sequential.
type Accumulator struct {
	state State
	buf   []byte
	final []byte
}

func (a *Accumulator) State() State {
	return a.state
}

// Append copies a received fragment. It is ignored once finalized.
func (a *Accumulator) Append(data []byte) {
	if a.state == Finalized {
		return
	}
	a.buf = append(a.buf, data...)
}

func (a *Accumulator) AppendChunks(seq chunk.Sequence) {
	for _, c := range seq {
		a.Append(c.Data)
	}
}

// Accumulated returns the fragments recorded so far. They only cover the
// received views, use Final for the whole body.
func (a *Accumulator) Accumulated() []byte {
	return a.buf
}

// Finalize records the whole body, normally the result of ReadWhole.
// Only the first call has an effect; it reports whether this call did.
func (a *Accumulator) Finalize(body []byte) bool {
	if a.state == Finalized {
		return false
	}
	a.final = body
	if a.final == nil {
		a.final = []byte{}
	}
	a.state = Finalized
	return true
}

func (a *Accumulator) Final() ([]byte, bool) {
	return a.final, a.state == Finalized
}

// Discard drops the buffers, e.g. when the host aborts the stream.
func (a *Accumulator) Discard() {
	a.buf = nil
	a.final = nil
}
