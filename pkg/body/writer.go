// pkg/body/writer.go

package body

import (
	"fmt"

	"AveBody/pkg/chunk"
)

// ReplaceError reports the step at which a replacement stopped. The views of
// the direction may be drained but not yet refilled.
type ReplaceError struct {
	Direction chunk.Direction
	View      chunk.View
	Op        string
	Err       error
}

func (e *ReplaceError) Error() string {
	return fmt.Sprintf("replace %s body: %s %s view: %s", e.Direction, e.Op, e.View, e.Err)
}

func (e *ReplaceError) Unwrap() error { return e.Err }

// Cause works with github.com/pkg/errors.
func (e *ReplaceError) Cause() error { return e.Err }

// ReplaceWhole replaces the whole body of direction d with data.
//
// Both views are drained first. The data is then appended once to the buffered
// view, and a store that implements chunk.Sharer re-points the received view at
// it, so both views report the same storage and the next ReadWhole returns data.
// Errors from the store are returned as *ReplaceError without retry.
func ReplaceWhole(s chunk.Store, d chunk.Direction, data []byte) error {
	for _, v := range []chunk.View{chunk.Received, chunk.Buffered} {
		if _, err := s.DrainView(d, v); err != nil {
			return &ReplaceError{Direction: d, View: v, Op: "drain", Err: err}
		}
	}
	if err := s.AppendView(d, chunk.Buffered, data); err != nil {
		return &ReplaceError{Direction: d, View: chunk.Buffered, Op: "append", Err: err}
	}
	if sh, ok := s.(chunk.Sharer); ok {
		if err := sh.ShareView(d); err != nil {
			return &ReplaceError{Direction: d, View: chunk.Received, Op: "share", Err: err}
		}
	}
	return nil
}

func ReplaceWholeRequestBody(s chunk.Store, data []byte) error {
	return ReplaceWhole(s, chunk.Request, data)
}

func ReplaceWholeResponseBody(s chunk.Store, data []byte) error {
	return ReplaceWhole(s, chunk.Response, data)
}
