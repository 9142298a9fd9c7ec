// pkg/filter/filter.go

package filter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"AveBody/pkg/body"
	"AveBody/pkg/capture"
	"AveBody/pkg/chunk"
	"AveBody/pkg/compress"
	"AveBody/pkg/utils"
)

var logger = utils.GetLogger("avebody")

// Status tells the host how to go on after a callback.
type Status uint8

const (
	// Continue passes the content downstream.
	Continue Status = iota
	// StopAndBuffer asks the host to keep the received content in the buffered view.
	StopAndBuffer
	// StopIteration stops the stream at this filter.
	StopIteration
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "Continue"
	case StopAndBuffer:
		return "StopAndBuffer"
	}
	return "StopIteration"
}

// Filter reconciles whole bodies for one stream. The host calls it sequentially.
type Filter struct {
	id        string
	conf      *Config
	store     chunk.Store
	sink      capture.Sink
	transform func([]byte) ([]byte, error)
	acc       [2]body.Accumulator
	started   time.Time
	err       error
}

// New creates the filter of one stream; sink may be nil.
func New(conf *Config, store chunk.Store, sink capture.Sink) (*Filter, error) {
	transform, err := compress.Transform(conf.Compression)
	if err != nil {
		return nil, err
	}
	if conf.BufferLimit > 0 {
		store.SetBufferLimit(conf.BufferLimit)
	}
	return &Filter{
		id:        uuid.New().String(),
		conf:      conf,
		store:     store,
		sink:      sink,
		transform: transform,
		started:   utils.Now(),
	}, nil
}

func (f *Filter) ID() string {
	return f.id
}

// Err returns the last failure to replace a body.
func (f *Filter) Err() error {
	return f.err
}

// needsWholeBody reports whether fragments must be held until the end of the stream.
func (f *Filter) needsWholeBody(d chunk.Direction) bool {
	return f.conf.handles(d) && (f.transform != nil || f.conf.Capture)
}

func (f *Filter) OnRequestBody(endOfStream bool) Status {
	return f.onBody(chunk.Request, endOfStream)
}

func (f *Filter) OnResponseBody(endOfStream bool) Status {
	return f.onBody(chunk.Response, endOfStream)
}

func (f *Filter) OnRequestTrailers() Status {
	return f.finish(chunk.Request)
}

func (f *Filter) OnResponseTrailers() Status {
	return f.finish(chunk.Response)
}

func (f *Filter) onBody(d chunk.Direction, endOfStream bool) Status {
	acc := &f.acc[d]
	if acc.State() == body.Finalized {
		return Continue
	}
	if received, ok := f.store.GetView(d, chunk.Received); ok {
		acc.AppendChunks(received)
	}
	if endOfStream {
		return f.finish(d)
	}
	if f.needsWholeBody(d) {
		return StopAndBuffer
	}
	return Continue
}

// finish runs once the end of the direction is known.
func (f *Filter) finish(d chunk.Direction) Status {
	acc := &f.acc[d]
	if acc.State() == body.Finalized {
		return Continue
	}
	whole := body.ReadWhole(f.store, d)
	if !f.conf.handles(d) || f.transform == nil {
		acc.Finalize(whole)
		return Continue
	}
	out, err := f.transform(whole)
	if err != nil {
		logger.Errorf("stream %s: transform %s body: %s", f.id, d, err)
		f.err = err
		acc.Finalize(whole)
		return StopIteration
	}
	if err = body.ReplaceWhole(f.store, d, out); err != nil {
		logger.Errorf("stream %s: %s", f.id, err)
		f.err = err
		acc.Finalize(whole)
		return StopIteration
	}
	logger.Debugf("stream %s: replaced %s body, %d -> %d bytes", f.id, d, len(whole), len(out))
	acc.Finalize(out)
	return Continue
}

// FinalBody returns the finalized body of d.
func (f *Filter) FinalBody(d chunk.Direction) ([]byte, bool) {
	return f.acc[d].Final()
}

// Accumulated returns the received fragments recorded for d.
func (f *Filter) Accumulated(d chunk.Direction) []byte {
	return f.acc[d].Accumulated()
}

// OnStreamComplete captures the finalized bodies.
func (f *Filter) OnStreamComplete(ctx context.Context) error {
	defer f.release()
	if f.sink == nil || !f.conf.Capture {
		return nil
	}
	for _, d := range []chunk.Direction{chunk.Request, chunk.Response} {
		final, ok := f.acc[d].Final()
		if !ok || !f.conf.handles(d) {
			continue
		}
		if err := f.sink.Put(ctx, capture.NewRecord(f.id, d, final)); err != nil {
			logger.Warnf("stream %s: capture %s body: %s", f.id, d, err)
			return err
		}
	}
	logger.Debugf("stream %s completed in %s", f.id, time.Since(f.started))
	return nil
}

// OnStreamReset is called when the host aborts the stream.
func (f *Filter) OnStreamReset() {
	logger.Debugf("stream %s reset", f.id)
	f.release()
}

func (f *Filter) release() {
	for i := range f.acc {
		f.acc[i].Discard()
	}
}
