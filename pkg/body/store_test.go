// pkg/body/store_test.go

package body

import (
	"github.com/pkg/errors"

	"AveBody/pkg/chunk"
)

type viewKey struct {
	d chunk.Direction
	v chunk.View
}

// fakeStore lets a test pick chunk identities; it never aliases storage on its own.
type fakeStore struct {
	views     map[viewKey]chunk.Sequence
	nextID    chunk.Identity
	limit     uint64
	calls     []string
	drainErr  map[viewKey]error
	appendErr map[viewKey]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		views:     make(map[viewKey]chunk.Sequence),
		nextID:    1000,
		drainErr:  make(map[viewKey]error),
		appendErr: make(map[viewKey]error),
	}
}

func (f *fakeStore) set(d chunk.Direction, v chunk.View, seq chunk.Sequence) {
	f.views[viewKey{d, v}] = seq
}

func (f *fakeStore) GetView(d chunk.Direction, v chunk.View) (chunk.Sequence, bool) {
	f.calls = append(f.calls, "get "+v.String())
	seq, ok := f.views[viewKey{d, v}]
	return seq, ok
}

func (f *fakeStore) DrainView(d chunk.Direction, v chunk.View) (bool, error) {
	f.calls = append(f.calls, "drain "+v.String())
	k := viewKey{d, v}
	if err := f.drainErr[k]; err != nil {
		return false, err
	}
	seq, ok := f.views[k]
	if !ok || len(seq) == 0 {
		return false, nil
	}
	f.views[k] = chunk.Sequence{}
	return true, nil
}

func (f *fakeStore) AppendView(d chunk.Direction, v chunk.View, data []byte) error {
	f.calls = append(f.calls, "append "+v.String())
	k := viewKey{d, v}
	if err := f.appendErr[k]; err != nil {
		return err
	}
	if f.limit > 0 && uint64(f.views[k].Size()+len(data)) > f.limit {
		return errors.Wrap(chunk.ErrBufferLimit, "fake")
	}
	f.nextID++
	f.views[k] = append(f.views[k], chunk.Chunk{ID: f.nextID, Data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeStore) BufferLimit() uint64         { return f.limit }
func (f *fakeStore) SetBufferLimit(limit uint64) { f.limit = limit }

func seqOf(id chunk.Identity, parts ...string) chunk.Sequence {
	seq := make(chunk.Sequence, len(parts))
	for i, p := range parts {
		seq[i] = chunk.Chunk{ID: id + chunk.Identity(i), Data: []byte(p)}
	}
	return seq
}
