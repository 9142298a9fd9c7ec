// pkg/capture/memory.go

package capture

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"AveBody/pkg/chunk"
)

// ErrNotFound is returned when no record exists for a stream direction.
var ErrNotFound = errors.New("record not found")

type memSink struct {
	sync.Mutex
	prefix  string
	records map[string]*Record
}

func init() {
	Register("memory", newMemSink)
}

func newMemSink(driver, addr string, conf *Config) (Sink, error) {
	return &memSink{prefix: conf.Prefix, records: make(map[string]*Record)}, nil
}

func (m *memSink) Name() string {
	return "memory"
}

func (m *memSink) Put(ctx context.Context, r *Record) error {
	m.Lock()
	defer m.Unlock()
	m.records[m.prefix+r.Key()] = r
	return nil
}

func (m *memSink) Get(ctx context.Context, stream string, d chunk.Direction) (*Record, error) {
	m.Lock()
	defer m.Unlock()
	r, ok := m.records[m.prefix+stream+":"+d.String()]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", stream, d)
	}
	return r, nil
}

func (m *memSink) List(ctx context.Context) ([]*Record, error) {
	m.Lock()
	defer m.Unlock()
	rs := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].Key() < rs[j].Key() })
	return rs, nil
}

func (m *memSink) Close() error {
	return nil
}
