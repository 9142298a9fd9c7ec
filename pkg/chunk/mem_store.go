// pkg/chunk/mem_store.go

package chunk

import (
	"sync"

	"github.com/pkg/errors"

	"AveBody/pkg/utils"
)

var logger = utils.GetLogger("avebody")

// MemStore is an in-memory host for body chunks. Besides the Store capability it
// offers the operations a proxy core performs between filter callbacks.
type MemStore struct {
	sync.Mutex
	limit  uint64
	nextID Identity
	views  [2][2]*pageList
	pages  int64
	used   int64
}

var _ Store = &MemStore{}
var _ Sharer = &MemStore{}

// NewMemStore creates a store; limit caps the bytes of one view, 0 means unlimited.
func NewMemStore(limit uint64) *MemStore {
	return &MemStore{limit: limit}
}

// locked
func (s *MemStore) newPage(data []byte) *Page {
	s.nextID++
	buf := make([]byte, len(data))
	copy(buf, data)
	s.pages++
	s.used += int64(len(buf))
	return NewPage(s.nextID, buf)
}

// locked
func (s *MemStore) free(l *pageList) {
	n, size := l.reset()
	s.pages -= int64(n)
	s.used -= int64(size)
}

// locked
func (s *MemStore) fits(l *pageList, n int) bool {
	if s.limit == 0 {
		return true
	}
	var size int
	if l != nil {
		size = l.size
	}
	return uint64(size+n) <= s.limit
}

// locked
func (s *MemStore) aliased(d Direction) bool {
	r := s.views[d][Received]
	return r != nil && r == s.views[d][Buffered]
}

func (s *MemStore) GetView(d Direction, v View) (Sequence, bool) {
	s.Lock()
	defer s.Unlock()
	l := s.views[d][v]
	if l == nil {
		return nil, false
	}
	return l.sequence(), true
}

func (s *MemStore) DrainView(d Direction, v View) (bool, error) {
	s.Lock()
	defer s.Unlock()
	l := s.views[d][v]
	if l == nil || len(l.pages) == 0 {
		return false, nil
	}
	s.free(l)
	logger.Tracef("drained %s %s view", v, d)
	return true, nil
}

func (s *MemStore) AppendView(d Direction, v View, data []byte) error {
	s.Lock()
	defer s.Unlock()
	l := s.views[d][v]
	if !s.fits(l, len(data)) {
		return errors.Wrapf(ErrBufferLimit, "append %d bytes to %s %s view (limit %d)", len(data), v, d, s.limit)
	}
	if l == nil {
		l = &pageList{}
		s.views[d][v] = l
	}
	l.push(s.newPage(data))
	return nil
}

func (s *MemStore) BufferLimit() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.limit
}

func (s *MemStore) SetBufferLimit(limit uint64) {
	s.Lock()
	defer s.Unlock()
	s.limit = limit
}

// ShareView points the received view at the buffered storage.
func (s *MemStore) ShareView(d Direction) error {
	s.Lock()
	defer s.Unlock()
	b := s.views[d][Buffered]
	if b == nil {
		return errors.Errorf("no buffered %s body to share", d)
	}
	if r := s.views[d][Received]; r != nil && r != b {
		s.free(r)
	}
	s.views[d][Received] = b
	return nil
}

// Receive replaces the received view with newly delivered fragments, one page each.
func (s *MemStore) Receive(d Direction, fragments ...[]byte) {
	s.Lock()
	defer s.Unlock()
	if r := s.views[d][Received]; r != nil && !s.aliased(d) {
		s.free(r)
	}
	l := &pageList{}
	for _, f := range fragments {
		l.push(s.newPage(f))
	}
	s.views[d][Received] = l
}

// Buffer moves the received pages to the end of the buffered view, leaving the
// received view absent. The pages keep their identities.
func (s *MemStore) Buffer(d Direction) error {
	s.Lock()
	defer s.Unlock()
	r := s.views[d][Received]
	if r == nil || s.aliased(d) {
		return nil
	}
	b := s.views[d][Buffered]
	if !s.fits(b, r.size) {
		return errors.Wrapf(ErrBufferLimit, "buffer %d bytes of %s body (limit %d)", r.size, d, s.limit)
	}
	if b == nil {
		b = &pageList{}
		s.views[d][Buffered] = b
	}
	for _, p := range r.pages {
		b.push(p)
	}
	s.views[d][Received] = nil
	return nil
}

// Redeliver hands the buffered content to the next stage as its received view.
func (s *MemStore) Redeliver(d Direction) {
	s.Lock()
	defer s.Unlock()
	b := s.views[d][Buffered]
	if b == nil {
		return
	}
	if r := s.views[d][Received]; r != nil && r != b {
		s.free(r)
	}
	s.views[d][Received] = b
}

// Forward emits what the host sends downstream after a stage continues, and
// releases both views.
func (s *MemStore) Forward(d Direction) []byte {
	s.Lock()
	defer s.Unlock()
	r, b := s.views[d][Received], s.views[d][Buffered]
	var out []byte
	if b != nil {
		out = append(out, b.bytes()...)
		s.free(b)
	}
	if r != nil && r != b {
		out = append(out, r.bytes()...)
		s.free(r)
	}
	s.views[d][Received] = nil
	s.views[d][Buffered] = nil
	return out
}

// Stats returns the number of live pages and their bytes.
func (s *MemStore) Stats() (int64, int64) {
	s.Lock()
	defer s.Unlock()
	return s.pages, s.used
}
