// pkg/chunk/page.go

package chunk

// Page is one piece of host storage with its own identity.
type Page struct {
	id   Identity
	Data []byte
}

// NewPage create a new page.
func NewPage(id Identity, data []byte) *Page {
	return &Page{id: id, Data: data}
}

func (p *Page) ID() Identity {
	return p.id
}

func (p *Page) Chunk() Chunk {
	return Chunk{ID: p.id, Data: p.Data}
}

// pageList is the storage behind a view. Two views alias when they point at the same list.
type pageList struct {
	pages []*Page
	size  int
}

func (l *pageList) sequence() Sequence {
	seq := make(Sequence, len(l.pages))
	for i, p := range l.pages {
		seq[i] = p.Chunk()
	}
	return seq
}

func (l *pageList) push(p *Page) {
	l.pages = append(l.pages, p)
	l.size += len(p.Data)
}

func (l *pageList) bytes() []byte {
	buf := make([]byte, 0, l.size)
	for _, p := range l.pages {
		buf = append(buf, p.Data...)
	}
	return buf
}

// reset drops every page and returns how many were dropped.
func (l *pageList) reset() (int, int) {
	n, size := len(l.pages), l.size
	for _, p := range l.pages {
		p.Data = nil
	}
	l.pages = nil
	l.size = 0
	return n, size
}
