package editor

import (
	"html"
	"sort"
	"strings"
	"sync"
)

// Surface is the editable document body. The controller only reads it,
// seeds it, and listens for changes.
type Surface interface {
	GetHTML() string
	GetText() string
	// SetContent replaces the body without emitting a change event.
	SetContent(html string)
	// Subscribe registers fn for change events and returns a function that
	// removes it.
	Subscribe(fn func()) (unsubscribe func())
}

// Buffer is an in-memory HTML Surface. User edits go through Apply and
// AppendParagraph, which emit change events; SetContent does not.
type Buffer struct {
	mu        sync.RWMutex
	html      string
	listeners map[int]func()
	nextID    int
}

var _ Surface = (*Buffer)(nil)

func NewBuffer() *Buffer {
	return &Buffer{listeners: make(map[int]func())}
}

func (b *Buffer) GetHTML() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.html
}

func (b *Buffer) GetText() string {
	return PlainText(b.GetHTML())
}

func (b *Buffer) SetContent(h string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.html = h
}

// Apply replaces the body as a user edit.
func (b *Buffer) Apply(h string) {
	b.mu.Lock()
	b.html = h
	b.mu.Unlock()
	b.emit()
}

// AppendParagraph adds text as a new paragraph at the end of the body.
func (b *Buffer) AppendParagraph(text string) {
	var p strings.Builder
	for _, line := range strings.Split(text, "\n") {
		p.WriteString("<p>")
		p.WriteString(html.EscapeString(line))
		p.WriteString("</p>")
	}

	b.mu.Lock()
	b.html += p.String()
	b.mu.Unlock()
	b.emit()
}

func (b *Buffer) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
		})
	}
}

// emit calls listeners in registration order without holding the lock, so
// listeners may read the buffer.
func (b *Buffer) emit() {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
