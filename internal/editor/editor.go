// Package editor is a headless editor model: open documents with a caret,
// one of which is active. It drives the scheduler outside a real IDE, for
// event replay and tests.
package editor

import (
	"sync"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/schedule"
)

// Buffer is an open document with a caret.
type Buffer struct {
	mu        sync.Mutex
	doc       *document.Document
	caret     model.Caret
	listeners []schedule.CaretListener
}

// NewBuffer opens doc with the caret at the start.
func NewBuffer(doc *document.Document) *Buffer {
	return &Buffer{doc: doc, caret: model.Caret{Line: 1, Column: 1}}
}

// Document implements schedule.Editor.
func (b *Buffer) Document() *document.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc
}

// Caret implements schedule.Editor.
func (b *Buffer) Caret() model.Caret {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caret
}

// AddCaretListener implements schedule.Editor. Adding a listener twice has
// no effect.
func (b *Buffer) AddCaretListener(l schedule.CaretListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.listeners {
		if existing == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

// RemoveCaretListener implements schedule.Editor.
func (b *Buffer) RemoveCaretListener(l schedule.CaretListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of subscribed caret listeners.
func (b *Buffer) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// MoveTo places the caret at a 1-based line and column and notifies the
// listeners. It reports false when the position is outside the document.
func (b *Buffer) MoveTo(line, column uint32) bool {
	b.mu.Lock()
	caret, ok := b.doc.CaretAt(line, column)
	if !ok {
		b.mu.Unlock()
		return false
	}
	b.caret = caret
	listeners := append([]schedule.CaretListener(nil), b.listeners...)
	b.mu.Unlock()

	for _, l := range listeners {
		l.CaretMoved(caret)
	}
	return true
}

// Replace swaps in a new snapshot of the document, keeping the caret offset
// within bounds. Listeners are not notified; editors report caret
// movements, not edits.
func (b *Buffer) Replace(doc *document.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc
	b.caret = doc.Caret(b.caret.Offset)
}

// Workspace holds the open buffers and the active one.
type Workspace struct {
	mu     sync.Mutex
	active *Buffer
}

// ActiveEditor implements schedule.Workspace.
func (w *Workspace) ActiveEditor() schedule.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil {
		return nil
	}
	return w.active
}

// Active returns the active buffer, or nil.
func (w *Workspace) Active() *Buffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Select makes b the active buffer; nil closes the editor.
func (w *Workspace) Select(b *Buffer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = b
}
