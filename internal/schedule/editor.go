package schedule

import (
	"time"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/model"
)

// CaretListener receives caret movements of an editor.
type CaretListener interface {
	CaretMoved(caret model.Caret)
}

// Editor is an open editor as seen by the scheduler.
type Editor interface {
	// Document returns the current snapshot of the edited document.
	Document() *document.Document
	// Caret returns the current caret state.
	Caret() model.Caret
	AddCaretListener(l CaretListener)
	RemoveCaretListener(l CaretListener)
}

// Workspace tracks which editor is active.
type Workspace interface {
	// ActiveEditor returns the selected editor, or nil when none is open.
	ActiveEditor() Editor
}

// Describer computes the display text for a caret offset in a document.
type Describer interface {
	Describe(doc *document.Document, offset uint32) string
}

// Sink receives sequenced results.
type Sink interface {
	Publish(seq uint64, label string) bool
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
