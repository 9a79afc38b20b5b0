package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/publish"
	"github.com/phobologic/varhint/internal/schedule"
)

func open(t *testing.T, path, source string) *document.Document {
	t.Helper()
	doc, err := document.New(context.Background(), path, []byte(source))
	require.NoError(t, err)
	return doc
}

type recorder struct {
	mu     sync.Mutex
	carets []model.Caret
}

func (r *recorder) CaretMoved(c model.Caret) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carets = append(r.carets, c)
}

func TestBufferMoveTo(t *testing.T) {
	t.Parallel()
	b := NewBuffer(open(t, "a.py", "x = 1\ny = 2\n"))
	assert.Equal(t, model.Caret{Line: 1, Column: 1}, b.Caret())

	r := &recorder{}
	b.AddCaretListener(r)
	b.AddCaretListener(r)
	assert.Equal(t, 1, b.Listeners())

	require.True(t, b.MoveTo(2, 3))
	assert.False(t, b.MoveTo(7, 1))
	assert.Equal(t, []model.Caret{{Line: 2, Column: 3, Offset: 8}}, r.carets)
	assert.Equal(t, uint32(8), b.Caret().Offset)

	b.RemoveCaretListener(r)
	b.RemoveCaretListener(r)
	assert.Equal(t, 0, b.Listeners())
	b.MoveTo(1, 1)
	assert.Len(t, r.carets, 1)
}

func TestBufferReplaceClampsCaret(t *testing.T) {
	t.Parallel()
	b := NewBuffer(open(t, "a.py", "long_name = 1\nother = 2\n"))
	require.True(t, b.MoveTo(2, 5))

	short := open(t, "a.py", "x = 1\n")
	b.Replace(short)
	assert.Same(t, short, b.Document())
	assert.Equal(t, model.Caret{Line: 2, Column: 1, Offset: 6}, b.Caret())
}

func TestWorkspace(t *testing.T) {
	t.Parallel()
	var ws Workspace
	assert.Nil(t, ws.ActiveEditor())
	assert.Nil(t, ws.Active())

	b := NewBuffer(open(t, "a.py", "x = 1\n"))
	ws.Select(b)
	assert.Same(t, b, ws.Active())
	assert.NotNil(t, ws.ActiveEditor())

	ws.Select(nil)
	assert.True(t, ws.ActiveEditor() == nil, "a closed workspace reports a nil editor")
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestSessionWithScheduler(t *testing.T) {
	t.Parallel()
	var ws Workspace
	calc := NewBuffer(open(t, "calc.py", "x = 3.5\ny = x + 2\n"))
	notes := NewBuffer(open(t, "notes.txt", "hello\n"))
	ws.Select(calc)

	pub := publish.New(nil)
	s := schedule.New(&ws, hint.New(), pub, schedule.WithClock(&stepClock{}))
	defer s.Close()
	s.Start()
	s.Wait()
	assert.Equal(t, "x: float", pub.CurrentLabel())

	require.True(t, calc.MoveTo(2, 1))
	s.Wait()
	assert.Equal(t, "y: float", pub.CurrentLabel())

	require.True(t, calc.MoveTo(2, 3))
	s.Wait()
	assert.Equal(t, model.NoVariable, pub.CurrentLabel())

	ws.Select(notes)
	s.SelectionChanged()
	s.Wait()
	assert.Equal(t, model.NotPython, pub.CurrentLabel())
	assert.Equal(t, 0, calc.Listeners())
	assert.Equal(t, 1, notes.Listeners())

	ws.Select(nil)
	s.SelectionChanged()
	s.Wait()
	assert.Equal(t, model.NoEditor, pub.CurrentLabel())
}
