// Package schedule turns caret events into background inference jobs.
//
// Caret movements are debounced: a movement less than the debounce interval
// after the previously accepted one is dropped, and the first movement after
// a quiet period runs immediately. Every accepted update gets the next
// sequence number and runs on a bounded pool of goroutines; the Sink is
// responsible for discarding results that finish out of order.
package schedule

import (
	"context"
	"io"
	"log"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/model"
)

// DefaultDebounce is the minimum spacing between accepted caret updates.
const DefaultDebounce = 100 * time.Millisecond

// Scheduler dispatches label updates for the active editor.
type Scheduler struct {
	workspace Workspace
	describer Describer
	sink      Sink
	clock     Clock
	interval  time.Duration
	logger    *log.Logger

	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	editor Editor
	last   time.Time
	seq    uint64
	closed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source used for debouncing.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDebounce sets the debounce interval. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithWorkers bounds the number of jobs running at once.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogger sets the logger for recovered job failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a scheduler. Call Start to subscribe to the active editor.
func New(ws Workspace, d Describer, sink Sink, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workspace: ws,
		describer: d,
		sink:      sink,
		clock:     systemClock{},
		interval:  DefaultDebounce,
		logger:    log.New(io.Discard, "", 0),
		sem:       semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the active editor and publishes an initial label.
func (s *Scheduler) Start() {
	s.SelectionChanged()
}

// CaretMoved handles a caret movement in the active editor. It never blocks
// on inference.
func (s *Scheduler) CaretMoved(caret model.Caret) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	now := s.clock.Now()
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return
	}
	s.last = now

	var doc *document.Document
	if s.editor != nil {
		doc = s.editor.Document()
	}
	s.submitLocked(doc, caret.Offset)
}

// SelectionChanged handles a switch of the active editor: caret listening
// moves to the new editor and the label is refreshed without debouncing.
func (s *Scheduler) SelectionChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	var next Editor
	if s.workspace != nil {
		next = s.workspace.ActiveEditor()
	}
	if s.editor != nil {
		s.editor.RemoveCaretListener(s)
	}
	s.editor = next

	var doc *document.Document
	var offset uint32
	if next != nil {
		next.AddCaretListener(s)
		doc = next.Document()
		offset = next.Caret().Offset
	}
	s.submitLocked(doc, offset)
}

// submitLocked assigns the next sequence number and starts a job. s.mu must
// be held.
func (s *Scheduler) submitLocked(doc *document.Document, offset uint32) {
	s.seq++
	seq := s.seq

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)
		s.run(seq, doc, offset)
	}()
}

func (s *Scheduler) run(seq uint64, doc *document.Document, offset uint32) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("update %d failed: %v", seq, r)
		}
	}()

	var label string
	if doc == nil {
		label = model.NoEditor
	} else {
		label = s.describer.Describe(doc, offset)
	}
	if !s.sink.Publish(seq, label) {
		s.logger.Printf("update %d superseded", seq)
	}
}

// Submitted returns the number of updates dispatched so far, which is also
// the most recent sequence number.
func (s *Scheduler) Submitted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Wait blocks until all dispatched jobs have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close unsubscribes from the editor, drops jobs that have not started and
// waits for running ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		if s.editor != nil {
			s.editor.RemoveCaretListener(s)
			s.editor = nil
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
