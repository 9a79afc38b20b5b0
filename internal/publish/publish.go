// Package publish holds the label shown to the user and discards results
// that arrive out of order.
package publish

import (
	"sync"

	"github.com/phobologic/varhint/internal/model"
)

// Publisher keeps the most recent label. Results carrying a sequence number
// lower than the highest one already published are dropped.
type Publisher struct {
	mu     sync.RWMutex
	seq    uint64
	label  string
	notify func()
}

// New returns a publisher showing model.Loading. notify, if non-nil, is
// called after every change of the label, outside the publisher's lock, so
// it may call CurrentLabel.
func New(notify func()) *Publisher {
	return &Publisher{label: model.Loading, notify: notify}
}

// Publish records label as the result for seq. It reports whether the
// result was accepted.
func (p *Publisher) Publish(seq uint64, label string) bool {
	p.mu.Lock()
	if seq < p.seq {
		p.mu.Unlock()
		return false
	}
	p.seq = seq
	changed := p.label != label
	p.label = label
	p.mu.Unlock()

	if changed && p.notify != nil {
		p.notify()
	}
	return true
}

// CurrentLabel returns the label to display.
func (p *Publisher) CurrentLabel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.label
}

// Sequence returns the highest sequence number published so far.
func (p *Publisher) Sequence() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.seq
}
