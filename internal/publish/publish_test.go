package publish

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/varhint/internal/model"
)

func TestInitialLabel(t *testing.T) {
	t.Parallel()
	p := New(nil)
	assert.Equal(t, model.Loading, p.CurrentLabel())
	assert.Zero(t, p.Sequence())
}

func TestStaleResultDropped(t *testing.T) {
	t.Parallel()
	p := New(nil)

	assert.True(t, p.Publish(6, "b: int"))
	assert.False(t, p.Publish(5, "a: str"))
	assert.Equal(t, "b: int", p.CurrentLabel())
	assert.Equal(t, uint64(6), p.Sequence())

	assert.True(t, p.Publish(6, "b: float"), "equal sequence numbers are accepted")
	assert.Equal(t, "b: float", p.CurrentLabel())
}

func TestNotifyOnChange(t *testing.T) {
	t.Parallel()
	var calls int
	var p *Publisher
	var seen []string
	p = New(func() {
		calls++
		// The hook runs outside the lock and may read the label.
		seen = append(seen, p.CurrentLabel())
	})

	p.Publish(1, "x: int")
	p.Publish(2, "x: int")
	p.Publish(1, "stale")
	p.Publish(3, model.NoVariable)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"x: int", model.NoVariable}, seen)
}

func TestConcurrentPublish(t *testing.T) {
	t.Parallel()
	var notified atomic.Int32
	p := New(func() { notified.Add(1) })

	const n = 200
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Publish(uint64(i), fmt.Sprintf("label %d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(n), p.Sequence())
	assert.Equal(t, fmt.Sprintf("label %d", n), p.CurrentLabel())
	assert.GreaterOrEqual(t, notified.Load(), int32(1))
}
