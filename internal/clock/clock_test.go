package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestManualAdvanceFiresDueTimers(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	var fired []string
	c.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "success") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "first") })
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })

	c.Advance(499 * time.Millisecond)
	assert.Equal(t, []string{"first"}, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, []string{"first", "success"}, fired)
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
}

func TestManualChainedTimers(t *testing.T) {
	c := NewManual(time.Unix(0, 0))

	var order []int
	c.AfterFunc(time.Second, func() {
		order = append(order, 1)
		c.AfterFunc(time.Second, func() { order = append(order, 2) })
	})

	c.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 2}, order)
	assert.Zero(t, c.Pending())
}

func TestManualStop(t *testing.T) {
	c := NewManual(time.Unix(0, 0))

	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(2 * time.Second)
	assert.False(t, called)
}

func TestSystemClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	var fired atomic.Bool
	done := make(chan struct{})
	System().AfterFunc(time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.True(t, fired.Load())

	stopped := System().AfterFunc(time.Hour, func() {})
	assert.True(t, stopped.Stop())
}
