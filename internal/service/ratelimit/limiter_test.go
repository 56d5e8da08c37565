package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(capacity int, refill float64) (*Limiter, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(capacity, refill)
	l.now = c.now
	return l, c
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	l, c := newTestLimiter(3, 1)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// other keys have their own bucket
	assert.True(t, l.Allow("10.0.0.2"))

	c.advance(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// refill never exceeds capacity
	c.advance(time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestLimiter_Prune(t *testing.T) {
	l, c := newTestLimiter(1, 1)
	l.Allow("a")
	c.advance(2 * time.Minute)
	l.Allow("b")

	assert.Equal(t, 1, l.Prune(time.Minute))
	assert.Equal(t, 1, l.Len())
}
