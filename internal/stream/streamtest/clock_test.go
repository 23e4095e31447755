package streamtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockFiresDueCallbacks(t *testing.T) {
	c := NewClock()
	var n int
	c.Every(100*time.Millisecond, func() { n++ })

	c.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, n)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, n)

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, 3, n)
	assert.Equal(t, 350*time.Millisecond, c.Now())
}

func TestClockCancel(t *testing.T) {
	c := NewClock()
	var n int
	cancel := c.Every(10*time.Millisecond, func() { n++ })
	require.Equal(t, 1, c.Pending())

	c.Advance(20 * time.Millisecond)
	cancel()
	cancel()
	c.Advance(time.Second)

	assert.Equal(t, 2, n)
	assert.Equal(t, 0, c.Pending())
}

func TestClockCallbackMayCancelAndRegister(t *testing.T) {
	c := NewClock()
	var order []string
	var cancel func()
	cancel = c.Every(10*time.Millisecond, func() {
		order = append(order, "a")
		cancel()
		c.Every(10*time.Millisecond, func() { order = append(order, "b") })
	})

	c.Advance(30 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "b"}, order)
}

func TestClockOrdersByDueTime(t *testing.T) {
	c := NewClock()
	var order []int
	c.Every(30*time.Millisecond, func() { order = append(order, 30) })
	c.Every(20*time.Millisecond, func() { order = append(order, 20) })

	c.Advance(60 * time.Millisecond)
	assert.Equal(t, []int{20, 30, 20, 30, 20}, order)
}
