package stream

import "sync"

// Tape is a bounded ring buffer of recent prices.
type Tape struct {
	mu    sync.RWMutex
	buf   []float64
	size  int
	start int
	count int
}

// NewTape creates a Tape with the given capacity.
func NewTape(capacity int) *Tape {
	if capacity <= 0 {
		capacity = DefaultConfig().TapeSize
	}
	return &Tape{
		buf:  make([]float64, capacity),
		size: capacity,
	}
}

// Append adds a price, overwriting the oldest once full.
func (t *Tape) Append(price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count < t.size {
		t.buf[(t.start+t.count)%t.size] = price
		t.count++
		return
	}
	t.buf[t.start] = price
	t.start = (t.start + 1) % t.size
}

// Latest returns the last n prices, oldest first, as a copy.
func (t *Tape) Latest(n int) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || t.count == 0 {
		return nil
	}
	if n > t.count {
		n = t.count
	}

	out := make([]float64, n)
	first := (t.start + (t.count - n)) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(first+i)%t.size]
	}
	return out
}

// Len returns the number of prices held.
func (t *Tape) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}
