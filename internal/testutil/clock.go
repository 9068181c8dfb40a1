package testutil

import "sync"

// SimClock tracks simulated time for scenario runs.
//
// Time advances only through Advance, so runs are reproducible. Reset
// returns it to zero for reuse.
type SimClock struct {
	mu     sync.Mutex
	now    float64
	frames int
}

// NewSimClock creates a clock at t=0, frame 0.
func NewSimClock() *SimClock {
	return &SimClock{}
}

// Advance moves time forward by dt seconds, one frame, and returns the
// new time.
func (c *SimClock) Advance(dt float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += dt
	c.frames++
	return c.now
}

// Now returns the simulated time in seconds.
func (c *SimClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Frames returns the number of Advance calls.
func (c *SimClock) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Reset returns the clock to t=0, frame 0.
func (c *SimClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
	c.frames = 0
}
