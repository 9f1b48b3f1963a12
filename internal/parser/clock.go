package parser

import "sync/atomic"

// Clock is a monotonic logical clock stamping consumed events.
//
// Traces are ordered by these seq numbers, never by wall time: replaying
// the same event sequence produces an identical trace.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
