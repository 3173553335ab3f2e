package util

import "time"

type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func (c *DefaultClock) Now() time.Time { return time.Now() }

// DummyClock returns T on every call. Step, when non-zero, is added to T after each call so that
// durations measured with two calls to Now are deterministic.
type DummyClock struct {
	T    time.Time
	Step time.Duration
}

func (c *DummyClock) Now() time.Time {
	now := c.T
	c.T = c.T.Add(c.Step)
	return now
}
