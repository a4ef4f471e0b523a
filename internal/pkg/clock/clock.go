// Package clock provides time utilities for the application
package clock

import "time"

//go:generate mockgen -destination=mock/mock.go -package=mockclock github.com/llmadventure/llmadventure/internal/pkg/clock Clock

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed implements Clock with a settable time for tests
type Fixed struct {
	current time.Time
}

// NewFixed returns a clock frozen at the given time
func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t}
}

// Now returns the frozen time
func (c *Fixed) Now() time.Time {
	return c.current
}

// Advance moves the frozen time forward
func (c *Fixed) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
