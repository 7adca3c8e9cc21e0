package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Generator uses it to stamp the feed and to anchor recurring events on today's date.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
