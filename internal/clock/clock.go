// Package clock provides the time sources injected into page controllers.
package clock

import "time"

// System reads the wall clock in UTC.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

// Now returns f.At.
func (f Fixed) Now() time.Time {
	return f.At
}
