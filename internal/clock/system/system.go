// Package system provides a real clock implementation.
package system

import "time"

// Clock implements harvest.Clock using time.Now. Manifest timestamps
// are always UTC so entries compare cleanly across machines.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
