package utils

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (clock FixedClock) Now() time.Time {
	return clock.Instant
}
