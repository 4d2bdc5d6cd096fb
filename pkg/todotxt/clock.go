package todotxt

import "time"

// Clock supplies the current calendar date. Parsing and toggling depend on
// it so tests can pin "today".
type Clock interface {
	Today() Date
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Today() Date {
	return DateOf(time.Now())
}

// FixedClock always returns the same date.
type FixedClock Date

func (c FixedClock) Today() Date {
	return Date(c)
}
