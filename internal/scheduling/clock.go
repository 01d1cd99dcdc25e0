package scheduling

import "time"

// Clock abstracts time so the auto-promotion sweep can be driven by a
// virtual clock in tests instead of waiting on real intervals.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}
