package clock

import "github.com/coder/quartz"

// Clock provides time operations that can be mocked for testing.
// Services only read the time; the randomness layer also creates timers
// through it so retries can be driven by quartz.NewMock in tests.
type Clock = quartz.Clock

// Timer is the timer handed out by a Clock
type Timer = quartz.Timer

// New creates a clock backed by the system time
func New() Clock {
	return quartz.NewReal()
}
