package impulse

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock supplies timestamps for event logging and latency measurement.
// Any clockwork.Clock satisfies it; tests and fixed-step drivers use a
// clockwork.FakeClock so measured latency is deterministic.
type Clock interface {
	Now() time.Time
}

// defaultClock reads wall-clock time.
func defaultClock() Clock { return clockwork.NewRealClock() }

// Seconds converts a frame time in seconds to a Duration for advancing a
// fake clock. Negative and NaN values give zero.
func Seconds(s float64) time.Duration {
	if !(s > 0) {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
