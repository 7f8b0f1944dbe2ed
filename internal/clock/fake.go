package clock

import "time"

// FakeClock reports a fixed instant until told otherwise. Not safe for
// concurrent use; tests drive it from a single goroutine.
type FakeClock struct {
	current time.Time
}

func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{current: at.UTC()}
}

func (f *FakeClock) Now() time.Time { return f.current }

// Advance moves the clock forward (or back, with a negative duration).
func (f *FakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set pins the clock to an absolute instant.
func (f *FakeClock) Set(at time.Time) {
	f.current = at.UTC()
}
