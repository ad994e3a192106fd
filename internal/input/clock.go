package input

import "time"

// Clock abstracts time so the engine's timers are testable with a fake.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Sleep(d time.Duration)
}

// Timer is a cancelable scheduled callback.
type Timer interface {
	Stop() bool
}

type realClock struct{}

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
